package db

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomStateRepository struct {
	db *gorm.DB
}

func NewRoomStateRepository(db *gorm.DB) *RoomStateRepository {
	return &RoomStateRepository{db: db}
}

// Upsert 按房间号写入/覆盖状态快照
func (r *RoomStateRepository) Upsert(state *RoomState) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}},
		UpdateAll: true,
	}).Create(state).Error
}

// All 获取全部房间状态快照
func (r *RoomStateRepository) All() ([]RoomState, error) {
	var rows []RoomState
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询房间状态失败: %v", err)
	}
	return rows, nil
}
