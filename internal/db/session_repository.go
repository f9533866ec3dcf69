package db

import (
	"fmt"

	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Log 追加一条空调会话详单
func (r *SessionRepository) Log(session *ACSession) error {
	return r.db.Create(session).Error
}

// ByRoom 获取房间全部详单，按开始时间升序 (账单导出用)
func (r *SessionRepository) ByRoom(roomID string) ([]ACSession, error) {
	var rows []ACSession
	err := r.db.Where("room_id = ?", roomID).
		Order("start_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询详单失败: %v", err)
	}
	return rows, nil
}
