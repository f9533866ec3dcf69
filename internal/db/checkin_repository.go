package db

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type CheckInRepository struct {
	db *gorm.DB
}

func NewCheckInRepository(db *gorm.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

// Add 写入新的入住记录。先将该房间残留的 active 行标记为已退房，
// 保证每房间至多一条 active 记录。
func (r *CheckInRepository) Add(roomID, tenantID, name, phone string, days int, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&CheckIn{}).
			Where("room_id = ? AND status = ?", roomID, CheckInActive).
			Updates(map[string]interface{}{
				"status":         CheckInCheckedOut,
				"check_out_time": now,
			}).Error; err != nil {
			return fmt.Errorf("关闭历史入住记录失败: %v", err)
		}
		rec := CheckIn{
			RoomID:      roomID,
			TenantID:    tenantID,
			TenantName:  name,
			TenantPhone: phone,
			CheckInTime: now,
			StayDays:    days,
			Status:      CheckInActive,
		}
		return tx.Create(&rec).Error
	})
}

// Close 将房间当前 active 记录标记为已退房
func (r *CheckInRepository) Close(roomID string, now time.Time) error {
	return r.db.Model(&CheckIn{}).
		Where("room_id = ? AND status = ?", roomID, CheckInActive).
		Updates(map[string]interface{}{
			"status":         CheckInCheckedOut,
			"check_out_time": now,
		}).Error
}

// UpdateStayDays 更新当前住客的入住天数
func (r *CheckInRepository) UpdateStayDays(roomID string, days int) error {
	return r.db.Model(&CheckIn{}).
		Where("room_id = ? AND status = ?", roomID, CheckInActive).
		Update("stay_days", days).Error
}

// Active 获取全部在住记录，用于启动时恢复内存状态
func (r *CheckInRepository) Active() ([]CheckIn, error) {
	var rows []CheckIn
	if err := r.db.Where("status = ?", CheckInActive).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询在住记录失败: %v", err)
	}
	return rows, nil
}
