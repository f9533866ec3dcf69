package db

import "time"

// 入住状态
const (
	CheckInActive     = "active"
	CheckInCheckedOut = "checked_out"
)

// 入住记录表: 每房间最新的 active 行即当前住客
type CheckIn struct {
	ID           int    `gorm:"primaryKey"`
	RoomID       string `gorm:"type:varchar(16);index"`
	TenantID     string `gorm:"type:varchar(64)"`
	TenantName   string `gorm:"type:varchar(255)"`
	TenantPhone  string `gorm:"type:varchar(32)"`
	CheckInTime  time.Time
	CheckOutTime *time.Time
	StayDays     int
	Status       string `gorm:"type:varchar(16);default:active"`
}

// 房间空调状态快照表
type RoomState struct {
	RoomID      string `gorm:"primaryKey;type:varchar(16)"`
	PowerOn     bool
	FanSpeed    string `gorm:"type:varchar(8)"`
	TargetTemp  float64
	CurrentTemp float64
	TotalFee    float64
	Duration    int
}

// 空调详单表: 一行对应一段会话
type ACSession struct {
	ID               int    `gorm:"primaryKey"`
	RoomID           string `gorm:"type:varchar(16);index"`
	RequestTime      time.Time
	StartTime        time.Time
	EndTime          time.Time
	Duration         int
	FanSpeed         string `gorm:"type:varchar(8)"`
	Fee              float64
	TotalFeeSnapshot float64
}
