package core

import (
	"time"

	"achotel/internal/room"
)

// TenantRow 入住记录行
type TenantRow struct {
	RoomID      string
	TenantID    string
	TenantName  string
	TenantPhone string
	StayDays    int
}

// StateRow 房间空调状态快照行
type StateRow struct {
	RoomID      string
	PowerOn     bool
	FanSpeed    string
	TargetTemp  float64
	CurrentTemp float64
	TotalFee    float64
	Duration    int
}

// Store 持久化端口。所有写入都是尽力而为:
// 失败不得中断调度决策，调用方记录日志后继续。
type Store interface {
	AddCheckIn(row TenantRow, now time.Time) error
	CloseCheckIn(roomID string, now time.Time) error
	UpdateStayDays(roomID string, days int) error
	ActiveCheckIns() ([]TenantRow, error)

	SaveRoomState(row StateRow) error
	AllRoomStates() ([]StateRow, error)

	LogSession(rec *room.SessionRecord) error
}

// NopStore 空实现，测试与无持久化场景使用
type NopStore struct{}

func (NopStore) AddCheckIn(TenantRow, time.Time) error      { return nil }
func (NopStore) CloseCheckIn(string, time.Time) error       { return nil }
func (NopStore) UpdateStayDays(string, int) error           { return nil }
func (NopStore) ActiveCheckIns() ([]TenantRow, error)       { return nil, nil }
func (NopStore) SaveRoomState(StateRow) error               { return nil }
func (NopStore) AllRoomStates() ([]StateRow, error)         { return nil, nil }
func (NopStore) LogSession(*room.SessionRecord) error       { return nil }
