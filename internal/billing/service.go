// internal/billing/service.go

package billing

import (
	"time"

	"achotel/internal/core"
)

// Bill 住宿账单
type Bill struct {
	RoomID     string  `json:"room_id"`
	TenantName string  `json:"tenant_name"`
	StayDays   int     `json:"stay_days"`
	RoomPrice  float64 `json:"room_price"`
	RoomFee    float64 `json:"room_fee"`
	ACFee      float64 `json:"ac_fee"`
	Deposit    float64 `json:"deposit"`
	TotalFee   float64 `json:"total_fee"`
}

// SessionDetail 空调详单条目
type SessionDetail struct {
	RoomID           string    `json:"room_id"`
	RequestTime      time.Time `json:"request_time"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Duration         int       `json:"duration"`
	FanSpeed         string    `json:"fan_speed"`
	Fee              float64   `json:"fee"`
	TotalFeeSnapshot float64   `json:"total_fee_snapshot"`
}

// SessionSource 详单数据源
type SessionSource interface {
	SessionsByRoom(roomID string) ([]SessionDetail, error)
}

// Service 账单服务: 房费按天数结算，空调费取累计值，押金单列。
type Service struct {
	core     *core.Core
	sessions SessionSource
}

// NewService 创建账单服务。sessions 为 nil 时详单查询返回空列表。
func NewService(c *core.Core, sessions SessionSource) *Service {
	return &Service{core: c, sessions: sessions}
}

// Bill 生成房间当前账单
func (s *Service) Bill(roomID string) (*Bill, error) {
	st, err := s.core.Status(roomID)
	if err != nil {
		return nil, err
	}
	if st.IsFree {
		return nil, core.ErrRoomNotOccupied
	}
	roomFee := st.RoomPrice * float64(st.StayDays)
	return &Bill{
		RoomID:     st.RoomID,
		TenantName: st.TenantName,
		StayDays:   st.StayDays,
		RoomPrice:  st.RoomPrice,
		RoomFee:    roomFee,
		ACFee:      st.TotalFee,
		Deposit:    st.Deposit,
		TotalFee:   roomFee + st.TotalFee + st.Deposit,
	}, nil
}

// Sessions 导出房间全部空调详单
func (s *Service) Sessions(roomID string) ([]SessionDetail, error) {
	if _, err := s.core.Status(roomID); err != nil {
		return nil, err
	}
	if s.sessions == nil {
		return []SessionDetail{}, nil
	}
	rows, err := s.sessions.SessionsByRoom(roomID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []SessionDetail{}
	}
	return rows, nil
}
