package db

import (
	"time"

	"gorm.io/gorm"

	"achotel/internal/billing"
	"achotel/internal/core"
	"achotel/internal/room"
)

// Store 将各仓库聚合为控制核心的持久化端口
type Store struct {
	CheckIns *CheckInRepository
	States   *RoomStateRepository
	Sessions *SessionRepository
}

// NewStore 创建持久化端口实现
func NewStore(gdb *gorm.DB) *Store {
	return &Store{
		CheckIns: NewCheckInRepository(gdb),
		States:   NewRoomStateRepository(gdb),
		Sessions: NewSessionRepository(gdb),
	}
}

var (
	_ core.Store            = (*Store)(nil)
	_ billing.SessionSource = (*Store)(nil)
)

func (s *Store) AddCheckIn(row core.TenantRow, now time.Time) error {
	return s.CheckIns.Add(row.RoomID, row.TenantID, row.TenantName, row.TenantPhone, row.StayDays, now)
}

func (s *Store) CloseCheckIn(roomID string, now time.Time) error {
	return s.CheckIns.Close(roomID, now)
}

func (s *Store) UpdateStayDays(roomID string, days int) error {
	return s.CheckIns.UpdateStayDays(roomID, days)
}

func (s *Store) ActiveCheckIns() ([]core.TenantRow, error) {
	rows, err := s.CheckIns.Active()
	if err != nil {
		return nil, err
	}
	out := make([]core.TenantRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, core.TenantRow{
			RoomID:      r.RoomID,
			TenantID:    r.TenantID,
			TenantName:  r.TenantName,
			TenantPhone: r.TenantPhone,
			StayDays:    r.StayDays,
		})
	}
	return out, nil
}

func (s *Store) SaveRoomState(row core.StateRow) error {
	return s.States.Upsert(&RoomState{
		RoomID:      row.RoomID,
		PowerOn:     row.PowerOn,
		FanSpeed:    row.FanSpeed,
		TargetTemp:  row.TargetTemp,
		CurrentTemp: row.CurrentTemp,
		TotalFee:    row.TotalFee,
		Duration:    row.Duration,
	})
}

func (s *Store) AllRoomStates() ([]core.StateRow, error) {
	rows, err := s.States.All()
	if err != nil {
		return nil, err
	}
	out := make([]core.StateRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, core.StateRow{
			RoomID:      r.RoomID,
			PowerOn:     r.PowerOn,
			FanSpeed:    r.FanSpeed,
			TargetTemp:  r.TargetTemp,
			CurrentTemp: r.CurrentTemp,
			TotalFee:    r.TotalFee,
			Duration:    r.Duration,
		})
	}
	return out, nil
}

func (s *Store) SessionsByRoom(roomID string) ([]billing.SessionDetail, error) {
	rows, err := s.Sessions.ByRoom(roomID)
	if err != nil {
		return nil, err
	}
	out := make([]billing.SessionDetail, 0, len(rows))
	for _, r := range rows {
		out = append(out, billing.SessionDetail{
			RoomID:           r.RoomID,
			RequestTime:      r.RequestTime,
			StartTime:        r.StartTime,
			EndTime:          r.EndTime,
			Duration:         r.Duration,
			FanSpeed:         r.FanSpeed,
			Fee:              r.Fee,
			TotalFeeSnapshot: r.TotalFeeSnapshot,
		})
	}
	return out, nil
}

func (s *Store) LogSession(rec *room.SessionRecord) error {
	return s.Sessions.Log(&ACSession{
		RoomID:           rec.RoomID,
		RequestTime:      rec.RequestTime,
		StartTime:        rec.StartTime,
		EndTime:          rec.EndTime,
		Duration:         rec.Duration,
		FanSpeed:         string(rec.FanSpeed),
		Fee:              rec.Fee,
		TotalFeeSnapshot: rec.TotalFeeSnapshot,
	})
}
