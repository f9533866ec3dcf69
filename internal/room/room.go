// internal/room/room.go
// Package room 实现单个房间的温度积分、计费与租客状态。
// Room 是纯数据对象：Tick 是确定性的，不做任何 I/O，
// 调度归属(是否在服务/等待队列)由上层驱动器维护。
package room

import (
	"math"
	"time"

	"achotel/internal/types"
)

// SpeedStat 单一风速档位的累计服务统计
type SpeedStat struct {
	Seconds int     `json:"seconds"`
	Fee     float64 `json:"fee"`
}

// sessionCursor 当前未关闭的空调会话游标
type sessionCursor struct {
	requestTime     time.Time
	startTime       time.Time
	speed           types.FanSpeed
	feeAtStart      float64
	durationAtStart int
}

// SessionRecord 一段已结束的空调会话(详单行)
type SessionRecord struct {
	RoomID           string
	RequestTime      time.Time
	StartTime        time.Time
	EndTime          time.Time
	Duration         int
	FanSpeed         types.FanSpeed
	Fee              float64
	TotalFeeSnapshot float64
}

// Room 房间状态
type Room struct {
	RoomID   string
	Floor    int
	RoomType string
	Price    float64 // 每晚房价
	Deposit  float64

	// 热状态
	InitialTemp float64 // 环境温度，停止服务后向其回温
	CurrentTemp float64
	TargetTemp  float64

	// 空调状态
	PowerOn  bool
	IsActive bool // 是否正在被服务
	FanSpeed types.FanSpeed

	// 计费统计
	TotalFee      float64
	Duration      int // 累计服务秒数
	SpeedStats    map[types.FanSpeed]*SpeedStat
	DispatchCount int // 进入等待队列的次数

	// 租客信息
	TenantID    string
	TenantName  string
	TenantPhone string
	StayDays    int
	IsFree      bool

	session *sessionCursor
}

// New 创建一个房间，初始为空闲、关机状态
func New(roomID string, floor int, price, initialTemp, targetTemp float64) *Room {
	return &Room{
		RoomID:      roomID,
		Floor:       floor,
		RoomType:    "standard",
		Price:       price,
		InitialTemp: initialTemp,
		CurrentTemp: initialTemp,
		TargetTemp:  targetTemp,
		FanSpeed:    types.SpeedMid,
		IsFree:      true,
		SpeedStats:  make(map[types.FanSpeed]*SpeedStat),
	}
}

// Tick 推进一个模拟秒。
// 服务中: 按风速档位积分温度并计费;
// 关机或空闲: 向环境温度回温，温差 0.01 以内停止。
func (r *Room) Tick() {
	if !r.PowerOn {
		r.driftToInitial()
		return
	}
	if r.IsActive {
		rate := types.FeeRates[r.FanSpeed]
		step := types.TempRates[r.FanSpeed]

		r.TotalFee += rate
		r.Duration++
		st := r.statFor(r.FanSpeed)
		st.Seconds++
		st.Fee += rate

		if r.CurrentTemp > r.TargetTemp {
			r.CurrentTemp -= step
		} else {
			r.CurrentTemp += step
		}
		return
	}
	// 开机但未被服务，与关机一样回温
	r.driftToInitial()
}

func (r *Room) driftToInitial() {
	diff := r.CurrentTemp - r.InitialTemp
	if math.Abs(diff) <= types.TargetEpsilon {
		return
	}
	if diff > 0 {
		r.CurrentTemp -= types.ReturnRate
	} else {
		r.CurrentTemp += types.ReturnRate
	}
}

// TargetReached 当前温度是否已达目标 (严格小于阈值)
func (r *Room) TargetReached() bool {
	return math.Abs(r.CurrentTemp-r.TargetTemp) < types.TargetEpsilon
}

// NeedsService 空闲房间温差是否超过重新请求服务的阈值
func (r *Room) NeedsService() bool {
	return math.Abs(r.CurrentTemp-r.TargetTemp) > types.ReactivateDelta
}

func (r *Room) statFor(speed types.FanSpeed) *SpeedStat {
	st, ok := r.SpeedStats[speed]
	if !ok {
		st = &SpeedStat{}
		r.SpeedStats[speed] = st
	}
	return st
}

// OpenSession 开启一段新的计费会话。已有会话时不重复开启。
func (r *Room) OpenSession(now time.Time) {
	if r.session != nil {
		return
	}
	r.session = &sessionCursor{
		requestTime:     now,
		startTime:       now,
		speed:           r.FanSpeed,
		feeAtStart:      r.TotalFee,
		durationAtStart: r.Duration,
	}
}

// CloseSession 关闭当前会话并返回详单记录。无会话时返回 nil。
func (r *Room) CloseSession(now time.Time) *SessionRecord {
	if r.session == nil {
		return nil
	}
	s := r.session
	r.session = nil
	return &SessionRecord{
		RoomID:           r.RoomID,
		RequestTime:      s.requestTime,
		StartTime:        s.startTime,
		EndTime:          now,
		Duration:         r.Duration - s.durationAtStart,
		FanSpeed:         s.speed,
		Fee:              r.TotalFee - s.feeAtStart,
		TotalFeeSnapshot: r.TotalFee,
	}
}

// HasOpenSession 是否存在未关闭的会话
func (r *Room) HasOpenSession() bool {
	return r.session != nil
}

// CheckIn 办理入住
func (r *Room) CheckIn(tenantID, name, phone string, days int) {
	r.TenantID = tenantID
	r.TenantName = name
	r.TenantPhone = phone
	r.StayDays = days
	r.IsFree = false
}

// CheckOut 清空租客信息。空调状态由上层负责关断。
func (r *Room) CheckOut() {
	r.TenantID = ""
	r.TenantName = ""
	r.TenantPhone = ""
	r.StayDays = 0
	r.IsFree = true
}
