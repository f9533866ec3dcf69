// internal/core/core.go
// Package core 将房间状态、调度器与持久化端口组合成唯一的控制核心。
//
// 并发模型: 单写者。所有状态变更都发生在命令处理或时钟步进里，
// 两者由同一把互斥锁串行化；状态查询在锁内拷贝出快照。
package core

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"achotel/internal/config"
	"achotel/internal/events"
	"achotel/internal/logger"
	"achotel/internal/room"
	"achotel/internal/scheduler"
	"achotel/internal/types"
)

// ControlCommand 空调控制指令，字段为空表示不变更
type ControlCommand struct {
	PowerOn    *bool    `json:"power_on,omitempty"`
	TargetTemp *float64 `json:"target_temp,omitempty"`
	FanSpeed   *string  `json:"fan_speed,omitempty"`
}

// Status 房间状态快照
type Status struct {
	RoomID        string                             `json:"room_id"`
	Floor         int                                `json:"floor"`
	RoomType      string                             `json:"room_type"`
	PowerOn       bool                               `json:"power_on"`
	IsActive      bool                               `json:"is_active"`
	IsWaiting     bool                               `json:"is_waiting"`
	FanSpeed      types.FanSpeed                     `json:"fan_speed"`
	InitialTemp   float64                            `json:"initial_temp"`
	CurrentTemp   float64                            `json:"current_temp"`
	TargetTemp    float64                            `json:"target_temp"`
	TotalFee      float64                            `json:"total_fee"`
	Duration      int                                `json:"duration"`
	SpeedStats    map[types.FanSpeed]room.SpeedStat  `json:"speed_stats"`
	DispatchCount int                                `json:"dispatch_count"`
	RoomPrice     float64                            `json:"room_price"`
	Deposit       float64                            `json:"deposit"`
	IsFree        bool                               `json:"is_free"`
	TenantID      string                             `json:"tenant_id,omitempty"`
	TenantName    string                             `json:"tenant_name,omitempty"`
	TenantPhone   string                             `json:"tenant_phone,omitempty"`
	StayDays      int                                `json:"stay_days"`
}

// QueueStatus 调度队列快照
type QueueStatus struct {
	Service []scheduler.ServiceEntry `json:"service"`
	Waiting []scheduler.WaitEntry    `json:"waiting"`
}

// Core 控制核心
type Core struct {
	mu    sync.Mutex
	cfg   *config.Config
	store Store
	bus   *events.EventBus

	rooms   map[string]*room.Room
	roomIDs []string // 确定性遍历顺序
	sched   *scheduler.Scheduler

	tick  int64     // 逻辑时钟(秒)
	clock time.Time // 挂钟镜像，仅用于落盘时间戳

	simMode  bool
	running  bool
	stopChan chan struct{}
	loopDone chan struct{}
	stopOnce sync.Once
}

// New 按配置构建控制核心，房间常驻内存
func New(cfg *config.Config, store Store, bus *events.EventBus) *Core {
	if store == nil {
		store = NopStore{}
	}
	if bus == nil {
		bus = events.NewEventBus()
	}
	c := &Core{
		cfg:      cfg,
		store:    store,
		bus:      bus,
		rooms:    make(map[string]*room.Room),
		sched:    scheduler.New(cfg.Scheduler.MaxServices, cfg.Scheduler.WaitBudget),
		clock:    time.Now(),
		stopChan: make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	layout := cfg.Rooms
	for floor := 1; floor <= layout.Floors; floor++ {
		for n := 1; n <= layout.RoomsPerFloor; n++ {
			id := fmt.Sprintf("%d%02d", floor, n)
			r := room.New(id, floor, layout.PriceForFloor(floor),
				layout.InitialTempFor(id), layout.TargetTemp)
			r.Deposit = layout.Deposit
			c.rooms[id] = r
			c.roomIDs = append(c.roomIDs, id)
		}
	}
	sort.Strings(c.roomIDs)
	return c
}

// Restore 从持久化端口恢复在住记录与房间快照
func (c *Core) Restore() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	states, err := c.store.AllRoomStates()
	if err != nil {
		return fmt.Errorf("恢复房间状态失败: %v", err)
	}
	for _, st := range states {
		r, ok := c.rooms[st.RoomID]
		if !ok {
			continue
		}
		r.PowerOn = st.PowerOn
		if speed, err := types.ParseFanSpeed(st.FanSpeed); err == nil {
			r.FanSpeed = speed
		}
		r.TargetTemp = st.TargetTemp
		r.CurrentTemp = st.CurrentTemp
		r.TotalFee = st.TotalFee
		r.Duration = st.Duration
	}

	tenants, err := c.store.ActiveCheckIns()
	if err != nil {
		return fmt.Errorf("恢复入住记录失败: %v", err)
	}
	for _, t := range tenants {
		r, ok := c.rooms[t.RoomID]
		if !ok {
			continue
		}
		r.CheckIn(t.TenantID, t.TenantName, t.TenantPhone, t.StayDays)
	}

	// 重新开机的房间恢复会话并重新排队
	for _, id := range c.roomIDs {
		r := c.rooms[id]
		if r.PowerOn {
			r.OpenSession(c.clock)
			c.sched.Request(id, r.FanSpeed, c.tick)
		}
	}
	c.applyTransitions()
	logger.Info("状态恢复完成: %d 间在住, %d 条快照", len(tenants), len(states))
	return nil
}

// CheckIn 办理入住。days 为 0 表示天数随关机次数累计。
func (c *Core) CheckIn(roomID, tenantID, name, phone string, days int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[roomID]
	if !ok {
		return ErrUnknownRoom
	}
	if tenantID == "" || name == "" {
		return fmt.Errorf("%w: 证件号与姓名不能为空", ErrInvalidArgument)
	}
	if days < 0 {
		return fmt.Errorf("%w: 入住天数不能为负", ErrInvalidArgument)
	}

	// 覆盖入住: 先结算上一位住客未关闭的会话, 避免清零后产生负数详单
	if rec := r.CloseSession(c.clock); rec != nil {
		c.logSession(rec)
	}

	// 新住客从零开始计费
	r.TotalFee = 0
	r.Duration = 0
	r.DispatchCount = 0
	r.SpeedStats = make(map[types.FanSpeed]*room.SpeedStat)
	r.CheckIn(tenantID, name, phone, days)

	// 空调未关断时以新住客的零基线重开会话
	if r.PowerOn {
		r.OpenSession(c.clock)
	}

	if err := c.store.AddCheckIn(TenantRow{
		RoomID:      roomID,
		TenantID:    tenantID,
		TenantName:  name,
		TenantPhone: phone,
		StayDays:    days,
	}, c.clock); err != nil {
		logger.Error("写入入住记录失败 - 房间 %s: %v", roomID, err)
	}
	c.persistState(r)
	c.bus.Publish(events.Event{Type: events.EventRoomCheckIn, RoomID: roomID, Timestamp: c.clock})
	logger.Info("[CheckIn] 房间 %s 入住: %s (%d 天)", roomID, name, days)
	return nil
}

// CheckOut 办理退房: 强制关机、释放调度资源、关闭会话、清空租客并落盘。
func (c *Core) CheckOut(roomID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[roomID]
	if !ok {
		return ErrUnknownRoom
	}
	if r.IsFree {
		return ErrRoomNotOccupied
	}

	if rec := r.CloseSession(c.clock); rec != nil {
		c.logSession(rec)
	}
	r.PowerOn = false
	c.sched.Release(roomID, c.tick)
	c.applyTransitions()
	r.IsActive = false

	if err := c.store.CloseCheckIn(roomID, c.clock); err != nil {
		logger.Error("关闭入住记录失败 - 房间 %s: %v", roomID, err)
	}
	r.CheckOut()
	c.persistState(r)
	c.bus.Publish(events.Event{Type: events.EventRoomCheckOut, RoomID: roomID, Timestamp: c.clock})
	logger.Info("[CheckOut] 房间 %s 退房", roomID)
	return nil
}

// Control 处理空调控制指令。同一指令内的生效顺序固定为: 电源、目标温度、风速。
func (c *Core) Control(roomID string, cmd ControlCommand) (*Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.rooms[roomID]
	if !ok {
		return nil, ErrUnknownRoom
	}
	if r.IsFree {
		return nil, ErrRoomNotOccupied
	}

	if cmd.FanSpeed != nil {
		if _, err := types.ParseFanSpeed(*cmd.FanSpeed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
	}
	if cmd.TargetTemp != nil {
		if t := *cmd.TargetTemp; math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("%w: 目标温度不是有效数值", ErrInvalidArgument)
		}
	}

	if cmd.PowerOn != nil {
		c.applyPower(r, *cmd.PowerOn)
	}

	if cmd.TargetTemp != nil {
		r.TargetTemp = *cmd.TargetTemp
		logger.Info("[Control] 房间 %s 目标温度 -> %.1f", roomID, r.TargetTemp)
		c.bus.Publish(events.Event{Type: events.EventTargetTempChange, RoomID: roomID, Timestamp: c.clock})
		if r.PowerOn && !r.IsActive && r.NeedsService() {
			c.sched.Request(roomID, r.FanSpeed, c.tick)
			c.applyTransitions()
		}
	}

	if cmd.FanSpeed != nil {
		speed, _ := types.ParseFanSpeed(*cmd.FanSpeed)
		c.applySpeed(r, speed)
	}

	c.persistState(r)
	st := c.statusLocked(r)
	return &st, nil
}

// applyPower 电源变更。关机边沿累加入住天数并结算会话，开机边沿开启新会话。
func (c *Core) applyPower(r *room.Room, on bool) {
	switch {
	case r.PowerOn && !on:
		r.StayDays++
		if err := c.store.UpdateStayDays(r.RoomID, r.StayDays); err != nil {
			logger.Error("更新入住天数失败 - 房间 %s: %v", r.RoomID, err)
		}
		if rec := r.CloseSession(c.clock); rec != nil {
			c.logSession(rec)
		}
		c.bus.Publish(events.Event{Type: events.EventPowerOff, RoomID: r.RoomID, Timestamp: c.clock})
	case !r.PowerOn && on:
		r.OpenSession(c.clock)
		c.bus.Publish(events.Event{Type: events.EventPowerOn, RoomID: r.RoomID, Timestamp: c.clock})
	}
	r.PowerOn = on
	logger.Info("[Control] 房间 %s 电源 -> %v", r.RoomID, on)

	if on {
		c.sched.Request(r.RoomID, r.FanSpeed, c.tick)
	} else {
		c.sched.Release(r.RoomID, c.tick)
	}
	c.applyTransitions()
	if !on {
		r.IsActive = false
	}
}

// applySpeed 风速变更。开机状态下切换风速会切分计费会话并更新队列条目。
func (c *Core) applySpeed(r *room.Room, speed types.FanSpeed) {
	if speed == r.FanSpeed {
		return
	}
	logger.Info("[Control] 房间 %s 风速 %s -> %s", r.RoomID, r.FanSpeed, speed)
	if r.PowerOn {
		if rec := r.CloseSession(c.clock); rec != nil {
			c.logSession(rec)
		}
		r.FanSpeed = speed
		r.OpenSession(c.clock)
		c.sched.Request(r.RoomID, speed, c.tick)
		c.applyTransitions()
	} else {
		r.FanSpeed = speed
	}
	c.bus.Publish(events.Event{Type: events.EventSpeedChange, RoomID: r.RoomID, Timestamp: c.clock,
		Data: events.ServiceEventData{FanSpeed: speed}})
}

// Status 查询单个房间状态
func (c *Core) Status(roomID string) (*Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rooms[roomID]
	if !ok {
		return nil, ErrUnknownRoom
	}
	st := c.statusLocked(r)
	return &st, nil
}

// Rooms 按房间号顺序返回全部房间状态
func (c *Core) Rooms() []Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Status, 0, len(c.roomIDs))
	for _, id := range c.roomIDs {
		out = append(out, c.statusLocked(c.rooms[id]))
	}
	return out
}

// Queues 调度队列快照
func (c *Core) Queues() QueueStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return QueueStatus{
		Service: c.sched.ServiceEntries(),
		Waiting: c.sched.WaitEntries(),
	}
}

// QueueLengths 服务/等待队列长度 (监控用)
func (c *Core) QueueLengths() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sched.ServiceCount(), c.sched.WaitCount()
}

func (c *Core) statusLocked(r *room.Room) Status {
	stats := make(map[types.FanSpeed]room.SpeedStat, len(r.SpeedStats))
	for speed, st := range r.SpeedStats {
		stats[speed] = *st
	}
	return Status{
		RoomID:        r.RoomID,
		Floor:         r.Floor,
		RoomType:      r.RoomType,
		PowerOn:       r.PowerOn,
		IsActive:      r.IsActive,
		IsWaiting:     c.sched.IsWaiting(r.RoomID),
		FanSpeed:      r.FanSpeed,
		InitialTemp:   r.InitialTemp,
		CurrentTemp:   r.CurrentTemp,
		TargetTemp:    r.TargetTemp,
		TotalFee:      r.TotalFee,
		Duration:      r.Duration,
		SpeedStats:    stats,
		DispatchCount: r.DispatchCount,
		RoomPrice:     r.Price,
		Deposit:       r.Deposit,
		IsFree:        r.IsFree,
		TenantID:      r.TenantID,
		TenantName:    r.TenantName,
		TenantPhone:   r.TenantPhone,
		StayDays:      r.StayDays,
	}
}

// applyTransitions 消费调度器的状态迁移流水:
// 同步房间 is_active 标志、累计排队次数并发布对应事件。
func (c *Core) applyTransitions() {
	for _, tr := range c.sched.DrainTransitions() {
		r, ok := c.rooms[tr.RoomID]
		if !ok {
			continue
		}
		switch tr.Kind {
		case scheduler.EnterService:
			r.IsActive = true
			logger.Info("[Scheduler] 房间 %s 开始服务 (风速 %s)", tr.RoomID, tr.FanSpeed)
			c.bus.Publish(events.Event{Type: events.EventServiceStart, RoomID: tr.RoomID,
				Timestamp: c.clock, Data: events.ServiceEventData{FanSpeed: tr.FanSpeed}})
		case scheduler.EnterWait:
			r.IsActive = false
			r.DispatchCount++
			if tr.Preempted {
				logger.Info("[Scheduler] 房间 %s 被换出至等待队列", tr.RoomID)
				c.bus.Publish(events.Event{Type: events.EventServicePreempted, RoomID: tr.RoomID,
					Timestamp: c.clock, Data: events.ServiceEventData{FanSpeed: tr.FanSpeed}})
			} else {
				logger.Info("[Scheduler] 房间 %s 进入等待队列", tr.RoomID)
				c.bus.Publish(events.Event{Type: events.EventEnterWaitQueue, RoomID: tr.RoomID,
					Timestamp: c.clock, Data: events.ServiceEventData{FanSpeed: tr.FanSpeed}})
			}
		case scheduler.Leave:
			r.IsActive = false
			c.bus.Publish(events.Event{Type: events.EventServiceRelease, RoomID: tr.RoomID, Timestamp: c.clock})
		}
	}
}

// persistState 落盘单个房间快照，失败只记日志
func (c *Core) persistState(r *room.Room) {
	if err := c.store.SaveRoomState(StateRow{
		RoomID:      r.RoomID,
		PowerOn:     r.PowerOn,
		FanSpeed:    string(r.FanSpeed),
		TargetTemp:  r.TargetTemp,
		CurrentTemp: r.CurrentTemp,
		TotalFee:    r.TotalFee,
		Duration:    r.Duration,
	}); err != nil {
		logger.Error("落盘房间状态失败 - 房间 %s: %v", r.RoomID, err)
	}
}

func (c *Core) logSession(rec *room.SessionRecord) {
	if err := c.store.LogSession(rec); err != nil {
		logger.Error("写入详单失败 - 房间 %s: %v", rec.RoomID, err)
	}
}
