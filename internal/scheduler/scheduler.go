// internal/scheduler/scheduler.go
// Package scheduler 实现中央空调的服务/等待两级队列调度。
//
// 调度器是一个纯数据结构: 只认识房间号和风速，不持有房间对象，
// 不加锁也不做 I/O。并发互斥与房间状态同步由持有它的驱动层负责。
// 队列成员的状态迁移以 Transition 流水的形式对外输出。
package scheduler

import (
	"achotel/internal/types"
)

// ServiceEntry 服务队列条目。StartTime 为最近一次进入服务的逻辑时刻，
// 每次重新进入服务都会重置。
type ServiceEntry struct {
	RoomID    string
	FanSpeed  types.FanSpeed
	StartTime int64
}

// WaitEntry 等待队列条目。WaitBudget 为剩余时间片(秒)，每个 Tick 递减。
type WaitEntry struct {
	RoomID     string
	FanSpeed   types.FanSpeed
	WaitBudget int
}

// TransitionKind 队列状态迁移类型
type TransitionKind int

const (
	// EnterService 进入服务队列 (直接分配/提升/抢占成功)
	EnterService TransitionKind = iota
	// EnterWait 进入等待队列 (满员排队/被抢占/时间片轮转换出)
	EnterWait
	// Leave 离开调度器 (释放)
	Leave
)

// Transition 一次队列状态迁移
type Transition struct {
	Kind      TransitionKind
	RoomID    string
	FanSpeed  types.FanSpeed
	Preempted bool // EnterWait 时表示由抢占/轮转换出产生，而非首次排队
}

// Scheduler 中央空调调度器
type Scheduler struct {
	maxSlots   int
	waitBudget int

	service []*ServiceEntry // 无序，按 StartTime 判定驱逐
	waiting []*WaitEntry    // 追加有序，先到先比较

	journal []Transition
}

// New 创建调度器。maxSlots/waitBudget 不合法时回退默认值。
func New(maxSlots, waitBudget int) *Scheduler {
	if maxSlots <= 0 {
		maxSlots = types.DefaultMaxServices
	}
	if waitBudget <= 0 {
		waitBudget = types.DefaultWaitBudget
	}
	return &Scheduler{
		maxSlots:   maxSlots,
		waitBudget: waitBudget,
	}
}

// Request 处理服务请求。
// 已在任一队列时只就地更新风速(不重置 StartTime / WaitBudget)；
// 否则空位直接分配，满员进入等待队列。最后统一执行再平衡。
func (s *Scheduler) Request(roomID string, speed types.FanSpeed, now int64) {
	if e := s.serviceEntry(roomID); e != nil {
		e.FanSpeed = speed
		s.rebalance(now)
		return
	}
	if w := s.waitEntry(roomID); w != nil {
		w.FanSpeed = speed
		s.rebalance(now)
		return
	}

	if len(s.service) < s.maxSlots {
		s.addToService(roomID, speed, now)
	} else {
		s.addToWaiting(roomID, speed, false)
	}
	s.rebalance(now)
}

// Release 将房间从其所在队列移除(未知房间为空操作)，然后再平衡。
func (s *Scheduler) Release(roomID string, now int64) {
	removed := false
	for i, e := range s.service {
		if e.RoomID == roomID {
			s.service = append(s.service[:i], s.service[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		for i, w := range s.waiting {
			if w.RoomID == roomID {
				s.waiting = append(s.waiting[:i], s.waiting[i+1:]...)
				removed = true
				break
			}
		}
	}
	if removed {
		s.journal = append(s.journal, Transition{Kind: Leave, RoomID: roomID})
	}
	s.rebalance(now)
}

// Tick 时间片老化: 递减所有等待者的剩余时间片。
// 时间片耗尽的等待者尝试换出服务时间最长(StartTime 最小)的服务对象；
// 被换出者优先级更高时换出失败，重置时间片继续等待。
func (s *Scheduler) Tick(now int64) {
	for _, w := range s.waiting {
		w.WaitBudget--
	}

	// 快照过期者，避免在遍历中修改队列
	var expired []*WaitEntry
	for _, w := range s.waiting {
		if w.WaitBudget <= 0 {
			expired = append(expired, w)
		}
	}
	for _, waiter := range expired {
		if s.waitEntry(waiter.RoomID) == nil {
			continue // 本轮已被先处理的过期者带动提升
		}
		victim := s.oldestService()
		if victim == nil {
			continue
		}
		if types.Priority(victim.FanSpeed) <= types.Priority(waiter.FanSpeed) {
			s.preempt(victim, waiter, now)
		} else {
			waiter.WaitBudget = s.waitBudget
		}
	}
}

// rebalance 核心调度:
// 1. 填充: 有空位时提升最高优先级(同级先到)的等待者;
// 2. 抢占: 满员时，最高优先级等待者严格高于最低优先级服务对象则换出后者。
func (s *Scheduler) rebalance(now int64) {
	for len(s.service) < s.maxSlots && len(s.waiting) > 0 {
		best := s.bestWaiter()
		s.removeWaiting(best.RoomID)
		s.addToService(best.RoomID, best.FanSpeed, now)
	}

	for len(s.service) >= s.maxSlots && len(s.waiting) > 0 {
		best := s.bestWaiter()
		victim := s.lowestService()
		if types.Priority(best.FanSpeed) <= types.Priority(victim.FanSpeed) {
			break
		}
		s.removeWaiting(best.RoomID)
		s.preempt(victim, best, now)
	}
}

// preempt 换出 victim、换入 waiter。victim 获得新的时间片。
func (s *Scheduler) preempt(victim *ServiceEntry, waiter *WaitEntry, now int64) {
	for i, e := range s.service {
		if e.RoomID == victim.RoomID {
			s.service = append(s.service[:i], s.service[i+1:]...)
			break
		}
	}
	s.removeWaiting(waiter.RoomID)
	s.addToWaiting(victim.RoomID, victim.FanSpeed, true)
	s.addToService(waiter.RoomID, waiter.FanSpeed, now)
}

func (s *Scheduler) addToService(roomID string, speed types.FanSpeed, now int64) {
	s.service = append(s.service, &ServiceEntry{
		RoomID:    roomID,
		FanSpeed:  speed,
		StartTime: now,
	})
	s.journal = append(s.journal, Transition{Kind: EnterService, RoomID: roomID, FanSpeed: speed})
}

func (s *Scheduler) addToWaiting(roomID string, speed types.FanSpeed, preempted bool) {
	if s.waitEntry(roomID) != nil {
		return
	}
	s.waiting = append(s.waiting, &WaitEntry{
		RoomID:     roomID,
		FanSpeed:   speed,
		WaitBudget: s.waitBudget,
	})
	s.journal = append(s.journal, Transition{
		Kind:      EnterWait,
		RoomID:    roomID,
		FanSpeed:  speed,
		Preempted: preempted,
	})
}

func (s *Scheduler) removeWaiting(roomID string) {
	for i, w := range s.waiting {
		if w.RoomID == roomID {
			s.waiting = append(s.waiting[:i], s.waiting[i+1:]...)
			return
		}
	}
}

// bestWaiter 最高优先级的等待者，同级取最早入队者
func (s *Scheduler) bestWaiter() *WaitEntry {
	var best *WaitEntry
	bestPrio := -1
	for _, w := range s.waiting {
		if p := types.Priority(w.FanSpeed); p > bestPrio {
			bestPrio = p
			best = w
		}
	}
	return best
}

// lowestService 最低优先级的服务对象，同级取服务最久(StartTime 最小)者
func (s *Scheduler) lowestService() *ServiceEntry {
	var victim *ServiceEntry
	for _, e := range s.service {
		if victim == nil {
			victim = e
			continue
		}
		pe, pv := types.Priority(e.FanSpeed), types.Priority(victim.FanSpeed)
		if pe < pv || (pe == pv && e.StartTime < victim.StartTime) {
			victim = e
		}
	}
	return victim
}

// oldestService StartTime 最小(服务最久)的服务对象
func (s *Scheduler) oldestService() *ServiceEntry {
	var oldest *ServiceEntry
	for _, e := range s.service {
		if oldest == nil || e.StartTime < oldest.StartTime {
			oldest = e
		}
	}
	return oldest
}

func (s *Scheduler) serviceEntry(roomID string) *ServiceEntry {
	for _, e := range s.service {
		if e.RoomID == roomID {
			return e
		}
	}
	return nil
}

func (s *Scheduler) waitEntry(roomID string) *WaitEntry {
	for _, w := range s.waiting {
		if w.RoomID == roomID {
			return w
		}
	}
	return nil
}

// InService 房间是否在服务队列中
func (s *Scheduler) InService(roomID string) bool {
	return s.serviceEntry(roomID) != nil
}

// IsWaiting 房间是否在等待队列中
func (s *Scheduler) IsWaiting(roomID string) bool {
	return s.waitEntry(roomID) != nil
}

// Contains 房间是否在任一队列中
func (s *Scheduler) Contains(roomID string) bool {
	return s.InService(roomID) || s.IsWaiting(roomID)
}

// ServiceEntries 服务队列快照
func (s *Scheduler) ServiceEntries() []ServiceEntry {
	out := make([]ServiceEntry, 0, len(s.service))
	for _, e := range s.service {
		out = append(out, *e)
	}
	return out
}

// WaitEntries 等待队列快照(入队顺序)
func (s *Scheduler) WaitEntries() []WaitEntry {
	out := make([]WaitEntry, 0, len(s.waiting))
	for _, w := range s.waiting {
		out = append(out, *w)
	}
	return out
}

// ServiceCount 当前服务对象数量
func (s *Scheduler) ServiceCount() int { return len(s.service) }

// WaitCount 当前等待对象数量
func (s *Scheduler) WaitCount() int { return len(s.waiting) }

// MaxSlots 服务容量
func (s *Scheduler) MaxSlots() int { return s.maxSlots }

// DrainTransitions 取出并清空自上次调用以来的状态迁移流水
func (s *Scheduler) DrainTransitions() []Transition {
	out := s.journal
	s.journal = nil
	return out
}
