// internal/core/driver.go
// 时钟驱动: 以 1 秒为步长推进调度与温度/费用积分。
// 实时模式下由后台 goroutine 按秒驱动; 仿真模式下时钟挂起，
// 由 Advance 同步推进指定步数，用于生成确定性的测试轨迹。
package core

import (
	"time"

	"achotel/internal/events"
	"achotel/internal/logger"
)

// step 推进一个模拟秒。每一步的子顺序固定:
// 时间片老化 -> 空闲回温补偿请求 -> 达温释放 -> 状态积分 -> 一致性修复。
// 该顺序保证达温房间当秒不再计费，刚空闲的房间最早下一秒重新获得服务。
func (c *Core) step() {
	c.tick++
	c.clock = c.clock.Add(time.Second)

	c.sched.Tick(c.tick)
	c.applyTransitions()

	for _, id := range c.roomIDs {
		r := c.rooms[id]

		// 开机空闲且未排队的房间，温差超限后自动重新请求服务
		if r.PowerOn && !r.IsActive && !c.sched.IsWaiting(id) && r.NeedsService() {
			logger.Debug("[AutoReactivate] 房间 %s 温差超过 1.0, 重新请求服务", id)
			c.sched.Request(id, r.FanSpeed, c.tick)
			c.applyTransitions()
		}

		// 达到目标温度，释放服务槽位
		if r.IsActive && r.TargetReached() {
			logger.Info("[ReachedTarget] 房间 %s 达到目标温度, 释放服务", id)
			c.sched.Release(id, c.tick)
			c.applyTransitions()
			r.IsActive = false
			c.bus.Publish(events.Event{Type: events.EventTargetReached, RoomID: id, Timestamp: c.clock})
		}

		r.Tick()

		// 关机房间残留在队列中属于状态不一致，强制释放自愈
		if !r.PowerOn && c.sched.Contains(id) {
			logger.Warn("[Repair] 关机房间 %s 仍在调度队列中, 强制释放", id)
			c.sched.Release(id, c.tick)
			c.applyTransitions()
			r.IsActive = false
		}
	}

	if c.cfg.SnapshotInterval > 0 && c.tick%int64(c.cfg.SnapshotInterval) == 0 {
		c.flushStates()
	}
}

// flushStates 落盘所有有意义的房间快照
func (c *Core) flushStates() {
	for _, id := range c.roomIDs {
		r := c.rooms[id]
		if !r.IsFree || r.PowerOn || r.TotalFee > 0 {
			c.persistState(r)
		}
	}
}

// Run 启动实时驱动循环 (1Hz)。仿真模式下循环空转。
func (c *Core) Run() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	go func() {
		defer close(c.loopDone)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.mu.Lock()
				if !c.simMode {
					c.step()
				}
				c.mu.Unlock()
			case <-c.stopChan:
				return
			}
		}
	}()
	logger.Info("时钟驱动已启动 (1 tick/s)")
}

// Stop 停止驱动循环并冲刷全部快照
func (c *Core) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
	c.mu.Lock()
	wasRunning := c.running
	c.running = false
	c.mu.Unlock()
	if wasRunning {
		<-c.loopDone
	}

	c.mu.Lock()
	c.flushStates()
	c.mu.Unlock()
	logger.Info("时钟驱动已停止, 快照已冲刷")
}

// StartSim 切换到仿真模式: 实时循环挂起，时钟仅响应 Advance
func (c *Core) StartSim() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.simMode = true
	logger.Info("进入仿真模式")
}

// StopSim 退出仿真模式，恢复实时驱动
func (c *Core) StopSim() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.simMode = false
	logger.Info("退出仿真模式")
}

// Advance 仿真模式下同步推进 seconds 个模拟秒
func (c *Core) Advance(seconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.simMode {
		return ErrNotInSimulation
	}
	if seconds < 0 {
		return ErrInvalidArgument
	}
	for i := 0; i < seconds; i++ {
		c.step()
	}
	return nil
}

// InSimulation 当前是否处于仿真模式
func (c *Core) InSimulation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.simMode
}

// TickCount 已推进的逻辑秒数 (测试与监控用)
func (c *Core) TickCount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick
}
