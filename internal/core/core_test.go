package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"achotel/internal/config"
	"achotel/internal/room"
	"achotel/internal/types"
)

// recordStore 记录所有写入的持久化端口假实现
type recordStore struct {
	NopStore
	states   map[string]StateRow
	sessions []*room.SessionRecord
	checkIns []TenantRow

	restoreStates   []StateRow
	restoreCheckIns []TenantRow
}

func newRecordStore() *recordStore {
	return &recordStore{states: make(map[string]StateRow)}
}

func (s *recordStore) AddCheckIn(row TenantRow, _ time.Time) error {
	s.checkIns = append(s.checkIns, row)
	return nil
}

func (s *recordStore) SaveRoomState(row StateRow) error {
	s.states[row.RoomID] = row
	return nil
}

func (s *recordStore) LogSession(rec *room.SessionRecord) error {
	s.sessions = append(s.sessions, rec)
	return nil
}

func (s *recordStore) AllRoomStates() ([]StateRow, error)   { return s.restoreStates, nil }
func (s *recordStore) ActiveCheckIns() ([]TenantRow, error) { return s.restoreCheckIns, nil }

func newTestCore(t *testing.T, store Store) *Core {
	t.Helper()
	cfg := config.Default()
	c := New(cfg, store, nil)
	c.StartSim()
	return c
}

func checkIn(t *testing.T, c *Core, roomID string) {
	t.Helper()
	require.NoError(t, c.CheckIn(roomID, "110101", "住客"+roomID, "13800000000", 0))
}

func powerOn(t *testing.T, c *Core, roomID string, speed types.FanSpeed) {
	t.Helper()
	on := true
	sp := string(speed)
	_, err := c.Control(roomID, ControlCommand{PowerOn: &on, FanSpeed: &sp})
	require.NoError(t, err)
}

func TestCheckInValidation(t *testing.T) {
	c := newTestCore(t, nil)

	assert.ErrorIs(t, c.CheckIn("999", "id", "name", "", 0), ErrUnknownRoom)
	assert.ErrorIs(t, c.CheckIn("101", "", "name", "", 0), ErrInvalidArgument)
	assert.ErrorIs(t, c.CheckIn("101", "id", "", "", 0), ErrInvalidArgument)
	assert.ErrorIs(t, c.CheckIn("101", "id", "name", "", -1), ErrInvalidArgument)

	assert.NoError(t, c.CheckIn("101", "id", "name", "", 2))
	st, err := c.Status("101")
	require.NoError(t, err)
	assert.False(t, st.IsFree)
	assert.Equal(t, 2, st.StayDays)
}

func TestControlValidation(t *testing.T) {
	c := newTestCore(t, nil)

	on := true
	_, err := c.Control("999", ControlCommand{PowerOn: &on})
	assert.ErrorIs(t, err, ErrUnknownRoom)

	// 空闲房间拒绝控制
	_, err = c.Control("101", ControlCommand{PowerOn: &on})
	assert.ErrorIs(t, err, ErrRoomNotOccupied)

	checkIn(t, c, "101")
	bad := "Turbo"
	_, err = c.Control("101", ControlCommand{FanSpeed: &bad})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSimulationGuards(t *testing.T) {
	cfg := config.Default()
	c := New(cfg, nil, nil)

	assert.ErrorIs(t, c.Advance(1), ErrNotInSimulation)

	c.StartSim()
	assert.ErrorIs(t, c.Advance(-1), ErrInvalidArgument)
	assert.NoError(t, c.Advance(10))
	assert.Equal(t, int64(10), c.TickCount())

	c.StopSim()
	assert.ErrorIs(t, c.Advance(1), ErrNotInSimulation)
}

func TestServiceSlotsAndWaiting(t *testing.T) {
	c := newTestCore(t, nil)
	for _, id := range []string{"101", "102", "103", "104"} {
		checkIn(t, c, id)
		powerOn(t, c, id, types.SpeedMid)
	}

	// 前三间直接服务, 第四间同级排队
	for _, id := range []string{"101", "102", "103"} {
		st, err := c.Status(id)
		require.NoError(t, err)
		assert.True(t, st.IsActive, "房间 %s 应在服务中", id)
	}
	st, err := c.Status("104")
	require.NoError(t, err)
	assert.False(t, st.IsActive)
	assert.True(t, st.IsWaiting)
	assert.Equal(t, 1, st.DispatchCount)

	service, waiting := c.QueueLengths()
	assert.Equal(t, 3, service)
	assert.Equal(t, 1, waiting)

	// 计费只发生在服务对象上
	require.NoError(t, c.Advance(60))
	st, _ = c.Status("101")
	assert.InDelta(t, 0.5, st.TotalFee, 1e-9) // Mid: 1/120 每秒
	st, _ = c.Status("104")
	assert.Zero(t, st.TotalFee)
}

func TestHighPriorityPreemption(t *testing.T) {
	c := newTestCore(t, nil)
	for _, id := range []string{"101", "102", "103"} {
		checkIn(t, c, id)
		powerOn(t, c, id, types.SpeedLow)
	}
	checkIn(t, c, "105")
	powerOn(t, c, "105", types.SpeedHigh)

	st, err := c.Status("105")
	require.NoError(t, err)
	assert.True(t, st.IsActive, "高风速应抢占低风速服务")

	// 被换出者进入等待队列并累计调度次数
	st, _ = c.Status("101")
	assert.False(t, st.IsActive)
	assert.True(t, st.IsWaiting)
	assert.Equal(t, 1, st.DispatchCount)
}

func TestTimeSliceRotation(t *testing.T) {
	c := newTestCore(t, nil)
	for _, id := range []string{"101", "102", "103", "104"} {
		checkIn(t, c, id)
		powerOn(t, c, id, types.SpeedHigh)
	}
	st, _ := c.Status("104")
	require.True(t, st.IsWaiting)

	// 105 号房间保持 35 度初始温度, 避免提前达温退出
	require.NoError(t, c.Advance(120))

	st, _ = c.Status("104")
	assert.True(t, st.IsActive, "时间片耗尽后等待者应轮转进入服务")
	st, _ = c.Status("101")
	assert.True(t, st.IsWaiting, "服务最久者应被轮转换出")
}

func TestTargetReachedReleaseAndReactivate(t *testing.T) {
	c := newTestCore(t, nil)
	// 102 初始 28.0, 目标 25.0, 高风速约 300 秒达温
	checkIn(t, c, "102")
	powerOn(t, c, "102", types.SpeedHigh)

	require.NoError(t, c.Advance(301))
	st, _ := c.Status("102")
	assert.False(t, st.IsActive, "达温后应释放服务")
	assert.True(t, st.PowerOn)
	assert.InDelta(t, 5.0, st.TotalFee, 1e-6)

	// 回温超过 1.0 度后自动重新请求服务
	require.NoError(t, c.Advance(130))
	st, _ = c.Status("102")
	assert.True(t, st.IsActive, "回温超限后应重新进入服务")

	// 重新服务后继续计费
	fee := st.TotalFee
	require.NoError(t, c.Advance(10))
	st, _ = c.Status("102")
	assert.Greater(t, st.TotalFee, fee)
}

func TestPowerOffReleasesAndCountsDay(t *testing.T) {
	c := newTestCore(t, nil)
	checkIn(t, c, "101")
	powerOn(t, c, "101", types.SpeedMid)
	require.NoError(t, c.Advance(10))

	off := false
	_, err := c.Control("101", ControlCommand{PowerOn: &off})
	require.NoError(t, err)

	st, _ := c.Status("101")
	assert.False(t, st.PowerOn)
	assert.False(t, st.IsActive)
	assert.False(t, st.IsWaiting)
	assert.Equal(t, 1, st.StayDays, "关机边沿累计一天")

	service, waiting := c.QueueLengths()
	assert.Zero(t, service)
	assert.Zero(t, waiting)
}

func TestSpeedChangeSplitsSessions(t *testing.T) {
	store := newRecordStore()
	c := newTestCore(t, store)
	checkIn(t, c, "105") // 初始 35.0, 不会提前达温
	powerOn(t, c, "105", types.SpeedHigh)

	require.NoError(t, c.Advance(60))
	mid := string(types.SpeedMid)
	_, err := c.Control("105", ControlCommand{FanSpeed: &mid})
	require.NoError(t, err)

	require.NoError(t, c.Advance(120))
	off := false
	_, err = c.Control("105", ControlCommand{PowerOn: &off})
	require.NoError(t, err)

	require.Len(t, store.sessions, 2, "调速与关机各结算一段会话")
	first, second := store.sessions[0], store.sessions[1]
	assert.Equal(t, types.SpeedHigh, first.FanSpeed)
	assert.Equal(t, 60, first.Duration)
	assert.InDelta(t, 1.0, first.Fee, 1e-9) // High: 60 秒 * 1/60
	assert.Equal(t, types.SpeedMid, second.FanSpeed)
	assert.Equal(t, 120, second.Duration)
	assert.InDelta(t, 1.0, second.Fee, 1e-9) // Mid: 120 秒 * 1/120
	assert.InDelta(t, 2.0, second.TotalFeeSnapshot, 1e-9)
}

func TestSnapshotFlush(t *testing.T) {
	store := newRecordStore()
	cfg := config.Default()
	cfg.SnapshotInterval = 5
	c := New(cfg, store, nil)
	c.StartSim()

	checkIn(t, c, "101")
	powerOn(t, c, "101", types.SpeedHigh)
	delete(store.states, "101") // 清掉控制命令触发的落盘

	require.NoError(t, c.Advance(5))
	row, ok := store.states["101"]
	require.True(t, ok, "周期快照应落盘开机房间")
	assert.True(t, row.PowerOn)
	assert.Equal(t, string(types.SpeedHigh), row.FanSpeed)
	assert.InDelta(t, 5.0/60.0, row.TotalFee, 1e-9)
}

func TestRestore(t *testing.T) {
	store := newRecordStore()
	store.restoreStates = []StateRow{{
		RoomID:      "101",
		PowerOn:     true,
		FanSpeed:    string(types.SpeedHigh),
		TargetTemp:  24.0,
		CurrentTemp: 30.0,
		TotalFee:    2.5,
		Duration:    300,
	}}
	store.restoreCheckIns = []TenantRow{{
		RoomID:     "101",
		TenantID:   "110101",
		TenantName: "住客",
		StayDays:   1,
	}}

	cfg := config.Default()
	c := New(cfg, store, nil)
	require.NoError(t, c.Restore())
	c.StartSim()

	st, err := c.Status("101")
	require.NoError(t, err)
	assert.True(t, st.PowerOn)
	assert.True(t, st.IsActive, "开机房间恢复后重新排队并获得服务")
	assert.False(t, st.IsFree)
	assert.Equal(t, "住客", st.TenantName)
	assert.Equal(t, 1, st.StayDays)
	assert.InDelta(t, 2.5, st.TotalFee, 1e-9)
	assert.InDelta(t, 30.0, st.CurrentTemp, 1e-9)
	assert.InDelta(t, 24.0, st.TargetTemp, 1e-9)
}

func TestCheckOut(t *testing.T) {
	store := newRecordStore()
	c := newTestCore(t, store)
	checkIn(t, c, "105")
	powerOn(t, c, "105", types.SpeedHigh)
	require.NoError(t, c.Advance(60))

	require.NoError(t, c.CheckOut("105"))

	st, _ := c.Status("105")
	assert.True(t, st.IsFree)
	assert.False(t, st.PowerOn)
	assert.False(t, st.IsActive)
	assert.Empty(t, st.TenantName)

	// 退房结算未关闭的会话
	require.Len(t, store.sessions, 1)
	assert.InDelta(t, 1.0, store.sessions[0].Fee, 1e-9)

	// 重复退房与空闲控制均被拒绝
	assert.ErrorIs(t, c.CheckOut("105"), ErrRoomNotOccupied)
	on := true
	_, err := c.Control("105", ControlCommand{PowerOn: &on})
	assert.ErrorIs(t, err, ErrRoomNotOccupied)
}

func TestCheckInResetsAccounting(t *testing.T) {
	c := newTestCore(t, nil)
	checkIn(t, c, "105")
	powerOn(t, c, "105", types.SpeedHigh)
	require.NoError(t, c.Advance(60))
	require.NoError(t, c.CheckOut("105"))

	// 新住客从零开始
	checkIn(t, c, "105")
	st, _ := c.Status("105")
	assert.Zero(t, st.TotalFee)
	assert.Zero(t, st.Duration)
	assert.Zero(t, st.DispatchCount)
	assert.Empty(t, st.SpeedStats)
}

func TestCheckInOverOccupiedRoomRebasesSession(t *testing.T) {
	store := newRecordStore()
	c := newTestCore(t, store)
	checkIn(t, c, "105") // 初始 35.0, 不会提前达温
	powerOn(t, c, "105", types.SpeedHigh)
	require.NoError(t, c.Advance(60))

	// 覆盖入住: 上一位住客的会话在清零前结算
	require.NoError(t, c.CheckIn("105", "220202", "李四", "", 0))
	require.Len(t, store.sessions, 1)
	assert.InDelta(t, 1.0, store.sessions[0].Fee, 1e-9)
	assert.Equal(t, 60, store.sessions[0].Duration)

	st, _ := c.Status("105")
	assert.Equal(t, "李四", st.TenantName)
	assert.True(t, st.PowerOn)
	assert.Zero(t, st.TotalFee)

	// 新住客的首段会话从零基线计费, 不得出现负数
	require.NoError(t, c.Advance(30))
	off := false
	_, err := c.Control("105", ControlCommand{PowerOn: &off})
	require.NoError(t, err)

	require.Len(t, store.sessions, 2)
	second := store.sessions[1]
	assert.InDelta(t, 0.5, second.Fee, 1e-9)
	assert.Equal(t, 30, second.Duration)
	assert.GreaterOrEqual(t, second.Fee, 0.0)
}

func TestQueueInvariants(t *testing.T) {
	c := newTestCore(t, nil)
	speeds := []types.FanSpeed{
		types.SpeedLow, types.SpeedHigh, types.SpeedMid,
		types.SpeedHigh, types.SpeedLow, types.SpeedMid,
	}
	ids := []string{"101", "103", "104", "105", "109", "110"}
	for i, id := range ids {
		checkIn(t, c, id)
		powerOn(t, c, id, speeds[i])
	}

	for step := 0; step < 10; step++ {
		require.NoError(t, c.Advance(50))

		q := c.Queues()
		assert.LessOrEqual(t, len(q.Service), c.sched.MaxSlots(), "服务队列不超过容量")
		if len(q.Waiting) > 0 {
			assert.Equal(t, c.sched.MaxSlots(), len(q.Service), "有等待者时服务队列必须满员")
		}

		inService := make(map[string]bool)
		for _, e := range q.Service {
			inService[e.RoomID] = true
		}
		for _, w := range q.Waiting {
			assert.False(t, inService[w.RoomID], "房间 %s 不能同时在两个队列", w.RoomID)
			assert.Greater(t, w.WaitBudget, 0)
			assert.LessOrEqual(t, w.WaitBudget, 120)
		}

		for _, st := range c.Rooms() {
			if st.IsActive {
				assert.True(t, inService[st.RoomID], "活跃房间 %s 必须在服务队列", st.RoomID)
			}
			if !st.PowerOn {
				assert.False(t, inService[st.RoomID] || st.IsWaiting, "关机房间 %s 不得占用调度资源", st.RoomID)
			}

			// 分风速统计与总账一致
			var feeSum float64
			var secSum int
			for _, sp := range st.SpeedStats {
				feeSum += sp.Fee
				secSum += sp.Seconds
			}
			assert.InDelta(t, st.TotalFee, feeSum, 1e-6, "房间 %s 分档费用合计应等于总费用", st.RoomID)
			assert.Equal(t, st.Duration, secSum, "房间 %s 分档时长合计应等于总时长", st.RoomID)
		}
	}
}

func TestReleasePromotesWaiterSameTick(t *testing.T) {
	c := newTestCore(t, nil)
	// 102 初始 28.0, 高风速约 300 秒达温; 其余两间温差大, 不会提前退出
	for _, id := range []string{"102", "101", "105"} {
		checkIn(t, c, id)
		powerOn(t, c, id, types.SpeedHigh)
	}
	// 低一档的等待者: 时间片到期也换不动高风速服务, 只能等空位
	checkIn(t, c, "103")
	powerOn(t, c, "103", types.SpeedMid)

	st, _ := c.Status("103")
	require.True(t, st.IsWaiting)

	// 102 达温释放后, 等待者在同一个 tick 内补位
	require.NoError(t, c.Advance(301))
	st, _ = c.Status("102")
	assert.False(t, st.IsActive)
	st, _ = c.Status("103")
	assert.True(t, st.IsActive, "释放产生的空位应立即分配给等待者")

	service, _ := c.QueueLengths()
	assert.Equal(t, 3, service)
}
