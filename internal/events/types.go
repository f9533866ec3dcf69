package events

import (
	"time"

	"achotel/internal/types"
)

// EventType 事件类型定义
type EventType int

const (
	// 空调控制事件
	EventPowerOn EventType = iota
	EventPowerOff
	EventTargetTempChange
	EventSpeedChange
	EventTargetReached

	// 房态事件
	EventRoomCheckIn
	EventRoomCheckOut

	// 调度事件
	EventServiceStart
	EventServicePreempted
	EventServiceRelease
	EventEnterWaitQueue
)

// Event 事件结构
type Event struct {
	Type      EventType   `json:"type"`
	RoomID    string      `json:"room_id"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Handler 事件处理函数类型
type Handler func(Event)

// ServiceEventData 调度事件附加数据
type ServiceEventData struct {
	FanSpeed types.FanSpeed `json:"fan_speed"`
}

// EventNames 事件类型的字符串表示
var EventNames = map[EventType]string{
	EventPowerOn:          "PowerOn",
	EventPowerOff:         "PowerOff",
	EventTargetTempChange: "TargetTempChange",
	EventSpeedChange:      "SpeedChange",
	EventTargetReached:    "TargetReached",
	EventRoomCheckIn:      "RoomCheckIn",
	EventRoomCheckOut:     "RoomCheckOut",
	EventServiceStart:     "ServiceStart",
	EventServicePreempted: "ServicePreempted",
	EventServiceRelease:   "ServiceRelease",
	EventEnterWaitQueue:   "EnterWaitQueue",
}
