package core

import "errors"

// 对外暴露的业务错误，HTTP 层用 errors.Is 映射状态码
var (
	// ErrUnknownRoom 指令指向不存在的房间
	ErrUnknownRoom = errors.New("room not found")
	// ErrRoomNotOccupied 对空闲房间下发空调控制
	ErrRoomNotOccupied = errors.New("room not occupied")
	// ErrInvalidArgument 参数不合法 (天数为负、风速枚举外、温度非数值)
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotInSimulation 实时模式下请求单步推进
	ErrNotInSimulation = errors.New("not in simulation mode")
)
