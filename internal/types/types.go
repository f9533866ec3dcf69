// internal/types/types.go

package types

import "fmt"

// FanSpeed 风速档位
type FanSpeed string

const (
	SpeedLow  FanSpeed = "Low"
	SpeedMid  FanSpeed = "Mid"
	SpeedHigh FanSpeed = "High"
)

// ParseFanSpeed 解析风速字符串
func ParseFanSpeed(s string) (FanSpeed, error) {
	switch FanSpeed(s) {
	case SpeedLow, SpeedMid, SpeedHigh:
		return FanSpeed(s), nil
	default:
		return "", fmt.Errorf("invalid fan speed: %q", s)
	}
}

// SpeedPriority 风速优先级映射 (高速 > 中速 > 低速)
var SpeedPriority = map[FanSpeed]int{
	SpeedLow:  1,
	SpeedMid:  2,
	SpeedHigh: 3,
}

// Priority 返回风速优先级，未知风速为 0
func Priority(speed FanSpeed) int {
	return SpeedPriority[speed]
}

// 计费费率 (元/秒)
var FeeRates = map[FanSpeed]float64{
	SpeedHigh: 1.0 / 60.0,
	SpeedMid:  1.0 / 120.0,
	SpeedLow:  1.0 / 180.0,
}

// 温度变化速率 (°C/秒)
var TempRates = map[FanSpeed]float64{
	SpeedHigh: 0.6 / 60.0,
	SpeedMid:  0.5 / 60.0,
	SpeedLow:  0.4 / 60.0,
}

// 回温速率: 0.5度/分钟
const ReturnRate = 0.5 / 60.0

const (
	// TargetEpsilon 达到目标温度的判定阈值 (严格小于)
	TargetEpsilon = 0.01
	// ReactivateDelta 空闲房间温差超过该值后自动重新请求服务
	ReactivateDelta = 1.0
)

const (
	// DefaultMaxServices 最大同时服务对象数
	DefaultMaxServices = 3
	// DefaultWaitBudget 等待队列时间片 (秒)
	DefaultWaitBudget = 120
)
