// internal/handlers/ac_handler.go

package handlers

import (
	"github.com/gin-gonic/gin"

	"achotel/internal/core"
)

// 空调控制请求, 指针字段缺省表示不变更
type ControlRequest struct {
	PowerOn    *bool    `json:"power_on,omitempty"`
	TargetTemp *float64 `json:"target_temp,omitempty"`
	FanSpeed   *string  `json:"fan_speed,omitempty"`
}

type ACHandler struct {
	core *core.Core
}

func NewACHandler(c *core.Core) *ACHandler {
	return &ACHandler{core: c}
}

// Control 空调控制。同一请求内按 电源 -> 目标温度 -> 风速 顺序生效。
func (h *ACHandler) Control(c *gin.Context) {
	var req ControlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求格式错误: "+err.Error())
		return
	}
	st, err := h.core.Control(c.Param("id"), core.ControlCommand{
		PowerOn:    req.PowerOn,
		TargetTemp: req.TargetTemp,
		FanSpeed:   req.FanSpeed,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, st)
}
