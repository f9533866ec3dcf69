// internal/handlers/sim_handler.go

package handlers

import (
	"github.com/gin-gonic/gin"

	"achotel/internal/core"
)

// 仿真推进请求
type TickRequest struct {
	Seconds int `json:"seconds"`
}

// SimHandler 仿真模式控制: 挂起实时时钟, 手动推进模拟秒。
type SimHandler struct {
	core *core.Core
}

func NewSimHandler(c *core.Core) *SimHandler {
	return &SimHandler{core: c}
}

// Start 进入仿真模式
func (h *SimHandler) Start(c *gin.Context) {
	h.core.StartSim()
	ok(c, gin.H{"simulation": h.core.InSimulation(), "tick": h.core.TickCount()})
}

// Tick 推进指定模拟秒数, 缺省 1 秒
func (h *SimHandler) Tick(c *gin.Context) {
	req := TickRequest{Seconds: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "请求格式错误: "+err.Error())
			return
		}
	}
	if err := h.core.Advance(req.Seconds); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"tick": h.core.TickCount()})
}

// Stop 退出仿真模式
func (h *SimHandler) Stop(c *gin.Context) {
	h.core.StopSim()
	ok(c, gin.H{"simulation": h.core.InSimulation(), "tick": h.core.TickCount()})
}
