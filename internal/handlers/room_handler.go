// internal/handlers/room_handler.go

package handlers

import (
	"github.com/gin-gonic/gin"

	"achotel/internal/core"
)

// 入住请求
type CheckInRequest struct {
	RoomID      string `json:"room_id" binding:"required"`
	TenantID    string `json:"tenant_id" binding:"required"`
	TenantName  string `json:"tenant_name" binding:"required"`
	TenantPhone string `json:"tenant_phone"`
	StayDays    int    `json:"stay_days"` // 缺省为 0, 按关机次数累计
}

// 退房请求
type CheckOutRequest struct {
	RoomID string `json:"room_id" binding:"required"`
}

type RoomHandler struct {
	core *core.Core
}

func NewRoomHandler(c *core.Core) *RoomHandler {
	return &RoomHandler{core: c}
}

// Status 查询单个房间状态
func (h *RoomHandler) Status(c *gin.Context) {
	st, err := h.core.Status(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, st)
}

// List 查询全部房间状态
func (h *RoomHandler) List(c *gin.Context) {
	ok(c, h.core.Rooms())
}

// Queues 查询调度队列快照
func (h *RoomHandler) Queues(c *gin.Context) {
	ok(c, h.core.Queues())
}

// CheckIn 办理入住
func (h *RoomHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求格式错误: "+err.Error())
		return
	}
	if err := h.core.CheckIn(req.RoomID, req.TenantID, req.TenantName, req.TenantPhone, req.StayDays); err != nil {
		fail(c, err)
		return
	}
	st, err := h.core.Status(req.RoomID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, st)
}

// CheckOut 办理退房
func (h *RoomHandler) CheckOut(c *gin.Context) {
	var req CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求格式错误: "+err.Error())
		return
	}
	if err := h.core.CheckOut(req.RoomID); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"room_id": req.RoomID})
}
