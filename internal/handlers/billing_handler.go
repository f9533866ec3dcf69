// internal/handlers/billing_handler.go

package handlers

import (
	"github.com/gin-gonic/gin"

	"achotel/internal/billing"
)

type BillingHandler struct {
	svc *billing.Service
}

func NewBillingHandler(svc *billing.Service) *BillingHandler {
	return &BillingHandler{svc: svc}
}

// Bill 查询房间当前账单
func (h *BillingHandler) Bill(c *gin.Context) {
	bill, err := h.svc.Bill(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, bill)
}

// Sessions 导出房间空调详单
func (h *BillingHandler) Sessions(c *gin.Context) {
	rows, err := h.svc.Sessions(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, rows)
}
