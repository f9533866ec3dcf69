package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"achotel/internal/core"
)

type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
	Err  string      `json:"err,omitempty"`
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Msg: "ok", Data: data})
}

// fail 将核心错误映射为 HTTP 状态码
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrUnknownRoom):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrRoomNotOccupied):
		status = http.StatusForbidden
	case errors.Is(err, core.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrNotInSimulation):
		status = http.StatusConflict
	}
	c.JSON(status, Response{Code: status, Msg: "error", Err: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Msg: "error", Err: msg})
}
