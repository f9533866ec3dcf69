// api/router.go

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"achotel/internal/handlers"
	"achotel/middleware"
)

func SetupRouter(
	roomHandler *handlers.RoomHandler,
	acHandler *handlers.ACHandler,
	billingHandler *handlers.BillingHandler,
	simHandler *handlers.SimHandler,
	metricsHandler http.Handler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Cors())
	router.Use(middleware.Logging())

	api := router.Group("/api")
	{
		// 房间与调度状态
		api.GET("/rooms", roomHandler.List)
		api.GET("/queues", roomHandler.Queues)
		api.GET("/room/:id/status", roomHandler.Status)

		// 前台
		api.POST("/check_in", roomHandler.CheckIn)
		api.POST("/check_out", roomHandler.CheckOut)

		// 空调控制
		api.POST("/room/:id/control", acHandler.Control)

		// 账单与详单
		api.GET("/room/:id/bill", billingHandler.Bill)
		api.GET("/room/:id/sessions", billingHandler.Sessions)

		// 仿真时钟
		test := api.Group("/test")
		{
			test.POST("/start", simHandler.Start)
			test.POST("/tick", simHandler.Tick)
			test.POST("/stop", simHandler.Stop)
		}
	}

	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	return router
}
