// internal/app/app.go

package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"achotel/api"
	"achotel/internal/billing"
	"achotel/internal/config"
	"achotel/internal/core"
	"achotel/internal/db"
	"achotel/internal/events"
	"achotel/internal/handlers"
	"achotel/internal/logger"
	"achotel/internal/monitor"
)

type App struct {
	cfg      *config.Config
	eventBus *events.EventBus
	core     *core.Core
	billing  *billing.Service
	monitor  *monitor.Monitor
	server   *http.Server
}

func NewApp(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

func (a *App) Initialize() error {
	logger.SetLevelByName(a.cfg.LogLevel)

	gdb, err := db.Open(a.cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("初始化数据库失败: %v", err)
	}
	store := db.NewStore(gdb)

	a.eventBus = events.NewEventBus()
	a.core = core.New(a.cfg, store, a.eventBus)
	if err := a.core.Restore(); err != nil {
		return err
	}

	a.billing = billing.NewService(a.core, store)
	a.monitor = monitor.New(a.core, a.eventBus, 5*time.Second)
	return nil
}

func (a *App) Start() error {
	a.monitor.Start()
	a.core.Run()

	router := api.SetupRouter(
		handlers.NewRoomHandler(a.core),
		handlers.NewACHandler(a.core),
		handlers.NewBillingHandler(a.billing),
		handlers.NewSimHandler(a.core),
		a.monitor.Handler(),
	)

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	a.server = &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP 服务异常: %v", err)
		}
	}()

	logger.Info("服务已启动: http://%s", addr)
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			logger.Error("HTTP 关闭失败: %v", err)
		}
	}
	a.monitor.Stop()
	a.core.Stop()
	logger.Info("应用已退出")
	return nil
}
