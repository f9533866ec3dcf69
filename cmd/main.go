package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"achotel/internal/app"
	"achotel/internal/config"
	"achotel/internal/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("加载配置失败: %v", err)
		os.Exit(1)
	}

	application := app.NewApp(cfg)
	if err := application.Initialize(); err != nil {
		logger.Error("初始化失败: %v", err)
		os.Exit(1)
	}

	if err := application.Start(); err != nil {
		logger.Error("启动失败: %v", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := application.Stop(ctx); err != nil {
		logger.Error("退出失败: %v", err)
	}
}
