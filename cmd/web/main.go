package main

import (
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/happy2h/gomall/internal/config"
	"github.com/happy2h/gomall/internal/infra/logger"
	"github.com/happy2h/gomall/internal/server"
)

func main() {
	logger.Init()
	defer zap.L().Sync()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		zap.L().Fatal("加载配置失败", zap.Error(err))
	}

	app := iris.New()
	server.RegisterRoutes(app, cfg)

	zap.L().Info("商城前台服务启动", zap.String("addr", cfg.Server.Addr()))
	if err := app.Listen(cfg.Server.Addr()); err != nil {
		zap.L().Fatal("服务退出", zap.Error(err))
	}
}
