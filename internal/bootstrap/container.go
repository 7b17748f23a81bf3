package bootstrap

import (
	"lekha-gateway/internal/config"
	"lekha-gateway/internal/controller"
	"lekha-gateway/internal/pkg/logger"
	"lekha-gateway/pkg/upstream"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	SessionController controller.ISessionController
	ImageController   controller.IImageController

	// Shared facades
	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Upstream forwarder (stateless, shared by every proxy route)
	client := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, sysLogger)

	// 3. Controllers
	return &Container{
		ChatController:    controller.NewChatController(client),
		SessionController: controller.NewSessionController(client),
		ImageController:   controller.NewImageController(client),
		Logger:            sysLogger,
	}
}
