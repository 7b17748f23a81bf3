package controller

import (
	"time"

	"lekha-gateway/internal/pkg/logger"
	"lekha-gateway/internal/pkg/serverutils"
	"lekha-gateway/pkg/upstream"

	"github.com/gofiber/fiber/v2"
)

// newTestApp wires the proxy routes against the given backend base URL,
// mirroring the server wiring minus tracing.
func newTestApp(backendURL string) *fiber.App {
	client := upstream.New(backendURL, 5*time.Second, logger.NewNopLogger())

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewChatController(client).RegisterRoutes(api)
	NewSessionController(client).RegisterRoutes(api)
	NewImageController(client).RegisterRoutes(api)
	return app
}
