package controller

import (
	"net/url"

	"lekha-gateway/internal/pkg/serverutils"
	"lekha-gateway/pkg/upstream"

	"github.com/gofiber/fiber/v2"
)

type IImageController interface {
	RegisterRoutes(r fiber.Router)
	Fetch(ctx *fiber.Ctx) error
}

type imageController struct {
	client *upstream.Client
}

func NewImageController(client *upstream.Client) IImageController {
	return &imageController{client: client}
}

func (c *imageController) RegisterRoutes(r fiber.Router) {
	r.Get("/image", c.Fetch)
}

// Fetch streams a cross-origin image through the gateway so the browser can
// render it inline without CORS restrictions. Only absolute http(s) URLs are
// fetched; anything else is rejected before any outbound call.
func (c *imageController) Fetch(ctx *fiber.Ctx) error {
	raw := ctx.Query("url")
	if !isAbsoluteHTTPURL(raw) {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.NewErrorResponse("Missing or invalid url"))
	}

	result, err := c.client.FetchImage(ctx.Context(), raw)
	if err != nil {
		return ctx.SendStatus(fiber.StatusBadGateway)
	}

	if result.Status < 200 || result.Status > 299 {
		return ctx.SendStatus(result.Status)
	}

	ctx.Set(fiber.HeaderContentType, result.ContentType)
	ctx.Set(fiber.HeaderCacheControl, "private, max-age=86400")
	return ctx.Status(fiber.StatusOK).Send(result.Body)
}

func isAbsoluteHTTPURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
