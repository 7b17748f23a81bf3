package controller

import (
	"lekha-gateway/internal/pkg/serverutils"
	"lekha-gateway/pkg/upstream"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Detail(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type sessionController struct {
	client *upstream.Client
}

func NewSessionController(client *upstream.Client) ISessionController {
	return &sessionController{client: client}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	r.Get("/sessions", c.List)
	r.Get("/sessions/:id", c.Detail)
	r.Delete("/sessions/:id", c.Delete)
}

// List proxies the conversation list for the authenticated user.
func (c *sessionController) List(ctx *fiber.Ctx) error {
	if !c.client.Configured() {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.NewErrorResponse(misconfiguredMessage))
	}

	result, err := c.client.ListSessions(ctx.Context(), ctx.Get(fiber.HeaderAuthorization))
	if err != nil {
		return respondUpstreamError(ctx, err)
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return ctx.Status(fiber.StatusOK).Send(result.Payload)
}

// Detail proxies the message history of one conversation.
func (c *sessionController) Detail(ctx *fiber.Ctx) error {
	if !c.client.Configured() {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.NewErrorResponse(misconfiguredMessage))
	}

	id := ctx.Params("id")
	if id == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.NewErrorResponse("Missing conversationId"))
	}

	result, err := c.client.GetSession(ctx.Context(), ctx.Get(fiber.HeaderAuthorization), id)
	if err != nil {
		return respondUpstreamError(ctx, err)
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return ctx.Status(fiber.StatusOK).Send(result.Payload)
}

// Delete proxies a conversation delete. A 200 from the backend is normalized
// to 204 so callers see one success shape.
func (c *sessionController) Delete(ctx *fiber.Ctx) error {
	if !c.client.Configured() {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.NewErrorResponse(misconfiguredMessage))
	}

	id := ctx.Params("id")
	if id == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.NewErrorResponse("Missing conversationId"))
	}

	if err := c.client.DeleteSession(ctx.Context(), ctx.Get(fiber.HeaderAuthorization), id); err != nil {
		return respondUpstreamError(ctx, err)
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}
