package controller

import (
	"strings"

	"lekha-gateway/internal/dto"
	"lekha-gateway/internal/pkg/serverutils"
	"lekha-gateway/pkg/upstream"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Send(ctx *fiber.Ctx) error
}

type chatController struct {
	client *upstream.Client
}

func NewChatController(client *upstream.Client) IChatController {
	return &chatController{client: client}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.Send)
}

// Send proxies one chat turn to the conversation backend. The request is
// validated before any outbound call; the Authorization header is forwarded
// verbatim and never inspected here.
func (c *chatController) Send(ctx *fiber.Ctx) error {
	if !c.client.Configured() {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.NewErrorResponse(misconfiguredMessage))
	}

	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.NewErrorResponse("Invalid JSON body"))
	}

	if strings.TrimSpace(req.Message) == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.NewErrorResponse(`Missing or empty "message" in body`))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	result, err := c.client.Chat(ctx.Context(), ctx.Get(fiber.HeaderAuthorization), upstream.ChatForward{
		Message:        req.Message,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		return respondUpstreamError(ctx, err)
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return ctx.Status(fiber.StatusOK).Send(result.Payload)
}
