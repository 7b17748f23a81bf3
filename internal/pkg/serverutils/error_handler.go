package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors escaping a handler into the uniform
// failure envelope. Controllers map upstream failures themselves; this is the
// last resort for parser and validation errors.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ctx.Status(fe.Code).JSON(NewErrorResponse(fe.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(NewErrorResponse("Internal server error"))
	}
}
