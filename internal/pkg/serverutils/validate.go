package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and converts the first failure
// into a 400 fiber error so the handler can return it directly.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok || len(errs) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request")
		}
		fe := errs[0]
		field := strings.ToLower(fe.Field())
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Missing or invalid %q in body", field))
	}
	return nil
}
