package controller

import (
	"errors"
	"fmt"

	"lekha-gateway/internal/pkg/serverutils"
	"lekha-gateway/pkg/upstream"

	"github.com/gofiber/fiber/v2"
)

const misconfiguredMessage = "Server misconfiguration: UPSTREAM_BASE_URL not set"

// respondUpstreamError maps the forwarder's error taxonomy onto the proxy
// surface: transport failures and protocol failures on a claimed-success
// status become 502, everything else propagates the upstream status.
func respondUpstreamError(ctx *fiber.Ctx, err error) error {
	var te *upstream.TransportError
	if errors.As(err, &te) {
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.NewErrorResponse(te.Error()))
	}

	var pe *upstream.ProtocolError
	if errors.As(err, &pe) {
		if pe.Status >= 200 && pe.Status <= 299 {
			return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.NewErrorResponse("Invalid response from backend"))
		}
		return ctx.Status(pe.Status).JSON(serverutils.NewErrorResponse(
			fmt.Sprintf("Backend returned %d: %s", pe.Status, pe.Body)))
	}

	var ue *upstream.UpstreamError
	if errors.As(err, &ue) {
		return ctx.Status(ue.Status).JSON(serverutils.NewErrorResponse(ue.Message))
	}

	return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.NewErrorResponse("Internal server error"))
}
