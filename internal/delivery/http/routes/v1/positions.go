package v1

import (
	"skillgap/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterPositions(r fiber.Router, requirementHandler *handler.PositionRequirementHandler) {
	if r == nil {
		return
	}
	if requirementHandler == nil {
		return
	}

	requirementHandler.RegisterRoutes(r)
}
