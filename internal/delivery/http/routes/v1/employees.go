package v1

import (
	"skillgap/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterEmployees(r fiber.Router, employeeSkillHandler *handler.EmployeeSkillHandler, gapHandler *handler.GapAnalysisHandler) {
	if r == nil {
		return
	}

	if employeeSkillHandler != nil {
		employeeSkillHandler.RegisterRoutes(r)
	}
	if gapHandler != nil {
		gapHandler.RegisterRoutes(r)
	}
}
