package v1

import (
	"skillgap/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Normalize           *handler.NormalizeHandler
	Taxonomy            *handler.TaxonomyHandler
	EmployeeSkill       *handler.EmployeeSkillHandler
	PositionRequirement *handler.PositionRequirementHandler
	GapAnalysis         *handler.GapAnalysisHandler
}

// Register mounts the v1 API. auth guards every route when non-nil.
func Register(r fiber.Router, h Handlers, auth fiber.Handler) {
	if r == nil {
		return
	}

	api := r
	if auth != nil {
		api = r.Group("", auth)
	}

	if h.Normalize != nil {
		h.Normalize.RegisterRoutes(api)
	}
	if h.Taxonomy != nil {
		h.Taxonomy.RegisterRoutes(api)
	}
	RegisterEmployees(api, h.EmployeeSkill, h.GapAnalysis)
	RegisterPositions(api, h.PositionRequirement)
}
