package handler

import (
	"skillgap/internal/delivery/http/dto"
	"skillgap/internal/pkg/response"
	"skillgap/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type GapAnalysisHandler struct {
	uc usecase.GapAnalysisUsecase
}

func NewGapAnalysisHandler(uc usecase.GapAnalysisUsecase) *GapAnalysisHandler {
	return &GapAnalysisHandler{uc: uc}
}

func (h *GapAnalysisHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/gap-analysis", h.Generate)
}

func (h *GapAnalysisHandler) Generate(c fiber.Ctx) error {
	employeeID, err := uuid.Parse(c.Query("employee_id"))
	if err != nil {
		return badRequest("Invalid employee_id", err)
	}
	positionID, err := uuid.Parse(c.Query("position_id"))
	if err != nil {
		return badRequest("Invalid position_id", err)
	}

	res, err := h.uc.GenerateGapAnalysis(c.Context(), employeeID, positionID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewGapAnalysisResponse(res))
}
