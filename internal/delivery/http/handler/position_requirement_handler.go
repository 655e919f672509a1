package handler

import (
	"strconv"

	"skillgap/internal/delivery/http/dto"
	"skillgap/internal/pkg/response"
	"skillgap/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type PositionRequirementHandler struct {
	uc usecase.PositionRequirementUsecase
}

func NewPositionRequirementHandler(uc usecase.PositionRequirementUsecase) *PositionRequirementHandler {
	return &PositionRequirementHandler{uc: uc}
}

func (h *PositionRequirementHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/positions/:position_id/requirements")
	grp.Get("/", h.List)
	grp.Post("/", h.Add)
	grp.Put("/", h.Replace)
	grp.Put("/:id", h.Update)
	grp.Delete("/:id", h.Remove)
}

func (h *PositionRequirementHandler) List(c fiber.Ctx) error {
	positionID, err := uuidParam(c, "position_id")
	if err != nil {
		return err
	}

	includeHierarchy := true
	if raw := c.Query("include_hierarchy"); raw != "" {
		includeHierarchy, err = strconv.ParseBool(raw)
		if err != nil {
			return badRequest("include_hierarchy must be a boolean", err)
		}
	}

	items, err := h.uc.GetPositionSkillRequirements(c.Context(), positionID, includeHierarchy)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewPositionRequirementResponses(items))
}

func (h *PositionRequirementHandler) Add(c fiber.Ctx) error {
	positionID, err := uuidParam(c, "position_id")
	if err != nil {
		return err
	}

	var req dto.RequirementRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}

	created, err := h.uc.AddRequirement(c.Context(), positionID, req.ToUsecase())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "", dto.NewPositionRequirementResponse(created))
}

// Replace swaps the whole requirement set in one transaction. An empty list
// clears the position.
func (h *PositionRequirementHandler) Replace(c fiber.Ctx) error {
	positionID, err := uuidParam(c, "position_id")
	if err != nil {
		return err
	}

	var req dto.ReplaceRequirementsRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}

	in := make([]usecase.RequirementInput, 0, len(req.Requirements))
	for _, r := range req.Requirements {
		in = append(in, r.ToUsecase())
	}

	items, err := h.uc.ReplaceRequirements(c.Context(), positionID, in)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewPositionRequirementResponses(items))
}

func (h *PositionRequirementHandler) Update(c fiber.Ctx) error {
	positionID, err := uuidParam(c, "position_id")
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateRequirementRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}

	updated, err := h.uc.UpdateRequirement(c.Context(), positionID, id, usecase.UpdateRequirementInput{
		ImportanceLevel:     req.ImportanceLevel,
		RequiredProficiency: req.RequiredProficiency,
	})
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewPositionRequirementResponse(updated))
}

func (h *PositionRequirementHandler) Remove(c fiber.Ctx) error {
	positionID, err := uuidParam(c, "position_id")
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.RemoveRequirement(c.Context(), positionID, id); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
