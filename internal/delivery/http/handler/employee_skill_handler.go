package handler

import (
	"skillgap/internal/delivery/http/dto"
	"skillgap/internal/domain/skill"
	"skillgap/internal/pkg/response"
	"skillgap/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type EmployeeSkillHandler struct {
	uc usecase.EmployeeSkillUsecase
}

type upsertEmployeeSkillRequest struct {
	ID              *uuid.UUID `json:"id"`
	TaxonomySkillID *uuid.UUID `json:"taxonomy_skill_id"`
	RawSkill        string     `json:"raw_skill"`
	Proficiency     int        `json:"proficiency"`
	Verified        bool       `json:"verified"`
	Source          string     `json:"source"`
}

type importEmployeeSkillsRequest struct {
	RawSkills []string                     `json:"raw_skills"`
	Source    string                       `json:"source"`
	Options   *dto.NormalizeOptionsRequest `json:"options"`
}

func NewEmployeeSkillHandler(uc usecase.EmployeeSkillUsecase) *EmployeeSkillHandler {
	return &EmployeeSkillHandler{uc: uc}
}

func (h *EmployeeSkillHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/employees/:employee_id/skills")
	grp.Get("/", h.List)
	grp.Post("/", h.Upsert)
	grp.Post("/import", h.Import)
	grp.Delete("/:id", h.Delete)
}

func (h *EmployeeSkillHandler) List(c fiber.Ctx) error {
	employeeID, err := uuidParam(c, "employee_id")
	if err != nil {
		return err
	}

	items, err := h.uc.GetEmployeeSkills(c.Context(), employeeID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewEmployeeSkillResponses(items))
}

// Upsert creates a skill record, or updates the employee's record when the
// body carries an id.
func (h *EmployeeSkillHandler) Upsert(c fiber.Ctx) error {
	employeeID, err := uuidParam(c, "employee_id")
	if err != nil {
		return err
	}

	var req upsertEmployeeSkillRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}

	saved, err := h.uc.UpdateEmployeeSkill(c.Context(), employeeID, usecase.UpsertEmployeeSkillInput{
		ID:              req.ID,
		TaxonomySkillID: req.TaxonomySkillID,
		RawSkill:        req.RawSkill,
		Proficiency:     req.Proficiency,
		Verified:        req.Verified,
		Source:          skill.Source(req.Source),
	})
	if err != nil {
		return mapUsecaseError(err)
	}

	status := fiber.StatusOK
	if req.ID == nil {
		status = fiber.StatusCreated
	}
	return response.Success(c, status, "", dto.NewEmployeeSkillResponse(saved))
}

func (h *EmployeeSkillHandler) Import(c fiber.Ctx) error {
	employeeID, err := uuidParam(c, "employee_id")
	if err != nil {
		return err
	}

	var req importEmployeeSkillsRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest("Bad request", err)
	}
	if err := validateNormalizeOptions(req.Options); err != nil {
		return err
	}

	res, err := h.uc.ImportEmployeeSkills(c.Context(), employeeID, usecase.ImportEmployeeSkillsInput{
		RawSkills: req.RawSkills,
		Source:    skill.Source(req.Source),
		Options:   req.Options.ToUsecase(),
	})
	if err != nil {
		return mapUsecaseError(err)
	}

	skipped := res.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ImportEmployeeSkillsResponse{
		Created: dto.NewEmployeeSkillResponses(res.Created),
		Skipped: skipped,
		Results: dto.NewNormalizationResponses(res.Results),
	})
}

func (h *EmployeeSkillHandler) Delete(c fiber.Ctx) error {
	employeeID, err := uuidParam(c, "employee_id")
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.DeleteEmployeeSkill(c.Context(), employeeID, id); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
