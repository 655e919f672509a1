package handler

import (
	"skillgap/internal/delivery/http/middleware"
	"skillgap/internal/pkg/response"
	"skillgap/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func badRequest(msg string, cause error) error {
	return middleware.NewAppError(fiber.StatusBadRequest, msg, nil, cause)
}

func uuidParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, badRequest("Invalid "+name, err)
	}
	return id, nil
}

// mapUsecaseError turns usecase sentinels into client-facing errors. Anything
// unrecognised becomes a 500 whose cause only reaches the log.
func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidProficiencyLevel):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid proficiency level", nil, err)
	case errors.Is(err, usecase.ErrInvalidImportanceLevel):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid importance level", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, validationMessage(err), nil, err)
	case errors.Is(err, usecase.ErrEmployeeNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Employee not found", nil, err)
	case errors.Is(err, usecase.ErrPositionNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Position not found", nil, err)
	case errors.Is(err, usecase.ErrTaxonomySkillNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Taxonomy skill not found", nil, err)
	case errors.Is(err, usecase.ErrEmployeeSkillNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Employee skill not found", nil, err)
	case errors.Is(err, usecase.ErrRequirementNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Requirement not found", nil, err)
	case errors.Is(err, usecase.ErrDuplicateRequirement):
		return middleware.NewAppError(fiber.StatusConflict, "Requirement already exists", nil, err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, response.MessageForbidden, nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, response.MessageUnauthorized, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

// validationMessage keeps the field detail the usecase attached to
// ErrInvalidInput, e.g. `Source failed "skill_source": invalid input`.
func validationMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Bad request"
}
