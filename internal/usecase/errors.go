package usecase

import (
	"github.com/pkg/errors"
)

var (
	ErrInternal                = errors.New("internal error")
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidProficiencyLevel = errors.New("invalid proficiency level")
	ErrInvalidImportanceLevel  = errors.New("invalid importance level")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")

	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrPositionNotFound      = errors.New("position not found")
	ErrTaxonomySkillNotFound = errors.New("taxonomy skill not found")
	ErrEmployeeSkillNotFound = errors.New("employee skill not found")
	ErrRequirementNotFound   = errors.New("position requirement not found")
	ErrDuplicateRequirement  = errors.New("duplicate position requirement")
)
