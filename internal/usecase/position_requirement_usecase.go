package usecase

import (
	"context"

	"skillgap/internal/domain/skill"
	"skillgap/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type RequirementInput struct {
	TaxonomySkillID     uuid.UUID `validate:"required"`
	ImportanceLevel     int       `validate:"min=1,max=5"`
	RequiredProficiency int       `validate:"min=1,max=5"`
}

type UpdateRequirementInput struct {
	ImportanceLevel     int `validate:"min=1,max=5"`
	RequiredProficiency int `validate:"min=1,max=5"`
}

var requirementLevelErrs = map[string]error{
	"ImportanceLevel":     ErrInvalidImportanceLevel,
	"RequiredProficiency": ErrInvalidProficiencyLevel,
}

type PositionRequirementUsecase interface {
	GetPositionSkillRequirements(ctx context.Context, positionID uuid.UUID, includeHierarchy bool) ([]skill.PositionRequirement, error)
	AddRequirement(ctx context.Context, positionID uuid.UUID, in RequirementInput) (skill.PositionRequirement, error)
	UpdateRequirement(ctx context.Context, positionID uuid.UUID, requirementID uuid.UUID, in UpdateRequirementInput) (skill.PositionRequirement, error)
	RemoveRequirement(ctx context.Context, positionID uuid.UUID, requirementID uuid.UUID) error
	ReplaceRequirements(ctx context.Context, positionID uuid.UUID, in []RequirementInput) ([]skill.PositionRequirement, error)
}

type PositionRequirement struct {
	repo     repository.PositionRequirementRepository
	taxonomy repository.TaxonomyRepository
	logger   logrus.FieldLogger
}

func NewPositionRequirementUsecase(repo repository.PositionRequirementRepository, tax repository.TaxonomyRepository, logger logrus.FieldLogger) *PositionRequirement {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PositionRequirement{repo: repo, taxonomy: tax, logger: logger.WithField("component", "position_requirement")}
}

func (u *PositionRequirement) GetPositionSkillRequirements(ctx context.Context, positionID uuid.UUID, includeHierarchy bool) ([]skill.PositionRequirement, error) {
	if err := u.ensurePosition(ctx, positionID); err != nil {
		return nil, err
	}
	reqs, err := u.repo.FindByPositionID(ctx, positionID, includeHierarchy)
	if err != nil {
		return nil, u.internal(err, "list position requirements", positionID)
	}
	return reqs, nil
}

func (u *PositionRequirement) AddRequirement(ctx context.Context, positionID uuid.UUID, in RequirementInput) (skill.PositionRequirement, error) {
	if err := validationError(validate.Struct(in), requirementLevelErrs); err != nil {
		return skill.PositionRequirement{}, err
	}
	if err := u.ensurePosition(ctx, positionID); err != nil {
		return skill.PositionRequirement{}, err
	}
	if err := u.ensureTaxonomyItem(ctx, in.TaxonomySkillID, positionID); err != nil {
		return skill.PositionRequirement{}, err
	}

	created, err := u.repo.Create(ctx, skill.PositionRequirement{
		ID:                  uuid.New(),
		PositionID:          positionID,
		TaxonomySkillID:     in.TaxonomySkillID,
		ImportanceLevel:     in.ImportanceLevel,
		RequiredProficiency: in.RequiredProficiency,
	})
	if err != nil {
		return skill.PositionRequirement{}, u.mapWriteError(err, "add position requirement", positionID)
	}
	return created, nil
}

func (u *PositionRequirement) UpdateRequirement(ctx context.Context, positionID uuid.UUID, requirementID uuid.UUID, in UpdateRequirementInput) (skill.PositionRequirement, error) {
	if requirementID == uuid.Nil {
		return skill.PositionRequirement{}, ErrInvalidInput
	}
	if err := validationError(validate.Struct(in), requirementLevelErrs); err != nil {
		return skill.PositionRequirement{}, err
	}
	if err := u.ensurePosition(ctx, positionID); err != nil {
		return skill.PositionRequirement{}, err
	}

	updated, err := u.repo.Update(ctx, skill.PositionRequirement{
		ID:                  requirementID,
		PositionID:          positionID,
		ImportanceLevel:     in.ImportanceLevel,
		RequiredProficiency: in.RequiredProficiency,
	})
	if err != nil {
		return skill.PositionRequirement{}, u.mapWriteError(err, "update position requirement", positionID)
	}
	return updated, nil
}

func (u *PositionRequirement) RemoveRequirement(ctx context.Context, positionID uuid.UUID, requirementID uuid.UUID) error {
	if requirementID == uuid.Nil {
		return ErrInvalidInput
	}
	if err := u.ensurePosition(ctx, positionID); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, requirementID, positionID); err != nil {
		return u.mapWriteError(err, "remove position requirement", positionID)
	}
	return nil
}

// ReplaceRequirements swaps the position's whole requirement set. Everything
// is validated before the first write and the swap itself is atomic.
func (u *PositionRequirement) ReplaceRequirements(ctx context.Context, positionID uuid.UUID, in []RequirementInput) ([]skill.PositionRequirement, error) {
	seen := make(map[uuid.UUID]struct{}, len(in))
	for _, r := range in {
		if err := validationError(validate.Struct(r), requirementLevelErrs); err != nil {
			return nil, err
		}
		if _, dup := seen[r.TaxonomySkillID]; dup {
			return nil, errors.Wrapf(ErrDuplicateRequirement, "taxonomy skill %s listed twice", r.TaxonomySkillID)
		}
		seen[r.TaxonomySkillID] = struct{}{}
	}

	if err := u.ensurePosition(ctx, positionID); err != nil {
		return nil, err
	}
	for _, r := range in {
		if err := u.ensureTaxonomyItem(ctx, r.TaxonomySkillID, positionID); err != nil {
			return nil, err
		}
	}

	reqs := make([]skill.PositionRequirement, 0, len(in))
	for _, r := range in {
		reqs = append(reqs, skill.PositionRequirement{
			ID:                  uuid.New(),
			PositionID:          positionID,
			TaxonomySkillID:     r.TaxonomySkillID,
			ImportanceLevel:     r.ImportanceLevel,
			RequiredProficiency: r.RequiredProficiency,
		})
	}
	if err := u.repo.ReplaceForPosition(ctx, positionID, reqs); err != nil {
		return nil, u.mapWriteError(err, "replace position requirements", positionID)
	}

	u.logger.WithFields(logrus.Fields{
		"position_id":  positionID,
		"requirements": len(reqs),
	}).Info("position requirements replaced")

	return u.GetPositionSkillRequirements(ctx, positionID, true)
}

func (u *PositionRequirement) ensurePosition(ctx context.Context, positionID uuid.UUID) error {
	if positionID == uuid.Nil {
		return ErrInvalidInput
	}
	ok, err := u.repo.PositionExists(ctx, positionID)
	if err != nil {
		return u.internal(err, "check position", positionID)
	}
	if !ok {
		return ErrPositionNotFound
	}
	return nil
}

func (u *PositionRequirement) ensureTaxonomyItem(ctx context.Context, id uuid.UUID, positionID uuid.UUID) error {
	if _, err := u.taxonomy.GetItem(ctx, id); err != nil {
		if errors.Is(err, repository.ErrTaxonomyItemNotFound) {
			return ErrTaxonomySkillNotFound
		}
		return u.internal(err, "load taxonomy item", positionID)
	}
	return nil
}

func (u *PositionRequirement) mapWriteError(err error, op string, positionID uuid.UUID) error {
	switch {
	case errors.Is(err, repository.ErrPositionNotFound):
		return ErrPositionNotFound
	case errors.Is(err, repository.ErrPositionRequirementNotFound):
		return ErrRequirementNotFound
	case errors.Is(err, repository.ErrPositionRequirementDuplicate):
		return ErrDuplicateRequirement
	case errors.Is(err, repository.ErrTaxonomyLinkInvalid):
		return ErrTaxonomySkillNotFound
	default:
		return u.internal(err, op, positionID)
	}
}

func (u *PositionRequirement) internal(err error, op string, positionID uuid.UUID) error {
	u.logger.WithError(err).WithField("position_id", positionID).Error(op)
	return ErrInternal
}
