package usecase

import (
	"context"
	"strings"

	"skillgap/internal/domain/skill"
	"skillgap/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// UpsertEmployeeSkillInput creates a record when ID is nil and updates the
// employee's record with that ID otherwise.
type UpsertEmployeeSkillInput struct {
	ID              *uuid.UUID
	TaxonomySkillID *uuid.UUID
	RawSkill        string `validate:"required_without=TaxonomySkillID,max=255"`
	Proficiency     int    `validate:"min=1,max=5"`
	Verified        bool
	Source          skill.Source `validate:"skill_source"`
}

type ImportEmployeeSkillsInput struct {
	RawSkills []string     `validate:"required,min=1,max=200"`
	Source    skill.Source `validate:"skill_source"`
	Options   NormalizeOptions
}

type ImportEmployeeSkillsResult struct {
	Created []skill.EmployeeSkill
	Skipped []string
	Results []NormalizationResult
}

type EmployeeSkillUsecase interface {
	GetEmployeeSkills(ctx context.Context, employeeID uuid.UUID) ([]skill.EmployeeSkill, error)
	UpdateEmployeeSkill(ctx context.Context, employeeID uuid.UUID, in UpsertEmployeeSkillInput) (skill.EmployeeSkill, error)
	DeleteEmployeeSkill(ctx context.Context, employeeID uuid.UUID, skillID uuid.UUID) error
	ImportEmployeeSkills(ctx context.Context, employeeID uuid.UUID, in ImportEmployeeSkillsInput) (ImportEmployeeSkillsResult, error)
}

type EmployeeSkill struct {
	repo       repository.EmployeeSkillRepository
	taxonomy   repository.TaxonomyRepository
	normalizer NormalizerUsecase
	logger     logrus.FieldLogger
}

func NewEmployeeSkillUsecase(repo repository.EmployeeSkillRepository, tax repository.TaxonomyRepository, normalizer NormalizerUsecase, logger logrus.FieldLogger) *EmployeeSkill {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &EmployeeSkill{
		repo:       repo,
		taxonomy:   tax,
		normalizer: normalizer,
		logger:     logger.WithField("component", "employee_skill"),
	}
}

func (u *EmployeeSkill) GetEmployeeSkills(ctx context.Context, employeeID uuid.UUID) ([]skill.EmployeeSkill, error) {
	if err := u.ensureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	items, err := u.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, u.internal(err, "list employee skills", employeeID)
	}
	return items, nil
}

func (u *EmployeeSkill) UpdateEmployeeSkill(ctx context.Context, employeeID uuid.UUID, in UpsertEmployeeSkillInput) (skill.EmployeeSkill, error) {
	in.RawSkill = CleanRawSkill(in.RawSkill)
	if in.Source == "" {
		in.Source = skill.SourceSelfReported
	}
	if in.TaxonomySkillID != nil && *in.TaxonomySkillID == uuid.Nil {
		in.TaxonomySkillID = nil
	}
	if err := validationError(validate.Struct(in), map[string]error{"Proficiency": ErrInvalidProficiencyLevel}); err != nil {
		return skill.EmployeeSkill{}, err
	}
	if in.ID != nil && *in.ID == uuid.Nil {
		return skill.EmployeeSkill{}, ErrInvalidInput
	}

	if err := u.ensureEmployee(ctx, employeeID); err != nil {
		return skill.EmployeeSkill{}, err
	}

	if in.TaxonomySkillID != nil {
		item, err := u.taxonomy.GetItem(ctx, *in.TaxonomySkillID)
		if err != nil {
			if errors.Is(err, repository.ErrTaxonomyItemNotFound) {
				return skill.EmployeeSkill{}, ErrTaxonomySkillNotFound
			}
			return skill.EmployeeSkill{}, u.internal(err, "load taxonomy item", employeeID)
		}
		if in.RawSkill == "" {
			in.RawSkill = item.Name
		}
	}

	rec := skill.EmployeeSkill{
		EmployeeID:      employeeID,
		TaxonomySkillID: in.TaxonomySkillID,
		RawSkill:        in.RawSkill,
		Proficiency:     in.Proficiency,
		Verified:        in.Verified,
		Source:          in.Source,
	}

	var (
		out skill.EmployeeSkill
		err error
	)
	if in.ID == nil {
		rec.ID = uuid.New()
		out, err = u.repo.Create(ctx, rec)
	} else {
		rec.ID = *in.ID
		out, err = u.repo.Update(ctx, rec)
	}
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmployeeSkillNotFound):
			return skill.EmployeeSkill{}, ErrEmployeeSkillNotFound
		case errors.Is(err, repository.ErrEmployeeSkillForbidden):
			return skill.EmployeeSkill{}, ErrForbidden
		case errors.Is(err, repository.ErrTaxonomyLinkInvalid):
			return skill.EmployeeSkill{}, ErrTaxonomySkillNotFound
		default:
			return skill.EmployeeSkill{}, u.internal(err, "save employee skill", employeeID)
		}
	}
	return out, nil
}

func (u *EmployeeSkill) DeleteEmployeeSkill(ctx context.Context, employeeID uuid.UUID, skillID uuid.UUID) error {
	if skillID == uuid.Nil {
		return ErrInvalidInput
	}
	if err := u.ensureEmployee(ctx, employeeID); err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, skillID, employeeID); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmployeeSkillNotFound):
			return ErrEmployeeSkillNotFound
		case errors.Is(err, repository.ErrEmployeeSkillForbidden):
			return ErrForbidden
		default:
			return u.internal(err, "delete employee skill", employeeID)
		}
	}
	return nil
}

// ImportEmployeeSkills normalizes a raw skill list and records every
// non-blank entry, linked when its match was accepted. Entries the employee
// already holds, by taxonomy link or by raw text, are skipped.
func (u *EmployeeSkill) ImportEmployeeSkills(ctx context.Context, employeeID uuid.UUID, in ImportEmployeeSkillsInput) (ImportEmployeeSkillsResult, error) {
	if in.Source == "" {
		in.Source = skill.SourceCV
	}
	if err := validationError(validate.Struct(in), nil); err != nil {
		return ImportEmployeeSkillsResult{}, err
	}
	if err := u.ensureEmployee(ctx, employeeID); err != nil {
		return ImportEmployeeSkillsResult{}, err
	}

	existing, err := u.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		return ImportEmployeeSkillsResult{}, u.internal(err, "list employee skills", employeeID)
	}
	linked := make(map[uuid.UUID]struct{}, len(existing))
	raws := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		if s.TaxonomySkillID != nil {
			linked[*s.TaxonomySkillID] = struct{}{}
		}
		raws[strings.ToLower(s.RawSkill)] = struct{}{}
	}

	out := ImportEmployeeSkillsResult{
		Created: make([]skill.EmployeeSkill, 0, len(in.RawSkills)),
		Skipped: make([]string, 0),
		Results: u.normalizer.NormalizeSkills(ctx, in.RawSkills, in.Options),
	}

	for _, res := range out.Results {
		raw := CleanRawSkill(res.RawSkill)
		if raw == "" {
			continue
		}
		rawKey := strings.ToLower(raw)
		if _, dup := raws[rawKey]; dup {
			out.Skipped = append(out.Skipped, raw)
			continue
		}
		if res.TaxonomySkillID != nil {
			if _, dup := linked[*res.TaxonomySkillID]; dup {
				out.Skipped = append(out.Skipped, raw)
				continue
			}
		}

		created, err := u.repo.Create(ctx, skill.EmployeeSkill{
			ID:              uuid.New(),
			EmployeeID:      employeeID,
			TaxonomySkillID: res.TaxonomySkillID,
			RawSkill:        raw,
			Proficiency:     skill.MinLevel,
			Source:          in.Source,
		})
		if err != nil {
			return out, u.internal(err, "import employee skill", employeeID)
		}
		out.Created = append(out.Created, created)
		raws[rawKey] = struct{}{}
		if res.TaxonomySkillID != nil {
			linked[*res.TaxonomySkillID] = struct{}{}
		}
	}

	u.logger.WithFields(logrus.Fields{
		"employee_id": employeeID,
		"received":    len(in.RawSkills),
		"created":     len(out.Created),
		"skipped":     len(out.Skipped),
	}).Info("employee skills imported")
	return out, nil
}

func (u *EmployeeSkill) ensureEmployee(ctx context.Context, employeeID uuid.UUID) error {
	if employeeID == uuid.Nil {
		return ErrInvalidInput
	}
	ok, err := u.repo.EmployeeExists(ctx, employeeID)
	if err != nil {
		return u.internal(err, "check employee", employeeID)
	}
	if !ok {
		return ErrEmployeeNotFound
	}
	return nil
}

func (u *EmployeeSkill) internal(err error, op string, employeeID uuid.UUID) error {
	u.logger.WithError(err).WithField("employee_id", employeeID).Error(op)
	return ErrInternal
}
