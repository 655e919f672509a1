package skill

import (
	"time"

	"github.com/google/uuid"
)

type Source string

const (
	SourceCV           Source = "cv"
	SourceAssessment   Source = "assessment"
	SourceSelfReported Source = "self-reported"
	SourceManager      Source = "manager"
)

func (s Source) Valid() bool {
	switch s {
	case SourceCV, SourceAssessment, SourceSelfReported, SourceManager:
		return true
	}
	return false
}

const (
	MinLevel = 1
	MaxLevel = 5
)

func ValidLevel(v int) bool {
	return v >= MinLevel && v <= MaxLevel
}

// EmployeeSkill is one skill record owned by an employee. TaxonomySkillID is
// nil while the raw skill is unmatched.
type EmployeeSkill struct {
	ID              uuid.UUID
	EmployeeID      uuid.UUID
	TaxonomySkillID *uuid.UUID
	RawSkill        string
	Proficiency     int
	Verified        bool
	Source          Source
	CreatedAt       time.Time
	UpdatedAt       time.Time

	SkillName       string
	CategoryName    *string
	SubcategoryName *string
	GroupName       *string
}

// DisplayName is the taxonomy name when linked, the raw text otherwise.
func (s EmployeeSkill) DisplayName() string {
	if s.SkillName != "" {
		return s.SkillName
	}
	return s.RawSkill
}

type PositionRequirement struct {
	ID                  uuid.UUID
	PositionID          uuid.UUID
	TaxonomySkillID     uuid.UUID
	ImportanceLevel     int
	RequiredProficiency int

	SkillName       string
	CategoryName    *string
	SubcategoryName *string
	GroupName       *string
}
