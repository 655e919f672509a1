package dto

import (
	"time"

	"skillgap/internal/domain/skill"

	"github.com/google/uuid"
)

type EmployeeSkillResponse struct {
	ID              uuid.UUID  `json:"id"`
	EmployeeID      uuid.UUID  `json:"employee_id"`
	TaxonomySkillID *uuid.UUID `json:"taxonomy_skill_id"`
	RawSkill        string     `json:"raw_skill"`
	SkillName       string     `json:"skill_name"`
	CategoryName    *string    `json:"category_name"`
	SubcategoryName *string    `json:"subcategory_name"`
	GroupName       *string    `json:"group_name"`
	Proficiency     int        `json:"proficiency"`
	Verified        bool       `json:"verified"`
	Source          string     `json:"source"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func NewEmployeeSkillResponse(s skill.EmployeeSkill) EmployeeSkillResponse {
	return EmployeeSkillResponse{
		ID:              s.ID,
		EmployeeID:      s.EmployeeID,
		TaxonomySkillID: s.TaxonomySkillID,
		RawSkill:        s.RawSkill,
		SkillName:       s.DisplayName(),
		CategoryName:    s.CategoryName,
		SubcategoryName: s.SubcategoryName,
		GroupName:       s.GroupName,
		Proficiency:     s.Proficiency,
		Verified:        s.Verified,
		Source:          string(s.Source),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func NewEmployeeSkillResponses(items []skill.EmployeeSkill) []EmployeeSkillResponse {
	res := make([]EmployeeSkillResponse, 0, len(items))
	for _, it := range items {
		res = append(res, NewEmployeeSkillResponse(it))
	}
	return res
}

type ImportEmployeeSkillsResponse struct {
	Created []EmployeeSkillResponse `json:"created"`
	Skipped []string                `json:"skipped"`
	Results []NormalizationResponse `json:"results"`
}
