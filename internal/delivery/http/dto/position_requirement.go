package dto

import (
	"skillgap/internal/domain/skill"
	"skillgap/internal/usecase"

	"github.com/google/uuid"
)

type RequirementRequest struct {
	TaxonomySkillID     uuid.UUID `json:"taxonomy_skill_id"`
	ImportanceLevel     int       `json:"importance_level"`
	RequiredProficiency int       `json:"required_proficiency"`
}

func (r RequirementRequest) ToUsecase() usecase.RequirementInput {
	return usecase.RequirementInput{
		TaxonomySkillID:     r.TaxonomySkillID,
		ImportanceLevel:     r.ImportanceLevel,
		RequiredProficiency: r.RequiredProficiency,
	}
}

type UpdateRequirementRequest struct {
	ImportanceLevel     int `json:"importance_level"`
	RequiredProficiency int `json:"required_proficiency"`
}

type ReplaceRequirementsRequest struct {
	Requirements []RequirementRequest `json:"requirements"`
}

type PositionRequirementResponse struct {
	ID                  uuid.UUID `json:"id"`
	PositionID          uuid.UUID `json:"position_id"`
	TaxonomySkillID     uuid.UUID `json:"taxonomy_skill_id"`
	SkillName           string    `json:"skill_name"`
	CategoryName        *string   `json:"category_name"`
	SubcategoryName     *string   `json:"subcategory_name"`
	GroupName           *string   `json:"group_name"`
	ImportanceLevel     int       `json:"importance_level"`
	RequiredProficiency int       `json:"required_proficiency"`
}

func NewPositionRequirementResponse(r skill.PositionRequirement) PositionRequirementResponse {
	return PositionRequirementResponse{
		ID:                  r.ID,
		PositionID:          r.PositionID,
		TaxonomySkillID:     r.TaxonomySkillID,
		SkillName:           r.SkillName,
		CategoryName:        r.CategoryName,
		SubcategoryName:     r.SubcategoryName,
		GroupName:           r.GroupName,
		ImportanceLevel:     r.ImportanceLevel,
		RequiredProficiency: r.RequiredProficiency,
	}
}

func NewPositionRequirementResponses(items []skill.PositionRequirement) []PositionRequirementResponse {
	res := make([]PositionRequirementResponse, 0, len(items))
	for _, it := range items {
		res = append(res, NewPositionRequirementResponse(it))
	}
	return res
}
