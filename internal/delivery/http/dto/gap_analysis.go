package dto

import (
	"skillgap/internal/domain/gap"

	"github.com/google/uuid"
)

type SkillGapResponse struct {
	TaxonomySkillID     uuid.UUID `json:"taxonomy_skill_id"`
	SkillName           string    `json:"skill_name"`
	CategoryName        *string   `json:"category_name"`
	SubcategoryName     *string   `json:"subcategory_name"`
	GroupName           *string   `json:"group_name"`
	RequiredProficiency int       `json:"required_proficiency"`
	CurrentProficiency  int       `json:"current_proficiency"`
	ProficiencyGap      int       `json:"proficiency_gap"`
	ImportanceLevel     int       `json:"importance_level"`
	GapScore            int       `json:"gap_score"`
	Critical            bool      `json:"critical"`
}

type GapAnalysisResponse struct {
	MatchPercentage      float64                       `json:"match_percentage"`
	CriticalGapCount     int                           `json:"critical_gap_count"`
	TotalRequirements    int                           `json:"total_requirements"`
	MatchedRequirements  int                           `json:"matched_requirements"`
	GapsByCategory       map[string][]SkillGapResponse `json:"gaps_by_category"`
	PrioritizedGaps      []SkillGapResponse            `json:"prioritized_gaps"`
	EmployeeSkills       []EmployeeSkillResponse       `json:"employee_skills"`
	PositionRequirements []PositionRequirementResponse `json:"position_requirements"`
}

func newSkillGapResponse(g gap.SkillGap) SkillGapResponse {
	return SkillGapResponse{
		TaxonomySkillID:     g.TaxonomySkillID,
		SkillName:           g.SkillName,
		CategoryName:        g.CategoryName,
		SubcategoryName:     g.SubcategoryName,
		GroupName:           g.GroupName,
		RequiredProficiency: g.RequiredProficiency,
		CurrentProficiency:  g.CurrentProficiency,
		ProficiencyGap:      g.ProficiencyGap,
		ImportanceLevel:     g.ImportanceLevel,
		GapScore:            g.GapScore,
		Critical:            g.Critical(),
	}
}

func newSkillGapResponses(gaps []gap.SkillGap) []SkillGapResponse {
	res := make([]SkillGapResponse, 0, len(gaps))
	for _, g := range gaps {
		res = append(res, newSkillGapResponse(g))
	}
	return res
}

func NewGapAnalysisResponse(r gap.Result) GapAnalysisResponse {
	byCategory := make(map[string][]SkillGapResponse, len(r.GapsByCategory))
	for name, gaps := range r.GapsByCategory {
		byCategory[name] = newSkillGapResponses(gaps)
	}
	return GapAnalysisResponse{
		MatchPercentage:      r.MatchPercentage,
		CriticalGapCount:     r.CriticalGapCount,
		TotalRequirements:    r.TotalRequirements,
		MatchedRequirements:  r.MatchedRequirements,
		GapsByCategory:       byCategory,
		PrioritizedGaps:      newSkillGapResponses(r.PrioritizedGaps),
		EmployeeSkills:       NewEmployeeSkillResponses(r.EmployeeSkills),
		PositionRequirements: NewPositionRequirementResponses(r.PositionRequirements),
	}
}
