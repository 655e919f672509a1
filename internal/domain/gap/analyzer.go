package gap

import (
	"sort"

	"skillgap/internal/domain/skill"

	"github.com/google/uuid"
)

const UncategorizedLabel = "Uncategorized"

const (
	criticalImportance = 4
	criticalGap        = 3
)

type SkillGap struct {
	TaxonomySkillID     uuid.UUID
	SkillName           string
	CategoryName        *string
	SubcategoryName     *string
	GroupName           *string
	RequiredProficiency int
	CurrentProficiency  int
	ProficiencyGap      int
	ImportanceLevel     int
	GapScore            int
}

// Critical reports a gap that is both important and large.
func (g SkillGap) Critical() bool {
	return g.ImportanceLevel >= criticalImportance && g.ProficiencyGap >= criticalGap
}

type Result struct {
	MatchPercentage      float64
	CriticalGapCount     int
	TotalRequirements    int
	MatchedRequirements  int
	GapsByCategory       map[string][]SkillGap
	PrioritizedGaps      []SkillGap
	EmployeeSkills       []skill.EmployeeSkill
	PositionRequirements []skill.PositionRequirement
}

// Analyze compares an employee's skills with a position's requirements. It has
// no side effects; the same inputs always give the same result.
func Analyze(skills []skill.EmployeeSkill, reqs []skill.PositionRequirement) Result {
	bySkillID := make(map[uuid.UUID]skill.EmployeeSkill, len(skills))
	for _, s := range skills {
		if s.TaxonomySkillID == nil || *s.TaxonomySkillID == uuid.Nil {
			continue
		}
		prev, ok := bySkillID[*s.TaxonomySkillID]
		if ok && prev.Proficiency >= s.Proficiency {
			continue
		}
		bySkillID[*s.TaxonomySkillID] = s
	}

	res := Result{
		TotalRequirements:    len(reqs),
		GapsByCategory:       make(map[string][]SkillGap),
		PrioritizedGaps:      make([]SkillGap, 0),
		EmployeeSkills:       skills,
		PositionRequirements: reqs,
	}

	for _, r := range reqs {
		current := 0
		es, has := bySkillID[r.TaxonomySkillID]
		if has {
			current = es.Proficiency
		}

		diff := r.RequiredProficiency - current
		if diff < 0 {
			diff = 0
		}

		if has && diff <= 0 {
			res.MatchedRequirements++
			continue
		}

		g := SkillGap{
			TaxonomySkillID:     r.TaxonomySkillID,
			SkillName:           r.SkillName,
			CategoryName:        r.CategoryName,
			SubcategoryName:     r.SubcategoryName,
			GroupName:           r.GroupName,
			RequiredProficiency: r.RequiredProficiency,
			CurrentProficiency:  current,
			ProficiencyGap:      diff,
			ImportanceLevel:     r.ImportanceLevel,
			GapScore:            r.ImportanceLevel * diff,
		}
		if g.GapScore < 0 {
			g.GapScore = 0
		}
		if g.Critical() {
			res.CriticalGapCount++
		}

		category := UncategorizedLabel
		if g.CategoryName != nil && *g.CategoryName != "" {
			category = *g.CategoryName
		}
		res.GapsByCategory[category] = append(res.GapsByCategory[category], g)
		res.PrioritizedGaps = append(res.PrioritizedGaps, g)
	}

	if res.TotalRequirements > 0 {
		res.MatchPercentage = float64(res.MatchedRequirements) / float64(res.TotalRequirements) * 100
	}

	sort.SliceStable(res.PrioritizedGaps, func(i, j int) bool {
		return res.PrioritizedGaps[i].GapScore > res.PrioritizedGaps[j].GapScore
	})

	return res
}
