package usecase

import (
	"context"
	"testing"

	"skillgap/internal/domain/gap"
	"skillgap/internal/metrics"
	"skillgap/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gapFixture struct {
	tax      testTaxonomy
	skills   *EmployeeSkill
	reqs     *PositionRequirement
	uc       *GapAnalysis
	metrics  *metrics.Metrics
	employee uuid.UUID
	position uuid.UUID
}

func newGapFixture() gapFixture {
	tax := newTestTaxonomy()
	skillRepo := memory.NewEmployeeSkills(tax.repo)
	reqRepo := memory.NewPositionRequirements(tax.repo)
	employee, position := uuid.New(), uuid.New()
	skillRepo.AddEmployee(employee)
	reqRepo.AddPosition(position)

	m := metrics.New()
	normalizer := NewNormalizer(tax.repo, nil, NormalizeOptions{}, m, nullLogger())
	skills := NewEmployeeSkillUsecase(skillRepo, tax.repo, normalizer, nullLogger())
	reqs := NewPositionRequirementUsecase(reqRepo, tax.repo, nullLogger())
	return gapFixture{
		tax:      tax,
		skills:   skills,
		reqs:     reqs,
		uc:       NewGapAnalysisUsecase(skills, reqs, m, nullLogger()),
		metrics:  m,
		employee: employee,
		position: position,
	}
}

func (f gapFixture) have(t *testing.T, name string, proficiency int) {
	t.Helper()
	id := f.tax.ids[name]
	_, err := f.skills.UpdateEmployeeSkill(context.Background(), f.employee, UpsertEmployeeSkillInput{TaxonomySkillID: &id, Proficiency: proficiency})
	require.NoError(t, err)
}

func (f gapFixture) need(t *testing.T, name string, importance, required int) {
	t.Helper()
	_, err := f.reqs.AddRequirement(context.Background(), f.position, RequirementInput{
		TaxonomySkillID:     f.tax.ids[name],
		ImportanceLevel:     importance,
		RequiredProficiency: required,
	})
	require.NoError(t, err)
}

func TestGapAnalysisUsecase_Generate(t *testing.T) {
	f := newGapFixture()
	f.have(t, "Python", 4)
	f.have(t, "Java", 1)
	f.need(t, "Python", 3, 3)
	f.need(t, "Go", 5, 4)
	f.need(t, "Java", 2, 3)
	f.need(t, "Project Management", 4, 2)

	res, err := f.uc.GenerateGapAnalysis(context.Background(), f.employee, f.position)
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalRequirements)
	assert.Equal(t, 1, res.MatchedRequirements)
	assert.Equal(t, 25.0, res.MatchPercentage)
	assert.Equal(t, 1, res.CriticalGapCount)
	assert.Equal(t, res.TotalRequirements, res.MatchedRequirements+len(res.PrioritizedGaps))

	require.Len(t, res.PrioritizedGaps, 3)
	assert.Equal(t, "Go", res.PrioritizedGaps[0].SkillName)
	assert.Equal(t, 20, res.PrioritizedGaps[0].GapScore)
	assert.Equal(t, "Project Management", res.PrioritizedGaps[1].SkillName)
	assert.Equal(t, 8, res.PrioritizedGaps[1].GapScore)
	assert.Equal(t, "Java", res.PrioritizedGaps[2].SkillName)
	assert.Equal(t, 4, res.PrioritizedGaps[2].GapScore)
	assert.Equal(t, 1, res.PrioritizedGaps[2].CurrentProficiency)

	assert.Len(t, res.GapsByCategory["Technology"], 2)
	assert.Len(t, res.GapsByCategory["Business"], 1)
	assert.Len(t, res.EmployeeSkills, 2)
	assert.Len(t, res.PositionRequirements, 4)

	series, err := testutil.GatherAndCount(f.metrics.Registry(), "skillgap_gap_analysis_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, series)

	again, err := f.uc.GenerateGapAnalysis(context.Background(), f.employee, f.position)
	require.NoError(t, err)
	assert.Equal(t, res, again)
}

func TestGapAnalysisUsecase_NotFound(t *testing.T) {
	f := newGapFixture()
	ctx := context.Background()

	_, err := f.uc.GenerateGapAnalysis(ctx, uuid.New(), f.position)
	assert.ErrorIs(t, err, ErrEmployeeNotFound)

	_, err = f.uc.GenerateGapAnalysis(ctx, f.employee, uuid.New())
	assert.ErrorIs(t, err, ErrPositionNotFound)

	_, err = f.uc.GenerateGapAnalysis(ctx, uuid.Nil, f.position)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGapAnalysisUsecase_NoRequirements(t *testing.T) {
	f := newGapFixture()
	f.have(t, "Python", 5)

	res, err := f.uc.GenerateGapAnalysis(context.Background(), f.employee, f.position)
	require.NoError(t, err)

	assert.Zero(t, res.MatchPercentage)
	assert.Zero(t, res.TotalRequirements)
	assert.Empty(t, res.PrioritizedGaps)
	assert.Equal(t, map[string][]gap.SkillGap{}, res.GapsByCategory)
}
