package usecase

import (
	"context"
	"time"

	"skillgap/internal/domain/gap"
	"skillgap/internal/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type GapAnalysisUsecase interface {
	GenerateGapAnalysis(ctx context.Context, employeeID uuid.UUID, positionID uuid.UUID) (gap.Result, error)
}

// GapAnalysis reads through the skill and requirement usecases so that
// not-found and internal errors surface exactly as they do for direct reads.
type GapAnalysis struct {
	skills       EmployeeSkillUsecase
	requirements PositionRequirementUsecase
	metrics      *metrics.Metrics
	logger       logrus.FieldLogger
	now          func() time.Time
}

func NewGapAnalysisUsecase(skills EmployeeSkillUsecase, requirements PositionRequirementUsecase, m *metrics.Metrics, logger logrus.FieldLogger) *GapAnalysis {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &GapAnalysis{
		skills:       skills,
		requirements: requirements,
		metrics:      m,
		logger:       logger.WithField("component", "gap_analysis"),
		now:          time.Now,
	}
}

func (u *GapAnalysis) GenerateGapAnalysis(ctx context.Context, employeeID uuid.UUID, positionID uuid.UUID) (gap.Result, error) {
	if employeeID == uuid.Nil || positionID == uuid.Nil {
		return gap.Result{}, ErrInvalidInput
	}
	start := u.now()

	skills, err := u.skills.GetEmployeeSkills(ctx, employeeID)
	if err != nil {
		return gap.Result{}, err
	}
	reqs, err := u.requirements.GetPositionSkillRequirements(ctx, positionID, true)
	if err != nil {
		return gap.Result{}, err
	}

	res := gap.Analyze(skills, reqs)

	elapsed := u.now().Sub(start)
	u.metrics.ObserveGapAnalysis(elapsed)
	u.logger.WithFields(logrus.Fields{
		"employee_id":   employeeID,
		"position_id":   positionID,
		"requirements":  res.TotalRequirements,
		"matched":       res.MatchedRequirements,
		"critical_gaps": res.CriticalGapCount,
		"duration_ms":   elapsed.Milliseconds(),
	}).Debug("gap analysis generated")

	return res, nil
}
