package usecase

import (
	"context"

	"skillgap/internal/domain/taxonomy"
	"skillgap/internal/metrics"
	"skillgap/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	StageCandidates  = "candidates"
	StageGroup       = "group"
	StageSubcategory = "subcategory"
	StageCategory    = "category"
)

// HierarchyResolver looks up the ancestors of taxonomy items one level at a
// time. Every level fails on its own; callers decide how far to degrade.
type HierarchyResolver struct {
	repo    repository.TaxonomyRepository
	metrics *metrics.Metrics
	logger  logrus.FieldLogger
}

func NewHierarchyResolver(repo repository.TaxonomyRepository, m *metrics.Metrics, logger logrus.FieldLogger) HierarchyResolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return HierarchyResolver{repo: repo, metrics: m, logger: logger}
}

func (h HierarchyResolver) ResolveGroup(ctx context.Context, groupID uuid.UUID) (*taxonomy.Group, error) {
	g, err := h.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (h HierarchyResolver) ResolveSubcategory(ctx context.Context, subcategoryID uuid.UUID) (*taxonomy.Subcategory, error) {
	sc, err := h.repo.GetSubcategory(ctx, subcategoryID)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (h HierarchyResolver) ResolveCategory(ctx context.Context, categoryID uuid.UUID) (*taxonomy.Category, error) {
	c, err := h.repo.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Resolve walks item -> group -> subcategory -> category. A failed level and
// every level above it stay nil; the item itself is never dropped. ok is false
// when any lookup failed.
func (h HierarchyResolver) Resolve(ctx context.Context, item taxonomy.Item) (out taxonomy.Hierarchy, ok bool) {
	g, err := h.ResolveGroup(ctx, item.GroupID)
	if err != nil {
		h.lookupFailed(StageGroup, item, err)
		return out, false
	}
	out.Group = &g.Name

	sc, err := h.ResolveSubcategory(ctx, g.SubcategoryID)
	if err != nil {
		h.lookupFailed(StageSubcategory, item, err)
		return out, false
	}
	out.Subcategory = &sc.Name

	c, err := h.ResolveCategory(ctx, sc.CategoryID)
	if err != nil {
		h.lookupFailed(StageCategory, item, err)
		return out, false
	}
	out.Category = &c.Name
	return out, true
}

func (h HierarchyResolver) lookupFailed(stage string, item taxonomy.Item, err error) {
	h.metrics.ObserveLookupFailure(stage)
	h.logger.WithError(err).WithFields(logrus.Fields{
		"stage":     stage,
		"item_id":   item.ID,
		"item_name": item.Name,
	}).Warn("taxonomy hierarchy lookup failed")
}
