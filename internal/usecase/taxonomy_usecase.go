package usecase

import (
	"context"

	"skillgap/internal/domain/taxonomy"
	"skillgap/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type TaxonomyItemDetail struct {
	Item      taxonomy.Item
	Hierarchy taxonomy.Hierarchy
}

type TaxonomyUsecase interface {
	GetItem(ctx context.Context, id uuid.UUID) (TaxonomyItemDetail, error)
}

type Taxonomy struct {
	repo     repository.TaxonomyRepository
	resolver HierarchyResolver
	logger   logrus.FieldLogger
}

func NewTaxonomyUsecase(repo repository.TaxonomyRepository, resolver HierarchyResolver, logger logrus.FieldLogger) *Taxonomy {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Taxonomy{repo: repo, resolver: resolver, logger: logger.WithField("component", "taxonomy")}
}

func (u *Taxonomy) GetItem(ctx context.Context, id uuid.UUID) (TaxonomyItemDetail, error) {
	if id == uuid.Nil {
		return TaxonomyItemDetail{}, ErrInvalidInput
	}
	it, err := u.repo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaxonomyItemNotFound) {
			return TaxonomyItemDetail{}, ErrTaxonomySkillNotFound
		}
		u.logger.WithError(err).WithField("item_id", id).Error("load taxonomy item")
		return TaxonomyItemDetail{}, ErrInternal
	}
	h, _ := u.resolver.Resolve(ctx, it)
	return TaxonomyItemDetail{Item: it, Hierarchy: h}, nil
}
