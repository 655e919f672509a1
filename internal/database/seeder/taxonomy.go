package seeder

import (
	"context"

	"skillgap/internal/database"
	"skillgap/internal/domain/taxonomy"
	"skillgap/internal/usecase"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type CacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
}

// TaxonomySeeder upserts a taxonomy snapshot by id and then drops cached
// normalization results, which may point at renamed or moved items. Nodes
// missing from the snapshot are left alone.
type TaxonomySeeder struct {
	// Snapshot defaults to the embedded curated taxonomy.
	Snapshot *taxonomy.Snapshot
	Cache    CacheInvalidator
	Logger   logrus.FieldLogger
}

func (TaxonomySeeder) Name() string { return "taxonomy" }

func (s TaxonomySeeder) Run(ctx context.Context, db database.DB) error {
	logger := s.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if err := EnsureTableColumns(ctx, db, "skill_taxonomy_items", "id", "group_id", "name", "description", "keywords"); err != nil {
		return err
	}

	snap := s.Snapshot
	if snap == nil {
		def, err := DefaultSnapshot()
		if err != nil {
			return err
		}
		snap = &def
	}
	tree, err := snap.Flatten()
	if err != nil {
		return err
	}

	err = database.InTx(ctx, db, func(tx database.Tx) error {
		return upsertTree(ctx, tx, tree)
	})
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"categories":    len(tree.Categories),
		"subcategories": len(tree.Subcategories),
		"groups":        len(tree.Groups),
		"items":         len(tree.Items),
	}).Info("taxonomy seeded")

	if s.Cache != nil {
		n, err := s.Cache.DeleteByPattern(ctx, usecase.NormalizeCachePattern)
		if err != nil {
			logger.WithError(err).Warn("invalidate normalization cache")
		} else {
			logger.WithField("keys", n).Info("normalization cache invalidated")
		}
	}
	return nil
}

func upsertTree(ctx context.Context, q database.Querier, tree taxonomy.Tree) error {
	for _, c := range tree.Categories {
		if _, err := q.Exec(ctx,
			`INSERT INTO skill_categories (id, name, description) VALUES ($1, $2, $3)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description`,
			c.ID, c.Name, c.Description,
		); err != nil {
			return errors.Wrapf(err, "upsert category %q", c.Name)
		}
	}
	for _, sc := range tree.Subcategories {
		if _, err := q.Exec(ctx,
			`INSERT INTO skill_subcategories (id, category_id, name, description) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET category_id = EXCLUDED.category_id, name = EXCLUDED.name, description = EXCLUDED.description`,
			sc.ID, sc.CategoryID, sc.Name, sc.Description,
		); err != nil {
			return errors.Wrapf(err, "upsert subcategory %q", sc.Name)
		}
	}
	for _, g := range tree.Groups {
		if _, err := q.Exec(ctx,
			`INSERT INTO skill_groups (id, subcategory_id, name, description) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET subcategory_id = EXCLUDED.subcategory_id, name = EXCLUDED.name, description = EXCLUDED.description`,
			g.ID, g.SubcategoryID, g.Name, g.Description,
		); err != nil {
			return errors.Wrapf(err, "upsert group %q", g.Name)
		}
	}
	for _, it := range tree.Items {
		if _, err := q.Exec(ctx,
			`INSERT INTO skill_taxonomy_items (id, group_id, name, description, keywords) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET group_id = EXCLUDED.group_id, name = EXCLUDED.name,
			   description = EXCLUDED.description, keywords = EXCLUDED.keywords`,
			it.ID, it.GroupID, it.Name, it.Description, it.Keywords,
		); err != nil {
			return errors.Wrapf(err, "upsert item %q", it.Name)
		}
	}
	return nil
}
