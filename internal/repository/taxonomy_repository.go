package repository

import (
	"context"
	"strings"

	"skillgap/internal/database"
	"skillgap/internal/domain/taxonomy"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrTaxonomyItemNotFound        = errors.New("taxonomy item not found")
	ErrTaxonomyGroupNotFound       = errors.New("taxonomy group not found")
	ErrTaxonomySubcategoryNotFound = errors.New("taxonomy subcategory not found")
	ErrTaxonomyCategoryNotFound    = errors.New("taxonomy category not found")
)

// TaxonomyRepository is read-only access to the skill taxonomy tree.
type TaxonomyRepository interface {
	FindItemsByExactName(ctx context.Context, name string) ([]taxonomy.Item, error)
	FindItemsByNameContaining(ctx context.Context, fragment string) ([]taxonomy.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (taxonomy.Item, error)
	GetGroup(ctx context.Context, id uuid.UUID) (taxonomy.Group, error)
	GetSubcategory(ctx context.Context, id uuid.UUID) (taxonomy.Subcategory, error)
	GetCategory(ctx context.Context, id uuid.UUID) (taxonomy.Category, error)
}

type PostgresTaxonomyRepository struct {
	db database.DB
}

func NewPostgresTaxonomyRepository(db database.DB) *PostgresTaxonomyRepository {
	return &PostgresTaxonomyRepository{db: db}
}

const selectTaxonomyItem = `SELECT i.id, i.group_id, i.name, COALESCE(i.description, ''), COALESCE(i.keywords, '{}')
	 FROM skill_taxonomy_items i`

func (r *PostgresTaxonomyRepository) FindItemsByExactName(ctx context.Context, name string) ([]taxonomy.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []taxonomy.Item{}, nil
	}
	return r.queryItems(ctx,
		selectTaxonomyItem+`
		 WHERE lower(i.name) = lower($1)
		 ORDER BY i.name ASC, i.id ASC`,
		name,
	)
}

func (r *PostgresTaxonomyRepository) FindItemsByNameContaining(ctx context.Context, fragment string) ([]taxonomy.Item, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return []taxonomy.Item{}, nil
	}
	return r.queryItems(ctx,
		selectTaxonomyItem+`
		 WHERE strpos(lower(i.name), lower($1)) > 0
		 ORDER BY i.name ASC, i.id ASC`,
		fragment,
	)
}

func (r *PostgresTaxonomyRepository) GetItem(ctx context.Context, id uuid.UUID) (taxonomy.Item, error) {
	row := r.db.QueryRow(ctx, selectTaxonomyItem+` WHERE i.id = $1`, id)

	var it taxonomy.Item
	if err := row.Scan(&it.ID, &it.GroupID, &it.Name, &it.Description, &it.Keywords); err != nil {
		if isNoRows(err) {
			return taxonomy.Item{}, ErrTaxonomyItemNotFound
		}
		return taxonomy.Item{}, errors.Wrap(err, "get taxonomy item")
	}
	return it, nil
}

func (r *PostgresTaxonomyRepository) GetGroup(ctx context.Context, id uuid.UUID) (taxonomy.Group, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, subcategory_id, name, COALESCE(description, '') FROM skill_groups WHERE id = $1`,
		id,
	)

	var g taxonomy.Group
	if err := row.Scan(&g.ID, &g.SubcategoryID, &g.Name, &g.Description); err != nil {
		if isNoRows(err) {
			return taxonomy.Group{}, ErrTaxonomyGroupNotFound
		}
		return taxonomy.Group{}, errors.Wrap(err, "get taxonomy group")
	}
	return g, nil
}

func (r *PostgresTaxonomyRepository) GetSubcategory(ctx context.Context, id uuid.UUID) (taxonomy.Subcategory, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, category_id, name, COALESCE(description, '') FROM skill_subcategories WHERE id = $1`,
		id,
	)

	var s taxonomy.Subcategory
	if err := row.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Description); err != nil {
		if isNoRows(err) {
			return taxonomy.Subcategory{}, ErrTaxonomySubcategoryNotFound
		}
		return taxonomy.Subcategory{}, errors.Wrap(err, "get taxonomy subcategory")
	}
	return s, nil
}

func (r *PostgresTaxonomyRepository) GetCategory(ctx context.Context, id uuid.UUID) (taxonomy.Category, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, COALESCE(description, '') FROM skill_categories WHERE id = $1`,
		id,
	)

	var c taxonomy.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description); err != nil {
		if isNoRows(err) {
			return taxonomy.Category{}, ErrTaxonomyCategoryNotFound
		}
		return taxonomy.Category{}, errors.Wrap(err, "get taxonomy category")
	}
	return c, nil
}

func (r *PostgresTaxonomyRepository) queryItems(ctx context.Context, query string, args ...any) ([]taxonomy.Item, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query taxonomy items")
	}
	defer rows.Close()

	out := make([]taxonomy.Item, 0)
	for rows.Next() {
		var it taxonomy.Item
		if err := rows.Scan(&it.ID, &it.GroupID, &it.Name, &it.Description, &it.Keywords); err != nil {
			return nil, errors.Wrap(err, "scan taxonomy item")
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate taxonomy items")
	}
	return out, nil
}
