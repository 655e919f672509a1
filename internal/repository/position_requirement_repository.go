package repository

import (
	"context"

	"skillgap/internal/database"
	"skillgap/internal/domain/skill"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrPositionNotFound             = errors.New("position not found")
	ErrPositionRequirementNotFound  = errors.New("position requirement not found")
	ErrPositionRequirementDuplicate = errors.New("position already requires this skill")
)

type PositionRequirementRepository interface {
	PositionExists(ctx context.Context, positionID uuid.UUID) (bool, error)
	FindByPositionID(ctx context.Context, positionID uuid.UUID, includeHierarchy bool) ([]skill.PositionRequirement, error)
	Create(ctx context.Context, req skill.PositionRequirement) (skill.PositionRequirement, error)
	Update(ctx context.Context, req skill.PositionRequirement) (skill.PositionRequirement, error)
	Delete(ctx context.Context, id uuid.UUID, positionID uuid.UUID) error
	ReplaceForPosition(ctx context.Context, positionID uuid.UUID, reqs []skill.PositionRequirement) error
}

type PostgresPositionRequirementRepository struct {
	db database.DB
}

func NewPostgresPositionRequirementRepository(db database.DB) *PostgresPositionRequirementRepository {
	return &PostgresPositionRequirementRepository{db: db}
}

const selectPositionRequirementFlat = `SELECT pr.id, pr.position_id, pr.taxonomy_skill_id, pr.importance_level, pr.required_proficiency,
		i.name, NULL::text, NULL::text, NULL::text
	 FROM position_skill_requirements pr
	 LEFT JOIN skill_taxonomy_items i ON i.id = pr.taxonomy_skill_id`

const selectPositionRequirementHierarchy = `SELECT pr.id, pr.position_id, pr.taxonomy_skill_id, pr.importance_level, pr.required_proficiency,
		i.name, c.name, sc.name, g.name
	 FROM position_skill_requirements pr
	 LEFT JOIN skill_taxonomy_items i ON i.id = pr.taxonomy_skill_id
	 LEFT JOIN skill_groups g ON g.id = i.group_id
	 LEFT JOIN skill_subcategories sc ON sc.id = g.subcategory_id
	 LEFT JOIN skill_categories c ON c.id = sc.category_id`

func (r *PostgresPositionRequirementRepository) PositionExists(ctx context.Context, positionID uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM positions WHERE id = $1)`, positionID)
	if err := row.Scan(&exists); err != nil {
		return false, errors.Wrap(err, "check position")
	}
	return exists, nil
}

func (r *PostgresPositionRequirementRepository) FindByPositionID(ctx context.Context, positionID uuid.UUID, includeHierarchy bool) ([]skill.PositionRequirement, error) {
	base := selectPositionRequirementFlat
	if includeHierarchy {
		base = selectPositionRequirementHierarchy
	}

	rows, err := r.db.Query(ctx,
		base+`
		 WHERE pr.position_id = $1
		 ORDER BY pr.created_at ASC, pr.id ASC`,
		positionID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query position requirements")
	}
	defer rows.Close()

	out := make([]skill.PositionRequirement, 0)
	for rows.Next() {
		req, err := scanPositionRequirement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate position requirements")
	}
	return out, nil
}

func (r *PostgresPositionRequirementRepository) Create(ctx context.Context, req skill.PositionRequirement) (skill.PositionRequirement, error) {
	if err := insertRequirement(ctx, r.db, req); err != nil {
		return skill.PositionRequirement{}, err
	}
	return r.findByID(ctx, req.ID)
}

func (r *PostgresPositionRequirementRepository) Update(ctx context.Context, req skill.PositionRequirement) (skill.PositionRequirement, error) {
	rowsAffected, err := r.db.Exec(ctx,
		`UPDATE position_skill_requirements
		 SET importance_level = $1, required_proficiency = $2
		 WHERE id = $3 AND position_id = $4`,
		req.ImportanceLevel, req.RequiredProficiency, req.ID, req.PositionID,
	)
	if err != nil {
		return skill.PositionRequirement{}, errors.Wrap(err, "update position requirement")
	}
	if rowsAffected == 0 {
		return skill.PositionRequirement{}, ErrPositionRequirementNotFound
	}
	return r.findByID(ctx, req.ID)
}

func (r *PostgresPositionRequirementRepository) Delete(ctx context.Context, id uuid.UUID, positionID uuid.UUID) error {
	rowsAffected, err := r.db.Exec(ctx,
		`DELETE FROM position_skill_requirements WHERE id = $1 AND position_id = $2`,
		id, positionID,
	)
	if err != nil {
		return errors.Wrap(err, "delete position requirement")
	}
	if rowsAffected == 0 {
		return ErrPositionRequirementNotFound
	}
	return nil
}

// ReplaceForPosition swaps the whole requirement set of a position in one
// transaction; on any failure the previous set stays untouched.
func (r *PostgresPositionRequirementRepository) ReplaceForPosition(ctx context.Context, positionID uuid.UUID, reqs []skill.PositionRequirement) error {
	return database.InTx(ctx, r.db, func(tx database.Tx) error {
		// Row lock on the position serializes concurrent replacements.
		var locked uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT id FROM positions WHERE id = $1 FOR UPDATE`, positionID).Scan(&locked); err != nil {
			if isNoRows(err) {
				return ErrPositionNotFound
			}
			return errors.Wrap(err, "lock position")
		}

		if _, err := tx.Exec(ctx, `DELETE FROM position_skill_requirements WHERE position_id = $1`, positionID); err != nil {
			return errors.Wrap(err, "clear position requirements")
		}
		for _, req := range reqs {
			req.PositionID = positionID
			if err := insertRequirement(ctx, tx, req); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresPositionRequirementRepository) findByID(ctx context.Context, id uuid.UUID) (skill.PositionRequirement, error) {
	req, err := scanPositionRequirement(r.db.QueryRow(ctx, selectPositionRequirementHierarchy+` WHERE pr.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return skill.PositionRequirement{}, ErrPositionRequirementNotFound
		}
		return skill.PositionRequirement{}, err
	}
	return req, nil
}

func insertRequirement(ctx context.Context, q database.Querier, req skill.PositionRequirement) error {
	_, err := q.Exec(ctx,
		`INSERT INTO position_skill_requirements (id, position_id, taxonomy_skill_id, importance_level, required_proficiency)
		 VALUES ($1, $2, $3, $4, $5)`,
		req.ID, req.PositionID, req.TaxonomySkillID, req.ImportanceLevel, req.RequiredProficiency,
	)
	if err == nil {
		return nil
	}
	switch {
	case isUniqueViolation(err):
		return ErrPositionRequirementDuplicate
	case isForeignKeyViolation(err):
		return ErrTaxonomyLinkInvalid
	default:
		return errors.Wrap(err, "insert position requirement")
	}
}

func scanPositionRequirement(row database.Row) (skill.PositionRequirement, error) {
	var (
		req       skill.PositionRequirement
		skillName *string
	)
	err := row.Scan(
		&req.ID, &req.PositionID, &req.TaxonomySkillID, &req.ImportanceLevel, &req.RequiredProficiency,
		&skillName, &req.CategoryName, &req.SubcategoryName, &req.GroupName,
	)
	if err != nil {
		if isNoRows(err) {
			return skill.PositionRequirement{}, err
		}
		return skill.PositionRequirement{}, errors.Wrap(err, "scan position requirement")
	}
	if skillName != nil {
		req.SkillName = *skillName
	}
	return req, nil
}
