package repository

import (
	"context"

	"skillgap/internal/database"
	"skillgap/internal/domain/skill"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrEmployeeSkillNotFound  = errors.New("employee skill not found")
	ErrEmployeeSkillForbidden = errors.New("employee skill belongs to another employee")
	ErrTaxonomyLinkInvalid    = errors.New("linked taxonomy item does not exist")
)

type EmployeeSkillRepository interface {
	EmployeeExists(ctx context.Context, employeeID uuid.UUID) (bool, error)
	FindByEmployeeID(ctx context.Context, employeeID uuid.UUID) ([]skill.EmployeeSkill, error)
	FindByID(ctx context.Context, id uuid.UUID) (skill.EmployeeSkill, error)
	Create(ctx context.Context, s skill.EmployeeSkill) (skill.EmployeeSkill, error)
	Update(ctx context.Context, s skill.EmployeeSkill) (skill.EmployeeSkill, error)
	Delete(ctx context.Context, id uuid.UUID, employeeID uuid.UUID) error
}

type PostgresEmployeeSkillRepository struct {
	db database.DB
}

func NewPostgresEmployeeSkillRepository(db database.DB) *PostgresEmployeeSkillRepository {
	return &PostgresEmployeeSkillRepository{db: db}
}

const selectEmployeeSkill = `SELECT es.id, es.employee_id, es.taxonomy_skill_id, es.raw_skill, es.proficiency, es.verified, es.source,
		es.created_at, es.updated_at, i.name, c.name, sc.name, g.name
	 FROM employee_skills es
	 LEFT JOIN skill_taxonomy_items i ON i.id = es.taxonomy_skill_id
	 LEFT JOIN skill_groups g ON g.id = i.group_id
	 LEFT JOIN skill_subcategories sc ON sc.id = g.subcategory_id
	 LEFT JOIN skill_categories c ON c.id = sc.category_id`

func (r *PostgresEmployeeSkillRepository) EmployeeExists(ctx context.Context, employeeID uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1)`, employeeID)
	if err := row.Scan(&exists); err != nil {
		return false, errors.Wrap(err, "check employee")
	}
	return exists, nil
}

func (r *PostgresEmployeeSkillRepository) FindByEmployeeID(ctx context.Context, employeeID uuid.UUID) ([]skill.EmployeeSkill, error) {
	rows, err := r.db.Query(ctx,
		selectEmployeeSkill+`
		 WHERE es.employee_id = $1
		 ORDER BY es.created_at ASC, es.id ASC`,
		employeeID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query employee skills")
	}
	defer rows.Close()

	out := make([]skill.EmployeeSkill, 0)
	for rows.Next() {
		s, err := scanEmployeeSkill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate employee skills")
	}
	return out, nil
}

func (r *PostgresEmployeeSkillRepository) FindByID(ctx context.Context, id uuid.UUID) (skill.EmployeeSkill, error) {
	s, err := scanEmployeeSkill(r.db.QueryRow(ctx, selectEmployeeSkill+` WHERE es.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return skill.EmployeeSkill{}, ErrEmployeeSkillNotFound
		}
		return skill.EmployeeSkill{}, err
	}
	return s, nil
}

func (r *PostgresEmployeeSkillRepository) Create(ctx context.Context, s skill.EmployeeSkill) (skill.EmployeeSkill, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO employee_skills (id, employee_id, taxonomy_skill_id, raw_skill, proficiency, verified, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.EmployeeID, s.TaxonomySkillID, s.RawSkill, s.Proficiency, s.Verified, string(s.Source),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return skill.EmployeeSkill{}, ErrTaxonomyLinkInvalid
		}
		return skill.EmployeeSkill{}, errors.Wrap(err, "insert employee skill")
	}
	return r.FindByID(ctx, s.ID)
}

func (r *PostgresEmployeeSkillRepository) Update(ctx context.Context, s skill.EmployeeSkill) (skill.EmployeeSkill, error) {
	rowsAffected, err := r.db.Exec(ctx,
		`UPDATE employee_skills
		 SET taxonomy_skill_id = $1, raw_skill = $2, proficiency = $3, verified = $4, source = $5, updated_at = now()
		 WHERE id = $6 AND employee_id = $7`,
		s.TaxonomySkillID, s.RawSkill, s.Proficiency, s.Verified, string(s.Source), s.ID, s.EmployeeID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return skill.EmployeeSkill{}, ErrTaxonomyLinkInvalid
		}
		return skill.EmployeeSkill{}, errors.Wrap(err, "update employee skill")
	}
	if rowsAffected == 0 {
		if err := r.checkOwner(ctx, s.ID, s.EmployeeID); err != nil {
			return skill.EmployeeSkill{}, err
		}
		return skill.EmployeeSkill{}, ErrEmployeeSkillNotFound
	}
	return r.FindByID(ctx, s.ID)
}

func (r *PostgresEmployeeSkillRepository) Delete(ctx context.Context, id uuid.UUID, employeeID uuid.UUID) error {
	if err := r.checkOwner(ctx, id, employeeID); err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM employee_skills WHERE id = $1 AND employee_id = $2`, id, employeeID); err != nil {
		return errors.Wrap(err, "delete employee skill")
	}
	return nil
}

// checkOwner returns ErrEmployeeSkillNotFound for an unknown record and
// ErrEmployeeSkillForbidden when it belongs to someone else.
func (r *PostgresEmployeeSkillRepository) checkOwner(ctx context.Context, id uuid.UUID, employeeID uuid.UUID) error {
	var owner uuid.UUID
	row := r.db.QueryRow(ctx, `SELECT employee_id FROM employee_skills WHERE id = $1`, id)
	if err := row.Scan(&owner); err != nil {
		if isNoRows(err) {
			return ErrEmployeeSkillNotFound
		}
		return errors.Wrap(err, "load employee skill owner")
	}
	if owner != employeeID {
		return ErrEmployeeSkillForbidden
	}
	return nil
}

func scanEmployeeSkill(row database.Row) (skill.EmployeeSkill, error) {
	var (
		s         skill.EmployeeSkill
		taxID     uuid.NullUUID
		source    string
		skillName *string
	)
	err := row.Scan(
		&s.ID, &s.EmployeeID, &taxID, &s.RawSkill, &s.Proficiency, &s.Verified, &source,
		&s.CreatedAt, &s.UpdatedAt, &skillName, &s.CategoryName, &s.SubcategoryName, &s.GroupName,
	)
	if err != nil {
		if isNoRows(err) {
			return skill.EmployeeSkill{}, err
		}
		return skill.EmployeeSkill{}, errors.Wrap(err, "scan employee skill")
	}

	if taxID.Valid {
		id := taxID.UUID
		s.TaxonomySkillID = &id
	}
	s.Source = skill.Source(source)
	s.SkillName = s.RawSkill
	if skillName != nil && *skillName != "" {
		s.SkillName = *skillName
	}
	return s, nil
}
