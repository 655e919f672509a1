package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"skillgap/internal/domain/skill"
	"skillgap/internal/repository"

	"github.com/google/uuid"
)

type EmployeeSkills struct {
	taxonomy *Taxonomy
	now      func() time.Time

	mu        sync.RWMutex
	employees map[uuid.UUID]struct{}
	records   map[uuid.UUID]skill.EmployeeSkill
	seq       map[uuid.UUID]int
	next      int
}

var _ repository.EmployeeSkillRepository = (*EmployeeSkills)(nil)

func NewEmployeeSkills(tax *Taxonomy) *EmployeeSkills {
	if tax == nil {
		tax = NewTaxonomy()
	}
	return &EmployeeSkills{
		taxonomy:  tax,
		now:       func() time.Time { return time.Now().UTC() },
		employees: make(map[uuid.UUID]struct{}),
		records:   make(map[uuid.UUID]skill.EmployeeSkill),
		seq:       make(map[uuid.UUID]int),
	}
}

func (r *EmployeeSkills) AddEmployee(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[id] = struct{}{}
}

func (r *EmployeeSkills) EmployeeExists(_ context.Context, employeeID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.employees[employeeID]
	return ok, nil
}

func (r *EmployeeSkills) FindByEmployeeID(_ context.Context, employeeID uuid.UUID) ([]skill.EmployeeSkill, error) {
	r.mu.RLock()
	out := make([]skill.EmployeeSkill, 0)
	for _, s := range r.records {
		if s.EmployeeID == employeeID {
			out = append(out, s)
		}
	}
	seq := r.seq
	sort.Slice(out, func(i, j int) bool { return seq[out[i].ID] < seq[out[j].ID] })
	r.mu.RUnlock()

	for i := range out {
		out[i] = r.enrich(out[i])
	}
	return out, nil
}

func (r *EmployeeSkills) FindByID(_ context.Context, id uuid.UUID) (skill.EmployeeSkill, error) {
	r.mu.RLock()
	s, ok := r.records[id]
	r.mu.RUnlock()
	if !ok {
		return skill.EmployeeSkill{}, repository.ErrEmployeeSkillNotFound
	}
	return r.enrich(s), nil
}

func (r *EmployeeSkills) Create(ctx context.Context, s skill.EmployeeSkill) (skill.EmployeeSkill, error) {
	if s.TaxonomySkillID != nil && !r.taxonomy.hasItem(*s.TaxonomySkillID) {
		return skill.EmployeeSkill{}, repository.ErrTaxonomyLinkInvalid
	}

	r.mu.Lock()
	now := r.now()
	s.CreatedAt, s.UpdatedAt = now, now
	r.records[s.ID] = stripDisplay(s)
	r.next++
	r.seq[s.ID] = r.next
	r.mu.Unlock()

	return r.FindByID(ctx, s.ID)
}

func (r *EmployeeSkills) Update(ctx context.Context, s skill.EmployeeSkill) (skill.EmployeeSkill, error) {
	if s.TaxonomySkillID != nil && !r.taxonomy.hasItem(*s.TaxonomySkillID) {
		return skill.EmployeeSkill{}, repository.ErrTaxonomyLinkInvalid
	}

	r.mu.Lock()
	prev, ok := r.records[s.ID]
	if !ok {
		r.mu.Unlock()
		return skill.EmployeeSkill{}, repository.ErrEmployeeSkillNotFound
	}
	if prev.EmployeeID != s.EmployeeID {
		r.mu.Unlock()
		return skill.EmployeeSkill{}, repository.ErrEmployeeSkillForbidden
	}
	s.CreatedAt = prev.CreatedAt
	s.UpdatedAt = r.now()
	r.records[s.ID] = stripDisplay(s)
	r.mu.Unlock()

	return r.FindByID(ctx, s.ID)
}

func (r *EmployeeSkills) Delete(_ context.Context, id uuid.UUID, employeeID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.records[id]
	if !ok {
		return repository.ErrEmployeeSkillNotFound
	}
	if s.EmployeeID != employeeID {
		return repository.ErrEmployeeSkillForbidden
	}
	delete(r.records, id)
	delete(r.seq, id)
	return nil
}

func (r *EmployeeSkills) enrich(s skill.EmployeeSkill) skill.EmployeeSkill {
	s.SkillName = s.RawSkill
	if s.TaxonomySkillID == nil {
		return s
	}
	name, h, ok := r.taxonomy.hierarchy(*s.TaxonomySkillID)
	if !ok {
		return s
	}
	if name != "" {
		s.SkillName = name
	}
	s.CategoryName, s.SubcategoryName, s.GroupName = h.Category, h.Subcategory, h.Group
	return s
}

func stripDisplay(s skill.EmployeeSkill) skill.EmployeeSkill {
	s.SkillName = ""
	s.CategoryName, s.SubcategoryName, s.GroupName = nil, nil, nil
	return s
}
