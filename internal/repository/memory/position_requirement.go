package memory

import (
	"context"
	"sync"

	"skillgap/internal/domain/skill"
	"skillgap/internal/repository"

	"github.com/google/uuid"
)

type PositionRequirements struct {
	taxonomy *Taxonomy

	mu        sync.RWMutex
	positions map[uuid.UUID][]skill.PositionRequirement
}

var _ repository.PositionRequirementRepository = (*PositionRequirements)(nil)

func NewPositionRequirements(tax *Taxonomy) *PositionRequirements {
	if tax == nil {
		tax = NewTaxonomy()
	}
	return &PositionRequirements{
		taxonomy:  tax,
		positions: make(map[uuid.UUID][]skill.PositionRequirement),
	}
}

func (r *PositionRequirements) AddPosition(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.positions[id]; !ok {
		r.positions[id] = []skill.PositionRequirement{}
	}
}

func (r *PositionRequirements) PositionExists(_ context.Context, positionID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.positions[positionID]
	return ok, nil
}

func (r *PositionRequirements) FindByPositionID(_ context.Context, positionID uuid.UUID, includeHierarchy bool) ([]skill.PositionRequirement, error) {
	r.mu.RLock()
	src := r.positions[positionID]
	out := make([]skill.PositionRequirement, len(src))
	copy(out, src)
	r.mu.RUnlock()

	for i := range out {
		out[i] = r.enrich(out[i], includeHierarchy)
	}
	return out, nil
}

func (r *PositionRequirements) Create(_ context.Context, req skill.PositionRequirement) (skill.PositionRequirement, error) {
	if !r.taxonomy.hasItem(req.TaxonomySkillID) {
		return skill.PositionRequirement{}, repository.ErrTaxonomyLinkInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.positions[req.PositionID] {
		if existing.TaxonomySkillID == req.TaxonomySkillID {
			return skill.PositionRequirement{}, repository.ErrPositionRequirementDuplicate
		}
	}
	r.positions[req.PositionID] = append(r.positions[req.PositionID], req)
	return r.enrich(req, true), nil
}

func (r *PositionRequirements) Update(_ context.Context, req skill.PositionRequirement) (skill.PositionRequirement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.positions[req.PositionID]
	for i := range list {
		if list[i].ID != req.ID {
			continue
		}
		list[i].ImportanceLevel = req.ImportanceLevel
		list[i].RequiredProficiency = req.RequiredProficiency
		return r.enrich(list[i], true), nil
	}
	return skill.PositionRequirement{}, repository.ErrPositionRequirementNotFound
}

func (r *PositionRequirements) Delete(_ context.Context, id uuid.UUID, positionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.positions[positionID]
	for i := range list {
		if list[i].ID == id {
			r.positions[positionID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return repository.ErrPositionRequirementNotFound
}

// ReplaceForPosition validates the whole set before swapping it in, so a
// failure leaves the previous requirements in place.
func (r *PositionRequirements) ReplaceForPosition(_ context.Context, positionID uuid.UUID, reqs []skill.PositionRequirement) error {
	next := make([]skill.PositionRequirement, 0, len(reqs))
	seen := make(map[uuid.UUID]struct{}, len(reqs))
	for _, req := range reqs {
		if !r.taxonomy.hasItem(req.TaxonomySkillID) {
			return repository.ErrTaxonomyLinkInvalid
		}
		if _, dup := seen[req.TaxonomySkillID]; dup {
			return repository.ErrPositionRequirementDuplicate
		}
		seen[req.TaxonomySkillID] = struct{}{}
		req.PositionID = positionID
		next = append(next, stripRequirementDisplay(req))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.positions[positionID]; !ok {
		return repository.ErrPositionNotFound
	}
	r.positions[positionID] = next
	return nil
}

func (r *PositionRequirements) enrich(req skill.PositionRequirement, includeHierarchy bool) skill.PositionRequirement {
	req = stripRequirementDisplay(req)
	name, h, ok := r.taxonomy.hierarchy(req.TaxonomySkillID)
	if !ok {
		return req
	}
	req.SkillName = name
	if includeHierarchy {
		req.CategoryName, req.SubcategoryName, req.GroupName = h.Category, h.Subcategory, h.Group
	}
	return req
}

func stripRequirementDisplay(req skill.PositionRequirement) skill.PositionRequirement {
	req.SkillName = ""
	req.CategoryName, req.SubcategoryName, req.GroupName = nil, nil, nil
	return req
}
