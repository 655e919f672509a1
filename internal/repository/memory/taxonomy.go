// Package memory holds in-process implementations of the repository
// interfaces, used by the offline normalizer and by tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"skillgap/internal/domain/taxonomy"
	"skillgap/internal/repository"

	"github.com/google/uuid"
)

type Taxonomy struct {
	mu            sync.RWMutex
	categories    map[uuid.UUID]taxonomy.Category
	subcategories map[uuid.UUID]taxonomy.Subcategory
	groups        map[uuid.UUID]taxonomy.Group
	items         map[uuid.UUID]taxonomy.Item
}

var _ repository.TaxonomyRepository = (*Taxonomy)(nil)

func NewTaxonomy() *Taxonomy {
	return &Taxonomy{
		categories:    make(map[uuid.UUID]taxonomy.Category),
		subcategories: make(map[uuid.UUID]taxonomy.Subcategory),
		groups:        make(map[uuid.UUID]taxonomy.Group),
		items:         make(map[uuid.UUID]taxonomy.Item),
	}
}

// NewTaxonomyFromTree loads a flattened snapshot.
func NewTaxonomyFromTree(t taxonomy.Tree) *Taxonomy {
	tx := NewTaxonomy()
	for _, c := range t.Categories {
		tx.AddCategory(c)
	}
	for _, sc := range t.Subcategories {
		tx.AddSubcategory(sc)
	}
	for _, g := range t.Groups {
		tx.AddGroup(g)
	}
	for _, it := range t.Items {
		tx.AddItem(it)
	}
	return tx
}

func (t *Taxonomy) AddCategory(c taxonomy.Category) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.categories[c.ID] = c
}

func (t *Taxonomy) AddSubcategory(sc taxonomy.Subcategory) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subcategories[sc.ID] = sc
}

func (t *Taxonomy) AddGroup(g taxonomy.Group) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.groups[g.ID] = g
}

func (t *Taxonomy) AddItem(it taxonomy.Item) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[it.ID] = it
}

func (t *Taxonomy) FindItemsByExactName(_ context.Context, name string) ([]taxonomy.Item, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return []taxonomy.Item{}, nil
	}
	return t.filterItems(func(it taxonomy.Item) bool {
		return strings.ToLower(it.Name) == name
	}), nil
}

func (t *Taxonomy) FindItemsByNameContaining(_ context.Context, fragment string) ([]taxonomy.Item, error) {
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	if fragment == "" {
		return []taxonomy.Item{}, nil
	}
	return t.filterItems(func(it taxonomy.Item) bool {
		return strings.Contains(strings.ToLower(it.Name), fragment)
	}), nil
}

func (t *Taxonomy) GetItem(_ context.Context, id uuid.UUID) (taxonomy.Item, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	it, ok := t.items[id]
	if !ok {
		return taxonomy.Item{}, repository.ErrTaxonomyItemNotFound
	}
	return it, nil
}

func (t *Taxonomy) GetGroup(_ context.Context, id uuid.UUID) (taxonomy.Group, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	g, ok := t.groups[id]
	if !ok {
		return taxonomy.Group{}, repository.ErrTaxonomyGroupNotFound
	}
	return g, nil
}

func (t *Taxonomy) GetSubcategory(_ context.Context, id uuid.UUID) (taxonomy.Subcategory, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sc, ok := t.subcategories[id]
	if !ok {
		return taxonomy.Subcategory{}, repository.ErrTaxonomySubcategoryNotFound
	}
	return sc, nil
}

func (t *Taxonomy) GetCategory(_ context.Context, id uuid.UUID) (taxonomy.Category, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.categories[id]
	if !ok {
		return taxonomy.Category{}, repository.ErrTaxonomyCategoryNotFound
	}
	return c, nil
}

// hierarchy resolves the display names of an item's ancestors, leaving
// unresolvable levels nil.
func (t *Taxonomy) hierarchy(itemID uuid.UUID) (name string, h taxonomy.Hierarchy, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	it, found := t.items[itemID]
	if !found {
		return "", taxonomy.Hierarchy{}, false
	}
	g, found := t.groups[it.GroupID]
	if !found {
		return it.Name, h, true
	}
	h.Group = strPtr(g.Name)
	sc, found := t.subcategories[g.SubcategoryID]
	if !found {
		return it.Name, h, true
	}
	h.Subcategory = strPtr(sc.Name)
	c, found := t.categories[sc.CategoryID]
	if !found {
		return it.Name, h, true
	}
	h.Category = strPtr(c.Name)
	return it.Name, h, true
}

func (t *Taxonomy) hasItem(id uuid.UUID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.items[id]
	return ok
}

func (t *Taxonomy) filterItems(keep func(taxonomy.Item) bool) []taxonomy.Item {
	t.mu.RLock()
	out := make([]taxonomy.Item, 0)
	for _, it := range t.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func strPtr(s string) *string {
	return &s
}
