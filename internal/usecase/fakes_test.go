package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"skillgap/internal/domain/taxonomy"
	"skillgap/internal/repository"
	"skillgap/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var errStoreDown = errors.New("store down")

func nullLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

// testTaxonomy is a small tree:
//
//	Technology / Programming / Languages: Python, PyTorch, Java, JavaScript, Go
//	Business / Management / Delivery: Project Management
type testTaxonomy struct {
	repo *memory.Taxonomy
	ids  map[string]uuid.UUID
}

func newTestTaxonomy() testTaxonomy {
	repo := memory.NewTaxonomy()
	ids := make(map[string]uuid.UUID)

	add := func(category, subcategory, group string, items ...string) {
		c := taxonomy.Category{ID: uuid.New(), Name: category}
		sc := taxonomy.Subcategory{ID: uuid.New(), CategoryID: c.ID, Name: subcategory}
		g := taxonomy.Group{ID: uuid.New(), SubcategoryID: sc.ID, Name: group}
		repo.AddCategory(c)
		repo.AddSubcategory(sc)
		repo.AddGroup(g)
		for _, name := range items {
			it := taxonomy.Item{ID: uuid.New(), GroupID: g.ID, Name: name, Keywords: []string{}}
			repo.AddItem(it)
			ids[name] = it.ID
		}
	}
	add("Technology", "Programming", "Languages", "Python", "PyTorch", "Java", "JavaScript", "Go")
	add("Business", "Management", "Delivery", "Project Management")

	return testTaxonomy{repo: repo, ids: ids}
}

// stubTaxonomy returns canned candidates and can fail any lookup. It also
// records how many exact-name lookups run at the same time.
type stubTaxonomy struct {
	exact   []taxonomy.Item
	partial []taxonomy.Item

	exactErr   error
	partialErr error
	failFor    map[string]bool

	groups        map[uuid.UUID]taxonomy.Group
	subcategories map[uuid.UUID]taxonomy.Subcategory
	categories    map[uuid.UUID]taxonomy.Category
	subErr        error

	delay       time.Duration
	inflight    atomic.Int32
	maxInflight atomic.Int32
	lookups     atomic.Int32
}

func (s *stubTaxonomy) FindItemsByExactName(_ context.Context, name string) ([]taxonomy.Item, error) {
	s.lookups.Add(1)
	cur := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		prev := s.maxInflight.Load()
		if cur <= prev || s.maxInflight.CompareAndSwap(prev, cur) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.failFor[name] {
		return nil, errStoreDown
	}
	return s.exact, s.exactErr
}

func (s *stubTaxonomy) FindItemsByNameContaining(context.Context, string) ([]taxonomy.Item, error) {
	return s.partial, s.partialErr
}

func (s *stubTaxonomy) GetItem(context.Context, uuid.UUID) (taxonomy.Item, error) {
	return taxonomy.Item{}, repository.ErrTaxonomyItemNotFound
}

func (s *stubTaxonomy) GetGroup(_ context.Context, id uuid.UUID) (taxonomy.Group, error) {
	g, ok := s.groups[id]
	if !ok {
		return taxonomy.Group{}, repository.ErrTaxonomyGroupNotFound
	}
	return g, nil
}

func (s *stubTaxonomy) GetSubcategory(_ context.Context, id uuid.UUID) (taxonomy.Subcategory, error) {
	if s.subErr != nil {
		return taxonomy.Subcategory{}, s.subErr
	}
	sc, ok := s.subcategories[id]
	if !ok {
		return taxonomy.Subcategory{}, repository.ErrTaxonomySubcategoryNotFound
	}
	return sc, nil
}

func (s *stubTaxonomy) GetCategory(_ context.Context, id uuid.UUID) (taxonomy.Category, error) {
	c, ok := s.categories[id]
	if !ok {
		return taxonomy.Category{}, repository.ErrTaxonomyCategoryNotFound
	}
	return c, nil
}

type mapCache struct {
	mu   sync.Mutex
	data map[string]NormalizationResult
	gets int
	sets int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string]NormalizationResult)}
}

func (c *mapCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	*(out.(*NormalizationResult)) = v
	return true, nil
}

func (c *mapCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = value.(NormalizationResult)
	return nil
}

type failingCache struct{}

func (failingCache) GetJSON(context.Context, string, any) (bool, error) { return false, errStoreDown }
func (failingCache) SetJSON(context.Context, string, any, time.Duration) error {
	return errStoreDown
}

func boolPtr(v bool) *bool { return &v }

func floatPtr(v float64) *float64 { return &v }
