package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"shopcore/internal/domain"
	"shopcore/internal/repository"
)

var errInjected = errors.New("injected storage failure")

// memoryStore is an in-memory repository.Store. WithinTx snapshots state and
// restores it when the callback fails, which is enough to observe rollbacks.
type memoryStore struct {
	mu sync.Mutex

	nextProductID  int64
	nextCategoryID int64
	products       map[int64]domain.Product
	categories     map[int64]domain.Category
	links          map[int64]map[int64]struct{}

	// failUpdateFor makes UpdateProduct/CreateProduct fail for the given canonical name
	failUpdateFor map[string]error
	// failReads makes GetProductWithCategories fail with a storage error
	failReads bool

	calls []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		products:      make(map[int64]domain.Product),
		categories:    make(map[int64]domain.Category),
		links:         make(map[int64]map[int64]struct{}),
		failUpdateFor: make(map[string]error),
	}
}

func (m *memoryStore) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *memoryStore) addCategory(name string) domain.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextCategoryID++
	c := domain.Category{ID: m.nextCategoryID, Name: name}
	m.categories[c.ID] = c
	return c
}

func (m *memoryStore) addProduct(p domain.Product, categoryIDs ...int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextProductID++
	p.ID = m.nextProductID
	p.Categories = nil
	m.products[p.ID] = p
	m.links[p.ID] = make(map[int64]struct{})
	for _, id := range categoryIDs {
		m.links[p.ID][id] = struct{}{}
	}
	return p.ID
}

func (m *memoryStore) productNamed(name string) (domain.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if domain.CanonicalName(p.Name) == domain.CanonicalName(name) {
			return m.withCategories(p), true
		}
	}
	return domain.Product{}, false
}

func (m *memoryStore) categoryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.categories)
}

func (m *memoryStore) productCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products)
}

func (m *memoryStore) withCategories(p domain.Product) domain.Product {
	ids := make([]int64, 0, len(m.links[p.ID]))
	for id := range m.links[p.ID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	p.Categories = make([]domain.Category, 0, len(ids))
	for _, id := range ids {
		p.Categories = append(p.Categories, m.categories[id])
	}
	return p
}

func (m *memoryStore) GetProductWithCategories(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetProductWithCategories")
	if m.failReads {
		return nil, errInjected
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	p = m.withCategories(p)
	return &p, nil
}

func (m *memoryStore) GetProductByName(ctx context.Context, name string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetProductByName")
	for _, p := range m.products {
		if domain.CanonicalName(p.Name) == domain.CanonicalName(name) {
			p = m.withCategories(p)
			return &p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *memoryStore) CreateProduct(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateProduct")
	if err, ok := m.failUpdateFor[domain.CanonicalName(product.Name)]; ok {
		return err
	}
	for _, p := range m.products {
		if domain.CanonicalName(p.Name) == domain.CanonicalName(product.Name) {
			return repository.ErrProductAlreadyExists
		}
	}
	m.nextProductID++
	product.ID = m.nextProductID
	stored := *product
	stored.Categories = nil
	m.products[product.ID] = stored
	m.links[product.ID] = make(map[int64]struct{})
	return nil
}

func (m *memoryStore) UpdateProduct(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateProduct")
	if err, ok := m.failUpdateFor[domain.CanonicalName(product.Name)]; ok {
		return err
	}
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	stored := *product
	stored.Categories = nil
	m.products[product.ID] = stored
	return nil
}

func (m *memoryStore) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetCategoryByName")
	for _, c := range m.categories {
		if domain.CanonicalName(c.Name) == domain.CanonicalName(name) {
			c := c
			return &c, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (m *memoryStore) CreateCategory(ctx context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateCategory")
	for _, c := range m.categories {
		if domain.CanonicalName(c.Name) == domain.CanonicalName(category.Name) {
			return repository.ErrCategoryAlreadyExists
		}
	}
	m.nextCategoryID++
	category.ID = m.nextCategoryID
	m.categories[category.ID] = *category
	return nil
}

func (m *memoryStore) LinkProductCategory(ctx context.Context, productID, categoryID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("LinkProductCategory")
	if _, ok := m.links[productID]; !ok {
		m.links[productID] = make(map[int64]struct{})
	}
	m.links[productID][categoryID] = struct{}{}
	return nil
}

func (m *memoryStore) UnlinkProductCategory(ctx context.Context, productID, categoryID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UnlinkProductCategory")
	delete(m.links[productID], categoryID)
	return nil
}

type memorySnapshot struct {
	nextProductID  int64
	nextCategoryID int64
	products       map[int64]domain.Product
	categories     map[int64]domain.Category
	links          map[int64]map[int64]struct{}
}

func (m *memoryStore) snapshot() memorySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := memorySnapshot{
		nextProductID:  m.nextProductID,
		nextCategoryID: m.nextCategoryID,
		products:       make(map[int64]domain.Product, len(m.products)),
		categories:     make(map[int64]domain.Category, len(m.categories)),
		links:          make(map[int64]map[int64]struct{}, len(m.links)),
	}
	for k, v := range m.products {
		s.products[k] = v
	}
	for k, v := range m.categories {
		s.categories[k] = v
	}
	for k, v := range m.links {
		set := make(map[int64]struct{}, len(v))
		for id := range v {
			set[id] = struct{}{}
		}
		s.links[k] = set
	}
	return s
}

func (m *memoryStore) restore(s memorySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextProductID = s.nextProductID
	m.nextCategoryID = s.nextCategoryID
	m.products = s.products
	m.categories = s.categories
	m.links = s.links
}

func (m *memoryStore) WithinTx(ctx context.Context, fn func(repository.CatalogStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}
