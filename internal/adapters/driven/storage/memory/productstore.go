package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
)

// Ensure ProductStore implements the interface.
var _ driven.ProductStore = (*ProductStore)(nil)

// ProductStore is an in-memory implementation of driven.ProductStore.
type ProductStore struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	now      func() time.Time
}

// NewProductStore creates a new in-memory product store.
func NewProductStore() *ProductStore {
	return &ProductStore{
		products: make(map[string]domain.Product),
		now:      time.Now,
	}
}

// SetClock overrides the clock used to stamp products saved without a time.
func (s *ProductStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Upsert inserts or replaces the product with the same URL.
func (s *ProductStore) Upsert(_ context.Context, product domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = s.now().UTC()
	}
	s.products[product.URL] = cloneProduct(product)
	return nil
}

// Get retrieves a product by URL.
func (s *ProductStore) Get(_ context.Context, url string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p = cloneProduct(p)
	return &p, nil
}

// List returns stored products ordered by score descending.
func (s *ProductStore) List(_ context.Context, opts domain.ListOptions) ([]domain.Product, error) {
	result := s.filter(func(p *domain.Product) bool {
		return opts.Category == "" || p.Category == opts.Category
	})
	if opts.Offset > 0 {
		if opts.Offset >= len(result) {
			return []domain.Product{}, nil
		}
		result = result[opts.Offset:]
	}
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

// FindCandidates returns products matching the query ordered by score descending.
func (s *ProductStore) FindCandidates(_ context.Context, q driven.CandidateQuery) ([]domain.Product, error) {
	return s.filter(func(p *domain.Product) bool {
		if p.Category != q.Category || p.URL == q.ExcludeURL {
			return false
		}
		return q.Since.IsZero() || p.CreatedAt.After(q.Since)
	}), nil
}

// TopByCategory returns higher scoring products in a category.
func (s *ProductStore) TopByCategory(
	_ context.Context, category domain.Category, minScore int, excludeURL string, limit int,
) ([]domain.Product, error) {
	result := s.filter(func(p *domain.Product) bool {
		return p.Category == category && p.Score > minScore && p.URL != excludeURL
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Count returns the number of stored products.
func (s *ProductStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products), nil
}

// Delete removes a product by URL.
func (s *ProductStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, url)
	return nil
}

// filter returns matching products ordered by score descending, then URL.
func (s *ProductStore) filter(keep func(*domain.Product) bool) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if keep(&p) {
			result = append(result, cloneProduct(p))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].URL < result[j].URL
	})
	return result
}

func cloneProduct(p domain.Product) domain.Product {
	p.Pros = slices.Clone(p.Pros)
	p.Cons = slices.Clone(p.Cons)
	p.Embedding = slices.Clone(p.Embedding)
	if p.Price != nil {
		price := *p.Price
		p.Price = &price
	}
	return p
}
