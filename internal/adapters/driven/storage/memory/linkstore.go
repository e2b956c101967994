package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
)

// Ensure LinkStore implements the interface.
var _ driven.CompetitorLinkStore = (*LinkStore)(nil)

// LinkStore is an in-memory implementation of driven.CompetitorLinkStore.
type LinkStore struct {
	mu    sync.RWMutex
	links map[string]map[string]domain.CompetitorLink
}

// NewLinkStore creates a new in-memory competitor link store.
func NewLinkStore() *LinkStore {
	return &LinkStore{
		links: make(map[string]map[string]domain.CompetitorLink),
	}
}

// SaveLink inserts or replaces the link for the (base, competitor) pair.
func (s *LinkStore) SaveLink(_ context.Context, link domain.CompetitorLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byCompetitor, ok := s.links[link.BaseURL]
	if !ok {
		byCompetitor = make(map[string]domain.CompetitorLink)
		s.links[link.BaseURL] = byCompetitor
	}
	byCompetitor[link.CompetitorURL] = link
	return nil
}

// ListLinks returns links for a base URL ordered by similarity descending.
func (s *LinkStore) ListLinks(_ context.Context, baseURL string) ([]domain.CompetitorLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.CompetitorLink, 0, len(s.links[baseURL]))
	for _, l := range s.links[baseURL] {
		result = append(result, l)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Similarity != result[j].Similarity {
			return result[i].Similarity > result[j].Similarity
		}
		return result[i].CompetitorURL < result[j].CompetitorURL
	})
	return result, nil
}
