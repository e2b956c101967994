package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
)

// linkStore implements driven.CompetitorLinkStore.
type linkStore struct {
	store *Store
}

var _ driven.CompetitorLinkStore = (*linkStore)(nil)

// SaveLink inserts or replaces the link for the (base, competitor) pair.
func (s *linkStore) SaveLink(ctx context.Context, link domain.CompetitorLink) error {
	if link.CreatedAt.IsZero() {
		link.CreatedAt = s.store.now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO competitor_links (base_url, competitor_url, similarity_score, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(base_url, competitor_url) DO UPDATE SET
			similarity_score = excluded.similarity_score,
			created_at = excluded.created_at
	`, link.BaseURL, link.CompetitorURL, link.Similarity, toUnix(link.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving competitor link: %w", err)
	}
	return nil
}

// ListLinks returns links for a base URL ordered by similarity descending.
func (s *linkStore) ListLinks(ctx context.Context, baseURL string) ([]domain.CompetitorLink, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT base_url, competitor_url, similarity_score, created_at
		FROM competitor_links
		WHERE base_url = ?
		ORDER BY similarity_score DESC, competitor_url ASC
	`, baseURL)
	if err != nil {
		return nil, fmt.Errorf("querying competitor links: %w", err)
	}
	defer rows.Close()

	links := []domain.CompetitorLink{}
	for rows.Next() {
		var link domain.CompetitorLink
		var createdAt int64
		if err := rows.Scan(&link.BaseURL, &link.CompetitorURL, &link.Similarity, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning competitor link: %w", err)
		}
		link.CreatedAt = fromUnix(createdAt)
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating competitor links: %w", err)
	}
	return links, nil
}
