package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
	"github.com/custodia-labs/verdict-cli/internal/logger"
	"github.com/custodia-labs/verdict-cli/internal/metrics"
)

// errCorruptRow marks a row whose stored columns cannot be decoded.
var errCorruptRow = errors.New("corrupt product row")

// productColumns is the column list every product query selects, in scan order.
var productColumns = []string{
	"url", "title", "description", "price", "score", "pros", "cons",
	"category", "site", "embedding", "analysis_data", "created_at",
}

// productStore implements driven.ProductStore.
type productStore struct {
	store *Store
}

var _ driven.ProductStore = (*productStore)(nil)

// Upsert inserts or replaces the product with the same URL.
func (s *productStore) Upsert(ctx context.Context, product domain.Product) error {
	pros, err := marshalAspects(product.Pros)
	if err != nil {
		return fmt.Errorf("marshalling pros: %w", err)
	}
	cons, err := marshalAspects(product.Cons)
	if err != nil {
		return fmt.Errorf("marshalling cons: %w", err)
	}
	analysis, err := json.Marshal(product.Analysis)
	if err != nil {
		return fmt.Errorf("marshalling analysis: %w", err)
	}

	if product.CreatedAt.IsZero() {
		product.CreatedAt = s.store.now()
	}
	if product.Category == "" {
		product.Category = domain.CategoryGeneral
	}
	if product.Site == "" {
		product.Site = domain.SiteOther
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO products (url, title, description, price, score, pros, cons,
			category, site, embedding, analysis_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			price = excluded.price,
			score = excluded.score,
			pros = excluded.pros,
			cons = excluded.cons,
			category = excluded.category,
			site = excluded.site,
			embedding = excluded.embedding,
			analysis_data = excluded.analysis_data,
			created_at = excluded.created_at
	`, product.URL, product.Title, product.Description, nullFloat(product.Price), product.Score,
		pros, cons, string(product.Category), string(product.Site),
		float64SliceToBytes(product.Embedding), string(analysis), toUnix(product.CreatedAt))
	if err != nil {
		return fmt.Errorf("saving product: %w", err)
	}
	return nil
}

// Get retrieves a product by URL.
func (s *productStore) Get(ctx context.Context, url string) (*domain.Product, error) {
	query, args, err := psql.Select(productColumns...).From("products").
		Where(sq.Eq{"url": url}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building product query: %w", err)
	}

	product, err := scanProduct(s.store.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

// List returns stored products ordered by score descending.
func (s *productStore) List(ctx context.Context, opts domain.ListOptions) ([]domain.Product, error) {
	builder := psql.Select(productColumns...).From("products").OrderBy("score DESC", "url ASC")
	if opts.Category != "" {
		builder = builder.Where(sq.Eq{"category": string(opts.Category)})
	}
	switch {
	case opts.Limit > 0:
		builder = builder.Limit(uint64(opts.Limit))
		if opts.Offset > 0 {
			builder = builder.Offset(uint64(opts.Offset))
		}
	case opts.Offset > 0:
		// SQLite rejects OFFSET without LIMIT.
		builder = builder.Suffix("LIMIT -1 OFFSET ?", opts.Offset)
	}
	return s.query(ctx, builder)
}

// FindCandidates returns products matching the query ordered by score descending.
func (s *productStore) FindCandidates(ctx context.Context, q driven.CandidateQuery) ([]domain.Product, error) {
	builder := psql.Select(productColumns...).From("products").
		Where(sq.Eq{"category": string(q.Category)}).
		OrderBy("score DESC", "url ASC")
	if q.ExcludeURL != "" {
		builder = builder.Where(sq.NotEq{"url": q.ExcludeURL})
	}
	if !q.Since.IsZero() {
		builder = builder.Where(sq.Gt{"created_at": toUnix(q.Since)})
	}
	return s.query(ctx, builder)
}

// TopByCategory returns higher scoring products in a category.
func (s *productStore) TopByCategory(
	ctx context.Context, category domain.Category, minScore int, excludeURL string, limit int,
) ([]domain.Product, error) {
	builder := psql.Select(productColumns...).From("products").
		Where(sq.And{
			sq.Eq{"category": string(category)},
			sq.Gt{"score": minScore},
			sq.NotEq{"url": excludeURL},
		}).
		OrderBy("score DESC", "url ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	return s.query(ctx, builder)
}

// Count returns the number of stored products.
func (s *productStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

// Delete removes a product by URL.
func (s *productStore) Delete(ctx context.Context, url string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM products WHERE url = ?", url)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return nil
}

func (s *productStore) query(ctx context.Context, builder sq.SelectBuilder) ([]domain.Product, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building product query: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if errors.Is(err, errCorruptRow) {
			logger.Warn("Skipping product row: %v", err)
			metrics.StoreErrors.WithLabelValues("decode_product").Inc()
			continue
		}
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}
	return products, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProduct scans one row selected with productColumns.
func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var price sql.NullFloat64
	var pros, cons, category, site, analysis string
	var embedding []byte
	var createdAt int64

	if err := row.Scan(&p.URL, &p.Title, &p.Description, &price, &p.Score, &pros, &cons,
		&category, &site, &embedding, &analysis, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning product: %w", err)
	}

	p.Price = floatPtr(price)
	p.Category = domain.Category(category)
	p.Site = domain.Site(site)
	p.CreatedAt = fromUnix(createdAt)

	var err error
	if p.Embedding, err = bytesToFloat64Slice(embedding); err != nil {
		return nil, fmt.Errorf("%w %s: %w", errCorruptRow, p.URL, err)
	}
	if p.Pros, err = unmarshalAspects(pros); err != nil {
		return nil, fmt.Errorf("%w %s: unmarshalling pros: %w", errCorruptRow, p.URL, err)
	}
	if p.Cons, err = unmarshalAspects(cons); err != nil {
		return nil, fmt.Errorf("%w %s: unmarshalling cons: %w", errCorruptRow, p.URL, err)
	}
	if analysis != "" && analysis != jsonNull {
		p.Analysis = &domain.Analysis{}
		if err := json.Unmarshal([]byte(analysis), p.Analysis); err != nil {
			return nil, fmt.Errorf("%w %s: unmarshalling analysis: %w", errCorruptRow, p.URL, err)
		}
	}
	return &p, nil
}

func marshalAspects(items []domain.AspectSentiment) (string, error) {
	if items == nil {
		items = []domain.AspectSentiment{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalAspects(data string) ([]domain.AspectSentiment, error) {
	items := []domain.AspectSentiment{}
	if data == "" || data == jsonNull {
		return items, nil
	}
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, err
	}
	return items, nil
}
