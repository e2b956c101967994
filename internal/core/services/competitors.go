package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
	"github.com/custodia-labs/verdict-cli/internal/logger"
	"github.com/custodia-labs/verdict-cli/internal/metrics"
)

// Competitor scoring constants.
const (
	competitorSimilarity         = 0.8
	fallbackCompetitorScore      = 60
	fallbackCompetitorSimilarity = 0.6
)

// CompetitorRequest describes the base product competitors are fetched for.
type CompetitorRequest struct {
	BaseURL     string
	Title       string
	Description string
	Category    domain.Category
	Site        domain.Site
}

// CompetitorFetcher locates alternatives through a finder and re-analyses
// each one through the data source and analyser. A failure for one
// competitor is isolated and mapped to fallback values.
type CompetitorFetcher struct {
	finder   driven.CompetitorFinder
	source   driven.DataSource
	analyzer driven.Analyzer
	links    driven.CompetitorLinkStore
	max      int
	workers  int
	now      func() time.Time
}

// NewCompetitorFetcher creates a fetcher. workers bounds concurrent
// re-analysis; 1 means sequential.
func NewCompetitorFetcher(
	finder driven.CompetitorFinder,
	source driven.DataSource,
	analyzer driven.Analyzer,
	maxCompetitors int,
	workers int,
) *CompetitorFetcher {
	if workers < 1 {
		workers = 1
	}
	return &CompetitorFetcher{
		finder:   finder,
		source:   source,
		analyzer: analyzer,
		max:      maxCompetitors,
		workers:  workers,
		now:      time.Now,
	}
}

// SetLinkStore sets the store competitor links are recorded in.
func (f *CompetitorFetcher) SetLinkStore(links driven.CompetitorLinkStore) {
	f.links = links
}

// SetClock overrides the clock used for link timestamps.
func (f *CompetitorFetcher) SetClock(now func() time.Time) {
	f.now = now
}

// Fetch returns one result per competitor found, in finder order.
// A finder failure yields no results.
func (f *CompetitorFetcher) Fetch(ctx context.Context, req CompetitorRequest) []domain.CompetitorResult {
	if f.finder == nil || f.source == nil || f.analyzer == nil {
		return nil
	}

	refs, err := f.finder.FindCompetitors(ctx, driven.CompetitorQuery{
		BaseURL:     req.BaseURL,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Site:        req.Site,
		Max:         f.max,
	})
	if err != nil {
		logger.Warn("Competitor lookup failed for %s: %v", req.BaseURL, err)
		return nil
	}
	if f.max > 0 && len(refs) > f.max {
		refs = refs[:f.max]
	}
	logger.Debug("Competitor lookup: %d candidates, %d workers", len(refs), f.workers)

	results := make([]domain.CompetitorResult, len(refs))
	var g errgroup.Group
	g.SetLimit(f.workers)
	for i, ref := range refs {
		g.Go(func() error {
			results[i] = f.analyze(ctx, ref)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	for i := range results {
		metrics.CompetitorAnalyses.WithLabelValues(results[i].Outcome.String()).Inc()
		if results[i].Err != nil {
			logger.Warn("Error analyzing competitor %s: %v", results[i].Ref.URL, results[i].Err)
		}
	}

	f.recordLinks(ctx, req.BaseURL, results)
	return results
}

// analyze re-analyses one competitor. Errors and panics become a
// fallback result.
func (f *CompetitorFetcher) analyze(ctx context.Context, ref domain.CompetitorRef) (result domain.CompetitorResult) {
	defer func() {
		if r := recover(); r != nil {
			result = fallbackResult(ref, fmt.Errorf("competitor analysis panicked: %v", r))
		}
	}()

	data, err := f.source.Fetch(ctx, ref.URL)
	if err != nil {
		return fallbackResult(ref, fmt.Errorf("fetching competitor: %w", err))
	}
	if !data.HasReviews() {
		return domain.CompetitorResult{Ref: ref, Outcome: domain.CompetitorNoData}
	}

	analysis, err := f.analyzer.Analyze(ctx, data.Reviews, data.Type)
	if err != nil {
		return fallbackResult(ref, fmt.Errorf("analyzing competitor: %w", err))
	}
	if analysis == nil {
		return fallbackResult(ref, fmt.Errorf("analyzing competitor: %w", domain.ErrNoData))
	}

	return domain.CompetitorResult{
		Ref:        ref,
		Outcome:    domain.CompetitorAnalysed,
		Score:      analysis.Overall.PositiveScore(),
		Similarity: competitorSimilarity,
	}
}

func fallbackResult(ref domain.CompetitorRef, err error) domain.CompetitorResult {
	return domain.CompetitorResult{
		Ref:        ref,
		Outcome:    domain.CompetitorFailed,
		Score:      fallbackCompetitorScore,
		Similarity: fallbackCompetitorSimilarity,
		Err:        err,
	}
}

// recordLinks stores a link per contributing competitor. Failures are logged.
func (f *CompetitorFetcher) recordLinks(ctx context.Context, baseURL string, results []domain.CompetitorResult) {
	if f.links == nil || baseURL == "" {
		return
	}

	now := f.now().UTC()
	for i := range results {
		if results[i].Outcome == domain.CompetitorNoData || results[i].Ref.URL == "" {
			continue
		}
		link := domain.CompetitorLink{
			BaseURL:       baseURL,
			CompetitorURL: results[i].Ref.URL,
			Similarity:    results[i].Similarity,
			CreatedAt:     now,
		}
		if err := f.links.SaveLink(ctx, link); err != nil {
			logger.Warn("Saving competitor link failed: %v", err)
			metrics.StoreErrors.WithLabelValues("save_link").Inc()
		}
	}
}
