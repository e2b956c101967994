package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/logger"
)

// errNotFound marks a page that does not exist; it is not retried.
var errNotFound = errors.New("page not found")

// fetcher downloads and parses HTML pages. Requests are rate limited,
// retried with exponential backoff and guarded by a circuit breaker.
type fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[*goquery.Document]
	userAgent string
	retries   int
	backoff   time.Duration
}

func newFetcher(cfg Config) *fetcher {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	breaker := gobreaker.NewCircuitBreaker[*goquery.Document](gobreaker.Settings{
		Name:        "scraper",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &fetcher{
		client:    client,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		breaker:   breaker,
		userAgent: cfg.UserAgent,
		retries:   cfg.MaxRetries,
		backoff:   cfg.Backoff,
	}
}

// document fetches pageURL, retrying transient failures.
func (f *fetcher) document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	var lastErr error
	for attempt := 0; attempt < f.retries; attempt++ {
		if attempt > 0 {
			wait := f.backoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		doc, err := f.breaker.Execute(func() (*goquery.Document, error) {
			return f.get(ctx, pageURL)
		})
		if err == nil {
			return doc, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("fetching %s: %w", pageURL, domain.ErrCircuitOpen)
		}
		if errors.Is(err, errNotFound) || ctx.Err() != nil {
			return nil, err
		}

		logger.Debug("Fetch attempt %d/%d for %s failed: %v", attempt+1, f.retries, pageURL, err)
		lastErr = err
	}
	return nil, lastErr
}

func (f *fetcher) get(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", pageURL, errNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}
