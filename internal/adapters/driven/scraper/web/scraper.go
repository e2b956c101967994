// Package web provides a static-HTML product data source and competitor
// finder for marketplace pages.
//
// Pages are parsed with goquery using per-site CSS selector tables. The
// built-in tables can be overridden by a YAML selectors file, which is
// reloaded when it changes. All requests share one rate limiter and one
// circuit breaker; an open breaker fails fast with domain.ErrCircuitOpen.
package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
	"github.com/custodia-labs/verdict-cli/internal/logger"
)

// Ensure Scraper implements the interfaces.
var (
	_ driven.DataSource       = (*Scraper)(nil)
	_ driven.CompetitorFinder = (*Scraper)(nil)
)

// Default configuration values.
const (
	DefaultRatePerSecond   = 0.5
	DefaultBurst           = 2
	DefaultTimeout         = 20 * time.Second
	DefaultUserAgent       = "verdict/1.0"
	DefaultMaxRetries      = 3
	DefaultBackoff         = time.Second
	DefaultBreakerFailures = 5
	DefaultBreakerTimeout  = time.Minute
	DefaultMaxCompetitors  = 10

	maxQueryWords = 6
)

// Config holds the scraper configuration.
type Config struct {
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
	UserAgent     string

	// MaxRetries is the number of attempts per page.
	MaxRetries int

	// Backoff is the wait before the second attempt; it doubles per attempt.
	Backoff time.Duration

	BreakerFailures uint32
	BreakerTimeout  time.Duration

	// SelectorsFile optionally overrides the built-in selector tables.
	SelectorsFile string

	// Selectors replaces the built-in tables when set and no file is given.
	Selectors Selectors

	HTTPClient *http.Client
}

// ConfigFromSettings builds a Config from application settings.
func ConfigFromSettings(s domain.ScraperSettings) Config {
	return Config{
		RatePerSecond: s.RatePerSecond,
		Timeout:       s.Timeout(),
		UserAgent:     s.UserAgent,
		SelectorsFile: s.SelectorsFile,
	}
}

func (c Config) withDefaults() Config {
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = DefaultRatePerSecond
	}
	if c.Burst <= 0 {
		c.Burst = DefaultBurst
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.Backoff <= 0 {
		c.Backoff = DefaultBackoff
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = DefaultBreakerFailures
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = DefaultBreakerTimeout
	}
	return c
}

// Scraper fetches product pages and searches marketplaces for alternatives.
// It is safe for concurrent use.
type Scraper struct {
	cfg       Config
	fetch     *fetcher
	selectors *selectorSet
}

// New creates a scraper. A configured selectors file must parse.
func New(cfg Config) (*Scraper, error) {
	cfg = cfg.withDefaults()

	sel := cfg.Selectors
	if cfg.SelectorsFile != "" {
		loaded, err := LoadSelectors(cfg.SelectorsFile)
		if err != nil {
			return nil, err
		}
		sel = loaded
	}
	if sel == nil {
		sel = DefaultSelectors()
	}

	return &Scraper{
		cfg:       cfg,
		fetch:     newFetcher(cfg),
		selectors: newSelectorSet(sel),
	}, nil
}

// Watch reloads the selectors file on change until ctx is cancelled.
// It is a no-op without a selectors file.
func (s *Scraper) Watch(ctx context.Context) error {
	if s.cfg.SelectorsFile == "" {
		return nil
	}
	return watchSelectors(ctx, s.cfg.SelectorsFile, s.selectors, nil)
}

// Fetch downloads a product page and extracts its title, description,
// price and cleaned reviews.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (*domain.ProductData, error) {
	doc, err := s.fetch.document(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching product page: %w", err)
	}

	sel := s.selectors.get().For(pageURL)
	data := &domain.ProductData{
		URL:         pageURL,
		Title:       firstText(doc, sel.Title),
		Description: description(doc, sel.Description),
		Reviews:     CleanReviews(reviewTexts(doc, sel.Reviews)),
		Price:       price(doc, sel.Price),
	}
	data.Type = domain.DetectProductType(pageURL, data.Title, data.Description)

	logger.Debug("Scraped %s: %d reviews, type=%s", pageURL, len(data.Reviews), data.Type)
	return data, nil
}

// FindCompetitors searches each marketplace with the leading words of the
// product title, starting with the product's own site. Results exclude
// the base product and repeated URLs. A site that fails is skipped; the
// call fails only when every site fails.
func (s *Scraper) FindCompetitors(ctx context.Context, q driven.CompetitorQuery) ([]domain.CompetitorRef, error) {
	query := searchQuery(q.Title, q.Description)
	if query == "" {
		return nil, nil
	}
	limit := q.Max
	if limit <= 0 {
		limit = DefaultMaxCompetitors
	}

	selectors := s.selectors.get()
	seen := map[string]struct{}{normaliseURL(q.BaseURL): {}}
	var refs []domain.CompetitorRef
	var failures, attempted int

	for _, site := range searchOrder(q.Site) {
		sel, ok := selectors[site]
		if !ok || sel.Search.URL == "" || sel.Search.Item == "" {
			continue
		}
		attempted++

		found, err := s.search(ctx, site, sel.Search, query)
		if err != nil {
			failures++
			logger.Warn("Competitor search on %s failed: %v", site, err)
			continue
		}
		for _, ref := range found {
			key := normaliseURL(ref.URL)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			refs = append(refs, ref)
			if len(refs) == limit {
				return refs, nil
			}
		}
	}

	if attempted > 0 && failures == attempted {
		return nil, fmt.Errorf("competitor search failed on all %d sites", attempted)
	}
	return refs, nil
}

func (s *Scraper) search(
	ctx context.Context, site domain.Site, sel SearchSelectors, query string,
) ([]domain.CompetitorRef, error) {
	searchURL := strings.ReplaceAll(sel.URL, "{query}", url.QueryEscape(query))
	base, err := url.Parse(searchURL)
	if err != nil {
		return nil, fmt.Errorf("search url: %w", err)
	}

	doc, err := s.fetch.document(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	var refs []domain.CompetitorRef
	doc.Find(sel.Item).Each(func(_ int, item *goquery.Selection) {
		link := item.Find(sel.Link).First()
		href := strings.TrimSpace(link.AttrOr("href", ""))
		if href == "" {
			return
		}
		target, err := base.Parse(href)
		if err != nil {
			return
		}

		title := ""
		if sel.Title != "" {
			title = cleanText(item.Find(sel.Title).First().Text())
		}
		if title == "" {
			title = cleanText(link.AttrOr("title", link.Text()))
		}

		ref := domain.CompetitorRef{
			URL:    target.String(),
			Title:  title,
			Site:   site,
			Source: domain.SourceSearch,
		}
		if sel.Price != "" {
			if p, ok := ParsePrice(item.Find(sel.Price).First().Text()); ok {
				ref.Price = &p
			}
		}
		refs = append(refs, ref)
	})
	return refs, nil
}

// searchOrder puts the product's own site first.
func searchOrder(own domain.Site) []domain.Site {
	if own == domain.SiteFlipkart {
		return []domain.Site{domain.SiteFlipkart, domain.SiteAmazon}
	}
	return []domain.Site{domain.SiteAmazon, domain.SiteFlipkart}
}

// searchQuery keeps the first words of the title, or of the description
// when the title is empty.
func searchQuery(title, description string) string {
	text := title
	if strings.TrimSpace(text) == "" {
		text = description
	}
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '.'
	})
	if len(words) > maxQueryWords {
		words = words[:maxQueryWords]
	}
	return strings.Join(words, " ")
}

// normaliseURL drops the query and fragment so tracking parameters do not
// defeat de-duplication.
func normaliseURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/")
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// firstText returns the first non-empty match of the first selector that
// has one.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := cleanText(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// description joins substantial text from the first five elements of
// every selector.
func description(doc *goquery.Document, selectors []string) string {
	var parts []string
	for _, sel := range selectors {
		doc.Find(sel).EachWithBreak(func(i int, el *goquery.Selection) bool {
			if i >= maxDescParts {
				return false
			}
			if text := cleanText(el.Text()); len(text) > minDescPartLen {
				parts = append(parts, text)
			}
			return true
		})
	}
	return truncate(strings.Join(parts, " "), maxDescLen)
}

// reviewTexts returns the texts matched by the first review selector that
// matches anything.
func reviewTexts(doc *goquery.Document, selectors []string) []string {
	for _, sel := range selectors {
		var texts []string
		doc.Find(sel).Each(func(_ int, el *goquery.Selection) {
			if text := strings.TrimSpace(el.Text()); text != "" {
				texts = append(texts, text)
			}
		})
		if len(texts) > 0 {
			return texts
		}
	}
	return nil
}

func price(doc *goquery.Document, selectors []string) *float64 {
	for _, sel := range selectors {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		if p, ok := ParsePrice(el.Text()); ok {
			return &p
		}
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
