package web

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

// SearchSelectors locate result cards on a marketplace search page.
type SearchSelectors struct {
	// URL is the search page template; {query} is replaced by the
	// escaped query.
	URL   string `yaml:"url"`
	Item  string `yaml:"item"`
	Link  string `yaml:"link"`
	Title string `yaml:"title"`
	Price string `yaml:"price"`
}

// SiteSelectors lists CSS selectors per page element, tried in order.
type SiteSelectors struct {
	Title       []string        `yaml:"title"`
	Description []string        `yaml:"description"`
	Reviews     []string        `yaml:"reviews"`
	Price       []string        `yaml:"price"`
	Search      SearchSelectors `yaml:"search"`
}

// Selectors maps a site to its selector table.
type Selectors map[domain.Site]SiteSelectors

// DefaultSelectors returns the built-in selector tables.
func DefaultSelectors() Selectors {
	return Selectors{
		domain.SiteAmazon: {
			Title: []string{
				"span#productTitle",
				"h1#title",
				"h1.a-size-large",
			},
			Description: []string{
				"div#feature-bullets span",
				"div#productDescription",
				"div.a-expander-content",
			},
			Reviews: []string{
				"span[data-hook='review-body'] span:not([class])",
				"div[class*='review-text-content'] > span",
				"span[data-hook='review-body']",
				"div[data-hook='review-collapsed'] span",
				"div[class*='cr-original-review-text']",
			},
			Price: []string{
				"span[class*='a-price-whole']",
				"span.a-offscreen",
				"span[class*='a-price-current']",
			},
			Search: SearchSelectors{
				URL:   "https://www.amazon.in/s?k={query}",
				Item:  "div[data-component-type='s-search-result']",
				Link:  "h2 a, a.a-link-normal.s-no-outline",
				Title: "h2",
				Price: "span.a-price-whole",
			},
		},
		domain.SiteFlipkart: {
			Title: []string{
				"span[class*='B_NuCI']",
				"h1[class*='yhB1nd']",
				"span[class*='VU-ZEz']",
			},
			Description: []string{
				"div[class*='_1AN87F'] > div",
				"div[class*='_1mXcCf']",
			},
			Reviews: []string{
				"div[class*='t-ZTKy']",
				"div[class*='_6K-7Co']",
				"div[class*='ZmyHeo']",
			},
			Price: []string{
				"div[class*='_30jeq3']",
				"div[class*='_1_WHN1']",
			},
			Search: SearchSelectors{
				URL:   "https://www.flipkart.com/search?q={query}",
				Item:  "div[data-id]",
				Link:  "a[href*='/p/']",
				Title: "div[class*='KzDlHZ'], a[title]",
				Price: "div[class*='_30jeq3'], div[class*='Nx9bqj']",
			},
		},
	}
}

// For returns the selectors for the site a URL belongs to. Unknown sites
// use the amazon table.
func (s Selectors) For(url string) SiteSelectors {
	if sel, ok := s[domain.SiteFromURL(url)]; ok {
		return sel
	}
	return s[domain.SiteAmazon]
}

// LoadSelectors reads a YAML selectors file and merges it over the
// built-in tables. Sites absent from the file keep their defaults.
func LoadSelectors(path string) (Selectors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading selectors file: %w", err)
	}

	var overrides map[string]SiteSelectors
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing selectors file: %w", err)
	}

	merged := DefaultSelectors()
	for name, sel := range overrides {
		site := domain.Site(strings.ToLower(name))
		base := merged[site]
		merged[site] = mergeSite(base, sel)
	}
	return merged, nil
}

func mergeSite(base, override SiteSelectors) SiteSelectors {
	if len(override.Title) > 0 {
		base.Title = override.Title
	}
	if len(override.Description) > 0 {
		base.Description = override.Description
	}
	if len(override.Reviews) > 0 {
		base.Reviews = override.Reviews
	}
	if len(override.Price) > 0 {
		base.Price = override.Price
	}
	if override.Search.URL != "" {
		base.Search.URL = override.Search.URL
	}
	if override.Search.Item != "" {
		base.Search.Item = override.Search.Item
	}
	if override.Search.Link != "" {
		base.Search.Link = override.Search.Link
	}
	if override.Search.Title != "" {
		base.Search.Title = override.Search.Title
	}
	if override.Search.Price != "" {
		base.Search.Price = override.Search.Price
	}
	return base
}

// selectorSet holds the active selectors. It is swapped on reload.
type selectorSet struct {
	mu        sync.RWMutex
	selectors Selectors
}

func newSelectorSet(s Selectors) *selectorSet {
	return &selectorSet{selectors: s}
}

func (s *selectorSet) get() Selectors {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectors
}

func (s *selectorSet) set(sel Selectors) {
	s.mu.Lock()
	s.selectors = sel
	s.mu.Unlock()
}
