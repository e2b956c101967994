package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
)

const productPage = `<!DOCTYPE html>
<html><body>
<span id="productTitle">  Pixel 8 Smartphone (128GB)  </span>
<div id="feature-bullets">
  <span>Tensor G3 processor with seven years of updates</span>
  <span>short</span>
  <span>50MP main camera with Magic Eraser</span>
</div>
<span class="a-price-whole">₹52,999.</span>
<span data-hook="review-body"><span>Amazing camera, the photos are excellent in low light.</span></span>
<span data-hook="review-body"><span>Battery is poor and it heats up while gaming a lot.</span></span>
<span data-hook="review-body"><span>AMAZING CAMERA, THE PHOTOS ARE EXCELLENT IN LOW LIGHT.</span></span>
<span data-hook="review-body"><span>Too short</span></span>
<span data-hook="review-body"><span>123 people found this helpful, the product is good</span></span>
</body></html>`

func testConfig() Config {
	return Config{
		RatePerSecond:   1000,
		Burst:           100,
		MaxRetries:      1,
		Backoff:         time.Millisecond,
		BreakerFailures: 100,
	}
}

func newTestScraper(t *testing.T, cfg Config) *Scraper {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func TestScraper_Fetch(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(productPage))
	}))
	defer server.Close()

	s := newTestScraper(t, testConfig())

	data, err := s.Fetch(context.Background(), server.URL+"/dp/B0CX1")
	require.NoError(t, err)

	assert.Equal(t, DefaultUserAgent, userAgent)
	assert.Equal(t, "Pixel 8 Smartphone (128GB)", data.Title)
	assert.Equal(t,
		"Tensor G3 processor with seven years of updates 50MP main camera with Magic Eraser",
		data.Description)
	require.NotNil(t, data.Price)
	assert.Equal(t, 52999.0, *data.Price)
	assert.Equal(t, []string{
		"Amazing camera, the photos are excellent in low light.",
		"Battery is poor and it heats up while gaming a lot.",
	}, data.Reviews)
	assert.Equal(t, domain.ProductTypeSmartphone, data.Type)
	assert.True(t, data.HasReviews())
}

func TestScraper_FetchNoReviews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1 id="title">Plain page</h1></body></html>`))
	}))
	defer server.Close()

	data, err := newTestScraper(t, testConfig()).Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Plain page", data.Title)
	assert.False(t, data.HasReviews())
	assert.Nil(t, data.Price)
	assert.Equal(t, domain.ProductTypeGeneral, data.Type)
}

func TestScraper_FetchRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(productPage))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxRetries = 3
	data, err := newTestScraper(t, cfg).Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Len(t, data.Reviews, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestScraper_FetchNotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxRetries = 3
	_, err := newTestScraper(t, cfg).Fetch(context.Background(), server.URL)

	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestScraper_CircuitBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.BreakerFailures = 2
	s := newTestScraper(t, cfg)

	for i := 0; i < 2; i++ {
		_, err := s.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrCircuitOpen)
	}

	_, err := s.Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, domain.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestScraper_FetchCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(productPage))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScraper(t, testConfig()).Fetch(ctx, server.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func searchServer(t *testing.T) (*httptest.Server, *atomic.Value) {
	t.Helper()
	var lastQuery atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/amazon/s", func(w http.ResponseWriter, r *http.Request) {
		lastQuery.Store(r.URL.Query().Get("k"))
		fmt.Fprint(w, `<html><body>
<div data-component-type="s-search-result"><h2><a href="/dp/BASE?ref=sr_1">Pixel 8</a></h2></div>
<div data-component-type="s-search-result"><h2><a href="/dp/ALT1?ref=sr_2">Galaxy S23</a></h2><span class="a-price-whole">49,999</span></div>
<div data-component-type="s-search-result"><h2><a href="/dp/ALT1?ref=sr_9">Galaxy S23 again</a></h2></div>
<div data-component-type="s-search-result"><h2>No link</h2></div>
<div data-component-type="s-search-result"><h2><a href="/dp/ALT2">OnePlus 12</a></h2></div>
</body></html>`)
	})
	mux.HandleFunc("/flipkart/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<div data-id="X1"><a href="/iphone-15/p/itm1" title="iPhone 15">iPhone 15</a><div class="_30jeq3">₹69,900</div></div>
</body></html>`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &lastQuery
}

func searchSelectors(serverURL string) Selectors {
	sel := DefaultSelectors()
	amazon := sel[domain.SiteAmazon]
	amazon.Search.URL = serverURL + "/amazon/s?k={query}"
	sel[domain.SiteAmazon] = amazon
	flipkart := sel[domain.SiteFlipkart]
	flipkart.Search.URL = serverURL + "/flipkart/search?q={query}"
	sel[domain.SiteFlipkart] = flipkart
	return sel
}

func TestScraper_FindCompetitors(t *testing.T) {
	server, lastQuery := searchServer(t)
	cfg := testConfig()
	cfg.Selectors = searchSelectors(server.URL)
	s := newTestScraper(t, cfg)

	refs, err := s.FindCompetitors(context.Background(), driven.CompetitorQuery{
		BaseURL: server.URL + "/dp/BASE",
		Title:   "Google Pixel 8 (Obsidian, 128 GB) 5G smartphone",
		Site:    domain.SiteAmazon,
		Max:     10,
	})
	require.NoError(t, err)

	assert.Equal(t, "Google Pixel 8 Obsidian 128 GB", lastQuery.Load())
	require.Len(t, refs, 3)

	assert.Equal(t, server.URL+"/dp/ALT1?ref=sr_2", refs[0].URL)
	assert.Equal(t, "Galaxy S23", refs[0].Title)
	assert.Equal(t, domain.SiteAmazon, refs[0].Site)
	assert.Equal(t, domain.SourceSearch, refs[0].Source)
	require.NotNil(t, refs[0].Price)
	assert.Equal(t, 49999.0, *refs[0].Price)

	assert.Equal(t, "OnePlus 12", refs[1].Title)
	assert.Nil(t, refs[1].Price)

	assert.Equal(t, server.URL+"/iphone-15/p/itm1", refs[2].URL)
	assert.Equal(t, "iPhone 15", refs[2].Title)
	assert.Equal(t, domain.SiteFlipkart, refs[2].Site)
	require.NotNil(t, refs[2].Price)
	assert.Equal(t, 69900.0, *refs[2].Price)
}

func TestScraper_FindCompetitorsLimitAndOrder(t *testing.T) {
	server, _ := searchServer(t)
	cfg := testConfig()
	cfg.Selectors = searchSelectors(server.URL)
	s := newTestScraper(t, cfg)

	refs, err := s.FindCompetitors(context.Background(), driven.CompetitorQuery{
		Title: "Pixel 8",
		Site:  domain.SiteFlipkart,
		Max:   2,
	})
	require.NoError(t, err)

	require.Len(t, refs, 2)
	assert.Equal(t, domain.SiteFlipkart, refs[0].Site)
	assert.Equal(t, domain.SiteAmazon, refs[1].Site)
}

func TestScraper_FindCompetitorsEmptyQuery(t *testing.T) {
	s := newTestScraper(t, testConfig())

	refs, err := s.FindCompetitors(context.Background(), driven.CompetitorQuery{Title: "  ", Description: "!!"})

	assert.NoError(t, err)
	assert.Empty(t, refs)
}

func TestScraper_FindCompetitorsAllSitesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Selectors = searchSelectors(server.URL)
	_, err := newTestScraper(t, cfg).FindCompetitors(context.Background(), driven.CompetitorQuery{Title: "Pixel 8"})

	assert.Error(t, err)
}

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		want        string
	}{
		{"punctuation dropped", "Sony WH-1000XM5, Wireless (Black)", "", "Sony WH-1000XM5 Wireless Black"},
		{"capped at six words", "one two three four five six seven", "", "one two three four five six"},
		{"description fallback", "", "Noise cancelling headphones", "Noise cancelling headphones"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, searchQuery(tt.title, tt.description))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	// "₹" is three bytes; cutting inside it backs off to the rune start.
	assert.Equal(t, "a", truncate("a₹b", 2))
}

func TestNew_SelectorsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	content := `
amazon:
  title: ["h1.custom-title"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	s, err := New(Config{SelectorsFile: path})
	require.NoError(t, err)

	amazon := s.selectors.get()[domain.SiteAmazon]
	assert.Equal(t, []string{"h1.custom-title"}, amazon.Title)
	assert.Equal(t, DefaultSelectors()[domain.SiteAmazon].Reviews, amazon.Reviews)
}

func TestNew_InvalidSelectorsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("amazon: [unclosed"), 0600))

	_, err := New(Config{SelectorsFile: path})
	assert.Error(t, err)

	_, err = New(Config{SelectorsFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestScraper_WatchReloadsSelectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("amazon:\n  title: [\"h1.first\"]\n"), 0600))

	s, err := New(Config{SelectorsFile: path})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte("amazon:\n  title: [\"h1.second\"]\n"), 0600))

	assert.Eventually(t, func() bool {
		return strings.Join(s.selectors.get()[domain.SiteAmazon].Title, ",") == "h1.second"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestScraper_WatchWithoutFile(t *testing.T) {
	s := newTestScraper(t, testConfig())
	assert.NoError(t, s.Watch(context.Background()))
}

func TestSelectors_For(t *testing.T) {
	sel := DefaultSelectors()

	assert.Equal(t, sel[domain.SiteFlipkart].Title, sel.For("https://www.flipkart.com/item/p/1").Title)
	assert.Equal(t, sel[domain.SiteAmazon].Title, sel.For("https://www.amazon.in/dp/1").Title)
	assert.Equal(t, sel[domain.SiteAmazon].Title, sel.For("https://shop.example.com/p/1").Title)
}
