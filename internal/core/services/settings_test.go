package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/verdict-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
	assert.NoError(t, service.Validate())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("recommendation.cache_expiry_days", int64(7))
	_ = store.Set("recommendation.similarity_threshold", 0.25)
	_ = store.Set("recommendation.min_score_improvement", int64(0))
	_ = store.Set("nlp.provider", "ollama")
	_ = store.Set("cache.backend", "redis")
	_ = store.Set("cache.redis_addr", "localhost:6379")
	_ = store.Set("scraper.rate_per_second", int64(2))

	service := NewSettingsService(store)
	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, 7, settings.Recommendation.CacheExpiryDays)
	assert.InDelta(t, 0.25, settings.Recommendation.SimilarityThreshold, 1e-9)
	assert.Equal(t, 0, settings.Recommendation.MinScoreImprovement)
	assert.Equal(t, domain.NLPProviderOllama, settings.NLP.Provider)
	assert.Equal(t, "llama3.2", settings.NLP.Model)
	assert.Equal(t, domain.CacheBackendRedis, settings.Cache.Backend)
	assert.InDelta(t, 2.0, settings.Scraper.RatePerSecond, 1e-9)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("nlp.provider", "spacy")
	_ = store.Set("cache.backend", "memcached")

	service := NewSettingsService(store)
	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.NLP.Provider, settings.NLP.Provider)
	assert.Equal(t, defaults.Cache.Backend, settings.Cache.Backend)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings := domain.DefaultAppSettings()
	settings.Recommendation.MaxCompetitorsPerSite = 4
	settings.Recommendation.Filter = "item.price < 1000.0"
	settings.Cache.Backend = domain.CacheBackendRedis
	settings.Cache.RedisAddr = "redis:6379"
	settings.Cache.RedisDB = 2

	require.NoError(t, service.Save(&settings))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *got)
}

func TestSettingsService_Save_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *domain.AppSettings)
	}{
		{"zero expiry", func(s *domain.AppSettings) { s.Recommendation.CacheExpiryDays = 0 }},
		{"threshold above one", func(s *domain.AppSettings) { s.Recommendation.SimilarityThreshold = 1.5 }},
		{"redis without address", func(s *domain.AppSettings) { s.Cache.Backend = domain.CacheBackendRedis }},
		{"unknown provider", func(s *domain.AppSettings) { s.NLP.Provider = "spacy" }},
		{"zero rate", func(s *domain.AppSettings) { s.Scraper.RatePerSecond = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store)
			settings := domain.DefaultAppSettings()
			tt.mutate(&settings)

			err := service.Save(&settings)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			_, written := store.Get("recommendation.cache_expiry_days")
			assert.False(t, written)
		})
	}
}

func TestSettingsService_Set(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	require.NoError(t, service.Set("recommendation.default_limit", "8"))
	require.NoError(t, service.Set("recommendation.similarity_threshold", "0.3"))
	require.NoError(t, service.Set("nlp.provider", "ollama"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 8, settings.Recommendation.DefaultLimit)
	assert.InDelta(t, 0.3, settings.Recommendation.SimilarityThreshold, 1e-9)
	assert.Equal(t, domain.NLPProviderOllama, settings.NLP.Provider)
}

func TestSettingsService_Set_Errors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{"unknown key", "search.mode", "hybrid", domain.ErrUnknownSetting},
		{"not an integer", "recommendation.default_limit", "five", domain.ErrInvalidInput},
		{"not a number", "scraper.rate_per_second", "fast", domain.ErrInvalidInput},
		{"out of range", "recommendation.competitor_workers", "64", domain.ErrInvalidInput},
		{"bad backend", "cache.backend", "memcached", domain.ErrInvalidInput},
		{"redis needs address", "cache.backend", "redis", domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store)

			err := service.Set(tt.key, tt.value)

			assert.ErrorIs(t, err, tt.wantErr)
			_, written := store.Get(tt.key)
			assert.False(t, written)
		})
	}
}

func TestSettingsService_Keys(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	keys := service.Keys()

	assert.Len(t, keys, 19)
	assert.Equal(t, "recommendation.cache_expiry_days", keys[0])
	assert.Contains(t, keys, "scraper.user_agent")
	for _, k := range keys {
		_, ok := lookupKind(k)
		assert.True(t, ok, k)
	}
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
