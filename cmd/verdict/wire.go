package main

import (
	"context"
	"fmt"

	"github.com/custodia-labs/verdict-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/verdict-cli/internal/adapters/driven/analyzer/lexicon"
	"github.com/custodia-labs/verdict-cli/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/verdict-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/verdict-cli/internal/adapters/driven/filter/cel"
	"github.com/custodia-labs/verdict-cli/internal/adapters/driven/scraper/web"
	"github.com/custodia-labs/verdict-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/verdict-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/verdict-cli/internal/core/domain"
	"github.com/custodia-labs/verdict-cli/internal/core/ports/driven"
	"github.com/custodia-labs/verdict-cli/internal/core/services"
	"github.com/custodia-labs/verdict-cli/internal/logger"
)

// initialise builds every adapter and service from the stored settings.
// The returned cleanup releases them in reverse order.
func initialise(ctx context.Context, opts cli.Options) (*cli.Services, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*cli.Services, func(), error) {
		cleanup()
		return nil, nil, err
	}

	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return fail(fmt.Errorf("opening config: %w", err))
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fail(fmt.Errorf("loading settings: %w", err))
	}
	if err := settingsService.Validate(); err != nil {
		logger.Warn("Invalid settings, using them anyway: %v", err)
	}

	store, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return fail(fmt.Errorf("opening store: %w", err))
	}
	closers = append(closers, func() { _ = store.Close() })
	logger.Debug("Store: %s", store.Path())

	cache, closeCache := newCache(ctx, settings, store)
	closers = append(closers, closeCache)

	aiResult := ai.Initialise(ctx, *settings)
	closers = append(closers, aiResult.Close)
	for _, w := range aiResult.Warnings {
		logger.Warn("%s", w)
	}

	recommendation := services.NewRecommendationService(
		store.ProductStore(),
		cache,
		aiResult.EmbeddingService,
		services.NewFeatureExtractor(aiResult.PhraseTagger),
		settings.Recommendation,
	)

	if settings.Recommendation.Filter != "" {
		filter, err := cel.New(settings.Recommendation.Filter)
		if err != nil {
			return fail(fmt.Errorf("recommendation filter: %w", err))
		}
		recommendation.SetCandidateFilter(filter)
	}

	scraper, err := web.New(web.ConfigFromSettings(settings.Scraper))
	if err != nil {
		return fail(fmt.Errorf("creating scraper: %w", err))
	}
	watchCtx, stopWatch := context.WithCancel(ctx)
	closers = append(closers, stopWatch)
	go func() {
		if err := scraper.Watch(watchCtx); err != nil {
			logger.Warn("Selectors watcher stopped: %v", err)
		}
	}()

	analyzer := lexicon.New()
	competitors := services.NewCompetitorFetcher(
		scraper,
		scraper,
		analyzer,
		settings.Recommendation.MaxCompetitorsPerSite,
		settings.Recommendation.CompetitorWorkers,
	)
	competitors.SetLinkStore(store.CompetitorLinkStore())
	recommendation.SetCompetitorFetcher(competitors)

	product := services.NewProductService(
		scraper,
		analyzer,
		store.ProductStore(),
		store.CompetitorLinkStore(),
		recommendation,
	)

	return &cli.Services{
		Recommendation: recommendation,
		Product:        product,
		Settings:       settingsService,
	}, cleanup, nil
}

// newCache returns the configured recommendation cache. An unreachable
// Redis server falls back to the SQLite cache.
func newCache(
	ctx context.Context, settings *domain.AppSettings, store *sqlite.Store,
) (driven.RecommendationCache, func()) {
	if settings.Cache.Backend != domain.CacheBackendRedis {
		return store.RecommendationCache(), func() {}
	}

	cache, err := redis.New(ctx, redis.Config{
		Addr: settings.Cache.RedisAddr,
		DB:   settings.Cache.RedisDB,
		TTL:  settings.Recommendation.CacheExpiry(),
	})
	if err != nil {
		logger.Warn("Redis cache unavailable, using SQLite: %v", err)
		return store.RecommendationCache(), func() {}
	}
	return cache, func() { _ = cache.Close() }
}
