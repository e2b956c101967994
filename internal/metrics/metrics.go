// Package metrics exposes Prometheus instrumentation for the recommendation
// pipeline. Counters are registered on the default registry and served by
// Serve when a metrics port is configured.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recommendation outcomes.
const (
	OutcomeCacheHit = "cache_hit"
	OutcomeComputed = "computed"
	OutcomeFailed   = "failed"
)

var (
	// RecommendationRequests counts recommendation computations by outcome.
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdict_recommendation_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	// RecommendationDuration tracks end-to-end recommendation latency.
	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "verdict_recommendation_duration_seconds",
			Help:    "Duration of recommendation computations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// CompetitorAnalyses counts competitor re-analysis results (ok, fallback, skipped).
	CompetitorAnalyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdict_competitor_analysis_total",
			Help: "Total number of competitor re-analyses by result",
		},
		[]string{"result"},
	)

	// EmbeddingFallbacks counts embeddings produced by the frequency fallback.
	EmbeddingFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "verdict_embedding_fallback_total",
			Help: "Total number of embeddings computed by the fallback strategy",
		},
	)

	// StoreErrors counts swallowed store and cache failures by operation.
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdict_store_errors_total",
			Help: "Total number of store and cache errors by operation",
		},
		[]string{"operation"},
	)
)

// ObserveRecommendation records one recommendation computation.
func ObserveRecommendation(outcome string, started time.Time) {
	RecommendationRequests.WithLabelValues(outcome).Inc()
	RecommendationDuration.Observe(time.Since(started).Seconds())
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background()) //nolint:errcheck
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
