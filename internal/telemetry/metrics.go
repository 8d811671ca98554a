package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the inkwell pipeline.
type Metrics struct {
	TurnTotal           *prometheus.CounterVec
	TurnDurationMs      *prometheus.HistogramVec
	TokensTotal         *prometheus.CounterVec
	FileCacheTotal      *prometheus.CounterVec
	ContextSummaryTotal *prometheus.CounterVec
	RateLimitHitTotal   *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		TurnTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_turn_total",
			Help: "Total number of turns processed by the pipeline.",
		}, []string{"model", "status"}),

		TurnDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inkwell_turn_duration_ms",
			Help:    "End-to-end turn duration in milliseconds (preprocessing plus generation).",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		}, []string{"model"}),

		TokensTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_tokens_total",
			Help: "Total tokens spent, by pipeline phase.",
		}, []string{"model", "phase"}),

		FileCacheTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_file_cache_total",
			Help: "File summary cache lookups by outcome.",
		}, []string{"outcome"}),

		ContextSummaryTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_context_summary_total",
			Help: "Context summarization passes by outcome.",
		}, []string{"outcome"}),

		RateLimitHitTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_ratelimit_hit_total",
			Help: "Requests rejected by rate or token budget limits.",
		}, []string{"limit"}),
	}
}

// TurnLabels holds the label values for recording a completed turn.
type TurnLabels struct {
	Model            string
	Status           string
	DurationMs       float64
	PreprocessTokens int
	GenerateTokens   int
	CacheHits        int
	CacheMisses      int
	FilesBypassed    int
	ContextOutcome   string
}

// RecordTurn records metrics for one finished turn.
func (m *Metrics) RecordTurn(labels TurnLabels) {
	m.TurnTotal.WithLabelValues(labels.Model, labels.Status).Inc()
	m.TurnDurationMs.WithLabelValues(labels.Model).Observe(labels.DurationMs)

	if labels.PreprocessTokens > 0 {
		m.TokensTotal.WithLabelValues(labels.Model, "preprocess").Add(float64(labels.PreprocessTokens))
	}
	if labels.GenerateTokens > 0 {
		m.TokensTotal.WithLabelValues(labels.Model, "generate").Add(float64(labels.GenerateTokens))
	}

	if labels.CacheHits > 0 {
		m.FileCacheTotal.WithLabelValues("hit").Add(float64(labels.CacheHits))
	}
	if labels.CacheMisses > 0 {
		m.FileCacheTotal.WithLabelValues("miss").Add(float64(labels.CacheMisses))
	}
	if labels.FilesBypassed > 0 {
		m.FileCacheTotal.WithLabelValues("bypass").Add(float64(labels.FilesBypassed))
	}

	if labels.ContextOutcome != "" {
		m.ContextSummaryTotal.WithLabelValues(labels.ContextOutcome).Inc()
	}
}

// RecordRateLimitHit records one rejected request.
func (m *Metrics) RecordRateLimitHit(limit string) {
	m.RateLimitHitTotal.WithLabelValues(limit).Inc()
}
