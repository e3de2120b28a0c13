// Package metrics bundles the Prometheus collectors shared by the fetch, scrape and analysis stages.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors on a dedicated registry.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RetriesTotal    *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
	ReviewsScraped  prometheus.Counter
	StrategyHits    *prometheus.CounterVec
	ParseFailures   *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	AnalysesTotal   *prometheus.CounterVec
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinesent_requests_total",
			Help: "Total outbound HTTP requests by source.",
		},
		[]string{"source"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinesent_request_duration_seconds",
			Help:    "Outbound HTTP request latency by source.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
	retries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinesent_retries_total",
			Help: "Total number of retry attempts by source.",
		},
		[]string{"source"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinesent_errors_total",
			Help: "Total number of failures by source and type.",
		},
		[]string{"source", "error_type"},
	)
	reviews := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cinesent_reviews_scraped_total",
			Help: "Total number of reviews extracted from review pages.",
		},
	)
	strategies := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinesent_strategy_hits_total",
			Help: "Extraction strategy that produced the reviews of a page.",
		},
		[]string{"strategy"},
	)
	parseFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinesent_parse_failures_total",
			Help: "Per-item parse failures that were skipped.",
		},
		[]string{"field"},
	)
	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinesent_cache_lookups_total",
			Help: "Cache lookups by cache and result.",
		},
		[]string{"cache", "result"},
	)
	analyses := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinesent_analyses_total",
			Help: "Completed analyses by recommendation tier.",
		},
		[]string{"tier"},
	)

	registry.MustRegister(requests, requestDuration, retries, errorsTotal, reviews, strategies, parseFailures, cacheLookups, analyses)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		RetriesTotal:    retries,
		ErrorsTotal:     errorsTotal,
		ReviewsScraped:  reviews,
		StrategyHits:    strategies,
		ParseFailures:   parseFailures,
		CacheLookups:    cacheLookups,
		AnalysesTotal:   analyses,
	}
}

// IncRequest increments the requests counter for source.
func (m *Metrics) IncRequest(source string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(source).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(source string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(source).Observe(d.Seconds())
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries(source string) {
	if m == nil {
		return
	}
	m.RetriesTotal.WithLabelValues(source).Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(source, errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(source, errorType).Inc()
}

// AddReviews adds n to the scraped reviews counter.
func (m *Metrics) AddReviews(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ReviewsScraped.Add(float64(n))
}

// IncStrategy records the winning extraction strategy.
func (m *Metrics) IncStrategy(name string) {
	if m == nil {
		return
	}
	m.StrategyHits.WithLabelValues(name).Inc()
}

// IncParseFailure counts a skipped per-item parse failure.
func (m *Metrics) IncParseFailure(field string) {
	if m == nil {
		return
	}
	m.ParseFailures.WithLabelValues(field).Inc()
}

// IncCache records a cache hit or miss.
func (m *Metrics) IncCache(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}

// IncAnalysis counts a completed analysis by tier.
func (m *Metrics) IncAnalysis(tier string) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(tier).Inc()
}
