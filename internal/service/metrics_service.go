package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the grading
// engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	marksSaved      prometheus.Counter
	markRowErrors   prometheus.Counter
	recomputes      prometheus.Counter
	cohortsRanked   prometheus.Counter
	termComputes    prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	marksSaved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mark_records_saved_total",
		Help: "Total mark records written through single or bulk entry",
	})

	markRowErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mark_row_errors_total",
		Help: "Total rows rejected during bulk mark ingestion",
	})

	recomputes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exam_summaries_recomputed_total",
		Help: "Total exam summary recomputations",
	})

	cohortsRanked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "exam_cohorts_ranked_total",
		Help: "Total cohort rank computations",
	})

	termComputes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "term_results_computed_total",
		Help: "Total term weighting computations",
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses, marksSaved, markRowErrors, recomputes, cohortsRanked, termComputes)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		marksSaved:      marksSaved,
		markRowErrors:   markRowErrors,
		recomputes:      recomputes,
		cohortsRanked:   cohortsRanked,
		termComputes:    termComputes,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one HTTP request observation.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// RecordCacheLookup tallies a cache hit or miss.
func (s *MetricsService) RecordCacheLookup(hit bool) {
	if s == nil {
		return
	}
	if hit {
		s.cacheHits.Inc()
	} else {
		s.cacheMisses.Inc()
	}
}

// RecordMarksSaved tallies persisted mark rows.
func (s *MetricsService) RecordMarksSaved(count int) {
	if s == nil || count <= 0 {
		return
	}
	s.marksSaved.Add(float64(count))
}

// RecordMarkRowErrors tallies rejected bulk rows.
func (s *MetricsService) RecordMarkRowErrors(count int) {
	if s == nil || count <= 0 {
		return
	}
	s.markRowErrors.Add(float64(count))
}

// RecordSummaryRecompute tallies one summary recomputation.
func (s *MetricsService) RecordSummaryRecompute() {
	if s == nil {
		return
	}
	s.recomputes.Inc()
}

// RecordCohortRanked tallies one cohort ranking pass.
func (s *MetricsService) RecordCohortRanked() {
	if s == nil {
		return
	}
	s.cohortsRanked.Inc()
}

// RecordTermComputation tallies one term weighting computation.
func (s *MetricsService) RecordTermComputation() {
	if s == nil {
		return
	}
	s.termComputes.Inc()
}
