// Package telemetry exposes Prometheus metrics for the harvesting pipeline
// and the HTTP surface.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sourcesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_sources_total",
			Help: "Total number of source pipeline runs, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	grantsUpsertedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_grants_upserted_total",
			Help: "Total number of grants upserted.",
		},
	)

	recordsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harvester_records_skipped_total",
			Help: "Total number of extracted records skipped due to per-record failures.",
		},
	)

	fetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_fetch_attempts_total",
			Help: "Total fetch attempts, labeled by final outcome of the fetch.",
		},
		[]string{"outcome"},
	)

	sourceDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "harvester_source_duration_seconds",
			Help:    "Histogram of per-source pipeline durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)
)

// ObserveSourceRun records one completed source pipeline.
func ObserveSourceRun(outcome string, duration time.Duration) {
	sourcesTotal.WithLabelValues(outcome).Inc()
	sourceDurationSeconds.Observe(duration.Seconds())
}

// ObserveGrantsUpserted adds to the upserted-grant counter.
func ObserveGrantsUpserted(n int) {
	grantsUpsertedTotal.Add(float64(n))
}

// ObserveRecordSkipped counts one per-record failure.
func ObserveRecordSkipped() {
	recordsSkippedTotal.Inc()
}

// ObserveFetch records how many attempts one fetch consumed.
func ObserveFetch(outcome string, attempts int) {
	fetchAttemptsTotal.WithLabelValues(outcome).Add(float64(attempts))
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware is a chi middleware that records HTTP request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}
		ObserveHTTPRequest(r.Method, routePattern, ww.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
