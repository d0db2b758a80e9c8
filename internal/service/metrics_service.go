package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer
// and the generation pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	pipelineRuns     *prometheus.CounterVec
	pipelineAttempts prometheus.Histogram
	pipelineDuration prometheus.Histogram
	conflictsFound   *prometheus.CounterVec
	exportTotal      *prometheus.CounterVec
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

	pipelineRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_pipeline_runs_total",
		Help: "Total pipeline runs by outcome",
	}, []string{"outcome"})

	pipelineAttempts := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_pipeline_attempts",
		Help:    "Generation attempts consumed per pipeline run",
		Buckets: []float64{1, 2, 3, 4, 5, 10, 20},
	})

	pipelineDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_pipeline_duration_seconds",
		Help:    "Wall time of a full pipeline run",
		Buckets: prometheus.DefBuckets,
	})

	conflictsFound := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_conflicts_total",
		Help: "Conflicts detected during validation by kind",
	}, []string{"kind"})

	exportTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_exports_total",
		Help: "Snapshot exports by format",
	}, []string{"format"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, pipelineRuns, pipelineAttempts, pipelineDuration, conflictsFound, exportTotal, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		pipelineRuns:     pipelineRuns,
		pipelineAttempts: pipelineAttempts,
		pipelineDuration: pipelineDuration,
		conflictsFound:   conflictsFound,
		exportTotal:      exportTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one completed request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.requestDuration.With(labels).Observe(duration.Seconds())
	m.requestTotal.With(labels).Inc()
}

// ObservePipelineRun records the outcome of a generation run.
func (m *MetricsService) ObservePipelineRun(outcome string, attempts int, duration time.Duration) {
	if m == nil {
		return
	}
	m.pipelineRuns.WithLabelValues(outcome).Inc()
	m.pipelineAttempts.Observe(float64(attempts))
	m.pipelineDuration.Observe(duration.Seconds())
}

// ObserveConflicts records conflicts detected during a validation pass.
func (m *MetricsService) ObserveConflicts(kind string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.conflictsFound.WithLabelValues(kind).Add(float64(count))
}

// ObserveExport records one snapshot export.
func (m *MetricsService) ObserveExport(format string) {
	if m == nil {
		return
	}
	m.exportTotal.WithLabelValues(format).Inc()
}
