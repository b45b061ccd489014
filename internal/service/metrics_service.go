package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the import API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	importsTotal    *prometheus.CounterVec
	importIssues    *prometheus.CounterVec
	importLessons   prometheus.Counter
}

// NewMetricsService registers the core collectors.
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

	importsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "imports_total",
		Help: "Total number of import attempts",
	}, []string{"format", "valid"})

	importIssues := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_issues_total",
		Help: "Validation issues reported across import runs",
	}, []string{"severity"})

	importLessons := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "import_lessons_total",
		Help: "Lessons successfully reconciled across import runs",
	})

	registry.MustRegister(requestDuration, requestTotal, importsTotal, importIssues, importLessons)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		importsTotal:    importsTotal,
		importIssues:    importIssues,
		importLessons:   importLessons,
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	s.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(method, path, code).Inc()
}

// ObserveImport records the outcome of one import run.
func (s *MetricsService) ObserveImport(format string, valid bool, errors, warnings, lessons int) {
	s.importsTotal.WithLabelValues(format, strconv.FormatBool(valid)).Inc()
	s.importIssues.WithLabelValues("error").Add(float64(errors))
	s.importIssues.WithLabelValues("warning").Add(float64(warnings))
	if valid {
		s.importLessons.Add(float64(lessons))
	}
}
