package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	gradingRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gradebot",
			Name:      "grading_requests_total",
			Help:      "Grading requests by outcome.",
		},
		[]string{"outcome"},
	)

	providerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gradebot",
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of chat-completion calls to the LLM provider.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 9), // 250ms to ~64s
		},
		[]string{"outcome"},
	)

	auditWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gradebot",
			Name:      "audit_writes_total",
			Help:      "Audit log inserts by action and result.",
		},
		[]string{"action", "result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gradebot",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	Registry.MustRegister(
		gradingRequests,
		providerDuration,
		auditWrites,
		httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordGrading(outcome string) {
	gradingRequests.WithLabelValues(outcome).Inc()
}

func RecordProviderCall(outcome string, d time.Duration) {
	providerDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func RecordAuditWrite(action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	auditWrites.WithLabelValues(action, result).Inc()
}

// RecordHTTPRequest counts a request; path should be the route template so the
// label set stays bounded.
func RecordHTTPRequest(method, path string, status int) {
	if path == "" {
		path = "unmatched"
	}
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
