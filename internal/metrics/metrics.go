package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Collection operations by name and result
	OperationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kca_project_operations_total",
			Help: "Total number of project collection operations",
		},
		[]string{"operation", "result"}, // result: ok, error
	)

	// Projects currently in the collection
	CollectionSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kca_projects",
			Help: "Number of projects in the collection",
		},
	)

	// Store read/write latency (seconds)
	StoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kca_store_duration_seconds",
			Help:    "Project store load and save duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		},
		[]string{"operation"},
	)

	// Records imported from backups
	ImportedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kca_projects_imported_total",
			Help: "Total number of projects imported or skipped from backups",
		},
		[]string{"outcome"}, // outcome: imported, skipped
	)

	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

// RecordOperation counts a collection operation.
func RecordOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	OperationCount.WithLabelValues(operation, result).Inc()
}

// SetCollectionSize records the current number of projects.
func SetCollectionSize(n int) {
	CollectionSize.Set(float64(n))
}

// RecordStoreDuration records a store load or save that began at start.
func RecordStoreDuration(operation string, start time.Time) {
	StoreDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordImport counts imported and skipped projects.
func RecordImport(imported, skipped int) {
	ImportedCount.WithLabelValues("imported").Add(float64(imported))
	ImportedCount.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordHTTPRequestDuration records an HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
