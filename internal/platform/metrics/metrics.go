package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Solves counts finished solves by status (ok, infeasible, invalid).
	Solves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "vrp_solves_total", Help: "Routing solves by outcome."},
		[]string{"status"},
	)
	// SolveDuration tracks wall-clock solve time.
	SolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "vrp_solve_duration_seconds", Help: "Routing solve duration in seconds.", Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120}},
	)

	// MatrixRequests counts upstream matrix element requests by outcome.
	MatrixRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "vrp_matrix_requests_total", Help: "Upstream distance matrix requests by outcome."},
		[]string{"outcome"},
	)
	// MatrixCacheLookups counts cache lookups by result (hit, miss, error).
	MatrixCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "vrp_matrix_cache_lookups_total", Help: "Distance matrix cache lookups by result."},
		[]string{"result"},
	)
)

// RegisterDefault registers every collector on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Solves)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(MatrixRequests)
		Registry.MustRegister(MatrixCacheLookups)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
