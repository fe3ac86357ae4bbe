package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	httpRequestsTotal      *prometheus.CounterVec
	httpLatencySeconds     *prometheus.HistogramVec
	httpErrorsTotal        *prometheus.CounterVec
	scoringDurationSeconds *prometheus.HistogramVec
	assessmentsSavedTotal  *prometheus.CounterVec
	dashboardCacheLookups  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors exported by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spk_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spk_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spk_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		scoringDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spk_scoring_duration_seconds",
			Help:    "Time spent loading a student snapshot and running the scoring pipeline.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}, []string{"view"})

		assessmentsSavedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spk_assessments_saved_total",
			Help: "Total number of answer batches written, by write mode.",
		}, []string{"mode"})

		dashboardCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spk_dashboard_cache_lookups_total",
			Help: "Dashboard cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			scoringDurationSeconds,
			assessmentsSavedTotal,
			dashboardCacheLookups,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ScoringDuration exposes the histogram of scoring computations, labelled by view.
func ScoringDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return scoringDurationSeconds
}

// AssessmentsSaved exposes the counter of answer batches written.
func AssessmentsSaved() *prometheus.CounterVec {
	RegisterMetrics()
	return assessmentsSavedTotal
}

// DashboardCacheLookups exposes the dashboard cache hit/miss counter.
func DashboardCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return dashboardCacheLookups
}
