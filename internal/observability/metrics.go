// ABOUTME: Prometheus collectors for extraction, persistence, and HTTP traffic.
// ABOUTME: Registered on the default registry and served from /metrics.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	completionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "liftlog",
		Subsystem: "completion",
		Name:      "duration_seconds",
		Help:      "Latency of completion calls, labelled by result.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"result"})
	extractionResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liftlog",
		Subsystem: "extraction",
		Name:      "results_total",
		Help:      "Extraction attempts by result (extracted, no_json, completion_error).",
	}, []string{"result"})
	parseOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liftlog",
		Subsystem: "parse",
		Name:      "outcomes_total",
		Help:      "Parse requests by terminal outcome.",
	}, []string{"outcome"})
	workoutsPersisted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liftlog",
		Subsystem: "persistence",
		Name:      "workouts_total",
		Help:      "Workouts written to storage, by source (parse, submit).",
	}, []string{"source"})
	persistFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liftlog",
		Subsystem: "persistence",
		Name:      "failures_total",
		Help:      "Failed storage writes, by source (parse, submit).",
	}, []string{"source"})
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liftlog",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "status"})
)

func init() {
	prometheus.MustRegister(
		completionDuration,
		extractionResults,
		parseOutcomes,
		workoutsPersisted,
		persistFailures,
		httpRequests,
	)
}

// Extraction results.
const (
	ExtractionExtracted       = "extracted"
	ExtractionNoJSON          = "no_json"
	ExtractionCompletionError = "completion_error"
)

// RecordCompletion observes one completion call.
func RecordCompletion(elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	completionDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}

// RecordExtraction counts one extraction attempt.
func RecordExtraction(result string) {
	extractionResults.WithLabelValues(result).Inc()
}

// RecordParseOutcome counts one parse request by its terminal outcome.
func RecordParseOutcome(outcome string) {
	parseOutcomes.WithLabelValues(outcome).Inc()
}

// RecordPersisted counts n workouts written by source.
func RecordPersisted(source string, n int) {
	if n <= 0 {
		return
	}
	workoutsPersisted.WithLabelValues(source).Add(float64(n))
}

// RecordPersistFailure counts one failed write by source.
func RecordPersistFailure(source string) {
	persistFailures.WithLabelValues(source).Inc()
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(route string, status int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
