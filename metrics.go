package retry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are recorded only for named policies (see WithName), keyed by the
// policy name.
var (
	attemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of operation attempts",
		},
		[]string{"policy", "attempt"},
	)

	successTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_success_total",
			Help: "Total number of operations that eventually succeeded",
		},
		[]string{"policy"},
	)

	failureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_failure_total",
			Help: "Total number of operations that terminated with a failure",
		},
		[]string{"policy"},
	)

	callDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retry_call_duration_seconds",
			Help:    "Total duration of retried calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"policy", "result"},
	)

	backoffDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retry_backoff_duration_seconds",
			Help:    "Duration of backoff waits in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"policy"},
	)
)

func recordAttempt(policy string, attempt int) {
	attemptsTotal.WithLabelValues(policy, strconv.Itoa(attempt)).Inc()
}

func recordSuccess(policy string) {
	successTotal.WithLabelValues(policy).Inc()
}

func recordFailure(policy string) {
	failureTotal.WithLabelValues(policy).Inc()
}

func recordDuration(policy string, success bool, d time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	callDuration.WithLabelValues(policy, result).Observe(d.Seconds())
}

func recordBackoff(policy string, d time.Duration) {
	backoffDuration.WithLabelValues(policy).Observe(d.Seconds())
}
