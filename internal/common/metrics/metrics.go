// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Pipeline-level metrics. "source" distinguishes model predictions from
// rule overrides so intent drift is visible per path.
var (
	NLUPredictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlu_predictions_total",
			Help: "Total number of intent predictions by intent and source",
		},
		[]string{"intent", "source"},
	)

	NLUPredictionConfidence = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nlu_prediction_confidence",
			Help:    "Distribution of final prediction confidence by intent",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 9),
		},
		[]string{"intent"},
	)

	NLURuleOverrides = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlu_rule_overrides_total",
			Help: "Total number of rule overrides by trigger condition",
		},
		[]string{"trigger"},
	)

	NLUInferenceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlu_inference_failures_total",
			Help: "Total number of degraded inference calls by reason",
		},
		[]string{"reason"},
	)

	NLULowConfidencePredictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nlu_low_confidence_predictions_total",
			Help: "Total number of final predictions below the low-confidence threshold",
		},
	)

	NLUQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlu_query_errors_total",
			Help: "Total number of query pipeline failures by stage",
		},
		[]string{"stage"},
	)

	NLUContextStoreFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlu_context_store_failures_total",
			Help: "Total number of conversation context store failures by operation",
		},
		[]string{"operation"},
	)
)
