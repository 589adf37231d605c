package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ClassifyRequestsTotal counts classify API requests by result.
	ClassifyRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civicml",
		Subsystem: "api",
		Name:      "classify_requests_total",
		Help:      "Total number of classification API requests, labeled by result.",
	}, []string{"result"})

	// ClassifyDurationSeconds is end-to-end classify request time.
	ClassifyDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "civicml",
		Subsystem: "api",
		Name:      "classify_duration_seconds",
		Help:      "End-to-end time to serve a classification request.",
		// Keep buckets fairly coarse to avoid high-cardinality time series.
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"result"})

	// InferenceAvailable is 1 when the model inference service answered its
	// last health probe.
	InferenceAvailable = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "civicml",
		Subsystem: "api",
		Name:      "inference_available",
		Help:      "Whether the model inference service is currently reachable (best-effort).",
	})

	// JobsInFlight is the current number of queue jobs being processed.
	JobsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "civicml",
		Subsystem: "worker",
		Name:      "jobs_in_flight",
		Help:      "Current number of classification jobs being processed.",
	})

	// JobsProcessedTotal counts processed queue jobs by result.
	JobsProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civicml",
		Subsystem: "worker",
		Name:      "jobs_processed_total",
		Help:      "Total number of classification jobs processed, labeled by result.",
	}, []string{"result"})

	// JobDurationSeconds is end-to-end time per queue job.
	JobDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "civicml",
		Subsystem: "worker",
		Name:      "job_duration_seconds",
		Help:      "End-to-end time to process a classification job (classify + persist + notify).",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"result"})

	// LastJobSeconds is a unix timestamp (seconds) of the last job dequeued.
	LastJobSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "civicml",
		Subsystem: "worker",
		Name:      "last_job_timestamp_seconds",
		Help:      "Unix timestamp (seconds) of the last job dequeued by the worker.",
	})

	// WebhookErrorTotal counts failed result webhook deliveries.
	WebhookErrorTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "civicml",
		Subsystem: "worker",
		Name:      "webhook_error_total",
		Help:      "Total number of failed webhook notifications (best-effort delivery).",
	})

	// PublishErrorTotal counts failed event bus publishes.
	PublishErrorTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "civicml",
		Subsystem: "worker",
		Name:      "publish_error_total",
		Help:      "Total number of failed event publishes (best-effort delivery).",
	})
)

// Register registers pipeline metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ClassifyRequestsTotal,
			ClassifyDurationSeconds,
			InferenceAvailable,
			JobsInFlight,
			JobsProcessedTotal,
			JobDurationSeconds,
			LastJobSeconds,
			WebhookErrorTotal,
			PublishErrorTotal,
		)
	})
}

func NowUnixSeconds() float64 {
	return float64(time.Now().Unix())
}
