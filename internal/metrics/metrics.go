package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studynotes_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studynotes_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"method", "endpoint"},
	)

	// Transcript Metrics
	TranscriptStrategyAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studynotes_transcript_strategy_attempts_total",
			Help: "Transcript strategy attempts by outcome",
		},
		[]string{"strategy", "result"},
	)

	TranscriptStrategyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studynotes_transcript_strategy_duration_seconds",
			Help:    "Duration of a single transcript strategy attempt",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.5min
		},
		[]string{"strategy"},
	)

	TranscriptResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studynotes_transcript_resolutions_total",
			Help: "Transcript resolutions by winning strategy, or unavailable",
		},
		[]string{"result"},
	)

	TranscriptLengthChars = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "studynotes_transcript_length_chars",
			Help:    "Length of resolved transcripts in characters",
			Buckets: prometheus.ExponentialBuckets(500, 2, 10), // 500 to 256k chars
		},
	)

	// LLM Metrics
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studynotes_llm_requests_total",
			Help: "Total number of LLM completions",
		},
		[]string{"operation", "status"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studynotes_llm_request_duration_seconds",
			Help:    "LLM completion latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 9), // 0.5s to ~2min
		},
		[]string{"operation"},
	)

	// Note and Job Metrics
	NotesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studynotes_notes_created_total",
			Help: "Total number of study notes created",
		},
		[]string{"mode"},
	)

	JobsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studynotes_jobs_completed_total",
			Help: "Total number of finished note jobs",
		},
		[]string{"status"},
	)

	JobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studynotes_jobs_in_progress",
			Help: "Number of note jobs currently being processed",
		},
	)

	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "studynotes_queue_depth",
			Help: "Messages waiting in the job queues",
		},
		[]string{"queue"},
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "studynotes_job_duration_seconds",
			Help:    "Note job processing duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~8.5min
		},
	)

	WebhookDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studynotes_webhook_deliveries_total",
			Help: "Webhook delivery attempts by outcome",
		},
		[]string{"status"},
	)

	// Storage Metrics
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studynotes_storage_operations_total",
			Help: "Total number of storage operations",
		},
		[]string{"operation", "status"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studynotes_storage_operation_duration_seconds",
			Help:    "Storage operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StorageBytesTransferred = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studynotes_storage_bytes_transferred_total",
			Help: "Total bytes transferred to/from storage",
		},
		[]string{"operation"},
	)

	// Database Metrics
	DatabaseOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studynotes_database_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "status"},
	)

	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studynotes_database_operation_duration_seconds",
			Help:    "Database operation latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"operation"},
	)

	// Cache Metrics
	CacheAccessTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studynotes_cache_access_total",
			Help: "Cache lookups by cache and result",
		},
		[]string{"cache", "result"},
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studynotes_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "type"},
	)
)

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordStrategyAttempt records one transcript strategy attempt.
// result is "success", "empty" or "error".
func RecordStrategyAttempt(strategy, result string, duration float64) {
	TranscriptStrategyAttempts.WithLabelValues(strategy, result).Inc()
	TranscriptStrategyDuration.WithLabelValues(strategy).Observe(duration)
}

// RecordTranscriptResolved records the strategy that produced a transcript
func RecordTranscriptResolved(strategy string, chars int) {
	TranscriptResolutionsTotal.WithLabelValues(strategy).Inc()
	TranscriptLengthChars.Observe(float64(chars))
}

// RecordTranscriptUnavailable records a resolution where every strategy failed
func RecordTranscriptUnavailable() {
	TranscriptResolutionsTotal.WithLabelValues("unavailable").Inc()
}

// RecordLLMRequest records an LLM completion
func RecordLLMRequest(operation, status string, duration float64) {
	LLMRequestsTotal.WithLabelValues(operation, status).Inc()
	LLMRequestDuration.WithLabelValues(operation).Observe(duration)
}

// RecordNoteCreated records a created note; mode is "sync" or "async"
func RecordNoteCreated(mode string) {
	NotesCreatedTotal.WithLabelValues(mode).Inc()
}

// RecordJobCompleted records a finished note job
func RecordJobCompleted(status string, duration float64) {
	JobsCompletedTotal.WithLabelValues(status).Inc()
	JobDuration.Observe(duration)
}

// RecordQueueDepth records the sampled depth of a queue
func RecordQueueDepth(queue string, depth int) {
	QueueDepth.WithLabelValues(queue).Set(float64(depth))
}

// RecordWebhookDelivery records a webhook delivery attempt
func RecordWebhookDelivery(status string) {
	WebhookDeliveriesTotal.WithLabelValues(status).Inc()
}

// RecordStorageOperation records a storage operation
func RecordStorageOperation(operation, status string, duration float64, bytesTransferred int64) {
	StorageOperationsTotal.WithLabelValues(operation, status).Inc()
	StorageOperationDuration.WithLabelValues(operation).Observe(duration)
	StorageBytesTransferred.WithLabelValues(operation).Add(float64(bytesTransferred))
}

// RecordDatabaseOperation records a database operation
func RecordDatabaseOperation(operation, status string, duration float64) {
	DatabaseOperationsTotal.WithLabelValues(operation, status).Inc()
	DatabaseOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordCacheAccess records cache hit or miss
func RecordCacheAccess(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheAccessTotal.WithLabelValues(cache, result).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
