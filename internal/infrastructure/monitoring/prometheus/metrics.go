package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds every metric series the engine emits.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Session layer
	SessionsActive       GaugeVec
	SessionsCreatedTotal CounterVec
	SessionResetsTotal   CounterVec

	// Analysis layer
	ChunksProcessedTotal    CounterVec
	SentencesAssignedTotal  CounterVec
	SentencesDroppedTotal   CounterVec
	EntitiesExtractedTotal  CounterVec
	AnalysisDuration        HistogramVec
	UrgencyEscalationsTotal CounterVec
	AssistFallbacksTotal    CounterVec

	// Infrastructure layer
	CacheHitsTotal         CounterVec
	CacheMissesTotal       CounterVec
	MessageProcessDuration HistogramVec
	MessagesConsumedTotal  CounterVec
	AlertsPublishedTotal   CounterVec

	// System health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default buckets
var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultAnalysisDurationBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5}
)

// NewAppMetrics registers all engine metrics on the collector and returns the
// populated AppMetrics bundle.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Sessions
	m.SessionsActive = collector.RegisterGauge("sessions_active", "Currently open streaming sessions")
	m.SessionsCreatedTotal = collector.RegisterCounter("sessions_created_total", "Streaming sessions created", "template")
	m.SessionResetsTotal = collector.RegisterCounter("session_resets_total", "Session resets")

	// Analysis
	m.ChunksProcessedTotal = collector.RegisterCounter("chunks_processed_total", "Transcript chunks processed", "source")
	m.SentencesAssignedTotal = collector.RegisterCounter("sentences_assigned_total", "Sentences assigned to a section", "section_type")
	m.SentencesDroppedTotal = collector.RegisterCounter("sentences_dropped_total", "Sentences dropped", "reason")
	m.EntitiesExtractedTotal = collector.RegisterCounter("entities_extracted_total", "Entities extracted", "entity_type")
	m.AnalysisDuration = collector.RegisterHistogram("analysis_duration_seconds", "Per-chunk analysis duration", DefaultAnalysisDurationBuckets, "operation")
	m.UrgencyEscalationsTotal = collector.RegisterCounter("urgency_escalations_total", "Urgency level escalations", "level")
	m.AssistFallbacksTotal = collector.RegisterCounter("assist_fallbacks_total", "AI assist failures that fell back to local scoring", "reason")

	// Infrastructure
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.MessageProcessDuration = collector.RegisterHistogram("mq_process_duration_seconds", "Message processing duration", DefaultHTTPDurationBuckets, "topic")
	m.MessagesConsumedTotal = collector.RegisterCounter("mq_messages_consumed_total", "Messages consumed", "topic", "status")
	m.AlertsPublishedTotal = collector.RegisterCounter("alerts_published_total", "Urgent alerts published", "urgency")

	// System health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type", "severity")

	return m
}

// RecordHTTPRequest observes one completed HTTP request.
func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCacheAccess counts one cache lookup against the hit/miss series.
func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// RecordError counts one error occurrence.
func RecordError(metrics *AppMetrics, component, errorType, severity string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType, severity).Inc()
}
