package scribe

import (
	"github.com/donovanp007/medscribe/internal/analysis/stream"
	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/prometheus"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// MetricsObserver bridges analysis events into the application metrics.
type MetricsObserver struct {
	metrics *prometheus.AppMetrics
}

var _ stream.Observer = (*MetricsObserver)(nil)

// NewMetricsObserver wraps the application metrics as a stream observer.
func NewMetricsObserver(m *prometheus.AppMetrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) SentenceAssigned(sectionID string) {
	if o.metrics == nil || o.metrics.SentencesAssignedTotal == nil {
		return
	}
	o.metrics.SentencesAssignedTotal.WithLabelValues(sectionID).Inc()
}

func (o *MetricsObserver) SentenceDropped() {
	if o.metrics == nil || o.metrics.SentencesDroppedTotal == nil {
		return
	}
	o.metrics.SentencesDroppedTotal.WithLabelValues("below_floor").Inc()
}

func (o *MetricsObserver) EntityExtracted(entityType clinical.EntityType) {
	if o.metrics == nil || o.metrics.EntitiesExtractedTotal == nil {
		return
	}
	o.metrics.EntitiesExtractedTotal.WithLabelValues(string(entityType)).Inc()
}

func (o *MetricsObserver) UrgencyEscalated(_, to clinical.UrgencyLevel) {
	if o.metrics == nil || o.metrics.UrgencyEscalationsTotal == nil {
		return
	}
	o.metrics.UrgencyEscalationsTotal.WithLabelValues(string(to)).Inc()
}
