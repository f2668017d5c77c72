package kafka

import (
	"context"
	"encoding/json"

	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/logging"
	"github.com/donovanp007/medscribe/pkg/errors"
	"github.com/donovanp007/medscribe/pkg/types/clinical"
)

// AlertProducer publishes urgent alerts raised during dictation to the
// alert topic.  Messages are keyed by session so alerts for one session
// stay ordered within a partition.
type AlertProducer struct {
	producer *Producer
	topic    string
	logger   logging.Logger
}

// NewAlertProducer wraps a Producer for the given alert topic.
func NewAlertProducer(p *Producer, topic string, log logging.Logger) (*AlertProducer, error) {
	if p == nil {
		return nil, errors.InvalidParam("producer required")
	}
	if topic == "" {
		topic = TopicUrgentAlerts
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &AlertProducer{producer: p, topic: topic, logger: log}, nil
}

// PublishAlert serializes the alert and writes it to the alert topic.
func (a *AlertProducer) PublishAlert(ctx context.Context, alert clinical.UrgentAlert) error {
	value, err := json.Marshal(alert)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal alert")
	}
	msg := &ProducerMessage{
		Topic: a.topic,
		Key:   []byte(alert.SessionID),
		Value: value,
		Headers: map[string]string{
			"alert_id": alert.AlertID,
			"urgency":  string(alert.Urgency),
		},
		Timestamp: alert.RaisedAt,
	}
	if err := a.producer.Publish(ctx, msg); err != nil {
		return err
	}
	a.logger.Info("urgent alert published",
		logging.String("session_id", alert.SessionID),
		logging.String("urgency", string(alert.Urgency)))
	return nil
}
