package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/temcen/hybrec/internal/config"
	"github.com/temcen/hybrec/pkg/models"
)

// Publisher emits RecommendationServed events. Failures are logged by the
// implementation and never returned to request handlers.
type Publisher interface {
	Publish(ctx context.Context, event models.RecommendationServed)
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ImpressionPublisher writes RecommendationServed events to Kafka.
type ImpressionPublisher struct {
	writer messageWriter
	topic  string
	logger *logrus.Logger
}

// NewPublisher returns a Kafka publisher, or a no-op publisher when no
// brokers are configured.
func NewPublisher(cfg *config.Config, logger *logrus.Logger) Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("No Kafka brokers configured, impression events disabled")
		return NoopPublisher{}
	}

	topic := cfg.Kafka.Topics.Impressions
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // Key by user or item id
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		BatchSize:    100,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.WithError(err).WithField("messages", len(messages)).Error("Failed to deliver impression events")
			}
		},
	}

	return newImpressionPublisher(writer, topic, logger)
}

func newImpressionPublisher(writer messageWriter, topic string, logger *logrus.Logger) *ImpressionPublisher {
	return &ImpressionPublisher{writer: writer, topic: topic, logger: logger}
}

func (p *ImpressionPublisher) Publish(ctx context.Context, event models.RecommendationServed) {
	message, err := encodeEvent(event)
	if err != nil {
		p.logger.WithError(err).Error("Failed to encode impression event")
		return
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		p.logger.WithError(err).WithFields(logrus.Fields{
			"recommendation_id": event.RecommendationID,
			"topic":             p.topic,
		}).Error("Failed to publish impression event")
		return
	}

	p.logger.WithFields(logrus.Fields{
		"recommendation_id": event.RecommendationID,
		"strategy":          event.Strategy,
		"topic":             p.topic,
	}).Debug("Impression event published")
}

func (p *ImpressionPublisher) Close() error {
	return p.writer.Close()
}

func encodeEvent(event models.RecommendationServed) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	key := event.UserID
	if key == "" {
		key = event.ItemID
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "recommendation_id", Value: []byte(event.RecommendationID.String())},
			{Key: "operation", Value: []byte(event.Operation)},
			{Key: "strategy", Value: []byte(event.Strategy)},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}

// NoopPublisher discards events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, models.RecommendationServed) {}

func (NoopPublisher) Close() error { return nil }
