package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temcen/hybrec/internal/config"
	"github.com/temcen/hybrec/pkg/models"
)

// MockMessageWriter is a mock implementation of messageWriter
type MockMessageWriter struct {
	mock.Mock
}

func (m *MockMessageWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockMessageWriter) Close() error {
	return m.Called().Error(0)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func sampleEvent() models.RecommendationServed {
	return models.RecommendationServed{
		RecommendationID: uuid.New(),
		Operation:        "user",
		UserID:           "u1",
		Strategy:         "HYBRID_OK",
		ItemIDs:          []string{"iA", "iB"},
		Timestamp:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEncodeEvent(t *testing.T) {
	event := sampleEvent()

	message, err := encodeEvent(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("u1"), message.Key)

	var decoded models.RecommendationServed
	require.NoError(t, json.Unmarshal(message.Value, &decoded))
	assert.Equal(t, event.RecommendationID, decoded.RecommendationID)
	assert.Equal(t, event.ItemIDs, decoded.ItemIDs)

	headers := map[string]string{}
	for _, h := range message.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, event.RecommendationID.String(), headers["recommendation_id"])
	assert.Equal(t, "HYBRID_OK", headers["strategy"])
	assert.Equal(t, "2024-03-01T12:00:00Z", headers["timestamp"])
}

func TestEncodeEvent_KeysSimilarByItem(t *testing.T) {
	event := sampleEvent()
	event.Operation = "similar"
	event.UserID = ""
	event.ItemID = "iA"

	message, err := encodeEvent(event)
	require.NoError(t, err)
	assert.Equal(t, []byte("iA"), message.Key)
}

func TestImpressionPublisher_Publish(t *testing.T) {
	writer := new(MockMessageWriter)
	publisher := newImpressionPublisher(writer, "recommendation-impressions", quietLogger())
	event := sampleEvent()

	writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		return len(msgs) == 1 && string(msgs[0].Key) == "u1"
	})).Return(nil).Once()

	publisher.Publish(context.Background(), event)

	writer.AssertExpectations(t)
}

func TestImpressionPublisher_PublishFailureIsSwallowed(t *testing.T) {
	writer := new(MockMessageWriter)
	publisher := newImpressionPublisher(writer, "recommendation-impressions", quietLogger())

	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker unavailable"))
	writer.On("Close").Return(nil)

	assert.NotPanics(t, func() {
		publisher.Publish(context.Background(), sampleEvent())
	})
	assert.NoError(t, publisher.Close())
	writer.AssertExpectations(t)
}

func TestNewPublisher_NoBrokers(t *testing.T) {
	cfg := config.Default()

	publisher := NewPublisher(cfg, quietLogger())

	assert.IsType(t, NoopPublisher{}, publisher)
	assert.NotPanics(t, func() {
		publisher.Publish(context.Background(), sampleEvent())
	})
	assert.NoError(t, publisher.Close())
}

func TestNewPublisher_WithBrokers(t *testing.T) {
	cfg := config.Default()
	cfg.Kafka.Brokers = []string{"localhost:9092"}

	publisher := NewPublisher(cfg, quietLogger())

	impressions, ok := publisher.(*ImpressionPublisher)
	require.True(t, ok)
	assert.Equal(t, "recommendation-impressions", impressions.topic)
	assert.NoError(t, publisher.Close())
}
