package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// MockKafkaWriter implements KafkaWriter for testing
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testNotification() *models.Notification {
	appID := uuid.New()
	return &models.Notification{
		ID:            uuid.New(),
		RecipientID:   uuid.New(),
		Type:          models.NotificationInterviewScheduled,
		Message:       "You have been invited to an interview by Acme",
		ApplicationID: &appID,
		Positions:     []string{"Dev"},
		InterviewDetails: &models.InterviewDetails{
			Date:        "2026-11-02",
			CompanyName: "Acme",
		},
		CreatedAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewEvent(t *testing.T) {
	n := testNotification()
	event := NewEvent(NotificationCreated, n)

	assert.Equal(t, NotificationCreated, event.Type)
	assert.Equal(t, n.RecipientID.String(), event.Notification.RecipientID)
	assert.Equal(t, n.ApplicationID.String(), event.Notification.ApplicationID)
	assert.Empty(t, event.Notification.OfferID)
	require.NotNil(t, event.Notification.InterviewDetails)
	assert.Equal(t, "Acme", event.Notification.InterviewDetails.CompanyName)

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"recipientId":"`+n.RecipientID.String()+`"`)
	assert.NotContains(t, string(raw), "offerId")
}

func TestNewProducer(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	mockWriter.On("Close").Return(nil)
	producer := NewProducer(mockWriter, 0, zaptest.NewLogger(t))
	defer producer.Close()

	assert.NotNil(t, producer.writer)
	assert.Equal(t, defaultQueueSize, cap(producer.events))
	assert.NotNil(t, producer.closeChan)
	assert.Equal(t, "kafka_producer", producer.logger.Check(zap.InfoLevel, "").LoggerName)
}

func TestNewKafkaProducerWithoutBrokers(t *testing.T) {
	_, err := NewKafkaProducer(ProducerConfig{Topic: "notifications"}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestProducer_Produce(t *testing.T) {
	t.Run("successful produce", func(t *testing.T) {
		producer := &Producer{
			events: make(chan queuedEvent, 1),
			logger: zaptest.NewLogger(t),
		}

		assert.True(t, producer.Produce(NotificationCreated, testNotification(), nil))
		assert.Equal(t, 1, len(producer.events))
	})

	t.Run("dropped event when queue full", func(t *testing.T) {
		core, recorded := observer.New(zap.WarnLevel)
		producer := &Producer{
			events: make(chan queuedEvent, 1), // Small buffer for test
			logger: zap.New(core),
		}
		n := testNotification()

		assert.True(t, producer.Produce(NotificationCreated, n, nil))
		assert.False(t, producer.Produce(NotificationCreated, n, nil), "second event should be dropped")

		assert.Equal(t, 1, recorded.FilterMessage("Kafka producer queue full, dropping event").Len())
		assert.Equal(t, 1, recorded.FilterField(zap.String("notification_id", n.ID.String())).Len())
	})
}

func TestProducer_SendEvent(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	n := testNotification()
	event := NewEvent(NotificationCreated, n)

	producer := &Producer{
		writer: mockWriter,
		logger: zaptest.NewLogger(t),
	}

	t.Run("successful send", func(t *testing.T) {
		mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)

		require.NoError(t, producer.sendEvent(context.Background(), event))

		mockWriter.AssertCalled(t, "WriteMessages", mock.Anything, []kafka.Message{
			{
				Key:   []byte(n.RecipientID.String()),
				Value: mustMarshal(event),
			},
		})
	})

	t.Run("serialization error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		producer.logger = zap.New(core)

		oldMarshal := jsonMarshal
		jsonMarshal = func(_ interface{}) ([]byte, error) {
			return nil, errors.New("mock marshal error")
		}
		defer func() { jsonMarshal = oldMarshal }()

		assert.Error(t, producer.sendEvent(context.Background(), event))

		assert.Equal(t, 1, recorded.FilterMessage("Failed to serialize event").Len())
		assert.Equal(t, 1, recorded.FilterField(zap.String("notification_id", n.ID.String())).Len())
	})

	t.Run("write error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		producer.logger = zap.New(core)
		mockWriter.ExpectedCalls = nil
		mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("kafka error"))

		assert.EqualError(t, producer.sendEvent(context.Background(), event), "kafka error")

		assert.Equal(t, 1, recorded.FilterMessage("Failed to produce event").Len())
	})
}

func TestProducer_Close(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	mockWriter.On("Close").Return(nil)

	producer := NewProducer(mockWriter, 1, zaptest.NewLogger(t))
	producer.Close()

	select {
	case <-producer.closeChan:
	default:
		t.Error("closeChan not closed")
	}
	select {
	case <-producer.done:
	default:
		t.Error("event loop still running")
	}

	mockWriter.AssertCalled(t, "Close")
}

func TestProducer_CloseAcksQueuedEvents(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	mockWriter.On("Close").Return(nil)
	producer := &Producer{
		writer:    mockWriter,
		events:    make(chan queuedEvent, 2),
		logger:    zaptest.NewLogger(t),
		closeChan: make(chan struct{}),
	}

	var acked []error
	ack := func(err error) { acked = append(acked, err) }
	require.True(t, producer.Produce(NotificationCreated, testNotification(), ack))
	require.True(t, producer.Produce(NotificationCreated, testNotification(), ack))
	producer.Close()

	require.Len(t, acked, 2)
	for _, err := range acked {
		assert.ErrorIs(t, err, ErrProducerClosed)
	}
	mockWriter.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
}

func TestProducer_EventLoop(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	sent := make(chan struct{})
	mockWriter.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { close(sent) }).
		Return(nil).Once()
	mockWriter.On("Close").Return(nil)

	producer := NewProducer(mockWriter, 1, zaptest.NewLogger(t))
	defer producer.Close()

	acked := make(chan error, 1)
	producer.Produce(NotificationCreated, testNotification(), func(err error) { acked <- err })

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("event was not written")
	}
	select {
	case err := <-acked:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("event was not acknowledged")
	}
	mockWriter.AssertNumberOfCalls(t, "WriteMessages", 1)
}

func mustMarshal(event Event) []byte {
	data, _ := json.Marshal(event)
	return data
}
