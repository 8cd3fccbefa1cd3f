package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one relayed event. A failed event is not committed.
type Handler func(context.Context, Event) error

// Consumer reads the notification topic and hands every event to a handler.
type Consumer struct {
	reader  KafkaReader
	logger  *zap.Logger
	handler Handler
	// retry paces FetchMessage after a failure.
	retry backoff.BackOff
	done  chan struct{}
}

// NewConsumer joins groupID on the notification topic.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return newConsumer(kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
		Dialer:  kafka.DefaultDialer,
	}), logger)
}

func newConsumer(reader KafkaReader, logger *zap.Logger) *Consumer {
	retry := backoff.NewExponentialBackOff()
	retry.MaxInterval = 30 * time.Second
	retry.MaxElapsedTime = 0
	return &Consumer{
		reader: reader,
		logger: logger.Named("kafka_consumer"),
		retry:  retry,
		done:   make(chan struct{}),
	}
}

// Start consumes in the background until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				wait := c.retry.NextBackOff()
				c.logger.Error("Failed to fetch message",
					zap.Error(err),
					zap.Duration("retry_in", wait))
				select {
				case <-ctx.Done():
					return
				case <-time.After(wait):
				}
				continue
			}
			c.retry.Reset()
			c.handle(ctx, msg)
		}
	}()
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to parse event",
			zap.Error(err),
			zap.ByteString("value", msg.Value),
		)
		return
	}

	if c.handler != nil {
		if err := c.handler(ctx, event); err != nil {
			c.logger.Error("Failed to handle event",
				zap.Error(err),
				zap.String("event_type", string(event.Type)),
				zap.String("notification_id", event.Notification.ID),
			)
			return
		}
	}

	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
		)
	}
}

func (c *Consumer) RegisterHandler(fn Handler) {
	c.handler = fn
}

// Done is closed once the consume loop has stopped.
func (c *Consumer) Done() <-chan struct{} {
	return c.done
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", zap.Error(err))
	}
}

// LogHandler relays events to the log. It stands in for the socket gateway
// that delivers pushes to connected clients.
func LogHandler(logger *zap.Logger) Handler {
	logger = logger.Named("relay")
	return func(_ context.Context, event Event) error {
		logger.Info("Push notification",
			zap.String("recipient_id", event.Notification.RecipientID),
			zap.String("type", event.Notification.Type),
			zap.String("message", event.Notification.Message),
		)
		return nil
	}
}
