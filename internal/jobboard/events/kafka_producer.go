package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

const defaultQueueSize = 1000

// ErrProducerClosed is reported for events still queued when the producer closes.
var ErrProducerClosed = errors.New("kafka producer closed")

// Ack receives the outcome of writing one queued event. A nil error means
// the broker acknowledged the message.
type Ack func(err error)

type queuedEvent struct {
	event Event
	ack   Ack
}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerConfig configures the connection to the notification topic.
type ProducerConfig struct {
	Brokers    []string
	Topic      string
	Partitions int
	QueueSize  int
	// SetupTimeout bounds the retries of the topic creation.
	SetupTimeout time.Duration
}

// Producer publishes events asynchronously. Events are queued in a bounded
// buffer and rejected when the buffer is full; every accepted event is
// acknowledged exactly once.
type Producer struct {
	writer    KafkaWriter
	events    chan queuedEvent
	logger    *zap.Logger
	closeChan chan struct{}
	done      chan struct{}
}

// NewKafkaProducer makes sure the topic exists and starts a producer writing
// to it.
func NewKafkaProducer(cfg ProducerConfig, logger *zap.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	if err := ensureTopic(cfg, logger); err != nil {
		return nil, err
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		Topic:        cfg.Topic,
		RequiredAcks: kafka.RequireOne,
	}
	return NewProducer(writer, cfg.QueueSize, logger), nil
}

// NewProducer starts the event loop of a producer on top of writer.
func NewProducer(writer KafkaWriter, queueSize int, logger *zap.Logger) *Producer {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	p := &Producer{
		writer:    writer,
		events:    make(chan queuedEvent, queueSize),
		logger:    logger.Named("kafka_producer"),
		closeChan: make(chan struct{}),
		done:      make(chan struct{}),
	}
	go p.eventLoop()
	return p
}

func ensureTopic(cfg ProducerConfig, logger *zap.Logger) error {
	partitions := cfg.Partitions
	if partitions <= 0 {
		partitions = 3
	}
	policy := backoff.NewExponentialBackOff()
	if cfg.SetupTimeout > 0 {
		policy.MaxElapsedTime = cfg.SetupTimeout
	}

	return backoff.RetryNotify(func() error {
		conn, err := kafka.Dial("tcp", cfg.Brokers[0])
		if err != nil {
			return err
		}
		defer conn.Close()

		err = conn.CreateTopics(kafka.TopicConfig{
			Topic:             cfg.Topic,
			NumPartitions:     partitions,
			ReplicationFactor: 1,
		})
		if err != nil {
			logger.Warn("failed to create topic (may already exist)", zap.Error(err))
		}
		return nil
	}, policy, func(err error, next time.Duration) {
		logger.Warn("Kafka not reachable, retrying",
			zap.Error(err),
			zap.Duration("retry_in", next))
	})
}

// Produce queues a notification for publishing. It reports false when the
// queue is full and the notification was dropped; otherwise ack, when set,
// is called once the write finished.
func (p *Producer) Produce(eventType EventType, n *models.Notification, ack Ack) bool {
	select {
	case p.events <- queuedEvent{event: NewEvent(eventType, n), ack: ack}:
		return true
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", string(eventType)),
			zap.String("notification_id", n.ID.String()),
		)
		return false
	}
}

func (p *Producer) eventLoop() {
	defer close(p.done)
	for {
		select {
		case queued := <-p.events:
			err := p.sendEvent(context.Background(), queued.event)
			if queued.ack != nil {
				queued.ack(err)
			}
		case <-p.closeChan:
			return
		}
	}
}

func (p *Producer) sendEvent(ctx context.Context, event Event) error {
	value, err := jsonMarshal(event)
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.String("notification_id", event.Notification.ID),
		)
		return fmt.Errorf("failed to serialize event: %w", err)
	}
	// Keyed by recipient so that one user's notifications stay ordered.
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Notification.RecipientID),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.String("notification_id", event.Notification.ID),
		)
		return err
	}
	return nil
}

// Close stops the event loop and closes the writer. Events that were not
// sent yet are acknowledged with ErrProducerClosed.
func (p *Producer) Close() {
	close(p.closeChan)
	if p.done != nil {
		<-p.done
	}
	p.drain()
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}

func (p *Producer) drain() {
	for {
		select {
		case queued := <-p.events:
			if queued.ack != nil {
				queued.ack(ErrProducerClosed)
			}
		default:
			return
		}
	}
}
