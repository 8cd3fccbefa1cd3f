package events

import (
	"context"
	"fmt"
	"time"

	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outbox is the storage of notifications waiting to be pushed.
type Outbox interface {
	ListUndispatchedNotifications(ctx context.Context, limit int) ([]*models.Notification, error)
	MarkNotificationsDispatched(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Publisher queues notifications for delivery and acknowledges each
// accepted one after the write finished.
type Publisher interface {
	Produce(eventType EventType, n *models.Notification, ack Ack) bool
}

type delivery struct {
	id  uuid.UUID
	err error
}

// Dispatcher moves committed notifications from the outbox to the
// publisher. It polls on an interval and whenever it is woken.
type Dispatcher struct {
	outbox    Outbox
	publisher Publisher
	logger    *zap.Logger
	interval  time.Duration
	batchSize int
	wake      chan struct{}
}

func NewDispatcher(outbox Outbox, publisher Publisher, interval time.Duration, batchSize int, logger *zap.Logger) *Dispatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Dispatcher{
		outbox:    outbox,
		publisher: publisher,
		logger:    logger.Named("dispatcher"),
		interval:  interval,
		batchSize: batchSize,
		wake:      make(chan struct{}, 1),
	}
}

// Wake requests a flush without blocking the caller.
func (d *Dispatcher) Wake() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Run flushes the outbox until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-d.wake:
		}
		if _, err := d.Flush(ctx); err != nil && ctx.Err() == nil {
			d.logger.Error("Failed to flush notification outbox", zap.Error(err))
		}
	}
}

// Flush publishes pending notifications oldest first and returns how many
// were written. A notification is marked dispatched only once the publisher
// acknowledged its write, so pushes are delivered at least once. Flushing
// stops early when the publisher is full or a write fails; the rest is
// picked up by a later flush.
func (d *Dispatcher) Flush(ctx context.Context) (int, error) {
	total := 0
	for {
		pending, err := d.outbox.ListUndispatchedNotifications(ctx, d.batchSize)
		if err != nil {
			return total, err
		}
		if len(pending) == 0 {
			return total, nil
		}

		results := make(chan delivery, len(pending))
		queued := 0
		for _, n := range pending {
			id := n.ID
			accepted := d.publisher.Produce(NotificationCreated, n, func(err error) {
				results <- delivery{id: id, err: err}
			})
			if !accepted {
				break
			}
			queued++
		}

		ids, publishErr := d.collect(ctx, results, queued)
		if len(ids) > 0 {
			// Written messages are recorded even when ctx ends meanwhile.
			if err := d.outbox.MarkNotificationsDispatched(context.WithoutCancel(ctx), ids, time.Now().UTC()); err != nil {
				return total, err
			}
			total += len(ids)
			d.logger.Debug("Dispatched notifications", zap.Int("count", len(ids)))
		}
		if publishErr != nil {
			return total, publishErr
		}
		if queued < len(pending) || len(pending) < d.batchSize {
			return total, nil
		}
	}
}

// collect waits for n acknowledgements and returns the IDs written
// successfully along with the first failure.
func (d *Dispatcher) collect(ctx context.Context, results <-chan delivery, n int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, n)
	var failed error
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ids, ctx.Err()
		case r := <-results:
			if r.err != nil {
				if failed == nil {
					failed = fmt.Errorf("failed to publish notification %s: %w", r.id, r.err)
				}
				continue
			}
			ids = append(ids, r.id)
		}
	}
	return ids, failed
}
