package db

import (
	"context"
	"time"

	dbm "github.com/gartstein/jobboard/internal/jobboard/db/models"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
)

// CreateNotification stores a notification. It stays in the outbox until
// MarkNotificationsDispatched is called for it.
func (r *Repository) CreateNotification(ctx context.Context, n *models.Notification) error {
	rec, err := notificationToRecord(n)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

// ListNotifications returns the newest notifications of recipientID.
func (r *Repository) ListNotifications(ctx context.Context, recipientID uuid.UUID, limit int) ([]*models.Notification, error) {
	var recs []dbm.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return notificationsFromRecords(recs)
}

// MarkNotificationRead flags a notification of recipientID as read. Marking
// an already read notification again keeps its first read time.
func (r *Repository) MarkNotificationRead(ctx context.Context, id, recipientID uuid.UUID, at time.Time) error {
	var rec dbm.Notification
	if err := r.db.WithContext(ctx).First(&rec, "id = ? AND recipient_id = ?", id, recipientID).Error; err != nil {
		return notFound(err)
	}
	if rec.IsRead {
		return nil
	}
	return r.db.WithContext(ctx).Model(&dbm.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
}

// DeleteNotificationsForApplication purges every notification that refers to
// the application.
func (r *Repository) DeleteNotificationsForApplication(ctx context.Context, applicationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Delete(&dbm.Notification{}).Error
}

// ListUndispatchedNotifications returns the oldest notifications still waiting
// in the outbox.
func (r *Repository) ListUndispatchedNotifications(ctx context.Context, limit int) ([]*models.Notification, error) {
	var recs []dbm.Notification
	err := r.db.WithContext(ctx).
		Where("dispatched_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return notificationsFromRecords(recs)
}

func (r *Repository) MarkNotificationsDispatched(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&dbm.Notification{}).
		Where("id IN ? AND dispatched_at IS NULL", ids).
		Update("dispatched_at", at).Error
}

func (r *Repository) GetNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var rec dbm.Notification
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return notificationFromRecord(&rec)
}

func notificationsFromRecords(recs []dbm.Notification) ([]*models.Notification, error) {
	out := make([]*models.Notification, 0, len(recs))
	for i := range recs {
		n, err := notificationFromRecord(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

