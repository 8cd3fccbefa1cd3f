package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// notificationListLimit caps how many notifications List returns.
const notificationListLimit = 50

type NotificationRepository interface {
	UserStore
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, recipientID uuid.UUID, limit int) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, recipientID uuid.UUID, at time.Time) error
}

// CreateNotificationRequest is a notification created on behalf of a client.
type CreateNotificationRequest struct {
	RecipientID   uuid.UUID
	Type          models.NotificationType
	Message       string
	ApplicationID *uuid.UUID
	OfferID       *uuid.UUID
	Positions     []string
	CompanyName   string
	Interview     *models.InterviewDetails
}

// NotificationService serves the notification inbox of each user.
type NotificationService struct {
	repo       NotificationRepository
	dispatcher EventDispatcher
	logger     *zap.Logger
	now        func() time.Time
}

func NewNotificationService(repo NotificationRepository, dispatcher EventDispatcher, logger *zap.Logger) *NotificationService {
	if dispatcher == nil {
		dispatcher = nopDispatcher{}
	}
	return &NotificationService{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger.Named("notification_service"),
		now:        utcNow,
	}
}

// Create stores a notification for req.RecipientID. An application_accepted
// notification gets its message rendered from the company name.
func (s *NotificationService) Create(ctx context.Context, email string, req CreateNotificationRequest) (*models.Notification, error) {
	if _, err := resolveActor(ctx, s.repo, email); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown notification type %q", e.ErrInvalidInput, req.Type)
	}
	if req.RecipientID == uuid.Nil {
		return nil, fmt.Errorf("%w: recipient is required", e.ErrInvalidInput)
	}

	message := strings.TrimSpace(req.Message)
	if req.Type == models.NotificationApplicationAccepted {
		message = interviewAcceptedMessage(req.CompanyName)
	}
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", e.ErrInvalidInput)
	}

	if _, err := s.repo.GetUser(ctx, req.RecipientID); err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}

	interview := req.Interview
	if interview != nil && interview.CompanyName == "" {
		details := *interview
		details.CompanyName = req.CompanyName
		interview = &details
	}
	n := &models.Notification{
		ID:               uuid.New(),
		RecipientID:      req.RecipientID,
		Type:             req.Type,
		Message:          message,
		ApplicationID:    req.ApplicationID,
		OfferID:          req.OfferID,
		Positions:        req.Positions,
		InterviewDetails: interview,
		CreatedAt:        s.now(),
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	s.dispatcher.Wake()

	s.logger.Debug("Notification created",
		zap.String("notification_id", n.ID.String()),
		zap.String("type", string(n.Type)))
	return n, nil
}

// List returns the newest notifications of the caller. Anonymous callers
// have an empty inbox.
func (s *NotificationService) List(ctx context.Context, email string) ([]*models.Notification, error) {
	if strings.TrimSpace(email) == "" {
		return []*models.Notification{}, nil
	}
	user, err := resolveActor(ctx, s.repo, email)
	if err != nil {
		return nil, err
	}
	notifications, err := s.repo.ListNotifications(ctx, user.ID, notificationListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flags one of the caller's notifications as read. Notifications of
// other users are reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, email string, id uuid.UUID) error {
	user, err := resolveActor(ctx, s.repo, email)
	if err != nil {
		return err
	}
	return s.repo.MarkNotificationRead(ctx, id, user.ID, s.now())
}
