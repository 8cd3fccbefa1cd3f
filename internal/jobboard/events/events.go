// Package events publishes committed notifications to Kafka so that
// connected clients get them pushed, and relays them on the consumer side.
package events

import (
	"time"

	"github.com/gartstein/jobboard/internal/jobboard/models"
)

type EventType string

const (
	NotificationCreated EventType = "notification_created"
)

// Event is the message written to the notification topic.
type Event struct {
	Type         EventType           `json:"type"`
	Notification NotificationPayload `json:"notification"`
}

// NotificationPayload is the wire form of a notification.
type NotificationPayload struct {
	ID               string            `json:"id"`
	RecipientID      string            `json:"recipientId"`
	Type             string            `json:"type"`
	Message          string            `json:"message"`
	ApplicationID    string            `json:"applicationId,omitempty"`
	OfferID          string            `json:"offerId,omitempty"`
	Positions        []string          `json:"positions,omitempty"`
	ApplicantName    string            `json:"applicantName,omitempty"`
	Status           string            `json:"status,omitempty"`
	InterviewDetails *InterviewPayload `json:"interviewDetails,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
}

type InterviewPayload struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Notes       string `json:"notes"`
	CompanyName string `json:"companyName"`
}

// NewEvent wraps a notification into an event of the given type.
func NewEvent(eventType EventType, n *models.Notification) Event {
	payload := NotificationPayload{
		ID:            n.ID.String(),
		RecipientID:   n.RecipientID.String(),
		Type:          string(n.Type),
		Message:       n.Message,
		Positions:     n.Positions,
		ApplicantName: n.ApplicantName,
		Status:        n.Status,
		CreatedAt:     n.CreatedAt,
	}
	if n.ApplicationID != nil {
		payload.ApplicationID = n.ApplicationID.String()
	}
	if n.OfferID != nil {
		payload.OfferID = n.OfferID.String()
	}
	if d := n.InterviewDetails; d != nil {
		payload.InterviewDetails = &InterviewPayload{
			Date:        d.Date,
			Time:        d.Time,
			Location:    d.Location,
			Notes:       d.Notes,
			CompanyName: d.CompanyName,
		}
	}
	return Event{Type: eventType, Notification: payload}
}
