package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies the event a notification reports.
type NotificationType string

const (
	NotificationJobApplication      NotificationType = "job_application"
	NotificationApplicationStatus   NotificationType = "application_status"
	NotificationInterviewScheduled  NotificationType = "interview_scheduled"
	NotificationApplicationAccepted NotificationType = "application_accepted"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationJobApplication, NotificationApplicationStatus,
		NotificationInterviewScheduled, NotificationApplicationAccepted:
		return true
	}
	return false
}

// InterviewDetails is the interview snapshot carried by a notification.
type InterviewDetails struct {
	Date        string
	Time        string
	Location    string
	Notes       string
	CompanyName string
}

// Notification is a persisted, recipient-scoped record of an event.
type Notification struct {
	ID            uuid.UUID
	RecipientID   uuid.UUID
	Type          NotificationType
	Message       string
	ApplicationID *uuid.UUID
	OfferID       *uuid.UUID
	Positions     []string
	ApplicantName string
	// Status is the application status the notification reports, if any.
	Status           string
	InterviewDetails *InterviewDetails
	IsRead           bool
	CreatedAt        time.Time
	ReadAt           *time.Time
	// DispatchedAt is set once the push dispatcher published the notification.
	DispatchedAt *time.Time
}
