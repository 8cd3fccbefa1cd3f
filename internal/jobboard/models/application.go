package models

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the overall disposition of an application.
type ApplicationStatus string

const (
	StatusPending            ApplicationStatus = "pending"
	StatusInterviewScheduled ApplicationStatus = "interview_scheduled"
	StatusAccepted           ApplicationStatus = "accepted"
	StatusRejected           ApplicationStatus = "rejected"
)

// Valid reports whether s is a known overall status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInterviewScheduled, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// PositionStatus is the decision on a single applied position.
type PositionStatus string

const (
	PositionPending  PositionStatus = "pending"
	PositionAccepted PositionStatus = "accepted"
	PositionRejected PositionStatus = "rejected"
)

// Valid reports whether s is a known position status.
func (s PositionStatus) Valid() bool {
	return s == PositionPending || s == PositionAccepted || s == PositionRejected
}

// ApplicationPosition is one position entry of an application.
type ApplicationPosition struct {
	Title  string
	Status PositionStatus
}

// Interview holds the interview a company scheduled for an application.
type Interview struct {
	Date        string
	Time        string
	Location    string
	Notes       string
	ScheduledAt time.Time
}

// JobApplication is a candidate's submission against positions of one offer.
type JobApplication struct {
	ID             uuid.UUID
	OfferID        uuid.UUID
	CompanyID      uuid.UUID
	ApplicantID    uuid.UUID
	ApplicantEmail string
	ApplicantName  string
	Positions      []ApplicationPosition
	// Status is always DeriveStatus(Positions, Interview).
	Status    ApplicationStatus
	AppliedAt time.Time
	UpdatedAt time.Time
	Interview *Interview
}

// DeriveStatus computes the overall status of an application: accepted when
// every position is accepted, rejected when every position is rejected,
// otherwise interview_scheduled when an interview is set, else pending.
func DeriveStatus(positions []ApplicationPosition, interview *Interview) ApplicationStatus {
	if len(positions) > 0 {
		accepted, rejected := true, true
		for _, p := range positions {
			accepted = accepted && p.Status == PositionAccepted
			rejected = rejected && p.Status == PositionRejected
		}
		switch {
		case accepted:
			return StatusAccepted
		case rejected:
			return StatusRejected
		}
	}
	if interview != nil {
		return StatusInterviewScheduled
	}
	return StatusPending
}

// NewApplication builds a pending application for the given position titles.
func NewApplication(offer *JobOffer, applicant *User, titles []string, now time.Time) *JobApplication {
	positions := make([]ApplicationPosition, 0, len(titles))
	for _, t := range titles {
		positions = append(positions, ApplicationPosition{Title: t, Status: PositionPending})
	}
	return &JobApplication{
		ID:             uuid.New(),
		OfferID:        offer.ID,
		CompanyID:      offer.UserID,
		ApplicantID:    applicant.ID,
		ApplicantEmail: applicant.Email,
		ApplicantName:  applicant.FullName(),
		Positions:      positions,
		Status:         StatusPending,
		AppliedAt:      now,
		UpdatedAt:      now,
	}
}

// SetAllPositions forces every position to status and re-derives the overall status.
func (a *JobApplication) SetAllPositions(status PositionStatus) {
	for i := range a.Positions {
		a.Positions[i].Status = status
	}
	a.Status = DeriveStatus(a.Positions, a.Interview)
}

// SetPositionStatus updates the position named title. It returns false when
// the application has no such position.
func (a *JobApplication) SetPositionStatus(title string, status PositionStatus) bool {
	for i := range a.Positions {
		if a.Positions[i].Title == title {
			a.Positions[i].Status = status
			a.Status = DeriveStatus(a.Positions, a.Interview)
			return true
		}
	}
	return false
}

// Decided reports whether every position was accepted or every position
// was rejected.
func (a *JobApplication) Decided() bool {
	return a.Status == StatusAccepted || a.Status == StatusRejected
}

// ScheduleInterview attaches the interview and re-derives the overall status.
func (a *JobApplication) ScheduleInterview(iv Interview) {
	a.Interview = &iv
	a.Status = DeriveStatus(a.Positions, a.Interview)
}

// ClearInterview drops the interview and re-derives the overall status.
func (a *JobApplication) ClearInterview() {
	a.Interview = nil
	a.Status = DeriveStatus(a.Positions, a.Interview)
}

// PositionTitles lists the applied titles in order.
func (a *JobApplication) PositionTitles() []string {
	titles := make([]string, 0, len(a.Positions))
	for _, p := range a.Positions {
		titles = append(titles, p.Title)
	}
	return titles
}

// ApplicationView is the candidate-facing read model of an application,
// enriched with the offer and company it was submitted to.
type ApplicationView struct {
	ID           uuid.UUID
	OfferID      uuid.UUID
	Positions    []ApplicationPosition
	Status       ApplicationStatus
	AppliedAt    time.Time
	Interview    *Interview
	CompanyName  string
	Location     string
	OfferDeleted bool
}
