// Package models contains the persisted records of the job board,
// configured to work using GORM as the ORM. Nested documents (positions,
// interview, company details) are stored as JSON columns.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is a row of the users table.
type User struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email             string    `gorm:"size:320;uniqueIndex;not null"`
	UserType          string    `gorm:"size:16;index"`
	IsProfileComplete bool
	FirstName         string `gorm:"size:100"`
	LastName          string `gorm:"size:100"`
	Phone             string `gorm:"size:32"`
	BirthDate         *time.Time
	Avatar            string
	CoverImage        string
	// CompanyDetails is NULL for individual accounts.
	CompanyDetails datatypes.JSON
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CompanyDetails is the JSON document stored in users.company_details.
type CompanyDetails struct {
	CompanyName  string    `json:"companyName"`
	About        string    `json:"about"`
	Headquarters string    `json:"headquarters"`
	Contacts     []Contact `json:"contacts"`
}

// Contact is one entry of CompanyDetails.Contacts.
type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OfferPosition is one element of job_offers.positions.
type OfferPosition struct {
	Title              string         `json:"title"`
	RequiredExperience string         `json:"requiredExperience"`
	AvailablePositions int            `json:"availablePositions"`
	Education          OfferEducation `json:"education"`
	Salary             *string        `json:"salary,omitempty"`
}

// OfferEducation is the education requirement of an OfferPosition.
type OfferEducation struct {
	Level   string `json:"level"`
	Years   string `json:"years"`
	Details string `json:"details"`
}

// JobOffer is a row of the job_offers table. Offers are soft deleted so that
// applications keep resolving the offer they were submitted to.
type JobOffer struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;index;not null"`
	CompanyName  string    `gorm:"size:200"`
	State        string    `gorm:"size:100"`
	Municipality string    `gorm:"size:100"`
	Address      string    `gorm:"size:300"`
	Description  string    `gorm:"type:text"`
	Positions    datatypes.JSONSlice[OfferPosition]
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// JobRequest is a row of the job_requests table.
type JobRequest struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID `gorm:"type:uuid;index;not null"`
	FirstName          string    `gorm:"size:100"`
	LastName           string    `gorm:"size:100"`
	BirthDate          *time.Time
	State              string `gorm:"size:100"`
	Municipality       string `gorm:"size:100"`
	Phone              string `gorm:"size:32"`
	EducationLevel     string `gorm:"size:50"`
	AcademicYears      string `gorm:"size:20"`
	Diploma            string `gorm:"size:100"`
	Specialization     string `gorm:"size:200"`
	AboutMe            string `gorm:"type:text"`
	HasExperience      bool
	ExperienceDuration string `gorm:"size:50"`
	PreviousPosition   string `gorm:"size:200"`
	CreatedAt          time.Time
}

// ApplicationPosition is one element of job_applications.positions.
type ApplicationPosition struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

// Interview is the JSON document stored in job_applications.interview.
type Interview struct {
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Notes       string    `json:"notes"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

// JobApplication is a row of the job_applications table.
// The (offer_id, applicant_email) pair is unique.
type JobApplication struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OfferID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_application_offer_applicant"`
	CompanyID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ApplicantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ApplicantEmail string    `gorm:"size:320;not null;uniqueIndex:idx_application_offer_applicant"`
	ApplicantName  string    `gorm:"size:200"`
	Positions      datatypes.JSONSlice[ApplicationPosition]
	Status         string `gorm:"size:32;not null;index"`
	Interview      datatypes.JSON
	AppliedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time
}

// InterviewDetails is the JSON document stored in notifications.interview_details.
type InterviewDetails struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Notes       string `json:"notes"`
	CompanyName string `json:"companyName"`
}

// Notification is a row of the notifications table. Rows with a NULL
// dispatched_at form the outbox read by the push dispatcher.
type Notification struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RecipientID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_notification_recipient_created"`
	Type             string     `gorm:"size:32;not null"`
	Message          string     `gorm:"type:text"`
	ApplicationID    *uuid.UUID `gorm:"type:uuid;index"`
	OfferID          *uuid.UUID `gorm:"type:uuid"`
	Positions        datatypes.JSONSlice[string]
	ApplicantName    string `gorm:"size:200"`
	Status           string `gorm:"size:32"`
	InterviewDetails datatypes.JSON
	IsRead           bool
	CreatedAt        time.Time `gorm:"index:idx_notification_recipient_created"`
	ReadAt           *time.Time
	DispatchedAt     *time.Time `gorm:"index"`
}

// All lists every record migrated by the repository.
func All() []interface{} {
	return []interface{}{
		&User{},
		&JobOffer{},
		&JobRequest{},
		&JobApplication{},
		&Notification{},
	}
}
