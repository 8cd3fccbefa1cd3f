package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EducationLevel is the minimum schooling a position asks for.
type EducationLevel string

const (
	EducationMiddle     EducationLevel = "moyen"
	EducationSecondary  EducationLevel = "secondaire"
	EducationUniversity EducationLevel = "universitaire"
	EducationNone       EducationLevel = "sans_condition"
)

// Education describes the education requirement of a position.
type Education struct {
	Level EducationLevel
	Years string
	// Details is the human readable label derived from Level and Years.
	Details string
}

// EducationDetails renders the label shown for an education requirement.
func EducationDetails(level EducationLevel, years string) string {
	switch level {
	case EducationMiddle:
		return fmt.Sprintf("%sème année moyenne", years)
	case EducationSecondary:
		return fmt.Sprintf("%sème année secondaire", years)
	case EducationUniversity:
		return fmt.Sprintf("%sème année universitaire", years)
	case EducationNone:
		return "Aucune condition requise"
	default:
		return ""
	}
}

// Position is a single role within a job offer.
type Position struct {
	Title              string
	RequiredExperience string
	AvailablePositions int
	Education          Education
	Salary             *string
}

// Location is where a company or candidate is based.
type Location struct {
	State        string
	Municipality string
	Address      string
}

// String formats the location for display.
func (l Location) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Address, l.Municipality, l.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// JobOffer is a company's posting with one or more positions.
type JobOffer struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	CompanyName string
	Location    Location
	Description string
	Positions   []Position
	CreatedAt   time.Time
	UpdatedAt   time.Time
	// Deleted is set when the offer was removed by its owner. Deleted offers
	// stay readable through the applications that reference them.
	Deleted bool
}

// HasPositions reports whether every title names a position of the offer.
func (o *JobOffer) HasPositions(titles []string) bool {
	known := make(map[string]struct{}, len(o.Positions))
	for _, p := range o.Positions {
		known[p.Title] = struct{}{}
	}
	for _, t := range titles {
		if _, ok := known[t]; !ok {
			return false
		}
	}
	return true
}

// JobRequest is a candidate's public "looking for work" post.
type JobRequest struct {
	ID                 uuid.UUID
	UserID             uuid.UUID
	FirstName          string
	LastName           string
	BirthDate          *time.Time
	State              string
	Municipality       string
	Phone              string
	EducationLevel     string
	AcademicYears      string
	Diploma            string
	Specialization     string
	AboutMe            string
	HasExperience      bool
	ExperienceDuration string
	PreviousPosition   string
	CreatedAt          time.Time
}

// Age returns the age in full years at now, or nil without a birth date.
func (r *JobRequest) Age(now time.Time) *int {
	return ageAt(r.BirthDate, now)
}

func ageAt(birth *time.Time, now time.Time) *int {
	if birth == nil {
		return nil
	}
	b := *birth
	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	return &age
}
