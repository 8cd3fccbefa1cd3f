// Package models defines the core domain models of the job board:
// users and their profiles, job offers and requests, applications and
// the notifications they produce.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserType is the role a user picks during profile setup.
type UserType string

const (
	// UserTypeUnset marks a user that signed in but has not completed setup.
	UserTypeUnset      UserType = ""
	UserTypeIndividual UserType = "individual"
	UserTypeCompany    UserType = "company"
)

// Valid reports whether t is a role that can be chosen at setup.
func (t UserType) Valid() bool {
	return t == UserTypeIndividual || t == UserTypeCompany
}

// Contact is a company contact entry.
type Contact struct {
	Email string
	Phone string
}

// CompanyDetails holds the profile of a company account.
type CompanyDetails struct {
	CompanyName  string
	About        string
	Headquarters string
	Contacts     []Contact
}

// User defines the identity record of an authenticated principal.
type User struct {
	// ID is the unique identifier of the user.
	ID uuid.UUID
	// Email is the identity key issued by the identity provider.
	Email string
	// Type is the role of the user; empty until the profile is set up.
	Type UserType
	// ProfileComplete is set once profile setup succeeded.
	ProfileComplete bool
	FirstName       string
	LastName        string
	Phone           string
	BirthDate       *time.Time
	Avatar          string
	CoverImage      string
	// Company is only set for company accounts.
	Company   *CompanyDetails
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCompany reports whether the user acts as a company.
func (u *User) IsCompany() bool { return u.Type == UserTypeCompany }

// IsIndividual reports whether the user acts as a candidate.
func (u *User) IsIndividual() bool { return u.Type == UserTypeIndividual }

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// CompanyName returns the company display name, or an empty string for
// accounts without company details.
func (u *User) CompanyName() string {
	if u.Company == nil {
		return ""
	}
	return u.Company.CompanyName
}

// Age returns the age in full years at now, or nil without a birth date.
func (u *User) Age(now time.Time) *int {
	return ageAt(u.BirthDate, now)
}

// CandidateQuery selects a page of the candidate directory. Search matches
// first or last name, case-insensitively.
type CandidateQuery struct {
	Page   int
	Limit  int
	Search string
}

// CandidatePage is one page of the candidate directory.
type CandidatePage struct {
	Candidates []*User
	Total      int64
	Page       int
	Limit      int
}

// Pages is the number of pages needed to list Total candidates.
func (p *CandidatePage) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

// ProfileSetup carries the fields submitted when a user completes setup.
// Pointer types are used to allow partial updates.
type ProfileSetup struct {
	Type      UserType
	FirstName *string
	LastName  *string
	Phone     *string
	BirthDate *time.Time
	Company   *CompanyDetails
}
