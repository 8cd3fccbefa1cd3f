package handlers

import (
	"time"

	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
)

// JSON shapes of the HTTP API. Field names follow the camelCase convention
// of the web client.

type ContactDTO struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type CompanyDetailsDTO struct {
	CompanyName  string       `json:"companyName"`
	About        string       `json:"about"`
	Headquarters string       `json:"headquarters"`
	Contacts     []ContactDTO `json:"contacts"`
}

type UserDTO struct {
	ID                string             `json:"id"`
	Email             string             `json:"email"`
	UserType          string             `json:"userType"`
	IsProfileComplete bool               `json:"isProfileComplete"`
	FirstName         string             `json:"firstName"`
	LastName          string             `json:"lastName"`
	Phone             string             `json:"phone"`
	BirthDate         *time.Time         `json:"birthDate,omitempty"`
	Avatar            string             `json:"avatar"`
	CoverImage        string             `json:"coverImage"`
	CompanyDetails    *CompanyDetailsDTO `json:"companyDetails,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

type ProfileSetupRequest struct {
	UserType       string             `json:"userType"`
	FirstName      *string            `json:"firstName"`
	LastName       *string            `json:"lastName"`
	Phone          *string            `json:"phone"`
	BirthDate      *time.Time         `json:"birthDate"`
	CompanyDetails *CompanyDetailsDTO `json:"companyDetails"`
}

type LocationDTO struct {
	State        string `json:"state"`
	Municipality string `json:"municipality"`
	Address      string `json:"address"`
}

type EducationDTO struct {
	Level   string `json:"level"`
	Years   string `json:"years"`
	Details string `json:"details"`
}

type PositionDTO struct {
	Title              string       `json:"title"`
	RequiredExperience string       `json:"requiredExperience"`
	AvailablePositions int          `json:"availablePositions"`
	Education          EducationDTO `json:"education"`
	Salary             *string      `json:"salary,omitempty"`
}

type OfferDTO struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	CompanyName     string        `json:"companyName"`
	CompanyLocation LocationDTO   `json:"companyLocation"`
	Description     string        `json:"description"`
	Positions       []PositionDTO `json:"positions"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

type JobRequestDTO struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"userId"`
	FirstName          string     `json:"firstName"`
	LastName           string     `json:"lastName"`
	BirthDate          *time.Time `json:"birthDate,omitempty"`
	Age                *int       `json:"age,omitempty"`
	State              string     `json:"state"`
	Municipality       string     `json:"municipality"`
	Phone              string     `json:"phone"`
	EducationLevel     string     `json:"educationLevel"`
	AcademicYears      string     `json:"academicYears"`
	Diploma            string     `json:"diploma"`
	Specialization     string     `json:"specialization"`
	AboutMe            string     `json:"aboutMe"`
	HasExperience      bool       `json:"hasExperience"`
	ExperienceDuration string     `json:"experienceDuration"`
	PreviousPosition   string     `json:"previousPosition"`
	CreatedAt          time.Time  `json:"createdAt"`
}

type ApplicationPositionDTO struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

type InterviewDTO struct {
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Location    string     `json:"location"`
	Notes       string     `json:"notes"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
}

type ApplicationDTO struct {
	ID             string                   `json:"id"`
	OfferID        string                   `json:"offerId"`
	CompanyID      string                   `json:"companyId"`
	ApplicantID    string                   `json:"applicantId"`
	ApplicantEmail string                   `json:"applicantEmail"`
	ApplicantName  string                   `json:"applicantName"`
	Positions      []ApplicationPositionDTO `json:"positions"`
	Status         string                   `json:"status"`
	AppliedAt      time.Time                `json:"appliedAt"`
	UpdatedAt      time.Time                `json:"updatedAt"`
	Interview      *InterviewDTO            `json:"interview,omitempty"`
}

type OfferDetailsDTO struct {
	CompanyName string `json:"companyName"`
	Location    string `json:"location"`
}

type ApplicationViewDTO struct {
	ID           string                   `json:"id"`
	OfferID      string                   `json:"offerId"`
	Positions    []ApplicationPositionDTO `json:"positions"`
	Status       string                   `json:"status"`
	AppliedAt    time.Time                `json:"appliedAt"`
	Interview    *InterviewDTO            `json:"interview,omitempty"`
	OfferDetails OfferDetailsDTO          `json:"offerDetails"`
	OfferDeleted bool                     `json:"offerDeleted"`
}

type InterviewDetailsDTO struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Notes       string `json:"notes"`
	CompanyName string `json:"companyName"`
}

type NotificationDTO struct {
	ID               string               `json:"id"`
	RecipientID      string               `json:"recipientId"`
	Type             string               `json:"type"`
	Message          string               `json:"message"`
	ApplicationID    *string              `json:"applicationId,omitempty"`
	OfferID          *string              `json:"offerId,omitempty"`
	Positions        []string             `json:"positions"`
	ApplicantName    string               `json:"applicantName,omitempty"`
	Status           string               `json:"status,omitempty"`
	InterviewDetails *InterviewDetailsDTO `json:"interviewDetails,omitempty"`
	IsRead           bool                 `json:"isRead"`
	CreatedAt        time.Time            `json:"createdAt"`
	ReadAt           *time.Time           `json:"readAt"`
}

type SubmitApplicationRequest struct {
	CompanyID      string   `json:"companyId"`
	PositionTitles []string `json:"positionTitles"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type PositionStatusRequest struct {
	PositionTitle string `json:"positionTitle"`
	Status        string `json:"status"`
}

type InterviewRequestDTO struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

type CreateNotificationRequestDTO struct {
	RecipientID   string               `json:"recipientId"`
	Type          string               `json:"type"`
	Message       string               `json:"message"`
	ApplicationID string               `json:"applicationId"`
	OfferID       string               `json:"offerId"`
	Positions     []string             `json:"positions"`
	CompanyName   string               `json:"companyName"`
	Interview     *InterviewDetailsDTO `json:"interview"`
}

type HasAppliedResponse struct {
	HasApplied bool `json:"hasApplied"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type UserTypeResponse struct {
	UserType string `json:"userType"`
}

// CompanyProfileDTO is the public part of a company account.
type CompanyProfileDTO struct {
	ID             string             `json:"id"`
	Email          string             `json:"email"`
	UserType       string             `json:"userType"`
	Avatar         string             `json:"avatar"`
	CompanyName    string             `json:"companyName"`
	CompanyDetails *CompanyDetailsDTO `json:"companyDetails,omitempty"`
}

type CompanyOffersResponse struct {
	Profile *CompanyProfileDTO `json:"profile"`
	Offers  []*OfferDTO        `json:"offers"`
}

type CandidateDTO struct {
	ID        string     `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Avatar    string     `json:"avatar"`
	Phone     string     `json:"phone"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Age       *int       `json:"age,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type PaginationDTO struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

type CandidatesResponse struct {
	Candidates []*CandidateDTO `json:"candidates"`
	Pagination PaginationDTO   `json:"pagination"`
}

// ImageRequest carries the URL of an image uploaded by the client.
type ImageRequest struct {
	URL string `json:"url"`
}

func userToDTO(u *models.User) *UserDTO {
	dto := &UserDTO{
		ID:                u.ID.String(),
		Email:             u.Email,
		UserType:          string(u.Type),
		IsProfileComplete: u.ProfileComplete,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Phone:             u.Phone,
		BirthDate:         u.BirthDate,
		Avatar:            u.Avatar,
		CoverImage:        u.CoverImage,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
	dto.CompanyDetails = companyDetailsToDTO(u.Company)
	return dto
}

func companyDetailsToDTO(c *models.CompanyDetails) *CompanyDetailsDTO {
	if c == nil {
		return nil
	}
	contacts := make([]ContactDTO, 0, len(c.Contacts))
	for _, ct := range c.Contacts {
		contacts = append(contacts, ContactDTO{Email: ct.Email, Phone: ct.Phone})
	}
	return &CompanyDetailsDTO{
		CompanyName:  c.CompanyName,
		About:        c.About,
		Headquarters: c.Headquarters,
		Contacts:     contacts,
	}
}

func companyProfileToDTO(u *models.User) *CompanyProfileDTO {
	return &CompanyProfileDTO{
		ID:             u.ID.String(),
		Email:          u.Email,
		UserType:       string(u.Type),
		Avatar:         u.Avatar,
		CompanyName:    u.CompanyName(),
		CompanyDetails: companyDetailsToDTO(u.Company),
	}
}

func candidatesToDTO(page *models.CandidatePage, now time.Time) *CandidatesResponse {
	candidates := mapSlice(page.Candidates, func(u *models.User) *CandidateDTO {
		return &CandidateDTO{
			ID:        u.ID.String(),
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Avatar:    u.Avatar,
			Phone:     u.Phone,
			BirthDate: u.BirthDate,
			Age:       u.Age(now),
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		}
	})
	return &CandidatesResponse{
		Candidates: candidates,
		Pagination: PaginationDTO{
			Total: page.Total,
			Page:  page.Page,
			Limit: page.Limit,
			Pages: page.Pages(),
		},
	}
}

func profileSetupFromDTO(req *ProfileSetupRequest) *models.ProfileSetup {
	setup := &models.ProfileSetup{
		Type:      models.UserType(req.UserType),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		BirthDate: req.BirthDate,
	}
	if c := req.CompanyDetails; c != nil {
		contacts := make([]models.Contact, 0, len(c.Contacts))
		for _, ct := range c.Contacts {
			contacts = append(contacts, models.Contact{Email: ct.Email, Phone: ct.Phone})
		}
		setup.Company = &models.CompanyDetails{
			CompanyName:  c.CompanyName,
			About:        c.About,
			Headquarters: c.Headquarters,
			Contacts:     contacts,
		}
	}
	return setup
}

func offerToDTO(o *models.JobOffer) *OfferDTO {
	positions := make([]PositionDTO, 0, len(o.Positions))
	for _, p := range o.Positions {
		positions = append(positions, PositionDTO{
			Title:              p.Title,
			RequiredExperience: p.RequiredExperience,
			AvailablePositions: p.AvailablePositions,
			Education: EducationDTO{
				Level:   string(p.Education.Level),
				Years:   p.Education.Years,
				Details: p.Education.Details,
			},
			Salary: p.Salary,
		})
	}
	return &OfferDTO{
		ID:          o.ID.String(),
		UserID:      o.UserID.String(),
		CompanyName: o.CompanyName,
		CompanyLocation: LocationDTO{
			State:        o.Location.State,
			Municipality: o.Location.Municipality,
			Address:      o.Location.Address,
		},
		Description: o.Description,
		Positions:   positions,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func offerFromDTO(dto *OfferDTO) *models.JobOffer {
	positions := make([]models.Position, 0, len(dto.Positions))
	for _, p := range dto.Positions {
		positions = append(positions, models.Position{
			Title:              p.Title,
			RequiredExperience: p.RequiredExperience,
			AvailablePositions: p.AvailablePositions,
			Education: models.Education{
				Level: models.EducationLevel(p.Education.Level),
				Years: p.Education.Years,
			},
			Salary: p.Salary,
		})
	}
	return &models.JobOffer{
		CompanyName: dto.CompanyName,
		Location: models.Location{
			State:        dto.CompanyLocation.State,
			Municipality: dto.CompanyLocation.Municipality,
			Address:      dto.CompanyLocation.Address,
		},
		Description: dto.Description,
		Positions:   positions,
	}
}

func requestToDTO(r *models.JobRequest, now time.Time) *JobRequestDTO {
	return &JobRequestDTO{
		ID:                 r.ID.String(),
		UserID:             r.UserID.String(),
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		BirthDate:          r.BirthDate,
		Age:                r.Age(now),
		State:              r.State,
		Municipality:       r.Municipality,
		Phone:              r.Phone,
		EducationLevel:     r.EducationLevel,
		AcademicYears:      r.AcademicYears,
		Diploma:            r.Diploma,
		Specialization:     r.Specialization,
		AboutMe:            r.AboutMe,
		HasExperience:      r.HasExperience,
		ExperienceDuration: r.ExperienceDuration,
		PreviousPosition:   r.PreviousPosition,
		CreatedAt:          r.CreatedAt,
	}
}

func requestFromDTO(dto *JobRequestDTO) *models.JobRequest {
	return &models.JobRequest{
		FirstName:          dto.FirstName,
		LastName:           dto.LastName,
		BirthDate:          dto.BirthDate,
		State:              dto.State,
		Municipality:       dto.Municipality,
		Phone:              dto.Phone,
		EducationLevel:     dto.EducationLevel,
		AcademicYears:      dto.AcademicYears,
		Diploma:            dto.Diploma,
		Specialization:     dto.Specialization,
		AboutMe:            dto.AboutMe,
		HasExperience:      dto.HasExperience,
		ExperienceDuration: dto.ExperienceDuration,
		PreviousPosition:   dto.PreviousPosition,
	}
}

func positionsToDTO(in []models.ApplicationPosition) []ApplicationPositionDTO {
	out := make([]ApplicationPositionDTO, 0, len(in))
	for _, p := range in {
		out = append(out, ApplicationPositionDTO{Title: p.Title, Status: string(p.Status)})
	}
	return out
}

func interviewToDTO(iv *models.Interview) *InterviewDTO {
	if iv == nil {
		return nil
	}
	dto := &InterviewDTO{
		Date:     iv.Date,
		Time:     iv.Time,
		Location: iv.Location,
		Notes:    iv.Notes,
	}
	if !iv.ScheduledAt.IsZero() {
		scheduledAt := iv.ScheduledAt
		dto.ScheduledAt = &scheduledAt
	}
	return dto
}

func applicationToDTO(a *models.JobApplication) *ApplicationDTO {
	return &ApplicationDTO{
		ID:             a.ID.String(),
		OfferID:        a.OfferID.String(),
		CompanyID:      a.CompanyID.String(),
		ApplicantID:    a.ApplicantID.String(),
		ApplicantEmail: a.ApplicantEmail,
		ApplicantName:  a.ApplicantName,
		Positions:      positionsToDTO(a.Positions),
		Status:         string(a.Status),
		AppliedAt:      a.AppliedAt,
		UpdatedAt:      a.UpdatedAt,
		Interview:      interviewToDTO(a.Interview),
	}
}

func applicationViewToDTO(v *models.ApplicationView) *ApplicationViewDTO {
	return &ApplicationViewDTO{
		ID:        v.ID.String(),
		OfferID:   v.OfferID.String(),
		Positions: positionsToDTO(v.Positions),
		Status:    string(v.Status),
		AppliedAt: v.AppliedAt,
		Interview: interviewToDTO(v.Interview),
		OfferDetails: OfferDetailsDTO{
			CompanyName: v.CompanyName,
			Location:    v.Location,
		},
		OfferDeleted: v.OfferDeleted,
	}
}

func notificationToDTO(n *models.Notification) *NotificationDTO {
	dto := &NotificationDTO{
		ID:            n.ID.String(),
		RecipientID:   n.RecipientID.String(),
		Type:          string(n.Type),
		Message:       n.Message,
		ApplicationID: uuidString(n.ApplicationID),
		OfferID:       uuidString(n.OfferID),
		Positions:     n.Positions,
		ApplicantName: n.ApplicantName,
		Status:        n.Status,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt,
		ReadAt:        n.ReadAt,
	}
	if dto.Positions == nil {
		dto.Positions = []string{}
	}
	if d := n.InterviewDetails; d != nil {
		dto.InterviewDetails = &InterviewDetailsDTO{
			Date:        d.Date,
			Time:        d.Time,
			Location:    d.Location,
			Notes:       d.Notes,
			CompanyName: d.CompanyName,
		}
	}
	return dto
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// mapSlice converts every element of in with fn.
func mapSlice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
