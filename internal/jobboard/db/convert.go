package db

import (
	"encoding/json"
	"fmt"

	dbm "github.com/gartstein/jobboard/internal/jobboard/db/models"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"gorm.io/datatypes"
)

func marshalJSON(v interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// unmarshalJSON decodes raw into out and reports whether a value was present.
func unmarshalJSON(raw datatypes.JSON, out interface{}) (bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func userToRecord(u *models.User) (*dbm.User, error) {
	rec := &dbm.User{
		ID:                u.ID,
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
	if u.Company != nil {
		raw, err := marshalJSON(companyToRecord(u.Company))
		if err != nil {
			return nil, fmt.Errorf("failed to encode company details: %w", err)
		}
		rec.CompanyDetails = raw
	}
	return rec, nil
}

func companyToRecord(c *models.CompanyDetails) dbm.CompanyDetails {
	contacts := make([]dbm.Contact, 0, len(c.Contacts))
	for _, ct := range c.Contacts {
		contacts = append(contacts, dbm.Contact{Email: ct.Email, Phone: ct.Phone})
	}
	return dbm.CompanyDetails{
		CompanyName:  c.CompanyName,
		About:        c.About,
		Headquarters: c.Headquarters,
		Contacts:     contacts,
	}
}

func companyFromJSON(raw datatypes.JSON) (*models.CompanyDetails, error) {
	var rec dbm.CompanyDetails
	ok, err := unmarshalJSON(raw, &rec)
	if err != nil || !ok {
		return nil, err
	}
	contacts := make([]models.Contact, 0, len(rec.Contacts))
	for _, ct := range rec.Contacts {
		contacts = append(contacts, models.Contact{Email: ct.Email, Phone: ct.Phone})
	}
	return &models.CompanyDetails{
		CompanyName:  rec.CompanyName,
		About:        rec.About,
		Headquarters: rec.Headquarters,
		Contacts:     contacts,
	}, nil
}

func userFromRecord(rec *dbm.User) (*models.User, error) {
	company, err := companyFromJSON(rec.CompanyDetails)
	if err != nil {
		return nil, fmt.Errorf("failed to decode company details: %w", err)
	}
	return &models.User{
		ID:              rec.ID,
		Email:           rec.Email,
		Type:            models.UserType(rec.UserType),
		ProfileComplete: rec.IsProfileComplete,
		FirstName:       rec.FirstName,
		LastName:        rec.LastName,
		Phone:           rec.Phone,
		BirthDate:       rec.BirthDate,
		Avatar:          rec.Avatar,
		CoverImage:      rec.CoverImage,
		Company:         company,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}, nil
}

func offerToRecord(o *models.JobOffer) *dbm.JobOffer {
	positions := make(datatypes.JSONSlice[dbm.OfferPosition], 0, len(o.Positions))
	for _, p := range o.Positions {
		positions = append(positions, dbm.OfferPosition{
			Title:              p.Title,
			RequiredExperience: p.RequiredExperience,
			AvailablePositions: p.AvailablePositions,
			Education: dbm.OfferEducation{
				Level:   string(p.Education.Level),
				Years:   p.Education.Years,
				Details: p.Education.Details,
			},
			Salary: p.Salary,
		})
	}
	return &dbm.JobOffer{
		ID:           o.ID,
		UserID:       o.UserID,
		CompanyName:  o.CompanyName,
		State:        o.Location.State,
		Municipality: o.Location.Municipality,
		Address:      o.Location.Address,
		Description:  o.Description,
		Positions:    positions,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func offerFromRecord(rec *dbm.JobOffer) *models.JobOffer {
	positions := make([]models.Position, 0, len(rec.Positions))
	for _, p := range rec.Positions {
		positions = append(positions, models.Position{
			Title:              p.Title,
			RequiredExperience: p.RequiredExperience,
			AvailablePositions: p.AvailablePositions,
			Education: models.Education{
				Level:   models.EducationLevel(p.Education.Level),
				Years:   p.Education.Years,
				Details: p.Education.Details,
			},
			Salary: p.Salary,
		})
	}
	return &models.JobOffer{
		ID:          rec.ID,
		UserID:      rec.UserID,
		CompanyName: rec.CompanyName,
		Location: models.Location{
			State:        rec.State,
			Municipality: rec.Municipality,
			Address:      rec.Address,
		},
		Description: rec.Description,
		Positions:   positions,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
		Deleted:     rec.DeletedAt.Valid,
	}
}

func requestToRecord(r *models.JobRequest) *dbm.JobRequest {
	return &dbm.JobRequest{
		ID:                 r.ID,
		UserID:             r.UserID,
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		BirthDate:          r.BirthDate,
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

func requestFromRecord(rec *dbm.JobRequest) *models.JobRequest {
	return &models.JobRequest{
		ID:                 rec.ID,
		UserID:             rec.UserID,
		FirstName:          rec.FirstName,
		LastName:           rec.LastName,
		BirthDate:          rec.BirthDate,
		State:              rec.State,
		Municipality:       rec.Municipality,
		Phone:              rec.Phone,
		EducationLevel:     rec.EducationLevel,
		AcademicYears:      rec.AcademicYears,
		Diploma:            rec.Diploma,
		Specialization:     rec.Specialization,
		AboutMe:            rec.AboutMe,
		HasExperience:      rec.HasExperience,
		ExperienceDuration: rec.ExperienceDuration,
		PreviousPosition:   rec.PreviousPosition,
		CreatedAt:          rec.CreatedAt,
	}
}

func applicationPositionsToRecord(in []models.ApplicationPosition) datatypes.JSONSlice[dbm.ApplicationPosition] {
	out := make(datatypes.JSONSlice[dbm.ApplicationPosition], 0, len(in))
	for _, p := range in {
		out = append(out, dbm.ApplicationPosition{Title: p.Title, Status: string(p.Status)})
	}
	return out
}

func applicationPositionsFromRecord(in datatypes.JSONSlice[dbm.ApplicationPosition]) []models.ApplicationPosition {
	out := make([]models.ApplicationPosition, 0, len(in))
	for _, p := range in {
		out = append(out, models.ApplicationPosition{Title: p.Title, Status: models.PositionStatus(p.Status)})
	}
	return out
}

func interviewToJSON(iv *models.Interview) (datatypes.JSON, error) {
	if iv == nil {
		return nil, nil
	}
	return marshalJSON(dbm.Interview{
		Date:        iv.Date,
		Time:        iv.Time,
		Location:    iv.Location,
		Notes:       iv.Notes,
		ScheduledAt: iv.ScheduledAt,
	})
}

func interviewFromJSON(raw datatypes.JSON) (*models.Interview, error) {
	var rec dbm.Interview
	ok, err := unmarshalJSON(raw, &rec)
	if err != nil || !ok {
		return nil, err
	}
	return &models.Interview{
		Date:        rec.Date,
		Time:        rec.Time,
		Location:    rec.Location,
		Notes:       rec.Notes,
		ScheduledAt: rec.ScheduledAt,
	}, nil
}

func applicationToRecord(a *models.JobApplication) (*dbm.JobApplication, error) {
	interview, err := interviewToJSON(a.Interview)
	if err != nil {
		return nil, fmt.Errorf("failed to encode interview: %w", err)
	}
	return &dbm.JobApplication{
		ID:             a.ID,
		OfferID:        a.OfferID,
		CompanyID:      a.CompanyID,
		ApplicantID:    a.ApplicantID,
		ApplicantEmail: a.ApplicantEmail,
		ApplicantName:  a.ApplicantName,
		Positions:      applicationPositionsToRecord(a.Positions),
		Status:         string(a.Status),
		Interview:      interview,
		AppliedAt:      a.AppliedAt,
		UpdatedAt:      a.UpdatedAt,
	}, nil
}

func applicationFromRecord(rec *dbm.JobApplication) (*models.JobApplication, error) {
	interview, err := interviewFromJSON(rec.Interview)
	if err != nil {
		return nil, fmt.Errorf("failed to decode interview: %w", err)
	}
	return &models.JobApplication{
		ID:             rec.ID,
		OfferID:        rec.OfferID,
		CompanyID:      rec.CompanyID,
		ApplicantID:    rec.ApplicantID,
		ApplicantEmail: rec.ApplicantEmail,
		ApplicantName:  rec.ApplicantName,
		Positions:      applicationPositionsFromRecord(rec.Positions),
		Status:         models.ApplicationStatus(rec.Status),
		Interview:      interview,
		AppliedAt:      rec.AppliedAt,
		UpdatedAt:      rec.UpdatedAt,
	}, nil
}

func notificationToRecord(n *models.Notification) (*dbm.Notification, error) {
	rec := &dbm.Notification{
		ID:            n.ID,
		RecipientID:   n.RecipientID,
		Type:          string(n.Type),
		Message:       n.Message,
		ApplicationID: n.ApplicationID,
		OfferID:       n.OfferID,
		Positions:     datatypes.JSONSlice[string](n.Positions),
		ApplicantName: n.ApplicantName,
		Status:        n.Status,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt,
		ReadAt:        n.ReadAt,
		DispatchedAt:  n.DispatchedAt,
	}
	if n.InterviewDetails != nil {
		raw, err := marshalJSON(dbm.InterviewDetails{
			Date:        n.InterviewDetails.Date,
			Time:        n.InterviewDetails.Time,
			Location:    n.InterviewDetails.Location,
			Notes:       n.InterviewDetails.Notes,
			CompanyName: n.InterviewDetails.CompanyName,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode interview details: %w", err)
		}
		rec.InterviewDetails = raw
	}
	return rec, nil
}

func notificationFromRecord(rec *dbm.Notification) (*models.Notification, error) {
	n := &models.Notification{
		ID:            rec.ID,
		RecipientID:   rec.RecipientID,
		Type:          models.NotificationType(rec.Type),
		Message:       rec.Message,
		ApplicationID: rec.ApplicationID,
		OfferID:       rec.OfferID,
		Positions:     []string(rec.Positions),
		ApplicantName: rec.ApplicantName,
		Status:        rec.Status,
		IsRead:        rec.IsRead,
		CreatedAt:     rec.CreatedAt,
		ReadAt:        rec.ReadAt,
		DispatchedAt:  rec.DispatchedAt,
	}
	var details dbm.InterviewDetails
	ok, err := unmarshalJSON(rec.InterviewDetails, &details)
	if err != nil {
		return nil, fmt.Errorf("failed to decode interview details: %w", err)
	}
	if ok {
		n.InterviewDetails = &models.InterviewDetails{
			Date:        details.Date,
			Time:        details.Time,
			Location:    details.Location,
			Notes:       details.Notes,
			CompanyName: details.CompanyName,
		}
	}
	return n, nil
}
