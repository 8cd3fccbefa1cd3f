package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gartstein/jobboard/internal/jobboard/db"
	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApplicationRepository is the storage the application lifecycle reads from.
// Every write goes through WithTransaction.
type ApplicationRepository interface {
	UserStore
	Transactor
	GetOffer(ctx context.Context, id uuid.UUID) (*models.JobOffer, error)
	ApplicationExists(ctx context.Context, offerID uuid.UUID, email string) (bool, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*models.JobApplication, error)
	ListApplicationsByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.JobApplication, error)
	ListApplicationsByApplicant(ctx context.Context, email string) ([]*models.JobApplication, error)
	GetApplicationView(ctx context.Context, id uuid.UUID, applicantEmail string) (*models.ApplicationView, error)
	ListApplicationViews(ctx context.Context, applicantEmail string) ([]*models.ApplicationView, error)
}

// SubmitRequest is a candidate's application against positions of an offer.
type SubmitRequest struct {
	OfferID uuid.UUID
	// CompanyID is optional; when set it must name the owner of the offer.
	CompanyID      *uuid.UUID
	PositionTitles []string
}

// InterviewRequest carries the interview a company schedules.
type InterviewRequest struct {
	Date     string
	Time     string
	Location string
	Notes    string
}

// ApplicationService drives the application lifecycle and emits the
// notifications each transition produces.
type ApplicationService struct {
	repo       ApplicationRepository
	dispatcher EventDispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewApplicationService creates an ApplicationService. A nil dispatcher
// leaves notifications to the next outbox poll.
func NewApplicationService(repo ApplicationRepository, dispatcher EventDispatcher, logger *zap.Logger) *ApplicationService {
	if dispatcher == nil {
		dispatcher = nopDispatcher{}
	}
	return &ApplicationService{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger.Named("application_service"),
		now:        utcNow,
	}
}

// Submit creates a pending application of the calling candidate and notifies
// the company that owns the offer.
func (s *ApplicationService) Submit(ctx context.Context, email string, req SubmitRequest) (*models.JobApplication, error) {
	applicant, err := requireIndividual(ctx, s.repo, email)
	if err != nil {
		return nil, err
	}
	titles := normalizeTitles(req.PositionTitles)
	if len(titles) == 0 {
		return nil, fmt.Errorf("%w: at least one position must be selected", e.ErrInvalidInput)
	}

	offer, err := s.repo.GetOffer(ctx, req.OfferID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("%w: offer or positions not found", e.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load offer: %w", err)
	}
	if !offer.HasPositions(titles) {
		return nil, fmt.Errorf("%w: offer or positions not found", e.ErrNotFound)
	}
	if req.CompanyID != nil && *req.CompanyID != offer.UserID {
		return nil, fmt.Errorf("%w: company does not match the offer", e.ErrInvalidInput)
	}

	exists, err := s.repo.ApplicationExists(ctx, offer.ID, applicant.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}
	if exists {
		return nil, e.ErrAlreadyApplied
	}

	now := s.now()
	app := models.NewApplication(offer, applicant, titles, now)
	if app.ApplicantName == "" {
		app.ApplicantName = applicant.Email
	}
	notification := &models.Notification{
		ID:            uuid.New(),
		RecipientID:   offer.UserID,
		Type:          models.NotificationJobApplication,
		Message:       newApplicationMessage(app.ApplicantName),
		ApplicationID: &app.ID,
		OfferID:       &app.OfferID,
		Positions:     titles,
		ApplicantName: app.ApplicantName,
		Status:        string(app.Status),
		CreatedAt:     now,
	}

	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		if err := tx.CreateApplication(ctx, app); err != nil {
			return err
		}
		return tx.CreateNotification(ctx, notification)
	})
	if err != nil {
		if errors.Is(err, e.ErrAlreadyApplied) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to submit application: %w", err)
	}
	s.dispatcher.Wake()

	s.logger.Info("Application submitted",
		zap.String("application_id", app.ID.String()),
		zap.String("offer_id", offer.ID.String()),
		zap.Int("positions", len(titles)))
	return app, nil
}

// HasApplied reports whether the caller already applied to the offer.
// Anonymous callers have never applied.
func (s *ApplicationService) HasApplied(ctx context.Context, email string, offerID uuid.UUID) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}
	exists, err := s.repo.ApplicationExists(ctx, offerID, email)
	if err != nil {
		return false, fmt.Errorf("failed to check application: %w", err)
	}
	return exists, nil
}

// ListForActor returns the applications a company received or a candidate
// sent, newest first.
func (s *ApplicationService) ListForActor(ctx context.Context, email string) ([]*models.JobApplication, error) {
	actor, err := resolveActor(ctx, s.repo, email)
	if err != nil {
		return nil, err
	}
	if actor.IsCompany() {
		return s.repo.ListApplicationsByCompany(ctx, actor.ID)
	}
	return s.repo.ListApplicationsByApplicant(ctx, actor.Email)
}

// GetOne returns an application to its company or its applicant.
func (s *ApplicationService) GetOne(ctx context.Context, email string, id uuid.UUID) (*models.JobApplication, error) {
	actor, err := resolveActor(ctx, s.repo, email)
	if err != nil {
		return nil, err
	}
	app, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	ownsAsCompany := actor.IsCompany() && app.CompanyID == actor.ID
	if !ownsAsCompany && app.ApplicantEmail != actor.Email {
		return nil, fmt.Errorf("%w: application belongs to another account", e.ErrForbidden)
	}
	return app, nil
}

// GetCandidateView returns one of the caller's applications enriched with
// its offer. Deleted offers are flagged instead of hiding the application.
func (s *ApplicationService) GetCandidateView(ctx context.Context, email string, id uuid.UUID) (*models.ApplicationView, error) {
	applicant, err := requireIndividual(ctx, s.repo, email)
	if err != nil {
		return nil, err
	}
	return s.repo.GetApplicationView(ctx, id, applicant.Email)
}

func (s *ApplicationService) ListCandidateViews(ctx context.Context, email string) ([]*models.ApplicationView, error) {
	applicant, err := requireIndividual(ctx, s.repo, email)
	if err != nil {
		return nil, err
	}
	return s.repo.ListApplicationViews(ctx, applicant.Email)
}

// UpdateStatus forces every position of the application to status. Moving
// back to pending also cancels the interview. When notify is set the
// applicant receives an application_status notification.
func (s *ApplicationService) UpdateStatus(ctx context.Context, email string, id uuid.UUID, status models.ApplicationStatus, notify bool) (*models.JobApplication, error) {
	company, err := requireCompany(ctx, s.repo, email)
	if err != nil {
		return nil, err
	}
	switch status {
	case models.StatusPending, models.StatusAccepted, models.StatusRejected:
	case models.StatusInterviewScheduled:
		return nil, fmt.Errorf("%w: schedule an interview to set status %s", e.ErrInvalidInput, status)
	default:
		return nil, fmt.Errorf("%w: unknown status %q", e.ErrInvalidInput, status)
	}

	var updated *models.JobApplication
	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		app, err := ownedApplication(ctx, tx, company, id)
		if err != nil {
			return err
		}
		if status == models.StatusPending {
			app.ClearInterview()
		}
		app.SetAllPositions(models.PositionStatus(status))
		app.UpdatedAt = s.now()
		if err := tx.SaveApplication(ctx, app); err != nil {
			return err
		}
		if notify {
			if err := tx.CreateNotification(ctx, &models.Notification{
				ID:            uuid.New(),
				RecipientID:   app.ApplicantID,
				Type:          models.NotificationApplicationStatus,
				Message:       statusChangedMessage(app.Status, displayName(company)),
				ApplicationID: &app.ID,
				OfferID:       &app.OfferID,
				Positions:     app.PositionTitles(),
				ApplicantName: app.ApplicantName,
				Status:        string(app.Status),
				CreatedAt:     app.UpdatedAt,
			}); err != nil {
				return err
			}
		}
		updated = app
		return nil
	})
	if err != nil {
		return nil, wrapLifecycleError("update application status", err)
	}
	if notify {
		s.dispatcher.Wake()
	}

	s.logger.Info("Application status updated",
		zap.String("application_id", id.String()),
		zap.String("status", string(updated.Status)),
		zap.Bool("notify", notify))
	return updated, nil
}

// UpdatePositionStatus records the decision on a single position.
func (s *ApplicationService) UpdatePositionStatus(ctx context.Context, email string, id uuid.UUID, title string, status models.PositionStatus) (*models.JobApplication, error) {
	title = strings.TrimSpace(title)
	if title == "" || status == "" {
		return nil, fmt.Errorf("%w: position title and status are required", e.ErrInvalidInput)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown position status %q", e.ErrInvalidInput, status)
	}
	company, err := requireCompany(ctx, s.repo, email)
	if err != nil {
		return nil, err
	}

	var updated *models.JobApplication
	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		app, err := ownedApplication(ctx, tx, company, id)
		if err != nil {
			return err
		}
		if !app.SetPositionStatus(title, status) {
			return fmt.Errorf("%w: position %q is not part of the application", e.ErrNotFound, title)
		}
		app.UpdatedAt = s.now()
		if err := tx.SaveApplication(ctx, app); err != nil {
			return err
		}
		updated = app
		return nil
	})
	if err != nil {
		return nil, wrapLifecycleError("update position status", err)
	}

	s.logger.Info("Position status updated",
		zap.String("application_id", id.String()),
		zap.String("position", title),
		zap.String("position_status", string(status)),
		zap.String("status", string(updated.Status)))
	return updated, nil
}

// ScheduleInterview attaches an interview to the application and invites the
// applicant. Decided applications cannot be scheduled.
func (s *ApplicationService) ScheduleInterview(ctx context.Context, email string, id uuid.UUID, req InterviewRequest) (*models.JobApplication, error) {
	company, err := requireCompany(ctx, s.repo, email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Date) == "" {
		return nil, fmt.Errorf("%w: interview date is required", e.ErrInvalidInput)
	}

	companyName := displayName(company)
	var updated *models.JobApplication
	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		app, err := ownedApplication(ctx, tx, company, id)
		if err != nil {
			return err
		}
		if app.Decided() {
			return fmt.Errorf("%w: application is already %s", e.ErrInvalidInput, app.Status)
		}
		now := s.now()
		app.ScheduleInterview(models.Interview{
			Date:        req.Date,
			Time:        req.Time,
			Location:    req.Location,
			Notes:       req.Notes,
			ScheduledAt: now,
		})
		app.UpdatedAt = now
		if err := tx.SaveApplication(ctx, app); err != nil {
			return err
		}
		if err := tx.CreateNotification(ctx, &models.Notification{
			ID:            uuid.New(),
			RecipientID:   app.ApplicantID,
			Type:          models.NotificationInterviewScheduled,
			Message:       interviewScheduledMessage(companyName),
			ApplicationID: &app.ID,
			OfferID:       &app.OfferID,
			Positions:     app.PositionTitles(),
			ApplicantName: app.ApplicantName,
			Status:        string(app.Status),
			InterviewDetails: &models.InterviewDetails{
				Date:        req.Date,
				Time:        req.Time,
				Location:    req.Location,
				Notes:       req.Notes,
				CompanyName: companyName,
			},
			CreatedAt: now,
		}); err != nil {
			return err
		}
		updated = app
		return nil
	})
	if err != nil {
		return nil, wrapLifecycleError("schedule interview", err)
	}
	s.dispatcher.Wake()

	s.logger.Info("Interview scheduled",
		zap.String("application_id", id.String()),
		zap.String("date", req.Date))
	return updated, nil
}

// DeleteByCompany removes an application the company received together with
// its notifications.
func (s *ApplicationService) DeleteByCompany(ctx context.Context, email string, id uuid.UUID) error {
	company, err := requireCompany(ctx, s.repo, email)
	if err != nil {
		return err
	}
	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		if _, err := ownedApplication(ctx, tx, company, id); err != nil {
			return err
		}
		return purgeApplication(ctx, tx, id)
	})
	if err != nil {
		return wrapLifecycleError("delete application", err)
	}
	s.logger.Info("Application deleted by company", zap.String("application_id", id.String()))
	return nil
}

// DeleteByApplicant withdraws one of the caller's applications. Only
// applications still pending can be withdrawn.
func (s *ApplicationService) DeleteByApplicant(ctx context.Context, email string, id uuid.UUID) error {
	applicant, err := requireIndividual(ctx, s.repo, email)
	if err != nil {
		return err
	}
	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		app, err := tx.GetApplicationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if app.ApplicantEmail != applicant.Email {
			return fmt.Errorf("%w: application not found", e.ErrNotFound)
		}
		if app.Status != models.StatusPending {
			return fmt.Errorf("%w: only pending applications can be withdrawn", e.ErrForbidden)
		}
		return purgeApplication(ctx, tx, id)
	})
	if err != nil {
		return wrapLifecycleError("withdraw application", err)
	}
	s.logger.Info("Application withdrawn", zap.String("application_id", id.String()))
	return nil
}

// ownedApplication locks the application for the rest of tx and checks that
// company received it.
func ownedApplication(ctx context.Context, tx *db.Repository, company *models.User, id uuid.UUID) (*models.JobApplication, error) {
	app, err := tx.GetApplicationForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.CompanyID != company.ID {
		return nil, fmt.Errorf("%w: application belongs to another company", e.ErrForbidden)
	}
	return app, nil
}

func purgeApplication(ctx context.Context, tx *db.Repository, id uuid.UUID) error {
	if err := tx.DeleteNotificationsForApplication(ctx, id); err != nil {
		return err
	}
	return tx.DeleteApplication(ctx, id)
}

// wrapLifecycleError keeps domain errors intact and adds context to
// storage failures.
func wrapLifecycleError(op string, err error) error {
	for _, sentinel := range []error{e.ErrNotFound, e.ErrForbidden, e.ErrInvalidInput, e.ErrUnauthorized, e.ErrAlreadyApplied} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
