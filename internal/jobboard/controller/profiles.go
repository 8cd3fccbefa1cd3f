package controller

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gartstein/jobboard/internal/jobboard/db"
	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProfileRepository interface {
	UserStore
	Transactor
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, setup *models.ProfileSetup) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, url string) error
	UpdateCoverImage(ctx context.Context, id uuid.UUID, url string) error
	ListCandidates(ctx context.Context, search string, offset, limit int) ([]*models.User, int64, error)
}

const (
	defaultCandidatePageSize = 12
	maxCandidatePageSize     = 100
)

// ProfileService manages the profile of the signed-in user.
type ProfileService struct {
	repo   ProfileRepository
	logger *zap.Logger
}

func NewProfileService(repo ProfileRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		repo:   repo,
		logger: logger.Named("profile_service"),
	}
}

// Get returns the caller's profile, registering the caller on first sign-in.
func (s *ProfileService) Get(ctx context.Context, email string) (*models.User, error) {
	return resolveActor(ctx, s.repo, email)
}

// Setup completes the caller's profile. Companies must provide their
// company details.
func (s *ProfileService) Setup(ctx context.Context, email string, setup *models.ProfileSetup) (*models.User, error) {
	if setup == nil || !setup.Type.Valid() {
		return nil, fmt.Errorf("%w: user type is required", e.ErrInvalidInput)
	}
	if setup.Type == models.UserTypeCompany {
		if setup.Company == nil || strings.TrimSpace(setup.Company.CompanyName) == "" {
			return nil, fmt.Errorf("%w: company name is required", e.ErrInvalidInput)
		}
	} else {
		setup.Company = nil
	}

	user, err := resolveActor(ctx, s.repo, email)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProfile(ctx, user.ID, setup); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	s.logger.Info("Profile set up",
		zap.String("user_id", user.ID.String()),
		zap.String("user_type", string(setup.Type)))
	return s.repo.GetUser(ctx, user.ID)
}

// Delete removes the caller's account: job requests are deleted, offers
// are tombstoned so existing applications still resolve them.
func (s *ProfileService) Delete(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return e.ErrUnauthorized
	}
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return fmt.Errorf("%w: user not found", e.ErrNotFound)
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(tx *db.Repository) error {
		if err := tx.DeleteJobRequestsByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.DeleteOffersByUser(ctx, user.ID); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, user.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	s.logger.Info("Account deleted", zap.String("user_id", user.ID.String()))
	return nil
}

// GetPublic returns the public profile of a user.
func (s *ProfileService) GetPublic(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", e.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// GetCompany returns the public profile of a company account.
func (s *ProfileService) GetCompany(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.GetPublic(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsCompany() {
		return nil, fmt.Errorf("%w: user is not a company", e.ErrInvalidInput)
	}
	return user, nil
}

// ListCandidates returns a page of the candidate directory. Pages start at
// 1; the page size defaults to 12 and is capped at 100.
func (s *ProfileService) ListCandidates(ctx context.Context, q models.CandidateQuery) (*models.CandidatePage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultCandidatePageSize
	}
	if q.Limit > maxCandidatePageSize {
		q.Limit = maxCandidatePageSize
	}
	users, total, err := s.repo.ListCandidates(ctx, q.Search, (q.Page-1)*q.Limit, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return &models.CandidatePage{Candidates: users, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// UpdateAvatar records the URL of the caller's uploaded avatar.
func (s *ProfileService) UpdateAvatar(ctx context.Context, email, imageURL string) (*models.User, error) {
	return s.updateImage(ctx, email, imageURL, "avatar", s.repo.UpdateAvatar)
}

// UpdateCover records the URL of the caller's uploaded cover image.
func (s *ProfileService) UpdateCover(ctx context.Context, email, imageURL string) (*models.User, error) {
	return s.updateImage(ctx, email, imageURL, "cover", s.repo.UpdateCoverImage)
}

func (s *ProfileService) updateImage(ctx context.Context, email, imageURL, kind string,
	store func(context.Context, uuid.UUID, string) error) (*models.User, error) {
	imageURL = strings.TrimSpace(imageURL)
	if !isImageURL(imageURL) {
		return nil, fmt.Errorf("%w: %s must be an absolute http(s) URL", e.ErrInvalidInput, kind)
	}
	user, err := resolveActor(ctx, s.repo, email)
	if err != nil {
		return nil, err
	}
	if err := store(ctx, user.ID, imageURL); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", kind, err)
	}
	s.logger.Info("Profile image updated",
		zap.String("user_id", user.ID.String()),
		zap.String("kind", kind))
	return s.repo.GetUser(ctx, user.ID)
}

func isImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}
