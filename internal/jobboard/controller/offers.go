package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OfferRepository interface {
	UserStore
	CreateOffer(ctx context.Context, offer *models.JobOffer) error
	GetOffer(ctx context.Context, id uuid.UUID) (*models.JobOffer, error)
	ListOffers(ctx context.Context, ownerID *uuid.UUID) ([]*models.JobOffer, error)
	UpdateOffer(ctx context.Context, offer *models.JobOffer) error
	DeleteOffer(ctx context.Context, id, ownerID uuid.UUID) error
}

// OfferService manages the job offers companies publish.
type OfferService struct {
	repo   OfferRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewOfferService(repo OfferRepository, logger *zap.Logger) *OfferService {
	return &OfferService{
		repo:   repo,
		logger: logger.Named("offer_service"),
		now:    utcNow,
	}
}

// Create publishes an offer owned by the calling company.
func (s *OfferService) Create(ctx context.Context, email string, offer *models.JobOffer) (*models.JobOffer, error) {
	company, err := requireCompany(ctx, s.repo, email)
	if err != nil {
		return nil, err
	}
	if err := prepareOffer(offer); err != nil {
		return nil, err
	}
	if offer.CompanyName == "" {
		offer.CompanyName = displayName(company)
	}

	now := s.now()
	offer.ID = uuid.New()
	offer.UserID = company.ID
	offer.CreatedAt = now
	offer.UpdatedAt = now
	if err := s.repo.CreateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}
	s.logger.Info("Offer created",
		zap.String("offer_id", offer.ID.String()),
		zap.Int("positions", len(offer.Positions)))
	return offer, nil
}

func (s *OfferService) Get(ctx context.Context, id uuid.UUID) (*models.JobOffer, error) {
	return s.repo.GetOffer(ctx, id)
}

// List returns live offers newest first, optionally those of one company.
func (s *OfferService) List(ctx context.Context, ownerID *uuid.UUID) ([]*models.JobOffer, error) {
	offers, err := s.repo.ListOffers(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, nil
}

// Update replaces an offer of the calling company. Offers of other
// companies are reported as not found.
func (s *OfferService) Update(ctx context.Context, email string, offer *models.JobOffer) (*models.JobOffer, error) {
	company, err := requireCompany(ctx, s.repo, email)
	if err != nil {
		return nil, err
	}
	if err := prepareOffer(offer); err != nil {
		return nil, err
	}
	if offer.CompanyName == "" {
		offer.CompanyName = displayName(company)
	}
	offer.UserID = company.ID
	offer.UpdatedAt = s.now()
	if err := s.repo.UpdateOffer(ctx, offer); err != nil {
		return nil, err
	}
	s.logger.Info("Offer updated", zap.String("offer_id", offer.ID.String()))
	return s.repo.GetOffer(ctx, offer.ID)
}

// Delete tombstones an offer of the calling company.
func (s *OfferService) Delete(ctx context.Context, email string, id uuid.UUID) error {
	company, err := requireCompany(ctx, s.repo, email)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteOffer(ctx, id, company.ID); err != nil {
		return err
	}
	s.logger.Info("Offer deleted", zap.String("offer_id", id.String()))
	return nil
}

// prepareOffer validates the positions of an offer and fills in the derived
// education labels.
func prepareOffer(offer *models.JobOffer) error {
	if offer == nil || len(offer.Positions) == 0 {
		return fmt.Errorf("%w: an offer needs at least one position", e.ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(offer.Positions))
	for i := range offer.Positions {
		p := &offer.Positions[i]
		p.Title = strings.TrimSpace(p.Title)
		if p.Title == "" {
			return fmt.Errorf("%w: position %d has no title", e.ErrInvalidInput, i+1)
		}
		if _, dup := seen[p.Title]; dup {
			return fmt.Errorf("%w: duplicate position %q", e.ErrInvalidInput, p.Title)
		}
		seen[p.Title] = struct{}{}
		if p.AvailablePositions < 1 {
			return fmt.Errorf("%w: position %q needs at least one opening", e.ErrInvalidInput, p.Title)
		}
		p.Education.Details = models.EducationDetails(p.Education.Level, p.Education.Years)
	}
	return nil
}
