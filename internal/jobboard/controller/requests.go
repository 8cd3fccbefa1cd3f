package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RequestRepository interface {
	UserStore
	CreateJobRequest(ctx context.Context, req *models.JobRequest) error
	ListJobRequests(ctx context.Context, ownerID uuid.UUID) ([]*models.JobRequest, error)
	GetJobRequest(ctx context.Context, id uuid.UUID) (*models.JobRequest, error)
	UpdateJobRequest(ctx context.Context, req *models.JobRequest) error
	DeleteJobRequest(ctx context.Context, id, ownerID uuid.UUID) error
}

// RequestService manages the job requests candidates post.
type RequestService struct {
	repo   RequestRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewRequestService(repo RequestRepository, logger *zap.Logger) *RequestService {
	return &RequestService{
		repo:   repo,
		logger: logger.Named("request_service"),
		now:    utcNow,
	}
}

func (s *RequestService) Create(ctx context.Context, email string, req *models.JobRequest) (*models.JobRequest, error) {
	candidate, err := requireIndividual(ctx, s.repo, email)
	if err != nil {
		return nil, err
	}
	if err := normalizeRequest(req); err != nil {
		return nil, err
	}

	req.ID = uuid.New()
	req.UserID = candidate.ID
	req.CreatedAt = s.now()
	if err := s.repo.CreateJobRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create job request: %w", err)
	}
	s.logger.Info("Job request created", zap.String("request_id", req.ID.String()))
	return req, nil
}

// List returns the caller's job requests, newest first.
func (s *RequestService) List(ctx context.Context, email string) ([]*models.JobRequest, error) {
	user, err := resolveActor(ctx, s.repo, email)
	if err != nil {
		return nil, err
	}
	return s.repo.ListJobRequests(ctx, user.ID)
}

// Get returns a job request. Job requests are public.
func (s *RequestService) Get(ctx context.Context, id uuid.UUID) (*models.JobRequest, error) {
	req, err := s.repo.GetJobRequest(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("%w: job request not found", e.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load job request: %w", err)
	}
	return req, nil
}

// Update replaces the editable fields of one of the caller's job requests.
func (s *RequestService) Update(ctx context.Context, email string, req *models.JobRequest) (*models.JobRequest, error) {
	user, err := resolveActor(ctx, s.repo, email)
	if err != nil {
		return nil, err
	}
	if err := normalizeRequest(req); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != user.ID {
		return nil, fmt.Errorf("%w: job request belongs to another account", e.ErrForbidden)
	}

	req.UserID = user.ID
	req.CreatedAt = existing.CreatedAt
	if err := s.repo.UpdateJobRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to update job request: %w", err)
	}
	s.logger.Info("Job request updated", zap.String("request_id", req.ID.String()))
	return req, nil
}

func (s *RequestService) Delete(ctx context.Context, email string, id uuid.UUID) error {
	user, err := resolveActor(ctx, s.repo, email)
	if err != nil {
		return err
	}
	return s.repo.DeleteJobRequest(ctx, id, user.ID)
}

func normalizeRequest(req *models.JobRequest) error {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.FirstName == "" || req.LastName == "" {
		return fmt.Errorf("%w: first and last name are required", e.ErrInvalidInput)
	}
	if !req.HasExperience {
		req.ExperienceDuration = ""
		req.PreviousPosition = ""
	}
	return nil
}
