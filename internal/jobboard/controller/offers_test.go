package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockRequestRepository overrides a RequestRepository with per-test
// functions to simulate storage failures.
type MockRequestRepository struct {
	RequestRepository
	ensureUser       func(context.Context, string) (*models.User, error)
	createJobRequest func(context.Context, *models.JobRequest) error
	getJobRequest    func(context.Context, uuid.UUID) (*models.JobRequest, error)
	updateJobRequest func(context.Context, *models.JobRequest) error
}

func (m *MockRequestRepository) EnsureUser(ctx context.Context, email string) (*models.User, error) {
	return m.ensureUser(ctx, email)
}

func (m *MockRequestRepository) CreateJobRequest(ctx context.Context, req *models.JobRequest) error {
	return m.createJobRequest(ctx, req)
}

func (m *MockRequestRepository) GetJobRequest(ctx context.Context, id uuid.UUID) (*models.JobRequest, error) {
	return m.getJobRequest(ctx, id)
}

func (m *MockRequestRepository) UpdateJobRequest(ctx context.Context, req *models.JobRequest) error {
	return m.updateJobRequest(ctx, req)
}

func TestOfferService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	company := f.company(t, companyEmail, "Acme")
	f.candidate(t, candidateEmail, "Amel", "Haddad")

	tests := []struct {
		name          string
		email         string
		positions     []models.Position
		expectedError error
	}{
		{name: "no positions", email: companyEmail, expectedError: e.ErrInvalidInput},
		{
			name:          "untitled position",
			email:         companyEmail,
			positions:     []models.Position{{Title: " ", AvailablePositions: 1}},
			expectedError: e.ErrInvalidInput,
		},
		{
			name:          "duplicate titles",
			email:         companyEmail,
			positions:     []models.Position{{Title: "Dev", AvailablePositions: 1}, {Title: "Dev ", AvailablePositions: 1}},
			expectedError: e.ErrInvalidInput,
		},
		{
			name:          "no openings",
			email:         companyEmail,
			positions:     []models.Position{{Title: "Dev"}},
			expectedError: e.ErrInvalidInput,
		},
		{
			name:          "individual",
			email:         candidateEmail,
			positions:     []models.Position{{Title: "Dev", AvailablePositions: 1}},
			expectedError: e.ErrForbidden,
		},
		{
			name:  "valid offer",
			email: companyEmail,
			positions: []models.Position{
				{Title: "Dev", AvailablePositions: 2, Education: models.Education{Level: models.EducationSecondary, Years: "3"}},
				{Title: "Driver", AvailablePositions: 1, Education: models.Education{Level: models.EducationNone}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer, err := f.offers.Create(ctx, tt.email, &models.JobOffer{Positions: tt.positions})
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, company.ID, offer.UserID)
			assert.Equal(t, "Acme", offer.CompanyName)
			assert.Equal(t, "3ème année secondaire", offer.Positions[0].Education.Details)
			assert.Equal(t, "Aucune condition requise", offer.Positions[1].Education.Details)

			stored, err := f.offers.Get(ctx, offer.ID)
			require.NoError(t, err)
			assert.Len(t, stored.Positions, 2)
		})
	}
}

func TestOfferService_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	company := f.company(t, companyEmail, "Acme")
	f.company(t, "hr@globex.test", "Globex")
	offer := f.offer(t, companyEmail, "Dev")
	f.offer(t, "hr@globex.test", "Ops")

	edit := *offer
	edit.Description = "Remote friendly"
	edit.Positions = []models.Position{{Title: "Senior Dev", AvailablePositions: 1}}
	updated, err := f.offers.Update(ctx, companyEmail, &edit)
	require.NoError(t, err)
	assert.Equal(t, "Remote friendly", updated.Description)
	assert.True(t, updated.HasPositions([]string{"Senior Dev"}))

	foreign := *offer
	_, err = f.offers.Update(ctx, "hr@globex.test", &foreign)
	assert.ErrorIs(t, err, e.ErrNotFound, "offers of other companies are invisible")

	all, err := f.offers.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	own, err := f.offers.List(ctx, &company.ID)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	assert.ErrorIs(t, f.offers.Delete(ctx, "hr@globex.test", offer.ID), e.ErrNotFound)
	require.NoError(t, f.offers.Delete(ctx, companyEmail, offer.ID))
	assert.ErrorIs(t, f.offers.Delete(ctx, companyEmail, offer.ID), e.ErrNotFound)
	_, err = f.offers.Get(ctx, offer.ID)
	assert.ErrorIs(t, err, e.ErrNotFound)
	_, err = f.offers.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestRequestService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.company(t, companyEmail, "Acme")
	f.candidate(t, candidateEmail, "Amel", "Haddad")
	f.candidate(t, "karim@example.com", "Karim", "Benali")

	_, err := f.requests.Create(ctx, companyEmail, &models.JobRequest{FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, e.ErrForbidden)
	_, err = f.requests.Create(ctx, candidateEmail, &models.JobRequest{FirstName: "Amel"})
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	req, err := f.requests.Create(ctx, candidateEmail, &models.JobRequest{
		FirstName:          "Amel",
		LastName:           "Haddad",
		HasExperience:      false,
		ExperienceDuration: "2 years",
	})
	require.NoError(t, err)
	assert.Empty(t, req.ExperienceDuration, "experience details need hasExperience")

	list, err := f.requests.List(ctx, candidateEmail)
	require.NoError(t, err)
	require.Len(t, list, 1)
	other, err := f.requests.List(ctx, "karim@example.com")
	require.NoError(t, err)
	assert.Empty(t, other)

	assert.ErrorIs(t, f.requests.Delete(ctx, "karim@example.com", req.ID), e.ErrNotFound)
	require.NoError(t, f.requests.Delete(ctx, candidateEmail, req.ID))
}

func TestRequestService_GetAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.candidate(t, candidateEmail, "Amel", "Haddad")
	f.candidate(t, "karim@example.com", "Karim", "Benali")

	created, err := f.requests.Create(ctx, candidateEmail, &models.JobRequest{
		FirstName:      "Amel",
		LastName:       "Haddad",
		Specialization: "Networks",
	})
	require.NoError(t, err)

	got, err := f.requests.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Networks", got.Specialization)
	_, err = f.requests.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, e.ErrNotFound)

	updated, err := f.requests.Update(ctx, candidateEmail, &models.JobRequest{
		ID:                 created.ID,
		FirstName:          " Amel ",
		LastName:           "Haddad",
		Specialization:     "Security",
		HasExperience:      true,
		ExperienceDuration: "2 years",
		PreviousPosition:   "Intern",
	})
	require.NoError(t, err)
	assert.Equal(t, "Amel", updated.FirstName)
	assert.WithinDuration(t, created.CreatedAt, updated.CreatedAt, time.Second)

	got, err = f.requests.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Security", got.Specialization)
	assert.Equal(t, "Intern", got.PreviousPosition)

	tests := []struct {
		name          string
		email         string
		req           *models.JobRequest
		expectedError error
	}{
		{name: "anonymous", email: "", req: &models.JobRequest{ID: created.ID, FirstName: "A", LastName: "B"}, expectedError: e.ErrUnauthorized},
		{name: "missing name", email: candidateEmail, req: &models.JobRequest{ID: created.ID, FirstName: "Amel"}, expectedError: e.ErrInvalidInput},
		{name: "another owner", email: "karim@example.com", req: &models.JobRequest{ID: created.ID, FirstName: "K", LastName: "B"}, expectedError: e.ErrForbidden},
		{name: "unknown request", email: candidateEmail, req: &models.JobRequest{ID: uuid.New(), FirstName: "A", LastName: "B"}, expectedError: e.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.requests.Update(ctx, tt.email, tt.req)
			assert.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestRequestService_StorageFailures(t *testing.T) {
	errBroken := errors.New("connection reset by peer")
	user := &models.User{ID: uuid.New(), Email: candidateEmail, Type: models.UserTypeIndividual}
	existing := &models.JobRequest{ID: uuid.New(), UserID: user.ID, FirstName: "Amel", LastName: "Haddad"}
	edit := func() *models.JobRequest {
		return &models.JobRequest{ID: existing.ID, FirstName: "Amel", LastName: "Haddad"}
	}

	tests := []struct {
		name            string
		mockSetup       func(*MockRequestRepository)
		call            func(context.Context, *RequestService) error
		expectedError   error
		expectedMessage string
	}{
		{
			name:      "create write fails",
			mockSetup: func(m *MockRequestRepository) { m.createJobRequest = func(context.Context, *models.JobRequest) error { return errBroken } },
			call: func(ctx context.Context, s *RequestService) error {
				_, err := s.Create(ctx, candidateEmail, edit())
				return err
			},
			expectedMessage: "failed to create job request",
		},
		{
			name: "lookup fails",
			mockSetup: func(m *MockRequestRepository) {
				m.getJobRequest = func(context.Context, uuid.UUID) (*models.JobRequest, error) { return nil, errBroken }
			},
			call: func(ctx context.Context, s *RequestService) error {
				_, err := s.Get(ctx, existing.ID)
				return err
			},
			expectedMessage: "failed to load job request",
		},
		{
			name:      "update write fails",
			mockSetup: func(m *MockRequestRepository) { m.updateJobRequest = func(context.Context, *models.JobRequest) error { return errBroken } },
			call: func(ctx context.Context, s *RequestService) error {
				_, err := s.Update(ctx, candidateEmail, edit())
				return err
			},
			expectedMessage: "failed to update job request",
		},
		{
			name: "request deleted meanwhile",
			mockSetup: func(m *MockRequestRepository) {
				m.updateJobRequest = func(context.Context, *models.JobRequest) error { return e.ErrNotFound }
			},
			call: func(ctx context.Context, s *RequestService) error {
				_, err := s.Update(ctx, candidateEmail, edit())
				return err
			},
			expectedError: e.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockRequestRepository{
				ensureUser:       func(context.Context, string) (*models.User, error) { return user, nil },
				createJobRequest: func(context.Context, *models.JobRequest) error { return nil },
				getJobRequest:    func(context.Context, uuid.UUID) (*models.JobRequest, error) { return existing, nil },
				updateJobRequest: func(context.Context, *models.JobRequest) error { return nil },
			}
			tt.mockSetup(repo)
			svc := NewRequestService(repo, zaptest.NewLogger(t))

			err := tt.call(context.Background(), svc)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assertStorageFailure(t, err, tt.expectedMessage)
			assert.ErrorIs(t, err, errBroken)
		})
	}
}
