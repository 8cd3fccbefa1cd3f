package controller

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gartstein/jobboard/internal/jobboard/db"
	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockProfileRepository overrides a ProfileRepository with per-test
// functions to simulate storage failures.
type MockProfileRepository struct {
	ProfileRepository
	ensureUser      func(context.Context, string) (*models.User, error)
	getUser         func(context.Context, uuid.UUID) (*models.User, error)
	getUserByEmail  func(context.Context, string) (*models.User, error)
	updateProfile   func(context.Context, uuid.UUID, *models.ProfileSetup) error
	updateAvatar    func(context.Context, uuid.UUID, string) error
	listCandidates  func(context.Context, string, int, int) ([]*models.User, int64, error)
	withTransaction func(context.Context, func(*db.Repository) error) error
}

func (m *MockProfileRepository) EnsureUser(ctx context.Context, email string) (*models.User, error) {
	return m.ensureUser(ctx, email)
}

func (m *MockProfileRepository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.getUser(ctx, id)
}

func (m *MockProfileRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.getUserByEmail(ctx, email)
}

func (m *MockProfileRepository) UpdateProfile(ctx context.Context, id uuid.UUID, setup *models.ProfileSetup) error {
	return m.updateProfile(ctx, id, setup)
}

func (m *MockProfileRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, url string) error {
	return m.updateAvatar(ctx, id, url)
}

func (m *MockProfileRepository) ListCandidates(ctx context.Context, search string, offset, limit int) ([]*models.User, int64, error) {
	return m.listCandidates(ctx, search, offset, limit)
}

func (m *MockProfileRepository) WithTransaction(ctx context.Context, fn func(*db.Repository) error) error {
	return m.withTransaction(ctx, fn)
}

func TestProfileService_Get(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.profiles.Get(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeUnset, user.Type)
	assert.False(t, user.ProfileComplete)

	again, err := f.profiles.Get(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	_, err = f.profiles.Get(ctx, " ")
	assert.ErrorIs(t, err, e.ErrUnauthorized)
}

func TestProfileService_Setup(t *testing.T) {
	name := "Amel"
	tests := []struct {
		name          string
		setup         *models.ProfileSetup
		expectedError error
	}{
		{name: "missing setup", setup: nil, expectedError: e.ErrInvalidInput},
		{name: "missing type", setup: &models.ProfileSetup{FirstName: &name}, expectedError: e.ErrInvalidInput},
		{name: "unknown type", setup: &models.ProfileSetup{Type: "admin"}, expectedError: e.ErrInvalidInput},
		{name: "company without details", setup: &models.ProfileSetup{Type: models.UserTypeCompany}, expectedError: e.ErrInvalidInput},
		{
			name:          "company without name",
			setup:         &models.ProfileSetup{Type: models.UserTypeCompany, Company: &models.CompanyDetails{About: "x"}},
			expectedError: e.ErrInvalidInput,
		},
		{name: "individual", setup: &models.ProfileSetup{Type: models.UserTypeIndividual, FirstName: &name}},
		{
			name:  "company",
			setup: &models.ProfileSetup{Type: models.UserTypeCompany, Company: &models.CompanyDetails{CompanyName: "Acme", Contacts: []models.Contact{{Email: "hr@acme.test"}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			user, err := f.profiles.Setup(context.Background(), "someone@example.com", tt.setup)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.True(t, user.ProfileComplete)
			assert.Equal(t, tt.setup.Type, user.Type)
			if user.IsCompany() {
				assert.Equal(t, "Acme", user.CompanyName())
				require.Len(t, user.Company.Contacts, 1)
			} else {
				assert.Equal(t, "Amel", user.FirstName)
				assert.Nil(t, user.Company)
			}
		})
	}
}

// TestProfileService_Delete removes a company account that already received
// applications.
func TestProfileService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.company(t, companyEmail, "Acme")
	f.candidate(t, candidateEmail, "Amel", "Haddad")
	offer := f.offer(t, companyEmail, "Dev")
	app, err := f.applications.Submit(ctx, candidateEmail, SubmitRequest{OfferID: offer.ID, PositionTitles: []string{"Dev"}})
	require.NoError(t, err)
	_, err = f.requests.Create(ctx, candidateEmail, &models.JobRequest{FirstName: "Amel", LastName: "Haddad"})
	require.NoError(t, err)

	require.NoError(t, f.profiles.Delete(ctx, companyEmail))

	_, err = f.repo.GetUserByEmail(ctx, companyEmail)
	assert.ErrorIs(t, err, e.ErrNotFound)
	_, err = f.offers.Get(ctx, offer.ID)
	assert.ErrorIs(t, err, e.ErrNotFound)

	view, err := f.applications.GetCandidateView(ctx, candidateEmail, app.ID)
	require.NoError(t, err)
	assert.True(t, view.OfferDeleted)
	assert.Equal(t, "Acme", view.CompanyName, "company name falls back to the offer")

	require.NoError(t, f.profiles.Delete(ctx, candidateEmail))
	requests, err := f.repo.ListJobRequests(ctx, app.ApplicantID)
	require.NoError(t, err)
	assert.Empty(t, requests)

	assert.ErrorIs(t, f.profiles.Delete(ctx, "ghost@example.com"), e.ErrNotFound)
	assert.ErrorIs(t, f.profiles.Delete(ctx, ""), e.ErrUnauthorized)
}

func TestProfileService_PublicReaders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	company := f.company(t, companyEmail, "Acme")
	candidate := f.candidate(t, candidateEmail, "Amel", "Haddad")

	user, err := f.profiles.GetPublic(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeIndividual, user.Type)

	got, err := f.profiles.GetCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.CompanyName())

	_, err = f.profiles.GetCompany(ctx, candidate.ID)
	assert.ErrorIs(t, err, e.ErrInvalidInput)
	_, err = f.profiles.GetPublic(ctx, uuid.New())
	assert.ErrorIs(t, err, e.ErrNotFound)
	_, err = f.profiles.GetCompany(ctx, uuid.New())
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestProfileService_ListCandidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.company(t, companyEmail, "Acme")
	for i := 0; i < 5; i++ {
		f.candidate(t, fmt.Sprintf("candidate%d@example.com", i), "Amel", fmt.Sprintf("Haddad%d", i))
	}
	f.candidate(t, "karim@example.com", "Karim", "Benali")
	// Signed in but never completed the profile.
	_, err := f.profiles.Get(ctx, "pending@example.com")
	require.NoError(t, err)

	tests := []struct {
		name          string
		query         models.CandidateQuery
		expectedCount int
		expectedTotal int64
		expectedPage  int
		expectedLimit int
		expectedPages int
	}{
		{name: "defaults", query: models.CandidateQuery{}, expectedCount: 6, expectedTotal: 6, expectedPage: 1, expectedLimit: 12, expectedPages: 1},
		{name: "second page", query: models.CandidateQuery{Page: 2, Limit: 4}, expectedCount: 2, expectedTotal: 6, expectedPage: 2, expectedLimit: 4, expectedPages: 2},
		{name: "past the end", query: models.CandidateQuery{Page: 5, Limit: 4}, expectedCount: 0, expectedTotal: 6, expectedPage: 5, expectedLimit: 4, expectedPages: 2},
		{name: "search is case-insensitive", query: models.CandidateQuery{Search: "benA"}, expectedCount: 1, expectedTotal: 1, expectedPage: 1, expectedLimit: 12, expectedPages: 1},
		{name: "search matches first names", query: models.CandidateQuery{Search: "amel", Limit: 500}, expectedCount: 5, expectedTotal: 5, expectedPage: 1, expectedLimit: 100, expectedPages: 1},
		{name: "wildcards are literal", query: models.CandidateQuery{Search: "%"}, expectedCount: 0, expectedTotal: 0, expectedPage: 1, expectedLimit: 12, expectedPages: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.profiles.ListCandidates(ctx, tt.query)
			require.NoError(t, err)
			assert.Len(t, page.Candidates, tt.expectedCount)
			assert.Equal(t, tt.expectedTotal, page.Total)
			assert.Equal(t, tt.expectedPage, page.Page)
			assert.Equal(t, tt.expectedLimit, page.Limit)
			assert.Equal(t, tt.expectedPages, page.Pages())
			for _, c := range page.Candidates {
				assert.True(t, c.IsIndividual())
				assert.True(t, c.ProfileComplete)
			}
		})
	}
}

func TestProfileService_UpdateImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.candidate(t, candidateEmail, "Amel", "Haddad")

	user, err := f.profiles.UpdateAvatar(ctx, candidateEmail, " https://cdn.example.com/avatar.png ")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatar.png", user.Avatar)

	user, err = f.profiles.UpdateCover(ctx, candidateEmail, "https://cdn.example.com/cover.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/cover.png", user.CoverImage)
	assert.Equal(t, "https://cdn.example.com/avatar.png", user.Avatar, "cover update keeps the avatar")

	for _, bad := range []string{"", "avatar.png", "ftp://cdn.example.com/a.png", "https://"} {
		_, err = f.profiles.UpdateAvatar(ctx, candidateEmail, bad)
		assert.ErrorIs(t, err, e.ErrInvalidInput, "url %q", bad)
	}
	_, err = f.profiles.UpdateCover(ctx, "", "https://cdn.example.com/cover.png")
	assert.ErrorIs(t, err, e.ErrUnauthorized)
}

func TestProfileService_StorageFailures(t *testing.T) {
	errBroken := errors.New("connection reset by peer")
	user := &models.User{ID: uuid.New(), Email: candidateEmail, Type: models.UserTypeIndividual}
	first, last := "Amel", "Haddad"

	tests := []struct {
		name            string
		mockSetup       func(*MockProfileRepository)
		call            func(context.Context, *ProfileService) error
		expectedError   error
		expectedMessage string
	}{
		{
			name:      "registration fails",
			mockSetup: func(m *MockProfileRepository) { m.ensureUser = func(context.Context, string) (*models.User, error) { return nil, errBroken } },
			call: func(ctx context.Context, s *ProfileService) error {
				_, err := s.Get(ctx, candidateEmail)
				return err
			},
			expectedMessage: "failed to resolve user",
		},
		{
			name:      "setup write fails",
			mockSetup: func(m *MockProfileRepository) { m.updateProfile = func(context.Context, uuid.UUID, *models.ProfileSetup) error { return errBroken } },
			call: func(ctx context.Context, s *ProfileService) error {
				_, err := s.Setup(ctx, candidateEmail, &models.ProfileSetup{Type: models.UserTypeIndividual, FirstName: &first, LastName: &last})
				return err
			},
			expectedMessage: "failed to update profile",
		},
		{
			name:      "public lookup fails",
			mockSetup: func(m *MockProfileRepository) { m.getUser = func(context.Context, uuid.UUID) (*models.User, error) { return nil, errBroken } },
			call: func(ctx context.Context, s *ProfileService) error {
				_, err := s.GetPublic(ctx, user.ID)
				return err
			},
			expectedMessage: "failed to load user",
		},
		{
			name:      "public user missing",
			mockSetup: func(m *MockProfileRepository) { m.getUser = func(context.Context, uuid.UUID) (*models.User, error) { return nil, e.ErrNotFound } },
			call: func(ctx context.Context, s *ProfileService) error {
				_, err := s.GetCompany(ctx, user.ID)
				return err
			},
			expectedError: e.ErrNotFound,
		},
		{
			name: "candidate listing fails",
			mockSetup: func(m *MockProfileRepository) {
				m.listCandidates = func(context.Context, string, int, int) ([]*models.User, int64, error) { return nil, 0, errBroken }
			},
			call: func(ctx context.Context, s *ProfileService) error {
				_, err := s.ListCandidates(ctx, models.CandidateQuery{})
				return err
			},
			expectedMessage: "failed to list candidates",
		},
		{
			name:      "avatar write fails",
			mockSetup: func(m *MockProfileRepository) { m.updateAvatar = func(context.Context, uuid.UUID, string) error { return errBroken } },
			call: func(ctx context.Context, s *ProfileService) error {
				_, err := s.UpdateAvatar(ctx, candidateEmail, "https://cdn.example.com/a.png")
				return err
			},
			expectedMessage: "failed to update avatar",
		},
		{
			name:      "account lookup fails",
			mockSetup: func(m *MockProfileRepository) { m.getUserByEmail = func(context.Context, string) (*models.User, error) { return nil, errBroken } },
			call: func(ctx context.Context, s *ProfileService) error {
				return s.Delete(ctx, candidateEmail)
			},
			expectedMessage: "failed to load user",
		},
		{
			name: "account delete fails",
			mockSetup: func(m *MockProfileRepository) {
				m.withTransaction = func(context.Context, func(*db.Repository) error) error { return errBroken }
			},
			call: func(ctx context.Context, s *ProfileService) error {
				return s.Delete(ctx, candidateEmail)
			},
			expectedMessage: "failed to delete account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockProfileRepository{
				ensureUser:      func(context.Context, string) (*models.User, error) { return user, nil },
				getUser:         func(context.Context, uuid.UUID) (*models.User, error) { return user, nil },
				getUserByEmail:  func(context.Context, string) (*models.User, error) { return user, nil },
				updateProfile:   func(context.Context, uuid.UUID, *models.ProfileSetup) error { return nil },
				updateAvatar:    func(context.Context, uuid.UUID, string) error { return nil },
				listCandidates:  func(context.Context, string, int, int) ([]*models.User, int64, error) { return nil, 0, nil },
				withTransaction: func(context.Context, func(*db.Repository) error) error { return nil },
			}
			tt.mockSetup(repo)
			svc := NewProfileService(repo, zaptest.NewLogger(t))

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
