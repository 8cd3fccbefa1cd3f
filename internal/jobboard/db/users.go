package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	dbm "github.com/gartstein/jobboard/internal/jobboard/db/models"
	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnsureUser returns the user registered under email, creating an incomplete
// record on the first sign-in.
func (r *Repository) EnsureUser(ctx context.Context, email string) (*models.User, error) {
	var rec dbm.User
	result := r.db.WithContext(ctx).
		Where(dbm.User{Email: email}).
		Attrs(dbm.User{ID: uuid.New()}).
		FirstOrCreate(&rec)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			// Lost a race against a concurrent first sign-in.
			return r.GetUserByEmail(ctx, email)
		}
		return nil, result.Error
	}
	return userFromRecord(&rec)
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var rec dbm.User
	if err := r.db.WithContext(ctx).First(&rec, "email = ?", email).Error; err != nil {
		return nil, notFound(err)
	}
	return userFromRecord(&rec)
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var rec dbm.User
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return userFromRecord(&rec)
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	rec, err := userToRecord(user)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email already registered", e.ErrInvalidInput)
		}
		return err
	}
	return nil
}

// UpdateProfile applies a profile setup and marks the profile complete.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, setup *models.ProfileSetup) error {
	updates := map[string]interface{}{
		"user_type":           string(setup.Type),
		"is_profile_complete": true,
		"updated_at":          time.Now().UTC(),
	}
	if setup.FirstName != nil {
		updates["first_name"] = *setup.FirstName
	}
	if setup.LastName != nil {
		updates["last_name"] = *setup.LastName
	}
	if setup.Phone != nil {
		updates["phone"] = *setup.Phone
	}
	if setup.BirthDate != nil {
		updates["birth_date"] = *setup.BirthDate
	}
	if setup.Company != nil {
		raw, err := marshalJSON(companyToRecord(setup.Company))
		if err != nil {
			return fmt.Errorf("failed to encode company details: %w", err)
		}
		updates["company_details"] = raw
	}

	result := r.db.WithContext(ctx).Model(&dbm.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// ListCandidates returns a page of individuals with a complete profile,
// most recently updated first, along with the number of matches.
func (r *Repository) ListCandidates(ctx context.Context, search string, offset, limit int) ([]*models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&dbm.User{}).
		Where("user_type = ? AND is_profile_complete = ?", string(models.UserTypeIndividual), true)
	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		q = q.Where("(LOWER(first_name) LIKE ? ESCAPE '\\' OR LOWER(last_name) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	// Count and Find each start from a copy of the filter.
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var recs []dbm.User
	if err := q.Order("updated_at DESC").Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	users := make([]*models.User, 0, len(recs))
	for i := range recs {
		u, err := userFromRecord(&recs[i])
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, nil
}

// UpdateAvatar stores the URL of the user's uploaded avatar.
func (r *Repository) UpdateAvatar(ctx context.Context, id uuid.UUID, url string) error {
	return r.updateUserColumn(ctx, id, "avatar", url)
}

// UpdateCoverImage stores the URL of the user's uploaded cover image.
func (r *Repository) UpdateCoverImage(ctx context.Context, id uuid.UUID, url string) error {
	return r.updateUserColumn(ctx, id, "cover_image", url)
}

func (r *Repository) updateUserColumn(ctx context.Context, id uuid.UUID, column string, value interface{}) error {
	result := r.db.WithContext(ctx).Model(&dbm.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{column: value, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&dbm.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}
