package db

import (
	"context"

	dbm "github.com/gartstein/jobboard/internal/jobboard/db/models"
	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
)

func (r *Repository) CreateOffer(ctx context.Context, offer *models.JobOffer) error {
	return r.db.WithContext(ctx).Create(offerToRecord(offer)).Error
}

// GetOffer returns a live offer. Deleted offers are reported as not found.
func (r *Repository) GetOffer(ctx context.Context, id uuid.UUID) (*models.JobOffer, error) {
	var rec dbm.JobOffer
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return offerFromRecord(&rec), nil
}

// ListOffers returns live offers newest first, optionally restricted to one owner.
func (r *Repository) ListOffers(ctx context.Context, ownerID *uuid.UUID) ([]*models.JobOffer, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if ownerID != nil {
		q = q.Where("user_id = ?", *ownerID)
	}
	var recs []dbm.JobOffer
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	offers := make([]*models.JobOffer, 0, len(recs))
	for i := range recs {
		offers = append(offers, offerFromRecord(&recs[i]))
	}
	return offers, nil
}

// UpdateOffer replaces the editable fields of an offer owned by offer.UserID.
func (r *Repository) UpdateOffer(ctx context.Context, offer *models.JobOffer) error {
	rec := offerToRecord(offer)
	result := r.db.WithContext(ctx).Model(&dbm.JobOffer{}).
		Where("id = ? AND user_id = ?", offer.ID, offer.UserID).
		Select("company_name", "state", "municipality", "address", "description", "positions", "updated_at").
		Updates(rec)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// DeleteOffer tombstones an offer owned by ownerID.
func (r *Repository) DeleteOffer(ctx context.Context, id, ownerID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&dbm.JobOffer{}, "id = ? AND user_id = ?", id, ownerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// DeleteOffersByUser tombstones every offer of a user.
func (r *Repository) DeleteOffersByUser(ctx context.Context, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&dbm.JobOffer{}, "user_id = ?", ownerID).Error
}

func (r *Repository) CreateJobRequest(ctx context.Context, req *models.JobRequest) error {
	return r.db.WithContext(ctx).Create(requestToRecord(req)).Error
}

func (r *Repository) ListJobRequests(ctx context.Context, ownerID uuid.UUID) ([]*models.JobRequest, error) {
	var recs []dbm.JobRequest
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*models.JobRequest, 0, len(recs))
	for i := range recs {
		out = append(out, requestFromRecord(&recs[i]))
	}
	return out, nil
}

func (r *Repository) GetJobRequest(ctx context.Context, id uuid.UUID) (*models.JobRequest, error) {
	var rec dbm.JobRequest
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return requestFromRecord(&rec), nil
}

// UpdateJobRequest replaces the editable fields of a job request owned by
// req.UserID.
func (r *Repository) UpdateJobRequest(ctx context.Context, req *models.JobRequest) error {
	result := r.db.WithContext(ctx).Model(&dbm.JobRequest{}).
		Where("id = ? AND user_id = ?", req.ID, req.UserID).
		Select("first_name", "last_name", "birth_date", "state", "municipality", "phone",
			"education_level", "academic_years", "diploma", "specialization", "about_me",
			"has_experience", "experience_duration", "previous_position").
		Updates(requestToRecord(req))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteJobRequest(ctx context.Context, id, ownerID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&dbm.JobRequest{}, "id = ? AND user_id = ?", id, ownerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteJobRequestsByUser(ctx context.Context, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&dbm.JobRequest{}, "user_id = ?", ownerID).Error
}
