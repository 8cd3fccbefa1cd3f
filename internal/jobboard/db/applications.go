package db

import (
	"context"
	"time"

	dbm "github.com/gartstein/jobboard/internal/jobboard/db/models"
	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// CreateApplication inserts an application. A second application for the
// same offer and applicant e-mail fails with ErrAlreadyApplied.
func (r *Repository) CreateApplication(ctx context.Context, app *models.JobApplication) error {
	rec, err := applicationToRecord(app)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return e.ErrAlreadyApplied
		}
		return err
	}
	return nil
}

func (r *Repository) ApplicationExists(ctx context.Context, offerID uuid.UUID, email string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&dbm.JobApplication{}).
		Where("offer_id = ? AND applicant_email = ?", offerID, email).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

func (r *Repository) GetApplication(ctx context.Context, id uuid.UUID) (*models.JobApplication, error) {
	var rec dbm.JobApplication
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return applicationFromRecord(&rec)
}

// GetApplicationForUpdate reads an application and locks its row until the
// surrounding transaction ends. SQLite ignores the lock.
func (r *Repository) GetApplicationForUpdate(ctx context.Context, id uuid.UUID) (*models.JobApplication, error) {
	var rec dbm.JobApplication
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rec, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return applicationFromRecord(&rec)
}

// ListApplicationsByCompany returns the applications received by a company, newest first.
func (r *Repository) ListApplicationsByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.JobApplication, error) {
	return r.listApplications(ctx, "company_id = ?", companyID)
}

// ListApplicationsByApplicant returns the applications sent from email, newest first.
func (r *Repository) ListApplicationsByApplicant(ctx context.Context, email string) ([]*models.JobApplication, error) {
	return r.listApplications(ctx, "applicant_email = ?", email)
}

func (r *Repository) listApplications(ctx context.Context, query string, arg interface{}) ([]*models.JobApplication, error) {
	var recs []dbm.JobApplication
	if err := r.db.WithContext(ctx).Where(query, arg).Order("applied_at DESC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*models.JobApplication, 0, len(recs))
	for i := range recs {
		app, err := applicationFromRecord(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, nil
}

// SaveApplication persists the mutable state of an application: positions,
// overall status and interview.
func (r *Repository) SaveApplication(ctx context.Context, app *models.JobApplication) error {
	rec, err := applicationToRecord(app)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&dbm.JobApplication{}).
		Where("id = ?", app.ID).
		Select("positions", "status", "interview", "updated_at").
		Updates(rec)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteApplication(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&dbm.JobApplication{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

type applicationViewRow struct {
	dbm.JobApplication `gorm:"embedded"`
	OfferRef           *uuid.UUID
	OfferCompanyName   string
	OfferState         string
	OfferMunicipality  string
	OfferAddress       string
	OfferDeletedAt     *time.Time
	CompanyDetails     datatypes.JSON
}

const applicationViewColumns = `a.*,
	o.id AS offer_ref,
	o.company_name AS offer_company_name,
	o.state AS offer_state,
	o.municipality AS offer_municipality,
	o.address AS offer_address,
	o.deleted_at AS offer_deleted_at,
	u.company_details AS company_details`

// GetApplicationView joins an application of applicantEmail with its offer
// (deleted offers included) and the company that posted it.
func (r *Repository) GetApplicationView(ctx context.Context, id uuid.UUID, applicantEmail string) (*models.ApplicationView, error) {
	views, err := r.applicationViews(ctx, "a.id = ? AND a.applicant_email = ?", id, applicantEmail)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, e.ErrNotFound
	}
	return views[0], nil
}

// ListApplicationViews returns the enriched applications of applicantEmail, newest first.
func (r *Repository) ListApplicationViews(ctx context.Context, applicantEmail string) ([]*models.ApplicationView, error) {
	return r.applicationViews(ctx, "a.applicant_email = ?", applicantEmail)
}

func (r *Repository) applicationViews(ctx context.Context, query string, args ...interface{}) ([]*models.ApplicationView, error) {
	var rows []applicationViewRow
	err := r.db.WithContext(ctx).
		Table("job_applications AS a").
		Select(applicationViewColumns).
		Joins("LEFT JOIN job_offers o ON o.id = a.offer_id").
		Joins("LEFT JOIN users u ON u.id = o.user_id").
		Where(query, args...).
		Order("a.applied_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	views := make([]*models.ApplicationView, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		app, err := applicationFromRecord(&row.JobApplication)
		if err != nil {
			return nil, err
		}
		company, err := companyFromJSON(row.CompanyDetails)
		if err != nil {
			return nil, err
		}
		companyName := row.OfferCompanyName
		if company != nil && company.CompanyName != "" {
			companyName = company.CompanyName
		}
		views = append(views, &models.ApplicationView{
			ID:          app.ID,
			OfferID:     app.OfferID,
			Positions:   app.Positions,
			Status:      app.Status,
			AppliedAt:   app.AppliedAt,
			Interview:   app.Interview,
			CompanyName: companyName,
			Location: models.Location{
				State:        row.OfferState,
				Municipality: row.OfferMunicipality,
				Address:      row.OfferAddress,
			}.String(),
			OfferDeleted: row.OfferRef == nil || row.OfferDeletedAt != nil,
		})
	}
	return views, nil
}
