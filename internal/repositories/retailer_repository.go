package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"storefront/internal/models/db_models"
	"storefront/pkg/utils"
)

type RetailerApplicationRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*db_models.RetailerApplication, error)
	// Upsert inserts or replaces the user's application, keyed by user_id.
	Upsert(ctx context.Context, app *db_models.RetailerApplication) error
	UpdateStatus(ctx context.Context, userID uuid.UUID, status db_models.ApplicationStatus, notes *string, approvedAt *int64) error
}

type retailerApplicationRepository struct {
	db *gorm.DB
}

func NewRetailerApplicationRepository(db *gorm.DB) RetailerApplicationRepository {
	return &retailerApplicationRepository{db: db}
}

func (r *retailerApplicationRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*db_models.RetailerApplication, error) {
	var app db_models.RetailerApplication
	err := r.db.WithContext(ctx).First(&app, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *retailerApplicationRepository) Upsert(ctx context.Context, app *db_models.RetailerApplication) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"company_name", "vat_number", "pec_email", "sdi_code",
			"contact_name", "contact_phone",
			"billing_line1", "billing_line2", "billing_city",
			"billing_postal_code", "billing_state", "billing_country",
			"status", "notes", "approved_at", "updated_at",
		}),
	}).Create(app).Error
}

func (r *retailerApplicationRepository) UpdateStatus(ctx context.Context, userID uuid.UUID, status db_models.ApplicationStatus, notes *string, approvedAt *int64) error {
	return r.db.WithContext(ctx).
		Model(&db_models.RetailerApplication{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"status":      status,
			"notes":       notes,
			"approved_at": approvedAt,
			"updated_at":  utils.NowUnixSeconds(),
		}).Error
}
