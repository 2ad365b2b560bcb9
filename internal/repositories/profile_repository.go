package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"storefront/internal/models/db_models"
)

type ProfileRepository interface {
	// FindRole returns "" when the user has no profile row.
	FindRole(ctx context.Context, userID uuid.UUID) (db_models.Role, error)
	SetRole(ctx context.Context, userID uuid.UUID, role db_models.Role) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (p *profileRepository) FindRole(ctx context.Context, userID uuid.UUID) (db_models.Role, error) {
	var profile db_models.Profile
	err := p.db.WithContext(ctx).Select("id", "role").First(&profile, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return profile.Role, nil
}

func (p *profileRepository) SetRole(ctx context.Context, userID uuid.UUID, role db_models.Role) error {
	profile := db_models.Profile{ID: userID, Role: role}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
	}).Create(&profile).Error
}
