package repositories

import (
	"context"

	"gorm.io/gorm"
	"storefront/internal/models/db_models"
)

type ContactRepository interface {
	Insert(ctx context.Context, msg *db_models.ContactMessage) error
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (c *contactRepository) Insert(ctx context.Context, msg *db_models.ContactMessage) error {
	return c.db.WithContext(ctx).Create(msg).Error
}
