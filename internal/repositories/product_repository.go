package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"storefront/internal/models/db_models"
)

type ProductRepository interface {
	ListActive(ctx context.Context) ([]db_models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.Product, error)
	// FindByIDs returns every product in ids regardless of its active flag.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (p *productRepository) ListActive(ctx context.Context) ([]db_models.Product, error) {
	var products []db_models.Product
	err := p.db.WithContext(ctx).
		Where("active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (p *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.Product, error) {
	var product db_models.Product
	err := p.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (p *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]db_models.Product, error) {
	if len(ids) == 0 {
		return []db_models.Product{}, nil
	}

	var products []db_models.Product
	err := p.db.WithContext(ctx).
		Select("id", "name", "price_cents", "currency", "active").
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
