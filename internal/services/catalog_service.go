package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"storefront/internal/config"
	"storefront/internal/models/db_models"
	"storefront/internal/models/response_models"
	"storefront/internal/repositories"
	"storefront/pkg/utils"
)

type CatalogService interface {
	// ListActive returns active products; caller may be nil.
	ListActive(ctx context.Context, caller *Caller) ([]response_models.ProductResponse, error)
	Get(ctx context.Context, caller *Caller, id string) (*response_models.ProductResponse, error)
}

type catalogService struct {
	cfg         *config.Config
	productRepo repositories.ProductRepository
	profileRepo repositories.ProfileRepository
	cache       CatalogCache
}

func NewCatalogService(
	cfg *config.Config,
	productRepo repositories.ProductRepository,
	profileRepo repositories.ProfileRepository,
	cache CatalogCache,
) CatalogService {
	return &catalogService{
		cfg:         cfg,
		productRepo: productRepo,
		profileRepo: profileRepo,
		cache:       cache,
	}
}

func (s *catalogService) ListActive(ctx context.Context, caller *Caller) ([]response_models.ProductResponse, error) {
	products, err := s.activeProducts(ctx)
	if err != nil {
		return nil, err
	}

	role := s.roleOf(ctx, caller)
	out := make([]response_models.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, s.toResponse(p, role))
	}
	return out, nil
}

func (s *catalogService) Get(ctx context.Context, caller *Caller, id string) (*response_models.ProductResponse, error) {
	productID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, utils.ErrProductNotFound
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%w: product lookup: %v", utils.ErrDatabaseError, err)
	}
	if product == nil || !product.Active {
		return nil, utils.ErrProductNotFound
	}

	resp := s.toResponse(*product, s.roleOf(ctx, caller))
	return &resp, nil
}

// activeProducts reads through the cache. Cache errors fall back to the
// database.
func (s *catalogService) activeProducts(ctx context.Context) ([]db_models.Product, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.GetActive(ctx)
		if err != nil {
			log.WithError(err).Warn("Catalog cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	products, err := s.productRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: product list: %v", utils.ErrDatabaseError, err)
	}

	if s.cache != nil {
		if err := s.cache.SetActive(ctx, products); err != nil {
			log.WithError(err).Warn("Catalog cache write failed")
		}
	}
	return products, nil
}

func (s *catalogService) roleOf(ctx context.Context, caller *Caller) db_models.Role {
	if caller == nil {
		return db_models.RoleCustomer
	}
	role, err := s.profileRepo.FindRole(ctx, caller.UserID)
	if err != nil {
		log.WithError(err).WithField("user_id", caller.UserID).Warn("Role lookup failed, showing list prices")
		return db_models.RoleCustomer
	}
	if role == "" {
		return db_models.RoleCustomer
	}
	return role
}

func (s *catalogService) toResponse(p db_models.Product, role db_models.Role) response_models.ProductResponse {
	currency := strings.ToUpper(p.Currency)
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	resp := response_models.ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		PriceCents:  p.PriceCents,
		Currency:    currency,
	}
	if yours := PriceForRole(p.PriceCents, role); yours != p.PriceCents {
		resp.YourPriceCents = &yours
	}
	return resp
}
