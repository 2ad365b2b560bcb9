package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"storefront/internal/models/db_models"
	mem "storefront/pkg/memcache"
)

const activeProductsKey = "catalog:active"

// CatalogCache holds the active product list. A miss is (nil, false, nil).
// Entries expire with the TTL; products are edited outside this service.
type CatalogCache interface {
	GetActive(ctx context.Context) ([]db_models.Product, bool, error)
	SetActive(ctx context.Context, products []db_models.Product) error
}

type redisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCatalogCache(client *redis.Client, ttl time.Duration) CatalogCache {
	return &redisCatalogCache{client: client, ttl: ttl}
}

func (r *redisCatalogCache) GetActive(ctx context.Context) ([]db_models.Product, bool, error) {
	raw, err := r.client.Get(ctx, activeProductsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var products []db_models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false, err
	}
	return products, true, nil
}

func (r *redisCatalogCache) SetActive(ctx context.Context, products []db_models.Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, activeProductsKey, raw, r.ttl).Err()
}

type memCatalogCache struct {
	store mem.Store
	ttl   time.Duration
}

func NewMemCatalogCache(store mem.Store, ttl time.Duration) CatalogCache {
	return &memCatalogCache{store: store, ttl: ttl}
}

func (m *memCatalogCache) GetActive(_ context.Context) ([]db_models.Product, bool, error) {
	raw, ok := m.store.Get(activeProductsKey)
	if !ok {
		return nil, false, nil
	}
	var products []db_models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false, err
	}
	return products, true, nil
}

func (m *memCatalogCache) SetActive(_ context.Context, products []db_models.Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return err
	}
	m.store.Set(activeProductsKey, raw, m.ttl)
	return nil
}
