package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/turismo-portal/internal/domain/product"
)

const (
	activeProductsKey = "catalog:active"
	defaultTTL        = 5 * time.Minute
)

// CatalogCache keeps the storefront product listing in Redis. Every admin
// write invalidates it; a cold or failing cache just falls through to the
// database.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(addr string, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &CatalogCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// GetActive returns the cached active-product listing, or ok=false on a miss
// or error.
func (c *CatalogCache) GetActive(ctx context.Context) ([]product.Product, bool) {
	data, err := c.client.Get(ctx, activeProductsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.Printf("[Cache] Get failed: %v", err)
		return nil, false
	}

	var products []product.Product
	if err := json.Unmarshal(data, &products); err != nil {
		log.Printf("[Cache] Corrupt cache entry, dropping: %v", err)
		c.Invalidate(ctx)
		return nil, false
	}
	return products, true
}

// SetActive stores the active-product listing.
func (c *CatalogCache) SetActive(ctx context.Context, products []product.Product) {
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, activeProductsKey, data, c.ttl).Err(); err != nil {
		log.Printf("[Cache] Set failed: %v", err)
	}
}

// Invalidate drops the cached listing.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, activeProductsKey).Err(); err != nil {
		log.Printf("[Cache] Invalidate failed: %v", err)
	}
}

func (c *CatalogCache) Close() error {
	return c.client.Close()
}
