package adapters

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"pharmacart/internal/orders/domain"
	"pharmacart/internal/orders/ports"
	"pharmacart/pkg/cache"
	"pharmacart/pkg/logger"
)

// StaticCatalog is an in-process catalog backed by a fixed product table.
// The real catalog is a separate system; this adapter stands in for it in
// local runs and tests.
type StaticCatalog struct {
	mu       sync.RWMutex
	products map[string]ports.Product
}

// NewStaticCatalog creates a catalog from the given products
func NewStaticCatalog(products []ports.Product) *StaticCatalog {
	byID := make(map[string]ports.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &StaticCatalog{products: byID}
}

// GetProductByID returns the product or a not-found error
func (c *StaticCatalog) GetProductByID(ctx context.Context, productID string) (*ports.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	product, ok := c.products[productID]
	if !ok {
		return nil, domain.NewProductNotFound(productID)
	}
	return &product, nil
}

// SetProduct inserts or replaces a product. Test and seed hook.
func (c *StaticCatalog) SetProduct(product ports.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[product.ID] = product
}

// SeedCatalog returns the default pharmacy assortment for local runs
func SeedCatalog(currency string) []ports.Product {
	return []ports.Product{
		{ID: "prod-001", Name: "Paracetamol 500mg (20 tablets)", Price: domain.Money{Amount: 2500, Currency: currency}, IsActive: true},
		{ID: "prod-002", Name: "Ibuprofen 400mg (30 tablets)", Price: domain.Money{Amount: 3200, Currency: currency}, IsActive: true},
		{ID: "prod-003", Name: "Amoxicillin 500mg (12 capsules)", Price: domain.Money{Amount: 8900, Currency: currency}, RequiresPrescription: true, IsActive: true},
		{ID: "prod-004", Name: "Vitamin D3 1000 IU (60 tablets)", Price: domain.Money{Amount: 1450, Currency: currency}, IsActive: true},
		{ID: "prod-005", Name: "Insulin glargine 100 U/ml", Price: domain.Money{Amount: 24900, Currency: currency}, RequiresPrescription: true, IsActive: true},
		{ID: "prod-006", Name: "Discontinued cough syrup", Price: domain.Money{Amount: 990, Currency: currency}, IsActive: false},
	}
}

// CachedCatalog decorates a CatalogClient with a read-through product cache.
// Cart operations hit the catalog on every add, so snapshots are cached
// with a short TTL; a stale price is bounded by that TTL.
type CachedCatalog struct {
	next  ports.CatalogClient
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedCatalog wraps a catalog client with a cache
func NewCachedCatalog(next ports.CatalogClient, c cache.Cache, ttl time.Duration, log *logger.Logger) *CachedCatalog {
	return &CachedCatalog{
		next:  next,
		cache: c,
		ttl:   ttl,
		log:   log,
	}
}

// GetProductByID returns the cached product when fresh, falling back to the
// wrapped client. Cache failures degrade to direct lookups.
func (c *CachedCatalog) GetProductByID(ctx context.Context, productID string) (*ports.Product, error) {
	key := c.cache.GenerateKey("product", productID)

	if raw, err := c.cache.Get(ctx, key); err != nil {
		c.log.WithContext(ctx).Warn("catalog cache read failed", zap.Error(err))
	} else if raw != "" {
		var product ports.Product
		if err := json.Unmarshal([]byte(raw), &product); err == nil {
			return &product, nil
		}
	}

	product, err := c.next.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(product); err == nil {
		if err := c.cache.Set(ctx, key, string(raw), c.ttl); err != nil {
			c.log.WithContext(ctx).Warn("catalog cache write failed", zap.Error(err))
		}
	}

	return product, nil
}
