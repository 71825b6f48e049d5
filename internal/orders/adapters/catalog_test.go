package adapters

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacart/internal/orders/domain"
	"pharmacart/internal/orders/ports"
	"pharmacart/pkg/errors"
	"pharmacart/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New("test", "error", "console")
}

// fakeCache is an in-memory stand-in for the redis cache
type fakeCache struct {
	entries map[string]string
	fail    bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.fail {
		return errors.NewInternal("cache down", nil)
	}
	c.entries[key] = fmt.Sprint(value)
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	if c.fail {
		return "", errors.NewInternal("cache down", nil)
	}
	return c.entries[key], nil
}

func (c *fakeCache) GenerateKey(operation, key string) string {
	return "test:" + operation + ":" + key
}

func TestStaticCatalog_GetProductByID(t *testing.T) {
	catalog := NewStaticCatalog(SeedCatalog("EUR"))

	product, err := catalog.GetProductByID(context.Background(), "prod-001")
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 500mg (20 tablets)", product.Name)
	assert.Equal(t, int64(2500), product.Price.Amount)
	assert.True(t, product.IsActive)

	_, err = catalog.GetProductByID(context.Background(), "prod-404")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestStaticCatalog_SetProduct(t *testing.T) {
	catalog := NewStaticCatalog(nil)
	catalog.SetProduct(ports.Product{ID: "p1", Name: "Test", Price: domain.Money{Amount: 100, Currency: "EUR"}, IsActive: true})

	product, err := catalog.GetProductByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Test", product.Name)
}

func TestCachedCatalog_ReadThrough(t *testing.T) {
	inner := NewStaticCatalog(SeedCatalog("EUR"))
	c := newFakeCache()
	catalog := NewCachedCatalog(inner, c, time.Minute, testLogger())
	ctx := context.Background()

	first, err := catalog.GetProductByID(ctx, "prod-001")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), first.Price.Amount)

	// the catalog changes, but the cache still serves the old snapshot
	inner.SetProduct(ports.Product{
		ID:       "prod-001",
		Name:     "Paracetamol 500mg (20 tablets)",
		Price:    domain.Money{Amount: 9999, Currency: "EUR"},
		IsActive: true,
	})

	second, err := catalog.GetProductByID(ctx, "prod-001")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), second.Price.Amount)
}

func TestCachedCatalog_DegradesWhenCacheFails(t *testing.T) {
	inner := NewStaticCatalog(SeedCatalog("EUR"))
	c := newFakeCache()
	c.fail = true
	catalog := NewCachedCatalog(inner, c, time.Minute, testLogger())

	product, err := catalog.GetProductByID(context.Background(), "prod-001")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), product.Price.Amount)
}

func TestCachedCatalog_MissPropagatesNotFound(t *testing.T) {
	catalog := NewCachedCatalog(NewStaticCatalog(nil), newFakeCache(), time.Minute, testLogger())

	_, err := catalog.GetProductByID(context.Background(), "prod-404")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}
