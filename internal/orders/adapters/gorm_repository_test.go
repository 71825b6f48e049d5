package adapters

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pharmacart/internal/orders/domain"
	"pharmacart/internal/orders/ports"
	"pharmacart/pkg/errors"
)

func openTestRepo(t *testing.T) *GormOrderRepository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "orders.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	repo := NewGormOrderRepository(db)
	require.NoError(t, repo.Migrate())
	return repo
}

func TestGormRepo_CreateAndGet(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "user-1", domain.OrderStatusDraft)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	loaded, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, created.ID, loaded.ID)
	assert.Equal(t, "user-1", loaded.UserID)
	assert.Equal(t, domain.OrderStatusDraft, loaded.Status)
	assert.Empty(t, loaded.Items)

	missing, err := repo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGormRepo_OneDraftPerUser(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "user-1", domain.OrderStatusDraft)
	require.NoError(t, err)

	// the partial unique index rejects a second draft
	_, err = repo.Create(ctx, "user-1", domain.OrderStatusDraft)
	assert.True(t, errors.Is(err, errors.CodeConflict))

	// other statuses and other users are unaffected
	_, err = repo.Create(ctx, "user-1", domain.OrderStatusConfirmed)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "user-2", domain.OrderStatusDraft)
	require.NoError(t, err)
}

func TestGormRepo_DraftSlotFreesAfterStatusChange(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, "user-1", domain.OrderStatusDraft)
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, first.ID, domain.OrderStatusDraft, domain.OrderStatusConfirmed)
	require.NoError(t, err)

	second, err := repo.Create(ctx, "user-1", domain.OrderStatusDraft)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestGormRepo_AddItem_MergesQuantities(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	order, err := repo.Create(ctx, "user-1", domain.OrderStatusDraft)
	require.NoError(t, err)

	_, err = repo.AddItem(ctx, order.ID, repoItem(t, "prod-001", 2500, 2))
	require.NoError(t, err)
	updated, err := repo.AddItem(ctx, order.ID, repoItem(t, "prod-001", 9900, 3))
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.Equal(t, 5, updated.Items[0].Quantity)
	assert.Equal(t, int64(2500), updated.Items[0].UnitPrice.Amount)
	assert.Equal(t, "EUR", updated.Items[0].UnitPrice.Currency)
}

func TestGormRepo_AddItem_UnknownOrder(t *testing.T) {
	repo := openTestRepo(t)

	_, err := repo.AddItem(context.Background(), "nope", repoItem(t, "prod-001", 2500, 1))
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestGormRepo_UpdateRemoveClearItems(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	order, err := repo.Create(ctx, "user-1", domain.OrderStatusDraft)
	require.NoError(t, err)
	_, err = repo.AddItem(ctx, order.ID, repoItem(t, "prod-001", 2500, 2))
	require.NoError(t, err)
	_, err = repo.AddItem(ctx, order.ID, repoItem(t, "prod-002", 1450, 1))
	require.NoError(t, err)

	updated, err := repo.UpdateItemQuantity(ctx, order.ID, "prod-001", 7)
	require.NoError(t, err)
	item, found := updated.FindItem("prod-001")
	require.True(t, found)
	assert.Equal(t, 7, item.Quantity)

	_, err = repo.UpdateItemQuantity(ctx, order.ID, "prod-404", 1)
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	updated, err = repo.RemoveItem(ctx, order.ID, "prod-002")
	require.NoError(t, err)
	assert.Len(t, updated.Items, 1)

	_, err = repo.RemoveItem(ctx, order.ID, "prod-002")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	updated, err = repo.ClearItems(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Items)
}

func TestGormRepo_GetItem(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	order, err := repo.Create(ctx, "user-1", domain.OrderStatusDraft)
	require.NoError(t, err)
	_, err = repo.AddItem(ctx, order.ID, repoItem(t, "prod-001", 2500, 2))
	require.NoError(t, err)

	item, err := repo.GetItem(ctx, order.ID, "prod-001")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, int64(2500), item.UnitPrice.Amount)

	item, err = repo.GetItem(ctx, order.ID, "prod-404")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestGormRepo_GetDraftByUserID(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	draft, err := repo.GetDraftByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, draft)

	created, err := repo.Create(ctx, "user-1", domain.OrderStatusDraft)
	require.NoError(t, err)
	_, err = repo.AddItem(ctx, created.ID, repoItem(t, "prod-001", 2500, 2))
	require.NoError(t, err)

	draft, err = repo.GetDraftByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, created.ID, draft.ID)
	assert.Len(t, draft.Items, 1)
}

func TestGormRepo_Paginated(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "user-1", domain.OrderStatusDraft)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, "user-1", domain.OrderStatusConfirmed)
		require.NoError(t, err)
	}

	first, err := repo.GetByUserIDPaginated(ctx, "user-1", ports.Pagination{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, first.Items, 3)
	assert.Equal(t, int64(5), first.Total)
	assert.Equal(t, 2, first.TotalPages)
	assert.True(t, first.HasNextPage)
	assert.False(t, first.HasPreviousPage)

	second, err := repo.GetByUserIDPaginated(ctx, "user-1", ports.Pagination{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, second.Items, 2)
	assert.False(t, second.HasNextPage)
	assert.True(t, second.HasPreviousPage)

	for _, order := range append(first.Items, second.Items...) {
		assert.NotEqual(t, domain.OrderStatusDraft, order.Status)
	}
}

func TestGormRepo_UpdateStatus(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	order, err := repo.Create(ctx, "user-1", domain.OrderStatusDraft)
	require.NoError(t, err)

	updated, err := repo.UpdateStatus(ctx, order.ID, domain.OrderStatusDraft, domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, updated.Status)

	_, err = repo.UpdateStatus(ctx, "nope", domain.OrderStatusDraft, domain.OrderStatusConfirmed)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestGormRepo_UpdateStatus_StaleFromLoses(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	order, err := repo.Create(ctx, "user-1", domain.OrderStatusDraft)
	require.NoError(t, err)

	// the guarded UPDATE lets exactly one of two racing transitions through
	_, err = repo.UpdateStatus(ctx, order.ID, domain.OrderStatusDraft, domain.OrderStatusConfirmed)
	require.NoError(t, err)

	_, err = repo.UpdateStatus(ctx, order.ID, domain.OrderStatusDraft, domain.OrderStatusConfirmed)
	assert.True(t, errors.Is(err, errors.CodeConflict))

	stored, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, stored.Status)
}

func TestGormRepo_AddItem_RejectsCurrencyMismatch(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	order, err := repo.Create(ctx, "user-1", domain.OrderStatusDraft)
	require.NoError(t, err)
	_, err = repo.AddItem(ctx, order.ID, repoItem(t, "prod-001", 2500, 2))
	require.NoError(t, err)

	price, _ := domain.NewMoney(1000, "USD")
	foreign, err := domain.NewOrderItem("prod-002", "Product prod-002", price, 1, time.Now())
	require.NoError(t, err)

	_, err = repo.AddItem(ctx, order.ID, foreign)
	assert.True(t, errors.Is(err, errors.CodeValidation))

	// the mismatched line was not persisted
	loaded, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Items, 1)
}
