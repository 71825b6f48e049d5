package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacart/internal/orders/adapters"
	"pharmacart/internal/orders/domain"
	"pharmacart/pkg/errors"
)

type orderFixture struct {
	uc        *OrderUseCase
	repo      *adapters.MemoryOrderRepository
	publisher *recordingPublisher
}

func newOrderFixture() *orderFixture {
	repo := adapters.NewMemoryOrderRepository()
	publisher := &recordingPublisher{}
	return &orderFixture{
		uc:        NewOrderUseCase(repo, publisher, testLogger()),
		repo:      repo,
		publisher: publisher,
	}
}

func (f *orderFixture) seedOrder(t *testing.T, userID string, status domain.OrderStatus) *domain.Order {
	t.Helper()
	ctx := context.Background()

	order, err := f.repo.Create(ctx, userID, domain.OrderStatusCreated)
	require.NoError(t, err)

	if status != domain.OrderStatusCreated {
		order, err = f.repo.UpdateStatus(ctx, order.ID, domain.OrderStatusCreated, status)
		require.NoError(t, err)
	}
	return order
}

func TestConfirmOrder_FromCreated(t *testing.T) {
	f := newOrderFixture()
	order := f.seedOrder(t, "user-1", domain.OrderStatusCreated)

	out, err := f.uc.ConfirmOrder(context.Background(), OrderInput{OrderID: order.ID, UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, out.Order.Status)
	require.Len(t, out.Events, 1)
	require.Len(t, f.publisher.confirmed, 1)
}

func TestConfirmOrder_IllegalTransition(t *testing.T) {
	f := newOrderFixture()
	order := f.seedOrder(t, "user-1", domain.OrderStatusPaid)

	_, err := f.uc.ConfirmOrder(context.Background(), OrderInput{OrderID: order.ID, UserID: "user-1"})
	assert.True(t, errors.Is(err, errors.CodeConflict))
}

func TestPayForOrder(t *testing.T) {
	f := newOrderFixture()
	order := f.seedOrder(t, "user-1", domain.OrderStatusConfirmed)

	out, err := f.uc.PayForOrder(context.Background(), OrderInput{OrderID: order.ID, UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, out.Order.Status)
}

func TestPayForOrder_NotConfirmed(t *testing.T) {
	f := newOrderFixture()
	order := f.seedOrder(t, "user-1", domain.OrderStatusCreated)

	_, err := f.uc.PayForOrder(context.Background(), OrderInput{OrderID: order.ID, UserID: "user-1"})
	assert.True(t, errors.Is(err, errors.CodeConflict))
}

func TestPayForOrder_AlreadyPaid(t *testing.T) {
	f := newOrderFixture()
	order := f.seedOrder(t, "user-1", domain.OrderStatusPaid)

	_, err := f.uc.PayForOrder(context.Background(), OrderInput{OrderID: order.ID, UserID: "user-1"})
	assert.True(t, errors.Is(err, errors.CodeConflict))
}

func TestCancelOrder_EmitsEventWithPreviousState(t *testing.T) {
	f := newOrderFixture()
	order := f.seedOrder(t, "user-1", domain.OrderStatusPaid)

	out, err := f.uc.CancelOrder(context.Background(), OrderInput{OrderID: order.ID, UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, out.Order.Status)

	require.Len(t, out.Events, 1)
	cancelled, ok := out.Events[0].(domain.OrderCancelledEvent)
	require.True(t, ok)
	assert.Equal(t, domain.OrderStatusPaid, cancelled.PreviousState)
	require.Len(t, f.publisher.cancelled, 1)
}

func TestCancelOrder_TerminalStatus(t *testing.T) {
	f := newOrderFixture()

	for _, status := range []domain.OrderStatus{domain.OrderStatusDelivered, domain.OrderStatusCancelled} {
		order := f.seedOrder(t, "user-1", status)

		_, err := f.uc.CancelOrder(context.Background(), OrderInput{OrderID: order.ID, UserID: "user-1"})
		assert.True(t, errors.Is(err, errors.CodeConflict), "status %s", status)
	}
}

func TestLifecycle_UnknownOrder(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.ConfirmOrder(context.Background(), OrderInput{OrderID: "nope", UserID: "user-1"})
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestLifecycle_ForeignOrder(t *testing.T) {
	f := newOrderFixture()
	order := f.seedOrder(t, "user-1", domain.OrderStatusConfirmed)

	_, err := f.uc.PayForOrder(context.Background(), OrderInput{OrderID: order.ID, UserID: "user-2"})
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	// the rejection reveals neither the order id nor the owner
	assert.NotContains(t, err.Error(), order.ID)
	assert.NotContains(t, err.Error(), "user-1")
}
