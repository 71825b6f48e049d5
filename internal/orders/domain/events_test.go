package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderConfirmedEvent_SnapshotsOrder(t *testing.T) {
	now := time.Now()
	order, _ := NewOrder("order-1", "user-1", OrderStatusDraft, now)
	require.NoError(t, order.MergeItem(testItem(t, "prod-001", 2500, 5), now))

	event := NewOrderConfirmedEvent(order, "trace-123", now)

	assert.Equal(t, EventTypeOrderConfirmed, event.EventType())
	assert.Equal(t, "trace-123", event.CorrelationID())
	assert.Equal(t, now, event.OccurredAt())
	assert.Equal(t, "order-1", event.OrderID)
	assert.Equal(t, "user-1", event.UserID)
	assert.Equal(t, int64(12500), event.Total.Amount)
	assert.Equal(t, 5, event.ItemCount)
	require.Len(t, event.Items, 1)
	assert.Equal(t, int64(12500), event.Items[0].Subtotal.Amount)
}

func TestNewOrderConfirmedEvent_ImmutableAfterOrderChanges(t *testing.T) {
	now := time.Now()
	order, _ := NewOrder("order-1", "user-1", OrderStatusDraft, now)
	require.NoError(t, order.MergeItem(testItem(t, "prod-001", 2500, 5), now))

	event := NewOrderConfirmedEvent(order, "", now)

	order.ClearItems(now)
	assert.Equal(t, 5, event.ItemCount)
	assert.Equal(t, int64(12500), event.Total.Amount)
}

func TestNewOrderCancelledEvent_CarriesPreviousState(t *testing.T) {
	now := time.Now()
	order, _ := NewOrder("order-1", "user-1", OrderStatusCancelled, now)

	event := NewOrderCancelledEvent(order, OrderStatusPaid, "trace-123", now)

	assert.Equal(t, EventTypeOrderCancelled, event.EventType())
	assert.Equal(t, OrderStatusPaid, event.PreviousState)
	assert.Equal(t, "order-1", event.OrderID)
}

func TestEventCollector(t *testing.T) {
	now := time.Now()
	order, _ := NewOrder("order-1", "user-1", OrderStatusDraft, now)

	collector := NewEventCollector()
	assert.Empty(t, collector.Events())

	collector.Record(NewOrderConfirmedEvent(order, "", now))
	collector.Record(NewOrderCancelledEvent(order, OrderStatusConfirmed, "", now))

	events := collector.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeOrderConfirmed, events[0].EventType())
	assert.Equal(t, EventTypeOrderCancelled, events[1].EventType())

	// returned slice is a copy
	events[0] = events[1]
	assert.Equal(t, EventTypeOrderConfirmed, collector.Events()[0].EventType())
}
