package events

import "time"

// Exchange names
const (
	ExchangeOrders = "orders.events"
)

// Routing keys
const (
	RoutingKeyOrderConfirmed = "order.confirmed"
	RoutingKeyOrderCancelled = "order.cancelled"
)

// MoneyPayload is the wire representation of a monetary amount
type MoneyPayload struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// ItemPayload summarizes a single order line in an event
type ItemPayload struct {
	ProductID   string       `json:"product_id"`
	ProductName string       `json:"product_name"`
	Quantity    int          `json:"quantity"`
	Subtotal    MoneyPayload `json:"subtotal"`
}

// OrderConfirmedEvent is published when a draft order is confirmed
type OrderConfirmedEvent struct {
	Version   string                `json:"version"`
	EventType string                `json:"event_type"`
	Timestamp time.Time             `json:"timestamp"`
	TraceID   string                `json:"trace_id"`
	Payload   OrderConfirmedPayload `json:"payload"`
}

// OrderConfirmedPayload carries the finalized order snapshot
type OrderConfirmedPayload struct {
	OrderID     string        `json:"order_id"`
	UserID      string        `json:"user_id"`
	Total       MoneyPayload  `json:"total"`
	ItemCount   int           `json:"item_count"`
	Items       []ItemPayload `json:"items"`
	ConfirmedAt time.Time     `json:"confirmed_at"`
}

// NewOrderConfirmedEvent creates a new OrderConfirmedEvent
func NewOrderConfirmedEvent(payload OrderConfirmedPayload, traceID string) *OrderConfirmedEvent {
	return &OrderConfirmedEvent{
		Version:   "1.0",
		EventType: RoutingKeyOrderConfirmed,
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload:   payload,
	}
}

// OrderCancelledEvent is published when an order is cancelled
type OrderCancelledEvent struct {
	Version   string                `json:"version"`
	EventType string                `json:"event_type"`
	Timestamp time.Time             `json:"timestamp"`
	TraceID   string                `json:"trace_id"`
	Payload   OrderCancelledPayload `json:"payload"`
}

// OrderCancelledPayload carries the order snapshot at cancellation time
type OrderCancelledPayload struct {
	OrderID        string       `json:"order_id"`
	UserID         string       `json:"user_id"`
	PreviousStatus string       `json:"previous_status"`
	Total          MoneyPayload `json:"total"`
	ItemCount      int          `json:"item_count"`
	CancelledAt    time.Time    `json:"cancelled_at"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(payload OrderCancelledPayload, traceID string) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		Version:   "1.0",
		EventType: RoutingKeyOrderCancelled,
		Timestamp: time.Now(),
		TraceID:   traceID,
		Payload:   payload,
	}
}
