package domain

import "time"

// Event type names
const (
	EventTypeOrderConfirmed = "order.confirmed"
	EventTypeOrderCancelled = "order.cancelled"
)

// DomainEvent is an immutable fact recorded during a state transition.
// Events are never retracted.
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
	CorrelationID() string
}

// EventMeta is the common header embedded in every event
type EventMeta struct {
	Type        string    `json:"type"`
	At          time.Time `json:"occurred_at"`
	Correlation string    `json:"correlation_id,omitempty"`
}

func (m EventMeta) EventType() string     { return m.Type }
func (m EventMeta) OccurredAt() time.Time { return m.At }
func (m EventMeta) CorrelationID() string { return m.Correlation }

// ItemSummary is the per-line snapshot carried inside events
type ItemSummary struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Subtotal    Money  `json:"subtotal"`
}

// OrderConfirmedEvent records a successful checkout with the finalized snapshot
type OrderConfirmedEvent struct {
	EventMeta
	OrderID   string        `json:"order_id"`
	UserID    string        `json:"user_id"`
	Total     Money         `json:"total"`
	ItemCount int           `json:"item_count"`
	Items     []ItemSummary `json:"items"`
}

// NewOrderConfirmedEvent snapshots the order at the moment of confirmation
func NewOrderConfirmedEvent(order *Order, correlationID string, now time.Time) OrderConfirmedEvent {
	return OrderConfirmedEvent{
		EventMeta: EventMeta{
			Type:        EventTypeOrderConfirmed,
			At:          now,
			Correlation: correlationID,
		},
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total(),
		ItemCount: order.ItemCount(),
		Items:     summarizeItems(order.Items),
	}
}

// OrderCancelledEvent records a cancellation and the state it came from
type OrderCancelledEvent struct {
	EventMeta
	OrderID       string        `json:"order_id"`
	UserID        string        `json:"user_id"`
	PreviousState OrderStatus   `json:"previous_state"`
	Total         Money         `json:"total"`
	ItemCount     int           `json:"item_count"`
	Items         []ItemSummary `json:"items"`
}

// NewOrderCancelledEvent snapshots the order at the moment of cancellation
func NewOrderCancelledEvent(order *Order, previous OrderStatus, correlationID string, now time.Time) OrderCancelledEvent {
	return OrderCancelledEvent{
		EventMeta: EventMeta{
			Type:        EventTypeOrderCancelled,
			At:          now,
			Correlation: correlationID,
		},
		OrderID:       order.ID,
		UserID:        order.UserID,
		PreviousState: previous,
		Total:         order.Total(),
		ItemCount:     order.ItemCount(),
		Items:         summarizeItems(order.Items),
	}
}

func summarizeItems(items []OrderItem) []ItemSummary {
	summaries := make([]ItemSummary, len(items))
	for i, item := range items {
		summaries[i] = ItemSummary{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal(),
		}
	}
	return summaries
}

// EventCollector is an append-only buffer scoped to a single use-case call.
// It is not an event log: the use case hands the collected facts back to
// its caller, and a future iteration could swap the hand-off for a broker
// publish without touching the service contract.
type EventCollector struct {
	events []DomainEvent
}

// NewEventCollector creates an empty collector
func NewEventCollector() *EventCollector {
	return &EventCollector{}
}

// Record appends an event
func (c *EventCollector) Record(event DomainEvent) {
	c.events = append(c.events, event)
}

// Events returns the collected events in emission order
func (c *EventCollector) Events() []DomainEvent {
	out := make([]DomainEvent, len(c.events))
	copy(out, c.events)
	return out
}
