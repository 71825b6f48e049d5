package adapters

import (
	"context"

	"pharmacart/internal/orders/domain"
	"pharmacart/pkg/events"
	"pharmacart/pkg/logger"
	"pharmacart/pkg/rabbitmq"
)

// RabbitMQPublisher pushes collected domain events onto the orders exchange
type RabbitMQPublisher struct {
	publisher *rabbitmq.Publisher
	log       *logger.Logger
}

// NewRabbitMQPublisher creates a new RabbitMQ event publisher
func NewRabbitMQPublisher(publisher *rabbitmq.Publisher, log *logger.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		publisher: publisher,
		log:       log,
	}
}

// PublishOrderConfirmed publishes an order confirmed event
func (p *RabbitMQPublisher) PublishOrderConfirmed(ctx context.Context, event domain.OrderConfirmedEvent) error {
	wire := events.NewOrderConfirmedEvent(events.OrderConfirmedPayload{
		OrderID:     event.OrderID,
		UserID:      event.UserID,
		Total:       toMoneyPayload(event.Total),
		ItemCount:   event.ItemCount,
		Items:       toItemPayloads(event.Items),
		ConfirmedAt: event.OccurredAt(),
	}, event.CorrelationID())

	return p.publisher.Publish(ctx, events.RoutingKeyOrderConfirmed, wire)
}

// PublishOrderCancelled publishes an order cancelled event
func (p *RabbitMQPublisher) PublishOrderCancelled(ctx context.Context, event domain.OrderCancelledEvent) error {
	wire := events.NewOrderCancelledEvent(events.OrderCancelledPayload{
		OrderID:        event.OrderID,
		UserID:         event.UserID,
		PreviousStatus: string(event.PreviousState),
		Total:          toMoneyPayload(event.Total),
		ItemCount:      event.ItemCount,
		CancelledAt:    event.OccurredAt(),
	}, event.CorrelationID())

	return p.publisher.Publish(ctx, events.RoutingKeyOrderCancelled, wire)
}

func toMoneyPayload(m domain.Money) events.MoneyPayload {
	return events.MoneyPayload{Amount: m.Amount, Currency: m.Currency}
}

func toItemPayloads(items []domain.ItemSummary) []events.ItemPayload {
	out := make([]events.ItemPayload, len(items))
	for i, item := range items {
		out[i] = events.ItemPayload{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Subtotal:    toMoneyPayload(item.Subtotal),
		}
	}
	return out
}
