package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pharmacart/internal/orders/domain"
	"pharmacart/internal/orders/ports"
	"pharmacart/pkg/errors"
	"pharmacart/pkg/logger"
)

// OrderUseCase drives the post-confirmation lifecycle: confirm, pay, cancel.
// Every operation re-validates ownership, then state machine legality,
// before mutating.
type OrderUseCase struct {
	repo      ports.OrderRepository
	publisher ports.EventPublisher
	log       *logger.Logger
}

// NewOrderUseCase creates a new order use case
func NewOrderUseCase(repo ports.OrderRepository, publisher ports.EventPublisher, log *logger.Logger) *OrderUseCase {
	return &OrderUseCase{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// OrderInput addresses one order on behalf of its owner
type OrderInput struct {
	OrderID string
	UserID  string
}

// OrderOutput is the result of lifecycle commands
type OrderOutput struct {
	Order  *domain.Order
	Events []domain.DomainEvent
}

// ConfirmOrder moves a placed order from CREATED to CONFIRMED. This is the
// path for flows that place an order before confirming it, distinct from
// confirming a cart directly.
func (uc *OrderUseCase) ConfirmOrder(ctx context.Context, input OrderInput) (*OrderOutput, error) {
	order, err := uc.resolveOwned(ctx, input)
	if err != nil {
		return nil, err
	}

	validation := domain.ValidateTransition(order.Status, domain.OrderStatusConfirmed)
	if !validation.Valid {
		return nil, domain.NewInvalidOrderStateTransition(order.Status, domain.OrderStatusConfirmed, validation.Allowed)
	}

	updated, err := uc.repo.UpdateStatus(ctx, order.ID, order.Status, domain.OrderStatusConfirmed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to confirm order")
	}

	collector := domain.NewEventCollector()
	event := domain.NewOrderConfirmedEvent(updated, logger.GetTraceID(ctx), time.Now())
	collector.Record(event)

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderConfirmed(ctx, event); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order confirmed event",
				zap.Error(err),
				zap.String("order_id", updated.ID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order confirmed",
		zap.String("order_id", updated.ID),
		zap.String("user_id", updated.UserID),
	)

	return &OrderOutput{Order: updated, Events: collector.Events()}, nil
}

// PayForOrder moves a CONFIRMED order to PAID. Any other current status
// fails with the order-not-confirmed error.
func (uc *OrderUseCase) PayForOrder(ctx context.Context, input OrderInput) (*OrderOutput, error) {
	order, err := uc.resolveOwned(ctx, input)
	if err != nil {
		return nil, err
	}

	if order.Status != domain.OrderStatusConfirmed {
		return nil, domain.NewOrderNotConfirmed(order.Status)
	}

	updated, err := uc.repo.UpdateStatus(ctx, order.ID, domain.OrderStatusConfirmed, domain.OrderStatusPaid)
	if err != nil {
		return nil, errors.Wrap(err, "failed to mark order paid")
	}

	uc.log.WithContext(ctx).Info("order paid",
		zap.String("order_id", updated.ID),
		zap.String("user_id", updated.UserID),
		zap.Int64("total", updated.Total().Amount),
	)

	return &OrderOutput{Order: updated}, nil
}

// CancelOrder cancels an order from any non-terminal status and emits
// OrderCancelled with the state it came from.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, input OrderInput) (*OrderOutput, error) {
	order, err := uc.resolveOwned(ctx, input)
	if err != nil {
		return nil, err
	}

	if order.Status.IsTerminal() {
		return nil, domain.NewOrderTerminalState(order.Status)
	}
	if !domain.CanCancel(order.Status) {
		return nil, domain.NewOrderCannotBeCancelled(order.Status)
	}

	previous := order.Status
	updated, err := uc.repo.UpdateStatus(ctx, order.ID, previous, domain.OrderStatusCancelled)
	if err != nil {
		return nil, errors.Wrap(err, "failed to cancel order")
	}

	collector := domain.NewEventCollector()
	event := domain.NewOrderCancelledEvent(updated, previous, logger.GetTraceID(ctx), time.Now())
	collector.Record(event)

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderCancelled(ctx, event); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order cancelled event",
				zap.Error(err),
				zap.String("order_id", updated.ID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order cancelled",
		zap.String("order_id", updated.ID),
		zap.String("user_id", updated.UserID),
		zap.String("previous_status", string(previous)),
	)

	return &OrderOutput{Order: updated, Events: collector.Events()}, nil
}

func (uc *OrderUseCase) resolveOwned(ctx context.Context, input OrderInput) (*domain.Order, error) {
	order, err := uc.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load order")
	}
	if order == nil {
		return nil, domain.NewOrderNotFound()
	}
	if !order.OwnedBy(input.UserID) {
		return nil, domain.NewUnauthorizedOrderAccess()
	}
	return order, nil
}
