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

// CartUseCase is the command layer over DRAFT orders. A user has at most
// one draft at any time; every mutation re-resolves the draft and
// re-verifies ownership and mutability before touching storage.
type CartUseCase struct {
	repo      ports.OrderRepository
	catalog   ports.CatalogClient
	publisher ports.EventPublisher
	log       *logger.Logger
}

// NewCartUseCase creates a new cart use case
func NewCartUseCase(
	repo ports.OrderRepository,
	catalog ports.CatalogClient,
	publisher ports.EventPublisher,
	log *logger.Logger,
) *CartUseCase {
	return &CartUseCase{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		log:       log,
	}
}

// CartOutput is the result of cart commands
type CartOutput struct {
	Order  *domain.Order
	Events []domain.DomainEvent
}

// ConfirmCartOutput is the result of the checkout protocol
type ConfirmCartOutput struct {
	Order  *domain.Order
	Events []domain.DomainEvent

	// RequiresPrescription routes the user into the compliance flow after
	// checkout. It never blocks the confirmation itself (ADR-0055).
	RequiresPrescription bool
}

// AddItemInput is the input for AddItemToCart
type AddItemInput struct {
	UserID    string
	ProductID string
	Quantity  int
}

// ItemInput addresses one line of the caller's cart
type ItemInput struct {
	UserID    string
	ProductID string
}

// UpdateQuantityInput is the input for UpdateItemQuantity
type UpdateQuantityInput struct {
	UserID    string
	ProductID string
	Quantity  int
}

// GetCart returns the user's draft order, or a nil order when there is none.
// It never creates one.
func (uc *CartUseCase) GetCart(ctx context.Context, userID string) (*CartOutput, error) {
	draft, err := uc.repo.GetDraftByUserID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load cart")
	}
	return &CartOutput{Order: draft}, nil
}

// CreateDraftOrder returns the user's existing draft or creates one.
// Calling it twice in a row yields the same order.
func (uc *CartUseCase) CreateDraftOrder(ctx context.Context, userID string) (*CartOutput, error) {
	draft, err := uc.repo.GetDraftByUserID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load cart")
	}
	if draft != nil {
		return &CartOutput{Order: draft}, nil
	}

	draft, err = uc.repo.Create(ctx, userID, domain.OrderStatusDraft)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create draft order")
	}

	uc.log.WithContext(ctx).Info("draft order created",
		zap.String("order_id", draft.ID),
		zap.String("user_id", draft.UserID),
	)

	return &CartOutput{Order: draft}, nil
}

// AddItemToCart validates the quantity, snapshots the product's current name
// and price from the catalog, and merges the line into the user's draft,
// creating the draft first when absent. Adding the same product twice sums
// the quantities on one line.
func (uc *CartUseCase) AddItemToCart(ctx context.Context, input AddItemInput) (*CartOutput, error) {
	if input.Quantity <= 0 {
		return nil, domain.NewInvalidQuantity(input.Quantity)
	}

	product, err := uc.catalog.GetProductByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, domain.NewProductNotFound(input.ProductID)
	}

	draftOut, err := uc.CreateDraftOrder(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	draft := draftOut.Order

	item, err := domain.NewOrderItem(product.ID, product.Name, product.Price, input.Quantity, time.Now())
	if err != nil {
		return nil, err
	}

	order, err := uc.repo.AddItem(ctx, draft.ID, item)
	if err != nil {
		return nil, errors.Wrap(err, "failed to add item to cart")
	}

	uc.log.WithContext(ctx).Info("item added to cart",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.String("product_id", item.ProductID),
		zap.Int("quantity", input.Quantity),
	)

	return &CartOutput{Order: order}, nil
}

// RemoveItemFromCart deletes one line from the caller's draft
func (uc *CartUseCase) RemoveItemFromCart(ctx context.Context, input ItemInput) (*CartOutput, error) {
	draft, err := uc.requireDraft(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if _, found := draft.FindItem(input.ProductID); !found {
		return nil, domain.NewOrderItemNotFound(input.ProductID)
	}

	order, err := uc.repo.RemoveItem(ctx, draft.ID, input.ProductID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to remove item from cart")
	}

	return &CartOutput{Order: order}, nil
}

// UpdateItemQuantity replaces the quantity on one line of the caller's draft
func (uc *CartUseCase) UpdateItemQuantity(ctx context.Context, input UpdateQuantityInput) (*CartOutput, error) {
	if input.Quantity <= 0 {
		return nil, domain.NewInvalidQuantity(input.Quantity)
	}

	draft, err := uc.requireDraft(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if _, found := draft.FindItem(input.ProductID); !found {
		return nil, domain.NewOrderItemNotFound(input.ProductID)
	}

	order, err := uc.repo.UpdateItemQuantity(ctx, draft.ID, input.ProductID, input.Quantity)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update item quantity")
	}

	return &CartOutput{Order: order}, nil
}

// ClearCart empties the caller's draft without abandoning it
func (uc *CartUseCase) ClearCart(ctx context.Context, userID string) (*CartOutput, error) {
	draft, err := uc.requireDraft(ctx, userID)
	if err != nil {
		return nil, err
	}

	order, err := uc.repo.ClearItems(ctx, draft.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to clear cart")
	}

	return &CartOutput{Order: order}, nil
}

// AbandonCart cancels the caller's draft, freeing the draft slot for a new
// cart. Emits OrderCancelled.
func (uc *CartUseCase) AbandonCart(ctx context.Context, userID string) (*CartOutput, error) {
	draft, err := uc.requireDraft(ctx, userID)
	if err != nil {
		return nil, err
	}

	previous := draft.Status
	order, err := uc.repo.UpdateStatus(ctx, draft.ID, previous, domain.OrderStatusCancelled)
	if err != nil {
		return nil, errors.Wrap(err, "failed to abandon cart")
	}

	collector := domain.NewEventCollector()
	event := domain.NewOrderCancelledEvent(order, previous, logger.GetTraceID(ctx), time.Now())
	collector.Record(event)

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderCancelled(ctx, event); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order cancelled event",
				zap.Error(err),
				zap.String("order_id", order.ID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("cart abandoned",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
	)

	return &CartOutput{Order: order, Events: collector.Events()}, nil
}

// ConfirmDraftOrder is the checkout protocol: it commits the caller's draft
// as a CONFIRMED order with a finalized total and emits OrderConfirmed.
// Confirmation is one-shot; once the draft slot is empty a second call
// fails with the no-active-cart error.
func (uc *CartUseCase) ConfirmDraftOrder(ctx context.Context, userID string) (*ConfirmCartOutput, error) {
	draft, err := uc.requireDraft(ctx, userID)
	if err != nil {
		return nil, err
	}

	if draft.ItemCount() == 0 {
		return nil, domain.NewEmptyCart()
	}

	// Prescription items flag the result for the post-checkout compliance
	// flow. They never block the confirmation itself (ADR-0055).
	requiresPrescription := uc.anyItemRequiresPrescription(ctx, draft)

	validation := domain.ValidateTransition(draft.Status, domain.OrderStatusConfirmed)
	if !validation.Valid {
		return nil, domain.NewInvalidOrderStateTransition(draft.Status, domain.OrderStatusConfirmed, validation.Allowed)
	}

	// The guarded write decides the race: a second caller holding the same
	// draft view loses here with a conflict, so confirmation stays one-shot.
	order, err := uc.repo.UpdateStatus(ctx, draft.ID, draft.Status, domain.OrderStatusConfirmed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to confirm order")
	}

	collector := domain.NewEventCollector()
	event := domain.NewOrderConfirmedEvent(order, logger.GetTraceID(ctx), time.Now())
	collector.Record(event)

	if uc.publisher != nil {
		if err := uc.publisher.PublishOrderConfirmed(ctx, event); err != nil {
			uc.log.WithContext(ctx).Error("failed to publish order confirmed event",
				zap.Error(err),
				zap.String("order_id", order.ID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order confirmed",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.Int64("total", order.Total().Amount),
		zap.Int("item_count", order.ItemCount()),
		zap.Bool("requires_prescription", requiresPrescription),
	)

	return &ConfirmCartOutput{
		Order:                order,
		Events:               collector.Events(),
		RequiresPrescription: requiresPrescription,
	}, nil
}

// requireDraft resolves the caller's draft and re-verifies ownership and
// mutability. A cart confirmed or cancelled by a racing request is gone
// from the draft slot, so stale callers fail closed here.
func (uc *CartUseCase) requireDraft(ctx context.Context, userID string) (*domain.Order, error) {
	draft, err := uc.repo.GetDraftByUserID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load cart")
	}
	if draft == nil {
		return nil, domain.NewNoDraftOrder()
	}
	if !draft.OwnedBy(userID) {
		return nil, domain.NewUnauthorizedOrderAccess()
	}
	if !domain.CanModifyItems(draft.Status) {
		return nil, domain.NewNoDraftOrder()
	}
	return draft, nil
}

func (uc *CartUseCase) anyItemRequiresPrescription(ctx context.Context, order *domain.Order) bool {
	for _, item := range order.Items {
		product, err := uc.catalog.GetProductByID(ctx, item.ProductID)
		if err != nil {
			// Products delisted since they were added cannot veto checkout
			uc.log.WithContext(ctx).Warn("catalog lookup failed during checkout",
				zap.Error(err),
				zap.String("product_id", item.ProductID),
			)
			continue
		}
		if product.RequiresPrescription {
			return true
		}
	}
	return false
}
