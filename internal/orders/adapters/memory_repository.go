package adapters

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pharmacart/internal/orders/domain"
	"pharmacart/internal/orders/ports"
	apperrors "pharmacart/pkg/errors"
)

// MemoryOrderRepository is the reference OrderRepository: a map keyed by
// order id with linear scans for user-scoped queries. All access is
// serialized on a mutex, which also makes the one-draft-per-user check
// atomic with draft creation. Every aggregate crossing the boundary is
// deep-copied, so callers never share storage state.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

// NewMemoryOrderRepository creates an empty in-memory repository
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[string]*domain.Order),
	}
}

// Create creates a new order. Creating a second DRAFT for the same user is
// a conflict; the service layer's idempotent draft lookup normally prevents
// it, the repository makes it impossible.
func (r *MemoryOrderRepository) Create(ctx context.Context, userID string, status domain.OrderStatus) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if status == domain.OrderStatusDraft {
		for _, o := range r.orders {
			if o.UserID == userID && o.Status == domain.OrderStatusDraft {
				return nil, apperrors.NewConflict("user already has a draft order")
			}
		}
	}

	order, err := domain.NewOrder(uuid.New().String(), userID, status, time.Now())
	if err != nil {
		return nil, err
	}

	r.orders[order.ID] = order
	return order.Clone(), nil
}

// GetByID retrieves an order, nil if absent
func (r *MemoryOrderRepository) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, nil
	}
	return order.Clone(), nil
}

// GetByUserID retrieves a user's orders, optionally filtered by status
func (r *MemoryOrderRepository) GetByUserID(ctx context.Context, userID string, status *domain.OrderStatus) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Order
	for _, order := range r.orders {
		if order.UserID != userID {
			continue
		}
		if status != nil && order.Status != *status {
			continue
		}
		result = append(result, order.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// GetByUserIDPaginated pages through a user's non-draft orders, most recent
// first. Drafts are carts, not history.
func (r *MemoryOrderRepository) GetByUserIDPaginated(ctx context.Context, userID string, p ports.Pagination) (*ports.PagedOrders, error) {
	p = p.Normalize()

	r.mu.RLock()
	var history []*domain.Order
	for _, order := range r.orders {
		if order.UserID == userID && order.Status != domain.OrderStatusDraft {
			history = append(history, order.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(history, func(i, j int) bool {
		return history[i].CreatedAt.After(history[j].CreatedAt)
	})

	total := int64(len(history))
	start := (p.Page - 1) * p.Limit
	if start > len(history) {
		start = len(history)
	}
	end := start + p.Limit
	if end > len(history) {
		end = len(history)
	}

	return ports.NewPagedOrders(history[start:end], total, p), nil
}

// UpdateStatus persists a status change, guarded by the expected current
// status. The check and the write share the critical section, so two
// callers holding the same stale view cannot both transition the order.
func (r *MemoryOrderRepository) UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.NewOrderNotFound()
	}
	if order.Status != from {
		return nil, apperrors.NewConflict("order status changed concurrently")
	}

	order.SetStatus(to, time.Now())
	return order.Clone(), nil
}

// GetDraftByUserID returns the user's DRAFT order, nil if none
func (r *MemoryOrderRepository) GetDraftByUserID(ctx context.Context, userID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.UserID == userID && order.Status == domain.OrderStatusDraft {
			return order.Clone(), nil
		}
	}
	return nil, nil
}

// AddItem merges a line item into the order: an existing line for the same
// product has its quantity incremented, otherwise the line is appended.
func (r *MemoryOrderRepository) AddItem(ctx context.Context, orderID string, item domain.OrderItem) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.NewOrderNotFound()
	}

	if err := order.MergeItem(item, time.Now()); err != nil {
		return nil, err
	}
	return order.Clone(), nil
}

// UpdateItemQuantity replaces the quantity on an existing line
func (r *MemoryOrderRepository) UpdateItemQuantity(ctx context.Context, orderID, productID string, quantity int) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.NewOrderNotFound()
	}

	if err := order.SetItemQuantity(productID, quantity, time.Now()); err != nil {
		return nil, err
	}
	return order.Clone(), nil
}

// RemoveItem deletes a line item
func (r *MemoryOrderRepository) RemoveItem(ctx context.Context, orderID, productID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.NewOrderNotFound()
	}

	if err := order.RemoveItem(productID, time.Now()); err != nil {
		return nil, err
	}
	return order.Clone(), nil
}

// ClearItems empties the order
func (r *MemoryOrderRepository) ClearItems(ctx context.Context, orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.NewOrderNotFound()
	}

	order.ClearItems(time.Now())
	return order.Clone(), nil
}

// GetItem returns a single line item, nil if absent
func (r *MemoryOrderRepository) GetItem(ctx context.Context, orderID, productID string) (*domain.OrderItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.NewOrderNotFound()
	}

	item, found := order.FindItem(productID)
	if !found {
		return nil, nil
	}
	return &item, nil
}
