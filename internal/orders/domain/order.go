package domain

import (
	"strings"
	"time"
)

// Order is the aggregate root. A DRAFT order is the user's cart; every other
// status belongs to order history. Total and item count are always derived
// from the items, never stored.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Status    OrderStatus `json:"status"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewOrder creates an order owned by userID in the given status
func NewOrder(id, userID string, status OrderStatus, now time.Time) (*Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}
	if !status.IsValid() {
		return nil, NewInvalidStatus(string(status))
	}
	return &Order{
		ID:        id,
		UserID:    userID,
		Status:    status,
		Items:     []OrderItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Total derives the order total from its line items. An empty order totals
// zero with no currency. MergeItem keeps every line in one currency, so
// the amounts sum directly.
func (o *Order) Total() Money {
	if len(o.Items) == 0 {
		return Money{Amount: 0}
	}
	total := Zero(o.Items[0].UnitPrice.Currency)
	for _, item := range o.Items {
		total.Amount += item.Subtotal().Amount
	}
	return total
}

// ItemCount derives the total unit count across all lines
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// OwnedBy reports whether the order belongs to userID
func (o *Order) OwnedBy(userID string) bool {
	return o.UserID == userID
}

// FindItem returns the line for productID, if present
func (o *Order) FindItem(productID string) (OrderItem, bool) {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return OrderItem{}, false
}

// MergeItem adds a line item. If the product is already in the order the
// quantities are summed on the existing line; the original snapshot price
// and name are kept. Product ids stay unique per order, and all lines
// share one currency; a mismatched line is rejected.
func (o *Order) MergeItem(item OrderItem, now time.Time) error {
	for i := range o.Items {
		if o.Items[i].ProductID == item.ProductID {
			o.Items[i].Quantity += item.Quantity
			o.UpdatedAt = now
			return nil
		}
	}
	if len(o.Items) > 0 && o.Items[0].UnitPrice.Currency != item.UnitPrice.Currency {
		return ErrCurrencyMismatch
	}
	o.Items = append(o.Items, item)
	o.UpdatedAt = now
	return nil
}

// SetItemQuantity replaces the quantity on an existing line
func (o *Order) SetItemQuantity(productID string, quantity int, now time.Time) error {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			updated, err := o.Items[i].WithQuantity(quantity)
			if err != nil {
				return err
			}
			o.Items[i] = updated
			o.UpdatedAt = now
			return nil
		}
	}
	return NewOrderItemNotFound(productID)
}

// RemoveItem deletes the line for productID
func (o *Order) RemoveItem(productID string, now time.Time) error {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			o.UpdatedAt = now
			return nil
		}
	}
	return NewOrderItemNotFound(productID)
}

// ClearItems empties the order
func (o *Order) ClearItems(now time.Time) {
	o.Items = []OrderItem{}
	o.UpdatedAt = now
}

// SetStatus records a status change. Transition legality is the service
// layer's responsibility; the aggregate only keeps timestamps honest.
func (o *Order) SetStatus(status OrderStatus, now time.Time) {
	o.Status = status
	o.UpdatedAt = now
}

// Clone returns a deep copy so callers never hold live references into storage
func (o *Order) Clone() *Order {
	items := make([]OrderItem, len(o.Items))
	copy(items, o.Items)
	clone := *o
	clone.Items = items
	return &clone
}
