package domain

import (
	"strings"
	"time"
)

// OrderItem is a single cart line. Name and unit price are snapshots taken
// when the item was added; later catalog changes never touch them.
type OrderItem struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   Money     `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	AddedAt     time.Time `json:"added_at"`
}

// NewOrderItem creates a validated line item
func NewOrderItem(productID, productName string, unitPrice Money, quantity int, now time.Time) (OrderItem, error) {
	if strings.TrimSpace(productID) == "" {
		return OrderItem{}, ErrEmptyProductID
	}
	if strings.TrimSpace(productName) == "" {
		return OrderItem{}, ErrEmptyProductName
	}
	if quantity <= 0 {
		return OrderItem{}, NewInvalidQuantity(quantity)
	}
	return OrderItem{
		ProductID:   productID,
		ProductName: productName,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		AddedAt:     now,
	}, nil
}

// WithQuantity returns a copy of the item with a new quantity
func (i OrderItem) WithQuantity(quantity int) (OrderItem, error) {
	if quantity <= 0 {
		return OrderItem{}, NewInvalidQuantity(quantity)
	}
	item := i
	item.Quantity = quantity
	return item, nil
}

// Subtotal derives the line total; it is never stored
func (i OrderItem) Subtotal() Money {
	return i.UnitPrice.Multiply(i.Quantity)
}
