package domain

import "pharmacart/pkg/errors"

// Money and item validation errors
var (
	ErrNegativeAmount   = errors.NewValidation("amount must not be negative", nil)
	ErrInvalidCurrency  = errors.NewValidation("currency must be a 3-letter ISO code", nil)
	ErrCurrencyMismatch = errors.NewValidation("currency mismatch", nil)
	ErrEmptyProductID   = errors.NewValidation("product_id is required", nil)
	ErrEmptyProductName = errors.NewValidation("product_name is required", nil)
	ErrUserIDRequired   = errors.NewValidation("user_id is required", nil)
)

// NewInvalidQuantity creates the error for a non-positive quantity
func NewInvalidQuantity(quantity int) error {
	return errors.NewValidation("quantity must be a positive integer", map[string]interface{}{
		"quantity": quantity,
	})
}

// NewInvalidStatus creates the error for an unknown order status
func NewInvalidStatus(status string) error {
	return errors.NewValidation("unknown order status", map[string]interface{}{
		"status": status,
	})
}

// NewNoDraftOrder creates the error for cart operations without an active cart
func NewNoDraftOrder() error {
	return &errors.AppError{
		Code:    errors.CodeNotFound,
		Message: "no active cart for this user",
	}
}

// NewOrderNotFound creates a not found error. The message deliberately
// carries no id, so callers cannot probe which order ids exist.
func NewOrderNotFound() error {
	return &errors.AppError{
		Code:    errors.CodeNotFound,
		Message: "order not found",
	}
}

// NewOrderItemNotFound creates the error for a line item absent from the cart
func NewOrderItemNotFound(productID string) error {
	return errors.NewNotFound("order item", productID)
}

// NewOrderNotDraft creates the error for item mutations outside DRAFT
func NewOrderNotDraft(status OrderStatus) error {
	return errors.NewConflict("order is no longer a draft (status: " + string(status) + ")")
}

// NewOrderTerminalState creates the error for operations on finished orders
func NewOrderTerminalState(status OrderStatus) error {
	return errors.NewConflict("order is in terminal status " + string(status))
}

// NewEmptyCart creates the checkout error for a cart with no items
func NewEmptyCart() error {
	return errors.NewValidation("cart is empty", nil)
}

// NewUnauthorizedOrderAccess creates the ownership error. The message
// deliberately omits the order id and owner.
func NewUnauthorizedOrderAccess() error {
	return errors.NewForbidden("order not accessible")
}

// NewInvalidOrderStateTransition creates the state machine rejection error,
// carrying the allowed transitions for client guidance.
func NewInvalidOrderStateTransition(from, to OrderStatus, allowed []OrderStatus) error {
	return errors.NewConflict("invalid status transition from " + string(from) + " to " + string(to) +
		"; allowed: " + joinStatuses(allowed))
}

// NewOrderNotConfirmed creates the payment error for unconfirmed orders
func NewOrderNotConfirmed(status OrderStatus) error {
	return errors.NewConflict("order must be CONFIRMED before payment (status: " + string(status) + ")")
}

// NewOrderCannotBeCancelled creates the cancellation rejection error
func NewOrderCannotBeCancelled(status OrderStatus) error {
	return errors.NewConflict("order in status " + string(status) + " cannot be cancelled")
}

// NewProductNotFound creates the catalog lookup error for missing or
// inactive products.
func NewProductNotFound(productID string) error {
	return errors.NewNotFound("product", productID)
}

func joinStatuses(statuses []OrderStatus) string {
	if len(statuses) == 0 {
		return "none"
	}
	out := string(statuses[0])
	for _, s := range statuses[1:] {
		out += ", " + string(s)
	}
	return out
}
