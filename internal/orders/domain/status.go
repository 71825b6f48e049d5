package domain

// OrderStatus represents the lifecycle stage of an order
type OrderStatus string

const (
	// OrderStatusDraft is the cart stage; the only stage where items may change
	OrderStatusDraft OrderStatus = "DRAFT"
	// OrderStatusCreated is an order placed but not yet confirmed
	OrderStatusCreated OrderStatus = "CREATED"
	// OrderStatusConfirmed is a committed order with a finalized total
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	// OrderStatusPaid means payment has been captured
	OrderStatusPaid OrderStatus = "PAID"
	// OrderStatusShipped means the order left the pharmacy
	OrderStatusShipped OrderStatus = "SHIPPED"
	// OrderStatusDelivered is a terminal success state
	OrderStatusDelivered OrderStatus = "DELIVERED"
	// OrderStatusCancelled is a terminal failure state
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// StatusInfo carries the metadata attached to each status
type StatusInfo struct {
	Label       string
	Description string
	Terminal    bool
	Mutable     bool
}

var statusInfo = map[OrderStatus]StatusInfo{
	OrderStatusDraft: {
		Label:       "Draft",
		Description: "Shopping cart, items may still change",
		Mutable:     true,
	},
	OrderStatusCreated: {
		Label:       "Created",
		Description: "Order placed, awaiting confirmation",
	},
	OrderStatusConfirmed: {
		Label:       "Confirmed",
		Description: "Order committed, total finalized",
	},
	OrderStatusPaid: {
		Label:       "Paid",
		Description: "Payment captured",
	},
	OrderStatusShipped: {
		Label:       "Shipped",
		Description: "Order handed to the carrier",
	},
	OrderStatusDelivered: {
		Label:       "Delivered",
		Description: "Order received by the customer",
		Terminal:    true,
	},
	OrderStatusCancelled: {
		Label:       "Cancelled",
		Description: "Order abandoned or cancelled",
		Terminal:    true,
	},
}

// transitions is the single source of truth for legal status moves
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:     {OrderStatusCreated, OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusCreated:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:      {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// Info returns the metadata for a status. Unknown statuses return the zero value.
func (s OrderStatus) Info() StatusInfo {
	return statusInfo[s]
}

// IsValid reports whether s is a known status
func (s OrderStatus) IsValid() bool {
	_, ok := statusInfo[s]
	return ok
}

// IsTerminal reports whether no further transitions are possible
func (s OrderStatus) IsTerminal() bool {
	return statusInfo[s].Terminal
}

// AllowedTransitions returns the statuses reachable from s
func AllowedTransitions(from OrderStatus) []OrderStatus {
	allowed := transitions[from]
	out := make([]OrderStatus, len(allowed))
	copy(out, allowed)
	return out
}

// CanTransition reports whether from -> to is a legal move
func CanTransition(from, to OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionValidation is the detailed result of ValidateTransition
type TransitionValidation struct {
	Valid   bool
	Reason  string
	Allowed []OrderStatus
}

// ValidateTransition checks from -> to and, on rejection, explains why and
// which moves would have been legal.
func ValidateTransition(from, to OrderStatus) TransitionValidation {
	if from.IsTerminal() {
		return TransitionValidation{
			Reason:  string(from) + " is a terminal status",
			Allowed: []OrderStatus{},
		}
	}
	if CanTransition(from, to) {
		return TransitionValidation{Valid: true}
	}
	return TransitionValidation{
		Reason:  "cannot transition from " + string(from) + " to " + string(to),
		Allowed: AllowedTransitions(from),
	}
}

// CanCancel reports whether an order in this status may still be cancelled
func CanCancel(status OrderStatus) bool {
	return CanTransition(status, OrderStatusCancelled)
}

// IsPaid reports whether payment has been captured for this status
func IsPaid(status OrderStatus) bool {
	switch status {
	case OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// IsModifiable reports whether status changes are still possible before payment
func IsModifiable(status OrderStatus) bool {
	switch status {
	case OrderStatusDraft, OrderStatusCreated, OrderStatusConfirmed:
		return true
	}
	return false
}

// CanModifyItems reports whether line items may still change
func CanModifyItems(status OrderStatus) bool {
	return statusInfo[status].Mutable
}

// CanConfirmOrder reports whether the order can move to CONFIRMED
func CanConfirmOrder(status OrderStatus) bool {
	return CanTransition(status, OrderStatusConfirmed)
}
