package ports

import (
	"context"

	"pharmacart/internal/orders/domain"
)

// Pagination is the page request for history queries. Out-of-range values
// are clamped by the repository: page to >= 1, limit to [1, 100].
type Pagination struct {
	Page  int
	Limit int
}

// PagedOrders is one page of a user's order history
type PagedOrders struct {
	Items           []*domain.Order
	Total           int64
	Page            int
	Limit           int
	TotalPages      int
	HasNextPage     bool
	HasPreviousPage bool
}

// OrderRepository defines the storage boundary for orders. Implementations
// enforce storage semantics only (draft exclusion, quantity merge, draft
// uniqueness); business rules live in the application layer. Returned
// aggregates are detached snapshots, never live references into storage.
type OrderRepository interface {
	// Create creates a new order for userID in the given status
	Create(ctx context.Context, userID string, status domain.OrderStatus) (*domain.Order, error)

	// GetByID retrieves an order, nil if absent
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)

	// GetByUserID retrieves a user's orders, optionally filtered by status
	GetByUserID(ctx context.Context, userID string, status *domain.OrderStatus) ([]*domain.Order, error)

	// GetByUserIDPaginated pages through a user's history. DRAFT orders are
	// carts, not history, and are excluded; results are sorted most recent
	// first.
	GetByUserIDPaginated(ctx context.Context, userID string, p Pagination) (*PagedOrders, error)

	// UpdateStatus persists the from -> to status change. The write is
	// guarded by the expected current status, so a racing writer that moved
	// the order first surfaces as a conflict instead of a double transition.
	UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) (*domain.Order, error)

	// GetDraftByUserID returns the user's DRAFT order, nil if none
	GetDraftByUserID(ctx context.Context, userID string) (*domain.Order, error)

	// AddItem appends a line item. If the product already has a line, the
	// quantities are summed instead of duplicating the line.
	AddItem(ctx context.Context, orderID string, item domain.OrderItem) (*domain.Order, error)

	// UpdateItemQuantity replaces the quantity on an existing line
	UpdateItemQuantity(ctx context.Context, orderID, productID string, quantity int) (*domain.Order, error)

	// RemoveItem deletes a line item
	RemoveItem(ctx context.Context, orderID, productID string) (*domain.Order, error)

	// ClearItems empties the order
	ClearItems(ctx context.Context, orderID string) (*domain.Order, error)

	// GetItem returns a single line item, nil if absent
	GetItem(ctx context.Context, orderID, productID string) (*domain.OrderItem, error)
}

// Product is the catalog collaborator's view of a product
type Product struct {
	ID                   string
	Name                 string
	Price                domain.Money
	RequiresPrescription bool
	IsActive             bool
}

// CatalogClient looks up products in the (external) catalog
type CatalogClient interface {
	// GetProductByID returns the product or a not-found error
	GetProductByID(ctx context.Context, productID string) (*Product, error)
}

// Prescription is a compliance document attached to an order
type Prescription struct {
	ID     string
	Status string
}

// Consultation is a pharmacist consultation attached to an order
type Consultation struct {
	ID     string
	Status string
}

// ComplianceInfo is the read-only compliance block for an order
type ComplianceInfo struct {
	Status        string
	Prescriptions []Prescription
	Consultations []Consultation
}

// ComplianceClient reads the compliance workflow state for an order
type ComplianceClient interface {
	// GetComplianceInfo returns nil when the order has no prescription items
	GetComplianceInfo(ctx context.Context, orderID string) (*ComplianceInfo, error)
}

// EventPublisher pushes domain events to out-of-process consumers. Use
// cases treat publishing as best-effort; the collected events returned to
// the caller remain the source of truth.
type EventPublisher interface {
	PublishOrderConfirmed(ctx context.Context, event domain.OrderConfirmedEvent) error
	PublishOrderCancelled(ctx context.Context, event domain.OrderCancelledEvent) error
}

// Normalize clamps the page request: page to >= 1, limit to [1, 100]
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

// NewPagedOrders assembles a result page with its derived paging fields.
// The pagination must already be normalized.
func NewPagedOrders(items []*domain.Order, total int64, p Pagination) *PagedOrders {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return &PagedOrders{
		Items:           items,
		Total:           total,
		Page:            p.Page,
		Limit:           p.Limit,
		TotalPages:      totalPages,
		HasNextPage:     p.Page < totalPages,
		HasPreviousPage: p.Page > 1,
	}
}
