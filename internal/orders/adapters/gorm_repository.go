package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pharmacart/internal/orders/domain"
	"pharmacart/internal/orders/ports"
	apperrors "pharmacart/pkg/errors"
)

// OrderModel is the GORM model for orders (persistence layer)
type OrderModel struct {
	ID        string           `gorm:"primaryKey;size:36"`
	UserID    string           `gorm:"index;size:64;not null"`
	Status    string           `gorm:"size:20;not null"`
	CreatedAt time.Time        `gorm:"autoCreateTime"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime"`
	Items     []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the GORM model for order lines. The composite primary
// key keeps product ids unique within an order at the storage level.
type OrderItemModel struct {
	OrderID       string    `gorm:"primaryKey;size:36"`
	ProductID     string    `gorm:"primaryKey;size:64"`
	ProductName   string    `gorm:"size:255;not null"`
	PriceAmount   int64     `gorm:"not null"`
	PriceCurrency string    `gorm:"size:3;not null"`
	Quantity      int       `gorm:"not null"`
	AddedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// GormOrderRepository implements OrderRepository on a relational store.
// Both Postgres (production) and SQLite (tests) speak its SQL.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new relational order repository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Migrate runs auto-migration and installs the partial unique index that
// makes "one DRAFT per user" hold even under concurrent draft creation.
func (r *GormOrderRepository) Migrate() error {
	if err := r.db.AutoMigrate(&OrderModel{}, &OrderItemModel{}); err != nil {
		return err
	}
	return r.db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_one_draft_per_user ON orders(user_id) WHERE status = 'DRAFT'",
	).Error
}

// Create creates a new order. A second DRAFT for the same user trips the
// partial unique index and surfaces as a conflict.
func (r *GormOrderRepository) Create(ctx context.Context, userID string, status domain.OrderStatus) (*domain.Order, error) {
	model := OrderModel{
		ID:     uuid.New().String(),
		UserID: userID,
		Status: string(status),
	}

	result := r.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		if status == domain.OrderStatusDraft && errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewConflict("user already has a draft order")
		}
		return nil, apperrors.NewInternal("failed to create order", result.Error)
	}

	return toDomain(&model), nil
}

// GetByID retrieves an order with its items, nil if absent
func (r *GormOrderRepository) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var model OrderModel

	result := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", orderID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewInternal("failed to get order", result.Error)
	}

	return toDomain(&model), nil
}

// GetByUserID retrieves a user's orders, optionally filtered by status
func (r *GormOrderRepository) GetByUserID(ctx context.Context, userID string, status *domain.OrderStatus) ([]*domain.Order, error) {
	var models []OrderModel

	query := r.db.WithContext(ctx).Preload("Items").Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	result := query.Order("created_at DESC").Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to get orders by user", result.Error)
	}

	orders := make([]*domain.Order, len(models))
	for i := range models {
		orders[i] = toDomain(&models[i])
	}

	return orders, nil
}

// GetByUserIDPaginated pages through a user's non-draft orders, most recent first
func (r *GormOrderRepository) GetByUserIDPaginated(ctx context.Context, userID string, p ports.Pagination) (*ports.PagedOrders, error) {
	p = p.Normalize()

	base := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("user_id = ? AND status <> ?", userID, string(domain.OrderStatusDraft))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, apperrors.NewInternal("failed to count orders", err)
	}

	var models []OrderModel
	result := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ? AND status <> ?", userID, string(domain.OrderStatusDraft)).
		Order("created_at DESC").
		Offset((p.Page - 1) * p.Limit).
		Limit(p.Limit).
		Find(&models)
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to page orders", result.Error)
	}

	orders := make([]*domain.Order, len(models))
	for i := range models {
		orders[i] = toDomain(&models[i])
	}

	return ports.NewPagedOrders(orders, total, p), nil
}

// UpdateStatus persists a status change. The UPDATE carries the expected
// current status in its WHERE clause, so of two racing transitions only
// one touches a row; the loser sees zero rows affected.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) (*domain.Order, error) {
	result := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ? AND status = ?", orderID, string(from)).
		Updates(map[string]interface{}{"status": string(to), "updated_at": time.Now()})
	if result.Error != nil {
		return nil, apperrors.NewInternal("failed to update order status", result.Error)
	}
	if result.RowsAffected == 0 {
		existing, err := r.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, domain.NewOrderNotFound()
		}
		return nil, apperrors.NewConflict("order status changed concurrently")
	}

	return r.GetByID(ctx, orderID)
}

// GetDraftByUserID returns the user's DRAFT order, nil if none
func (r *GormOrderRepository) GetDraftByUserID(ctx context.Context, userID string) (*domain.Order, error) {
	var model OrderModel

	result := r.db.WithContext(ctx).Preload("Items").
		First(&model, "user_id = ? AND status = ?", userID, string(domain.OrderStatusDraft))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewInternal("failed to get draft order", result.Error)
	}

	return toDomain(&model), nil
}

// AddItem merges a line item into the order. The quantity increment runs as
// a single atomic UPDATE, so concurrent adds of the same product cannot
// lose a merge; a missing line is inserted in the same transaction.
func (r *GormOrderRepository) AddItem(ctx context.Context, orderID string, item domain.OrderItem) (*domain.Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order OrderModel
		if err := tx.Select("id").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewOrderNotFound()
			}
			return err
		}

		result := tx.Model(&OrderItemModel{}).
			Where("order_id = ? AND product_id = ?", orderID, item.ProductID).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			// all lines of an order share one currency
			var existing OrderItemModel
			err := tx.Where("order_id = ?", orderID).First(&existing).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err == nil && existing.PriceCurrency != item.UnitPrice.Currency {
				return domain.ErrCurrencyMismatch
			}

			if err := tx.Create(&OrderItemModel{
				OrderID:       orderID,
				ProductID:     item.ProductID,
				ProductName:   item.ProductName,
				PriceAmount:   item.UnitPrice.Amount,
				PriceCurrency: item.UnitPrice.Currency,
				Quantity:      item.Quantity,
				AddedAt:       item.AddedAt,
			}).Error; err != nil {
				return err
			}
		}

		return touchOrder(tx, orderID)
	})
	if err != nil {
		return nil, wrapStorageErr("failed to add item", err)
	}

	return r.GetByID(ctx, orderID)
}

// UpdateItemQuantity replaces the quantity on an existing line
func (r *GormOrderRepository) UpdateItemQuantity(ctx context.Context, orderID, productID string, quantity int) (*domain.Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&OrderItemModel{}).
			Where("order_id = ? AND product_id = ?", orderID, productID).
			UpdateColumn("quantity", quantity)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NewOrderItemNotFound(productID)
		}
		return touchOrder(tx, orderID)
	})
	if err != nil {
		return nil, wrapStorageErr("failed to update item quantity", err)
	}

	return r.GetByID(ctx, orderID)
}

// RemoveItem deletes a line item
func (r *GormOrderRepository) RemoveItem(ctx context.Context, orderID, productID string) (*domain.Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("order_id = ? AND product_id = ?", orderID, productID).
			Delete(&OrderItemModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NewOrderItemNotFound(productID)
		}
		return touchOrder(tx, orderID)
	})
	if err != nil {
		return nil, wrapStorageErr("failed to remove item", err)
	}

	return r.GetByID(ctx, orderID)
}

// ClearItems empties the order
func (r *GormOrderRepository) ClearItems(ctx context.Context, orderID string) (*domain.Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&OrderItemModel{}).Error; err != nil {
			return err
		}
		return touchOrder(tx, orderID)
	})
	if err != nil {
		return nil, wrapStorageErr("failed to clear items", err)
	}

	return r.GetByID(ctx, orderID)
}

// GetItem returns a single line item, nil if absent
func (r *GormOrderRepository) GetItem(ctx context.Context, orderID, productID string) (*domain.OrderItem, error) {
	var model OrderItemModel

	result := r.db.WithContext(ctx).
		First(&model, "order_id = ? AND product_id = ?", orderID, productID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewInternal("failed to get order item", result.Error)
	}

	item := itemToDomain(&model)
	return &item, nil
}

// touchOrder bumps the aggregate's updated_at and confirms it exists
func touchOrder(tx *gorm.DB, orderID string) error {
	result := tx.Model(&OrderModel{}).
		Where("id = ?", orderID).
		UpdateColumn("updated_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewOrderNotFound()
	}
	return nil
}

// wrapStorageErr keeps domain errors intact and hides raw storage failures
func wrapStorageErr(message string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.NewInternal(message, err)
}

// toDomain converts a GORM model to a domain aggregate
func toDomain(model *OrderModel) *domain.Order {
	items := make([]domain.OrderItem, len(model.Items))
	for i := range model.Items {
		items[i] = itemToDomain(&model.Items[i])
	}

	return &domain.Order{
		ID:        model.ID,
		UserID:    model.UserID,
		Status:    domain.OrderStatus(model.Status),
		Items:     items,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func itemToDomain(model *OrderItemModel) domain.OrderItem {
	return domain.OrderItem{
		ProductID:   model.ProductID,
		ProductName: model.ProductName,
		UnitPrice: domain.Money{
			Amount:   model.PriceAmount,
			Currency: model.PriceCurrency,
		},
		Quantity: model.Quantity,
		AddedAt:  model.AddedAt,
	}
}
