package application

import (
	"context"

	"go.uber.org/zap"

	"pharmacart/internal/orders/domain"
	"pharmacart/internal/orders/ports"
	"pharmacart/pkg/errors"
	"pharmacart/pkg/logger"
)

// QueryUseCase serves read-only order views: paginated history and single
// order detail, optionally decorated with compliance data.
type QueryUseCase struct {
	repo       ports.OrderRepository
	compliance ports.ComplianceClient
	log        *logger.Logger
}

// NewQueryUseCase creates a new query use case
func NewQueryUseCase(repo ports.OrderRepository, compliance ports.ComplianceClient, log *logger.Logger) *QueryUseCase {
	return &QueryUseCase{
		repo:       repo,
		compliance: compliance,
		log:        log,
	}
}

// OrderDetailOutput is one order plus its optional compliance block
type OrderDetailOutput struct {
	Order      *domain.Order
	Compliance *ports.ComplianceInfo
}

// GetOrderHistory pages through the caller's non-draft orders, most recent
// first. The draft is a cart, not history, and never appears here.
func (uc *QueryUseCase) GetOrderHistory(ctx context.Context, userID string, p ports.Pagination) (*ports.PagedOrders, error) {
	page, err := uc.repo.GetByUserIDPaginated(ctx, userID, p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load order history")
	}
	return page, nil
}

// GetOrderByID returns one order after enforcing ownership. Rejections for
// missing and foreign orders carry distinct codes per the error taxonomy,
// but their messages name no order id or owner, so responses cannot be
// mined for detail about other users' orders.
func (uc *QueryUseCase) GetOrderByID(ctx context.Context, orderID, userID string) (*OrderDetailOutput, error) {
	order, err := uc.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load order")
	}
	if order == nil {
		return nil, domain.NewOrderNotFound()
	}
	if !order.OwnedBy(userID) {
		return nil, domain.NewUnauthorizedOrderAccess()
	}

	out := &OrderDetailOutput{Order: order}

	if uc.compliance != nil {
		info, err := uc.compliance.GetComplianceInfo(ctx, order.ID)
		if err != nil {
			// The compliance block is decoration; the order view stays useful
			uc.log.WithContext(ctx).Warn("compliance lookup failed",
				zap.Error(err),
				zap.String("order_id", order.ID),
			)
		} else {
			out.Compliance = info
		}
	}

	return out, nil
}
