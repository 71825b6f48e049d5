package application

import (
	"context"
	"sync"

	"pharmacart/internal/orders/adapters"
	"pharmacart/internal/orders/domain"
	"pharmacart/internal/orders/ports"
	"pharmacart/pkg/errors"
	"pharmacart/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New("test", "error", "console")
}

func testCatalog() *adapters.StaticCatalog {
	return adapters.NewStaticCatalog(adapters.SeedCatalog("EUR"))
}

// recordingPublisher captures published events for assertions
type recordingPublisher struct {
	mu        sync.Mutex
	confirmed []domain.OrderConfirmedEvent
	cancelled []domain.OrderCancelledEvent
	failWith  error
}

func (p *recordingPublisher) PublishOrderConfirmed(ctx context.Context, event domain.OrderConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	p.confirmed = append(p.confirmed, event)
	return nil
}

func (p *recordingPublisher) PublishOrderCancelled(ctx context.Context, event domain.OrderCancelledEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	p.cancelled = append(p.cancelled, event)
	return nil
}

// staleDraftRepo pins GetDraftByUserID to a fixed snapshot, simulating a
// caller whose view of the draft slot lags behind another writer
type staleDraftRepo struct {
	ports.OrderRepository
	draft *domain.Order
}

func (r *staleDraftRepo) GetDraftByUserID(ctx context.Context, userID string) (*domain.Order, error) {
	return r.draft.Clone(), nil
}

// failingCompliance always errors, for testing read-path degradation
type failingCompliance struct{}

func (failingCompliance) GetComplianceInfo(ctx context.Context, orderID string) (*ports.ComplianceInfo, error) {
	return nil, errors.NewInternal("compliance service unavailable", nil)
}
