package adapters

import (
	"context"
	"sync"

	"pharmacart/internal/orders/ports"
)

// StubComplianceClient is a placeholder for the prescription-review system.
// It answers with whatever was registered for an order and nil for
// everything else, matching the collaborator contract: nil means the order
// has no prescription items.
type StubComplianceClient struct {
	mu     sync.RWMutex
	orders map[string]ports.ComplianceInfo
}

// NewStubComplianceClient creates an empty compliance stub
func NewStubComplianceClient() *StubComplianceClient {
	return &StubComplianceClient{
		orders: make(map[string]ports.ComplianceInfo),
	}
}

// Register attaches compliance info to an order id
func (c *StubComplianceClient) Register(orderID string, info ports.ComplianceInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders[orderID] = info
}

// GetComplianceInfo returns the registered block, nil when there is none
func (c *StubComplianceClient) GetComplianceInfo(ctx context.Context, orderID string) (*ports.ComplianceInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, ok := c.orders[orderID]
	if !ok {
		return nil, nil
	}
	return &info, nil
}
