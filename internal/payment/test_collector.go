package payment

import (
	"context"
	"fmt"

	"github.com/toolyhq/tooly-storefront/internal/commerce"
	"github.com/toolyhq/tooly-storefront/pkg/logger"
)

const testMethodCode = "test-payment"

// TestCollector settles orders through the backend's dummy payment handler.
// It carries no credentials and always succeeds unless the backend declines.
type TestCollector struct {
	facade orderFacade
	logg   *logger.Logger
}

// NewTestCollector builds the dummy-handler collector.
func NewTestCollector(facade orderFacade, logg *logger.Logger) (*TestCollector, error) {
	if facade == nil {
		return nil, fmt.Errorf("order facade required")
	}
	return &TestCollector{facade: facade, logg: logg}, nil
}

func (c *TestCollector) Name() string {
	return testMethodCode
}

// Collect transitions the order to ArrangingPayment if needed and registers a
// dummy payment against it.
func (c *TestCollector) Collect(ctx context.Context, order *commerce.Order) (*commerce.Order, error) {
	order, err := ensureArrangingPayment(ctx, c.facade, order)
	if err != nil {
		return nil, err
	}

	settled, err := c.facade.AddPayment(ctx, testMethodCode, map[string]any{
		"shouldDecline": false,
	})
	if err != nil {
		return nil, err
	}
	if c.logg != nil {
		c.logg.Info(c.logg.WithOrderCode(ctx, settled.Code), "test payment registered")
	}
	return settled, nil
}
