package payment

import (
	"context"

	"github.com/toolyhq/tooly-storefront/internal/commerce"
)

// Collector charges the active order once it reaches the payment step. The
// order must already be in ArrangingPayment when Collect runs (the test
// collector tolerates orders that got there in another tab).
type Collector interface {
	Name() string
	Collect(ctx context.Context, order *commerce.Order) (*commerce.Order, error)
}

type orderFacade interface {
	ActiveOrder(ctx context.Context) (*commerce.Order, error)
	TransitionOrderState(ctx context.Context, state string) (*commerce.Order, error)
	AddPayment(ctx context.Context, method string, metadata map[string]any) (*commerce.Order, error)
}

// ensureArrangingPayment transitions the order into ArrangingPayment when it
// is not there yet. A transition rejection is tolerated if a fresh fetch
// shows another actor already performed it.
func ensureArrangingPayment(ctx context.Context, facade orderFacade, order *commerce.Order) (*commerce.Order, error) {
	if order != nil && order.State == commerce.OrderStateArrangingPayment {
		return order, nil
	}

	transitioned, err := facade.TransitionOrderState(ctx, commerce.OrderStateArrangingPayment)
	if err == nil {
		return transitioned, nil
	}

	if de, ok := commerce.AsDomainError(err); ok && de.Code == commerce.ErrCodeOrderStateTransition {
		fresh, ferr := facade.ActiveOrder(ctx)
		if ferr == nil && fresh != nil && fresh.State == commerce.OrderStateArrangingPayment {
			return fresh, nil
		}
	}
	return nil, err
}
