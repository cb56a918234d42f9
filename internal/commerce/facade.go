package commerce

import (
	"context"
	"fmt"
	"time"

	"github.com/toolyhq/tooly-storefront/pkg/logger"
	"github.com/toolyhq/tooly-storefront/pkg/metrics"
)

// Operation names used for logging and metrics labels.
const (
	OpActiveOrder             = "fetch-active-order"
	OpAddItem                 = "add-item"
	OpAdjustLine              = "adjust-line-quantity"
	OpRemoveLine              = "remove-line"
	OpSetCustomer             = "set-customer"
	OpSetShippingAddress      = "set-shipping-address"
	OpEligibleShippingMethods = "list-eligible-shipping-methods"
	OpSetShippingMethod       = "set-shipping-method"
	OpTransitionOrderState    = "transition-order-state"
	OpAddPayment              = "add-payment"
)

type rpcExecutor interface {
	Exec(ctx context.Context, query string, variables map[string]any, out any) error
}

// Facade translates each named cart/checkout intent into exactly one RPC call
// and classifies the result. It holds no state and never retries; retry policy
// belongs to the caller.
type Facade struct {
	rpc     rpcExecutor
	metrics *metrics.RPCMetrics
	logg    *logger.Logger
}

// NewFacade builds the order mutation façade.
func NewFacade(rpc rpcExecutor, rpcMetrics *metrics.RPCMetrics, logg *logger.Logger) (*Facade, error) {
	if rpc == nil {
		return nil, fmt.Errorf("rpc client required")
	}
	return &Facade{rpc: rpc, metrics: rpcMetrics, logg: logg}, nil
}

// orderPayload is the union shape every order-returning operation decodes
// into: either the order fields are populated, or errorCode/message are.
type orderPayload struct {
	Order
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

func (p *orderPayload) toResult() (*Order, error) {
	if p == nil {
		return nil, nil
	}
	if p.ErrorCode != "" {
		return nil, &DomainError{Code: p.ErrorCode, Message: p.Message}
	}
	order := p.Order
	return &order, nil
}

// ActiveOrder fetches the session's in-progress order, or (nil, nil) when the
// session has none yet.
func (f *Facade) ActiveOrder(ctx context.Context) (*Order, error) {
	var out struct {
		ActiveOrder *orderPayload `json:"activeOrder"`
	}
	if err := f.exec(ctx, OpActiveOrder, activeOrderQuery, nil, &out); err != nil {
		return nil, err
	}
	return f.classify(ctx, OpActiveOrder, out.ActiveOrder)
}

// AddItem adds quantity of the variant; the backend merges into an existing
// line for the same variant and reports the merged quantity.
func (f *Facade) AddItem(ctx context.Context, variantID string, quantity int) (*Order, error) {
	var out struct {
		AddItemToOrder *orderPayload `json:"addItemToOrder"`
	}
	vars := map[string]any{"productVariantId": variantID, "quantity": quantity}
	if err := f.exec(ctx, OpAddItem, addItemMutation, vars, &out); err != nil {
		return nil, err
	}
	return f.classify(ctx, OpAddItem, out.AddItemToOrder)
}

// AdjustLine sets the absolute quantity of an existing line. The backend
// treats zero as distinct from removal; callers wanting removal must call
// RemoveLine.
func (f *Facade) AdjustLine(ctx context.Context, lineID string, quantity int) (*Order, error) {
	var out struct {
		AdjustOrderLine *orderPayload `json:"adjustOrderLine"`
	}
	vars := map[string]any{"orderLineId": lineID, "quantity": quantity}
	if err := f.exec(ctx, OpAdjustLine, adjustLineMutation, vars, &out); err != nil {
		return nil, err
	}
	return f.classify(ctx, OpAdjustLine, out.AdjustOrderLine)
}

// RemoveLine deletes a line from the order.
func (f *Facade) RemoveLine(ctx context.Context, lineID string) (*Order, error) {
	var out struct {
		RemoveOrderLine *orderPayload `json:"removeOrderLine"`
	}
	vars := map[string]any{"orderLineId": lineID}
	if err := f.exec(ctx, OpRemoveLine, removeLineMutation, vars, &out); err != nil {
		return nil, err
	}
	return f.classify(ctx, OpRemoveLine, out.RemoveOrderLine)
}

// SetCustomer attaches contact details to the order.
func (f *Facade) SetCustomer(ctx context.Context, customer Customer) (*Order, error) {
	var out struct {
		SetCustomerForOrder *orderPayload `json:"setCustomerForOrder"`
	}
	vars := map[string]any{"input": customer}
	if err := f.exec(ctx, OpSetCustomer, setCustomerMutation, vars, &out); err != nil {
		return nil, err
	}
	return f.classify(ctx, OpSetCustomer, out.SetCustomerForOrder)
}

// SetShippingAddress sets the order's shipping address.
func (f *Facade) SetShippingAddress(ctx context.Context, addr Address) (*Order, error) {
	var out struct {
		SetOrderShippingAddress *orderPayload `json:"setOrderShippingAddress"`
	}
	vars := map[string]any{"input": addr}
	if err := f.exec(ctx, OpSetShippingAddress, setShippingAddressMutation, vars, &out); err != nil {
		return nil, err
	}
	return f.classify(ctx, OpSetShippingAddress, out.SetOrderShippingAddress)
}

// EligibleShippingMethods lists methods valid for the order's current address.
// An empty list is a successful result, not an error.
func (f *Facade) EligibleShippingMethods(ctx context.Context) ([]ShippingMethod, error) {
	var out struct {
		EligibleShippingMethods []ShippingMethod `json:"eligibleShippingMethods"`
	}
	if err := f.exec(ctx, OpEligibleShippingMethods, eligibleShippingMethodsQuery, nil, &out); err != nil {
		return nil, err
	}
	f.count(OpEligibleShippingMethods, metrics.OutcomeOK)
	return out.EligibleShippingMethods, nil
}

// SetShippingMethod selects a shipping method for the order.
func (f *Facade) SetShippingMethod(ctx context.Context, methodID string) (*Order, error) {
	var out struct {
		SetOrderShippingMethod *orderPayload `json:"setOrderShippingMethod"`
	}
	vars := map[string]any{"shippingMethodId": methodID}
	if err := f.exec(ctx, OpSetShippingMethod, setShippingMethodMutation, vars, &out); err != nil {
		return nil, err
	}
	return f.classify(ctx, OpSetShippingMethod, out.SetOrderShippingMethod)
}

// TransitionOrderState requests a lifecycle transition; only the backend can
// actually advance the state.
func (f *Facade) TransitionOrderState(ctx context.Context, state string) (*Order, error) {
	var out struct {
		TransitionOrderToState *orderPayload `json:"transitionOrderToState"`
	}
	vars := map[string]any{"state": state}
	if err := f.exec(ctx, OpTransitionOrderState, transitionOrderStateMutation, vars, &out); err != nil {
		return nil, err
	}
	return f.classify(ctx, OpTransitionOrderState, out.TransitionOrderToState)
}

// AddPayment records a payment attempt against the order.
func (f *Facade) AddPayment(ctx context.Context, method string, metadata map[string]any) (*Order, error) {
	var out struct {
		AddPaymentToOrder *orderPayload `json:"addPaymentToOrder"`
	}
	input := map[string]any{"method": method}
	if len(metadata) > 0 {
		input["metadata"] = metadata
	}
	vars := map[string]any{"input": input}
	if err := f.exec(ctx, OpAddPayment, addPaymentMutation, vars, &out); err != nil {
		return nil, err
	}
	return f.classify(ctx, OpAddPayment, out.AddPaymentToOrder)
}

func (f *Facade) exec(ctx context.Context, op, query string, vars map[string]any, out any) error {
	start := time.Now()
	err := f.rpc.Exec(ctx, query, vars, out)
	if f.metrics != nil {
		f.metrics.ObserveDuration(op, time.Since(start))
	}
	if err != nil {
		f.count(op, metrics.OutcomeTransportError)
		if f.logg != nil {
			f.logg.Error(f.logg.WithOperation(ctx, op), "commerce rpc failed", err)
		}
		return &TransportError{Operation: op, Err: err}
	}
	return nil
}

func (f *Facade) classify(ctx context.Context, op string, payload *orderPayload) (*Order, error) {
	order, err := payload.toResult()
	if err != nil {
		f.count(op, metrics.OutcomeDomainError)
		if f.logg != nil {
			f.logg.Warn(f.logg.WithOperation(ctx, op), "commerce rejected operation: "+err.Error())
		}
		return nil, err
	}
	f.count(op, metrics.OutcomeOK)
	return order, nil
}

func (f *Facade) count(op, outcome string) {
	if f.metrics != nil {
		f.metrics.IncCall(op, outcome)
	}
}
