package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// scriptedRPC returns canned data payloads keyed by a substring of the query.
type scriptedRPC struct {
	responses map[string]string
	failWith  error
	calls     []string
}

func (s *scriptedRPC) Exec(ctx context.Context, query string, variables map[string]any, out any) error {
	s.calls = append(s.calls, query)
	if s.failWith != nil {
		return s.failWith
	}
	for needle, payload := range s.responses {
		if strings.Contains(query, needle) {
			if out == nil {
				return nil
			}
			return json.Unmarshal([]byte(payload), out)
		}
	}
	return fmt.Errorf("no scripted response for query %q", query)
}

func newFacade(t *testing.T, rpc rpcExecutor) *Facade {
	t.Helper()
	f, err := NewFacade(rpc, nil, nil)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	return f
}

const orderJSON = `{
	"id": "order-1",
	"code": "T0001",
	"state": "AddingItems",
	"currencyCode": "USD",
	"subTotalWithTax": 19800,
	"shippingWithTax": 0,
	"totalWithTax": 19800,
	"lines": [
		{
			"id": "line-1",
			"quantity": 2,
			"linePriceWithTax": 19800,
			"productVariant": {"id": "variant-1", "name": "Tooly DLC", "sku": "TOOLY-DLC-GM", "priceWithTax": 9900}
		}
	]
}`

func TestActiveOrderDecodesSnapshot(t *testing.T) {
	rpc := &scriptedRPC{responses: map[string]string{
		"activeOrder": `{"activeOrder": ` + orderJSON + `}`,
	}}
	f := newFacade(t, rpc)

	order, err := f.ActiveOrder(context.Background())
	if err != nil {
		t.Fatalf("active order: %v", err)
	}
	if order.ID != "order-1" || order.State != "AddingItems" {
		t.Fatalf("unexpected order %+v", order)
	}
	if len(order.Lines) != 1 || order.Lines[0].Variant.SKU != "TOOLY-DLC-GM" {
		t.Fatalf("unexpected lines %+v", order.Lines)
	}
	if order.TotalWithTax != 19800 {
		t.Fatalf("unexpected total %d", order.TotalWithTax)
	}
}

func TestActiveOrderNullMeansNoOrder(t *testing.T) {
	rpc := &scriptedRPC{responses: map[string]string{
		"activeOrder": `{"activeOrder": null}`,
	}}
	f := newFacade(t, rpc)

	order, err := f.ActiveOrder(context.Background())
	if err != nil {
		t.Fatalf("active order: %v", err)
	}
	if order != nil {
		t.Fatalf("expected nil order, got %+v", order)
	}
}

func TestAddItemClassifiesDomainError(t *testing.T) {
	rpc := &scriptedRPC{responses: map[string]string{
		"addItemToOrder": `{"addItemToOrder": {"errorCode": "INSUFFICIENT_STOCK_ERROR", "message": "only 1 left"}}`,
	}}
	f := newFacade(t, rpc)

	_, err := f.AddItem(context.Background(), "variant-1", 5)
	de, ok := AsDomainError(err)
	if !ok {
		t.Fatalf("expected domain error, got %v", err)
	}
	if de.Code != ErrCodeInsufficientStock || de.Message != "only 1 left" {
		t.Fatalf("unexpected domain error %+v", de)
	}
	if IsTransportError(err) {
		t.Fatalf("domain error must not classify as transport")
	}
}

func TestAddItemClassifiesTransportError(t *testing.T) {
	rpc := &scriptedRPC{failWith: errors.New("connection reset")}
	f := newFacade(t, rpc)

	_, err := f.AddItem(context.Background(), "variant-1", 1)
	if !IsTransportError(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if _, ok := AsDomainError(err); ok {
		t.Fatalf("transport error must not classify as domain")
	}
}

func TestRemoveLineSuccess(t *testing.T) {
	rpc := &scriptedRPC{responses: map[string]string{
		"removeOrderLine": `{"removeOrderLine": {"id": "order-1", "code": "T0001", "state": "AddingItems", "currencyCode": "USD", "lines": []}}`,
	}}
	f := newFacade(t, rpc)

	order, err := f.RemoveLine(context.Background(), "line-1")
	if err != nil {
		t.Fatalf("remove line: %v", err)
	}
	if len(order.Lines) != 0 {
		t.Fatalf("expected empty lines, got %+v", order.Lines)
	}
}

func TestEligibleShippingMethodsEmptyListIsSuccess(t *testing.T) {
	rpc := &scriptedRPC{responses: map[string]string{
		"eligibleShippingMethods": `{"eligibleShippingMethods": []}`,
	}}
	f := newFacade(t, rpc)

	methods, err := f.EligibleShippingMethods(context.Background())
	if err != nil {
		t.Fatalf("eligible methods: %v", err)
	}
	if len(methods) != 0 {
		t.Fatalf("expected empty list, got %+v", methods)
	}
}

func TestTransitionOrderStateRejection(t *testing.T) {
	rpc := &scriptedRPC{responses: map[string]string{
		"transitionOrderToState": `{"transitionOrderToState": {"errorCode": "ORDER_STATE_TRANSITION_ERROR", "message": "cannot transition"}}`,
	}}
	f := newFacade(t, rpc)

	_, err := f.TransitionOrderState(context.Background(), OrderStateArrangingPayment)
	de, ok := AsDomainError(err)
	if !ok || de.Code != ErrCodeOrderStateTransition {
		t.Fatalf("expected state transition rejection, got %v", err)
	}
}

func TestAddPaymentCarriesMetadata(t *testing.T) {
	var seenVars map[string]any
	rpc := &capturingRPC{
		payload: `{"addPaymentToOrder": {"id": "order-1", "state": "PaymentSettled", "currencyCode": "USD", "payments": [{"id": "pay-1", "method": "stripe", "state": "Settled", "amount": 19800}]}}`,
		capture: func(vars map[string]any) { seenVars = vars },
	}
	f := newFacade(t, rpc)

	order, err := f.AddPayment(context.Background(), "stripe", map[string]any{"intentId": "pi_123"})
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if !order.HasPayment() {
		t.Fatalf("expected settled payment on order")
	}
	input, _ := seenVars["input"].(map[string]any)
	if input["method"] != "stripe" {
		t.Fatalf("unexpected payment input %+v", input)
	}
	metadata, _ := input["metadata"].(map[string]any)
	if metadata["intentId"] != "pi_123" {
		t.Fatalf("metadata not forwarded: %+v", metadata)
	}
}

func TestIsLineMissing(t *testing.T) {
	missing := &DomainError{Code: ErrCodeEntityNotFound, Message: "no such line"}
	if !IsLineMissing(missing) {
		t.Fatalf("expected missing-line classification")
	}
	other := &DomainError{Code: ErrCodeInsufficientStock, Message: "nope"}
	if IsLineMissing(other) {
		t.Fatalf("stock error is not a missing line")
	}
	if IsLineMissing(errors.New("plain")) {
		t.Fatalf("plain error is not a missing line")
	}
}

type capturingRPC struct {
	payload string
	capture func(map[string]any)
}

func (c *capturingRPC) Exec(ctx context.Context, query string, variables map[string]any, out any) error {
	if c.capture != nil {
		c.capture(variables)
	}
	return json.Unmarshal([]byte(c.payload), out)
}
