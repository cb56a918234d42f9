package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"

	"github.com/toolyhq/tooly-storefront/internal/commerce"
	"github.com/toolyhq/tooly-storefront/pkg/logger"
	pkgstripe "github.com/toolyhq/tooly-storefront/pkg/stripe"
)

const stripeMethodCode = "stripe"

type intentCreator interface {
	Create(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripeIntentCreator struct{}

func (stripeIntentCreator) Create(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return paymentintent.New(params)
}

// StripeCollector creates a PaymentIntent for the order total and registers
// the intent against the order. Amounts are minor units on both sides, so no
// conversion happens here.
type StripeCollector struct {
	facade  orderFacade
	intents intentCreator
	logg    *logger.Logger
}

// NewStripeCollector builds the Stripe-backed collector. The client wrapper
// must already be initialized so the package-level key is set.
func NewStripeCollector(facade orderFacade, client *pkgstripe.Client, logg *logger.Logger) (*StripeCollector, error) {
	if facade == nil {
		return nil, fmt.Errorf("order facade required")
	}
	if client == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	return &StripeCollector{
		facade:  facade,
		intents: stripeIntentCreator{},
		logg:    logg,
	}, nil
}

func (c *StripeCollector) Name() string {
	return stripeMethodCode
}

// Collect transitions the order to ArrangingPayment if needed, creates the
// PaymentIntent, and registers it as the order's payment.
func (c *StripeCollector) Collect(ctx context.Context, order *commerce.Order) (*commerce.Order, error) {
	order, err := ensureArrangingPayment(ctx, c.facade, order)
	if err != nil {
		return nil, err
	}
	if order == nil || order.TotalWithTax <= 0 {
		return nil, fmt.Errorf("order total must be positive to collect payment")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(order.TotalWithTax),
		Currency: stripe.String(strings.ToLower(order.CurrencyCode)),
	}
	params.Context = ctx
	params.AddMetadata("order_code", order.Code)

	intent, err := c.intents.Create(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	settled, err := c.facade.AddPayment(ctx, stripeMethodCode, map[string]any{
		"paymentIntentId": intent.ID,
		"amount":          order.TotalWithTax,
	})
	if err != nil {
		return nil, err
	}
	if c.logg != nil {
		entry := c.logg.WithOrderCode(ctx, settled.Code)
		c.logg.Info(c.logg.WithField(entry, "payment_intent", intent.ID), "stripe payment registered")
	}
	return settled, nil
}
