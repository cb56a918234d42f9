package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/toolyhq/tooly-storefront/internal/cart"
	"github.com/toolyhq/tooly-storefront/internal/commerce"
	"github.com/toolyhq/tooly-storefront/internal/payment"
	pkgerrors "github.com/toolyhq/tooly-storefront/pkg/errors"
	"github.com/toolyhq/tooly-storefront/pkg/logger"
)

// Step is the checkout progression. Steps only advance on a successful
// submission; any failure pins the machine to its current step.
type Step string

const (
	StepAddress      Step = "address"
	StepShipping     Step = "shipping"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

var (
	// ErrEmptyCart rejects starting or continuing checkout without lines.
	ErrEmptyCart = pkgerrors.New(pkgerrors.CodeStateConflict, "cart has no items to check out")

	// ErrSubmitting rejects a submission while another one is in flight.
	ErrSubmitting = pkgerrors.New(pkgerrors.CodeBusy, "checkout submission already in flight")

	// ErrComplete rejects mutations after the order is placed.
	ErrComplete = pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already completed")
)

type checkoutFacade interface {
	ActiveOrder(ctx context.Context) (*commerce.Order, error)
	SetCustomer(ctx context.Context, customer commerce.Customer) (*commerce.Order, error)
	SetShippingAddress(ctx context.Context, addr commerce.Address) (*commerce.Order, error)
	EligibleShippingMethods(ctx context.Context) ([]commerce.ShippingMethod, error)
	SetShippingMethod(ctx context.Context, methodID string) (*commerce.Order, error)
}

// Machine walks one session through address, shipping, payment and
// confirmation. It never holds its own order snapshot: every successful call
// pushes the fresh snapshot into the session's cart context, which stays the
// single snapshot holder.
type Machine struct {
	facade    checkoutFacade
	cart      *cart.Context
	collector payment.Collector
	logg      *logger.Logger

	mu          sync.Mutex
	step        Step
	submitting  bool
	lastMessage string
	lastActive  time.Time

	// form state survives a failed submission so the shopper does not
	// retype it
	customer       commerce.Customer
	address        commerce.Address
	methods        []commerce.ShippingMethod
	selectedMethod string

	placedOrder *commerce.Order
}

// View is the render-ready projection of the machine.
type View struct {
	Step           Step                      `json:"step"`
	Submitting     bool                      `json:"submitting"`
	LastMessage    string                    `json:"last_message,omitempty"`
	Customer       commerce.Customer         `json:"customer"`
	Address        commerce.Address          `json:"address"`
	Methods        []commerce.ShippingMethod `json:"shipping_methods"`
	SelectedMethod string                    `json:"selected_method,omitempty"`
	CurrencyCode   string                    `json:"currency_code,omitempty"`
	PlacedOrder    *commerce.Order           `json:"placed_order,omitempty"`
}

// NewMachine builds a checkout machine bound to one session's cart context.
func NewMachine(facade checkoutFacade, cartCtx *cart.Context, collector payment.Collector, logg *logger.Logger) (*Machine, error) {
	if facade == nil {
		return nil, fmt.Errorf("checkout facade required")
	}
	if cartCtx == nil {
		return nil, fmt.Errorf("cart context required")
	}
	if collector == nil {
		return nil, fmt.Errorf("payment collector required")
	}
	return &Machine{
		facade:     facade,
		cart:       cartCtx,
		collector:  collector,
		logg:       logg,
		step:       StepAddress,
		lastActive: time.Now(),
	}, nil
}

func (m *Machine) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step == StepConfirmation {
		return ErrComplete
	}
	if m.submitting {
		return ErrSubmitting
	}
	m.submitting = true
	m.lastActive = time.Now()
	return nil
}

func (m *Machine) finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitting = false
}

func (m *Machine) fail(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastMessage = publicMessage(err)
	return err
}

// publicMessage renders an error for inline display. Domain rejections carry
// the backend's message; transport failures get a generic one.
func publicMessage(err error) string {
	if de, ok := commerce.AsDomainError(err); ok {
		return de.Message
	}
	if commerce.IsTransportError(err) {
		return pkgerrors.MetadataFor(pkgerrors.CodeDependency).PublicMessage
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}

// Begin refreshes the order and enters the address step. An empty or absent
// cart cannot start checkout.
func (m *Machine) Begin(ctx context.Context) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.finish()

	order, err := m.facade.ActiveOrder(ctx)
	if err != nil {
		return m.fail(err)
	}
	if !order.HasLines() {
		return m.fail(ErrEmptyCart)
	}
	m.cart.ReplaceSnapshot(order)

	m.mu.Lock()
	m.step = StepAddress
	m.lastMessage = ""
	m.mu.Unlock()
	return nil
}

// SubmitAddress stores the customer and shipping address on the order, then
// loads the eligible shipping methods and preselects the first one. Only a
// fully successful sequence advances to the shipping step.
func (m *Machine) SubmitAddress(ctx context.Context, customer commerce.Customer, addr commerce.Address) error {
	if err := validateAddressStep(customer, addr); err != nil {
		return m.fail(err)
	}
	if err := m.begin(); err != nil {
		return err
	}
	defer m.finish()

	// retained even when the backend rejects the submission
	m.mu.Lock()
	m.customer = customer
	m.address = addr
	m.mu.Unlock()

	if _, err := m.facade.SetCustomer(ctx, customer); err != nil {
		return m.fail(err)
	}
	order, err := m.facade.SetShippingAddress(ctx, addr)
	if err != nil {
		return m.fail(err)
	}
	methods, err := m.facade.EligibleShippingMethods(ctx)
	if err != nil {
		return m.fail(err)
	}
	m.cart.ReplaceSnapshot(order)

	m.mu.Lock()
	m.methods = methods
	m.selectedMethod = ""
	if len(methods) > 0 {
		m.selectedMethod = methods[0].ID
	}
	m.step = StepShipping
	m.lastMessage = ""
	m.mu.Unlock()
	return nil
}

// SelectShippingMethod changes the local selection. No network call happens
// until SubmitShipping.
func (m *Machine) SelectShippingMethod(methodID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != StepShipping {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "not at the shipping step")
	}
	for _, method := range m.methods {
		if method.ID == methodID {
			m.selectedMethod = methodID
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "shipping method is not eligible for this order")
}

// SubmitShipping commits the selected method and advances to payment.
func (m *Machine) SubmitShipping(ctx context.Context) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.finish()

	m.mu.Lock()
	selected := m.selectedMethod
	atStep := m.step
	m.mu.Unlock()

	if atStep != StepShipping {
		return m.fail(pkgerrors.New(pkgerrors.CodeStateConflict, "not at the shipping step"))
	}
	if selected == "" {
		return m.fail(pkgerrors.New(pkgerrors.CodeValidation, "a shipping method must be selected"))
	}

	order, err := m.facade.SetShippingMethod(ctx, selected)
	if err != nil {
		return m.fail(err)
	}
	m.cart.ReplaceSnapshot(order)

	m.mu.Lock()
	m.step = StepPayment
	m.lastMessage = ""
	m.mu.Unlock()
	return nil
}

// SubmitPayment collects payment for the current order. Success requires the
// returned order to actually carry a payment; only then does the machine
// reach confirmation.
func (m *Machine) SubmitPayment(ctx context.Context) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.finish()

	m.mu.Lock()
	atStep := m.step
	m.mu.Unlock()
	if atStep != StepPayment {
		return m.fail(pkgerrors.New(pkgerrors.CodeStateConflict, "not at the payment step"))
	}

	order, err := m.collector.Collect(ctx, m.cart.Order())
	if err != nil {
		// the collector may have transitioned the order before failing;
		// the cached snapshot must reflect whatever the backend now holds
		m.resyncSnapshot(ctx)
		return m.fail(err)
	}
	if !order.HasPayment() {
		return m.fail(pkgerrors.New(pkgerrors.CodeOrderRejected, "payment was not registered against the order"))
	}
	m.cart.ReplaceSnapshot(order)

	m.mu.Lock()
	m.placedOrder = order
	m.step = StepConfirmation
	m.lastMessage = ""
	m.mu.Unlock()

	if m.logg != nil {
		m.logg.Info(m.logg.WithOrderCode(ctx, order.Code), "checkout completed")
	}
	return nil
}

func (m *Machine) resyncSnapshot(ctx context.Context) {
	order, err := m.facade.ActiveOrder(ctx)
	if err != nil {
		if m.logg != nil {
			m.logg.Error(ctx, "order resync after payment failure", err)
		}
		return
	}
	if order == nil {
		return
	}
	m.cart.ReplaceSnapshot(order)
}

// Back returns to the previous step. Confirmation is terminal and the
// address step has nowhere to go.
func (m *Machine) Back() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitting {
		return ErrSubmitting
	}
	switch m.step {
	case StepShipping:
		m.step = StepAddress
	case StepPayment:
		m.step = StepShipping
	case StepConfirmation:
		return ErrComplete
	default:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "already at the first step")
	}
	m.lastMessage = ""
	return nil
}

// View derives the current projection.
func (m *Machine) View() View {
	currency := ""
	if order := m.cart.Order(); order != nil {
		currency = order.CurrencyCode
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if currency == "" && m.placedOrder != nil {
		currency = m.placedOrder.CurrencyCode
	}
	methods := make([]commerce.ShippingMethod, len(m.methods))
	copy(methods, m.methods)
	return View{
		Step:           m.step,
		Submitting:     m.submitting,
		LastMessage:    m.lastMessage,
		Customer:       m.customer,
		Address:        m.address,
		Methods:        methods,
		SelectedMethod: m.selectedMethod,
		CurrencyCode:   currency,
		PlacedOrder:    m.placedOrder,
	}
}

// CurrentStep reports the current step.
func (m *Machine) CurrentStep() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// LastActive reports when the machine last served a submission.
func (m *Machine) LastActive() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActive
}

func validateAddressStep(customer commerce.Customer, addr commerce.Address) error {
	if customer.EmailAddress == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email address is required")
	}
	if customer.FirstName == "" || customer.LastName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}
	if addr.StreetLine1 == "" || addr.City == "" || addr.PostalCode == "" || addr.CountryCode == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "street, city, postal code and country are required")
	}
	return nil
}
