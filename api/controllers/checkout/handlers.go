package checkout

import (
	"net/http"

	"github.com/toolyhq/tooly-storefront/api/responses"
	"github.com/toolyhq/tooly-storefront/api/validators"
	cartsvc "github.com/toolyhq/tooly-storefront/internal/cart"
	checkoutsvc "github.com/toolyhq/tooly-storefront/internal/checkout"
	pkgerrors "github.com/toolyhq/tooly-storefront/pkg/errors"
	"github.com/toolyhq/tooly-storefront/pkg/logger"
	"github.com/toolyhq/tooly-storefront/pkg/session"
)

// CartManager resolves the session's cart context so a new machine can bind
// to it.
type CartManager interface {
	Get(sessionID string) (*cartsvc.Context, error)
}

// Manager resolves the session's checkout machine.
type Manager interface {
	Get(sessionID string, cartCtx *cartsvc.Context) (*checkoutsvc.Machine, error)
	Peek(sessionID string) (*checkoutsvc.Machine, bool)
	Abandon(sessionID string)
}

func machineFor(r *http.Request, checkouts Manager, carts CartManager) (*checkoutsvc.Machine, error) {
	sessionID := session.IDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session missing")
	}
	cartCtx, err := carts.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return checkouts.Get(sessionID, cartCtx)
}

// Begin starts (or restarts) checkout for the session's cart.
func Begin(checkouts Manager, carts CartManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := session.IDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session missing"))
			return
		}

		// a completed machine is terminal, so restart from scratch
		if existing, ok := checkouts.Peek(sessionID); ok && existing.CurrentStep() == checkoutsvc.StepConfirmation {
			checkouts.Abandon(sessionID)
		}

		machine, err := machineFor(r, checkouts, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := machine.Begin(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(machine.View()))
	}
}

// Fetch returns the machine's current step and form state.
func Fetch(checkouts Manager, carts CartManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		machine, err := machineFor(r, checkouts, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(machine.View()))
	}
}

// SubmitAddress stores customer and shipping details on the order.
func SubmitAddress(checkouts Manager, carts CartManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		machine, err := machineFor(r, checkouts, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload AddressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := machine.SubmitAddress(r.Context(), payload.customer(), payload.address()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(machine.View()))
	}
}

// SelectShipping changes the locally selected shipping method.
func SelectShipping(checkouts Manager, carts CartManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		machine, err := machineFor(r, checkouts, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload SelectShippingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := machine.SelectShippingMethod(payload.MethodID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(machine.View()))
	}
}

// SubmitShipping commits the selected method and advances to payment.
func SubmitShipping(checkouts Manager, carts CartManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		machine, err := machineFor(r, checkouts, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := machine.SubmitShipping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(machine.View()))
	}
}

// SubmitPayment collects payment and, on success, reaches confirmation.
func SubmitPayment(checkouts Manager, carts CartManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		machine, err := machineFor(r, checkouts, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := machine.SubmitPayment(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(machine.View()))
	}
}

// Back returns to the previous step.
func Back(checkouts Manager, carts CartManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		machine, err := machineFor(r, checkouts, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := machine.Back(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(machine.View()))
	}
}

// Abandon discards the session's checkout progress. The order keeps whatever
// was already committed to the backend.
func Abandon(checkouts Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := session.IDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session missing"))
			return
		}
		checkouts.Abandon(sessionID)
		responses.WriteSuccess(w, map[string]string{"status": "abandoned"})
	}
}
