package cart

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/toolyhq/tooly-storefront/api/responses"
	"github.com/toolyhq/tooly-storefront/api/validators"
	cartsvc "github.com/toolyhq/tooly-storefront/internal/cart"
	pkgerrors "github.com/toolyhq/tooly-storefront/pkg/errors"
	"github.com/toolyhq/tooly-storefront/pkg/logger"
	"github.com/toolyhq/tooly-storefront/pkg/session"
)

// Manager resolves the session's cart context.
type Manager interface {
	Get(sessionID string) (*cartsvc.Context, error)
}

func contextFor(r *http.Request, carts Manager) (*cartsvc.Context, error) {
	sessionID := session.IDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session missing")
	}
	return carts.Get(sessionID)
}

// Fetch refreshes the snapshot from the backend and returns it. A refresh
// failure still yields the last-known snapshot; the error rides along in it.
func Fetch(carts Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartCtx, err := contextFor(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cartCtx.Refresh(r.Context())
		responses.WriteSuccess(w, newCartView(cartCtx.Snapshot()))
	}
}

// AddItem adds a variant to the cart and opens the drawer on success.
func AddItem(carts Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartCtx, err := contextFor(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := cartCtx.AddToCart(r.Context(), payload.ProductVariantID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(cartCtx.Snapshot()))
	}
}

// UpdateItem sets the absolute quantity of a line; zero removes it.
func UpdateItem(carts Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartCtx, err := contextFor(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lineID := chi.URLParam(r, "lineID")
		var payload UpdateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := cartCtx.UpdateQuantity(r.Context(), lineID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(cartCtx.Snapshot()))
	}
}

// RemoveItem removes a line. Removing one that is already gone succeeds.
func RemoveItem(carts Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartCtx, err := contextFor(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := cartCtx.RemoveItem(r.Context(), chi.URLParam(r, "lineID")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(cartCtx.Snapshot()))
	}
}

// Clear removes every line, best effort.
func Clear(carts Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartCtx, err := contextFor(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := cartCtx.ClearCart(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(cartCtx.Snapshot()))
	}
}

// Drawer flips the drawer's visibility without touching the backend.
func Drawer(carts Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartCtx, err := contextFor(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload DrawerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		switch strings.ToLower(payload.Action) {
		case "open":
			cartCtx.OpenDrawer()
		case "close":
			cartCtx.CloseDrawer()
		case "toggle":
			cartCtx.ToggleDrawer()
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "drawer action must be open, close or toggle"))
			return
		}
		responses.WriteSuccess(w, newCartView(cartCtx.Snapshot()))
	}
}
