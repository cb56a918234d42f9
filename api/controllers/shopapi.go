package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/toolyhq/tooly-storefront/api/responses"
	pkgerrors "github.com/toolyhq/tooly-storefront/pkg/errors"
	"github.com/toolyhq/tooly-storefront/pkg/logger"
)

// Forwarder proxies a raw query envelope to the commerce backend.
type Forwarder interface {
	Forward(ctx context.Context, payload []byte) ([]byte, int, error)
}

// ShopAPI is the raw passthrough for storefront reads the typed facade does
// not cover (catalog browsing, search). The body cap keeps oversized
// envelopes from reaching the backend.
func ShopAPI(forwarder Forwarder, maxBodyBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "request body too large"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read request"))
			return
		}
		if len(payload) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "request body required"))
			return
		}

		raw, status, err := forwarder.Forward(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "forward to commerce backend"))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(raw)
	}
}
