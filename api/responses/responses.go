package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/toolyhq/tooly-storefront/internal/commerce"
	pkgerrors "github.com/toolyhq/tooly-storefront/pkg/errors"
	"github.com/toolyhq/tooly-storefront/pkg/logger"
	"github.com/toolyhq/tooly-storefront/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := classify(err)
	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeBusy,
		pkgerrors.CodeStateConflict,
		pkgerrors.CodeOrderRejected,
		pkgerrors.CodeIdempotency:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: msg,
		},
	}

	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	if logg != nil {
		dump := pkgerrors.Dump(err)
		ctx = logg.WithFields(ctx, map[string]any{
			"error":       dump.TopMessage,
			"error_code":  dump.Code,
			"error_chain": dump.Chain,
		})
		logg.Error(ctx, "request.error", err)
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

// classify folds commerce-layer errors into the API error taxonomy. Typed
// errors pass through unchanged; everything else is internal.
func classify(err error) *pkgerrors.Error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if de, ok := commerce.AsDomainError(err); ok {
		switch de.Code {
		case commerce.ErrCodeEntityNotFound:
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, de.Message)
		case commerce.ErrCodeOrderStateTransition:
			return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, de.Message)
		default:
			return pkgerrors.Wrap(pkgerrors.CodeOrderRejected, err, de.Message).
				WithDetails(map[string]any{"backend_code": de.Code})
		}
	}
	if commerce.IsTransportError(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commerce backend call failed")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
