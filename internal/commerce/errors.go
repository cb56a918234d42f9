package commerce

import (
	"errors"
	"fmt"
)

// Error codes the backend uses for rejections the storefront branches on.
const (
	ErrCodeEntityNotFound       = "ENTITY_NOT_FOUND_ERROR"
	ErrCodeInsufficientStock    = "INSUFFICIENT_STOCK_ERROR"
	ErrCodeOrderStateTransition = "ORDER_STATE_TRANSITION_ERROR"
	ErrCodePaymentDeclined      = "PAYMENT_DECLINED_ERROR"
	ErrCodePaymentFailed        = "PAYMENT_FAILED_ERROR"
)

// DomainError is a structured business-rule rejection from the backend. It is
// always recoverable by the user correcting input and resubmitting.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// TransportError reports a call that could not be completed or parsed.
// Recoverable by retry; no automatic retry is performed.
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// AsDomainError extracts a DomainError from the chain.
func AsDomainError(err error) (*DomainError, bool) {
	var typed *DomainError
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

// IsTransportError reports whether the error chain holds a TransportError.
func IsTransportError(err error) bool {
	var typed *TransportError
	return errors.As(err, &typed)
}

// IsLineMissing reports the specific rejection meaning "that order line no
// longer exists", which removal treats as success.
func IsLineMissing(err error) bool {
	if de, ok := AsDomainError(err); ok {
		return de.Code == ErrCodeEntityNotFound
	}
	return false
}
