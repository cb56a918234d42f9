// Package types holds the response envelopes shared by every storefront
// endpoint: successes wrap their payload under "data", failures carry one
// APIError whose code matches the error taxonomy in pkg/errors.
package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error shape. Details is populated only for
// codes that are safe to elaborate on, such as validation field errors.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
