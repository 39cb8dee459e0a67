// Package errs defines the error kinds surfaced by the payments core.
// Every error returned by the core wraps exactly one of the sentinel kinds below,
// so callers classify with errors.Is.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInstrument = errors.New("payment method does not belong to customer")
	ErrGateway           = errors.New("payment processor error")
	ErrSignature         = errors.New("webhook signature verification failed")
	ErrStorage           = errors.New("storage error")

	ErrNoInstrument         = fmt.Errorf("%w: no payment methods found", ErrNotFound)
	ErrAccountNotBound      = fmt.Errorf("%w: no connected account for user", ErrNotFound)
	ErrWebhookSecretMissing = fmt.Errorf("%w: webhook secret not configured", ErrSignature)
	ErrMissingRawBody       = fmt.Errorf("%w: raw request body missing", ErrSignature)
)

// Validation builds an ErrValidation with a field-level reason.
func Validation(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}

// Gateway wraps a processor failure for op, keeping the processor's message.
func Gateway(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrGateway, op, err)
}

// Storage wraps a store failure for op.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// Signature wraps a verification failure.
func Signature(err error) error {
	if errors.Is(err, ErrSignature) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrSignature, err)
}

// HTTPStatus maps an error kind to the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidInstrument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrWebhookSecretMissing):
		return http.StatusInternalServerError
	case errors.Is(err, ErrSignature):
		return http.StatusBadRequest
	case errors.Is(err, ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
