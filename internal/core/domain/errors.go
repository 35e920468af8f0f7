package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSignatureMismatch means an inbound webhook carried a signature that
	// does not match the one recomputed from its fields.
	ErrSignatureMismatch = errors.New("webhook signature mismatch")

	// ErrNoProducts is returned when a transaction is used before any product
	// was attached to it.
	ErrNoProducts = errors.New("transaction has no products")
)

// ValidationError reports a single violated constraint on a domain value.
// Construction stops at the first failed check, so one error carries exactly
// one rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// TransportError means the HTTP round-trip to the gateway did not complete
// with a success status.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway request failed with status %d: %s", e.StatusCode, e.Body)
}

// GatewayError is a 2xx response whose reason code is a known non-success
// code. Response keeps the full decoded body for diagnostics.
type GatewayError struct {
	Code     ReasonCode
	Message  string
	Response map[string]any
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway declined with code %d: %s", int(e.Code), e.Message)
}

// MissingFieldError means an expected response key was absent even though no
// failure code was reported.
type MissingFieldError struct {
	Key string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("gateway response is missing expected field %q", e.Key)
}

// MalformedWebhookError means a required inbound webhook field was missing or
// empty. It is checked before the signature, and is distinct from
// ErrSignatureMismatch so the boundary can map the two differently.
type MalformedWebhookError struct {
	Field string
}

func (e *MalformedWebhookError) Error() string {
	return fmt.Sprintf("missing required webhook field: %s", e.Field)
}
