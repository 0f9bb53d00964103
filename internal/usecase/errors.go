package usecase

import (
	"errors"
	"fmt"

	"travel-booking/pkg/utils"
)

// Service error taxonomy. Handlers map these onto HTTP responses with
// errors.Is/errors.As; everything not matched is a 500.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStateConflict is the optimistic-concurrency rejection: the
	// booking's state changed since the caller last read it. Re-read
	// and retry.
	ErrStateConflict = errors.New("booking state has changed, re-read and retry")

	// ErrInventoryExhausted is the availability checker's negative
	// result. Use errors.As with *InventoryError to get the remaining
	// seat count.
	ErrInventoryExhausted = errors.New("not enough seats available")

	// ErrServiceUnavailable means the store or the payment processor
	// could not confirm a write. Nothing was booked; the caller should
	// retry.
	ErrServiceUnavailable = errors.New("service temporarily unavailable")

	// ErrInvoiceNotReady rejects invoice requests for bookings that
	// are not confirmed or completed yet.
	ErrInvoiceNotReady = errors.New("invoice is only available once the booking is confirmed")
)

// InventoryError carries the remaining seat count alongside the
// exhaustion sentinel so the response can tell the customer how many
// seats are actually left.
type InventoryError struct {
	Remaining int
}

func (e *InventoryError) Error() string {
	return fmt.Sprintf("not enough seats available, %d left", e.Remaining)
}

func (e *InventoryError) Is(target error) bool {
	return target == ErrInventoryExhausted
}

// ValidationError wraps the validator's field map so handlers can echo
// per-field messages back to the client.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
