package payment

import (
	"context"
	"errors"
)

// ErrInvalidSignature means the callback payload failed authenticity
// verification and must not be trusted.
var ErrInvalidSignature = errors.New("invalid callback signature")

// Checkout holds what the client needs to launch the hosted payment UI
// for a booking's payable-now amount.
type Checkout struct {
	Reference      string `json:"reference"`
	ClientSecret   string `json:"client_secret"`
	PublishableKey string `json:"publishable_key"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
}

// Callback is a gateway settlement notification normalized into domain
// terms. Reference plus the outcome is the idempotency key for
// reconciliation. Amount is in the gateway's minor unit (paise) so the
// zero-tolerance check never loses a fraction to rounding; the ledger
// converts to whole rupees after comparing.
type Callback struct {
	BookingID  string
	Reference  string
	Amount     int64
	Succeeded  bool
	FailureMsg string
}

// Gateway is the seam between the reservation engine and the external
// payment processor. Implementations must verify callback authenticity
// before returning a Callback.
type Gateway interface {
	// CreateCheckout registers the payable amount (whole rupees) with
	// the processor and returns parameters for the checkout UI.
	CreateCheckout(ctx context.Context, bookingID string, amount int64) (*Checkout, error)

	// ParseCallback authenticates and decodes a raw callback payload.
	// Returns (nil, nil) for event types the engine does not care about.
	ParseCallback(payload []byte, signature string) (*Callback, error)
}
