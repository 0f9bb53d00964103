package entity

import (
	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment is one settlement attempt reported by the gateway.
// (GatewayRef, Status) is unique; it is the idempotency key for
// callbacks. A retried payment intent keeps its reference, so a
// failure and a later success are distinct rows.
type Payment struct {
	BaseSimple
	BookingID  uuid.UUID     `db:"booking_id"`
	GatewayRef string        `db:"gateway_ref"`
	Amount     int64         `db:"amount"`
	Currency   string        `db:"currency"`
	Status     PaymentStatus `db:"status"`
}
