package entity

import (
	"github.com/google/uuid"
)

type BookingState string

const (
	BookingStatePendingPayment BookingState = "pending_payment"
	BookingStateConfirmed      BookingState = "confirmed"
	BookingStateCancelled      BookingState = "cancelled"
	BookingStateCompleted      BookingState = "completed"
)

// Terminal reports whether no further transition is allowed from s.
func (s BookingState) Terminal() bool {
	return s == BookingStateCancelled || s == BookingStateCompleted
}

// CountsAgainstInventory reports whether a booking in state s holds seats.
// Every state except cancelled holds its traveler count against the
// departure's capacity.
func (s BookingState) CountsAgainstInventory() bool {
	return s != BookingStateCancelled
}

type PaymentOption string

const (
	PaymentOptionDeposit PaymentOption = "deposit"
	PaymentOptionFull    PaymentOption = "full"
)

// Booking is the central transactional entity. Customer contact fields
// and all amounts are snapshotted at creation; only the lifecycle
// manager and the admin reconciliation surface mutate it.
type Booking struct {
	Base
	OrderRef        string        `db:"order_ref"`
	PackageID       uuid.UUID     `db:"package_id"`
	DepartureID     uuid.UUID     `db:"departure_id"`
	CustomerName    string        `db:"customer_name"`
	CustomerEmail   string        `db:"customer_email"`
	CustomerPhone   string        `db:"customer_phone"`
	Travelers       int           `db:"travelers"`
	TotalPrice      int64         `db:"total_price"`
	Discount        int64         `db:"discount"`
	PaymentOption   PaymentOption `db:"payment_option"`
	PayableNow      int64         `db:"payable_now"`
	AmountPaid      int64         `db:"amount_paid"`
	BalanceDue      int64         `db:"balance_due"`
	PaymentRef      *string       `db:"payment_ref"`
	Discrepancy     bool          `db:"discrepancy"`
	DiscrepancyNote *string       `db:"discrepancy_note"`
	SpecialRequest  *string       `db:"special_request"`
	CancelReason    *string       `db:"cancel_reason"`
	State           BookingState  `db:"state"`
}
