package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedPendingBooking(s *memStore, departure *entity.Departure, travelers int, payable, total int64) *entity.Booking {
	now := time.Now()
	booking := &entity.Booking{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		OrderRef:      "TRV-20260115-093012-4821",
		PackageID:     departure.PackageID,
		DepartureID:   departure.ID,
		CustomerName:  "Asha Nair",
		CustomerEmail: "asha@example.com",
		CustomerPhone: "+919812345678",
		Travelers:     travelers,
		TotalPrice:    total,
		PaymentOption: entity.PaymentOptionDeposit,
		PayableNow:    payable,
		BalanceDue:    total,
		State:         entity.BookingStatePendingPayment,
	}
	s.bookings[booking.ID] = booking
	departure.SeatsBooked += travelers
	return booking
}

func callbackPayload(t *testing.T, cb payment.Callback) []byte {
	t.Helper()
	payload, err := json.Marshal(cb)
	require.NoError(t, err)
	return payload
}

func newReconcileServiceForTest(s *memStore, publisher *fakePublisher) ReconcileService {
	return NewReconcileService(s.repository(), &fakeGateway{}, publisher, "inr", zap.NewNop())
}

func TestCallbackConfirmsOnExactAmount(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)
	booking := seedPendingBooking(store, departure, 3, 3000, 18000)

	publisher := &fakePublisher{}
	srv := newReconcileServiceForTest(store, publisher)

	payload := callbackPayload(t, payment.Callback{
		BookingID: booking.ID.String(),
		Reference: "pi_abc123",
		Amount:    300000,
		Succeeded: true,
	})

	require.NoError(t, srv.HandleCallback(context.Background(), payload, "sig"))

	assert.Equal(t, entity.BookingStateConfirmed, booking.State)
	assert.Equal(t, int64(3000), booking.AmountPaid)
	assert.Equal(t, int64(15000), booking.BalanceDue)
	require.NotNil(t, booking.PaymentRef)
	assert.Equal(t, "pi_abc123", *booking.PaymentRef)

	events := publisher.byType("booking.confirmed")
	require.Len(t, events, 1)
	assert.Equal(t, booking.ID.String(), events[0].BookingID)
	assert.Equal(t, int64(3000), events[0].AmountPaid)
}

func TestDuplicateCallbackIsNoOp(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)
	booking := seedPendingBooking(store, departure, 3, 3000, 18000)

	publisher := &fakePublisher{}
	srv := newReconcileServiceForTest(store, publisher)

	payload := callbackPayload(t, payment.Callback{
		BookingID: booking.ID.String(),
		Reference: "pi_abc123",
		Amount:    300000,
		Succeeded: true,
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, srv.HandleCallback(context.Background(), payload, "sig"))
	}

	assert.Equal(t, entity.BookingStateConfirmed, booking.State)
	assert.Len(t, store.payments, 1)
	assert.Len(t, publisher.byType("booking.confirmed"), 1)
	assert.Equal(t, 3, departure.SeatsBooked)
}

func TestCallbackAmountMismatchFlagsDiscrepancy(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)
	booking := seedPendingBooking(store, departure, 3, 3000, 18000)

	publisher := &fakePublisher{}
	srv := newReconcileServiceForTest(store, publisher)

	payload := callbackPayload(t, payment.Callback{
		BookingID: booking.ID.String(),
		Reference: "pi_short",
		Amount:    250000,
		Succeeded: true,
	})

	require.NoError(t, srv.HandleCallback(context.Background(), payload, "sig"))

	// Held for staff review: not confirmed, not cancelled, seats kept.
	assert.Equal(t, entity.BookingStatePendingPayment, booking.State)
	assert.True(t, booking.Discrepancy)
	require.NotNil(t, booking.DiscrepancyNote)
	assert.Contains(t, *booking.DiscrepancyNote, "captured 2500.00")
	assert.Contains(t, *booking.DiscrepancyNote, "expected 3000.00")
	assert.Equal(t, 3, departure.SeatsBooked)
	assert.Len(t, store.payments, 1)
	assert.Empty(t, publisher.byType("booking.confirmed"))

	// Replay of the mismatched callback changes nothing further.
	require.NoError(t, srv.HandleCallback(context.Background(), payload, "sig"))
	assert.Len(t, store.payments, 1)
}

func TestCallbackFailureCancelsAndReleases(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)
	booking := seedPendingBooking(store, departure, 3, 3000, 18000)

	publisher := &fakePublisher{}
	srv := newReconcileServiceForTest(store, publisher)

	payload := callbackPayload(t, payment.Callback{
		BookingID:  booking.ID.String(),
		Reference:  "pi_declined",
		Amount:     300000,
		Succeeded:  false,
		FailureMsg: "card declined",
	})

	require.NoError(t, srv.HandleCallback(context.Background(), payload, "sig"))

	assert.Equal(t, entity.BookingStateCancelled, booking.State)
	require.NotNil(t, booking.CancelReason)
	assert.Contains(t, *booking.CancelReason, "card declined")
	assert.Equal(t, 0, departure.SeatsBooked)
	assert.Len(t, publisher.byType("booking.cancelled"), 1)

	failed := store.payments[paymentKey("pi_declined", entity.PaymentStatusFailed)]
	require.NotNil(t, failed)
	assert.Equal(t, entity.PaymentStatusFailed, failed.Status)
	assert.Equal(t, int64(3000), failed.Amount)
}

func TestCallbackAfterExpiryFlagsLatePayment(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)
	booking := seedPendingBooking(store, departure, 3, 3000, 18000)

	// The abandonment worker got there first.
	booking.State = entity.BookingStateCancelled
	departure.SeatsBooked = 0

	publisher := &fakePublisher{}
	srv := newReconcileServiceForTest(store, publisher)

	payload := callbackPayload(t, payment.Callback{
		BookingID: booking.ID.String(),
		Reference: "pi_late",
		Amount:    300000,
		Succeeded: true,
	})

	// Acknowledged so the gateway stops retrying, but the booking is
	// not resurrected; staff see the flag instead.
	require.NoError(t, srv.HandleCallback(context.Background(), payload, "sig"))

	assert.Equal(t, entity.BookingStateCancelled, booking.State)
	assert.True(t, booking.Discrepancy)
	require.NotNil(t, booking.DiscrepancyNote)
	assert.Contains(t, *booking.DiscrepancyNote, "pi_late")
	assert.Empty(t, publisher.byType("booking.confirmed"))

	// The captured money still lands in the ledger for the refund.
	late := store.payments[paymentKey("pi_late", entity.PaymentStatusSuccess)]
	require.NotNil(t, late)
	assert.Equal(t, int64(3000), late.Amount)
}

func TestSuccessAfterFailureOnSameReference(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)
	booking := seedPendingBooking(store, departure, 3, 3000, 18000)

	publisher := &fakePublisher{}
	srv := newReconcileServiceForTest(store, publisher)

	// A retried payment intent keeps its reference: first the decline
	// lands, then the customer's second attempt captures the money.
	failure := callbackPayload(t, payment.Callback{
		BookingID:  booking.ID.String(),
		Reference:  "pi_retry",
		Amount:     300000,
		Succeeded:  false,
		FailureMsg: "card declined",
	})
	success := callbackPayload(t, payment.Callback{
		BookingID: booking.ID.String(),
		Reference: "pi_retry",
		Amount:    300000,
		Succeeded: true,
	})

	require.NoError(t, srv.HandleCallback(context.Background(), failure, "sig"))
	require.NoError(t, srv.HandleCallback(context.Background(), success, "sig"))

	// The failure already cancelled the booking and released its seats,
	// so the capture cannot confirm. It must not vanish either: the
	// settlement goes in the ledger and staff get the flag.
	assert.Equal(t, entity.BookingStateCancelled, booking.State)
	assert.True(t, booking.Discrepancy)
	require.NotNil(t, booking.DiscrepancyNote)
	assert.Contains(t, *booking.DiscrepancyNote, "pi_retry")
	assert.Empty(t, publisher.byType("booking.confirmed"))

	captured := store.payments[paymentKey("pi_retry", entity.PaymentStatusSuccess)]
	require.NotNil(t, captured)
	assert.Equal(t, int64(3000), captured.Amount)
	require.NotNil(t, store.payments[paymentKey("pi_retry", entity.PaymentStatusFailed)])

	// Replaying the capture changes nothing further.
	require.NoError(t, srv.HandleCallback(context.Background(), success, "sig"))
	assert.Len(t, store.payments, 2)
}

func TestCallbackFractionalPaiseIsMismatch(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)
	booking := seedPendingBooking(store, departure, 3, 3000, 18000)

	publisher := &fakePublisher{}
	srv := newReconcileServiceForTest(store, publisher)

	// 50 paise over; rounding to rupees would make this look exact.
	payload := callbackPayload(t, payment.Callback{
		BookingID: booking.ID.String(),
		Reference: "pi_fraction",
		Amount:    300050,
		Succeeded: true,
	})

	require.NoError(t, srv.HandleCallback(context.Background(), payload, "sig"))

	assert.Equal(t, entity.BookingStatePendingPayment, booking.State)
	assert.True(t, booking.Discrepancy)
	require.NotNil(t, booking.DiscrepancyNote)
	assert.Contains(t, *booking.DiscrepancyNote, "captured 3000.50")
	assert.Empty(t, publisher.byType("booking.confirmed"))
}

func TestCallbackBadSignatureRejected(t *testing.T) {
	store := newMemStore()
	srv := newReconcileServiceForTest(store, &fakePublisher{})

	err := srv.HandleCallback(context.Background(), []byte(`{}`), "invalid")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestCallbackUnknownBooking(t *testing.T) {
	store := newMemStore()
	srv := newReconcileServiceForTest(store, &fakePublisher{})

	payload := callbackPayload(t, payment.Callback{
		BookingID: uuid.NewString(),
		Reference: "pi_orphan",
		Amount:    3000,
		Succeeded: true,
	})

	err := srv.HandleCallback(context.Background(), payload, "sig")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}
