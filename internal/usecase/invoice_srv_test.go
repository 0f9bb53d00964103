package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCompany() utils.CompanyConfig {
	return utils.CompanyConfig{
		Name:    "Horizon Holidays Pvt Ltd",
		Address: "12 MG Road, Kochi, Kerala 682016",
		Email:   "billing@horizonholidays.example",
		Phone:   "+91 484 000 0000",
		GSTIN:   "32AAAAA0000A1Z5",
	}
}

func newInvoiceServiceForTest(s *memStore, at time.Time) InvoiceService {
	return &invoiceService{
		repo:    s.repository(),
		company: testCompany(),
		now:     func() time.Time { return at },
		log:     zap.NewNop(),
	}
}

func confirmSeededBooking(s *memStore, booking *entity.Booking, gatewayRef string) {
	booking.State = entity.BookingStateConfirmed
	booking.AmountPaid = booking.PayableNow
	booking.BalanceDue = booking.TotalPrice - booking.PayableNow
	booking.PaymentRef = &gatewayRef
	s.payments[paymentKey(gatewayRef, entity.PaymentStatusSuccess)] = &entity.Payment{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)},
		BookingID:  booking.ID,
		GatewayRef: gatewayRef,
		Amount:     booking.PayableNow,
		Currency:   "inr",
		Status:     entity.PaymentStatusSuccess,
	}
}

func TestInvoiceRenderIsDeterministic(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)
	booking := seedPendingBooking(store, departure, 3, 3000, 18000)
	confirmSeededBooking(store, booking, "pi_abc123")

	at := time.Date(2026, 1, 16, 9, 30, 0, 0, time.UTC)
	srv := newInvoiceServiceForTest(store, at)

	first, filename, err := srv.Render(context.Background(), booking.ID.String())
	require.NoError(t, err)
	require.NotEmpty(t, first)
	assert.Equal(t, "INV-20260115-4821.pdf", filename)

	second, _, err := srv.Render(context.Background(), booking.ID.String())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInvoiceNotReadyForPendingBooking(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)
	booking := seedPendingBooking(store, departure, 3, 3000, 18000)

	srv := newInvoiceServiceForTest(store, time.Now())

	_, _, err := srv.Render(context.Background(), booking.ID.String())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvoiceNotReady))
}

func TestInvoiceNotReadyForCancelledBooking(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)
	booking := seedPendingBooking(store, departure, 3, 3000, 18000)
	booking.State = entity.BookingStateCancelled

	srv := newInvoiceServiceForTest(store, time.Now())

	_, _, err := srv.Render(context.Background(), booking.ID.String())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvoiceNotReady))
}

func TestInvoiceRenderForCompletedBooking(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)
	booking := seedPendingBooking(store, departure, 3, 3000, 18000)
	confirmSeededBooking(store, booking, "pi_abc123")
	booking.State = entity.BookingStateCompleted

	srv := newInvoiceServiceForTest(store, time.Now())

	pdfBytes, _, err := srv.Render(context.Background(), booking.ID.String())

	require.NoError(t, err)
	assert.NotEmpty(t, pdfBytes)
}

func TestInvoiceUnknownBooking(t *testing.T) {
	store := newMemStore()
	srv := newInvoiceServiceForTest(store, time.Now())

	_, _, err := srv.Render(context.Background(), uuid.NewString())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInvoiceNumberFromOrderRef(t *testing.T) {
	assert.Equal(t, "INV-20260115-4821", invoiceNumber("TRV-20260115-093012-4821"))
	assert.Equal(t, "INV-ODD-REF", invoiceNumber("ODD-REF"))
}
