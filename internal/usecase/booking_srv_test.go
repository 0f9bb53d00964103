package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/dto/request"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *utils.Config {
	return &utils.Config{
		Booking: utils.BookingConfig{AbandonTimeout: 30 * time.Minute},
	}
}

func seedPackage(s *memStore) *entity.TravelPackage {
	pkg := &entity.TravelPackage{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Title:        "Kerala Backwaters",
		Category:     "leisure",
		BasePrice:    6000,
		TokenPrice:   1000,
		MaxGroupSize: 10,
		IsActive:     true,
	}
	s.packages[pkg.ID] = pkg
	return pkg
}

func seedDeparture(s *memStore, packageID uuid.UUID, seatsTotal int) *entity.Departure {
	departure := &entity.Departure{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		PackageID:  packageID,
		DepartDate: time.Now().AddDate(0, 1, 0),
		SeatsTotal: seatsTotal,
		Status:     entity.DepartureStatusOpen,
	}
	s.departures[departure.ID] = departure
	return departure
}

func createRequest(packageID, departureID string, travelers int) *request.CreateBookingRequest {
	party := make([]request.TravelerRequest, travelers)
	for i := range party {
		party[i] = request.TravelerRequest{Name: "Traveler Name", Age: 30, Gender: "female"}
	}
	return &request.CreateBookingRequest{
		PackageID:     packageID,
		DepartureID:   departureID,
		Travelers:     party,
		CustomerName:  "Asha Nair",
		CustomerEmail: "asha@example.com",
		CustomerPhone: "+919812345678",
		PaymentOption: "deposit",
	}
}

func newBookingServiceForTest(s *memStore, gateway *fakeGateway, scheduler *fakeScheduler, publisher *fakePublisher) BookingService {
	return NewBookingService(s.repository(), gateway, scheduler, publisher, testConfig(), zap.NewNop())
}

func TestCreateBookingReservesSeatsAndOpensCheckout(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)

	gateway := &fakeGateway{}
	scheduler := &fakeScheduler{}
	srv := newBookingServiceForTest(store, gateway, scheduler, &fakePublisher{})

	resp, err := srv.CreateBooking(context.Background(), createRequest(pkg.ID.String(), departure.ID.String(), 3))

	require.NoError(t, err)
	assert.Equal(t, "pending_payment", resp.State)
	assert.Equal(t, int64(18000), resp.TotalPrice)
	assert.Equal(t, int64(3000), resp.PayableNow)
	assert.Equal(t, int64(18000), resp.BalanceDue)
	assert.Equal(t, "Kerala Backwaters", resp.PackageTitle)
	require.NotNil(t, resp.Checkout)
	assert.Equal(t, int64(3000), resp.Checkout.Amount)
	assert.Regexp(t, `^TRV-\d{8}-\d{6}-\d{4}$`, resp.OrderRef)

	assert.Equal(t, 3, departure.SeatsBooked)
	require.Len(t, scheduler.enqueued, 1)
	assert.Equal(t, resp.ID, scheduler.enqueued[0])

	stored, err := store.repository().Booking.FindByID(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.PaymentRef)
	assert.Equal(t, resp.Checkout.Reference, *stored.PaymentRef)
}

func TestCreateBookingSeatsExhausted(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 5)
	departure.SeatsBooked = 3

	srv := newBookingServiceForTest(store, &fakeGateway{}, &fakeScheduler{}, &fakePublisher{})

	_, err := srv.CreateBooking(context.Background(), createRequest(pkg.ID.String(), departure.ID.String(), 3))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInventoryExhausted))

	var invErr *InventoryError
	require.True(t, errors.As(err, &invErr))
	assert.Equal(t, 2, invErr.Remaining)

	// Nothing was reserved and nothing was written.
	assert.Equal(t, 3, departure.SeatsBooked)
	assert.Empty(t, store.bookings)
}

func TestConcurrentBookingsLastSeats(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 2)

	srv := newBookingServiceForTest(store, &fakeGateway{}, &fakeScheduler{}, &fakePublisher{})

	// Two parties race for the same two seats. Exactly one wins.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := srv.CreateBooking(context.Background(), createRequest(pkg.ID.String(), departure.ID.String(), 2))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		if err == nil {
			won++
			continue
		}
		lost++
		assert.True(t, errors.Is(err, ErrInventoryExhausted))
	}

	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)
	assert.Equal(t, 2, departure.SeatsBooked)
	assert.Len(t, store.bookings, 1)
}

func TestCreateBookingCheckoutFailureReleasesSeats(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)

	srv := newBookingServiceForTest(store, &fakeGateway{failCheckout: true}, &fakeScheduler{}, &fakePublisher{})

	_, err := srv.CreateBooking(context.Background(), createRequest(pkg.ID.String(), departure.ID.String(), 4))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrServiceUnavailable))
	assert.Equal(t, 0, departure.SeatsBooked)

	for _, b := range store.bookings {
		assert.Equal(t, entity.BookingStateCancelled, b.State)
	}
}

func TestCreateBookingFlexibleDateCreatesDeparture(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)

	srv := newBookingServiceForTest(store, &fakeGateway{}, &fakeScheduler{}, &fakePublisher{})

	date := time.Now().AddDate(0, 2, 0).Format("2006-01-02")
	req := createRequest(pkg.ID.String(), "", 2)
	req.DepartDate = date

	resp, err := srv.CreateBooking(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, date, resp.DepartDate)
	require.Len(t, store.departures, 1)
	for _, d := range store.departures {
		assert.Equal(t, pkg.MaxGroupSize, d.SeatsTotal)
		assert.Equal(t, 2, d.SeatsBooked)
	}
}

func TestCreateBookingPartyLargerThanGroupLimit(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 30)

	srv := newBookingServiceForTest(store, &fakeGateway{}, &fakeScheduler{}, &fakePublisher{})

	_, err := srv.CreateBooking(context.Background(), createRequest(pkg.ID.String(), departure.ID.String(), 11))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestCreateBookingUsesDeparturePriceOverride(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)
	override := int64(7500)
	departure.PriceOverride = &override

	srv := newBookingServiceForTest(store, &fakeGateway{}, &fakeScheduler{}, &fakePublisher{})

	resp, err := srv.CreateBooking(context.Background(), createRequest(pkg.ID.String(), departure.ID.String(), 2))

	require.NoError(t, err)
	assert.Equal(t, int64(15000), resp.TotalPrice)
	assert.Equal(t, int64(2000), resp.PayableNow)
}

func TestCreateBookingRejectsInactivePackage(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	pkg.IsActive = false
	departure := seedDeparture(store, pkg.ID, 10)

	srv := newBookingServiceForTest(store, &fakeGateway{}, &fakeScheduler{}, &fakePublisher{})

	_, err := srv.CreateBooking(context.Background(), createRequest(pkg.ID.String(), departure.ID.String(), 2))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCreateBookingValidation(t *testing.T) {
	store := newMemStore()
	srv := newBookingServiceForTest(store, &fakeGateway{}, &fakeScheduler{}, &fakePublisher{})

	req := createRequest(uuid.NewString(), uuid.NewString(), 2)
	req.CustomerEmail = "not-an-email"

	_, err := srv.CreateBooking(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, valErr.Fields, "CustomerEmail")
}

func TestExpireStaleBookingReleasesSeats(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)

	publisher := &fakePublisher{}
	srv := newBookingServiceForTest(store, &fakeGateway{}, &fakeScheduler{}, publisher)

	resp, err := srv.CreateBooking(context.Background(), createRequest(pkg.ID.String(), departure.ID.String(), 3))
	require.NoError(t, err)
	require.Equal(t, 3, departure.SeatsBooked)

	require.NoError(t, srv.ExpireStaleBooking(context.Background(), resp.ID))

	assert.Equal(t, 0, departure.SeatsBooked)
	booking := store.bookings[uuid.MustParse(resp.ID)]
	require.NotNil(t, booking)
	assert.Equal(t, entity.BookingStateCancelled, booking.State)
	assert.Len(t, publisher.byType("booking.cancelled"), 1)

	// Idempotent: running the expiry again changes nothing.
	require.NoError(t, srv.ExpireStaleBooking(context.Background(), resp.ID))
	assert.Equal(t, 0, departure.SeatsBooked)
	assert.Len(t, publisher.byType("booking.cancelled"), 1)
}

func TestExpireStaleBookingIgnoresConfirmed(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)

	publisher := &fakePublisher{}
	srv := newBookingServiceForTest(store, &fakeGateway{}, &fakeScheduler{}, publisher)

	resp, err := srv.CreateBooking(context.Background(), createRequest(pkg.ID.String(), departure.ID.String(), 2))
	require.NoError(t, err)

	booking := store.bookings[uuid.MustParse(resp.ID)]
	booking.State = entity.BookingStateConfirmed

	require.NoError(t, srv.ExpireStaleBooking(context.Background(), resp.ID))

	assert.Equal(t, entity.BookingStateConfirmed, booking.State)
	assert.Equal(t, 2, departure.SeatsBooked)
	assert.Empty(t, publisher.byType("booking.cancelled"))
}
