package usecase

import (
	"context"
	"errors"
	"testing"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAvailabilityServiceForTest(s *memStore) AvailabilityService {
	return NewAvailabilityService(s.repository(), zap.NewNop())
}

func TestAvailabilityCountsActiveBookings(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)
	seedPendingBooking(store, departure, 4, 4000, 24000)

	srv := newAvailabilityServiceForTest(store)

	resp, err := srv.Check(context.Background(), &request.AvailabilityRequest{
		DepartureID: departure.ID.String(),
		Travelers:   6,
	})

	require.NoError(t, err)
	assert.True(t, resp.Available)
	assert.Equal(t, 6, resp.SeatsLeft)

	resp, err = srv.Check(context.Background(), &request.AvailabilityRequest{
		DepartureID: departure.ID.String(),
		Travelers:   7,
	})

	require.NoError(t, err)
	assert.False(t, resp.Available)
}

func TestAvailabilityIgnoresCancelledBookings(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)
	booking := seedPendingBooking(store, departure, 4, 4000, 24000)
	booking.State = entity.BookingStateCancelled

	srv := newAvailabilityServiceForTest(store)

	resp, err := srv.Check(context.Background(), &request.AvailabilityRequest{
		DepartureID: departure.ID.String(),
		Travelers:   10,
	})

	require.NoError(t, err)
	assert.True(t, resp.Available)
	assert.Equal(t, 10, resp.SeatsLeft)
}

func TestAvailabilityForDateWithoutDeparture(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)

	srv := newAvailabilityServiceForTest(store)

	resp, err := srv.Check(context.Background(), &request.AvailabilityRequest{
		PackageID: pkg.ID.String(),
		Date:      "2026-11-20",
		Travelers: 5,
	})

	require.NoError(t, err)
	assert.True(t, resp.Available)
	assert.Equal(t, pkg.MaxGroupSize, resp.SeatsLeft)
	assert.Equal(t, "2026-11-20", resp.DepartDate)
}

func TestAvailabilityCompletedDeparture(t *testing.T) {
	store := newMemStore()
	pkg := seedPackage(store)
	departure := seedDeparture(store, pkg.ID, 10)
	departure.Status = entity.DepartureStatusCompleted

	srv := newAvailabilityServiceForTest(store)

	resp, err := srv.Check(context.Background(), &request.AvailabilityRequest{
		DepartureID: departure.ID.String(),
		Travelers:   1,
	})

	require.NoError(t, err)
	assert.False(t, resp.Available)
	assert.Equal(t, 0, resp.SeatsLeft)
}

func TestAvailabilityUnknownDeparture(t *testing.T) {
	store := newMemStore()
	srv := newAvailabilityServiceForTest(store)

	_, err := srv.Check(context.Background(), &request.AvailabilityRequest{
		DepartureID: uuid.NewString(),
		Travelers:   2,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAvailabilityNeedsTarget(t *testing.T) {
	store := newMemStore()
	srv := newAvailabilityServiceForTest(store)

	_, err := srv.Check(context.Background(), &request.AvailabilityRequest{Travelers: 2})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
