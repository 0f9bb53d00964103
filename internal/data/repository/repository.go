package repository

import (
	"errors"

	"travel-booking/pkg/database"

	"go.uber.org/zap"
)

// Sentinel errors surfaced by conditional writes. Callers translate
// them into their own taxonomy.
var (
	ErrSeatsUnavailable = errors.New("insufficient seats")
	ErrStateConflict    = errors.New("state changed concurrently")
)

type Repository struct {
	Staff     StaffRepository
	Session   SessionRepository
	Package   PackageRepository
	Departure DepartureRepository
	Booking   BookingRepository
	Payment   PaymentRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Staff:     NewStaffRepository(db, log),
		Session:   NewSessionRepository(db, log),
		Package:   NewPackageRepository(db, log),
		Departure: NewDepartureRepository(db, log),
		Booking:   NewBookingRepository(db, log),
		Payment:   NewPaymentRepository(db, log),
	}
}
