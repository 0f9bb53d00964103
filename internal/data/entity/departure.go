package entity

import (
	"time"

	"github.com/google/uuid"
)

type DepartureStatus string

const (
	DepartureStatusOpen      DepartureStatus = "open"
	DepartureStatusFull      DepartureStatus = "full"
	DepartureStatusCompleted DepartureStatus = "completed"
)

// Departure is one dated, capacity-bounded instance of a package.
// SeatsBooked counts travelers across all bookings whose state is not
// cancelled; it never exceeds SeatsTotal.
type Departure struct {
	Base
	PackageID     uuid.UUID       `db:"package_id"`
	DepartDate    time.Time       `db:"depart_date"`
	SeatsTotal    int             `db:"seats_total"`
	SeatsBooked   int             `db:"seats_booked"`
	PriceOverride *int64          `db:"price_override"`
	Status        DepartureStatus `db:"status"`
}

func (d *Departure) SeatsRemaining() int {
	return d.SeatsTotal - d.SeatsBooked
}
