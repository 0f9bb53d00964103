package entity

import (
	"github.com/google/uuid"
)

// Traveler is one member of a booking's party.
type Traveler struct {
	BaseSimple
	BookingID uuid.UUID `db:"booking_id"`
	Name      string    `db:"name"`
	Age       int       `db:"age"`
	Gender    string    `db:"gender"`
	Phone     *string   `db:"phone"`
}
