package entity

import (
	"time"

	"github.com/google/uuid"
)

// Base carries the identity and bookkeeping columns shared by mutable
// entities. BaseSimple is for insert-only rows.
type Base struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type BaseSimple struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}
