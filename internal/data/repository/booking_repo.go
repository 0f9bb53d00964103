package repository

import (
	"context"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	// ReserveAndCreate atomically takes the party's seats on the
	// departure and inserts the booking plus its travelers. The seat
	// take is a conditional update; when the departure cannot hold the
	// party the whole transaction rolls back with ErrSeatsUnavailable.
	ReserveAndCreate(ctx context.Context, booking *entity.Booking, travelers []*entity.Traveler) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByOrderRef(ctx context.Context, orderRef string) (*entity.Booking, error)
	Search(ctx context.Context, state entity.BookingState, term string, limit, offset int) ([]*entity.Booking, error)
	CountSearch(ctx context.Context, state entity.BookingState, term string) (int64, error)
	TravelersByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Traveler, error)

	// SumActiveTravelers is the inventory read path: total travelers
	// across bookings on the departure whose state is not cancelled.
	SumActiveTravelers(ctx context.Context, departureID uuid.UUID) (int, error)

	SetPaymentRef(ctx context.Context, id uuid.UUID, ref string) error
	FlagDiscrepancy(ctx context.Context, id uuid.UUID, note string) error

	// ConfirmPaid records the payment and flips the booking from
	// pending_payment to confirmed in one transaction. Successful
	// settlements dedup on gateway_ref: a replayed success returns
	// (false, nil) without touching anything, while an earlier failed
	// attempt under the same reference does not block the confirm.
	ConfirmPaid(ctx context.Context, payment *entity.Payment) (bool, error)

	// TransitionState applies `from -> to` only when the booking is
	// still in `from` (optimistic concurrency); ErrStateConflict when
	// another writer got there first.
	TransitionState(ctx context.Context, id uuid.UUID, from, to entity.BookingState) error

	// CancelAndRelease cancels a booking in state `from` and returns
	// its travelers to the departure's free pool, atomically.
	CancelAndRelease(ctx context.Context, id uuid.UUID, from entity.BookingState, reason string) error

	// HardDelete removes the booking, its travelers and payment rows.
	// Staff-only, irreversible; releases held seats unless the booking
	// was already cancelled.
	HardDelete(ctx context.Context, id uuid.UUID) error

	// CompletePastDeparted marks confirmed bookings on departures dated
	// before the cutoff as completed. Reporting only.
	CompletePastDeparted(ctx context.Context, cutoff time.Time) (int64, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, order_ref, package_id, departure_id, customer_name, customer_email, customer_phone,
	travelers, total_price, discount, payment_option, payable_now, amount_paid, balance_due,
	payment_ref, discrepancy, discrepancy_note, special_request, cancel_reason, state, created_at, updated_at`

func (r *bookingRepository) scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.OrderRef,
		&booking.PackageID,
		&booking.DepartureID,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&booking.CustomerPhone,
		&booking.Travelers,
		&booking.TotalPrice,
		&booking.Discount,
		&booking.PaymentOption,
		&booking.PayableNow,
		&booking.AmountPaid,
		&booking.BalanceDue,
		&booking.PaymentRef,
		&booking.Discrepancy,
		&booking.DiscrepancyNote,
		&booking.SpecialRequest,
		&booking.CancelReason,
		&booking.State,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) ReserveAndCreate(ctx context.Context, booking *entity.Booking, travelers []*entity.Traveler) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin reservation transaction", zap.Error(err))
		return fmt.Errorf("begin reservation: %w", err)
	}
	defer tx.Rollback(ctx)

	// Conditional seat take. The WHERE clause is the capacity invariant:
	// the update matches zero rows when the party does not fit, so two
	// concurrent parties can never jointly exceed seats_total.
	seatQuery := `
		UPDATE departures
		SET seats_booked = seats_booked + $2,
		    status = CASE WHEN seats_booked + $2 >= seats_total THEN 'full' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1
		  AND status <> 'completed'
		  AND seats_booked + $2 <= seats_total
	`

	result, err := tx.Exec(ctx, seatQuery, booking.DepartureID, booking.Travelers)
	if err != nil {
		r.log.Error("Failed to reserve seats",
			zap.Error(err),
			zap.String("departure_id", booking.DepartureID.String()),
			zap.Int("travelers", booking.Travelers),
		)
		return fmt.Errorf("reserve seats on departure %s: %w", booking.DepartureID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return ErrSeatsUnavailable
	}

	bookingQuery := `
		INSERT INTO bookings (id, order_ref, package_id, departure_id, customer_name, customer_email, customer_phone,
		                      travelers, total_price, discount, payment_option, payable_now, amount_paid, balance_due,
		                      special_request, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err = tx.Exec(ctx, bookingQuery,
		booking.ID,
		booking.OrderRef,
		booking.PackageID,
		booking.DepartureID,
		booking.CustomerName,
		booking.CustomerEmail,
		booking.CustomerPhone,
		booking.Travelers,
		booking.TotalPrice,
		booking.Discount,
		booking.PaymentOption,
		booking.PayableNow,
		booking.AmountPaid,
		booking.BalanceDue,
		booking.SpecialRequest,
		booking.State,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert booking",
			zap.Error(err),
			zap.String("order_ref", booking.OrderRef),
		)
		return fmt.Errorf("insert booking %s: %w", booking.OrderRef, err)
	}

	travelerQuery := `
		INSERT INTO booking_travelers (id, booking_id, name, age, gender, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, t := range travelers {
		_, err = tx.Exec(ctx, travelerQuery,
			t.ID,
			t.BookingID,
			t.Name,
			t.Age,
			t.Gender,
			t.Phone,
			t.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to insert traveler",
				zap.Error(err),
				zap.String("booking_id", t.BookingID.String()),
			)
			return fmt.Errorf("insert traveler for booking %s: %w", t.BookingID.String(), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit reservation", zap.Error(err))
		return fmt.Errorf("commit reservation: %w", err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := r.scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByOrderRef(ctx context.Context, orderRef string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE order_ref = $1`

	booking, err := r.scanBooking(r.db.QueryRow(ctx, query, orderRef))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by order ref",
			zap.Error(err),
			zap.String("order_ref", orderRef),
		)
		return nil, fmt.Errorf("find booking by order ref %s: %w", orderRef, err)
	}

	return booking, nil
}

func (r *bookingRepository) Search(ctx context.Context, state entity.BookingState, term string, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ($1 = '' OR state = $1)
		  AND ($2 = '' OR customer_name ILIKE '%' || $2 || '%' OR order_ref ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, string(state), term, limit, offset)
	if err != nil {
		r.log.Error("Failed to search bookings",
			zap.Error(err),
			zap.String("state", string(state)),
			zap.String("term", term),
		)
		return nil, fmt.Errorf("search bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) CountSearch(ctx context.Context, state entity.BookingState, term string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE ($1 = '' OR state = $1)
		  AND ($2 = '' OR customer_name ILIKE '%' || $2 || '%' OR order_ref ILIKE '%' || $2 || '%')
	`

	var count int64
	err := r.db.QueryRow(ctx, query, string(state), term).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}

	return count, nil
}

func (r *bookingRepository) TravelersByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Traveler, error) {
	query := `
		SELECT id, booking_id, name, age, gender, phone, created_at
		FROM booking_travelers
		WHERE booking_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to list travelers",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("list travelers for booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var travelers []*entity.Traveler
	for rows.Next() {
		var t entity.Traveler
		err := rows.Scan(
			&t.ID,
			&t.BookingID,
			&t.Name,
			&t.Age,
			&t.Gender,
			&t.Phone,
			&t.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan traveler row", zap.Error(err))
			return nil, fmt.Errorf("scan traveler row: %w", err)
		}
		travelers = append(travelers, &t)
	}

	return travelers, nil
}

func (r *bookingRepository) SumActiveTravelers(ctx context.Context, departureID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(SUM(travelers), 0)
		FROM bookings
		WHERE departure_id = $1 AND state <> 'cancelled'
	`

	var sum int
	err := r.db.QueryRow(ctx, query, departureID).Scan(&sum)
	if err != nil {
		r.log.Error("Failed to sum active travelers",
			zap.Error(err),
			zap.String("departure_id", departureID.String()),
		)
		return 0, fmt.Errorf("sum active travelers for departure %s: %w", departureID.String(), err)
	}

	return sum, nil
}

func (r *bookingRepository) SetPaymentRef(ctx context.Context, id uuid.UUID, ref string) error {
	query := `UPDATE bookings SET payment_ref = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, ref)
	if err != nil {
		r.log.Error("Failed to set payment ref",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("set payment ref on booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", id.String())
	}

	return nil
}

func (r *bookingRepository) FlagDiscrepancy(ctx context.Context, id uuid.UUID, note string) error {
	query := `
		UPDATE bookings
		SET discrepancy = TRUE, discrepancy_note = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, note)
	if err != nil {
		r.log.Error("Failed to flag discrepancy",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("flag discrepancy on booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", id.String())
	}

	return nil
}

func (r *bookingRepository) ConfirmPaid(ctx context.Context, payment *entity.Payment) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin confirm transaction", zap.Error(err))
		return false, fmt.Errorf("begin confirm: %w", err)
	}
	defer tx.Rollback(ctx)

	paymentQuery := `
		INSERT INTO payments (id, booking_id, gateway_ref, amount, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (gateway_ref, status) DO NOTHING
	`

	result, err := tx.Exec(ctx, paymentQuery,
		payment.ID,
		payment.BookingID,
		payment.GatewayRef,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert payment",
			zap.Error(err),
			zap.String("gateway_ref", payment.GatewayRef),
		)
		return false, fmt.Errorf("insert payment %s: %w", payment.GatewayRef, err)
	}

	// This reference already has a successful settlement on record:
	// duplicate callback, nothing to do. A failed attempt under the
	// same reference does not count; a retried intent keeps its id.
	if result.RowsAffected() == 0 {
		return false, nil
	}

	confirmQuery := `
		UPDATE bookings
		SET state = 'confirmed', amount_paid = $2, balance_due = total_price - $2,
		    payment_ref = $3, updated_at = NOW()
		WHERE id = $1 AND state = 'pending_payment'
	`

	result, err = tx.Exec(ctx, confirmQuery, payment.BookingID, payment.Amount, payment.GatewayRef)
	if err != nil {
		r.log.Error("Failed to confirm booking",
			zap.Error(err),
			zap.String("booking_id", payment.BookingID.String()),
		)
		return false, fmt.Errorf("confirm booking %s: %w", payment.BookingID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return false, ErrStateConflict
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit confirm", zap.Error(err))
		return false, fmt.Errorf("commit confirm: %w", err)
	}

	return true, nil
}

func (r *bookingRepository) TransitionState(ctx context.Context, id uuid.UUID, from, to entity.BookingState) error {
	query := `UPDATE bookings SET state = $3, updated_at = NOW() WHERE id = $1 AND state = $2`

	result, err := r.db.Exec(ctx, query, id, from, to)
	if err != nil {
		r.log.Error("Failed to transition booking state",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return fmt.Errorf("transition booking %s to %s: %w", id.String(), string(to), err)
	}

	if result.RowsAffected() == 0 {
		return ErrStateConflict
	}

	return nil
}

func (r *bookingRepository) CancelAndRelease(ctx context.Context, id uuid.UUID, from entity.BookingState, reason string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin cancel transaction", zap.Error(err))
		return fmt.Errorf("begin cancel: %w", err)
	}
	defer tx.Rollback(ctx)

	cancelQuery := `
		UPDATE bookings
		SET state = 'cancelled', cancel_reason = $3, updated_at = NOW()
		WHERE id = $1 AND state = $2
		RETURNING travelers, departure_id
	`

	var travelers int
	var departureID uuid.UUID
	err = tx.QueryRow(ctx, cancelQuery, id, from, reason).Scan(&travelers, &departureID)
	if err == pgx.ErrNoRows {
		return ErrStateConflict
	}
	if err != nil {
		r.log.Error("Failed to cancel booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("cancel booking %s: %w", id.String(), err)
	}

	releaseQuery := `
		UPDATE departures
		SET seats_booked = seats_booked - $2,
		    status = CASE WHEN status = 'full' THEN 'open' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, releaseQuery, departureID, travelers); err != nil {
		r.log.Error("Failed to release seats",
			zap.Error(err),
			zap.String("departure_id", departureID.String()),
		)
		return fmt.Errorf("release seats on departure %s: %w", departureID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit cancel", zap.Error(err))
		return fmt.Errorf("commit cancel: %w", err)
	}

	r.log.Info("Booking cancelled",
		zap.String("booking_id", id.String()),
		zap.Int("seats_released", travelers),
	)

	return nil
}

func (r *bookingRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin delete transaction", zap.Error(err))
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	// A non-cancelled booking still holds seats; give them back before
	// the row disappears.
	releaseQuery := `
		UPDATE departures d
		SET seats_booked = d.seats_booked - b.travelers,
		    status = CASE WHEN d.status = 'full' THEN 'open' ELSE d.status END,
		    updated_at = NOW()
		FROM bookings b
		WHERE b.id = $1 AND b.departure_id = d.id AND b.state <> 'cancelled'
	`

	if _, err := tx.Exec(ctx, releaseQuery, id); err != nil {
		r.log.Error("Failed to release seats before delete",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("release seats for booking %s: %w", id.String(), err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM payments WHERE booking_id = $1`, id); err != nil {
		return fmt.Errorf("delete payments for booking %s: %w", id.String(), err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM booking_travelers WHERE booking_id = $1`, id); err != nil {
		return fmt.Errorf("delete travelers for booking %s: %w", id.String(), err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("delete booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", id.String())
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit delete", zap.Error(err))
		return fmt.Errorf("commit delete: %w", err)
	}

	r.log.Info("Booking deleted", zap.String("booking_id", id.String()))
	return nil
}

func (r *bookingRepository) CompletePastDeparted(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE bookings b
		SET state = 'completed', updated_at = NOW()
		FROM departures d
		WHERE b.departure_id = d.id
		  AND b.state = 'confirmed'
		  AND d.depart_date < $1
	`

	result, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		r.log.Error("Failed to complete departed bookings", zap.Error(err))
		return 0, fmt.Errorf("complete departed bookings: %w", err)
	}

	return result.RowsAffected(), nil
}
