package repository

import (
	"context"
	"fmt"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentRepository interface {
	// Create inserts the settlement record. Inserts are keyed by
	// (gateway_ref, status); a duplicate returns (false, nil) so
	// callers can treat replayed callbacks as no-ops. The key includes
	// the outcome because a retried payment intent keeps its reference:
	// a failure and a later success under the same reference are two
	// distinct settlements.
	Create(ctx context.Context, payment *entity.Payment) (bool, error)

	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Payment, error)
	LatestSuccessByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error)
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) (bool, error) {
	query := `
		INSERT INTO payments (id, booking_id, gateway_ref, amount, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (gateway_ref, status) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.GatewayRef,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("gateway_ref", payment.GatewayRef),
			zap.String("booking_id", payment.BookingID.String()),
		)
		return false, fmt.Errorf("create payment %s: %w", payment.GatewayRef, err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *paymentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Payment, error) {
	query := `
		SELECT id, booking_id, gateway_ref, amount, currency, status, created_at
		FROM payments
		WHERE booking_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		r.log.Error("Failed to find payments by booking ID",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find payments for booking %s: %w", bookingID.String(), err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		var payment entity.Payment
		err := rows.Scan(
			&payment.ID,
			&payment.BookingID,
			&payment.GatewayRef,
			&payment.Amount,
			&payment.Currency,
			&payment.Status,
			&payment.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan payment row", zap.Error(err))
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, &payment)
	}

	return payments, nil
}

func (r *paymentRepository) LatestSuccessByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT id, booking_id, gateway_ref, amount, currency, status, created_at
		FROM payments
		WHERE booking_id = $1 AND status = 'success'
		ORDER BY created_at DESC
		LIMIT 1
	`

	var payment entity.Payment
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.GatewayRef,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find latest payment",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find latest payment for booking %s: %w", bookingID.String(), err)
	}

	return &payment, nil
}
