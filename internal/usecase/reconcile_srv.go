package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/notify"
	"travel-booking/internal/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReconcileService interface {
	// HandleCallback authenticates and applies one gateway callback.
	// Safe to invoke any number of times with the same payment
	// reference; replays are success no-ops.
	HandleCallback(ctx context.Context, payload []byte, signature string) error
}

type reconcileService struct {
	repo      *repository.Repository
	gateway   payment.Gateway
	publisher notify.Publisher
	currency  string
	log       *zap.Logger
}

func NewReconcileService(
	repo *repository.Repository,
	gateway payment.Gateway,
	publisher notify.Publisher,
	currency string,
	log *zap.Logger,
) ReconcileService {
	return &reconcileService{
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		currency:  currency,
		log:       log.With(zap.String("service", "reconcile")),
	}
}

func (s *reconcileService) HandleCallback(ctx context.Context, payload []byte, signature string) error {
	callback, err := s.gateway.ParseCallback(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			s.log.Warn("Callback rejected, bad signature")
			return fmt.Errorf("%w: callback signature verification failed", ErrInvalidInput)
		}
		s.log.Error("Failed to parse callback", zap.Error(err))
		return fmt.Errorf("%w: malformed callback payload", ErrInvalidInput)
	}

	// Event types the engine does not reconcile.
	if callback == nil {
		return nil
	}

	bookingID, err := uuid.Parse(callback.BookingID)
	if err != nil {
		s.log.Warn("Callback carries malformed booking id", zap.String("booking_id", callback.BookingID))
		return fmt.Errorf("%w: malformed booking id in callback", ErrInvalidInput)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("find booking for callback: %w", ErrServiceUnavailable)
	}
	if booking == nil {
		s.log.Warn("Callback for unknown booking",
			zap.String("booking_id", callback.BookingID),
			zap.String("gateway_ref", callback.Reference),
		)
		return fmt.Errorf("booking %s: %w", callback.BookingID, ErrNotFound)
	}

	if !callback.Succeeded {
		return s.applyFailure(ctx, booking, callback)
	}

	// Zero tolerance, compared in the gateway's minor unit so a stray
	// paise can never round into a match.
	if callback.Amount != booking.PayableNow*100 {
		return s.applyMismatch(ctx, booking, callback)
	}

	return s.applyConfirmation(ctx, booking, callback)
}

// rupees formats a minor-unit amount for discrepancy notes.
func rupees(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

// applyConfirmation records the payment and confirms the booking in
// one transaction. Successful settlements dedup on the gateway
// reference; a failed attempt under the same reference does not block
// a later success.
func (s *reconcileService) applyConfirmation(ctx context.Context, booking *entity.Booking, callback *payment.Callback) error {
	pay := &entity.Payment{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		BookingID:  booking.ID,
		GatewayRef: callback.Reference,
		Amount:     booking.PayableNow,
		Currency:   s.currency,
		Status:     entity.PaymentStatusSuccess,
	}

	applied, err := s.repo.Booking.ConfirmPaid(ctx, pay)
	if err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			// The booking had left pending_payment (expired, failed
			// attempt, or staff-cancelled) before the money landed.
			// Keep the settlement on record and flag for review
			// instead of guessing; never resurrect silently.
			if _, recErr := s.repo.Payment.Create(ctx, pay); recErr != nil {
				s.log.Error("Failed to record late payment", zap.Error(recErr), zap.String("gateway_ref", callback.Reference))
			}
			note := fmt.Sprintf("payment %s received while booking was %s", callback.Reference, booking.State)
			if flagErr := s.repo.Booking.FlagDiscrepancy(ctx, booking.ID, note); flagErr != nil {
				s.log.Error("Failed to flag late payment", zap.Error(flagErr), zap.String("booking_id", booking.ID.String()))
			}
			s.log.Warn("Payment landed on non-pending booking",
				zap.String("booking_id", booking.ID.String()),
				zap.String("gateway_ref", callback.Reference),
				zap.String("state", string(booking.State)),
			)
			return nil
		}
		s.log.Error("Failed to confirm booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("gateway_ref", callback.Reference),
		)
		return fmt.Errorf("confirm booking: %w", ErrServiceUnavailable)
	}

	if !applied {
		// Same gateway reference seen before; already reconciled.
		s.log.Info("Duplicate callback ignored",
			zap.String("booking_id", booking.ID.String()),
			zap.String("gateway_ref", callback.Reference),
		)
		return nil
	}

	s.log.Info("Booking confirmed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_ref", booking.OrderRef),
		zap.String("gateway_ref", callback.Reference),
		zap.Int64("amount", callback.Amount),
	)

	booking.AmountPaid = booking.PayableNow
	booking.BalanceDue = booking.TotalPrice - booking.PayableNow
	s.publishEvent(notify.EventBookingConfirmed, booking)
	return nil
}

// applyMismatch records the settlement but refuses to confirm: the
// captured amount disagrees with what was computed at creation. The
// booking stays pending_payment with a discrepancy flag for staff.
func (s *reconcileService) applyMismatch(ctx context.Context, booking *entity.Booking, callback *payment.Callback) error {
	pay := &entity.Payment{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		BookingID:  booking.ID,
		GatewayRef: callback.Reference,
		Amount:     callback.Amount / 100,
		Currency:   s.currency,
		Status:     entity.PaymentStatusSuccess,
	}

	inserted, err := s.repo.Payment.Create(ctx, pay)
	if err != nil {
		return fmt.Errorf("record mismatched payment: %w", ErrServiceUnavailable)
	}
	if !inserted {
		// Replay of an already-flagged callback.
		return nil
	}

	note := fmt.Sprintf("captured %s, expected %s (ref %s)", rupees(callback.Amount), rupees(booking.PayableNow*100), callback.Reference)
	if err := s.repo.Booking.FlagDiscrepancy(ctx, booking.ID, note); err != nil {
		s.log.Error("Failed to flag discrepancy",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return fmt.Errorf("flag discrepancy: %w", ErrServiceUnavailable)
	}

	s.log.Warn("Payment amount mismatch, booking held for review",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_ref", booking.OrderRef),
		zap.String("gateway_ref", callback.Reference),
		zap.Int64("captured_minor", callback.Amount),
		zap.Int64("expected_minor", booking.PayableNow*100),
	)
	return nil
}

// applyFailure records the failed settlement and cancels the booking,
// releasing its seats. Replays and already-moved bookings are no-ops.
func (s *reconcileService) applyFailure(ctx context.Context, booking *entity.Booking, callback *payment.Callback) error {
	pay := &entity.Payment{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		BookingID:  booking.ID,
		GatewayRef: callback.Reference,
		Amount:     callback.Amount / 100,
		Currency:   s.currency,
		Status:     entity.PaymentStatusFailed,
	}

	inserted, err := s.repo.Payment.Create(ctx, pay)
	if err != nil {
		return fmt.Errorf("record failed payment: %w", ErrServiceUnavailable)
	}
	if !inserted {
		return nil
	}

	reason := "payment failed"
	if callback.FailureMsg != "" {
		reason = "payment failed: " + callback.FailureMsg
	}

	err = s.repo.Booking.CancelAndRelease(ctx, booking.ID, entity.BookingStatePendingPayment, reason)
	if errors.Is(err, repository.ErrStateConflict) {
		// Booking already confirmed or cancelled elsewhere; the
		// failure record alone is enough.
		return nil
	}
	if err != nil {
		s.log.Error("Failed to cancel booking after payment failure",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return fmt.Errorf("cancel booking: %w", ErrServiceUnavailable)
	}

	s.log.Info("Booking cancelled on payment failure",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_ref", booking.OrderRef),
		zap.String("gateway_ref", callback.Reference),
	)

	s.publishEvent(notify.EventBookingCancelled, booking)
	return nil
}

func (s *reconcileService) publishEvent(eventType string, booking *entity.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	event := notify.Event{
		Type:          eventType,
		BookingID:     booking.ID.String(),
		OrderRef:      booking.OrderRef,
		CustomerName:  booking.CustomerName,
		CustomerEmail: booking.CustomerEmail,
		AmountPaid:    booking.AmountPaid,
		BalanceDue:    booking.BalanceDue,
		OccurredAt:    time.Now(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish booking event",
			zap.Error(err),
			zap.String("type", eventType),
			zap.String("booking_id", booking.ID.String()),
		)
	}
}
