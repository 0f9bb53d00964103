package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/internal/notify"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdminService is the reconciliation surface: list and inspect
// bookings, and apply the two staff transitions plus hard delete.
// Transitions are optimistic: the state the view last read is
// re-checked in the update, and a change since then is a conflict.
type AdminService interface {
	ListBookings(ctx context.Context, req *request.BookingFilterRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBookingDetail(ctx context.Context, bookingID string) (*response.BookingDetailResponse, error)
	ConfirmBooking(ctx context.Context, bookingID string) error
	CancelBooking(ctx context.Context, bookingID string, req *request.CancelBookingRequest) error
	DeleteBooking(ctx context.Context, bookingID string) error
}

type adminService struct {
	repo      *repository.Repository
	booking   BookingService
	publisher notify.Publisher
	log       *zap.Logger
}

func NewAdminService(repo *repository.Repository, booking BookingService, publisher notify.Publisher, log *zap.Logger) AdminService {
	return &adminService{
		repo:      repo,
		booking:   booking,
		publisher: publisher,
		log:       log.With(zap.String("service", "admin")),
	}
}

func (s *adminService) ListBookings(ctx context.Context, req *request.BookingFilterRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Booking filter validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}

	state := entity.BookingState(req.Status)

	bookings, err := s.repo.Booking.Search(ctx, state, req.Query, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to search bookings", zap.Error(err))
		return nil, fmt.Errorf("search bookings: %w", ErrServiceUnavailable)
	}

	total, err := s.repo.Booking.CountSearch(ctx, state, req.Query)
	if err != nil {
		s.log.Error("Failed to count bookings", zap.Error(err))
		return nil, fmt.Errorf("count bookings: %w", ErrServiceUnavailable)
	}

	bookingResponses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		bookingResponses[i] = response.BookingToResponse(booking)
	}

	return response.NewPaginatedResponse(bookingResponses, req.Page, req.PerPage, total), nil
}

func (s *adminService) GetBookingDetail(ctx context.Context, bookingID string) (*response.BookingDetailResponse, error) {
	return s.booking.GetBooking(ctx, bookingID)
}

// ConfirmBooking is the manual path for discrepancy resolution: staff
// verified the money and push the booking through themselves.
func (s *adminService) ConfirmBooking(ctx context.Context, bookingID string) error {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return fmt.Errorf("%w: malformed booking id %s", ErrInvalidInput, bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find booking: %w", ErrServiceUnavailable)
	}
	if booking == nil {
		return fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}

	err = s.repo.Booking.TransitionState(ctx, id, entity.BookingStatePendingPayment, entity.BookingStateConfirmed)
	if errors.Is(err, repository.ErrStateConflict) {
		return fmt.Errorf("confirm booking %s: %w", bookingID, ErrStateConflict)
	}
	if err != nil {
		s.log.Error("Failed to confirm booking", zap.Error(err), zap.String("booking_id", bookingID))
		return fmt.Errorf("confirm booking: %w", ErrServiceUnavailable)
	}

	s.log.Info("Booking confirmed by staff",
		zap.String("booking_id", bookingID),
		zap.String("order_ref", booking.OrderRef),
	)

	// Re-read after the transition so the event carries the row as it
	// now stands, not the snapshot taken before the update.
	confirmed, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil || confirmed == nil {
		s.log.Warn("Failed to reload booking after confirm", zap.Error(err), zap.String("booking_id", bookingID))
		confirmed = booking
	}

	s.publishEvent(notify.EventBookingConfirmed, confirmed)
	return nil
}

func (s *adminService) CancelBooking(ctx context.Context, bookingID string, req *request.CancelBookingRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Cancel booking validation failed", zap.Any("errors", errs))
		return &ValidationError{Fields: errs}
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return fmt.Errorf("%w: malformed booking id %s", ErrInvalidInput, bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find booking: %w", ErrServiceUnavailable)
	}
	if booking == nil {
		return fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}

	err = s.repo.Booking.CancelAndRelease(ctx, id, entity.BookingState(req.CurrentState), req.Reason)
	if errors.Is(err, repository.ErrStateConflict) {
		return fmt.Errorf("cancel booking %s: %w", bookingID, ErrStateConflict)
	}
	if err != nil {
		s.log.Error("Failed to cancel booking", zap.Error(err), zap.String("booking_id", bookingID))
		return fmt.Errorf("cancel booking: %w", ErrServiceUnavailable)
	}

	s.log.Info("Booking cancelled by staff",
		zap.String("booking_id", bookingID),
		zap.String("order_ref", booking.OrderRef),
		zap.String("reason", req.Reason),
	)

	s.publishEvent(notify.EventBookingCancelled, booking)
	return nil
}

func (s *adminService) DeleteBooking(ctx context.Context, bookingID string) error {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return fmt.Errorf("%w: malformed booking id %s", ErrInvalidInput, bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find booking: %w", ErrServiceUnavailable)
	}
	if booking == nil {
		return fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}

	if err := s.repo.Booking.HardDelete(ctx, id); err != nil {
		s.log.Error("Failed to delete booking", zap.Error(err), zap.String("booking_id", bookingID))
		return fmt.Errorf("delete booking: %w", ErrServiceUnavailable)
	}

	s.log.Info("Booking deleted",
		zap.String("booking_id", bookingID),
		zap.String("order_ref", booking.OrderRef),
	)
	return nil
}

func (s *adminService) publishEvent(eventType string, booking *entity.Booking) {
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
