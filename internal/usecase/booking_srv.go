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
	"travel-booking/internal/payment"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExpiryScheduler arms the abandonment timeout for a new booking.
type ExpiryScheduler interface {
	EnqueueBookingExpire(ctx context.Context, bookingID string, after time.Duration) error
}

type BookingService interface {
	// CreateBooking reserves seats atomically, opens a checkout with
	// the payment processor and arms the abandonment timeout.
	CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error)

	GetBooking(ctx context.Context, bookingID string) (*response.BookingDetailResponse, error)

	// ExpireStaleBooking cancels a booking still awaiting payment once
	// the abandonment window has elapsed. No-op for any other state.
	ExpireStaleBooking(ctx context.Context, bookingID string) error
}

type bookingService struct {
	repo      *repository.Repository
	gateway   payment.Gateway
	scheduler ExpiryScheduler
	publisher notify.Publisher
	config    *utils.Config
	log       *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	gateway payment.Gateway,
	scheduler ExpiryScheduler,
	publisher notify.Publisher,
	config *utils.Config,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		repo:      repo,
		gateway:   gateway,
		scheduler: scheduler,
		publisher: publisher,
		config:    config,
		log:       log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}

	if req.DepartureID == "" && req.DepartDate == "" {
		return nil, fmt.Errorf("%w: departure_id or depart_date is required", ErrInvalidInput)
	}

	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed package id %s", ErrInvalidInput, req.PackageID)
	}

	pkg, err := s.repo.Package.FindByID(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("find package: %w", ErrServiceUnavailable)
	}
	if pkg == nil || !pkg.IsActive {
		return nil, fmt.Errorf("package %s: %w", req.PackageID, ErrNotFound)
	}

	if len(req.Travelers) > pkg.MaxGroupSize {
		return nil, fmt.Errorf("%w: party of %d exceeds group limit %d", ErrInvalidInput, len(req.Travelers), pkg.MaxGroupSize)
	}

	departure, err := s.resolveDeparture(ctx, req, pkg)
	if err != nil {
		return nil, err
	}

	if departure.Status == entity.DepartureStatusCompleted || !departure.DepartDate.After(time.Now().Truncate(24*time.Hour)) {
		return nil, fmt.Errorf("%w: departure date has passed", ErrInvalidInput)
	}

	pricePerTraveler := pkg.BasePrice
	if departure.PriceOverride != nil {
		pricePerTraveler = *departure.PriceOverride
	}

	quote, err := ComputeQuote(pricePerTraveler, pkg.TokenPrice, len(req.Travelers), entity.PaymentOption(req.PaymentOption), req.Discount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrderRef:       utils.GenerateOrderRef(),
		PackageID:      pkg.ID,
		DepartureID:    departure.ID,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		Travelers:      len(req.Travelers),
		TotalPrice:     quote.TotalPrice,
		Discount:       req.Discount,
		PaymentOption:  entity.PaymentOption(req.PaymentOption),
		PayableNow:     quote.PayableNow,
		AmountPaid:     0,
		BalanceDue:     quote.TotalPrice,
		SpecialRequest: req.SpecialRequest,
		State:          entity.BookingStatePendingPayment,
	}

	travelers := make([]*entity.Traveler, len(req.Travelers))
	for i, t := range req.Travelers {
		travelers[i] = &entity.Traveler{
			BaseSimple: entity.BaseSimple{
				ID:        uuid.New(),
				CreatedAt: now,
			},
			BookingID: booking.ID,
			Name:      t.Name,
			Age:       t.Age,
			Gender:    t.Gender,
			Phone:     t.Phone,
		}
	}

	// Seat take and booking insert happen in one transaction; losing
	// the race surfaces here with the seats actually left.
	if err := s.repo.Booking.ReserveAndCreate(ctx, booking, travelers); err != nil {
		if errors.Is(err, repository.ErrSeatsUnavailable) {
			remaining := s.remainingSeats(ctx, departure)
			s.log.Info("Booking rejected, seats exhausted",
				zap.String("departure_id", departure.ID.String()),
				zap.Int("requested", len(req.Travelers)),
				zap.Int("remaining", remaining),
			)
			return nil, &InventoryError{Remaining: remaining}
		}
		s.log.Error("Failed to reserve booking", zap.Error(err), zap.String("order_ref", booking.OrderRef))
		return nil, fmt.Errorf("reserve booking: %w", ErrServiceUnavailable)
	}

	checkout, err := s.gateway.CreateCheckout(ctx, booking.ID.String(), quote.PayableNow)
	if err != nil {
		// Never leave seats held behind a checkout that does not
		// exist. Release and tell the caller to retry.
		s.log.Error("Failed to open checkout, releasing reservation",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		if relErr := s.repo.Booking.CancelAndRelease(ctx, booking.ID, entity.BookingStatePendingPayment, "payment processor unavailable at checkout"); relErr != nil {
			s.log.Error("Failed to release reservation after checkout failure",
				zap.Error(relErr),
				zap.String("booking_id", booking.ID.String()),
			)
		}
		return nil, fmt.Errorf("open checkout: %w", ErrServiceUnavailable)
	}

	if err := s.repo.Booking.SetPaymentRef(ctx, booking.ID, checkout.Reference); err != nil {
		s.log.Error("Failed to attach payment reference",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
	}

	if err := s.scheduler.EnqueueBookingExpire(ctx, booking.ID.String(), s.config.Booking.AbandonTimeout); err != nil {
		// The hourly rollover is the backstop when the queue is down.
		s.log.Error("Failed to arm abandonment timeout",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_ref", booking.OrderRef),
		zap.String("package_id", pkg.ID.String()),
		zap.String("departure_id", departure.ID.String()),
		zap.Int("travelers", booking.Travelers),
		zap.Int64("total_price", quote.TotalPrice),
		zap.Int64("payable_now", quote.PayableNow),
	)

	resp := response.BookingToResponse(booking)
	resp.PackageTitle = pkg.Title
	resp.DepartDate = departure.DepartDate.Format("2006-01-02")
	resp.Checkout = checkout
	return &resp, nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*response.BookingDetailResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed booking id %s", ErrInvalidInput, bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", ErrServiceUnavailable)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}

	return s.buildDetail(ctx, booking), nil
}

func (s *bookingService) ExpireStaleBooking(ctx context.Context, bookingID string) error {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return fmt.Errorf("%w: malformed booking id %s", ErrInvalidInput, bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find booking %s: %w", bookingID, err)
	}
	if booking == nil || booking.State != entity.BookingStatePendingPayment {
		// Paid, cancelled or gone; nothing to expire.
		return nil
	}

	err = s.repo.Booking.CancelAndRelease(ctx, id, entity.BookingStatePendingPayment, "payment not completed within the abandonment window")
	if errors.Is(err, repository.ErrStateConflict) {
		// A payment landed between the read and the cancel. Fine.
		return nil
	}
	if err != nil {
		return fmt.Errorf("expire booking %s: %w", bookingID, err)
	}

	s.log.Info("Stale booking expired",
		zap.String("booking_id", bookingID),
		zap.String("order_ref", booking.OrderRef),
	)

	s.publishEvent(notify.EventBookingCancelled, booking)
	return nil
}

// resolveDeparture returns the row for the explicit departure id, or
// upserts one for a flexible-date booking.
func (s *bookingService) resolveDeparture(ctx context.Context, req *request.CreateBookingRequest, pkg *entity.TravelPackage) (*entity.Departure, error) {
	if req.DepartureID != "" {
		departureID, err := uuid.Parse(req.DepartureID)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed departure id %s", ErrInvalidInput, req.DepartureID)
		}

		departure, err := s.repo.Departure.FindByID(ctx, departureID)
		if err != nil {
			return nil, fmt.Errorf("find departure: %w", ErrServiceUnavailable)
		}
		if departure == nil {
			return nil, fmt.Errorf("departure %s: %w", req.DepartureID, ErrNotFound)
		}
		if departure.PackageID != pkg.ID {
			return nil, fmt.Errorf("%w: departure does not belong to package %s", ErrInvalidInput, pkg.ID.String())
		}
		return departure, nil
	}

	date, err := time.Parse("2006-01-02", req.DepartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed departure date %s", ErrInvalidInput, req.DepartDate)
	}

	departure, err := s.repo.Departure.EnsureForDate(ctx, pkg.ID, date, pkg.MaxGroupSize)
	if err != nil {
		return nil, fmt.Errorf("ensure departure: %w", ErrServiceUnavailable)
	}
	return departure, nil
}

func (s *bookingService) remainingSeats(ctx context.Context, departure *entity.Departure) int {
	fresh, err := s.repo.Departure.FindByID(ctx, departure.ID)
	if err != nil || fresh == nil {
		return 0
	}
	remaining := fresh.SeatsRemaining()
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *bookingService) buildDetail(ctx context.Context, booking *entity.Booking) *response.BookingDetailResponse {
	detail := &response.BookingDetailResponse{
		BookingResponse: response.BookingToResponse(booking),
		DiscrepancyNote: booking.DiscrepancyNote,
		SpecialRequest:  booking.SpecialRequest,
		CancelReason:    booking.CancelReason,
	}

	if pkg, err := s.repo.Package.FindByID(ctx, booking.PackageID); err == nil && pkg != nil {
		detail.PackageTitle = pkg.Title
	}
	if departure, err := s.repo.Departure.FindByID(ctx, booking.DepartureID); err == nil && departure != nil {
		detail.DepartDate = departure.DepartDate.Format("2006-01-02")
	}

	travelers, err := s.repo.Booking.TravelersByBookingID(ctx, booking.ID)
	if err == nil {
		detail.TravelerList = make([]response.TravelerResponse, len(travelers))
		for i, t := range travelers {
			detail.TravelerList[i] = response.TravelerToResponse(t)
		}
	}

	payments, err := s.repo.Payment.FindByBookingID(ctx, booking.ID)
	if err == nil {
		detail.Payments = make([]response.PaymentResponse, len(payments))
		for i, p := range payments {
			detail.Payments[i] = response.PaymentToResponse(p)
		}
	}

	return detail
}

func (s *bookingService) publishEvent(eventType string, booking *entity.Booking) {
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
