package usecase

import (
	"context"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AvailabilityService interface {
	// Check answers whether a party fits on a departure. Fails closed:
	// any store error reports unavailable rather than guessing.
	Check(ctx context.Context, req *request.AvailabilityRequest) (*response.AvailabilityResponse, error)
}

type availabilityService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewAvailabilityService(repo *repository.Repository, log *zap.Logger) AvailabilityService {
	return &availabilityService{
		repo: repo,
		log:  log.With(zap.String("service", "availability")),
	}
}

func (s *availabilityService) Check(ctx context.Context, req *request.AvailabilityRequest) (*response.AvailabilityResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Availability validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}

	departure, err := s.resolveDeparture(ctx, req)
	if err != nil {
		return nil, err
	}

	// A date with no departure row yet has everything free up to the
	// package's group size.
	if departure == nil {
		pkg, err := s.lookupPackage(ctx, req.PackageID)
		if err != nil {
			return nil, err
		}
		return &response.AvailabilityResponse{
			Available:  req.Travelers <= pkg.MaxGroupSize,
			SeatsLeft:  pkg.MaxGroupSize,
			DepartDate: req.Date,
		}, nil
	}

	if departure.Status == entity.DepartureStatusCompleted {
		return &response.AvailabilityResponse{
			Available:   false,
			SeatsLeft:   0,
			DepartureID: departure.ID.String(),
			DepartDate:  departure.DepartDate.Format("2006-01-02"),
		}, nil
	}

	// The authoritative count walks the bookings, not the counter:
	// travelers across every non-cancelled booking on the departure.
	taken, err := s.repo.Booking.SumActiveTravelers(ctx, departure.ID)
	if err != nil {
		s.log.Error("Failed to sum active travelers",
			zap.Error(err),
			zap.String("departure_id", departure.ID.String()),
		)
		return nil, fmt.Errorf("count booked travelers: %w", ErrServiceUnavailable)
	}

	remaining := departure.SeatsTotal - taken
	if remaining < 0 {
		remaining = 0
	}

	return &response.AvailabilityResponse{
		Available:   req.Travelers <= remaining,
		SeatsLeft:   remaining,
		DepartureID: departure.ID.String(),
		DepartDate:  departure.DepartDate.Format("2006-01-02"),
	}, nil
}

// resolveDeparture finds the departure by id, or by (package, date).
// Returns (nil, nil) when a date was given and no row exists yet.
func (s *availabilityService) resolveDeparture(ctx context.Context, req *request.AvailabilityRequest) (*entity.Departure, error) {
	if req.DepartureID != "" {
		id, err := uuid.Parse(req.DepartureID)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed departure id %s", ErrInvalidInput, req.DepartureID)
		}

		departure, err := s.repo.Departure.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find departure: %w", ErrServiceUnavailable)
		}
		if departure == nil {
			return nil, fmt.Errorf("departure %s: %w", req.DepartureID, ErrNotFound)
		}
		return departure, nil
	}

	if req.PackageID == "" || req.Date == "" {
		return nil, fmt.Errorf("%w: departure_id or package_id with date is required", ErrInvalidInput)
	}

	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed package id %s", ErrInvalidInput, req.PackageID)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed date %s", ErrInvalidInput, req.Date)
	}

	departure, err := s.repo.Departure.FindByPackageAndDate(ctx, packageID, date)
	if err != nil {
		return nil, fmt.Errorf("find departure by date: %w", ErrServiceUnavailable)
	}
	return departure, nil
}

func (s *availabilityService) lookupPackage(ctx context.Context, packageID string) (*entity.TravelPackage, error) {
	id, err := uuid.Parse(packageID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed package id %s", ErrInvalidInput, packageID)
	}

	pkg, err := s.repo.Package.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find package: %w", ErrServiceUnavailable)
	}
	if pkg == nil || !pkg.IsActive {
		return nil, fmt.Errorf("package %s: %w", packageID, ErrNotFound)
	}
	return pkg, nil
}
