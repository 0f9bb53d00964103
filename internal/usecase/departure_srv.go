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

type DepartureService interface {
	CreateDeparture(ctx context.Context, req *request.CreateDepartureRequest) (*response.DepartureResponse, error)
	ListByPackage(ctx context.Context, packageID string) ([]response.DepartureResponse, error)
}

type departureService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewDepartureService(repo *repository.Repository, log *zap.Logger) DepartureService {
	return &departureService{
		repo: repo,
		log:  log.With(zap.String("service", "departure")),
	}
}

func (s *departureService) CreateDeparture(ctx context.Context, req *request.CreateDepartureRequest) (*response.DepartureResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create departure validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}

	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed package id %s", ErrInvalidInput, req.PackageID)
	}

	departDate, err := time.Parse("2006-01-02", req.DepartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed departure date %s", ErrInvalidInput, req.DepartDate)
	}

	pkg, err := s.repo.Package.FindByID(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("find package: %w", ErrServiceUnavailable)
	}
	if pkg == nil {
		return nil, fmt.Errorf("package %s: %w", req.PackageID, ErrNotFound)
	}

	existing, err := s.repo.Departure.FindByPackageAndDate(ctx, packageID, departDate)
	if err != nil {
		return nil, fmt.Errorf("check departure date: %w", ErrServiceUnavailable)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: departure already scheduled for %s", ErrStateConflict, req.DepartDate)
	}

	now := time.Now()
	departure := &entity.Departure{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PackageID:     packageID,
		DepartDate:    departDate,
		SeatsTotal:    req.SeatsTotal,
		SeatsBooked:   0,
		PriceOverride: req.PriceOverride,
		Status:        entity.DepartureStatusOpen,
	}

	if err := s.repo.Departure.Create(ctx, departure); err != nil {
		s.log.Error("Failed to create departure",
			zap.Error(err),
			zap.String("package_id", req.PackageID),
			zap.String("depart_date", req.DepartDate),
		)
		return nil, fmt.Errorf("create departure: %w", ErrServiceUnavailable)
	}

	s.log.Info("Departure created",
		zap.String("departure_id", departure.ID.String()),
		zap.String("package_id", req.PackageID),
		zap.String("depart_date", req.DepartDate),
		zap.Int("seats_total", req.SeatsTotal),
	)

	resp := response.DepartureToResponse(departure, pkg.BasePrice)
	return &resp, nil
}

func (s *departureService) ListByPackage(ctx context.Context, packageID string) ([]response.DepartureResponse, error) {
	id, err := uuid.Parse(packageID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed package id %s", ErrInvalidInput, packageID)
	}

	pkg, err := s.repo.Package.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find package: %w", ErrServiceUnavailable)
	}
	if pkg == nil {
		return nil, fmt.Errorf("package %s: %w", packageID, ErrNotFound)
	}

	departures, err := s.repo.Departure.FindByPackageID(ctx, id)
	if err != nil {
		s.log.Error("Failed to list departures", zap.Error(err), zap.String("package_id", packageID))
		return nil, fmt.Errorf("list departures: %w", ErrServiceUnavailable)
	}

	departureResponses := make([]response.DepartureResponse, len(departures))
	for i, departure := range departures {
		departureResponses[i] = response.DepartureToResponse(departure, pkg.BasePrice)
	}

	return departureResponses, nil
}
