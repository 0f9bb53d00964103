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

type PackageService interface {
	CreatePackage(ctx context.Context, req *request.CreatePackageRequest) (*response.PackageResponse, error)
	UpdatePackage(ctx context.Context, packageID string, req *request.UpdatePackageRequest) (*response.PackageResponse, error)
	GetPackageByID(ctx context.Context, packageID string) (*response.PackageResponse, error)

	// ListPackages pages through the catalog. includeInactive is the
	// staff view; the public catalog only sees active packages.
	ListPackages(ctx context.Context, req *request.PaginatedRequest, includeInactive bool) (*response.PaginatedResponse[response.PackageResponse], error)
}

type packageService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewPackageService(repo *repository.Repository, log *zap.Logger) PackageService {
	return &packageService{
		repo: repo,
		log:  log.With(zap.String("service", "package")),
	}
}

func (s *packageService) CreatePackage(ctx context.Context, req *request.CreatePackageRequest) (*response.PackageResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create package validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}

	now := time.Now()
	pkg := &entity.TravelPackage{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:        req.Title,
		Category:     req.Category,
		BasePrice:    req.BasePrice,
		TokenPrice:   req.TokenPrice,
		MaxGroupSize: req.MaxGroupSize,
		IsActive:     req.IsActive,
	}

	if err := s.repo.Package.Create(ctx, pkg); err != nil {
		s.log.Error("Failed to create package", zap.Error(err), zap.String("title", req.Title))
		return nil, fmt.Errorf("create package: %w", ErrServiceUnavailable)
	}

	s.log.Info("Package created",
		zap.String("package_id", pkg.ID.String()),
		zap.String("title", pkg.Title),
	)

	resp := response.PackageToResponse(pkg)
	return &resp, nil
}

func (s *packageService) UpdatePackage(ctx context.Context, packageID string, req *request.UpdatePackageRequest) (*response.PackageResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update package validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}

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

	pkg.Title = req.Title
	pkg.Category = req.Category
	pkg.BasePrice = req.BasePrice
	pkg.TokenPrice = req.TokenPrice
	pkg.MaxGroupSize = req.MaxGroupSize
	pkg.IsActive = req.IsActive
	pkg.UpdatedAt = time.Now()

	if err := s.repo.Package.Update(ctx, pkg); err != nil {
		s.log.Error("Failed to update package", zap.Error(err), zap.String("package_id", packageID))
		return nil, fmt.Errorf("update package: %w", ErrServiceUnavailable)
	}

	s.log.Info("Package updated", zap.String("package_id", packageID))

	resp := response.PackageToResponse(pkg)
	return &resp, nil
}

func (s *packageService) GetPackageByID(ctx context.Context, packageID string) (*response.PackageResponse, error) {
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

	resp := response.PackageToResponse(pkg)
	return &resp, nil
}

func (s *packageService) ListPackages(ctx context.Context, req *request.PaginatedRequest, includeInactive bool) (*response.PaginatedResponse[response.PackageResponse], error) {
	onlyActive := !includeInactive

	packages, err := s.repo.Package.FindAll(ctx, onlyActive, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list packages", zap.Error(err))
		return nil, fmt.Errorf("list packages: %w", ErrServiceUnavailable)
	}

	total, err := s.repo.Package.Count(ctx, onlyActive)
	if err != nil {
		s.log.Error("Failed to count packages", zap.Error(err))
		return nil, fmt.Errorf("count packages: %w", ErrServiceUnavailable)
	}

	packageResponses := make([]response.PackageResponse, len(packages))
	for i, pkg := range packages {
		packageResponses[i] = response.PackageToResponse(pkg)
	}

	return response.NewPaginatedResponse(packageResponses, req.Page, req.PerPage, total), nil
}
