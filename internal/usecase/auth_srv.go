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

type AuthService interface {
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
}

type authService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(repo *repository.Repository, config *utils.Config, log *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}

	staff, err := s.repo.Staff.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to find staff", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("find staff: %w", ErrServiceUnavailable)
	}

	if staff == nil {
		s.log.Warn("Login attempt for unknown email", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(req.Password, staff.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("staff_id", staff.ID.String()))
		return nil, ErrInvalidCredentials
	}

	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		StaffID:   staff.ID,
		Token:     uuid.New(),
		ExpiresAt: time.Now().Add(time.Duration(s.config.Session.ExpiryHours) * time.Hour),
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		s.log.Error("Failed to create session", zap.Error(err), zap.String("staff_id", staff.ID.String()))
		return nil, fmt.Errorf("create session: %w", ErrServiceUnavailable)
	}

	s.log.Info("Staff logged in",
		zap.String("staff_id", staff.ID.String()),
		zap.String("email", staff.Email),
	)

	return &response.AuthResponse{
		StaffID:   staff.ID.String(),
		Name:      staff.Name,
		Email:     staff.Email,
		Role:      staff.Role,
		Token:     session.Token.String(),
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	tokenUUID, err := uuid.Parse(token)
	if err != nil {
		return fmt.Errorf("%w: malformed session token", ErrInvalidInput)
	}

	if err := s.repo.Session.Revoke(ctx, tokenUUID.String()); err != nil {
		s.log.Warn("Failed to revoke session", zap.Error(err))
		return fmt.Errorf("revoke session: %w", ErrNotFound)
	}

	s.log.Info("Staff logged out")
	return nil
}
