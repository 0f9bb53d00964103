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

type StaffRepository interface {
	Create(ctx context.Context, staff *entity.Staff) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Staff, error)
	FindByEmail(ctx context.Context, email string) (*entity.Staff, error)
}

type staffRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewStaffRepository(db database.PgxIface, log *zap.Logger) StaffRepository {
	return &staffRepository{
		db:  db,
		log: log.With(zap.String("repository", "staff")),
	}
}

func (r *staffRepository) Create(ctx context.Context, staff *entity.Staff) error {
	query := `
		INSERT INTO staff (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		staff.ID,
		staff.Name,
		staff.Email,
		staff.PasswordHash,
		staff.Role,
		staff.CreatedAt,
		staff.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create staff",
			zap.Error(err),
			zap.String("email", staff.Email),
		)
		return fmt.Errorf("create staff %s: %w", staff.Email, err)
	}

	return nil
}

func (r *staffRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Staff, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM staff
		WHERE id = $1
	`

	var staff entity.Staff
	err := r.db.QueryRow(ctx, query, id).Scan(
		&staff.ID,
		&staff.Name,
		&staff.Email,
		&staff.PasswordHash,
		&staff.Role,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find staff by ID",
			zap.Error(err),
			zap.String("staff_id", id.String()),
		)
		return nil, fmt.Errorf("find staff by ID %s: %w", id.String(), err)
	}

	return &staff, nil
}

func (r *staffRepository) FindByEmail(ctx context.Context, email string) (*entity.Staff, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM staff
		WHERE email = $1
	`

	var staff entity.Staff
	err := r.db.QueryRow(ctx, query, email).Scan(
		&staff.ID,
		&staff.Name,
		&staff.Email,
		&staff.PasswordHash,
		&staff.Role,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find staff by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find staff by email %s: %w", email, err)
	}

	return &staff, nil
}
