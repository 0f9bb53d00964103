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

type PackageRepository interface {
	Create(ctx context.Context, pkg *entity.TravelPackage) error
	Update(ctx context.Context, pkg *entity.TravelPackage) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.TravelPackage, error)

	// FindAll lists packages newest first. The public catalog passes
	// onlyActive; staff views list everything.
	FindAll(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.TravelPackage, error)
	Count(ctx context.Context, onlyActive bool) (int64, error)
}

type packageRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPackageRepository(db database.PgxIface, log *zap.Logger) PackageRepository {
	return &packageRepository{
		db:  db,
		log: log.With(zap.String("repository", "package")),
	}
}

func (r *packageRepository) Create(ctx context.Context, pkg *entity.TravelPackage) error {
	query := `
		INSERT INTO packages (id, title, category, base_price, token_price, max_group_size, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		pkg.ID,
		pkg.Title,
		pkg.Category,
		pkg.BasePrice,
		pkg.TokenPrice,
		pkg.MaxGroupSize,
		pkg.IsActive,
		pkg.CreatedAt,
		pkg.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create package",
			zap.Error(err),
			zap.String("title", pkg.Title),
		)
		return fmt.Errorf("create package %s: %w", pkg.Title, err)
	}

	return nil
}

func (r *packageRepository) Update(ctx context.Context, pkg *entity.TravelPackage) error {
	query := `
		UPDATE packages
		SET title = $2, category = $3, base_price = $4, token_price = $5,
		    max_group_size = $6, is_active = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		pkg.ID,
		pkg.Title,
		pkg.Category,
		pkg.BasePrice,
		pkg.TokenPrice,
		pkg.MaxGroupSize,
		pkg.IsActive,
		pkg.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update package",
			zap.Error(err),
			zap.String("package_id", pkg.ID.String()),
		)
		return fmt.Errorf("update package %s: %w", pkg.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("package %s not found", pkg.ID.String())
	}

	return nil
}

func (r *packageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TravelPackage, error) {
	query := `
		SELECT id, title, category, base_price, token_price, max_group_size, is_active, created_at, updated_at
		FROM packages
		WHERE id = $1
	`

	var pkg entity.TravelPackage
	err := r.db.QueryRow(ctx, query, id).Scan(
		&pkg.ID,
		&pkg.Title,
		&pkg.Category,
		&pkg.BasePrice,
		&pkg.TokenPrice,
		&pkg.MaxGroupSize,
		&pkg.IsActive,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find package by ID",
			zap.Error(err),
			zap.String("package_id", id.String()),
		)
		return nil, fmt.Errorf("find package by ID %s: %w", id.String(), err)
	}

	return &pkg, nil
}

func (r *packageRepository) FindAll(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.TravelPackage, error) {
	query := `
		SELECT id, title, category, base_price, token_price, max_group_size, is_active, created_at, updated_at
		FROM packages
	`
	if onlyActive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list packages", zap.Error(err))
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var packages []*entity.TravelPackage
	for rows.Next() {
		var pkg entity.TravelPackage
		err := rows.Scan(
			&pkg.ID,
			&pkg.Title,
			&pkg.Category,
			&pkg.BasePrice,
			&pkg.TokenPrice,
			&pkg.MaxGroupSize,
			&pkg.IsActive,
			&pkg.CreatedAt,
			&pkg.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan package row", zap.Error(err))
			return nil, fmt.Errorf("scan package row: %w", err)
		}
		packages = append(packages, &pkg)
	}

	return packages, nil
}

func (r *packageRepository) Count(ctx context.Context, onlyActive bool) (int64, error) {
	query := `SELECT COUNT(*) FROM packages`
	if onlyActive {
		query += ` WHERE is_active = TRUE`
	}

	var count int64
	err := r.db.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count packages", zap.Error(err))
		return 0, fmt.Errorf("count packages: %w", err)
	}

	return count, nil
}
