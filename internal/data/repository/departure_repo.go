package repository

import (
	"context"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type DepartureRepository interface {
	Create(ctx context.Context, departure *entity.Departure) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Departure, error)
	FindByPackageAndDate(ctx context.Context, packageID uuid.UUID, date time.Time) (*entity.Departure, error)
	FindByPackageID(ctx context.Context, packageID uuid.UUID) ([]*entity.Departure, error)

	// EnsureForDate returns the departure row for (packageID, date),
	// creating one with the given capacity if none exists yet. Used for
	// flexible-date bookings where staff never created an explicit row.
	EnsureForDate(ctx context.Context, packageID uuid.UUID, date time.Time, seatsTotal int) (*entity.Departure, error)

	// CompletePast marks open/full departures dated before the cutoff as
	// completed. Returns the number of rows transitioned.
	CompletePast(ctx context.Context, cutoff time.Time) (int64, error)
}

type departureRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewDepartureRepository(db database.PgxIface, log *zap.Logger) DepartureRepository {
	return &departureRepository{
		db:  db,
		log: log.With(zap.String("repository", "departure")),
	}
}

const departureColumns = `id, package_id, depart_date, seats_total, seats_booked, price_override, status, created_at, updated_at`

func (r *departureRepository) scanDeparture(row pgx.Row) (*entity.Departure, error) {
	var departure entity.Departure
	err := row.Scan(
		&departure.ID,
		&departure.PackageID,
		&departure.DepartDate,
		&departure.SeatsTotal,
		&departure.SeatsBooked,
		&departure.PriceOverride,
		&departure.Status,
		&departure.CreatedAt,
		&departure.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &departure, nil
}

func (r *departureRepository) Create(ctx context.Context, departure *entity.Departure) error {
	query := `
		INSERT INTO departures (id, package_id, depart_date, seats_total, seats_booked, price_override, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		departure.ID,
		departure.PackageID,
		departure.DepartDate,
		departure.SeatsTotal,
		departure.SeatsBooked,
		departure.PriceOverride,
		departure.Status,
		departure.CreatedAt,
		departure.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create departure",
			zap.Error(err),
			zap.String("package_id", departure.PackageID.String()),
			zap.Time("depart_date", departure.DepartDate),
		)
		return fmt.Errorf("create departure: %w", err)
	}

	return nil
}

func (r *departureRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Departure, error) {
	query := `SELECT ` + departureColumns + ` FROM departures WHERE id = $1`

	departure, err := r.scanDeparture(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find departure by ID",
			zap.Error(err),
			zap.String("departure_id", id.String()),
		)
		return nil, fmt.Errorf("find departure by ID %s: %w", id.String(), err)
	}

	return departure, nil
}

func (r *departureRepository) FindByPackageAndDate(ctx context.Context, packageID uuid.UUID, date time.Time) (*entity.Departure, error) {
	query := `SELECT ` + departureColumns + ` FROM departures WHERE package_id = $1 AND depart_date = $2`

	departure, err := r.scanDeparture(r.db.QueryRow(ctx, query, packageID, date))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find departure by package and date",
			zap.Error(err),
			zap.String("package_id", packageID.String()),
			zap.Time("depart_date", date),
		)
		return nil, fmt.Errorf("find departure for package %s: %w", packageID.String(), err)
	}

	return departure, nil
}

func (r *departureRepository) FindByPackageID(ctx context.Context, packageID uuid.UUID) ([]*entity.Departure, error) {
	query := `
		SELECT ` + departureColumns + `
		FROM departures
		WHERE package_id = $1
		ORDER BY depart_date
	`

	rows, err := r.db.Query(ctx, query, packageID)
	if err != nil {
		r.log.Error("Failed to list departures",
			zap.Error(err),
			zap.String("package_id", packageID.String()),
		)
		return nil, fmt.Errorf("list departures for package %s: %w", packageID.String(), err)
	}
	defer rows.Close()

	var departures []*entity.Departure
	for rows.Next() {
		departure, err := r.scanDeparture(rows)
		if err != nil {
			r.log.Error("Failed to scan departure row", zap.Error(err))
			return nil, fmt.Errorf("scan departure row: %w", err)
		}
		departures = append(departures, departure)
	}

	return departures, nil
}

func (r *departureRepository) EnsureForDate(ctx context.Context, packageID uuid.UUID, date time.Time, seatsTotal int) (*entity.Departure, error) {
	// Upsert keyed by (package_id, depart_date); a concurrent insert for
	// the same date resolves to the existing row.
	query := `
		INSERT INTO departures (id, package_id, depart_date, seats_total, seats_booked, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, 'open', NOW(), NOW())
		ON CONFLICT (package_id, depart_date) DO UPDATE SET updated_at = departures.updated_at
		RETURNING ` + departureColumns

	departure, err := r.scanDeparture(r.db.QueryRow(ctx, query, uuid.New(), packageID, date, seatsTotal))
	if err != nil {
		r.log.Error("Failed to ensure departure",
			zap.Error(err),
			zap.String("package_id", packageID.String()),
			zap.Time("depart_date", date),
		)
		return nil, fmt.Errorf("ensure departure for package %s: %w", packageID.String(), err)
	}

	return departure, nil
}

func (r *departureRepository) CompletePast(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE departures
		SET status = 'completed', updated_at = NOW()
		WHERE depart_date < $1 AND status <> 'completed'
	`

	result, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		r.log.Error("Failed to complete past departures", zap.Error(err))
		return 0, fmt.Errorf("complete past departures: %w", err)
	}

	return result.RowsAffected(), nil
}
