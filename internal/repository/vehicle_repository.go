package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/parking-service/internal/domain"
)

// VehicleRepository handles persistence for the vehicle ledger.
type VehicleRepository interface {
	Create(ctx context.Context, rec *domain.VehicleRecord) error
	GetOpenByNumber(ctx context.Context, vehicleNumber string) (*domain.VehicleRecord, error)
	MarkExited(ctx context.Context, id string, exitTime time.Time, fee int64) error
	List(ctx context.Context, limit, offset int) ([]domain.VehicleRecord, error)
}

type vehicleRepository struct {
	pool *pgxpool.Pool
}

// NewVehicleRepository instantiates the repository.
func NewVehicleRepository(pool *pgxpool.Pool) VehicleRepository {
	return &vehicleRepository{pool: pool}
}

func (r *vehicleRepository) Create(ctx context.Context, rec *domain.VehicleRecord) error {
	const query = `
        INSERT INTO vehicle_records (vehicle_number, vehicle_type, entry_time, fee, payment_status, recorded_by)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`

	return r.pool.QueryRow(ctx, query,
		rec.VehicleNumber,
		rec.VehicleType,
		rec.EntryTime,
		rec.Fee,
		rec.PaymentStatus,
		rec.RecordedBy,
	).Scan(&rec.ID)
}

// GetOpenByNumber returns the in-facility record for a plate, if any.
func (r *vehicleRepository) GetOpenByNumber(ctx context.Context, vehicleNumber string) (*domain.VehicleRecord, error) {
	const query = `
        SELECT id, vehicle_number, vehicle_type, entry_time, exit_time, fee, payment_status, recorded_by
        FROM vehicle_records
        WHERE vehicle_number=$1 AND exit_time IS NULL
        ORDER BY entry_time DESC LIMIT 1`

	var rec domain.VehicleRecord
	if err := r.pool.QueryRow(ctx, query, vehicleNumber).Scan(
		&rec.ID,
		&rec.VehicleNumber,
		&rec.VehicleType,
		&rec.EntryTime,
		&rec.ExitTime,
		&rec.Fee,
		&rec.PaymentStatus,
		&rec.RecordedBy,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *vehicleRepository) MarkExited(ctx context.Context, id string, exitTime time.Time, fee int64) error {
	const query = `
        UPDATE vehicle_records
        SET exit_time=$1, fee=$2, payment_status=$3
        WHERE id=$4 AND exit_time IS NULL`

	cmd, err := r.pool.Exec(ctx, query, exitTime, fee, domain.PaymentStatusPaid, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *vehicleRepository) List(ctx context.Context, limit, offset int) ([]domain.VehicleRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, vehicle_number, vehicle_type, entry_time, exit_time, fee, payment_status, recorded_by
        FROM vehicle_records
        ORDER BY entry_time DESC
        LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.VehicleRecord
	for rows.Next() {
		var rec domain.VehicleRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.VehicleNumber,
			&rec.VehicleType,
			&rec.EntryTime,
			&rec.ExitTime,
			&rec.Fee,
			&rec.PaymentStatus,
			&rec.RecordedBy,
		); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
