package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/parking-service/internal/domain"
)

// StaffRepository handles persistence for staff accounts.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffAccount) error
	GetByID(ctx context.Context, id string) (*domain.StaffAccount, error)
	GetByUsername(ctx context.Context, username string) (*domain.StaffAccount, error)
	List(ctx context.Context, filter StaffFilter) ([]domain.StaffAccount, error)
	SetAccessRequested(ctx context.Context, id string, requested bool) error
	SetOnDuty(ctx context.Context, id string, onDuty bool) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// StaffFilter defines query params for staff listing.
type StaffFilter struct {
	OnDuty          *bool
	AccessRequested *bool
	Limit           int
	Offset          int
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

const staffColumns = "id, name, username, phone, password_hash, is_on_duty, access_requested, created_at, updated_at"

func scanStaff(row pgx.Row, staff *domain.StaffAccount) error {
	return row.Scan(
		&staff.ID,
		&staff.Name,
		&staff.Username,
		&staff.Phone,
		&staff.PasswordHash,
		&staff.IsOnDuty,
		&staff.AccessRequested,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffAccount) error {
	const query = `
        INSERT INTO staff_accounts (name, username, phone, password_hash, is_on_duty, access_requested)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		staff.Name,
		staff.Username,
		staff.Phone,
		staff.PasswordHash,
		staff.IsOnDuty,
		staff.AccessRequested,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffAccount, error) {
	query := fmt.Sprintf("SELECT %s FROM staff_accounts WHERE id=$1", staffColumns)

	var staff domain.StaffAccount
	if err := scanStaff(r.pool.QueryRow(ctx, query, id), &staff); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) GetByUsername(ctx context.Context, username string) (*domain.StaffAccount, error) {
	query := fmt.Sprintf("SELECT %s FROM staff_accounts WHERE username=$1", staffColumns)

	var staff domain.StaffAccount
	if err := scanStaff(r.pool.QueryRow(ctx, query, username), &staff); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.StaffAccount, error) {
	query := fmt.Sprintf("SELECT %s FROM staff_accounts", staffColumns)
	args := []any{}
	clauses := []string{}

	if filter.OnDuty != nil {
		args = append(args, *filter.OnDuty)
		clauses = append(clauses, fmt.Sprintf("is_on_duty=$%d", len(args)))
	}
	if filter.AccessRequested != nil {
		args = append(args, *filter.AccessRequested)
		clauses = append(clauses, fmt.Sprintf("access_requested=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffAccount
	for rows.Next() {
		var staff domain.StaffAccount
		if err := scanStaff(rows, &staff); err != nil {
			return nil, err
		}
		result = append(result, staff)
	}
	return result, rows.Err()
}

// SetAccessRequested is an absolute set, not a toggle, so repeated staff
// requests stay idempotent.
func (r *staffRepository) SetAccessRequested(ctx context.Context, id string, requested bool) error {
	const query = `UPDATE staff_accounts SET access_requested=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, requested, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) SetOnDuty(ctx context.Context, id string, onDuty bool) error {
	const query = `UPDATE staff_accounts SET is_on_duty=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, onDuty, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE staff_accounts SET password_hash=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
