package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/amats-service/internal/domain"
)

var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned when creating an account whose email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrOutOfRange is returned when a numeric field does not fit its INTEGER column.
	ErrOutOfRange = errors.New("value out of column range")
)

// AccountRepository is the authoritative account collection.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Delete(ctx context.Context, email string) error
	List(ctx context.Context) ([]domain.Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `id, email, first_name, last_name, password_hash, role, license_number, company,
        vehicle_count, active, suspended_by, suspension_minutes, suspended_at, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (email, first_name, last_name, password_hash, role, license_number, company,
            vehicle_count, active, suspended_by, suspension_minutes, suspended_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`

	row, err := newAccountRow(account)
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx, query,
		row.Email,
		row.FirstName,
		row.LastName,
		row.PasswordHash,
		row.Role,
		row.LicenseNumber,
		row.Company,
		row.VehicleCount,
		row.Active,
		row.SuspendedBy,
		row.SuspensionMinutes,
		row.SuspendedAt,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateEmail
	}
	return err
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts
        SET first_name=$1, last_name=$2, password_hash=$3, role=$4, license_number=$5, company=$6,
            vehicle_count=$7, active=$8, suspended_by=$9, suspension_minutes=$10, suspended_at=$11,
            updated_at=NOW()
        WHERE email=$12
        RETURNING updated_at`

	row, err := newAccountRow(account)
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx, query,
		row.FirstName,
		row.LastName,
		row.PasswordHash,
		row.Role,
		row.LicenseNumber,
		row.Company,
		row.VehicleCount,
		row.Active,
		row.SuspendedBy,
		row.SuspensionMinutes,
		row.SuspendedAt,
		row.Email,
	).Scan(&account.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email=$1`
	return r.scanOne(r.pool.QueryRow(ctx, query, domain.NormalizeEmail(email)))
}

func (r *accountRepository) Delete(ctx context.Context, email string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE email=$1`, domain.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *accountRepository) List(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Account
	for rows.Next() {
		account, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *account)
	}
	return result, rows.Err()
}

func (r *accountRepository) scanOne(row pgx.Row) (*domain.Account, error) {
	var rec accountRow
	if err := row.Scan(
		&rec.ID,
		&rec.Email,
		&rec.FirstName,
		&rec.LastName,
		&rec.PasswordHash,
		&rec.Role,
		&rec.LicenseNumber,
		&rec.Company,
		&rec.VehicleCount,
		&rec.Active,
		&rec.SuspendedBy,
		&rec.SuspensionMinutes,
		&rec.SuspendedAt,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec.toDomain(), nil
}

// accountRow flattens the profile union and suspension record into nullable columns.
type accountRow struct {
	ID                string
	Email             string
	FirstName         string
	LastName          string
	PasswordHash      string
	Role              string
	LicenseNumber     *string
	Company           *string
	VehicleCount      *int32
	Active            bool
	SuspendedBy       *string
	SuspensionMinutes *int32
	SuspendedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func newAccountRow(a *domain.Account) (accountRow, error) {
	row := accountRow{
		ID:           a.ID,
		Email:        domain.NormalizeEmail(a.Email),
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		PasswordHash: a.PasswordHash,
		Role:         string(a.Role()),
		Active:       a.Active,
	}
	switch p := a.Profile.(type) {
	case domain.DriverProfile:
		row.LicenseNumber = &p.LicenseNumber
	case domain.FleetManagerProfile:
		count, err := toInt32("vehicle_count", p.VehicleCount)
		if err != nil {
			return accountRow{}, err
		}
		row.Company = &p.Company
		row.VehicleCount = &count
	}
	if s := a.Suspension; s != nil {
		minutes, err := toInt32("suspension_minutes", s.DurationMinutes)
		if err != nil {
			return accountRow{}, err
		}
		started := s.StartedAt
		by := s.SuspendedBy
		row.SuspendedBy = &by
		row.SuspensionMinutes = &minutes
		row.SuspendedAt = &started
	}
	return row, nil
}

func toInt32(column string, v int) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s=%d", ErrOutOfRange, column, v)
	}
	return int32(v), nil
}

func (row accountRow) toDomain() *domain.Account {
	a := &domain.Account{
		ID:           row.ID,
		Email:        row.Email,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		PasswordHash: row.PasswordHash,
		Active:       row.Active,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	switch domain.Role(row.Role) {
	case domain.RoleAdmin:
		a.Profile = domain.AdminProfile{}
	case domain.RoleFleetManager:
		p := domain.FleetManagerProfile{}
		if row.Company != nil {
			p.Company = *row.Company
		}
		if row.VehicleCount != nil {
			p.VehicleCount = int(*row.VehicleCount)
		}
		a.Profile = p
	default:
		p := domain.DriverProfile{}
		if row.LicenseNumber != nil {
			p.LicenseNumber = *row.LicenseNumber
		}
		a.Profile = p
	}
	if row.SuspensionMinutes != nil && row.SuspendedAt != nil {
		rec := domain.SuspensionRecord{
			DurationMinutes: int(*row.SuspensionMinutes),
			StartedAt:       *row.SuspendedAt,
		}
		if row.SuspendedBy != nil {
			rec.SuspendedBy = *row.SuspendedBy
		}
		a.Suspension = &rec
	}
	return a
}
