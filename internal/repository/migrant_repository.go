package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// MigrantRepository defines persistence access for migrants.
type MigrantRepository interface {
	Create(ctx context.Context, migrant *domain.Migrant) error
	Update(ctx context.Context, migrant *domain.Migrant) error
	GetByID(ctx context.Context, id string) (*domain.Migrant, error)
	GetByEmail(ctx context.Context, email string) (*domain.Migrant, error)
	ListByAgency(ctx context.Context, agencyID string, statuses ...domain.VerificationStatus) ([]domain.Migrant, error)
	StatsByAgency(ctx context.Context, agencyID string) (domain.AgencyStats, error)
}

type migrantRepository struct {
	pool *pgxpool.Pool
}

// NewMigrantRepository returns a Postgres-backed implementation.
func NewMigrantRepository(pool *pgxpool.Pool) MigrantRepository {
	return &migrantRepository{pool: pool}
}

const migrantColumns = `id, first_name, last_name, email, password_hash, dob, gender, mobile,
               permanent_address, current_address, occupation_type, work_location,
               is_migrant, agency_id, verification_status, created_at, updated_at`

func (r *migrantRepository) Create(ctx context.Context, m *domain.Migrant) error {
	const query = `
        INSERT INTO migrants (first_name, last_name, email, password_hash, dob, gender, mobile,
            permanent_address, current_address, occupation_type, work_location, verification_status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	if m.VerificationStatus == "" {
		m.VerificationStatus = domain.VerificationNone
	}
	err := r.pool.QueryRow(ctx, query,
		m.FirstName,
		m.LastName,
		m.Email,
		m.PasswordHash,
		m.DOB,
		m.Gender,
		m.Mobile,
		m.PermanentAddress,
		m.CurrentAddress,
		m.OccupationType,
		m.WorkLocation,
		m.VerificationStatus,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	return mapPgError(err)
}

func (r *migrantRepository) Update(ctx context.Context, m *domain.Migrant) error {
	const query = `
        UPDATE migrants SET first_name=$1, last_name=$2, mobile=$3, permanent_address=$4, current_address=$5,
            occupation_type=$6, work_location=$7, is_migrant=$8, agency_id=$9, verification_status=$10, updated_at=NOW()
        WHERE id=$11
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		m.FirstName,
		m.LastName,
		m.Mobile,
		m.PermanentAddress,
		m.CurrentAddress,
		m.OccupationType,
		m.WorkLocation,
		m.IsMigrant,
		m.AgencyID,
		m.VerificationStatus,
		m.ID,
	).Scan(&m.UpdatedAt)
	return mapPgError(err)
}

func (r *migrantRepository) GetByID(ctx context.Context, id string) (*domain.Migrant, error) {
	return r.fetchSingle(ctx, `SELECT `+migrantColumns+` FROM migrants WHERE id=$1`, id)
}

func (r *migrantRepository) GetByEmail(ctx context.Context, email string) (*domain.Migrant, error) {
	return r.fetchSingle(ctx, `SELECT `+migrantColumns+` FROM migrants WHERE email=$1`, email)
}

func (r *migrantRepository) ListByAgency(ctx context.Context, agencyID string, statuses ...domain.VerificationStatus) ([]domain.Migrant, error) {
	query := `SELECT ` + migrantColumns + ` FROM migrants WHERE agency_id=$1`
	args := []any{agencyID}
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, s := range statuses {
			names[i] = string(s)
		}
		args = append(args, names)
		query += ` AND verification_status = ANY($2)`
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Migrant
	for rows.Next() {
		m, err := scanMigrant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	return result, rows.Err()
}

func (r *migrantRepository) StatsByAgency(ctx context.Context, agencyID string) (domain.AgencyStats, error) {
	const query = `
        SELECT verification_status, COUNT(*) FROM migrants
        WHERE agency_id=$1 GROUP BY verification_status`
	var stats domain.AgencyStats
	rows, err := r.pool.Query(ctx, query, agencyID)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status domain.VerificationStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return stats, err
		}
		switch status {
		case domain.VerificationPending:
			stats.Pending = count
		case domain.VerificationApproved:
			stats.Approved = count
		case domain.VerificationRejected:
			stats.Rejected = count
		}
	}
	return stats, rows.Err()
}

func (r *migrantRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Migrant, error) {
	return scanMigrant(r.pool.QueryRow(ctx, query, arg))
}

func scanMigrant(row pgx.Row) (*domain.Migrant, error) {
	var m domain.Migrant
	if err := row.Scan(
		&m.ID,
		&m.FirstName,
		&m.LastName,
		&m.Email,
		&m.PasswordHash,
		&m.DOB,
		&m.Gender,
		&m.Mobile,
		&m.PermanentAddress,
		&m.CurrentAddress,
		&m.OccupationType,
		&m.WorkLocation,
		&m.IsMigrant,
		&m.AgencyID,
		&m.VerificationStatus,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}
