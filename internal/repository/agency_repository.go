package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// AgencyFilter captures listing parameters.
type AgencyFilter struct {
	Verified *bool
	Search   string
	Limit    int
	Offset   int
}

// AgencyCounts summarizes agencies for dashboards.
type AgencyCounts struct {
	Total      int
	Verified   int
	Unverified int
	Rejected   int
}

// AgencyRepository encapsulates agency persistence.
type AgencyRepository interface {
	Create(ctx context.Context, agency *domain.Agency) error
	GetByID(ctx context.Context, id string) (*domain.Agency, error)
	GetByEmail(ctx context.Context, email string) (*domain.Agency, error)
	GetByLicense(ctx context.Context, license string) (*domain.Agency, error)
	List(ctx context.Context, filter AgencyFilter) ([]domain.Agency, error)
	SetVerified(ctx context.Context, id string) error
	// Reject records the rejection, unlinks migrants and deletes the agency atomically.
	Reject(ctx context.Context, rejection *domain.AgencyRejection) error
	Counts(ctx context.Context) (AgencyCounts, error)
}

type agencyRepository struct {
	pool *pgxpool.Pool
}

// NewAgencyRepository instantiates repository.
func NewAgencyRepository(pool *pgxpool.Pool) AgencyRepository {
	return &agencyRepository{pool: pool}
}

const agencyColumns = `id, name, email, password_hash, department, location, license_number, is_verified, created_at, updated_at`

func (r *agencyRepository) Create(ctx context.Context, a *domain.Agency) error {
	const query = `
        INSERT INTO agencies (name, email, password_hash, department, location, license_number, is_verified)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		a.Name,
		a.Email,
		a.PasswordHash,
		a.Department,
		a.Location,
		a.LicenseNumber,
		a.IsVerified,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return mapPgError(err)
}

func (r *agencyRepository) GetByID(ctx context.Context, id string) (*domain.Agency, error) {
	return scanAgency(r.pool.QueryRow(ctx, `SELECT `+agencyColumns+` FROM agencies WHERE id=$1`, id))
}

func (r *agencyRepository) GetByEmail(ctx context.Context, email string) (*domain.Agency, error) {
	return scanAgency(r.pool.QueryRow(ctx, `SELECT `+agencyColumns+` FROM agencies WHERE email=$1`, email))
}

func (r *agencyRepository) GetByLicense(ctx context.Context, license string) (*domain.Agency, error) {
	return scanAgency(r.pool.QueryRow(ctx, `SELECT `+agencyColumns+` FROM agencies WHERE license_number=$1`, license))
}

func (r *agencyRepository) List(ctx context.Context, filter AgencyFilter) ([]domain.Agency, error) {
	query, args := buildAgencyListQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Agency
	for rows.Next() {
		a, err := scanAgency(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

// likeEscaper makes search text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func buildAgencyListQuery(filter AgencyFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Verified != nil {
		args = append(args, *filter.Verified)
		clauses = append(clauses, fmt.Sprintf("is_verified=$%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(search))+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(`(LOWER(name) LIKE %s ESCAPE '\' OR LOWER(email) LIKE %s ESCAPE '\')`, placeholder, placeholder))
	}

	query := fmt.Sprintf(`SELECT %s FROM agencies WHERE %s ORDER BY created_at DESC`,
		agencyColumns, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}
	return query, args
}

func (r *agencyRepository) SetVerified(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE agencies SET is_verified=TRUE, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agencyRepository) Reject(ctx context.Context, rejection *domain.AgencyRejection) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insert = `
            INSERT INTO agency_rejections (agency_id, name, email, license_number, rejected_by, reason)
            SELECT id, name, email, license_number, $2, $3 FROM agencies WHERE id=$1
            RETURNING id, name, email, license_number, created_at`
		if err := tx.QueryRow(ctx, insert, rejection.AgencyID, rejection.RejectedBy, rejection.Reason).Scan(
			&rejection.ID,
			&rejection.Name,
			&rejection.Email,
			&rejection.LicenseNumber,
			&rejection.CreatedAt,
		); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
            UPDATE migrants SET agency_id=NULL, verification_status='NONE', updated_at=NOW()
            WHERE agency_id=$1`, rejection.AgencyID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM agencies WHERE id=$1`, rejection.AgencyID); err != nil {
			return err
		}
		return nil
	})
}

func (r *agencyRepository) Counts(ctx context.Context) (AgencyCounts, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE is_verified),
               COUNT(*) FILTER (WHERE NOT is_verified),
               (SELECT COUNT(*) FROM agency_rejections)
        FROM agencies`
	var counts AgencyCounts
	err := r.pool.QueryRow(ctx, query).Scan(&counts.Total, &counts.Verified, &counts.Unverified, &counts.Rejected)
	return counts, err
}

func scanAgency(row pgx.Row) (*domain.Agency, error) {
	var a domain.Agency
	if err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.PasswordHash,
		&a.Department,
		&a.Location,
		&a.LicenseNumber,
		&a.IsVerified,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
