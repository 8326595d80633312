package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// GovernmentRepository manages government accounts.
type GovernmentRepository interface {
	Create(ctx context.Context, gov *domain.Government) error
	GetByID(ctx context.Context, id string) (*domain.Government, error)
	GetByEmail(ctx context.Context, email string) (*domain.Government, error)
}

type governmentRepository struct {
	pool *pgxpool.Pool
}

// NewGovernmentRepository builds the repository.
func NewGovernmentRepository(pool *pgxpool.Pool) GovernmentRepository {
	return &governmentRepository{pool: pool}
}

func (r *governmentRepository) Create(ctx context.Context, gov *domain.Government) error {
	const query = `
        INSERT INTO governments (name, email, password_hash)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query, gov.Name, gov.Email, gov.PasswordHash).
		Scan(&gov.ID, &gov.CreatedAt, &gov.UpdatedAt)
	return mapPgError(err)
}

func (r *governmentRepository) GetByID(ctx context.Context, id string) (*domain.Government, error) {
	return r.fetchSingle(ctx, `SELECT id, name, email, password_hash, created_at, updated_at FROM governments WHERE id=$1`, id)
}

func (r *governmentRepository) GetByEmail(ctx context.Context, email string) (*domain.Government, error) {
	return r.fetchSingle(ctx, `SELECT id, name, email, password_hash, created_at, updated_at FROM governments WHERE email=$1`, email)
}

func (r *governmentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Government, error) {
	var gov domain.Government
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&gov.ID,
		&gov.Name,
		&gov.Email,
		&gov.PasswordHash,
		&gov.CreatedAt,
		&gov.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &gov, nil
}
