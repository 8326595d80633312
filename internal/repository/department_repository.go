package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// DepartmentRepository manages department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	GetByEmail(ctx context.Context, email string) (*domain.Department, error)
	// GetByName matches case-insensitively.
	GetByName(ctx context.Context, name string) (*domain.Department, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `
        INSERT INTO departments (name, email, password_hash)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		dept.Name,
		dept.Email,
		dept.PasswordHash,
	).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
	return mapPgError(err)
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	return r.fetchSingle(ctx, `SELECT id, name, email, password_hash, created_at, updated_at FROM departments WHERE id=$1`, id)
}

func (r *departmentRepository) GetByEmail(ctx context.Context, email string) (*domain.Department, error) {
	return r.fetchSingle(ctx, `SELECT id, name, email, password_hash, created_at, updated_at FROM departments WHERE email=$1`, email)
}

func (r *departmentRepository) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	return r.fetchSingle(ctx, `SELECT id, name, email, password_hash, created_at, updated_at FROM departments WHERE LOWER(name)=LOWER($1)`, name)
}

func (r *departmentRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Department, error) {
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&dept.ID,
		&dept.Name,
		&dept.Email,
		&dept.PasswordHash,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}

