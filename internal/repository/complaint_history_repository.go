package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// ComplaintHistoryRepository stores audit entries.
type ComplaintHistoryRepository interface {
	Create(ctx context.Context, history *domain.ComplaintHistory) error
	// ListByComplaint returns entries oldest first.
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintHistory, error)
}

type complaintHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintHistoryRepository builds repository.
func NewComplaintHistoryRepository(pool *pgxpool.Pool) ComplaintHistoryRepository {
	return &complaintHistoryRepository{pool: pool}
}

func (r *complaintHistoryRepository) Create(ctx context.Context, h *domain.ComplaintHistory) error {
	const query = `
        INSERT INTO complaint_history (complaint_id, changed_by_kind, changed_by_id, change_type, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		h.ComplaintID,
		h.ChangedByKind,
		h.ChangedByID,
		h.ChangeType,
		h.OldValue,
		h.NewValue,
	).Scan(&h.ID, &h.CreatedAt)
}

func (r *complaintHistoryRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.ComplaintHistory, error) {
	const query = `
        SELECT id, complaint_id, changed_by_kind, changed_by_id, change_type, old_value, new_value, created_at
        FROM complaint_history WHERE complaint_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ComplaintHistory
	for rows.Next() {
		var h domain.ComplaintHistory
		if err := rows.Scan(
			&h.ID,
			&h.ComplaintID,
			&h.ChangedByKind,
			&h.ChangedByID,
			&h.ChangeType,
			&h.OldValue,
			&h.NewValue,
			&h.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}
