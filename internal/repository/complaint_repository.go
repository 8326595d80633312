package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// ComplaintFilter captures listing parameters.
type ComplaintFilter struct {
	UserID        *string
	DepartmentID  *string
	RoutingStates []domain.RoutingState
	Statuses      []domain.ComplaintStatus
	Limit         int
	Offset        int
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	// List returns matches newest first.
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int, error)
	CountByRouting(ctx context.Context) (map[domain.RoutingState]int, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, user_id, complaint_text, category, category_confidence, alternative_categories,
               recommended_department, keywords_found, explanation, status, routing_state, department_id,
               created_at, updated_at`

func (r *complaintRepository) Create(ctx context.Context, c *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (user_id, complaint_text, category, category_confidence, alternative_categories,
            recommended_department, keywords_found, explanation, status, routing_state, department_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	alternatives, keywords := classifierSlices(c)
	return r.pool.QueryRow(ctx, query,
		c.UserID,
		c.Text,
		c.Category,
		c.CategoryConfidence,
		alternatives,
		c.RecommendedDepartment,
		keywords,
		c.Explanation,
		c.Status,
		c.RoutingState,
		c.DepartmentID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *complaintRepository) Update(ctx context.Context, c *domain.Complaint) error {
	const query = `
        UPDATE complaints SET category=$1, category_confidence=$2, alternative_categories=$3,
            recommended_department=$4, keywords_found=$5, explanation=$6, status=$7, routing_state=$8,
            department_id=$9, updated_at=NOW()
        WHERE id=$10
        RETURNING updated_at`
	alternatives, keywords := classifierSlices(c)
	return r.pool.QueryRow(ctx, query,
		c.Category,
		c.CategoryConfidence,
		alternatives,
		c.RecommendedDepartment,
		keywords,
		c.Explanation,
		c.Status,
		c.RoutingState,
		c.DepartmentID,
		c.ID,
	).Scan(&c.UpdatedAt)
}

// classifierSlices keeps NOT NULL array columns non-null.
func classifierSlices(c *domain.Complaint) ([]domain.AlternativeCategory, []string) {
	alternatives := c.AlternativeCategories
	if alternatives == nil {
		alternatives = []domain.AlternativeCategory{}
	}
	keywords := c.KeywordsFound
	if keywords == nil {
		keywords = []string{}
	}
	return alternatives, keywords
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	return scanComplaint(r.pool.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id=$1`, id))
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	query, args := buildComplaintListQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func buildComplaintListQuery(filter ComplaintFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if len(filter.RoutingStates) > 0 {
		placeholders := make([]string, len(filter.RoutingStates))
		for i, state := range filter.RoutingStates {
			args = append(args, state)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("routing_state IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s ORDER BY created_at DESC, id DESC`,
		complaintColumns, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}
	return query, args
}

func (r *complaintRepository) CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM complaints GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ComplaintStatus]int, len(domain.ComplaintStatuses))
	for _, s := range domain.ComplaintStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var (
			status domain.ComplaintStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *complaintRepository) CountByRouting(ctx context.Context) (map[domain.RoutingState]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT routing_state, COUNT(*) FROM complaints GROUP BY routing_state`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[domain.RoutingState]int{}
	for rows.Next() {
		var (
			state domain.RoutingState
			n     int
		)
		if err := rows.Scan(&state, &n); err != nil {
			return nil, err
		}
		counts[state] = n
	}
	return counts, rows.Err()
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Text,
		&c.Category,
		&c.CategoryConfidence,
		&c.AlternativeCategories,
		&c.RecommendedDepartment,
		&c.KeywordsFound,
		&c.Explanation,
		&c.Status,
		&c.RoutingState,
		&c.DepartmentID,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
