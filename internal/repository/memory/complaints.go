package memory

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
)

// Complaints returns the complaint repository view.
func (s *Store) Complaints() repository.ComplaintRepository { return complaintRepo{s} }

// History returns the complaint history repository view.
func (s *Store) History() repository.ComplaintHistoryRepository { return historyRepo{s} }

type complaintRepo struct{ s *Store }

func (r complaintRepo) Create(_ context.Context, c *domain.Complaint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.migrants[c.UserID]; !ok {
		return pgx.ErrNoRows
	}
	c.ID = newID()
	c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	r.s.complaints[c.ID] = cloneComplaint(*c)
	return nil
}

func (r complaintRepo) Update(_ context.Context, c *domain.Complaint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.complaints[c.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	c.ID = existing.ID
	c.UserID = existing.UserID
	c.Text = existing.Text
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = r.s.tick()
	r.s.complaints[c.ID] = cloneComplaint(*c)
	return nil
}

func (r complaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := cloneComplaint(row)
	return &c, nil
}

func (r complaintRepo) List(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Complaint
	for _, row := range r.s.complaints {
		if filter.UserID != nil && row.UserID != *filter.UserID {
			continue
		}
		if filter.DepartmentID != nil && (row.DepartmentID == nil || *row.DepartmentID != *filter.DepartmentID) {
			continue
		}
		if len(filter.RoutingStates) > 0 && !containsRouting(filter.RoutingStates, row.RoutingState) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsComplaintStatus(filter.Statuses, row.Status) {
			continue
		}
		result = append(result, cloneComplaint(row))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r complaintRepo) CountByStatus(_ context.Context) (map[domain.ComplaintStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[domain.ComplaintStatus]int, len(domain.ComplaintStatuses))
	for _, s := range domain.ComplaintStatuses {
		counts[s] = 0
	}
	for _, row := range r.s.complaints {
		counts[row.Status]++
	}
	return counts, nil
}

func (r complaintRepo) CountByRouting(_ context.Context) (map[domain.RoutingState]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := map[domain.RoutingState]int{}
	for _, row := range r.s.complaints {
		counts[row.RoutingState]++
	}
	return counts, nil
}

func containsRouting(states []domain.RoutingState, s domain.RoutingState) bool {
	for _, candidate := range states {
		if candidate == s {
			return true
		}
	}
	return false
}

func containsComplaintStatus(statuses []domain.ComplaintStatus, s domain.ComplaintStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func cloneComplaint(c domain.Complaint) domain.Complaint {
	if c.DepartmentID != nil {
		v := *c.DepartmentID
		c.DepartmentID = &v
	}
	c.AlternativeCategories = append([]domain.AlternativeCategory(nil), c.AlternativeCategories...)
	c.KeywordsFound = append([]string(nil), c.KeywordsFound...)
	return c
}

type historyRepo struct{ s *Store }

func (r historyRepo) Create(_ context.Context, h *domain.ComplaintHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	complaint, ok := r.s.complaints[h.ComplaintID]
	if !ok {
		return pgx.ErrNoRows
	}
	h.ComplaintID = complaint.ID
	h.ID = newID()
	h.CreatedAt = r.s.tick()
	r.s.history = append(r.s.history, *h)
	return nil
}

func (r historyRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.ComplaintHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.ComplaintHistory
	for _, h := range r.s.history {
		if h.ComplaintID == complaintID {
			result = append(result, h)
		}
	}
	return result, nil
}
