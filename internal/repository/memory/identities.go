package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
)

// Migrants returns the migrant repository view.
func (s *Store) Migrants() repository.MigrantRepository { return migrantRepo{s} }

// Agencies returns the agency repository view.
func (s *Store) Agencies() repository.AgencyRepository { return agencyRepo{s} }

// Departments returns the department repository view.
func (s *Store) Departments() repository.DepartmentRepository { return departmentRepo{s} }

// Governments returns the government repository view.
func (s *Store) Governments() repository.GovernmentRepository { return governmentRepo{s} }

type migrantRepo struct{ s *Store }

func (r migrantRepo) Create(_ context.Context, m *domain.Migrant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.migrants {
		if existing.Email == m.Email {
			return &repository.UniqueViolation{Field: "email", Constraint: "migrants_email_key"}
		}
	}
	if m.VerificationStatus == "" {
		m.VerificationStatus = domain.VerificationNone
	}
	m.ID = newID()
	m.CreatedAt = r.s.tick()
	m.UpdatedAt = m.CreatedAt
	r.s.migrants[m.ID] = cloneMigrant(*m)
	return nil
}

func (r migrantRepo) Update(_ context.Context, m *domain.Migrant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.migrants[m.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	m.ID = existing.ID
	m.Email = existing.Email
	m.PasswordHash = existing.PasswordHash
	m.DOB = existing.DOB
	m.Gender = existing.Gender
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = r.s.tick()
	r.s.migrants[m.ID] = cloneMigrant(*m)
	return nil
}

func (r migrantRepo) GetByID(_ context.Context, id string) (*domain.Migrant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.migrants[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	m := cloneMigrant(row)
	return &m, nil
}

func (r migrantRepo) GetByEmail(_ context.Context, email string) (*domain.Migrant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.migrants {
		if row.Email == email {
			m := cloneMigrant(row)
			return &m, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r migrantRepo) ListByAgency(_ context.Context, agencyID string, statuses ...domain.VerificationStatus) ([]domain.Migrant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Migrant
	for _, row := range r.s.migrants {
		if row.AgencyID == nil || *row.AgencyID != agencyID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, row.VerificationStatus) {
			continue
		}
		result = append(result, cloneMigrant(row))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedAt.After(result[j].UpdatedAt) })
	return result, nil
}

func (r migrantRepo) StatsByAgency(_ context.Context, agencyID string) (domain.AgencyStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var stats domain.AgencyStats
	for _, row := range r.s.migrants {
		if row.AgencyID == nil || *row.AgencyID != agencyID {
			continue
		}
		switch row.VerificationStatus {
		case domain.VerificationPending:
			stats.Pending++
		case domain.VerificationApproved:
			stats.Approved++
		case domain.VerificationRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

func containsStatus(statuses []domain.VerificationStatus, s domain.VerificationStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func cloneMigrant(m domain.Migrant) domain.Migrant {
	if m.IsMigrant != nil {
		v := *m.IsMigrant
		m.IsMigrant = &v
	}
	if m.AgencyID != nil {
		v := *m.AgencyID
		m.AgencyID = &v
	}
	return m
}

type agencyRepo struct{ s *Store }

func (r agencyRepo) Create(_ context.Context, a *domain.Agency) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.agencies {
		if existing.Email == a.Email {
			return &repository.UniqueViolation{Field: "email", Constraint: "agencies_email_key"}
		}
		if existing.LicenseNumber == a.LicenseNumber {
			return &repository.UniqueViolation{Field: "licenseNumber", Constraint: "agencies_license_number_key"}
		}
	}
	a.ID = newID()
	a.CreatedAt = r.s.tick()
	a.UpdatedAt = a.CreatedAt
	r.s.agencies[a.ID] = *a
	return nil
}

func (r agencyRepo) GetByID(_ context.Context, id string) (*domain.Agency, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.agencies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	a := row
	return &a, nil
}

func (r agencyRepo) GetByEmail(ctx context.Context, email string) (*domain.Agency, error) {
	return r.find(func(a domain.Agency) bool { return a.Email == email })
}

func (r agencyRepo) GetByLicense(ctx context.Context, license string) (*domain.Agency, error) {
	return r.find(func(a domain.Agency) bool { return a.LicenseNumber == license })
}

func (r agencyRepo) find(match func(domain.Agency) bool) (*domain.Agency, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.agencies {
		if match(row) {
			a := row
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r agencyRepo) List(_ context.Context, filter repository.AgencyFilter) ([]domain.Agency, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var result []domain.Agency
	for _, row := range r.s.agencies {
		if filter.Verified != nil && row.IsVerified != *filter.Verified {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(row.Name), search) &&
			!strings.Contains(strings.ToLower(row.Email), search) {
			continue
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r agencyRepo) SetVerified(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.agencies[id]
	if !ok {
		return pgx.ErrNoRows
	}
	row.IsVerified = true
	row.UpdatedAt = r.s.tick()
	r.s.agencies[row.ID] = row
	return nil
}

func (r agencyRepo) Reject(_ context.Context, rejection *domain.AgencyRejection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.agencies[rejection.AgencyID]
	if !ok {
		return pgx.ErrNoRows
	}
	rejection.ID = newID()
	rejection.AgencyID = row.ID
	rejection.Name = row.Name
	rejection.Email = row.Email
	rejection.LicenseNumber = row.LicenseNumber
	rejection.CreatedAt = r.s.tick()
	r.s.rejections = append(r.s.rejections, *rejection)

	for id, m := range r.s.migrants {
		if m.AgencyID != nil && *m.AgencyID == row.ID {
			m.AgencyID = nil
			m.VerificationStatus = domain.VerificationNone
			m.UpdatedAt = rejection.CreatedAt
			r.s.migrants[id] = m
		}
	}
	delete(r.s.agencies, row.ID)
	return nil
}

func (r agencyRepo) Counts(_ context.Context) (repository.AgencyCounts, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := repository.AgencyCounts{Total: len(r.s.agencies), Rejected: len(r.s.rejections)}
	for _, row := range r.s.agencies {
		if row.IsVerified {
			counts.Verified++
		} else {
			counts.Unverified++
		}
	}
	return counts, nil
}

type departmentRepo struct{ s *Store }

func (r departmentRepo) Create(_ context.Context, d *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.departments {
		if existing.Email == d.Email {
			return &repository.UniqueViolation{Field: "email", Constraint: "departments_email_key"}
		}
		if strings.EqualFold(existing.Name, d.Name) {
			return &repository.UniqueViolation{Field: "name", Constraint: "departments_name_lower_key"}
		}
	}
	d.ID = newID()
	d.CreatedAt = r.s.tick()
	d.UpdatedAt = d.CreatedAt
	r.s.departments[d.ID] = *d
	return nil
}

func (r departmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	d := row
	return &d, nil
}

func (r departmentRepo) GetByEmail(_ context.Context, email string) (*domain.Department, error) {
	return r.find(func(d domain.Department) bool { return d.Email == email })
}

func (r departmentRepo) GetByName(_ context.Context, name string) (*domain.Department, error) {
	return r.find(func(d domain.Department) bool { return strings.EqualFold(d.Name, name) })
}

func (r departmentRepo) find(match func(domain.Department) bool) (*domain.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.departments {
		if match(row) {
			d := row
			return &d, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type governmentRepo struct{ s *Store }

func (r governmentRepo) Create(_ context.Context, g *domain.Government) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.governments {
		if existing.Email == g.Email {
			return &repository.UniqueViolation{Field: "email", Constraint: "governments_email_key"}
		}
	}
	g.ID = newID()
	g.CreatedAt = r.s.tick()
	g.UpdatedAt = g.CreatedAt
	r.s.governments[g.ID] = *g
	return nil
}

func (r governmentRepo) GetByID(_ context.Context, id string) (*domain.Government, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.governments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	g := row
	return &g, nil
}

func (r governmentRepo) GetByEmail(_ context.Context, email string) (*domain.Government, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.governments {
		if row.Email == email {
			g := row
			return &g, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		if offset == 0 {
			return items
		}
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
