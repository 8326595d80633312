// Package memory holds map-backed repositories used when no database is
// configured and as fakes in tests. Missing records surface as pgx.ErrNoRows
// and unique collisions as *repository.UniqueViolation, matching Postgres.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// Store is the shared state behind every repository view.
type Store struct {
	mu          sync.RWMutex
	migrants    map[string]domain.Migrant
	agencies    map[string]domain.Agency
	departments map[string]domain.Department
	governments map[string]domain.Government
	complaints  map[string]domain.Complaint
	history     []domain.ComplaintHistory
	rejections  []domain.AgencyRejection
	last        time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		migrants:    make(map[string]domain.Migrant),
		agencies:    make(map[string]domain.Agency),
		departments: make(map[string]domain.Department),
		governments: make(map[string]domain.Government),
		complaints:  make(map[string]domain.Complaint),
	}
}

// tick returns a strictly increasing timestamp. Caller holds mu.
func (s *Store) tick() time.Time {
	now := time.Now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Microsecond)
	}
	s.last = now
	return now
}

func newID() string {
	return uuid.NewString()
}
