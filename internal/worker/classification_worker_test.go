package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/queue"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

type stubReclassifier struct {
	mu       sync.Mutex
	pending  []domain.Complaint
	failures map[string]int
	calls    map[string]int
	done     chan string
}

func newStubReclassifier(pending ...string) *stubReclassifier {
	s := &stubReclassifier{
		failures: map[string]int{},
		calls:    map[string]int{},
		done:     make(chan string, 10),
	}
	for _, id := range pending {
		s.pending = append(s.pending, domain.Complaint{ID: id, RoutingState: domain.RoutingClassificationPending})
	}
	return s
}

func (s *stubReclassifier) Reclassify(_ context.Context, id string) (*domain.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[id]++
	if id == "missing" {
		return nil, apperrors.NewNotFound("Complaint", nil)
	}
	if s.failures[id] > 0 {
		s.failures[id]--
		return nil, errors.New("classifier down")
	}
	s.done <- id
	return &domain.Complaint{ID: id, RoutingState: domain.RoutingRouted}, nil
}

func (s *stubReclassifier) PendingClassification(context.Context) ([]domain.Complaint, error) {
	return s.pending, nil
}

func (s *stubReclassifier) callCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

func waitFor(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for classification")
		return ""
	}
}

func TestWorkerRequeuesPendingOnStart(t *testing.T) {
	stub := newStubReclassifier("c1")
	w := NewClassificationWorker(stub, queue.NewMemoryQueue(), 10*time.Millisecond, 20*time.Millisecond, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(stopped)
	}()

	assert.Equal(t, "c1", waitFor(t, stub.done))
	cancel()
	<-stopped
}

func TestWorkerRetriesFailures(t *testing.T) {
	stub := newStubReclassifier()
	stub.failures["c2"] = 2
	q := queue.NewMemoryQueue()
	require.NoError(t, q.Enqueue(context.Background(), "c2"))

	w := NewClassificationWorker(stub, q, 5*time.Millisecond, 20*time.Millisecond, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	assert.Equal(t, "c2", waitFor(t, stub.done))
	assert.Equal(t, 3, stub.callCount("c2"))
}

func TestWorkerDropsUnknownComplaints(t *testing.T) {
	stub := newStubReclassifier()
	q := queue.NewMemoryQueue()
	require.NoError(t, q.Enqueue(context.Background(), "missing"))
	require.NoError(t, q.Enqueue(context.Background(), "c3"))

	w := NewClassificationWorker(stub, q, 5*time.Millisecond, 20*time.Millisecond, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	assert.Equal(t, "c3", waitFor(t, stub.done))
	assert.Equal(t, 1, stub.callCount("missing"))
	n, err := q.Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
