package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/observability"
	"github.com/spec-kit/grievance-service/internal/queue"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// Reclassifier is the part of the complaint service the worker drives.
type Reclassifier interface {
	Reclassify(ctx context.Context, complaintID string) (*domain.Complaint, error)
	PendingClassification(ctx context.Context) ([]domain.Complaint, error)
}

// ClassificationWorker drains the classification queue, retrying failures
// after a delay.
type ClassificationWorker struct {
	complaints Reclassifier
	queue      queue.ClassificationQueue
	retryDelay time.Duration
	popTimeout time.Duration
	metrics    *observability.Metrics
	logger     *zap.Logger
	retries    sync.WaitGroup
}

// NewClassificationWorker builds the worker.
func NewClassificationWorker(complaints Reclassifier, q queue.ClassificationQueue, retryDelay, popTimeout time.Duration, metrics *observability.Metrics, logger *zap.Logger) *ClassificationWorker {
	if retryDelay <= 0 {
		retryDelay = 30 * time.Second
	}
	if popTimeout <= 0 {
		popTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassificationWorker{
		complaints: complaints,
		queue:      q,
		retryDelay: retryDelay,
		popTimeout: popTimeout,
		metrics:    metrics,
		logger:     logger,
	}
}

// Run re-queues leftover work and then processes the queue until ctx ends.
func (w *ClassificationWorker) Run(ctx context.Context) {
	defer w.retries.Wait()

	w.requeuePending(ctx)
	w.logger.Info("classification worker started")
	for {
		if ctx.Err() != nil {
			w.logger.Info("classification worker stopped")
			return
		}
		id, err := w.queue.Dequeue(ctx, w.popTimeout)
		switch {
		case errors.Is(err, queue.ErrEmpty):
			w.reportDepth(ctx)
			continue
		case ctx.Err() != nil:
			continue
		case err != nil:
			w.logger.Error("dequeue classification", zap.Error(err))
			w.sleep(ctx, time.Second)
			continue
		}
		w.process(ctx, id)
	}
}

func (w *ClassificationWorker) process(ctx context.Context, complaintID string) {
	complaint, err := w.complaints.Reclassify(ctx, complaintID)
	if err == nil {
		w.logger.Info("complaint classified",
			zap.String("complaint_id", complaintID),
			zap.String("routing_state", string(complaint.RoutingState)))
		return
	}
	if apperrors.IsNotFound(err) {
		w.logger.Warn("dropping unknown complaint", zap.String("complaint_id", complaintID))
		return
	}
	w.logger.Warn("classification retry failed",
		zap.String("complaint_id", complaintID),
		zap.Duration("retry_in", w.retryDelay),
		zap.Error(err))
	w.scheduleRetry(ctx, complaintID)
}

func (w *ClassificationWorker) scheduleRetry(ctx context.Context, complaintID string) {
	w.retries.Add(1)
	go func() {
		defer w.retries.Done()
		timer := time.NewTimer(w.retryDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			// Still in CLASSIFICATION_PENDING, so the next start picks it up.
			return
		}
		if err := w.queue.Enqueue(ctx, complaintID); err != nil {
			w.logger.Error("re-enqueue classification", zap.String("complaint_id", complaintID), zap.Error(err))
		}
	}()
}

func (w *ClassificationWorker) requeuePending(ctx context.Context) {
	pending, err := w.complaints.PendingClassification(ctx)
	if err != nil {
		w.logger.Error("load pending classifications", zap.Error(err))
		return
	}
	for _, c := range pending {
		if err := w.queue.Enqueue(ctx, c.ID); err != nil {
			w.logger.Error("enqueue pending classification", zap.String("complaint_id", c.ID), zap.Error(err))
		}
	}
	if len(pending) > 0 {
		w.logger.Info("re-queued pending classifications", zap.Int("count", len(pending)))
	}
}

func (w *ClassificationWorker) reportDepth(ctx context.Context) {
	if n, err := w.queue.Len(ctx); err == nil {
		w.metrics.SetQueueDepth(n)
	}
}

func (w *ClassificationWorker) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
