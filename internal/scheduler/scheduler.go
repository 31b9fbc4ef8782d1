// Package scheduler re-dispatches enrollments whose delayed steps have come
// due. A ticker-driven poller claims due enrollments and pushes them onto
// the redis queue; a worker pool pops and resumes the runs.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/core/ports"
	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/engine"
)

type Scheduler struct {
	enrollments  ports.EnrollmentRepository
	queue        ports.DueQueue
	engine       *engine.Engine
	logger       hclog.Logger
	pollInterval time.Duration
	batchSize    int
}

func New(enrollments ports.EnrollmentRepository, queue ports.DueQueue, eng *engine.Engine, logger hclog.Logger, pollInterval time.Duration, batchSize int) *Scheduler {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Scheduler{
		enrollments:  enrollments,
		queue:        queue,
		engine:       eng,
		logger:       logger.Named("scheduler"),
		pollInterval: pollInterval,
		batchSize:    batchSize,
	}
}

// Start runs the due poller until the context is cancelled. Call as a
// goroutine from main.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler started", "poll_interval", s.pollInterval)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down")
			return
		case <-ticker.C:
			if _, err := s.ProcessPendingActions(ctx, s.batchSize); err != nil {
				s.logger.Error("due poll failed", "error", err)
			}
		}
	}
}

// ProcessPendingActions claims due enrollments and queues them for the
// worker pool, returning the number queued. FindDue clears
// next_execution_at in the same statement, so a crash between claim and
// push stalls the affected runs rather than double-dispatching them.
func (s *Scheduler) ProcessPendingActions(ctx context.Context, limit int) (int, error) {
	due, err := s.enrollments.FindDue(ctx, time.Now(), limit)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, enrollment := range due {
		payload := encodePayload(enrollment.OrgID, enrollment.ID)
		if err := s.queue.Push(ctx, payload); err != nil {
			s.logger.Error("failed to queue due enrollment", "enrollment_id", enrollment.ID, "error", err)
			continue
		}
		queued++
	}
	if queued > 0 {
		s.logger.Info("queued due enrollments", "count", queued)
	}
	return queued, nil
}

// StartWorkers launches the pool that resumes queued runs.
func (s *Scheduler) StartWorkers(ctx context.Context, concurrency int) {
	s.logger.Info("starting worker pool", "concurrency", concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			for {
				select {
				case <-ctx.Done():
					return
				default:
					s.processNext(ctx, workerID)
				}
			}
		}(i)
	}
}

func (s *Scheduler) processNext(ctx context.Context, workerID int) {
	payload, err := s.queue.Pop(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("queue pop failed", "worker", workerID, "error", err)
		return
	}

	orgID, enrollmentID, err := decodePayload(payload)
	if err != nil {
		s.logger.Error("malformed queue payload", "worker", workerID, "payload", payload, "error", err)
		return
	}

	if err := s.engine.ResumeDue(ctx, orgID, enrollmentID); err != nil {
		s.logger.Error("resume failed", "worker", workerID, "enrollment_id", enrollmentID, "error", err)
	}
}

// Queue payloads carry the org alongside the enrollment so the worker can
// perform an org-scoped fetch.
func encodePayload(orgID, enrollmentID uuid.UUID) string {
	return orgID.String() + ":" + enrollmentID.String()
}

func decodePayload(payload string) (uuid.UUID, uuid.UUID, error) {
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		return uuid.Nil, uuid.Nil, fmt.Errorf("expected org:enrollment, got %q", payload)
	}
	orgID, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	enrollmentID, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return orgID, enrollmentID, nil
}
