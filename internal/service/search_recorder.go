package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-connect-api/pkg/jobs"
)

// JobIncrementSearchCount bumps search_count for the department ids in the payload.
const JobIncrementSearchCount = "departments.increment_search_count"

type searchCountRepository interface {
	IncrementSearchCount(ctx context.Context, ids ...string) error
}

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// SearchRecorder counts department lookups off the request path.
type SearchRecorder struct {
	repo   searchCountRepository
	queue  jobEnqueuer
	logger *zap.Logger
}

// NewSearchRecorder builds a recorder. A nil queue makes every increment synchronous.
func NewSearchRecorder(repo searchCountRepository, queue jobEnqueuer, logger *zap.Logger) *SearchRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchRecorder{repo: repo, queue: queue, logger: logger}
}

// RecordLookup never fails the caller; errors are logged.
func (r *SearchRecorder) RecordLookup(ctx context.Context, ids ...string) {
	if r == nil || len(ids) == 0 {
		return
	}
	if r.queue != nil {
		err := r.queue.TryEnqueue(jobs.Job{Type: JobIncrementSearchCount, Payload: append([]string(nil), ids...)})
		if err == nil {
			return
		}
		if errors.Is(err, jobs.ErrQueueFull) {
			return
		}
		r.logger.Debug("search count queue unavailable, incrementing inline", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := r.repo.IncrementSearchCount(ctx, ids...); err != nil {
		r.logger.Warn("failed to increment search count", zap.Strings("department_ids", ids), zap.Error(err))
	}
}

// Handle is the jobs handler for JobIncrementSearchCount.
func (r *SearchRecorder) Handle(ctx context.Context, job jobs.Job) error {
	ids, ok := job.Payload.([]string)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type)
	}
	return r.repo.IncrementSearchCount(ctx, ids...)
}
