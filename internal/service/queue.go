package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ticketmint/ticketmint/internal/core"
	"github.com/ticketmint/ticketmint/internal/domain/model"
	apperrors "github.com/ticketmint/ticketmint/internal/errors"
	"github.com/ticketmint/ticketmint/internal/observability/metrics"
	"github.com/ticketmint/ticketmint/internal/observability/statsd"
)

// MintQueueServiceOptions groups dependencies for MintQueueService.
type MintQueueServiceOptions struct {
	Jobs    core.MintJobRepository // Required: mint job repository
	Cache   core.CacheRepository   // Optional: status summary cache
	Logger  *slog.Logger           // Optional: structured logger
	Metrics statsd.Sink            // Optional: metrics sink (StatsD-compatible)
}

// MintQueueService is the durable mint queue surface. Every lifecycle
// transition flows through here so the status cache and metrics stay
// consistent with the queue state.
type MintQueueService struct {
	jobs    core.MintJobRepository
	cache   core.CacheRepository
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewMintQueueService constructs a new MintQueueService.
func NewMintQueueService(opts MintQueueServiceOptions) (*MintQueueService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("MintJobRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "mint_queue")
	}

	return &MintQueueService{
		jobs:    opts.Jobs,
		cache:   opts.Cache,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Enqueue creates a pending mint job binding an ordered set of tickets to one
// batch mint attempt.
func (s *MintQueueService) Enqueue(ctx context.Context, req *model.EnqueueMintJobRequest) (*model.MintJob, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	job, err := s.jobs.Enqueue(ctx, req)
	s.emit("enqueued", err)
	if err != nil {
		return nil, err
	}

	invalidateStatusCache(ctx, s.cache, s.logger, job.EventID)

	if s.logger != nil {
		s.logger.InfoContext(ctx, "mint job enqueued",
			"job_id", job.ID,
			"event_id", job.EventID,
			"tickets", len(job.TicketIDs),
		)
	}
	return job, nil
}

// GetByID retrieves a mint job by ID.
func (s *MintQueueService) GetByID(ctx context.Context, id string) (*model.MintJob, error) {
	return s.jobs.GetByID(ctx, id)
}

// ListByEvent returns the event's jobs, newest first.
func (s *MintQueueService) ListByEvent(ctx context.Context, eventID string) ([]*model.MintJob, error) {
	return s.jobs.ListByEvent(ctx, eventID)
}

// MarkProcessing claims a specific pending job for one worker. The
// compare-and-set inside the repository guarantees a job is claimed at most
// once: the loser of a race gets a conflict error.
func (s *MintQueueService) MarkProcessing(ctx context.Context, id string, lease time.Duration) (*model.MintJob, error) {
	job, err := s.jobs.MarkProcessing(ctx, id, lease)
	s.emit("processing", err)
	if err != nil {
		return nil, err
	}

	invalidateStatusCache(ctx, s.cache, s.logger, job.EventID)
	return job, nil
}

// ClaimNext claims the oldest pending job of any event without one already
// processing. Returns model.ErrNoJobsAvailable when the queue is drained.
func (s *MintQueueService) ClaimNext(ctx context.Context, lease time.Duration) (*model.MintJob, error) {
	job, err := s.jobs.ClaimNext(ctx, lease)
	if err != nil {
		if !errors.Is(err, model.ErrNoJobsAvailable) {
			s.emit("processing", err)
		}
		return nil, err
	}

	s.emit("processing", nil)
	invalidateStatusCache(ctx, s.cache, s.logger, job.EventID)
	return job, nil
}

// MarkMinted transitions a processing job to minted with its confirmed token ids.
func (s *MintQueueService) MarkMinted(ctx context.Context, job *model.MintJob, tokenIDs []int64) error {
	err := s.jobs.MarkMinted(ctx, job.ID, tokenIDs)
	s.emit("minted", err)
	if err != nil {
		return err
	}

	invalidateStatusCache(ctx, s.cache, s.logger, job.EventID)
	return nil
}

// MarkFailed transitions a processing job to failed with the given message.
func (s *MintQueueService) MarkFailed(ctx context.Context, job *model.MintJob, errMsg string) error {
	err := s.jobs.MarkFailed(ctx, job.ID, errMsg)
	s.emit("failed", err)
	if err != nil {
		return err
	}

	invalidateStatusCache(ctx, s.cache, s.logger, job.EventID)
	return nil
}

func (s *MintQueueService) emit(transition string, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.EmitMintJobLifecycle(s.metrics, metrics.MintJobMetric{
		Transition: transition,
		Result:     result,
		Err:        err,
	})
}
