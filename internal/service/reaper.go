package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/ticketmint/ticketmint/config"
	"github.com/ticketmint/ticketmint/internal/core"
	obserrors "github.com/ticketmint/ticketmint/internal/observability/errors"
	"github.com/ticketmint/ticketmint/internal/observability/metrics"
	"github.com/ticketmint/ticketmint/internal/observability/statsd"
)

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Jobs    core.MintJobRepository // Required: mint job repository
	Config  config.ReaperConfig    // Required: reaper configuration
	Logger  *slog.Logger           // Optional: structured logger
	Metrics statsd.Sink            // Optional: metrics sink (StatsD-compatible)
}

// ReaperService sweeps mint jobs whose processing lease expired, typically
// because a worker died mid-mint. Swept jobs become failed, not pending: the
// batch transaction may already be on chain, so an automatic re-run could
// mint duplicates. An operator decides whether to retry.
type ReaperService struct {
	jobs    core.MintJobRepository
	config  config.ReaperConfig
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewReaperService constructs a new ReaperService.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("MintJobRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "reaper_service")
	}

	return &ReaperService{
		jobs:    opts.Jobs,
		config:  opts.Config,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Run starts the reaper loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *ReaperService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting reaper service", "interval", s.config.Interval)
	}

	// Jitter prevents a thundering herd when multiple instances start together.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "reaper service stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// waitWithJitter adds a random delay up to 10% of the interval.
func (s *ReaperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// If crypto/rand fails, skip jitter rather than failing startup
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

// sweep fails every processing job whose lease expired. Errors keep the loop
// alive; the next tick tries again.
func (s *ReaperService) sweep(ctx context.Context) {
	start := time.Now()
	count, err := s.jobs.FailStale(ctx)
	s.emitSweepMetrics(count, time.Since(start), err)

	switch {
	case err == nil:
		if count > 0 && s.logger != nil {
			s.logger.InfoContext(ctx, "failed stale mint jobs", "count", count)
		}
	case isContextCancellation(err):
		if s.logger != nil {
			s.logger.Debug("sweep cancelled by context", "error", err)
		}
	default:
		if s.logger != nil {
			s.logger.Error("sweep failed", "error", err)
		}
	}
}

func (s *ReaperService) emitSweepMetrics(count int64, elapsed time.Duration, err error) {
	if s.metrics == nil {
		return
	}

	err = suppressContextCancellation(err)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	} else if count == 0 {
		result = metrics.ResultNoop
	}

	tags := map[string]string{
		"result": result,
	}
	if err != nil {
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}

	s.metrics.Count("reaper.sweep", 1, tags)

	if elapsed > 0 {
		s.metrics.Timing("reaper.sweep_duration", elapsed, metrics.CloneTags(tags))
	}
	if err == nil && count > 0 {
		s.metrics.Count("reaper.jobs_failed", count, metrics.CloneTags(tags))
	}
	if err == nil {
		s.metrics.Gauge("reaper.last_success_epoch", float64(time.Now().Unix()), nil)
	}
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func suppressContextCancellation(err error) error {
	if isContextCancellation(err) {
		return nil
	}
	return err
}
