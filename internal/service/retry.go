package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ticketmint/ticketmint/internal/core"
)

// RetryCoordinatorOptions groups dependencies for RetryCoordinator.
type RetryCoordinatorOptions struct {
	Jobs   core.MintJobRepository // Required: mint job repository
	Cache  core.CacheRepository   // Optional: status summary cache
	Logger *slog.Logger           // Optional: structured logger
}

// RetryCoordinator returns an event's failed mint jobs to the queue.
//
// It only flips queue state: the mint worker picks the reset jobs up through
// its normal claim path, so a retry can never mint twice concurrently.
// Resetting an event with no failed jobs is a no-op, which makes the
// operation safe to repeat.
type RetryCoordinator struct {
	jobs   core.MintJobRepository
	cache  core.CacheRepository
	logger *slog.Logger
}

// NewRetryCoordinator constructs a new RetryCoordinator.
func NewRetryCoordinator(opts RetryCoordinatorOptions) (*RetryCoordinator, error) {
	if opts.Jobs == nil {
		return nil, errors.New("MintJobRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "retry_coordinator")
	}

	return &RetryCoordinator{
		jobs:   opts.Jobs,
		cache:  opts.Cache,
		logger: logger,
	}, nil
}

// RetryFailed returns every failed job of the event to pending with a clean
// retry state and reports how many were reset.
func (c *RetryCoordinator) RetryFailed(ctx context.Context, eventID string) (int, error) {
	reset, err := c.jobs.ResetFailed(ctx, eventID)
	if err != nil {
		return 0, err
	}

	if reset > 0 {
		invalidateStatusCache(ctx, c.cache, c.logger, eventID)
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "failed mint jobs reset", "event_id", eventID, "count", reset)
	}
	return reset, nil
}
