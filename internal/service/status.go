package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/ticketmint/ticketmint/internal/core"
	"github.com/ticketmint/ticketmint/internal/domain/model"
)

// statusCacheKey builds the Redis key for an event's mint-status summary.
func statusCacheKey(eventID string) string {
	return "ticketmint:mint_status:" + eventID
}

// invalidateStatusCache drops the cached summary for an event. Best effort:
// a failed delete only extends staleness until the TTL expires.
func invalidateStatusCache(ctx context.Context, cache core.CacheRepository, logger *slog.Logger, eventID string) {
	if cache == nil || eventID == "" {
		return
	}
	if _, err := cache.Delete(ctx, statusCacheKey(eventID)); err != nil && logger != nil {
		logger.WarnContext(ctx, "invalidate status cache", "event_id", eventID, "error", err)
	}
}

// StatusAggregatorOptions groups dependencies for StatusAggregator.
type StatusAggregatorOptions struct {
	Tickets core.TicketRepository  // Required: ticket repository
	Jobs    core.MintJobRepository // Required: mint job repository
	Cache   core.CacheRepository   // Optional: read-through summary cache
	TTL     time.Duration          // Optional: cache TTL; defaults to 30s
	Logger  *slog.Logger           // Optional: structured logger
}

// StatusAggregator serves the per-event minting status rollup: ticket counts
// keyed by mint status plus the event's queue jobs. It never mutates state,
// so an event with no tickets yields an all-zero summary rather than an error.
type StatusAggregator struct {
	tickets core.TicketRepository
	jobs    core.MintJobRepository
	cache   core.CacheRepository
	ttl     time.Duration
	logger  *slog.Logger
}

// NewStatusAggregator constructs a new StatusAggregator.
func NewStatusAggregator(opts StatusAggregatorOptions) (*StatusAggregator, error) {
	if opts.Tickets == nil {
		return nil, errors.New("TicketRepository is required")
	}
	if opts.Jobs == nil {
		return nil, errors.New("MintJobRepository is required")
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "status_aggregator")
	}

	return &StatusAggregator{
		tickets: opts.Tickets,
		jobs:    opts.Jobs,
		cache:   opts.Cache,
		ttl:     ttl,
		logger:  logger,
	}, nil
}

// Summary returns the mint-status rollup for an event. Results are served
// from cache when fresh; cache failures fall back to the database.
func (s *StatusAggregator) Summary(ctx context.Context, eventID string) (*model.MintStatusSummary, error) {
	if cached := s.fromCache(ctx, eventID); cached != nil {
		return cached, nil
	}

	counts, err := s.tickets.CountsByMintStatus(ctx, eventID)
	if err != nil {
		return nil, err
	}

	jobs, err := s.jobs.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	summary := &model.MintStatusSummary{
		MintStatusCounts: *counts,
		QueueJobs:        make([]*model.MintJobSummary, 0, len(jobs)),
	}
	for _, job := range jobs {
		summary.QueueJobs = append(summary.QueueJobs, job.Summary())
	}

	s.store(ctx, eventID, summary)
	return summary, nil
}

// Invalidate drops the cached summary for an event.
func (s *StatusAggregator) Invalidate(ctx context.Context, eventID string) {
	invalidateStatusCache(ctx, s.cache, s.logger, eventID)
}

func (s *StatusAggregator) fromCache(ctx context.Context, eventID string) *model.MintStatusSummary {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, statusCacheKey(eventID))
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "status cache read", "event_id", eventID, "error", err)
		}
		return nil
	}
	if raw == nil {
		return nil
	}

	var summary model.MintStatusSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "status cache decode", "event_id", eventID, "error", err)
		}
		return nil
	}
	return &summary
}

func (s *StatusAggregator) store(ctx context.Context, eventID string, summary *model.MintStatusSummary) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statusCacheKey(eventID), raw, s.ttl); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "status cache write", "event_id", eventID, "error", err)
	}
}
