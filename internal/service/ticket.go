package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ticketmint/ticketmint/internal/core"
	"github.com/ticketmint/ticketmint/internal/domain/model"
)

// TicketServiceOptions groups dependencies for TicketService.
type TicketServiceOptions struct {
	Tickets core.TicketRepository // Required: ticket repository
	Cache   core.CacheRepository  // Optional: status summary cache, invalidated on delete
	Logger  *slog.Logger          // Optional: structured logger
}

// TicketService provides read and guarded-delete access to tickets.
//
// Deletion is guarded by mint status: a ticket whose token exists on chain
// (minted or transferred) is immutable and must survive. The guard lives in
// the DELETE statement itself, so the check and the removal are one atomic
// step even under concurrent minting.
type TicketService struct {
	tickets core.TicketRepository
	cache   core.CacheRepository
	logger  *slog.Logger
}

// NewTicketService constructs a new TicketService.
func NewTicketService(opts TicketServiceOptions) (*TicketService, error) {
	if opts.Tickets == nil {
		return nil, errors.New("TicketRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "ticket_service")
	}

	return &TicketService{
		tickets: opts.Tickets,
		cache:   opts.Cache,
		logger:  logger,
	}, nil
}

// GetByID retrieves a ticket by ID.
func (s *TicketService) GetByID(ctx context.Context, id string) (*model.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// ListByEvent returns the event's tickets ordered by ticket number.
func (s *TicketService) ListByEvent(ctx context.Context, eventID string) ([]*model.Ticket, error) {
	return s.tickets.ListByEvent(ctx, eventID)
}

// Delete removes a ticket while its mint status still permits deletion.
// Minted and transferred tickets yield a conflict error and remain stored.
func (s *TicketService) Delete(ctx context.Context, id string) error {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.tickets.Delete(ctx, id); err != nil {
		return err
	}

	invalidateStatusCache(ctx, s.cache, s.logger, ticket.EventID)

	if s.logger != nil {
		s.logger.InfoContext(ctx, "ticket deleted", "ticket_id", id, "event_id", ticket.EventID)
	}
	return nil
}

// DeleteByEvent removes every deletable ticket of the event and returns the
// number removed. On-chain tickets are skipped, not errors.
func (s *TicketService) DeleteByEvent(ctx context.Context, eventID string) (int, error) {
	deleted, err := s.tickets.DeleteByEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		invalidateStatusCache(ctx, s.cache, s.logger, eventID)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "event tickets deleted", "event_id", eventID, "count", deleted)
	}
	return deleted, nil
}
