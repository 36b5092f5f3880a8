package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ticketmint/ticketmint/internal/core"
	"github.com/ticketmint/ticketmint/internal/domain/model"
	"github.com/ticketmint/ticketmint/internal/domain/nft"
	apperrors "github.com/ticketmint/ticketmint/internal/errors"
)

// Issuance-result mint statuses reported to the caller.
const (
	IssueMintStatusQueued = "queued"
	IssueMintStatusMinted = "minted"
	IssueMintStatusFailed = "failed"
)

// TicketIssuerOptions groups dependencies for TicketIssuerService.
type TicketIssuerOptions struct {
	Events  core.EventRepository     // Required: event repository
	Tickets core.TicketRepository    // Required: ticket repository
	Queue   *MintQueueService        // Required: mint queue
	Minter  *BlockchainMinterService // Required: minter for immediate mode
	Cache   core.CacheRepository     // Optional: status summary cache
	Logger  *slog.Logger             // Optional: structured logger

	// JobLease is the processing lease granted when minting immediately.
	// Defaults to 5m.
	JobLease time.Duration
}

// TicketIssuerService issues ticket batches. One request allocates a
// contiguous run of per-event ticket numbers, persists the tickets with their
// metadata, and enqueues the mint job, all in a single transaction: a batch
// either fully exists with its queue entry or not at all.
//
// In immediate mint mode the freshly enqueued job is claimed and minted
// synchronously through the same path the background worker uses. A failed
// immediate mint does not roll the issuance back; the tickets stay issued
// with a failed job awaiting operator retry.
type TicketIssuerService struct {
	events  core.EventRepository
	tickets core.TicketRepository
	queue   *MintQueueService
	minter  *BlockchainMinterService
	cache   core.CacheRepository
	logger  *slog.Logger

	jobLease time.Duration
}

// NewTicketIssuerService constructs a new TicketIssuerService.
func NewTicketIssuerService(opts TicketIssuerOptions) (*TicketIssuerService, error) {
	if opts.Events == nil {
		return nil, errors.New("EventRepository is required")
	}
	if opts.Tickets == nil {
		return nil, errors.New("TicketRepository is required")
	}
	if opts.Queue == nil {
		return nil, errors.New("MintQueueService is required")
	}
	if opts.Minter == nil {
		return nil, errors.New("BlockchainMinterService is required")
	}

	jobLease := opts.JobLease
	if jobLease <= 0 {
		jobLease = 5 * time.Minute
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "ticket_issuer")
	}

	return &TicketIssuerService{
		events:   opts.Events,
		tickets:  opts.Tickets,
		queue:    opts.Queue,
		minter:   opts.Minter,
		cache:    opts.Cache,
		logger:   logger,
		jobLease: jobLease,
	}, nil
}

// IssueTickets issues a batch of tickets for an event.
func (s *TicketIssuerService) IssueTickets(
	ctx context.Context,
	req *model.IssueTicketsRequest,
) (*model.IssueTicketsResult, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if !event.MintConfigured() {
		return nil, apperrors.Validation("event mint configuration is incomplete")
	}

	batch, err := s.tickets.IssueBatch(ctx, core.IssueBatchParams{
		Event:   event,
		Request: req,
		BuildMetadata: func(ticketNumber int64) model.NFTMetadata {
			return nft.Build(nft.BuildInput{
				TicketName:   req.TicketName,
				TicketNumber: ticketNumber,
				TotalSupply:  req.Quantity,
				Description:  req.Description,
				ImageURL:     req.ImageURL,
				TicketType:   req.TicketType,
				Event:        event,
			})
		},
		EnqueueJob: true,
	})
	if err != nil {
		return nil, err
	}

	invalidateStatusCache(ctx, s.cache, s.logger, event.ID)

	if s.logger != nil {
		s.logger.InfoContext(ctx, "tickets issued",
			"event_id", event.ID,
			"quantity", len(batch.Tickets),
			"starting_number", batch.StartingNumber,
			"job_id", batch.Job.ID,
			"mint_mode", event.MintMode,
		)
	}

	result := &model.IssueTicketsResult{
		TicketsCreated:       len(batch.Tickets),
		StartingTicketNumber: batch.StartingNumber,
		Tickets:              batch.Tickets,
		MintStatus:           IssueMintStatusQueued,
	}

	if event.MintMode == model.MintModeImmediate {
		s.mintNow(ctx, batch, result)
	}
	return result, nil
}

// mintNow drives the batch's job through the minter synchronously. The
// issuance is already committed; whatever happens here only changes the
// reported result.
func (s *TicketIssuerService) mintNow(ctx context.Context, batch *core.IssueBatchResult, result *model.IssueTicketsResult) {
	job, err := s.queue.MarkProcessing(ctx, batch.Job.ID, s.jobLease)
	if err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "claim immediate mint job", "job_id", batch.Job.ID, "error", err)
		}
		return
	}

	if err := s.minter.ProcessJob(ctx, job); err != nil {
		result.MintStatus = IssueMintStatusFailed
		return
	}
	result.MintStatus = IssueMintStatusMinted

	// Reload so the response carries the minted statuses and token ids.
	ids := make([]string, len(batch.Tickets))
	for i, ticket := range batch.Tickets {
		ids[i] = ticket.ID
	}
	if minted, err := s.tickets.ListByIDs(ctx, ids); err == nil {
		result.Tickets = minted
	} else if s.logger != nil {
		s.logger.WarnContext(ctx, "reload minted tickets", "job_id", job.ID, "error", err)
	}
}
