package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ticketmint/ticketmint/internal/core"
	"github.com/ticketmint/ticketmint/internal/domain/model"
	obserrors "github.com/ticketmint/ticketmint/internal/observability/errors"
	"github.com/ticketmint/ticketmint/internal/observability/metrics"
	"github.com/ticketmint/ticketmint/internal/observability/notify"
	"github.com/ticketmint/ticketmint/internal/observability/statsd"
	"github.com/ticketmint/ticketmint/internal/service/failurenotifier"
)

// BlockchainMinterOptions groups dependencies for BlockchainMinterService.
type BlockchainMinterOptions struct {
	Events  core.EventRepository  // Required: event repository
	Tickets core.TicketRepository // Required: ticket repository
	Queue   *MintQueueService     // Required: mint queue for job transitions
	Chain   core.ChainClient      // Required: blockchain gateway client
	Store   core.MetadataStore    // Required: metadata pinning store

	Logger          *slog.Logger             // Optional: structured logger
	Metrics         statsd.Sink              // Optional: metrics sink
	FailureNotifier *failurenotifier.Service // Optional: mint failure alerting

	// UploadConcurrency bounds parallel metadata uploads per job. Defaults to 4.
	UploadConcurrency int
	// ConfirmationTimeout bounds the wait for chain confirmation. Defaults to 2m.
	ConfirmationTimeout time.Duration
	// Now is the clock used for failure timestamps; defaults to time.Now.
	Now func() time.Time
}

// BlockchainMinterService executes one claimed mint job end to end: metadata
// uploads, the batch mint transaction, confirmation, and the database
// write-back.
//
// The job's ticket order is the contract with the chain: URIs[i] and
// TokenIDs[i] belong to TicketIDs[i], and the token id is the ticket number.
// Uploads may run concurrently but land in order-indexed slots, so a partial
// upload failure aborts the job before anything reaches the chain. A
// transaction, once broadcast, is never retried here: resubmitting after an
// ambiguous failure could mint the same tokens twice.
type BlockchainMinterService struct {
	events  core.EventRepository
	tickets core.TicketRepository
	queue   *MintQueueService
	chain   core.ChainClient
	store   core.MetadataStore

	logger          *slog.Logger
	metrics         statsd.Sink
	failureNotifier *failurenotifier.Service

	uploadConcurrency   int
	confirmationTimeout time.Duration
	now                 func() time.Time
}

// NewBlockchainMinterService constructs a new BlockchainMinterService.
func NewBlockchainMinterService(opts BlockchainMinterOptions) (*BlockchainMinterService, error) {
	if opts.Events == nil {
		return nil, errors.New("EventRepository is required")
	}
	if opts.Tickets == nil {
		return nil, errors.New("TicketRepository is required")
	}
	if opts.Queue == nil {
		return nil, errors.New("MintQueueService is required")
	}
	if opts.Chain == nil {
		return nil, errors.New("ChainClient is required")
	}
	if opts.Store == nil {
		return nil, errors.New("MetadataStore is required")
	}

	uploadConcurrency := opts.UploadConcurrency
	if uploadConcurrency <= 0 {
		uploadConcurrency = 4
	}
	confirmationTimeout := opts.ConfirmationTimeout
	if confirmationTimeout <= 0 {
		confirmationTimeout = 2 * time.Minute
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "blockchain_minter")
	}

	return &BlockchainMinterService{
		events:              opts.Events,
		tickets:             opts.Tickets,
		queue:               opts.Queue,
		chain:               opts.Chain,
		store:               opts.Store,
		logger:              logger,
		metrics:             opts.Metrics,
		failureNotifier:     opts.FailureNotifier,
		uploadConcurrency:   uploadConcurrency,
		confirmationTimeout: confirmationTimeout,
		now:                 now,
	}, nil
}

// ProcessJob mints the job's tickets. The job must already be in processing.
// On success the tickets and the job are marked minted; on failure both are
// marked failed and the error is returned so the caller can log it. The
// returned error never means the job is stuck: its terminal state is always
// written before returning.
func (s *BlockchainMinterService) ProcessJob(ctx context.Context, job *model.MintJob) error {
	started := s.now()

	event, err := s.events.GetByID(ctx, job.EventID)
	if err != nil {
		return s.fail(ctx, job, nil, fmt.Errorf("load event: %w", err))
	}
	if !event.MintConfigured() {
		return s.fail(ctx, job, event, errors.New("event has no mint configuration"))
	}

	tickets, err := s.tickets.ListByIDs(ctx, job.TicketIDs)
	if err != nil {
		return s.fail(ctx, job, event, fmt.Errorf("load tickets: %w", err))
	}
	if len(tickets) != len(job.TicketIDs) {
		return s.fail(ctx, job, event,
			fmt.Errorf("job references %d tickets but %d exist", len(job.TicketIDs), len(tickets)))
	}

	uris, err := s.uploadMetadata(ctx, tickets)
	if err != nil {
		return s.fail(ctx, job, event, fmt.Errorf("upload metadata: %w", err))
	}

	tokenIDs := make([]int64, len(tickets))
	for i, ticket := range tickets {
		tokenIDs[i] = ticket.TicketNumber
	}

	txHash, err := s.submit(ctx, event, tokenIDs, uris)
	if err != nil {
		return s.fail(ctx, job, event, fmt.Errorf("submit mint transaction: %w", err))
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "mint transaction submitted",
			"job_id", job.ID,
			"event_id", job.EventID,
			"tx_hash", txHash,
			"tokens", len(tokenIDs),
		)
	}

	confirmCtx, cancel := context.WithTimeout(ctx, s.confirmationTimeout)
	err = s.chain.WaitForConfirmation(confirmCtx, txHash)
	cancel()
	if err != nil {
		return s.fail(ctx, job, event, fmt.Errorf("confirm transaction %s: %w", txHash, err))
	}

	results := make([]core.MintResult, len(tickets))
	for i, ticket := range tickets {
		results[i] = core.MintResult{TicketID: ticket.ID, TokenID: tokenIDs[i]}
	}
	if err := s.tickets.RecordMintResults(ctx, results); err != nil {
		// The tokens exist on chain; marking the tickets failed would invite a
		// duplicate mint on retry. Park the job failed with the tx hash so an
		// operator can reconcile.
		writeErr := fmt.Errorf("record mint results after tx %s: %w", txHash, err)
		s.markJobFailed(ctx, job, writeErr)
		s.notifyFailure(ctx, job, event, writeErr)
		return writeErr
	}

	if err := s.queue.MarkMinted(ctx, job, tokenIDs); err != nil {
		return fmt.Errorf("mark job minted: %w", err)
	}

	metrics.EmitMintJobLifecycle(s.metrics, metrics.MintJobMetric{
		Transition: "completed",
		Result:     metrics.ResultSuccess,
		Duration:   s.now().Sub(started),
	})

	if s.logger != nil {
		s.logger.InfoContext(ctx, "mint job completed",
			"job_id", job.ID,
			"event_id", job.EventID,
			"tx_hash", txHash,
			"tokens", len(tokenIDs),
			"duration", s.now().Sub(started),
		)
	}
	return nil
}

// uploadMetadata pins every ticket's metadata document, bounded by the upload
// concurrency limit. The result slice preserves ticket order regardless of
// upload completion order.
func (s *BlockchainMinterService) uploadMetadata(ctx context.Context, tickets []*model.Ticket) ([]string, error) {
	uris := make([]string, len(tickets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.uploadConcurrency)
	for i, ticket := range tickets {
		if ticket.Metadata == nil {
			return nil, fmt.Errorf("ticket %s has no metadata document", ticket.ID)
		}
		g.Go(func() error {
			uri, err := s.store.Upload(gctx, *ticket.Metadata)
			if err != nil {
				return fmt.Errorf("ticket %s: %w", ticket.ID, err)
			}
			uris[i] = uri
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return uris, nil
}

func (s *BlockchainMinterService) submit(
	ctx context.Context,
	event *model.Event,
	tokenIDs []int64,
	uris []string,
) (string, error) {
	if len(tokenIDs) == 1 {
		return s.chain.Mint(ctx, core.MintRequest{
			ContractAddress: event.ContractAddress,
			Recipient:       event.AdminWallet,
			TokenID:         tokenIDs[0],
			URI:             uris[0],
		})
	}
	return s.chain.BatchMint(ctx, core.BatchMintRequest{
		ContractAddress: event.ContractAddress,
		Recipient:       event.AdminWallet,
		TokenIDs:        tokenIDs,
		URIs:            uris,
	})
}

// fail marks the tickets and the job failed, emits the failure notification,
// and returns the causing error.
func (s *BlockchainMinterService) fail(ctx context.Context, job *model.MintJob, event *model.Event, cause error) error {
	if _, err := s.tickets.MarkMintFailed(ctx, job.TicketIDs); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "mark tickets mint-failed",
			"job_id", job.ID,
			"event_id", job.EventID,
			"error", err,
		)
	}

	s.markJobFailed(ctx, job, cause)
	s.notifyFailure(ctx, job, event, cause)

	if s.logger != nil {
		s.logger.ErrorContext(ctx, "mint job failed",
			"job_id", job.ID,
			"event_id", job.EventID,
			"error", cause,
		)
	}
	return cause
}

func (s *BlockchainMinterService) markJobFailed(ctx context.Context, job *model.MintJob, cause error) {
	if err := s.queue.MarkFailed(ctx, job, cause.Error()); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "mark job failed",
			"job_id", job.ID,
			"event_id", job.EventID,
			"error", err,
		)
	}
}

func (s *BlockchainMinterService) notifyFailure(ctx context.Context, job *model.MintJob, event *model.Event, cause error) {
	if s.failureNotifier == nil || !s.failureNotifier.Enabled() {
		return
	}

	payload := notify.MintFailurePayload{
		JobID:       job.ID,
		EventID:     job.EventID,
		TicketCount: len(job.TicketIDs),
		RetryCount:  job.RetryCount,
		Error:       cause.Error(),
		ErrorClass:  obserrors.Classify(cause),
		Severity:    notify.SeverityCritical,
		OccurredAt:  s.now(),
	}
	if event != nil {
		payload.EventName = event.Name
	}
	s.failureNotifier.NotifyMintFailure(ctx, payload)
}
