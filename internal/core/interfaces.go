// Package core defines the interfaces the business layer depends on.
// The data layer and outbound adapters provide the implementations; the
// services never depend on a concrete store or client.
package core

import (
	"context"
	"time"

	"github.com/ticketmint/ticketmint/internal/domain/model"
)

// EventRepository provides persistence for events and their mint configuration.
type EventRepository interface {
	Create(ctx context.Context, req *model.CreateEventRequest) (*model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context) ([]*model.Event, error)
	UpdateMintConfig(ctx context.Context, id string, req *model.UpdateEventMintConfigRequest) (*model.Event, error)
}

// IssueBatchParams carries one atomic issuance request into the ticket store.
//
// BuildMetadata is invoked once per allocated ticket number inside the
// issuance transaction, after the starting number is known. It must be pure.
type IssueBatchParams struct {
	Event         *model.Event
	Request       *model.IssueTicketsRequest
	BuildMetadata func(ticketNumber int64) model.NFTMetadata
	// EnqueueJob creates the mint job in the same transaction as the tickets,
	// so a committed batch always has its queue entry.
	EnqueueJob bool
}

// IssueBatchResult reports the outcome of an atomic issuance.
type IssueBatchResult struct {
	Tickets        []*model.Ticket
	StartingNumber int64
	// Job is set when EnqueueJob was requested.
	Job *model.MintJob
}

// MintResult pairs a ticket with its confirmed on-chain token id.
type MintResult struct {
	TicketID string
	TokenID  int64
}

// TicketRepository provides persistence for tickets.
//
// IssueBatch is the only writer that allocates ticket numbers; it serializes
// allocation per event so concurrent batches never overlap.
type TicketRepository interface {
	IssueBatch(ctx context.Context, params IssueBatchParams) (*IssueBatchResult, error)
	GetByID(ctx context.Context, id string) (*model.Ticket, error)
	ListByEvent(ctx context.Context, eventID string) ([]*model.Ticket, error)
	// ListByIDs returns tickets in the order of the given ids.
	ListByIDs(ctx context.Context, ids []string) ([]*model.Ticket, error)
	// RecordMintResults marks every listed ticket minted with its token id,
	// atomically for the whole set.
	RecordMintResults(ctx context.Context, results []MintResult) error
	// MarkMintFailed marks every listed ticket failed. Tickets already on
	// chain are never touched.
	MarkMintFailed(ctx context.Context, ticketIDs []string) (int, error)
	// Delete removes a ticket only while its mint status permits deletion;
	// the check happens inside the delete statement itself.
	Delete(ctx context.Context, id string) error
	// DeleteByEvent removes every deletable ticket of the event and returns
	// the number removed.
	DeleteByEvent(ctx context.Context, eventID string) (int, error)
	CountsByMintStatus(ctx context.Context, eventID string) (*model.MintStatusCounts, error)
}

// MintJobRepository is the durable mint queue.
type MintJobRepository interface {
	Enqueue(ctx context.Context, req *model.EnqueueMintJobRequest) (*model.MintJob, error)
	GetByID(ctx context.Context, id string) (*model.MintJob, error)
	// ListByEvent returns the event's jobs ordered by created_at descending.
	ListByEvent(ctx context.Context, eventID string) ([]*model.MintJob, error)
	// MarkProcessing claims a specific job: pending→processing with a lease.
	// A job in any other status yields a conflict error.
	MarkProcessing(ctx context.Context, id string, lease time.Duration) (*model.MintJob, error)
	// ClaimNext claims the oldest pending job of any event that has no job
	// currently processing, preserving per-event ordering. Returns
	// model.ErrNoJobsAvailable when nothing is claimable.
	ClaimNext(ctx context.Context, lease time.Duration) (*model.MintJob, error)
	// MarkMinted transitions processing→minted and stamps processed_at.
	// len(tokenIDs) must equal the job's ticket count.
	MarkMinted(ctx context.Context, id string, tokenIDs []int64) error
	// MarkFailed transitions processing→failed with the given message.
	MarkFailed(ctx context.Context, id string, errMsg string) error
	// ResetFailed returns every failed job of the event to pending with
	// retry_count 0 and no error message. Returns the number reset.
	ResetFailed(ctx context.Context, eventID string) (int, error)
	// FailStale marks processing jobs whose lease expired as failed so the
	// operator can retry them. Returns the number swept.
	FailStale(ctx context.Context) (int64, error)
}

// BatchMintRequest is one batch-mint transaction submission.
// TokenIDs[i] and URIs[i] mint the token for the same ticket.
type BatchMintRequest struct {
	ContractAddress string
	Recipient       string
	TokenIDs        []int64
	URIs            []string
}

// MintRequest is a single-token mint submission.
type MintRequest struct {
	ContractAddress string
	Recipient       string
	TokenID         int64
	URI             string
}

// ChainClient submits mint transactions to the blockchain gateway and waits
// for chain-level resolution. A broadcast transaction cannot be cancelled;
// WaitForConfirmation blocks until success, revert, or its context deadline.
type ChainClient interface {
	BatchMint(ctx context.Context, req BatchMintRequest) (txHash string, err error)
	Mint(ctx context.Context, req MintRequest) (txHash string, err error)
	WaitForConfirmation(ctx context.Context, txHash string) error
}

// MetadataStore uploads metadata documents to content-addressed storage and
// returns the resulting URI.
type MetadataStore interface {
	Upload(ctx context.Context, doc model.NFTMetadata) (uri string, err error)
}

// CacheRepository defines the caching operations used by the status rollup.
type CacheRepository interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns nil when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) (bool, error)
	Health(ctx context.Context) error
}
