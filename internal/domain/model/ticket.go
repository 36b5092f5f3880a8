package model

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus represents the admission validity of a ticket.
type TicketStatus string

// MintStatus represents where a ticket is in the NFT minting lifecycle.
type MintStatus string

const (
	// TicketStatusValid indicates a ticket that admits its holder.
	TicketStatusValid TicketStatus = "valid"
	// TicketStatusRevoked indicates a ticket that has been invalidated.
	TicketStatusRevoked TicketStatus = "revoked"

	// MintStatusPending indicates the ticket has not been minted yet.
	MintStatusPending MintStatus = "pending"
	// MintStatusMinted indicates the ticket's token is confirmed on chain.
	MintStatusMinted MintStatus = "minted"
	// MintStatusFailed indicates the last mint attempt failed.
	MintStatusFailed MintStatus = "failed"
	// MintStatusTransferred indicates the token left the admin wallet.
	MintStatusTransferred MintStatus = "transferred"
)

// Valid returns true if the TicketStatus is valid.
func (s TicketStatus) Valid() bool {
	return s == TicketStatusValid || s == TicketStatusRevoked
}

// Valid returns true if the MintStatus is valid.
func (s MintStatus) Valid() bool {
	return s == MintStatusPending || s == MintStatusMinted ||
		s == MintStatusFailed || s == MintStatusTransferred
}

// OnChain reports whether the ticket's token exists on chain. Tickets in an
// on-chain status are immutable and cannot be deleted.
func (s MintStatus) OnChain() bool {
	return s == MintStatusMinted || s == MintStatusTransferred
}

// Deletable reports whether a ticket in this mint status may be removed.
func (s MintStatus) Deletable() bool {
	return s == MintStatusPending || s == MintStatusFailed
}

// Ticket represents a single issued ticket and its NFT state.
// TicketNumber is unique within the event and strictly increasing.
type Ticket struct {
	ID                  string           `json:"id"                          db:"id"`
	EventID             string           `json:"event_id"                    db:"event_id"`
	TicketNumber        int64            `json:"ticket_number"               db:"ticket_number"`
	TotalTicketsInGroup int              `json:"total_tickets_in_group"      db:"total_tickets_in_group"`
	TicketName          string           `json:"ticket_name"                 db:"ticket_name"`
	TicketType          string           `json:"ticket_type,omitempty"       db:"ticket_type"`
	Price               *decimal.Decimal `json:"price,omitempty"             db:"price"`
	Description         string           `json:"description,omitempty"       db:"description"`
	ImageURL            string           `json:"image_url,omitempty"         db:"image_url"`
	TicketStatus        TicketStatus     `json:"ticket_status"               db:"ticket_status"`
	MintStatus          MintStatus       `json:"nft_mint_status"             db:"nft_mint_status"`
	TokenID             *int64           `json:"nft_token_id,omitempty"      db:"nft_token_id"`
	Metadata            *NFTMetadata     `json:"nft_metadata,omitempty"      db:"nft_metadata"`
	CreatedAt           time.Time        `json:"created_at"                  db:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"                  db:"updated_at"`
}

const (
	// MinIssueQuantity is the smallest batch a single issuance request may create.
	MinIssueQuantity = 1
	// MaxIssueQuantity bounds one issuance batch; it matches the largest batch
	// the chain gateway will accept in a single batchMint transaction.
	MaxIssueQuantity = 1000
)

// IssueTicketsRequest represents a request to issue a batch of tickets for an event.
type IssueTicketsRequest struct {
	EventID     string           `json:"event_id"`
	TicketName  string           `json:"ticket_name"`
	Quantity    int              `json:"quantity"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
	Description string           `json:"description,omitempty"`
	TicketType  string           `json:"ticket_type,omitempty"`
}

// Validate validates the IssueTicketsRequest fields.
func (r *IssueTicketsRequest) Validate() error {
	if strings.TrimSpace(r.EventID) == "" {
		return errors.New("event id is required")
	}
	if strings.TrimSpace(r.TicketName) == "" {
		return errors.New("ticket name is required")
	}
	if r.Quantity < MinIssueQuantity || r.Quantity > MaxIssueQuantity {
		return errors.New("quantity must be between 1 and 1000")
	}
	if r.Price != nil && r.Price.IsNegative() {
		return errors.New("price must not be negative")
	}
	return nil
}

// IssueTicketsResult is the outcome of a successful issuance request.
// MintStatus reports how the batch reached (or will reach) the chain:
// "minted" for immediate mode, "queued" for queued mode.
type IssueTicketsResult struct {
	TicketsCreated       int       `json:"tickets_created"`
	StartingTicketNumber int64     `json:"starting_ticket_number"`
	Tickets              []*Ticket `json:"tickets"`
	MintStatus           string    `json:"mint_status"`
}

// MintStatusCounts holds per-event ticket counts keyed by mint status.
type MintStatusCounts struct {
	Total       int `json:"total_tickets"`
	Pending     int `json:"pending"`
	Minted      int `json:"minted"`
	Failed      int `json:"failed"`
	Transferred int `json:"transferred"`
}

// MintStatusSummary is the read-only rollup served by the status endpoint.
type MintStatusSummary struct {
	MintStatusCounts
	QueueJobs []*MintJobSummary `json:"queue_jobs"`
}

// MintJobSummary is the queue-job slice of the status rollup.
type MintJobSummary struct {
	JobID        string        `json:"job_id"`
	Status       MintJobStatus `json:"status"`
	TicketCount  int           `json:"ticket_count"`
	RetryCount   int           `json:"retry_count"`
	CreatedAt    time.Time     `json:"created_at"`
	ProcessedAt  *time.Time    `json:"processed_at,omitempty"`
	ErrorMessage *string       `json:"error_message,omitempty"`
}
