package model

import (
	"errors"
	"time"
)

// MintJobStatus represents the lifecycle state of a queued mint job.
type MintJobStatus string

const (
	// MintJobStatusPending indicates the job is waiting for a worker.
	MintJobStatusPending MintJobStatus = "pending"
	// MintJobStatusProcessing indicates exactly one worker has claimed the job.
	MintJobStatusProcessing MintJobStatus = "processing"
	// MintJobStatusMinted indicates the batch transaction confirmed on chain.
	MintJobStatusMinted MintJobStatus = "minted"
	// MintJobStatusFailed indicates the attempt failed and awaits operator retry.
	MintJobStatusFailed MintJobStatus = "failed"
)

// Valid returns true if the MintJobStatus is valid.
func (s MintJobStatus) Valid() bool {
	return s == MintJobStatusPending || s == MintJobStatusProcessing ||
		s == MintJobStatusMinted || s == MintJobStatusFailed
}

// ErrNoJobsAvailable is returned when no pending mint jobs are available for claiming.
var ErrNoJobsAvailable = errors.New("no mint jobs available")

// MintJob binds an ordered set of tickets to one batch mint attempt.
//
// The order of TicketIDs is fixed at creation: position i in TicketIDs
// corresponds to position i in the uploaded metadata URIs and in the token ids
// returned by the chain. Nothing between enqueue and write-back may re-sort it.
type MintJob struct {
	ID             string        `json:"id"                         db:"id"`
	EventID        string        `json:"event_id"                   db:"event_id"`
	TicketIDs      []string      `json:"ticket_ids"                 db:"ticket_ids"`
	Status         MintJobStatus `json:"status"                     db:"status"`
	RetryCount     int           `json:"retry_count"                db:"retry_count"`
	ErrorMessage   *string       `json:"error_message,omitempty"    db:"error_message"`
	CreatedAt      time.Time     `json:"created_at"                 db:"created_at"`
	ProcessedAt    *time.Time    `json:"processed_at,omitempty"     db:"processed_at"`
	LeaseExpiresAt *time.Time    `json:"lease_expires_at,omitempty" db:"lease_expires_at"`
	UpdatedAt      time.Time     `json:"updated_at"                 db:"updated_at"`
}

// EnqueueMintJobRequest represents a request to create a new mint job.
type EnqueueMintJobRequest struct {
	EventID   string   `json:"event_id"`
	TicketIDs []string `json:"ticket_ids"`
}

// Validate validates the EnqueueMintJobRequest fields.
func (r *EnqueueMintJobRequest) Validate() error {
	if r.EventID == "" {
		return errors.New("event id is required")
	}
	if len(r.TicketIDs) == 0 {
		return errors.New("at least one ticket is required")
	}
	seen := make(map[string]struct{}, len(r.TicketIDs))
	for _, id := range r.TicketIDs {
		if id == "" {
			return errors.New("ticket id must not be empty")
		}
		if _, dup := seen[id]; dup {
			return errors.New("duplicate ticket id: " + id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Summary converts the job into its status-rollup representation.
func (j *MintJob) Summary() *MintJobSummary {
	return &MintJobSummary{
		JobID:        j.ID,
		Status:       j.Status,
		TicketCount:  len(j.TicketIDs),
		RetryCount:   j.RetryCount,
		CreatedAt:    j.CreatedAt,
		ProcessedAt:  j.ProcessedAt,
		ErrorMessage: j.ErrorMessage,
	}
}
