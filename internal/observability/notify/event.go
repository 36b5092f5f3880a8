package notify

import (
	"context"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
)

// MintFailurePayload captures the canonical data we emit for mint failure notifications.
type MintFailurePayload struct {
	JobID       string
	EventID     string
	EventName   string
	TicketCount int
	RetryCount  int
	Error       string
	ErrorClass  string
	Severity    string
	OccurredAt  time.Time
	Metadata    map[string]string
}

// Sink describes a destination capable of consuming mint failure notifications.
type Sink interface {
	SendMintFailure(ctx context.Context, payload MintFailurePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload MintFailurePayload) error

// SendMintFailure implements the Sink interface.
func (f SinkFunc) SendMintFailure(ctx context.Context, payload MintFailurePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}
