// Package testutil provides testing utilities and helpers for the ticketmint service.
package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ticketmint/ticketmint/internal/domain/model"
)

// IssueRequestBuilder provides a fluent interface for building IssueTicketsRequest objects for testing.
type IssueRequestBuilder struct {
	req *model.IssueTicketsRequest
}

// NewIssueRequest creates a new IssueRequestBuilder with sensible defaults.
func NewIssueRequest(eventID string) *IssueRequestBuilder {
	return &IssueRequestBuilder{
		req: &model.IssueTicketsRequest{
			EventID:    eventID,
			TicketName: "General Admission",
			Quantity:   5,
			TicketType: "general",
		},
	}
}

// WithTicketName sets the ticket name.
func (b *IssueRequestBuilder) WithTicketName(name string) *IssueRequestBuilder {
	b.req.TicketName = name
	return b
}

// WithQuantity sets the batch quantity.
func (b *IssueRequestBuilder) WithQuantity(quantity int) *IssueRequestBuilder {
	b.req.Quantity = quantity
	return b
}

// WithPrice sets the ticket price.
func (b *IssueRequestBuilder) WithPrice(price string) *IssueRequestBuilder {
	p := decimal.RequireFromString(price)
	b.req.Price = &p
	return b
}

// WithTicketType sets the ticket type.
func (b *IssueRequestBuilder) WithTicketType(ticketType string) *IssueRequestBuilder {
	b.req.TicketType = ticketType
	return b
}

// WithImageURL sets the ticket artwork URL.
func (b *IssueRequestBuilder) WithImageURL(url string) *IssueRequestBuilder {
	b.req.ImageURL = url
	return b
}

// WithDescription sets the ticket description.
func (b *IssueRequestBuilder) WithDescription(description string) *IssueRequestBuilder {
	b.req.Description = description
	return b
}

// Build returns the constructed IssueTicketsRequest.
func (b *IssueRequestBuilder) Build() *model.IssueTicketsRequest {
	return b.req
}

// EventBuilder provides a fluent interface for building CreateEventRequest objects for testing.
type EventBuilder struct {
	req *model.CreateEventRequest
}

// NewEvent creates a new EventBuilder with sensible defaults, mint configured.
func NewEvent() *EventBuilder {
	return &EventBuilder{
		req: &model.CreateEventRequest{
			Name:            "Test Event",
			Venue:           "Test Venue",
			StartsAt:        TestTime().Add(30 * 24 * time.Hour),
			ContractAddress: "0x00000000000000000000000000000000000c0de",
			AdminWallet:     "0x000000000000000000000000000000000000ad1",
			MintMode:        model.MintModeQueued,
		},
	}
}

// WithName sets the event name.
func (b *EventBuilder) WithName(name string) *EventBuilder {
	b.req.Name = name
	return b
}

// WithVenue sets the event venue.
func (b *EventBuilder) WithVenue(venue string) *EventBuilder {
	b.req.Venue = venue
	return b
}

// WithStartsAt sets the event start time.
func (b *EventBuilder) WithStartsAt(startsAt time.Time) *EventBuilder {
	b.req.StartsAt = startsAt
	return b
}

// WithMintMode sets the mint mode.
func (b *EventBuilder) WithMintMode(mode model.MintMode) *EventBuilder {
	b.req.MintMode = mode
	return b
}

// WithoutMintConfig clears the contract and admin wallet so minting is not configured.
func (b *EventBuilder) WithoutMintConfig() *EventBuilder {
	b.req.ContractAddress = ""
	b.req.AdminWallet = ""
	return b
}

// WithContract sets the NFT contract address.
func (b *EventBuilder) WithContract(addr string) *EventBuilder {
	b.req.ContractAddress = addr
	return b
}

// WithAdminWallet sets the admin wallet address.
func (b *EventBuilder) WithAdminWallet(addr string) *EventBuilder {
	b.req.AdminWallet = addr
	return b
}

// Build returns the constructed CreateEventRequest.
func (b *EventBuilder) Build() *model.CreateEventRequest {
	return b.req
}

// InsertEvent inserts an event row directly and returns its id. Useful for
// integration tests that need a parent row without going through a repository.
func InsertEvent(t TestingTB, db *sql.DB, req *model.CreateEventRequest) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	mintMode := req.MintMode
	if mintMode == "" {
		mintMode = model.MintModeQueued
	}

	var id string
	err := db.QueryRowContext(ctx, `
		INSERT INTO events (name, venue, starts_at, nft_contract_address, admin_wallet_address, mint_mode)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, req.Name, req.Venue, req.StartsAt, req.ContractAddress, req.AdminWallet, mintMode).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to insert test event: %v", err)
	}
	return id
}

// InsertTicket inserts a ticket row directly and returns its id.
func InsertTicket(t TestingTB, db *sql.DB, eventID string, number int64, mintStatus model.MintStatus) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id string
	err := db.QueryRowContext(ctx, `
		INSERT INTO tickets (event_id, ticket_number, total_tickets_in_group, ticket_name, nft_mint_status)
		VALUES ($1, $2, 1, 'Test Ticket', $3)
		RETURNING id
	`, eventID, number, mintStatus).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to insert test ticket: %v", err)
	}
	return id
}
