// Package devseed populates a development database with demo events and
// ticket batches so the API can be exercised without an issuance flow.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ticketmint/ticketmint/internal/core"
	"github.com/ticketmint/ticketmint/internal/data"
	"github.com/ticketmint/ticketmint/internal/domain/model"
	"github.com/ticketmint/ticketmint/internal/domain/nft"
)

// Services bundles the repositories needed for development seeding.
type Services struct {
	DB      *sql.DB
	events  *data.EventRepo
	tickets *data.TicketRepo
}

// NewServices constructs the seeding dependencies from the provided DB.
func NewServices(db *sql.DB) Services {
	return Services{
		DB:      db,
		events:  data.NewEventRepo(db),
		tickets: data.NewTicketRepo(db),
	}
}

type seedEvent struct {
	event   model.CreateEventRequest
	mint    *model.UpdateEventMintConfigRequest
	batches []model.IssueTicketsRequest
}

func defaultSeedEvents() []seedEvent {
	price := decimal.NewFromInt(45)
	vipPrice := decimal.NewFromInt(120)

	return []seedEvent{
		{
			event: model.CreateEventRequest{
				Name:     "Summer Festival",
				Venue:    "Riverside Park",
				StartsAt: time.Now().AddDate(0, 2, 0).Truncate(time.Hour),
			},
			mint: &model.UpdateEventMintConfigRequest{
				ContractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
				AdminWallet:     "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
				MintMode:        model.MintModeQueued,
			},
			batches: []model.IssueTicketsRequest{
				{
					TicketName:  "General Admission",
					Quantity:    25,
					Price:       &price,
					TicketType:  "general",
					Description: "Two-day festival pass",
				},
				{
					TicketName: "VIP",
					Quantity:   5,
					Price:      &vipPrice,
					TicketType: "vip",
				},
			},
		},
		{
			// No mint configuration: exercises the unconfigured-event paths.
			event: model.CreateEventRequest{
				Name:     "Winter Gala",
				Venue:    "Grand Hall",
				StartsAt: time.Now().AddDate(0, 6, 0).Truncate(time.Hour),
			},
		},
	}
}

// Run executes the full development seeding workflow against the provided DB.
// Seeding is skipped when events already exist, so it is safe to run on
// every dev startup.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	existing, err := svcs.events.List(ctx)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	if len(existing) > 0 {
		if logger != nil {
			logger.InfoContext(ctx, "skipping dev seed; events already present", "events", len(existing))
		}
		return nil
	}

	for _, seed := range defaultSeedEvents() {
		if err := seedOne(ctx, svcs, seed, logger); err != nil {
			return err
		}
	}
	return nil
}

func seedOne(ctx context.Context, svcs Services, seed seedEvent, logger *slog.Logger) error {
	event, err := svcs.events.Create(ctx, &seed.event)
	if err != nil {
		return fmt.Errorf("create event %q: %w", seed.event.Name, err)
	}

	if seed.mint != nil {
		event, err = svcs.events.UpdateMintConfig(ctx, event.ID, seed.mint)
		if err != nil {
			return fmt.Errorf("configure minting for %q: %w", seed.event.Name, err)
		}
	}

	for _, batch := range seed.batches {
		req := batch
		req.EventID = event.ID

		result, err := svcs.tickets.IssueBatch(ctx, core.IssueBatchParams{
			Event:   event,
			Request: &req,
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
			EnqueueJob: event.MintConfigured(),
		})
		if err != nil {
			return fmt.Errorf("issue %q batch for %q: %w", batch.TicketName, seed.event.Name, err)
		}

		if logger != nil {
			logger.InfoContext(ctx, "seeded ticket batch",
				"event", event.Name,
				"ticket_name", req.TicketName,
				"quantity", len(result.Tickets),
				"starting_number", result.StartingNumber,
				"enqueued", result.Job != nil)
		}
	}

	if logger != nil {
		logger.InfoContext(ctx, "seeded event", "event", event.Name, "mint_configured", event.MintConfigured())
	}
	return nil
}
