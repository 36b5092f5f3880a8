package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ticketmint/ticketmint/internal/core"
	"github.com/ticketmint/ticketmint/internal/domain/model"
	apperrors "github.com/ticketmint/ticketmint/internal/errors"
)

// EventServiceOptions groups dependencies for EventService.
type EventServiceOptions struct {
	Events core.EventRepository // Required: event repository
	Logger *slog.Logger         // Optional: structured logger
}

// EventService orchestrates event CRUD and mint configuration updates.
// Events are the issuance precondition: a ticket batch can only be issued
// against an event whose contract and admin wallet are configured.
type EventService struct {
	events core.EventRepository
	logger *slog.Logger
}

// NewEventService constructs a new EventService.
func NewEventService(opts EventServiceOptions) (*EventService, error) {
	if opts.Events == nil {
		return nil, errors.New("EventRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "event_service")
	}

	return &EventService{events: opts.Events, logger: logger}, nil
}

// Create creates a new event.
func (s *EventService) Create(ctx context.Context, req *model.CreateEventRequest) (*model.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	event, err := s.events.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "event created", "event_id", event.ID, "name", event.Name)
	}
	return event, nil
}

// GetByID retrieves an event by ID.
func (s *EventService) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return s.events.GetByID(ctx, id)
}

// List returns all events ordered by start time.
func (s *EventService) List(ctx context.Context) ([]*model.Event, error) {
	return s.events.List(ctx)
}

// UpdateMintConfig updates the contract address, admin wallet, and mint mode
// of an event.
func (s *EventService) UpdateMintConfig(
	ctx context.Context,
	id string,
	req *model.UpdateEventMintConfigRequest,
) (*model.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	event, err := s.events.UpdateMintConfig(ctx, id, req)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "event mint config updated",
			"event_id", event.ID,
			"contract", event.ContractAddress,
			"mint_mode", event.MintMode,
		)
	}
	return event, nil
}
