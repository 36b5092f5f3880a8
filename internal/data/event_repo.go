// Package data provides PostgreSQL-backed repositories for events, tickets,
// and the durable mint queue.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ticketmint/ticketmint/internal/data/pgxutil"
	"github.com/ticketmint/ticketmint/internal/domain/model"
	apperrors "github.com/ticketmint/ticketmint/internal/errors"
)

// EventRepo provides database operations for events.
type EventRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewEventRepo creates a new EventRepo with real time provider.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewEventRepoWithTimeProvider creates a new EventRepo with a custom time provider (useful for tests).
func NewEventRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *EventRepo {
	return &EventRepo{DB: db, timeProvider: tp}
}

const eventColumns = `
  id,
  name,
  venue,
  starts_at,
  nft_contract_address,
  admin_wallet_address,
  mint_mode,
  created_at,
  updated_at
`

type eventRowScanner interface {
	Scan(dest ...any) error
}

func scanEventFromRow(scanner eventRowScanner) (*model.Event, error) {
	ev := &model.Event{}
	var startsAt sql.NullTime
	if err := scanner.Scan(
		&ev.ID,
		&ev.Name,
		&ev.Venue,
		&startsAt,
		&ev.ContractAddress,
		&ev.AdminWallet,
		&ev.MintMode,
		&ev.CreatedAt,
		&ev.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if startsAt.Valid {
		ev.StartsAt = startsAt.Time.UTC()
	}
	return ev, nil
}

func collectEventFromRows(rows pgx.Rows) (*model.Event, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}
	ev, err := scanEventFromRow(rows)
	if err != nil {
		return nil, err
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, rowsErr
	}
	return ev, nil
}

// Create inserts a new event.
func (r *EventRepo) Create(ctx context.Context, req *model.CreateEventRequest) (*model.Event, error) {
	if req == nil {
		return nil, errors.New("create event request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}

	mintMode := req.MintMode
	if mintMode == "" {
		mintMode = model.MintModeQueued
	}

	var startsAt *time.Time
	if !req.StartsAt.IsZero() {
		t := req.StartsAt.UTC()
		startsAt = &t
	}

	createdAt := r.timeProvider.Now().UTC()
	var ev *model.Event
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO events (
				name, venue, starts_at, nft_contract_address, admin_wallet_address, mint_mode, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $7
			) RETURNING `+eventColumns,
			strings.TrimSpace(req.Name),
			strings.TrimSpace(req.Venue),
			startsAt,
			strings.TrimSpace(req.ContractAddress),
			strings.TrimSpace(req.AdminWallet),
			mintMode,
			createdAt,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		ev, err = collectEventFromRows(rows)
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return ev, nil
}

// GetByID retrieves an event by ID.
func (r *EventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var ev *model.Event
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+eventColumns+`
			FROM events
			WHERE id = $1
		`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		ev, err = collectEventFromRows(rows)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("event not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", apperrors.MapDBError(err))
	}
	return ev, nil
}

// List retrieves all events ordered by start time.
func (r *EventRepo) List(ctx context.Context) ([]*model.Event, error) {
	var out []*model.Event
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+eventColumns+`
			FROM events
			ORDER BY starts_at ASC NULLS LAST, created_at ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			ev, scanErr := scanEventFromRow(rows)
			if scanErr != nil {
				return scanErr
			}
			out = append(out, ev)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// UpdateMintConfig updates the minting configuration of an event.
func (r *EventRepo) UpdateMintConfig(
	ctx context.Context,
	id string,
	req *model.UpdateEventMintConfigRequest,
) (*model.Event, error) {
	if req == nil {
		return nil, errors.New("update mint config request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}

	var ev *model.Event
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			UPDATE events
			SET nft_contract_address = $2,
			    admin_wallet_address = $3,
			    mint_mode = COALESCE(NULLIF($4, ''), mint_mode),
			    updated_at = $5
			WHERE id = $1
			RETURNING `+eventColumns,
			id,
			strings.TrimSpace(req.ContractAddress),
			strings.TrimSpace(req.AdminWallet),
			string(req.MintMode),
			r.timeProvider.Now().UTC(),
		)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		var cerr error
		ev, cerr = collectEventFromRows(rows)
		return cerr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("event not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update mint config: %w", apperrors.MapDBError(err))
	}
	return ev, nil
}
