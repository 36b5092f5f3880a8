package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ticketmint/ticketmint/internal/core"
	"github.com/ticketmint/ticketmint/internal/data/pgxutil"
	"github.com/ticketmint/ticketmint/internal/domain/model"
	apperrors "github.com/ticketmint/ticketmint/internal/errors"
)

// TicketRepo provides database operations for tickets.
type TicketRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewTicketRepo creates a new TicketRepo with real time provider.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewTicketRepoWithTimeProvider creates a new TicketRepo with a custom time provider (useful for tests).
func NewTicketRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *TicketRepo {
	return &TicketRepo{DB: db, timeProvider: tp}
}

const ticketColumns = `
  id,
  event_id,
  ticket_number,
  total_tickets_in_group,
  ticket_name,
  ticket_type,
  price,
  description,
  image_url,
  ticket_status,
  nft_mint_status,
  nft_token_id,
  nft_metadata,
  created_at,
  updated_at
`

type ticketRowScanner interface {
	Scan(dest ...any) error
}

type ticketRowData struct {
	price    sql.NullString
	tokenID  sql.NullInt64
	metadata []byte
}

func (d *ticketRowData) scanInto(scanner ticketRowScanner, t *model.Ticket) error {
	return scanner.Scan(
		&t.ID,
		&t.EventID,
		&t.TicketNumber,
		&t.TotalTicketsInGroup,
		&t.TicketName,
		&t.TicketType,
		&d.price,
		&t.Description,
		&t.ImageURL,
		&t.TicketStatus,
		&t.MintStatus,
		&d.tokenID,
		&d.metadata,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}

func (d *ticketRowData) apply(t *model.Ticket) error {
	if d.price.Valid {
		p, err := decimal.NewFromString(d.price.String)
		if err != nil {
			return fmt.Errorf("parse ticket price: %w", err)
		}
		t.Price = &p
	}
	if d.tokenID.Valid {
		id := d.tokenID.Int64
		t.TokenID = &id
	}
	if len(d.metadata) > 0 && string(d.metadata) != "{}" {
		var meta model.NFTMetadata
		if err := json.Unmarshal(d.metadata, &meta); err != nil {
			return fmt.Errorf("unmarshal ticket metadata: %w", err)
		}
		t.Metadata = &meta
	}
	return nil
}

func scanTicketFromRow(scanner ticketRowScanner) (*model.Ticket, error) {
	t := &model.Ticket{}
	var data ticketRowData
	if err := data.scanInto(scanner, t); err != nil {
		return nil, err
	}
	if err := data.apply(t); err != nil {
		return nil, err
	}
	return t, nil
}

func collectTicketsFromRows(rows pgx.Rows) ([]*model.Ticket, error) {
	var out []*model.Ticket
	for rows.Next() {
		t, err := scanTicketFromRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Advisory lock namespace for per-event ticket number allocation.
const advisoryLockTicketNumbersMajor int64 = 2001

func advisoryLockEventMinor(eventID string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(eventID))
	hashValue := h.Sum32()
	maxInt32 := uint32(math.MaxInt32)
	if hashValue > maxInt32 {
		hashValue &= maxInt32
	}
	return int64(hashValue)
}

const issueBatchInsertSQL = `
  INSERT INTO tickets (
    event_id, ticket_number, total_tickets_in_group, ticket_name, ticket_type,
    price, description, image_url, nft_metadata, created_at, updated_at
  )
  SELECT $1, n.num, $2, $3, $4, $5, $6, $7, n.meta::jsonb, $8, $8
  FROM unnest($9::bigint[], $10::text[]) AS n(num, meta)
  ORDER BY n.num
  RETURNING ` + ticketColumns

// IssueBatch atomically allocates the next block of ticket numbers for the
// event and inserts one ticket per number. Allocation is serialized per event
// with a transaction-scoped advisory lock, so concurrent batches for the same
// event queue up instead of racing on MAX(ticket_number).
//
// When params.EnqueueJob is set the mint job is created in the same
// transaction; a committed batch therefore always has its queue entry.
func (r *TicketRepo) IssueBatch(ctx context.Context, params core.IssueBatchParams) (*core.IssueBatchResult, error) {
	if params.Event == nil {
		return nil, errors.New("event is required")
	}
	if params.Request == nil {
		return nil, errors.New("issue tickets request is required")
	}
	if err := params.Request.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}
	if params.BuildMetadata == nil {
		return nil, errors.New("metadata builder is required")
	}

	req := params.Request
	result := &core.IssueBatchResult{}
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Opts: &sql.TxOptions{Isolation: sql.LevelReadCommitted},
		Fn: func(tx pgx.Tx) error {
			minorKey := advisoryLockEventMinor(params.Event.ID)
			if _, lockErr := tx.Exec(ctx,
				"SELECT pg_advisory_xact_lock($1::integer, $2::integer)",
				advisoryLockTicketNumbersMajor, minorKey,
			); lockErr != nil {
				return fmt.Errorf("acquire ticket number lock: %w", lockErr)
			}

			var maxNumber int64
			if scanErr := tx.QueryRow(ctx,
				"SELECT COALESCE(MAX(ticket_number), 0) FROM tickets WHERE event_id = $1",
				params.Event.ID,
			).Scan(&maxNumber); scanErr != nil {
				return fmt.Errorf("read max ticket number: %w", scanErr)
			}

			start := maxNumber + 1
			numbers := make([]int64, req.Quantity)
			docs := make([]string, req.Quantity)
			for i := range req.Quantity {
				num := start + int64(i)
				doc, marshalErr := json.Marshal(params.BuildMetadata(num))
				if marshalErr != nil {
					return fmt.Errorf("marshal ticket metadata: %w", marshalErr)
				}
				numbers[i] = num
				docs[i] = string(doc)
			}

			currentTime := r.timeProvider.Now().UTC()
			rows, insertErr := tx.Query(ctx, issueBatchInsertSQL,
				params.Event.ID,
				req.Quantity,
				req.TicketName,
				req.TicketType,
				req.Price,
				req.Description,
				req.ImageURL,
				currentTime,
				numbers,
				docs,
			)
			if insertErr != nil {
				return fmt.Errorf("insert tickets: %w", insertErr)
			}
			tickets, collectErr := collectTicketsFromRows(rows)
			rows.Close()
			if collectErr != nil {
				return fmt.Errorf("collect tickets: %w", collectErr)
			}
			if len(tickets) != req.Quantity {
				return fmt.Errorf("expected %d tickets inserted, got %d", req.Quantity, len(tickets))
			}

			result.Tickets = tickets
			result.StartingNumber = start

			if !params.EnqueueJob {
				return nil
			}

			ticketIDs := make([]string, len(tickets))
			for i, t := range tickets {
				ticketIDs[i] = t.ID
			}
			job, jobErr := enqueueMintJobInTx(ctx, tx, params.Event.ID, ticketIDs, currentTime)
			if jobErr != nil {
				return fmt.Errorf("enqueue mint job: %w", jobErr)
			}
			result.Job = job
			return nil
		},
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return result, nil
}

// GetByID retrieves a ticket by ID.
func (r *TicketRepo) GetByID(ctx context.Context, id string) (*model.Ticket, error) {
	var ticket *model.Ticket
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			SELECT `+ticketColumns+`
			FROM tickets
			WHERE id = $1
		`, id)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		if !rows.Next() {
			if rowsErr := rows.Err(); rowsErr != nil {
				return rowsErr
			}
			return pgx.ErrNoRows
		}
		var scanErr error
		ticket, scanErr = scanTicketFromRow(rows)
		return scanErr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("ticket not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", apperrors.MapDBError(err))
	}
	return ticket, nil
}

// ListByEvent retrieves the event's tickets ordered by ticket number.
func (r *TicketRepo) ListByEvent(ctx context.Context, eventID string) ([]*model.Ticket, error) {
	var out []*model.Ticket
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			SELECT `+ticketColumns+`
			FROM tickets
			WHERE event_id = $1
			ORDER BY ticket_number ASC
		`, eventID)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		var collectErr error
		out, collectErr = collectTicketsFromRows(rows)
		return collectErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// ListByIDs retrieves tickets in the order of the given ids. Missing ids are
// simply absent from the result; callers that need the full set compare
// lengths.
func (r *TicketRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var out []*model.Ticket
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			SELECT `+ticketColumns+`
			FROM tickets t
			JOIN unnest($1::uuid[]) WITH ORDINALITY AS u(id, ord) ON t.id = u.id
			ORDER BY u.ord
		`, ids)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		var collectErr error
		out, collectErr = collectTicketsFromRows(rows)
		return collectErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets by ids: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// RecordMintResults marks every listed ticket minted with its token id. The
// whole set commits or none of it does: a partial match (a ticket deleted or
// transferred underneath the minter) rolls the transaction back.
func (r *TicketRepo) RecordMintResults(ctx context.Context, results []core.MintResult) error {
	if len(results) == 0 {
		return errors.New("at least one mint result is required")
	}

	ids := make([]string, len(results))
	tokenIDs := make([]int64, len(results))
	for i, res := range results {
		ids[i] = res.TicketID
		tokenIDs[i] = res.TokenID
	}

	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			tag, execErr := tx.Exec(ctx, `
				UPDATE tickets t
				SET nft_mint_status = 'minted',
				    nft_token_id = u.token_id,
				    updated_at = $1
				FROM unnest($2::uuid[], $3::bigint[]) AS u(id, token_id)
				WHERE t.id = u.id
				  AND t.nft_mint_status <> 'transferred'
			`, r.timeProvider.Now().UTC(), ids, tokenIDs)
			if execErr != nil {
				return fmt.Errorf("record mint results: %w", execErr)
			}
			if int(tag.RowsAffected()) != len(results) {
				return apperrors.Conflictf(
					"mint write-back matched %d of %d tickets", tag.RowsAffected(), len(results),
				)
			}
			return nil
		},
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// MarkMintFailed marks every listed ticket failed and returns the number
// updated. Tickets already on chain are never touched.
func (r *TicketRepo) MarkMintFailed(ctx context.Context, ticketIDs []string) (int, error) {
	if len(ticketIDs) == 0 {
		return 0, nil
	}

	var updated int
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, execErr := conn.Exec(ctx, `
			UPDATE tickets
			SET nft_mint_status = 'failed',
			    updated_at = $1
			WHERE id = ANY($2::uuid[])
			  AND nft_mint_status IN ('pending', 'failed')
		`, r.timeProvider.Now().UTC(), ticketIDs)
		if execErr != nil {
			return execErr
		}
		updated = int(tag.RowsAffected())
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("mark mint failed: %w", apperrors.MapDBError(err))
	}
	return updated, nil
}

// Delete removes a ticket by ID. The mint-status guard lives inside the
// delete statement itself so a concurrent mint cannot slip a deletion past
// the check.
func (r *TicketRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM tickets
		WHERE id = $1
		  AND nft_mint_status IN ('pending', 'failed')
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", apperrors.MapDBError(err))
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	ticket, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ticket.MintStatus.OnChain() {
		return apperrors.Conflict("ticket has been minted on chain and cannot be deleted")
	}
	return errors.New("unexpected state: ticket is deletable but delete failed")
}

// DeleteByEvent removes every deletable ticket of the event and returns the
// number removed. On-chain tickets survive the sweep.
func (r *TicketRepo) DeleteByEvent(ctx context.Context, eventID string) (int, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM tickets
		WHERE event_id = $1
		  AND nft_mint_status IN ('pending', 'failed')
	`, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tickets: %w", apperrors.MapDBError(err))
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rowsAffected), nil
}

// CountsByMintStatus returns per-status ticket counts for the event.
func (r *TicketRepo) CountsByMintStatus(ctx context.Context, eventID string) (*model.MintStatusCounts, error) {
	var c model.MintStatusCounts
	err := r.DB.QueryRowContext(ctx, `
	  SELECT
	    count(*)                                                AS total,
	    count(*) FILTER (WHERE nft_mint_status = 'pending')     AS pending,
	    count(*) FILTER (WHERE nft_mint_status = 'minted')      AS minted,
	    count(*) FILTER (WHERE nft_mint_status = 'failed')      AS failed,
	    count(*) FILTER (WHERE nft_mint_status = 'transferred') AS transferred
	  FROM tickets
	  WHERE event_id = $1
	`, eventID).Scan(
		&c.Total,
		&c.Pending,
		&c.Minted,
		&c.Failed,
		&c.Transferred,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get mint status counts: %w", apperrors.MapDBError(err))
	}
	return &c, nil
}

// enqueueMintJobInTx inserts a pending mint job within an existing pgx
// transaction and notifies any waiting worker.
func enqueueMintJobInTx(
	ctx context.Context,
	tx pgx.Tx,
	eventID string,
	ticketIDs []string,
	now time.Time,
) (*model.MintJob, error) {
	rows, err := tx.Query(ctx, `
		INSERT INTO mint_jobs (event_id, ticket_ids, status, created_at, updated_at)
		VALUES ($1, $2::uuid[], 'pending', $3, $3)
		RETURNING `+mintJobColumns,
		eventID, ticketIDs, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert mint job: %w", err)
	}
	job, collectErr := collectMintJobFromRows(rows)
	rows.Close()
	if collectErr != nil {
		return nil, fmt.Errorf("collect mint job: %w", collectErr)
	}

	if _, notifyErr := tx.Exec(ctx, `SELECT pg_notify($1::text, $2::text)`, mintJobChannel, job.ID); notifyErr != nil {
		return nil, fmt.Errorf("send mint job notification: %w", notifyErr)
	}
	return job, nil
}
