package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/ticketmint/ticketmint/internal/data/pgxutil"
	"github.com/ticketmint/ticketmint/internal/domain/model"
	apperrors "github.com/ticketmint/ticketmint/internal/errors"
)

// mintJobChannel is the pg_notify channel that wakes the mint worker when a
// new job lands in the queue.
const mintJobChannel = "mint_job_added"

// MintJobRepoConfig holds configuration options for the mint job repository.
type MintJobRepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// MintJobRepo provides database operations for the durable mint queue.
type MintJobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewMintJobRepo creates a new MintJobRepo instance with the given database connection and configuration.
func NewMintJobRepo(db *sql.DB, cfg MintJobRepoConfig) *MintJobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &MintJobRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const mintJobColumns = `
  id,
  event_id,
  ticket_ids,
  status,
  retry_count,
  error_message,
  created_at,
  processed_at,
  lease_expires_at,
  updated_at
`

type mintJobRowScanner interface {
	Scan(dest ...any) error
}

type mintJobRowData struct {
	errorMessage              sql.NullString
	processedAt, leaseExpires sql.NullTime
}

func (d *mintJobRowData) scanInto(scanner mintJobRowScanner, job *model.MintJob) error {
	return scanner.Scan(
		&job.ID,
		&job.EventID,
		&job.TicketIDs,
		&job.Status,
		&job.RetryCount,
		&d.errorMessage,
		&job.CreatedAt,
		&d.processedAt,
		&d.leaseExpires,
		&job.UpdatedAt,
	)
}

func (d *mintJobRowData) apply(job *model.MintJob) {
	job.ErrorMessage = cloneNullableString(d.errorMessage)
	job.ProcessedAt = cloneNullableTime(d.processedAt)
	job.LeaseExpiresAt = cloneNullableTime(d.leaseExpires)
}

func scanMintJobFromRow(scanner mintJobRowScanner) (*model.MintJob, error) {
	job := &model.MintJob{}
	var data mintJobRowData
	if err := data.scanInto(scanner, job); err != nil {
		return nil, err
	}
	data.apply(job)
	return job, nil
}

func collectMintJobFromRows(rows pgx.Rows) (*model.MintJob, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}
	job, err := scanMintJobFromRow(rows)
	if err != nil {
		return nil, err
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, rowsErr
	}
	return job, nil
}

func cloneNullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func cloneNullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// Enqueue creates a new pending mint job after verifying every ticket belongs
// to the event.
func (r *MintJobRepo) Enqueue(ctx context.Context, req *model.EnqueueMintJobRequest) (*model.MintJob, error) {
	if req == nil {
		return nil, errors.New("enqueue mint job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}

	var job *model.MintJob
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			var matching int
			if scanErr := tx.QueryRow(ctx, `
				SELECT count(*) FROM tickets
				WHERE id = ANY($1::uuid[]) AND event_id = $2
			`, req.TicketIDs, req.EventID).Scan(&matching); scanErr != nil {
				return fmt.Errorf("verify ticket ownership: %w", scanErr)
			}
			if matching != len(req.TicketIDs) {
				return apperrors.Validationf(
					"%d of %d tickets do not belong to the event", len(req.TicketIDs)-matching, len(req.TicketIDs),
				)
			}

			var insertErr error
			job, insertErr = enqueueMintJobInTx(ctx, tx, req.EventID, req.TicketIDs, r.timeProvider.Now().UTC())
			return insertErr
		},
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return job, nil
}

// GetByID retrieves a mint job by its ID.
func (r *MintJobRepo) GetByID(ctx context.Context, id string) (*model.MintJob, error) {
	var job *model.MintJob
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			SELECT `+mintJobColumns+`
			FROM mint_jobs
			WHERE id = $1
		`, id)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		var collectErr error
		job, collectErr = collectMintJobFromRows(rows)
		return collectErr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("mint job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mint job: %w", apperrors.MapDBError(err))
	}
	return job, nil
}

// ListByEvent retrieves the event's mint jobs ordered by creation time, newest first.
func (r *MintJobRepo) ListByEvent(ctx context.Context, eventID string) ([]*model.MintJob, error) {
	var out []*model.MintJob
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			SELECT `+mintJobColumns+`
			FROM mint_jobs
			WHERE event_id = $1
			ORDER BY created_at DESC
		`, eventID)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		for rows.Next() {
			job, scanErr := scanMintJobFromRow(rows)
			if scanErr != nil {
				return scanErr
			}
			out = append(out, job)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list mint jobs: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

// MarkProcessing claims a specific job with a compare-and-set on its status.
// Only a pending job can be claimed; a job in any other status yields a
// conflict so two workers can never both hold it.
func (r *MintJobRepo) MarkProcessing(ctx context.Context, id string, lease time.Duration) (*model.MintJob, error) {
	currentTime := r.timeProvider.Now().UTC()

	var job *model.MintJob
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, `
			UPDATE mint_jobs
			SET status = 'processing',
			    lease_expires_at = $2,
			    updated_at = $3
			WHERE id = $1 AND status = 'pending'
			RETURNING `+mintJobColumns,
			id, currentTime.Add(lease), currentTime,
		)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		var collectErr error
		job, collectErr = collectMintJobFromRows(rows)
		return collectErr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		existing, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, apperrors.Conflictf("mint job is %s, not pending", existing.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("mark processing: %w", apperrors.MapDBError(err))
	}
	return job, nil
}

// SQL used by ClaimNext to atomically claim the next mint job. An event with
// a job already processing is skipped entirely, which keeps at most one batch
// per event in flight and preserves per-event ordering.
const claimNextUpdateSQL = `
  WITH cte AS (
    SELECT j.id FROM mint_jobs j
    WHERE j.status = 'pending'
      AND NOT EXISTS (
        SELECT 1 FROM mint_jobs p
        WHERE p.event_id = j.event_id AND p.status = 'processing'
      )
    ORDER BY j.created_at ASC
    LIMIT 1
    FOR UPDATE SKIP LOCKED
  )
  UPDATE mint_jobs m
  SET
    status = 'processing',
    lease_expires_at = $1,
    updated_at = $2
  FROM cte
  WHERE m.id = cte.id
  RETURNING ` + mintJobColumns

// ClaimNext claims the oldest claimable pending job. Returns
// model.ErrNoJobsAvailable when every pending job belongs to an event that is
// already minting, or when the queue is empty.
func (r *MintJobRepo) ClaimNext(ctx context.Context, lease time.Duration) (*model.MintJob, error) {
	var job *model.MintJob
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Opts: &sql.TxOptions{Isolation: sql.LevelReadCommitted},
		Fn: func(tx pgx.Tx) error {
			currentTime := r.timeProvider.Now().UTC()
			rows, qerr := tx.Query(ctx, claimNextUpdateSQL, currentTime.Add(lease), currentTime)
			if qerr != nil {
				return fmt.Errorf("claim mint job: %w", qerr)
			}
			defer rows.Close()

			j, cerr := collectMintJobFromRows(rows)
			if errors.Is(cerr, pgx.ErrNoRows) {
				return model.ErrNoJobsAvailable
			}
			if cerr != nil {
				return fmt.Errorf("claim mint job: %w", cerr)
			}
			job = j
			return nil
		},
	})
	if err != nil {
		if errors.Is(err, model.ErrNoJobsAvailable) {
			return nil, model.ErrNoJobsAvailable
		}
		return nil, apperrors.MapDBError(err)
	}
	return job, nil
}

// MarkMinted transitions a processing job to minted. The number of token ids
// must match the job's ticket count; a mismatch means the chain result cannot
// be trusted for write-back and the job is left untouched.
func (r *MintJobRepo) MarkMinted(ctx context.Context, id string, tokenIDs []int64) error {
	currentTime := r.timeProvider.Now().UTC()

	res, err := r.DB.ExecContext(ctx, `
		UPDATE mint_jobs
		SET status = 'minted',
		    processed_at = $2,
		    lease_expires_at = NULL,
		    error_message = NULL,
		    updated_at = $2
		WHERE id = $1
		  AND status = 'processing'
		  AND cardinality(ticket_ids) = $3
	`, id, currentTime, len(tokenIDs))
	if err != nil {
		return fmt.Errorf("mark minted: %w", apperrors.MapDBError(err))
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark minted rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return getErr
	}
	if existing.Status != model.MintJobStatusProcessing {
		return apperrors.Conflictf("mint job is %s, not processing", existing.Status)
	}
	return apperrors.Validationf(
		"token id count %d does not match job ticket count %d", len(tokenIDs), len(existing.TicketIDs),
	)
}

// MarkFailed transitions a processing job to failed with the given message.
func (r *MintJobRepo) MarkFailed(ctx context.Context, id string, errMsg string) error {
	currentTime := r.timeProvider.Now().UTC()

	res, err := r.DB.ExecContext(ctx, `
		UPDATE mint_jobs
		SET status = 'failed',
		    error_message = $2,
		    retry_count = retry_count + 1,
		    processed_at = $3,
		    lease_expires_at = NULL,
		    updated_at = $3
		WHERE id = $1 AND status = 'processing'
	`, id, errMsg, currentTime)
	if err != nil {
		return fmt.Errorf("mark failed: %w", apperrors.MapDBError(err))
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark failed rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return getErr
	}
	return apperrors.Conflictf("mint job is %s, not processing", existing.Status)
}

// ResetFailed returns every failed job of the event to pending and wakes the
// worker. Retry counts and error messages are cleared so the retried attempt
// starts fresh.
func (r *MintJobRepo) ResetFailed(ctx context.Context, eventID string) (int, error) {
	var reset int
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			tag, execErr := tx.Exec(ctx, `
				UPDATE mint_jobs
				SET status = 'pending',
				    retry_count = 0,
				    error_message = NULL,
				    processed_at = NULL,
				    lease_expires_at = NULL,
				    updated_at = $2
				WHERE event_id = $1 AND status = 'failed'
			`, eventID, r.timeProvider.Now().UTC())
			if execErr != nil {
				return fmt.Errorf("reset failed jobs: %w", execErr)
			}
			reset = int(tag.RowsAffected())
			if reset == 0 {
				return nil
			}
			if _, notifyErr := tx.Exec(ctx, `SELECT pg_notify($1::text, $2::text)`, mintJobChannel, eventID); notifyErr != nil {
				return fmt.Errorf("send retry notification: %w", notifyErr)
			}
			return nil
		},
	})
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}
	return reset, nil
}

// Advisory lock namespace for FailStale to keep concurrent sweepers from
// double-counting.
const advisoryLockFailStaleMajor int64 = 2002

const failStaleErrorMessage = "processing lease expired"

// FailStale marks processing jobs whose lease has expired as failed so the
// operator can retry them. Returns the number of jobs swept.
func (r *MintJobRepo) FailStale(ctx context.Context) (int64, error) {
	var rowsAffected int64
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			var locked bool
			if err := tx.QueryRowContext(ctx,
				"SELECT pg_try_advisory_xact_lock($1::integer, 0)", advisoryLockFailStaleMajor,
			).Scan(&locked); err != nil {
				return fmt.Errorf("acquire advisory lock: %w", err)
			}
			if !locked {
				rowsAffected = 0
				return nil
			}

			currentTime := r.timeProvider.Now().UTC()
			res, err := tx.ExecContext(ctx, `
	          UPDATE mint_jobs
	          SET status = 'failed',
	              error_message = $2,
	              retry_count = retry_count + 1,
	              lease_expires_at = NULL,
	              updated_at = $1
	          WHERE status = 'processing'
	            AND lease_expires_at IS NOT NULL
	            AND lease_expires_at < $1
	        `, currentTime, failStaleErrorMessage)
			if err != nil {
				return fmt.Errorf("fail stale jobs: %w", err)
			}
			ra, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			rowsAffected = ra
			return nil
		},
	})
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}
	return rowsAffected, nil
}

// WaitForNotification blocks until a new mint job lands in the queue or the
// context is done.
func (r *MintJobRepo) WaitForNotification(ctx context.Context) error {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get conn from pool: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			_ = cerr
		}
	}()

	quoted := pgx.Identifier{mintJobChannel}.Sanitize()
	if _, execErr := conn.ExecContext(ctx, "LISTEN "+quoted); execErr != nil {
		return fmt.Errorf("listen %s: %w", mintJobChannel, execErr)
	}
	defer func() {
		if _, execErr := conn.ExecContext(context.Background(), "UNLISTEN "+quoted); execErr != nil {
			_ = execErr
		}
	}()

	return conn.Raw(func(dc any) error {
		sc, ok := dc.(*stdlib.Conn)
		if !ok {
			return errors.New("unexpected driver connection type; expected *stdlib.Conn")
		}
		_, notifyErr := sc.Conn().WaitForNotification(ctx)
		return notifyErr
	})
}
