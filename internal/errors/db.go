package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Regular expressions for parsing PgError.Detail messages.
var (
	// reKeyField extracts field name from unique violation detail: "Key (field)=(value) already exists.".
	reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// reNotPresent detects missing parent: "... is not present in table ...".
	reNotPresent = regexp.MustCompile(`is not present in table "?([^"]+)"?`)
	// reReferencedFrom detects parent deletion: "... is still referenced from table ...".
	reReferencedFrom = regexp.MustCompile(`is still referenced from table "?([^"]+)"?`)
)

// MapDBError maps database errors to AppError instances.
// It handles the common patterns:
// - pgx.ErrNoRows → NotFound
// - Unique constraint violations → Conflict
// - Foreign key violations → Validation or Conflict depending on direction
// - Check / NOT NULL violations → Validation
// - Context timeouts/cancellations → Timeout/Canceled
//
// If the error is not a recognized database error, it returns the original error.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeCanceled, Message: "Request was canceled.", Cause: err}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{Code: ErrCodeNotFound, Message: "Resource not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	return err
}

// mapPgError maps PostgreSQL-specific errors to AppError instances.
func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return mapUniqueViolation(pgErr)
	case pgerrcode.ForeignKeyViolation:
		return mapForeignKeyViolation(pgErr)
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return mapConstraintViolation(pgErr)
	default:
		return &AppError{
			Code:    ErrCodePersistence,
			Message: "A database error occurred. Please try again.",
			Cause:   pgErr,
		}
	}
}

// mapUniqueViolation maps unique constraint violations to Conflict errors.
// The (event_id, ticket_number) unique index is the one that matters most here:
// two concurrent issuance batches racing on the same number range surface as a
// conflict on "event_id, ticket_number".
func mapUniqueViolation(pgErr *pgconn.PgError) error {
	var field string

	if pgErr.ColumnName != "" {
		field = pgErr.ColumnName
	}

	if field == "" && pgErr.Detail != "" {
		if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			field = m[1]
		}
	}

	return &AppError{
		Code:    ErrCodeConflict,
		Message: "This value already exists.",
		Field:   field,
		Cause:   pgErr,
	}
}

// mapForeignKeyViolation distinguishes a child insert referencing a missing
// parent (validation: the caller named an event/ticket that does not exist)
// from a parent delete with live children (conflict).
func mapForeignKeyViolation(pgErr *pgconn.PgError) error {
	if pgErr.Detail != "" {
		if m := reNotPresent.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			return &AppError{
				Code:    ErrCodeValidation,
				Message: "Referenced " + tableToDomain(m[1]) + " does not exist.",
				Cause:   pgErr,
			}
		}
		if m := reReferencedFrom.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			return &AppError{
				Code:    ErrCodeConflict,
				Message: "Cannot delete because this item is in use by " + tableToDomain(m[1]) + ".",
				Cause:   pgErr,
			}
		}
	}

	return &AppError{
		Code:    ErrCodeConflict,
		Message: "Cannot complete operation because this item is in use.",
		Cause:   pgErr,
	}
}

// mapConstraintViolation maps CHECK and NOT NULL violations to Validation errors.
func mapConstraintViolation(pgErr *pgconn.PgError) error {
	message := "Invalid data. Please check your input."
	if pgErr.Code == pgerrcode.NotNullViolation {
		message = "Required field is missing. Please check your input."
	}

	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   pgErr.ColumnName,
		Cause:   pgErr,
	}
}

// tableToDomain maps internal table names to user-facing domain names.
func tableToDomain(tableName string) string {
	switch strings.ToLower(strings.TrimSpace(tableName)) {
	case "events":
		return "Event"
	case "tickets":
		return "Ticket"
	case "mint_jobs":
		return "Mint Job"
	default:
		return strings.ReplaceAll(tableName, "_", " ")
	}
}
