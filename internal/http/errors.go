package httpx

import (
	"net/http"

	apperrors "github.com/ticketmint/ticketmint/internal/errors"
)

// WriteServiceError maps an application error to its HTTP representation.
// Unclassified errors render as 500 without leaking internals beyond the
// error message the service chose to expose.
func WriteServiceError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)

	var status int
	switch code {
	case apperrors.ErrCodeValidation:
		status = http.StatusBadRequest
	case apperrors.ErrCodeAuthorization:
		status = http.StatusForbidden
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeConflict:
		status = http.StatusConflict
	case apperrors.ErrCodeExternal:
		status = http.StatusBadGateway
	case apperrors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	default:
		status = http.StatusInternalServerError
		code = apperrors.ErrCodeInternal
	}

	WriteError(w, ErrorParams{Code: status, ErrCode: string(code), Err: err})
}
