package httpx

import (
	"errors"
	"net/http"

	"github.com/ticketmint/ticketmint/internal/domain/model"
	"github.com/ticketmint/ticketmint/internal/service"
)

var errEventIDMismatch = errors.New("event id in body does not match path")

// MintHandlers provides HTTP handlers for mint status and queue operations.
type MintHandlers struct {
	Status *service.StatusAggregator
	Retry  *service.RetryCoordinator
	Queue  *service.MintQueueService
}

// StatusSummary handles GET /api/events/{id}/mint-status.
func (h *MintHandlers) StatusSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Status.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// RetryFailed handles POST /api/events/{id}/mint-retry.
func (h *MintHandlers) RetryFailed(w http.ResponseWriter, r *http.Request) {
	reset, err := h.Retry.RetryFailed(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"jobs_reset": reset})
}

// ListJobs handles GET /api/events/{id}/mint-jobs.
func (h *MintHandlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Queue.ListByEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if jobs == nil {
		jobs = []*model.MintJob{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// GetJob handles GET /api/mint-jobs/{id}.
func (h *MintHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Queue.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}
