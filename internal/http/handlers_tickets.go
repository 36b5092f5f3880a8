package httpx

import (
	"net/http"

	"github.com/ticketmint/ticketmint/internal/domain/model"
	"github.com/ticketmint/ticketmint/internal/service"
)

// TicketHandlers provides HTTP handlers for issuing and managing tickets.
type TicketHandlers struct {
	Issuer  *service.TicketIssuerService
	Tickets *service.TicketService
}

// Issue handles POST /api/events/{id}/tickets.
//
// The event id in the path wins over any event id in the body; a mismatch is
// rejected rather than silently resolved.
func (h *TicketHandlers) Issue(w http.ResponseWriter, r *http.Request) {
	var req model.IssueTicketsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	eventID := r.PathValue("id")
	if req.EventID != "" && req.EventID != eventID {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation",
			Err:     errEventIDMismatch,
		})
		return
	}
	req.EventID = eventID

	result, err := h.Issuer.IssueTickets(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, result)
}

// ListByEvent handles GET /api/events/{id}/tickets.
func (h *TicketHandlers) ListByEvent(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.Tickets.ListByEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if tickets == nil {
		tickets = []*model.Ticket{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"tickets": tickets})
}

// Get handles GET /api/tickets/{id}.
func (h *TicketHandlers) Get(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.Tickets.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ticket)
}

// Delete handles DELETE /api/tickets/{id}. Minted and transferred tickets
// yield 409.
func (h *TicketHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Tickets.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteByEvent handles DELETE /api/events/{id}/tickets. On-chain tickets are
// skipped; the response reports how many were removed.
func (h *TicketHandlers) DeleteByEvent(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.Tickets.DeleteByEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}
