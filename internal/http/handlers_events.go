// Package httpx provides the JSON API for the ticketmint service.
package httpx

import (
	"net/http"

	"github.com/ticketmint/ticketmint/internal/domain/model"
	"github.com/ticketmint/ticketmint/internal/service"
)

// EventHandlers provides HTTP handlers for event operations.
type EventHandlers struct {
	Svc *service.EventService
}

// Create handles POST /api/events.
func (h *EventHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	event, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, event)
}

// List handles GET /api/events.
func (h *EventHandlers) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.Svc.List(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if events == nil {
		events = []*model.Event{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

// Get handles GET /api/events/{id}.
func (h *EventHandlers) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.Svc.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, event)
}

// UpdateMintConfig handles PUT /api/events/{id}/mint-config.
func (h *EventHandlers) UpdateMintConfig(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateEventMintConfigRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	event, err := h.Svc.UpdateMintConfig(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, event)
}
