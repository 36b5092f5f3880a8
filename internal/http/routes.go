package httpx

import (
	"log/slog"
	"net/http"

	"github.com/ticketmint/ticketmint/internal/ports"
	"github.com/ticketmint/ticketmint/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Events  *service.EventService
	Issuer  *service.TicketIssuerService
	Tickets *service.TicketService
	Queue   *service.MintQueueService
	Retry   *service.RetryCoordinator
	Status  *service.StatusAggregator

	// Verifier authenticates bearer tokens. When nil the API runs open,
	// which is only acceptable for local development.
	Verifier ports.TokenVerifier
	// AdminGroup gates the mutating routes. Ignored when Verifier is nil.
	AdminGroup string

	Logger *slog.Logger
}

// NewRouter creates and configures the API router.
//
// Read routes require authentication; mutating routes additionally require
// the admin group. The health endpoint is always open for probes.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authed, admin := authMiddleware(services)

	eventHandlers := &EventHandlers{Svc: services.Events}
	ticketHandlers := &TicketHandlers{Issuer: services.Issuer, Tickets: services.Tickets}
	mintHandlers := &MintHandlers{Status: services.Status, Retry: services.Retry, Queue: services.Queue}

	mux := http.NewServeMux()

	mux.Handle("POST /api/events", admin(http.HandlerFunc(eventHandlers.Create)))
	mux.Handle("GET /api/events", authed(http.HandlerFunc(eventHandlers.List)))
	mux.Handle("GET /api/events/{id}", authed(http.HandlerFunc(eventHandlers.Get)))
	mux.Handle("PUT /api/events/{id}/mint-config", admin(http.HandlerFunc(eventHandlers.UpdateMintConfig)))

	mux.Handle("POST /api/events/{id}/tickets", admin(http.HandlerFunc(ticketHandlers.Issue)))
	mux.Handle("GET /api/events/{id}/tickets", authed(http.HandlerFunc(ticketHandlers.ListByEvent)))
	mux.Handle("DELETE /api/events/{id}/tickets", admin(http.HandlerFunc(ticketHandlers.DeleteByEvent)))
	mux.Handle("GET /api/tickets/{id}", authed(http.HandlerFunc(ticketHandlers.Get)))
	mux.Handle("DELETE /api/tickets/{id}", admin(http.HandlerFunc(ticketHandlers.Delete)))

	mux.Handle("GET /api/events/{id}/mint-status", authed(http.HandlerFunc(mintHandlers.StatusSummary)))
	mux.Handle("POST /api/events/{id}/mint-retry", admin(http.HandlerFunc(mintHandlers.RetryFailed)))
	mux.Handle("GET /api/events/{id}/mint-jobs", authed(http.HandlerFunc(mintHandlers.ListJobs)))
	mux.Handle("GET /api/mint-jobs/{id}", authed(http.HandlerFunc(mintHandlers.GetJob)))

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = RequestID(handler)
	handler = Recover(logger)(handler)
	return handler
}

// authMiddleware builds the read and admin middleware chains.
func authMiddleware(services RouterServices) (authed, admin func(http.Handler) http.Handler) {
	if services.Verifier == nil {
		passthrough := func(next http.Handler) http.Handler { return next }
		return passthrough, passthrough
	}

	requireAuth := RequireAuth(services.Verifier)
	requireGroup := RequireGroup(services.AdminGroup)
	return requireAuth, func(next http.Handler) http.Handler {
		return requireAuth(requireGroup(next))
	}
}
