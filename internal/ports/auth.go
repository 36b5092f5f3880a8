package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/http.

import (
	"context"

	domainauth "github.com/ticketmint/ticketmint/internal/domain/auth"
)

// TokenVerifier validates a bearer token and returns the identity behind it.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (domainauth.Identity, error)
}

// RoleMapper maps provider groups to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
