package auth

// Package auth contains domain-level types for authentication.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and logging.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// Identity represents the authenticated principal behind a bearer token.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	Subject   string // stable user identifier (e.g., sub or samAccountName)
	Email     string
	Name      string
	Groups    []string
	ExpiresAt time.Time // absolute expiry from IdP token
}

// InGroup reports whether the identity carries the given IdP group.
func (i Identity) InGroup(group string) bool {
	if group == "" {
		return false
	}
	for _, g := range i.Groups {
		if g == group {
			return true
		}
	}
	return false
}
