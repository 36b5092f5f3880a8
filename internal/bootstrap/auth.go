package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ticketmint/ticketmint/config"
	"github.com/ticketmint/ticketmint/internal/adapters/devauth"
	"github.com/ticketmint/ticketmint/internal/adapters/oidc"
	"github.com/ticketmint/ticketmint/internal/ports"
)

// AuthDeps contains dependencies for building the token verifier.
type AuthDeps struct {
	Auth   config.AuthConfig
	Logger *slog.Logger
}

// BuildTokenVerifier creates the bearer-token verifier for the configured
// auth mode. OAuth mode runs OIDC discovery against the issuer, so it needs
// network access at startup. A misconfigured oauth mode is a hard error
// rather than a silent fallback: a nil verifier leaves the API open.
//
//nolint:ireturn // callers program against the port, not a concrete verifier.
func BuildTokenVerifier(ctx context.Context, deps AuthDeps) (ports.TokenVerifier, error) {
	switch deps.Auth.Mode {
	case config.AuthModeMock:
		if deps.Logger != nil {
			deps.Logger.Warn("mock auth enabled; every bearer token is accepted", "subject", deps.Auth.DevAuth.UserID)
		}
		return devauth.NewVerifier(devauth.Config{
			Subject: deps.Auth.DevAuth.UserID,
			Email:   deps.Auth.DevAuth.Email,
			Groups:  deps.Auth.DevAuth.Groups,
		})

	case config.AuthModeOAuth:
		verifier, err := oidc.NewVerifier(ctx, oidc.Config{
			IssuerURL:    deps.Auth.OAuth.IssuerURL,
			DiscoveryURL: deps.Auth.OAuth.DiscoveryURL,
			ClientID:     deps.Auth.OAuth.ClientID,
		})
		if err != nil {
			return nil, fmt.Errorf("init oidc verifier: %w", err)
		}
		return verifier, nil

	default:
		return nil, fmt.Errorf("unsupported auth mode: %q", deps.Auth.Mode)
	}
}
