// Package oidc verifies bearer tokens against an OIDC identity provider.
package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/ticketmint/ticketmint/internal/domain/auth"
)

// Config configures the token verifier.
type Config struct {
	// IssuerURL is the OIDC issuer; discovery runs against it unless
	// DiscoveryURL overrides the document location.
	IssuerURL string
	// DiscoveryURL optionally points at a non-standard discovery document,
	// for providers whose issuer does not serve /.well-known.
	DiscoveryURL string
	// ClientID is the expected token audience.
	ClientID string
	// HTTPClient overrides the client used for discovery and userinfo.
	HTTPClient *http.Client
}

// DiscoveryDocument is the subset of the OIDC discovery document we need.
type DiscoveryDocument struct {
	Issuer           string `json:"issuer"`
	JWKSURI          string `json:"jwks_uri"`
	UserInfoEndpoint string `json:"userinfo_endpoint"`
}

// Verifier validates ID tokens offered as bearer credentials and maps their
// claims to a domain identity. Group claims absent from the token are filled
// from the userinfo endpoint when the provider exposes one.
type Verifier struct {
	verifier *gooidc.IDTokenVerifier
	provider *gooidc.Provider
	clientID string
}

// NewVerifier constructs a Verifier, running OIDC discovery.
func NewVerifier(ctx context.Context, cfg Config) (*Verifier, error) {
	if cfg.IssuerURL == "" {
		return nil, errors.New("oidc: IssuerURL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("oidc: ClientID is required")
	}

	if cfg.HTTPClient != nil {
		ctx = gooidc.ClientContext(ctx, cfg.HTTPClient)
	}

	verifierCfg := &gooidc.Config{ClientID: cfg.ClientID}

	if cfg.DiscoveryURL != "" {
		doc, err := fetchDiscovery(ctx, cfg)
		if err != nil {
			return nil, err
		}
		keySet := gooidc.NewRemoteKeySet(ctx, doc.JWKSURI)
		return &Verifier{
			verifier: gooidc.NewVerifier(doc.Issuer, keySet, verifierCfg),
			clientID: cfg.ClientID,
		}, nil
	}

	provider, err := gooidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	return &Verifier{
		verifier: provider.Verifier(verifierCfg),
		provider: provider,
		clientID: cfg.ClientID,
	}, nil
}

func fetchDiscovery(ctx context.Context, cfg Config) (*DiscoveryDocument, error) {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.DiscoveryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oidc discovery fetch: unexpected status %d", resp.StatusCode)
	}

	var doc DiscoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("oidc discovery decode: %w", err)
	}
	if doc.Issuer == "" || doc.JWKSURI == "" {
		return nil, errors.New("oidc discovery: document missing issuer or jwks_uri")
	}
	return &doc, nil
}

type tokenClaims struct {
	Email             string   `json:"email"`
	Name              string   `json:"name"`
	PreferredUsername string   `json:"preferred_username"`
	Groups            []string `json:"groups"`
	MemberOf          []string `json:"memberOf"`
}

// Verify validates the raw bearer token and returns the identity it encodes.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (domainauth.Identity, error) {
	if rawToken == "" {
		return domainauth.Identity{}, errors.New("oidc: empty token")
	}

	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("oidc: verify token: %w", err)
	}

	var claims tokenClaims
	if err := token.Claims(&claims); err != nil {
		return domainauth.Identity{}, fmt.Errorf("oidc: decode claims: %w", err)
	}

	identity := domainauth.Identity{
		Subject:   token.Subject,
		Email:     claims.Email,
		Name:      firstNonEmpty(claims.Name, claims.PreferredUsername),
		Groups:    claims.Groups,
		ExpiresAt: token.Expiry,
	}
	if len(identity.Groups) == 0 {
		identity.Groups = claims.MemberOf
	}

	// Some providers only expose group membership through userinfo.
	if len(identity.Groups) == 0 && v.provider != nil {
		if groups := v.groupsFromUserInfo(ctx, rawToken); len(groups) > 0 {
			identity.Groups = groups
		}
	}
	return identity, nil
}

func (v *Verifier) groupsFromUserInfo(ctx context.Context, rawToken string) []string {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: rawToken, TokenType: "Bearer"})
	info, err := v.provider.UserInfo(ctx, source)
	if err != nil {
		return nil
	}

	var claims tokenClaims
	if err := info.Claims(&claims); err != nil {
		return nil
	}
	if len(claims.Groups) > 0 {
		return claims.Groups
	}
	return claims.MemberOf
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
