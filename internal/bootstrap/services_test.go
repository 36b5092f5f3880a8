package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketmint/ticketmint/config"
)

func validAppConfig() *config.AppConfig {
	cfg := &config.AppConfig{
		Services: "http",
		Chain:    config.ChainConfig{BaseURL: "https://gateway.example.com"},
		Pinner:   config.PinnerConfig{BaseURL: "https://pinner.example.com"},
	}
	cfg.Sanitize()
	return cfg
}

func TestNewServices_NilDeps(t *testing.T) {
	_, err := NewServices(nil)
	require.Error(t, err)
}

func TestNewServices_WiresFullGraph(t *testing.T) {
	services, err := NewServices(&ServiceDeps{Config: validAppConfig()})
	require.NoError(t, err)

	assert.NotNil(t, services.Events)
	assert.NotNil(t, services.Tickets)
	assert.NotNil(t, services.Issuer)
	assert.NotNil(t, services.Queue)
	assert.NotNil(t, services.Minter)
	assert.NotNil(t, services.Retry)
	assert.NotNil(t, services.Status)
	assert.NotNil(t, services.Observability.FailureNotifier)
}

func TestNewServices_MissingChainGateway(t *testing.T) {
	cfg := validAppConfig()
	cfg.Chain.BaseURL = ""

	_, err := NewServices(&ServiceDeps{Config: cfg})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chain gateway")
}

func TestNewServices_MissingPinner(t *testing.T) {
	cfg := validAppConfig()
	cfg.Pinner.BaseURL = ""

	_, err := NewServices(&ServiceDeps{Config: cfg})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pinner")
}

func TestValidateServiceConfig(t *testing.T) {
	require.Error(t, ValidateServiceConfig(nil))

	cfg := validAppConfig()
	require.NoError(t, ValidateServiceConfig(cfg))

	cfg.Services = "http,carousel"
	require.Error(t, ValidateServiceConfig(cfg))
}

func TestGetEnabledServices(t *testing.T) {
	cfg := validAppConfig()
	cfg.Services = "http,mint-worker,reaper"

	enabled := GetEnabledServices(cfg)
	assert.ElementsMatch(t, []string{"http", "mint-worker", "reaper"}, enabled)

	assert.Empty(t, GetEnabledServices(nil))
}

func TestErrorChannelBufferSize(t *testing.T) {
	assert.Equal(t, 1, errorChannelBufferSize(nil))
	assert.Equal(t, 3, errorChannelBufferSize(map[config.ServiceMode]bool{
		config.ServiceModeHTTP:       true,
		config.ServiceModeMintWorker: true,
	}))
}

func TestBuildTokenVerifier_MockMode(t *testing.T) {
	verifier, err := BuildTokenVerifier(context.Background(), AuthDeps{
		Auth: config.AuthConfig{
			Mode: config.AuthModeMock,
			DevAuth: config.DevAuthConfig{
				UserID: "dev-user",
				Email:  "dev@example.com",
				Groups: []string{"admins"},
			},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, verifier)

	identity, err := verifier.Verify(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "dev-user", identity.Subject)
}

func TestBuildTokenVerifier_UnsupportedMode(t *testing.T) {
	_, err := BuildTokenVerifier(context.Background(), AuthDeps{
		Auth: config.AuthConfig{Mode: config.AuthMode("saml")},
	})
	require.Error(t, err)
}
