package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:  "single service - http",
			input: "http",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP: true,
			},
			expectError: false,
		},
		{
			name:  "single service - mint-worker",
			input: "mint-worker",
			expected: map[ServiceMode]bool{
				ServiceModeMintWorker: true,
			},
			expectError: false,
		},
		{
			name:  "single service - reaper",
			input: "reaper",
			expected: map[ServiceMode]bool{
				ServiceModeReaper: true,
			},
			expectError: false,
		},
		{
			name:  "multiple services - http and mint-worker",
			input: "http,mint-worker",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:       true,
				ServiceModeMintWorker: true,
			},
			expectError: false,
		},
		{
			name:  "all services",
			input: "http,mint-worker,reaper",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:       true,
				ServiceModeMintWorker: true,
				ServiceModeReaper:     true,
			},
			expectError: false,
		},
		{
			name:  "services with spaces",
			input: " http , mint-worker , reaper ",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:       true,
				ServiceModeMintWorker: true,
				ServiceModeReaper:     true,
			},
			expectError: false,
		},
		{
			name:  "duplicate services",
			input: "http,http,mint-worker",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:       true,
				ServiceModeMintWorker: true,
			},
			expectError: false,
		},
		{
			name:        "empty string",
			input:       "",
			expected:    nil,
			expectError: true,
		},
		{
			name:        "only spaces and commas",
			input:       " , , ",
			expected:    nil,
			expectError: true,
		},
		{
			name:        "invalid service name",
			input:       "http,invalid-service",
			expected:    nil,
			expectError: true,
		},
		{
			name:        "mixed valid and invalid",
			input:       "http,mint-worker,invalid",
			expected:    nil,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseServices(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if len(result) != len(tt.expected) {
				t.Errorf("expected %d services, got %d", len(tt.expected), len(result))
				return
			}

			for service, expected := range tt.expected {
				if result[service] != expected {
					t.Errorf("expected service %s to be %v, got %v", service, expected, result[service])
				}
			}
		})
	}
}

func TestConfig_GetEnabledServices(t *testing.T) {
	tests := []struct {
		name        string
		services    string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:     "default configuration",
			services: "http",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP: true,
			},
			expectError: false,
		},
		{
			name:     "multiple services",
			services: "http,mint-worker",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:       true,
				ServiceModeMintWorker: true,
			},
			expectError: false,
		},
		{
			name:        "invalid configuration",
			services:    "invalid-service",
			expected:    nil,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AppConfig{Services: tt.services}
			result, err := cfg.GetEnabledServices()

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if len(result) != len(tt.expected) {
				t.Errorf("expected %d services, got %d", len(tt.expected), len(result))
				return
			}

			for service, expected := range tt.expected {
				if result[service] != expected {
					t.Errorf("expected service %s to be %v, got %v", service, expected, result[service])
				}
			}
		})
	}
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "oauth")
	t.Setenv("ADMIN_GROUP", "ticketing-operators")
	t.Setenv("OAUTH_CLIENT_ID", "app-client")
	t.Setenv("OAUTH_ISSUER_URL", "https://login.example.com")
	t.Setenv("OAUTH_DISCOVERY_URL", "https://login.example.com/.well-known/openid-configuration")
	t.Setenv("DEV_AUTH_USER_ID", "dev-user")
	t.Setenv("DEV_AUTH_EMAIL", "dev@example.com")
	t.Setenv("DEV_AUTH_GROUPS", "admins;devs")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		Mode: AuthModeOAuth,
		OAuth: OAuthConfig{
			ClientID:     "app-client",
			IssuerURL:    "https://login.example.com",
			DiscoveryURL: "https://login.example.com/.well-known/openid-configuration",
		},
		DevAuth: DevAuthConfig{
			UserID: "dev-user",
			Email:  "dev@example.com",
			Groups: []string{"admins", "devs"},
		},
		AdminGroup: "ticketing-operators",
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
}

func TestConfig_ServiceEnabledMethods(t *testing.T) {
	tests := []struct {
		name               string
		services           string
		expectedHTTP       bool
		expectedMintWorker bool
		expectedReaper     bool
	}{
		{
			name:               "default - http only",
			services:           "http",
			expectedHTTP:       true,
			expectedMintWorker: false,
			expectedReaper:     false,
		},
		{
			name:               "http and mint-worker",
			services:           "http,mint-worker",
			expectedHTTP:       true,
			expectedMintWorker: true,
			expectedReaper:     false,
		},
		{
			name:               "all services",
			services:           "http,mint-worker,reaper",
			expectedHTTP:       true,
			expectedMintWorker: true,
			expectedReaper:     true,
		},
		{
			name:               "mint-worker only",
			services:           "mint-worker",
			expectedHTTP:       false,
			expectedMintWorker: true,
			expectedReaper:     false,
		},
		{
			name:               "reaper only",
			services:           "reaper",
			expectedHTTP:       false,
			expectedMintWorker: false,
			expectedReaper:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AppConfig{Services: tt.services}

			if cfg.IsHTTPServerEnabled() != tt.expectedHTTP {
				t.Errorf("IsHTTPServerEnabled(): expected %v, got %v", tt.expectedHTTP, cfg.IsHTTPServerEnabled())
			}

			if cfg.IsMintWorkerEnabled() != tt.expectedMintWorker {
				t.Errorf(
					"IsMintWorkerEnabled(): expected %v, got %v",
					tt.expectedMintWorker,
					cfg.IsMintWorkerEnabled(),
				)
			}

			if cfg.IsReaperEnabled() != tt.expectedReaper {
				t.Errorf("IsReaperEnabled(): expected %v, got %v", tt.expectedReaper, cfg.IsReaperEnabled())
			}
		})
	}
}

func TestConfig_ServiceEnabledMethodsWithInvalidConfig(t *testing.T) {
	cfg := AppConfig{Services: "invalid-service"}

	// All methods should return false when configuration is invalid
	if cfg.IsHTTPServerEnabled() != false {
		t.Errorf("IsHTTPServerEnabled() with invalid config: expected false, got true")
	}

	if cfg.IsMintWorkerEnabled() != false {
		t.Errorf("IsMintWorkerEnabled() with invalid config: expected false, got true")
	}

	if cfg.IsReaperEnabled() != false {
		t.Errorf("IsReaperEnabled() with invalid config: expected false, got true")
	}
}

func TestValidServiceModes(t *testing.T) {
	modes := ValidServiceModes()
	expected := []ServiceMode{
		ServiceModeHTTP,
		ServiceModeMintWorker,
		ServiceModeReaper,
	}

	if len(modes) != len(expected) {
		t.Errorf("expected %d service modes, got %d", len(expected), len(modes))
	}

	for i, mode := range modes {
		if mode != expected[i] {
			t.Errorf("expected service mode %s at index %d, got %s", expected[i], i, mode)
		}
	}
}

func TestMintWorkerConfig_Sanitize(t *testing.T) {
	cfg := MintWorkerConfig{
		Concurrency:  0,
		JobLease:     time.Second,
		PollInterval: 0,
	}

	cfg.Sanitize()

	if cfg.Concurrency != 1 {
		t.Fatalf("expected concurrency clamped to 1, got %d", cfg.Concurrency)
	}
	if cfg.JobLease < 30*time.Second {
		t.Fatalf("expected job lease clamped to >= 30s, got %v", cfg.JobLease)
	}
	if cfg.PollInterval < time.Second {
		t.Fatalf("expected poll interval clamped to >= 1s, got %v", cfg.PollInterval)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when address is empty")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " statsd:1234 ",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
}

func TestObservabilityNotificationsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityNotificationsConfig{
		Enabled:    true,
		Timeout:    0,
		RetryLimit: -1,
		Slack: SlackNotificationConfig{
			Enabled:    true,
			WebhookURL: " ",
			Channel:    "  ",
			Username:   "",
		},
		PagerDuty: PagerDutyNotificationConfig{
			Enabled:    true,
			RoutingKey: " ",
			Source:     "",
			Component:  "",
		},
	}

	cfg.Sanitize()

	if cfg.Timeout <= 0 {
		t.Fatalf("expected timeout to fall back to default, got %v", cfg.Timeout)
	}
	if cfg.RetryLimit < 0 {
		t.Fatalf("expected retry limit to be clamped to >= 0, got %d", cfg.RetryLimit)
	}
	if cfg.Slack.Enabled {
		t.Fatal("expected slack to be disabled without a webhook url")
	}
	if cfg.PagerDuty.Enabled {
		t.Fatal("expected pagerduty to be disabled without a routing key")
	}
	if cfg.PagerDuty.Source != "ticketmint" {
		t.Fatalf("expected pagerduty source default, got %q", cfg.PagerDuty.Source)
	}
	if cfg.PagerDuty.Component != "ticketmint" {
		t.Fatalf("expected pagerduty component default, got %q", cfg.PagerDuty.Component)
	}

	// Disabled top-level should disable child sinks.
	cfg = ObservabilityNotificationsConfig{
		Enabled: false,
		Slack: SlackNotificationConfig{
			Enabled:    true,
			WebhookURL: "https://hooks.slack.com/services/test",
		},
		PagerDuty: PagerDutyNotificationConfig{
			Enabled:    true,
			RoutingKey: "abc",
		},
	}
	cfg.Sanitize()

	if cfg.Slack.Enabled {
		t.Fatal("expected slack to be disabled when top-level notifications disabled")
	}
	if cfg.PagerDuty.Enabled {
		t.Fatal("expected pagerduty to be disabled when top-level notifications disabled")
	}
}
