package config

import "time"

// ChainConfig contains blockchain gateway client configuration.
type ChainConfig struct {
	// BaseURL is the root URL of the transaction gateway.
	BaseURL string `env:"BASE_URL"`

	// APIKey authenticates against the gateway.
	APIKey string `env:"API_KEY"`

	// Timeout bounds a single gateway HTTP request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// PollInterval is the delay between transaction status polls.
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`
}

// Sanitize applies guardrails to chain gateway configuration values.
func (c *ChainConfig) Sanitize() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
}

// PinnerConfig contains metadata store (pinning service) client configuration.
type PinnerConfig struct {
	// BaseURL is the root URL of the pinning API.
	BaseURL string `env:"BASE_URL"`

	// APIKey authenticates against the pinning API.
	APIKey string `env:"API_KEY"`

	// Timeout bounds a single upload request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// RetryLimit is the number of retries after a failed upload. Uploads are
	// content-addressed, so retrying a partially applied upload is safe.
	RetryLimit int `env:"RETRY_LIMIT" envDefault:"2"`
}

// Sanitize applies guardrails to pinner configuration values.
func (p *PinnerConfig) Sanitize() {
	if p.Timeout <= 0 {
		p.Timeout = 30 * time.Second
	}
	if p.RetryLimit < 0 {
		p.RetryLimit = 0
	}
}
