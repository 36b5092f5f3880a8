package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeMintWorker runs the mint queue worker.
	ServiceModeMintWorker ServiceMode = "mint-worker"
	// ServiceModeReaper runs the stale-job reaper.
	ServiceModeReaper ServiceMode = "reaper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeHTTP,
		ServiceModeMintWorker,
		ServiceModeReaper,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	parts := strings.Split(servicesStr, ",")
	for _, part := range parts {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeMintWorker, ServiceModeReaper:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, mint-worker, reaper)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// MintWorkerConfig contains mint worker service configuration.
type MintWorkerConfig struct {
	// Concurrency is the number of worker goroutines draining the queue.
	Concurrency int `env:"MINT_WORKER_CONCURRENCY" envDefault:"2"`

	// JobLease is the duration a claimed job may stay in processing before
	// the reaper treats it as abandoned.
	JobLease time.Duration `env:"MINT_WORKER_JOB_LEASE" envDefault:"5m"`

	// PollInterval is the fallback claim interval when no queue notification
	// arrives.
	PollInterval time.Duration `env:"MINT_WORKER_POLL_INTERVAL" envDefault:"5s"`
}

// Sanitize applies guardrails to mint worker configuration values.
func (w *MintWorkerConfig) Sanitize() {
	if w.Concurrency < 1 {
		w.Concurrency = 1
	}
	if w.JobLease < 30*time.Second {
		w.JobLease = 30 * time.Second
	}
	if w.PollInterval < time.Second {
		w.PollInterval = time.Second
	}
}

// MinterConfig contains minting protocol configuration.
type MinterConfig struct {
	// UploadConcurrency bounds parallel metadata uploads per job.
	UploadConcurrency int `env:"MINTER_UPLOAD_CONCURRENCY" envDefault:"4"`

	// ConfirmationTimeout bounds how long a submitted transaction may stay
	// unconfirmed before the job is failed.
	ConfirmationTimeout time.Duration `env:"MINTER_CONFIRMATION_TIMEOUT" envDefault:"2m"`
}

// Sanitize applies guardrails to minter configuration values.
func (m *MinterConfig) Sanitize() {
	if m.UploadConcurrency < 1 {
		m.UploadConcurrency = 1
	}
	if m.ConfirmationTimeout < 10*time.Second {
		m.ConfirmationTimeout = 10 * time.Second
	}
}

// ReaperConfig contains stale-job reaper configuration.
type ReaperConfig struct {
	// Interval is the reaper tick interval.
	Interval time.Duration `env:"REAPER_INTERVAL" envDefault:"1m"`
}

// Sanitize applies guardrails to reaper configuration values.
func (r *ReaperConfig) Sanitize() {
	// Enforce a minimum interval to prevent excessive database load
	if r.Interval < 10*time.Second {
		r.Interval = 10 * time.Second
	}
}
