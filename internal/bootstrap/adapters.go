package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/ticketmint/ticketmint/config"
	"github.com/ticketmint/ticketmint/internal/adapters/chainrpc"
	"github.com/ticketmint/ticketmint/internal/adapters/mintworker"
	"github.com/ticketmint/ticketmint/internal/adapters/pinner"
	"github.com/ticketmint/ticketmint/internal/core"
	"github.com/ticketmint/ticketmint/internal/observability/statsd"
	"github.com/ticketmint/ticketmint/internal/service"
	"github.com/ticketmint/ticketmint/internal/service/failurenotifier"
)

// buildMintClients constructs the outbound minting adapters: the transaction
// gateway client and the metadata pinning client.
func buildMintClients(chainCfg config.ChainConfig, pinnerCfg config.PinnerConfig) (core.ChainClient, core.MetadataStore, error) {
	chain, err := chainrpc.NewClient(chainrpc.Config{
		BaseURL:      chainCfg.BaseURL,
		APIKey:       chainCfg.APIKey,
		Timeout:      chainCfg.Timeout,
		PollInterval: chainCfg.PollInterval,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init chain gateway client: %w", err)
	}

	store, err := pinner.NewClient(pinner.Config{
		BaseURL:    pinnerCfg.BaseURL,
		APIKey:     pinnerCfg.APIKey,
		Timeout:    pinnerCfg.Timeout,
		RetryLimit: pinnerCfg.RetryLimit,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init pinner client: %w", err)
	}

	return chain, store, nil
}

// MintWorkerConfig contains configuration for the mint worker runner.
type MintWorkerConfig struct {
	DB              *sql.DB
	RedisClient     redis.UniversalClient
	Logger          *slog.Logger
	Worker          config.MintWorkerConfig
	Minter          config.MinterConfig
	Chain           config.ChainConfig
	Pinner          config.PinnerConfig
	Metrics         statsd.Sink
	FailureNotifier *failurenotifier.Service
}

// RunMintWorker starts the mint queue worker pool and blocks until the
// context is cancelled or the pool fails. The worker builds its own service
// graph from the database handle so it can run in a process without the
// HTTP server.
func RunMintWorker(ctx context.Context, cfg MintWorkerConfig) error {
	chain, store, err := buildMintClients(cfg.Chain, cfg.Pinner)
	if err != nil {
		return err
	}

	repos := buildRepositories(cfg.DB, cfg.RedisClient, cfg.Logger)

	queue, err := service.NewMintQueueService(service.MintQueueServiceOptions{
		Jobs:    repos.MintJobRepo,
		Cache:   repos.cache(),
		Logger:  cfg.Logger,
		Metrics: cfg.Metrics,
	})
	if err != nil {
		return fmt.Errorf("init mint queue service: %w", err)
	}

	minter, err := service.NewBlockchainMinterService(service.BlockchainMinterOptions{
		Events:              repos.EventRepo,
		Tickets:             repos.TicketRepo,
		Queue:               queue,
		Chain:               chain,
		Store:               store,
		Logger:              cfg.Logger,
		Metrics:             cfg.Metrics,
		FailureNotifier:     cfg.FailureNotifier,
		UploadConcurrency:   cfg.Minter.UploadConcurrency,
		ConfirmationTimeout: cfg.Minter.ConfirmationTimeout,
	})
	if err != nil {
		return fmt.Errorf("init minter service: %w", err)
	}

	runner, err := mintworker.NewRunner(mintworker.RunnerOptions{
		Queue:        queue,
		Minter:       minter,
		Logger:       cfg.Logger,
		Notifier:     repos.MintJobRepo,
		Lease:        cfg.Worker.JobLease,
		Concurrency:  cfg.Worker.Concurrency,
		PollInterval: cfg.Worker.PollInterval,
	})
	if err != nil {
		return fmt.Errorf("create mint worker runner: %w", err)
	}

	return runner.Run(ctx)
}

// ReaperConfig contains configuration for reaper.
type ReaperConfig struct {
	DB      *sql.DB
	Logger  *slog.Logger
	Config  config.ReaperConfig
	Metrics statsd.Sink
}

// RunReaper starts the stale-job reaper service.
func RunReaper(ctx context.Context, cfg ReaperConfig) error {
	repos := buildRepositories(cfg.DB, nil, cfg.Logger)

	svc, err := service.NewReaperService(service.ReaperServiceOptions{
		Jobs:    repos.MintJobRepo,
		Config:  cfg.Config,
		Logger:  cfg.Logger,
		Metrics: cfg.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create reaper service: %w", err)
	}

	return svc.Run(ctx)
}
