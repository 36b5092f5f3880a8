package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ticketmint/ticketmint/config"
	"github.com/ticketmint/ticketmint/internal/core"
	"github.com/ticketmint/ticketmint/internal/data"
	"github.com/ticketmint/ticketmint/internal/observability/notify/pagerduty"
	"github.com/ticketmint/ticketmint/internal/observability/notify/slack"
	"github.com/ticketmint/ticketmint/internal/observability/statsd"
	"github.com/ticketmint/ticketmint/internal/ports"
	"github.com/ticketmint/ticketmint/internal/service"
	"github.com/ticketmint/ticketmint/internal/service/failurenotifier"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Events        *service.EventService
	Tickets       *service.TicketService
	Issuer        *service.TicketIssuerService
	Queue         *service.MintQueueService
	Minter        *service.BlockchainMinterService
	Retry         *service.RetryCoordinator
	Status        *service.StatusAggregator
	Verifier      ports.TokenVerifier
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink     *statsd.Client
	MetricsConfig   config.ObservabilityMetricsConfig
	FailureNotifier *failurenotifier.Service
	NotifierConfig  config.ObservabilityNotificationsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Verifier    ports.TokenVerifier
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	DB          *sql.DB
	Redis       redis.UniversalClient
	EventRepo   *data.EventRepo
	TicketRepo  *data.TicketRepo
	MintJobRepo *data.MintJobRepo
	CacheRepo   *data.RedisCacheRepo
}

// cache returns the cache port, or nil when Redis is not configured. The
// services treat a nil cache as "always miss", so the API degrades to
// uncached reads instead of failing.
func (r *serviceRepositories) cache() core.CacheRepository {
	if r.CacheRepo == nil {
		return nil
	}
	return r.CacheRepo
}

// buildObservability configures metrics and notification adapters.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  "ticketmint",
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	failureNotifier := buildFailureNotifier(obsLogger, cfg.Notifications)

	return ObservabilityContainer{
		MetricsSink:     metricsSink,
		MetricsConfig:   cfg.Metrics,
		FailureNotifier: failureNotifier,
		NotifierConfig:  cfg.Notifications,
	}
}

func buildFailureNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) *failurenotifier.Service {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	if !cfg.Enabled {
		return failurenotifier.NewService(failurenotifier.Options{
			Logger: baseLogger.With("component", "failure_notifier"),
		})
	}

	sinks := make([]failurenotifier.SinkRegistration, 0, 2)

	if cfg.Slack.Enabled {
		client, err := slack.NewClient(slack.Config{
			WebhookURL:     cfg.Slack.WebhookURL,
			Channel:        cfg.Slack.Channel,
			Username:       cfg.Slack.Username,
			Timeout:        cfg.Timeout,
			RetryLimit:     cfg.RetryLimit,
			EventURLPrefix: cfg.Slack.EventURLPrefix,
		})
		if err != nil {
			baseLogger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "slack",
				Sink: client,
			})
		}
	}

	if cfg.PagerDuty.Enabled {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			baseLogger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{
				Name: "pagerduty",
				Sink: client,
			})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{
		Logger: baseLogger.With("component", "failure_notifier"),
		Sinks:  sinks,
	})
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, redisClient redis.UniversalClient, logger *slog.Logger) *serviceRepositories {
	repos := &serviceRepositories{
		DB:          db,
		Redis:       redisClient,
		EventRepo:   data.NewEventRepo(db),
		TicketRepo:  data.NewTicketRepo(db),
		MintJobRepo: data.NewMintJobRepo(db, data.MintJobRepoConfig{Logger: logger}),
	}
	if redisClient != nil {
		repos.CacheRepo = data.NewRedisCacheRepo(redisClient)
	}
	return repos
}

// NewServices wires the full service graph for the HTTP process. The minter
// is part of the graph even in http-only mode because immediate-mode
// issuance mints synchronously on the request path.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil {
		return ServiceContainer{}, errors.New("service deps are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg config.AppConfig
	if deps.Config != nil {
		cfg = *deps.Config
	}

	observability := buildObservability(logger, cfg.Observability)
	repos := buildRepositories(deps.DB, deps.RedisClient, logger)

	chain, store, err := buildMintClients(cfg.Chain, cfg.Pinner)
	if err != nil {
		return ServiceContainer{}, err
	}

	events, err := service.NewEventService(service.EventServiceOptions{
		Events: repos.EventRepo,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init event service: %w", err)
	}

	tickets, err := service.NewTicketService(service.TicketServiceOptions{
		Tickets: repos.TicketRepo,
		Cache:   repos.cache(),
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init ticket service: %w", err)
	}

	queue, err := service.NewMintQueueService(service.MintQueueServiceOptions{
		Jobs:    repos.MintJobRepo,
		Cache:   repos.cache(),
		Logger:  logger,
		Metrics: observability.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init mint queue service: %w", err)
	}

	minter, err := service.NewBlockchainMinterService(service.BlockchainMinterOptions{
		Events:              repos.EventRepo,
		Tickets:             repos.TicketRepo,
		Queue:               queue,
		Chain:               chain,
		Store:               store,
		Logger:              logger,
		Metrics:             observability.MetricsSink,
		FailureNotifier:     observability.FailureNotifier,
		UploadConcurrency:   cfg.Minter.UploadConcurrency,
		ConfirmationTimeout: cfg.Minter.ConfirmationTimeout,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init minter service: %w", err)
	}

	issuer, err := service.NewTicketIssuerService(service.TicketIssuerOptions{
		Events:   repos.EventRepo,
		Tickets:  repos.TicketRepo,
		Queue:    queue,
		Minter:   minter,
		Cache:    repos.cache(),
		Logger:   logger,
		JobLease: cfg.MintWorker.JobLease,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init ticket issuer: %w", err)
	}

	retry, err := service.NewRetryCoordinator(service.RetryCoordinatorOptions{
		Jobs:   repos.MintJobRepo,
		Cache:  repos.cache(),
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init retry coordinator: %w", err)
	}

	status, err := service.NewStatusAggregator(service.StatusAggregatorOptions{
		Tickets: repos.TicketRepo,
		Jobs:    repos.MintJobRepo,
		Cache:   repos.cache(),
		TTL:     cfg.Cache.StatusTTL,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init status aggregator: %w", err)
	}

	return ServiceContainer{
		Events:        events,
		Tickets:       tickets,
		Issuer:        issuer,
		Queue:         queue,
		Minter:        minter,
		Retry:         retry,
		Status:        status,
		Verifier:      deps.Verifier,
		Observability: observability,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	mode config.ServiceMode
	name string
	done <-chan struct{}
}

// startHTTPServerIfEnabled starts the HTTP server if enabled.
func startHTTPServerIfEnabled(deps *serviceStartupDeps) *http.Server {
	if deps == nil || deps.cfg == nil || !deps.enabledServices[config.ServiceModeHTTP] {
		return nil
	}
	return StartHTTPServer(&HTTPServerConfig{
		Config:   deps.cfg.Config,
		Services: deps.cfg.Services,
		Logger:   deps.logger,
	})
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !deps.enabledServices[descriptor.mode] {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				if deps.logger != nil {
					deps.logger.WarnContext(ctx, "dropping background service error", "service", descriptor.name, "error", errMsg)
				} else {
					slog.Default().WarnContext(ctx, "dropping background service error", "service", descriptor.name, "error", errMsg)
				}
			}
		}
	}()

	if deps.logger != nil {
		deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	} else {
		slog.Default().InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	}

	return done
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	handles := make([]backgroundServiceHandle, 0, len(services))

	for _, svc := range services {
		done := launchBackground(deps.ctx, deps, svc)
		if done == nil {
			continue
		}

		handles = append(handles, backgroundServiceHandle{
			mode: svc.mode,
			name: svc.name,
			done: done,
		})
	}

	return handles
}

func newMintWorkerBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeMintWorker,
		name: "mint worker",
		start: func(ctx context.Context) error {
			if deps == nil || deps.cfg == nil {
				return nil
			}
			workerCfg := MintWorkerConfig{
				DB:              deps.cfg.DB,
				RedisClient:     deps.cfg.RedisClient,
				Logger:          deps.logger,
				Metrics:         deps.cfg.Services.Observability.MetricsSink,
				FailureNotifier: deps.cfg.Services.Observability.FailureNotifier,
			}
			if deps.cfg.Config != nil {
				workerCfg.Worker = deps.cfg.Config.MintWorker
				workerCfg.Minter = deps.cfg.Config.Minter
				workerCfg.Chain = deps.cfg.Config.Chain
				workerCfg.Pinner = deps.cfg.Config.Pinner
			}
			return RunMintWorker(ctx, workerCfg)
		},
	}
}

func newReaperBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeReaper,
		name: "reaper",
		start: func(ctx context.Context) error {
			if deps == nil || deps.cfg == nil {
				return nil
			}
			var reaperCfg config.ReaperConfig
			if deps.cfg.Config != nil {
				reaperCfg = deps.cfg.Config.Reaper
			}
			return RunReaper(ctx, ReaperConfig{
				DB:      deps.cfg.DB,
				Logger:  deps.logger,
				Config:  reaperCfg,
				Metrics: deps.cfg.Services.Observability.MetricsSink,
			})
		},
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	if deps == nil {
		return nil
	}
	return []backgroundService{
		newMintWorkerBackgroundService(deps),
		newReaperBackgroundService(deps),
	}
}

// ServiceStartupResult holds the results of starting all services.
type ServiceStartupResult struct {
	HTTPServer *http.Server
	Background []backgroundServiceHandle
}

// startServices starts all enabled services and returns their completion channels.
func startServices(deps *serviceStartupDeps) ServiceStartupResult {
	return ServiceStartupResult{
		HTTPServer: startHTTPServerIfEnabled(deps),
		Background: startBackgroundServices(deps, buildBackgroundServices(deps)),
	}
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	ctx := context.Background()
	serviceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	// Determine which services are enabled
	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, errorChannelBufferSize(enabledServices))

	// Start all enabled services
	result := startServices(&serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           errCh,
	})

	httpShutdownTimeout := cfg.Config.HTTP.ShutdownTimeout
	if httpShutdownTimeout <= 0 {
		httpShutdownTimeout = shutdownWaitTimeout
	}

	// Wait for shutdown signal or error
	return waitForShutdown(shutdownConfig{
		cancel:          cancel,
		errCh:           errCh,
		httpServer:      result.HTTPServer,
		httpStopTimeout: httpShutdownTimeout,
		logger:          logger,
		backgrounds:     result.Background,
	})
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	modes := []config.ServiceMode{
		config.ServiceModeHTTP,
		config.ServiceModeMintWorker,
		config.ServiceModeReaper,
	}

	count := 0
	for _, mode := range modes {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	size := errorChannelCapacity(enabled) + 1
	if size < 1 {
		return 1
	}
	return size
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	cancel          context.CancelFunc
	errCh           <-chan error
	httpServer      *http.Server
	httpStopTimeout time.Duration
	logger          *slog.Logger
	backgrounds     []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel() // Cancel service context before waiting
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel() // Cancel service context before waiting
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop attempts to gracefully stop all services.
func gracefulStop(cfg shutdownConfig) error {
	// Gracefully stop HTTP server if running
	if cfg.httpServer != nil {
		timeout := cfg.httpStopTimeout
		if timeout <= 0 {
			timeout = shutdownWaitTimeout
		}
		// The service context is already cancelled here, so the shutdown
		// deadline hangs off a fresh context.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		}); err != nil {
			return err
		}
	}

	// Wait for background services to finish
	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
