// Package mintworker runs the background mint job workers.
package mintworker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ticketmint/ticketmint/internal/domain/model"
	"github.com/ticketmint/ticketmint/internal/service"
)

// Notifier blocks until the queue signals a new job or the context is done.
// *data.MintJobRepo implements it over Postgres LISTEN/NOTIFY.
type Notifier interface {
	WaitForNotification(ctx context.Context) error
}

// RunnerOptions configures the mint worker runner.
type RunnerOptions struct {
	Queue  *service.MintQueueService        // Required: claim and transition jobs
	Minter *service.BlockchainMinterService // Required: executes claimed jobs
	Logger *slog.Logger

	// Notifier wakes idle workers when a job is enqueued. Optional: without
	// it the workers rely on polling alone.
	Notifier Notifier

	Lease        time.Duration // per-job lease duration; defaults to 5m
	Concurrency  int           // number of worker goroutines; defaults to 1
	PollInterval time.Duration // idle wake-up fallback; defaults to 5s
}

// Runner drains the mint queue with a pool of workers.
//
// Each worker claims one job at a time through the queue's claim query, which
// never hands out two jobs of the same event concurrently. The minter leaves
// every job it touches in a terminal state, so a job-level failure does not
// stop the pool; only claim-path errors do.
type Runner struct {
	queue  *service.MintQueueService
	minter *service.BlockchainMinterService
	logger *slog.Logger

	notifier Notifier

	lease        time.Duration
	workers      int
	pollInterval time.Duration
}

// NewRunner constructs a mint worker runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Queue == nil {
		return nil, errors.New("MintQueueService is required")
	}
	if opts.Minter == nil {
		return nil, errors.New("BlockchainMinterService is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	lease := opts.Lease
	if lease <= 0 {
		lease = 5 * time.Minute
	}
	workers := opts.Concurrency
	if workers <= 0 {
		workers = 1
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}

	return &Runner{
		queue:        opts.Queue,
		minter:       opts.Minter,
		logger:       logger,
		notifier:     opts.Notifier,
		lease:        lease,
		workers:      workers,
		pollInterval: pollInterval,
	}, nil
}

// Run starts worker goroutines and processes jobs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting mint worker", "workers", r.workers, "lease", r.lease)

	// Derive a cancellable context that we can signal on first fatal error
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wake := make(chan struct{}, 1)
	if r.notifier != nil {
		go r.listen(ctx, wake)
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	for range r.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.workerLoop(ctx, wake); err != nil {
				// first error wins, cancels all workers
				select {
				case errCh <- err:
					cancel()
				default:
				}
			}
		}()
	}

	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return ctx.Err()
	}
}

func (r *Runner) workerLoop(ctx context.Context, wake <-chan struct{}) error {
	for ctx.Err() == nil {
		job, err := r.queue.ClaimNext(ctx, r.lease)
		switch {
		case err == nil:
			r.processJob(ctx, job)
		case errors.Is(err, model.ErrNoJobsAvailable):
			if !r.waitForWork(ctx, wake) {
				return nil
			}
		case ctx.Err() != nil:
			return nil
		default:
			return fmt.Errorf("claim next: %w", err)
		}
	}
	return ctx.Err()
}

// waitForWork blocks until a notification arrives, the poll interval elapses,
// or the context is done. The poll fallback covers notifications lost to a
// dropped listen connection.
func (r *Runner) waitForWork(ctx context.Context, wake <-chan struct{}) bool {
	timer := time.NewTimer(r.pollInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-wake:
		return true
	case <-timer.C:
		return true
	}
}

func (r *Runner) processJob(ctx context.Context, job *model.MintJob) {
	if err := r.minter.ProcessJob(ctx, job); err != nil {
		// Already recorded as failed by the minter; the pool keeps draining.
		r.logger.ErrorContext(ctx, "mint job processing failed",
			"job_id", job.ID,
			"event_id", job.EventID,
			"error", err,
		)
	}
}

// listen pumps queue notifications into the wake channel. A full channel
// means a worker is already due to wake, so the signal can be dropped.
func (r *Runner) listen(ctx context.Context, wake chan<- struct{}) {
	for ctx.Err() == nil {
		if err := r.notifier.WaitForNotification(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.WarnContext(ctx, "queue notification wait failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.pollInterval):
			}
			continue
		}
		select {
		case wake <- struct{}{}:
		default:
		}
	}
}
