package mintworker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ticketmint/ticketmint/internal/domain/model"
	"github.com/ticketmint/ticketmint/internal/mocks"
	"github.com/ticketmint/ticketmint/internal/service"
)

type workerFixture struct {
	events  *mocks.MockEventRepository
	tickets *mocks.MockTicketRepository
	jobs    *mocks.MockMintJobRepository
	chain   *mocks.MockChainClient
	store   *mocks.MockMetadataStore

	runner *Runner
}

func newWorkerFixture(t *testing.T, ctrl *gomock.Controller) *workerFixture {
	t.Helper()

	f := &workerFixture{
		events:  mocks.NewMockEventRepository(ctrl),
		tickets: mocks.NewMockTicketRepository(ctrl),
		jobs:    mocks.NewMockMintJobRepository(ctrl),
		chain:   mocks.NewMockChainClient(ctrl),
		store:   mocks.NewMockMetadataStore(ctrl),
	}

	queue, err := service.NewMintQueueService(service.MintQueueServiceOptions{Jobs: f.jobs})
	require.NoError(t, err)

	minter, err := service.NewBlockchainMinterService(service.BlockchainMinterOptions{
		Events:  f.events,
		Tickets: f.tickets,
		Queue:   queue,
		Chain:   f.chain,
		Store:   f.store,
	})
	require.NoError(t, err)

	f.runner, err = NewRunner(RunnerOptions{
		Queue:        queue,
		Minter:       minter,
		Lease:        time.Minute,
		Concurrency:  2,
		PollInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	return f
}

func TestNewRunner_RequiredOptions(t *testing.T) {
	_, err := NewRunner(RunnerOptions{})
	assert.Error(t, err)
}

func TestRunner_ProcessesClaimedJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newWorkerFixture(t, ctrl)

	event := &model.Event{
		ID:              "ev-1",
		Name:            "Summer Festival",
		ContractAddress: "0xc0de",
		AdminWallet:     "0xad1",
	}
	ticket := &model.Ticket{
		ID:           "tk-a",
		EventID:      event.ID,
		TicketNumber: 1,
		Metadata:     &model.NFTMetadata{Name: "Summer Festival #1"},
	}
	job := &model.MintJob{
		ID:        "job-1",
		EventID:   event.ID,
		TicketIDs: []string{ticket.ID},
		Status:    model.MintJobStatusProcessing,
	}

	var claimed atomic.Bool
	f.jobs.EXPECT().ClaimNext(gomock.Any(), time.Minute).DoAndReturn(
		func(context.Context, time.Duration) (*model.MintJob, error) {
			if !claimed.CompareAndSwap(false, true) {
				return nil, model.ErrNoJobsAvailable
			}
			return job, nil
		}).AnyTimes()

	f.events.EXPECT().GetByID(gomock.Any(), event.ID).Return(event, nil)
	f.tickets.EXPECT().ListByIDs(gomock.Any(), job.TicketIDs).Return([]*model.Ticket{ticket}, nil)
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("ipfs://x", nil)
	f.chain.EXPECT().Mint(gomock.Any(), gomock.Any()).Return("0xtx", nil)
	f.chain.EXPECT().WaitForConfirmation(gomock.Any(), "0xtx").Return(nil)
	f.tickets.EXPECT().RecordMintResults(gomock.Any(), gomock.Any()).Return(nil)

	minted := make(chan struct{})
	f.jobs.EXPECT().MarkMinted(gomock.Any(), job.ID, []int64{1}).DoAndReturn(
		func(context.Context, string, []int64) error {
			close(minted)
			return nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.runner.Run(ctx) }()

	select {
	case <-minted:
	case <-time.After(2 * time.Second):
		t.Fatal("job was never minted")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}
}

func TestRunner_JobFailureKeepsPoolRunning(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newWorkerFixture(t, ctrl)

	job := &model.MintJob{ID: "job-1", EventID: "ev-1", TicketIDs: []string{"tk-a"}}

	var claimed atomic.Bool
	f.jobs.EXPECT().ClaimNext(gomock.Any(), time.Minute).DoAndReturn(
		func(context.Context, time.Duration) (*model.MintJob, error) {
			if !claimed.CompareAndSwap(false, true) {
				return nil, model.ErrNoJobsAvailable
			}
			return job, nil
		}).AnyTimes()

	// The event lookup fails; the minter parks the job as failed and the
	// pool keeps draining instead of shutting down.
	f.events.EXPECT().GetByID(gomock.Any(), "ev-1").Return(nil, errors.New("db flake"))
	f.tickets.EXPECT().MarkMintFailed(gomock.Any(), job.TicketIDs).Return(1, nil)

	failed := make(chan struct{})
	f.jobs.EXPECT().MarkFailed(gomock.Any(), job.ID, gomock.Any()).DoAndReturn(
		func(context.Context, string, string) error {
			close(failed)
			return nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.runner.Run(ctx) }()

	select {
	case <-failed:
	case <-time.After(2 * time.Second):
		t.Fatal("job was never marked failed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}
}

func TestRunner_FatalClaimErrorStopsPool(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newWorkerFixture(t, ctrl)

	f.jobs.EXPECT().ClaimNext(gomock.Any(), time.Minute).
		Return(nil, errors.New("connection refused")).MinTimes(1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := f.runner.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claim next")
}
