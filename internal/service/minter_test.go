package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ticketmint/ticketmint/internal/core"
	"github.com/ticketmint/ticketmint/internal/domain/model"
	"github.com/ticketmint/ticketmint/internal/mocks"
	"github.com/ticketmint/ticketmint/internal/observability/notify"
	"github.com/ticketmint/ticketmint/internal/service/failurenotifier"
)

type minterFixture struct {
	events  *mocks.MockEventRepository
	tickets *mocks.MockTicketRepository
	jobs    *mocks.MockMintJobRepository
	chain   *mocks.MockChainClient
	store   *mocks.MockMetadataStore

	queue  *MintQueueService
	minter *BlockchainMinterService

	mu       sync.Mutex
	payloads []notify.MintFailurePayload
}

func newMinterFixture(t *testing.T, ctrl *gomock.Controller) *minterFixture {
	t.Helper()

	f := &minterFixture{
		events:  mocks.NewMockEventRepository(ctrl),
		tickets: mocks.NewMockTicketRepository(ctrl),
		jobs:    mocks.NewMockMintJobRepository(ctrl),
		chain:   mocks.NewMockChainClient(ctrl),
		store:   mocks.NewMockMetadataStore(ctrl),
	}

	queue, err := NewMintQueueService(MintQueueServiceOptions{Jobs: f.jobs})
	require.NoError(t, err)
	f.queue = queue

	notifier := failurenotifier.NewService(failurenotifier.Options{
		Sinks: []failurenotifier.SinkRegistration{{
			Name: "capture",
			Sink: notify.SinkFunc(func(_ context.Context, payload notify.MintFailurePayload) error {
				f.mu.Lock()
				defer f.mu.Unlock()
				f.payloads = append(f.payloads, payload)
				return nil
			}),
		}},
	})

	f.minter, err = NewBlockchainMinterService(BlockchainMinterOptions{
		Events:              f.events,
		Tickets:             f.tickets,
		Queue:               queue,
		Chain:               f.chain,
		Store:               f.store,
		FailureNotifier:     notifier,
		UploadConcurrency:   2,
		ConfirmationTimeout: time.Second,
	})
	require.NoError(t, err)
	return f
}

func (f *minterFixture) capturedPayloads() []notify.MintFailurePayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.MintFailurePayload(nil), f.payloads...)
}

func mintableEvent() *model.Event {
	return &model.Event{
		ID:              "ev-1",
		Name:            "Summer Festival",
		ContractAddress: "0xc0de",
		AdminWallet:     "0xad1",
		MintMode:        model.MintModeQueued,
	}
}

func mintableTickets(eventID string, numbers ...int64) []*model.Ticket {
	tickets := make([]*model.Ticket, len(numbers))
	for i, n := range numbers {
		tickets[i] = &model.Ticket{
			ID:           "tk-" + string(rune('a'+i)),
			EventID:      eventID,
			TicketNumber: n,
			Metadata:     &model.NFTMetadata{Name: "Summer Festival"},
		}
	}
	return tickets
}

func jobFor(tickets []*model.Ticket) *model.MintJob {
	ids := make([]string, len(tickets))
	for i, ticket := range tickets {
		ids[i] = ticket.ID
	}
	return &model.MintJob{
		ID:        "job-1",
		EventID:   tickets[0].EventID,
		TicketIDs: ids,
		Status:    model.MintJobStatusProcessing,
	}
}

func TestNewBlockchainMinterService_RequiredOptions(t *testing.T) {
	ctrl := gomock.NewController(t)
	queue, err := NewMintQueueService(MintQueueServiceOptions{Jobs: mocks.NewMockMintJobRepository(ctrl)})
	require.NoError(t, err)

	valid := BlockchainMinterOptions{
		Events:  mocks.NewMockEventRepository(ctrl),
		Tickets: mocks.NewMockTicketRepository(ctrl),
		Queue:   queue,
		Chain:   mocks.NewMockChainClient(ctrl),
		Store:   mocks.NewMockMetadataStore(ctrl),
	}

	tests := []struct {
		name   string
		mutate func(*BlockchainMinterOptions)
	}{
		{"missing events", func(o *BlockchainMinterOptions) { o.Events = nil }},
		{"missing tickets", func(o *BlockchainMinterOptions) { o.Tickets = nil }},
		{"missing queue", func(o *BlockchainMinterOptions) { o.Queue = nil }},
		{"missing chain", func(o *BlockchainMinterOptions) { o.Chain = nil }},
		{"missing store", func(o *BlockchainMinterOptions) { o.Store = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.mutate(&opts)
			_, err := NewBlockchainMinterService(opts)
			assert.Error(t, err)
		})
	}

	svc, err := NewBlockchainMinterService(valid)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestBlockchainMinter_ProcessJob_BatchSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newMinterFixture(t, ctrl)
	ctx := context.Background()

	event := mintableEvent()
	tickets := mintableTickets(event.ID, 10, 11, 12)
	job := jobFor(tickets)

	f.events.EXPECT().GetByID(ctx, event.ID).Return(event, nil)
	f.tickets.EXPECT().ListByIDs(ctx, job.TicketIDs).Return(tickets, nil)
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("ipfs://a", nil).Times(3)

	f.chain.EXPECT().BatchMint(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req core.BatchMintRequest) (string, error) {
			assert.Equal(t, event.ContractAddress, req.ContractAddress)
			assert.Equal(t, event.AdminWallet, req.Recipient)
			assert.Equal(t, []int64{10, 11, 12}, req.TokenIDs)
			assert.Len(t, req.URIs, 3)
			return "0xtx", nil
		})
	f.chain.EXPECT().WaitForConfirmation(gomock.Any(), "0xtx").Return(nil)

	gomock.InOrder(
		f.tickets.EXPECT().RecordMintResults(gomock.Any(), []core.MintResult{
			{TicketID: tickets[0].ID, TokenID: 10},
			{TicketID: tickets[1].ID, TokenID: 11},
			{TicketID: tickets[2].ID, TokenID: 12},
		}).Return(nil),
		f.jobs.EXPECT().MarkMinted(gomock.Any(), job.ID, []int64{10, 11, 12}).Return(nil),
	)

	require.NoError(t, f.minter.ProcessJob(ctx, job))
	assert.Empty(t, f.capturedPayloads())
}

func TestBlockchainMinter_ProcessJob_SingleTicketUsesMint(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newMinterFixture(t, ctrl)
	ctx := context.Background()

	event := mintableEvent()
	tickets := mintableTickets(event.ID, 42)
	job := jobFor(tickets)

	f.events.EXPECT().GetByID(ctx, event.ID).Return(event, nil)
	f.tickets.EXPECT().ListByIDs(ctx, job.TicketIDs).Return(tickets, nil)
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("ipfs://solo", nil)

	f.chain.EXPECT().Mint(gomock.Any(), core.MintRequest{
		ContractAddress: event.ContractAddress,
		Recipient:       event.AdminWallet,
		TokenID:         42,
		URI:             "ipfs://solo",
	}).Return("0xtx", nil)
	f.chain.EXPECT().WaitForConfirmation(gomock.Any(), "0xtx").Return(nil)

	f.tickets.EXPECT().RecordMintResults(gomock.Any(), gomock.Any()).Return(nil)
	f.jobs.EXPECT().MarkMinted(gomock.Any(), job.ID, []int64{42}).Return(nil)

	require.NoError(t, f.minter.ProcessJob(ctx, job))
}

func TestBlockchainMinter_ProcessJob_UploadFailureNeverReachesChain(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newMinterFixture(t, ctrl)
	ctx := context.Background()

	event := mintableEvent()
	tickets := mintableTickets(event.ID, 1, 2, 3)
	job := jobFor(tickets)

	f.events.EXPECT().GetByID(ctx, event.ID).Return(event, nil)
	f.tickets.EXPECT().ListByIDs(ctx, job.TicketIDs).Return(tickets, nil)
	// Uploads run concurrently; the siblings of the failing upload may or may
	// not start before the group cancels.
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("", errors.New("pinning unavailable"))
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("ipfs://x", nil).AnyTimes()

	f.tickets.EXPECT().MarkMintFailed(gomock.Any(), job.TicketIDs).Return(3, nil)
	f.jobs.EXPECT().MarkFailed(gomock.Any(), job.ID, gomock.Any()).Return(nil)

	err := f.minter.ProcessJob(ctx, job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload metadata")

	payloads := f.capturedPayloads()
	require.Len(t, payloads, 1)
	assert.Equal(t, job.ID, payloads[0].JobID)
	assert.Equal(t, event.Name, payloads[0].EventName)
	assert.Equal(t, 3, payloads[0].TicketCount)
}

func TestBlockchainMinter_ProcessJob_ConfirmationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newMinterFixture(t, ctrl)
	ctx := context.Background()

	event := mintableEvent()
	tickets := mintableTickets(event.ID, 7, 8)
	job := jobFor(tickets)

	f.events.EXPECT().GetByID(ctx, event.ID).Return(event, nil)
	f.tickets.EXPECT().ListByIDs(ctx, job.TicketIDs).Return(tickets, nil)
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("ipfs://x", nil).Times(2)
	f.chain.EXPECT().BatchMint(gomock.Any(), gomock.Any()).Return("0xtx", nil)
	f.chain.EXPECT().WaitForConfirmation(gomock.Any(), "0xtx").Return(errors.New("transaction reverted"))

	f.tickets.EXPECT().MarkMintFailed(gomock.Any(), job.TicketIDs).Return(2, nil)
	f.jobs.EXPECT().MarkFailed(gomock.Any(), job.ID, gomock.Any()).Return(nil)

	err := f.minter.ProcessJob(ctx, job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confirm transaction")
}

func TestBlockchainMinter_ProcessJob_WriteBackFailureKeepsTickets(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newMinterFixture(t, ctrl)
	ctx := context.Background()

	event := mintableEvent()
	tickets := mintableTickets(event.ID, 5)
	job := jobFor(tickets)

	f.events.EXPECT().GetByID(ctx, event.ID).Return(event, nil)
	f.tickets.EXPECT().ListByIDs(ctx, job.TicketIDs).Return(tickets, nil)
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any()).Return("ipfs://x", nil)
	f.chain.EXPECT().Mint(gomock.Any(), gomock.Any()).Return("0xtx", nil)
	f.chain.EXPECT().WaitForConfirmation(gomock.Any(), "0xtx").Return(nil)

	f.tickets.EXPECT().RecordMintResults(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
	// The tokens exist on chain, so the tickets must not be flipped to failed.
	f.jobs.EXPECT().MarkFailed(gomock.Any(), job.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, msg string) error {
			assert.Contains(t, msg, "0xtx")
			return nil
		})

	err := f.minter.ProcessJob(ctx, job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0xtx")
}

func TestBlockchainMinter_ProcessJob_UnconfiguredEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newMinterFixture(t, ctrl)
	ctx := context.Background()

	event := mintableEvent()
	event.ContractAddress = ""
	tickets := mintableTickets(event.ID, 1)
	job := jobFor(tickets)

	f.events.EXPECT().GetByID(ctx, event.ID).Return(event, nil)
	f.tickets.EXPECT().MarkMintFailed(gomock.Any(), job.TicketIDs).Return(1, nil)
	f.jobs.EXPECT().MarkFailed(gomock.Any(), job.ID, gomock.Any()).Return(nil)

	err := f.minter.ProcessJob(ctx, job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mint configuration")
}

func TestBlockchainMinter_ProcessJob_MissingTickets(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newMinterFixture(t, ctrl)
	ctx := context.Background()

	event := mintableEvent()
	tickets := mintableTickets(event.ID, 1, 2)
	job := jobFor(tickets)

	f.events.EXPECT().GetByID(ctx, event.ID).Return(event, nil)
	f.tickets.EXPECT().ListByIDs(ctx, job.TicketIDs).Return(tickets[:1], nil)
	f.tickets.EXPECT().MarkMintFailed(gomock.Any(), job.TicketIDs).Return(2, nil)
	f.jobs.EXPECT().MarkFailed(gomock.Any(), job.ID, gomock.Any()).Return(nil)

	err := f.minter.ProcessJob(ctx, job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 tickets but 1 exist")
}
