package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ticketmint/ticketmint/internal/domain/model"
	apperrors "github.com/ticketmint/ticketmint/internal/errors"
	"github.com/ticketmint/ticketmint/internal/mocks"
)

func newQueueService(t *testing.T, ctrl *gomock.Controller) (*MintQueueService, *mocks.MockMintJobRepository, *mocks.MockCacheRepository) {
	t.Helper()
	repo := mocks.NewMockMintJobRepository(ctrl)
	cache := mocks.NewMockCacheRepository(ctrl)
	svc, err := NewMintQueueService(MintQueueServiceOptions{Jobs: repo, Cache: cache})
	require.NoError(t, err)
	return svc, repo, cache
}

func TestNewMintQueueService_RequiresRepo(t *testing.T) {
	_, err := NewMintQueueService(MintQueueServiceOptions{})
	assert.Error(t, err)
}

func TestMintQueue_Enqueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, repo, cache := newQueueService(t, ctrl)
	ctx := context.Background()

	req := &model.EnqueueMintJobRequest{EventID: "ev-1", TicketIDs: []string{"tk-a", "tk-b"}}
	job := &model.MintJob{ID: "job-1", EventID: "ev-1", TicketIDs: req.TicketIDs, Status: model.MintJobStatusPending}

	repo.EXPECT().Enqueue(ctx, req).Return(job, nil)
	cache.EXPECT().Delete(ctx, "ticketmint:mint_status:ev-1").Return(true, nil)

	got, err := svc.Enqueue(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, job, got)
}

func TestMintQueue_Enqueue_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _, _ := newQueueService(t, ctrl)

	tests := []struct {
		name string
		req  *model.EnqueueMintJobRequest
	}{
		{"missing event", &model.EnqueueMintJobRequest{TicketIDs: []string{"tk-a"}}},
		{"no tickets", &model.EnqueueMintJobRequest{EventID: "ev-1"}},
		{"duplicate ticket", &model.EnqueueMintJobRequest{EventID: "ev-1", TicketIDs: []string{"tk-a", "tk-a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Enqueue(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestMintQueue_MarkProcessing_Conflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, repo, _ := newQueueService(t, ctrl)
	ctx := context.Background()

	repo.EXPECT().MarkProcessing(ctx, "job-1", time.Minute).
		Return(nil, apperrors.Conflict("job is not pending"))

	_, err := svc.MarkProcessing(ctx, "job-1", time.Minute)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestMintQueue_ClaimNext_Drained(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, repo, _ := newQueueService(t, ctrl)
	ctx := context.Background()

	repo.EXPECT().ClaimNext(ctx, time.Minute).Return(nil, model.ErrNoJobsAvailable)

	_, err := svc.ClaimNext(ctx, time.Minute)
	assert.ErrorIs(t, err, model.ErrNoJobsAvailable)
}

func TestMintQueue_ClaimNext_InvalidatesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, repo, cache := newQueueService(t, ctrl)
	ctx := context.Background()

	job := &model.MintJob{ID: "job-1", EventID: "ev-1", Status: model.MintJobStatusProcessing}
	repo.EXPECT().ClaimNext(ctx, time.Minute).Return(job, nil)
	cache.EXPECT().Delete(ctx, "ticketmint:mint_status:ev-1").Return(true, nil)

	got, err := svc.ClaimNext(ctx, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, job, got)
}

func TestMintQueue_MarkMinted(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, repo, cache := newQueueService(t, ctrl)
	ctx := context.Background()

	job := &model.MintJob{ID: "job-1", EventID: "ev-1"}
	repo.EXPECT().MarkMinted(ctx, "job-1", []int64{1, 2}).Return(nil)
	cache.EXPECT().Delete(ctx, "ticketmint:mint_status:ev-1").Return(true, nil)

	require.NoError(t, svc.MarkMinted(ctx, job, []int64{1, 2}))
}

func TestMintQueue_MarkFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, repo, cache := newQueueService(t, ctrl)
	ctx := context.Background()

	job := &model.MintJob{ID: "job-1", EventID: "ev-1"}
	repo.EXPECT().MarkFailed(ctx, "job-1", "tx reverted").Return(nil)
	cache.EXPECT().Delete(ctx, "ticketmint:mint_status:ev-1").Return(true, nil)

	require.NoError(t, svc.MarkFailed(ctx, job, "tx reverted"))
}
