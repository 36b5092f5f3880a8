package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketmint/ticketmint/internal/domain/model"
	apperrors "github.com/ticketmint/ticketmint/internal/errors"
	"github.com/ticketmint/ticketmint/internal/testutil"
)

const testLease = 30 * time.Second

func enqueueTestJob(t *testing.T, db *sql.DB, repo *MintJobRepo, eventID string, startNumber int64, count int) *model.MintJob {
	t.Helper()

	ids := make([]string, count)
	for i := range count {
		ids[i] = testutil.InsertTicket(t, db, eventID, startNumber+int64(i), model.MintStatusPending)
	}
	job, err := repo.Enqueue(context.Background(), &model.EnqueueMintJobRequest{
		EventID:   eventID,
		TicketIDs: ids,
	})
	require.NoError(t, err)
	return job
}

func TestMintJobRepo_EnqueueAndGet(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewMintJobRepo(db, MintJobRepoConfig{})
		ev := createTestEvent(t, db)

		job := enqueueTestJob(t, db, repo, ev.ID, 1, 3)
		assert.Equal(t, model.MintJobStatusPending, job.Status)
		assert.Equal(t, 0, job.RetryCount)
		assert.Nil(t, job.ProcessedAt)

		got, err := repo.GetByID(context.Background(), job.ID)
		require.NoError(t, err)
		assert.Equal(t, job.TicketIDs, got.TicketIDs)
	})
}

func TestMintJobRepo_EnqueueRejectsForeignTickets(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewMintJobRepo(db, MintJobRepoConfig{})
		ev := createTestEvent(t, db)
		other := createTestEvent(t, db)

		foreign := testutil.InsertTicket(t, db, other.ID, 1, model.MintStatusPending)
		_, err := repo.Enqueue(context.Background(), &model.EnqueueMintJobRequest{
			EventID:   ev.ID,
			TicketIDs: []string{foreign},
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestMintJobRepo_MarkProcessingCAS(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewMintJobRepo(db, MintJobRepoConfig{})
		ev := createTestEvent(t, db)
		job := enqueueTestJob(t, db, repo, ev.ID, 1, 2)

		claimed, err := repo.MarkProcessing(context.Background(), job.ID, testLease)
		require.NoError(t, err)
		assert.Equal(t, model.MintJobStatusProcessing, claimed.Status)
		require.NotNil(t, claimed.LeaseExpiresAt)

		// The second claim loses the race.
		_, err = repo.MarkProcessing(context.Background(), job.ID, testLease)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestMintJobRepo_ClaimNextOldestFirst(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewMintJobRepo(db, MintJobRepoConfig{})
		evA := createTestEvent(t, db)
		evB := createTestEvent(t, db)

		first := enqueueTestJob(t, db, repo, evA.ID, 1, 1)
		second := enqueueTestJob(t, db, repo, evB.ID, 1, 1)

		claimed1, err := repo.ClaimNext(context.Background(), testLease)
		require.NoError(t, err)
		assert.Equal(t, first.ID, claimed1.ID)

		claimed2, err := repo.ClaimNext(context.Background(), testLease)
		require.NoError(t, err)
		assert.Equal(t, second.ID, claimed2.ID)

		_, err = repo.ClaimNext(context.Background(), testLease)
		require.ErrorIs(t, err, model.ErrNoJobsAvailable)
	})
}

func TestMintJobRepo_ClaimNextSerializesPerEvent(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewMintJobRepo(db, MintJobRepoConfig{})
		ev := createTestEvent(t, db)

		first := enqueueTestJob(t, db, repo, ev.ID, 1, 1)
		second := enqueueTestJob(t, db, repo, ev.ID, 2, 1)

		claimed, err := repo.ClaimNext(context.Background(), testLease)
		require.NoError(t, err)
		assert.Equal(t, first.ID, claimed.ID)

		// The event already has a job in flight; its second job must wait even
		// though it is pending.
		_, err = repo.ClaimNext(context.Background(), testLease)
		require.ErrorIs(t, err, model.ErrNoJobsAvailable)

		require.NoError(t, repo.MarkMinted(context.Background(), claimed.ID, []int64{1}))

		claimed2, err := repo.ClaimNext(context.Background(), testLease)
		require.NoError(t, err)
		assert.Equal(t, second.ID, claimed2.ID)
	})
}

func TestMintJobRepo_MarkMinted(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewMintJobRepo(db, MintJobRepoConfig{})
		ev := createTestEvent(t, db)
		job := enqueueTestJob(t, db, repo, ev.ID, 1, 2)

		_, err := repo.MarkProcessing(context.Background(), job.ID, testLease)
		require.NoError(t, err)

		require.NoError(t, repo.MarkMinted(context.Background(), job.ID, []int64{1, 2}))

		got, err := repo.GetByID(context.Background(), job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MintJobStatusMinted, got.Status)
		assert.NotNil(t, got.ProcessedAt)
		assert.Nil(t, got.LeaseExpiresAt)
	})
}

func TestMintJobRepo_MarkMintedTokenCountMismatch(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewMintJobRepo(db, MintJobRepoConfig{})
		ev := createTestEvent(t, db)
		job := enqueueTestJob(t, db, repo, ev.ID, 1, 2)

		_, err := repo.MarkProcessing(context.Background(), job.ID, testLease)
		require.NoError(t, err)

		err = repo.MarkMinted(context.Background(), job.ID, []int64{1})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))

		got, err := repo.GetByID(context.Background(), job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MintJobStatusProcessing, got.Status)
	})
}

func TestMintJobRepo_MarkMintedRequiresProcessing(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewMintJobRepo(db, MintJobRepoConfig{})
		ev := createTestEvent(t, db)
		job := enqueueTestJob(t, db, repo, ev.ID, 1, 1)

		err := repo.MarkMinted(context.Background(), job.ID, []int64{1})
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestMintJobRepo_MarkFailedAndResetFailed(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewMintJobRepo(db, MintJobRepoConfig{})
		ev := createTestEvent(t, db)
		job := enqueueTestJob(t, db, repo, ev.ID, 1, 1)

		_, err := repo.MarkProcessing(context.Background(), job.ID, testLease)
		require.NoError(t, err)
		require.NoError(t, repo.MarkFailed(context.Background(), job.ID, "gateway unreachable"))

		failed, err := repo.GetByID(context.Background(), job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MintJobStatusFailed, failed.Status)
		assert.Equal(t, 1, failed.RetryCount)
		require.NotNil(t, failed.ErrorMessage)
		assert.Equal(t, "gateway unreachable", *failed.ErrorMessage)

		reset, err := repo.ResetFailed(context.Background(), ev.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, reset)

		retried, err := repo.GetByID(context.Background(), job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MintJobStatusPending, retried.Status)
		assert.Equal(t, 0, retried.RetryCount)
		assert.Nil(t, retried.ErrorMessage)
	})
}

func TestMintJobRepo_ResetFailedOnlyTargetEvent(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewMintJobRepo(db, MintJobRepoConfig{})
		evA := createTestEvent(t, db)
		evB := createTestEvent(t, db)

		jobA := enqueueTestJob(t, db, repo, evA.ID, 1, 1)
		jobB := enqueueTestJob(t, db, repo, evB.ID, 1, 1)
		for _, job := range []*model.MintJob{jobA, jobB} {
			_, err := repo.MarkProcessing(context.Background(), job.ID, testLease)
			require.NoError(t, err)
			require.NoError(t, repo.MarkFailed(context.Background(), job.ID, "boom"))
		}

		reset, err := repo.ResetFailed(context.Background(), evA.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, reset)

		otherJob, err := repo.GetByID(context.Background(), jobB.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MintJobStatusFailed, otherJob.Status)
	})
}

func TestMintJobRepo_FailStale(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		tp := NewFixedTimeProvider(testutil.TestTime())
		repo := NewMintJobRepo(db, MintJobRepoConfig{TimeProvider: tp})
		ev := createTestEvent(t, db)

		stale := enqueueTestJob(t, db, repo, ev.ID, 1, 1)
		_, err := repo.MarkProcessing(context.Background(), stale.ID, time.Minute)
		require.NoError(t, err)

		// Nothing expired yet.
		swept, err := repo.FailStale(context.Background())
		require.NoError(t, err)
		assert.Zero(t, swept)

		tp.AddTime(2 * time.Minute)
		swept, err = repo.FailStale(context.Background())
		require.NoError(t, err)
		assert.EqualValues(t, 1, swept)

		got, err := repo.GetByID(context.Background(), stale.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MintJobStatusFailed, got.Status)
		require.NotNil(t, got.ErrorMessage)
		assert.Equal(t, failStaleErrorMessage, *got.ErrorMessage)
	})
}

func TestMintJobRepo_ListByEventNewestFirst(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewMintJobRepo(db, MintJobRepoConfig{})
		ev := createTestEvent(t, db)

		enqueueTestJob(t, db, repo, ev.ID, 1, 1)
		newest := enqueueTestJob(t, db, repo, ev.ID, 2, 1)

		jobs, err := repo.ListByEvent(context.Background(), ev.ID)
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		assert.Equal(t, newest.ID, jobs[0].ID)
	})
}
