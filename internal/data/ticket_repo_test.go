package data

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketmint/ticketmint/internal/core"
	"github.com/ticketmint/ticketmint/internal/domain/model"
	"github.com/ticketmint/ticketmint/internal/domain/nft"
	apperrors "github.com/ticketmint/ticketmint/internal/errors"
	"github.com/ticketmint/ticketmint/internal/testutil"
)

func createTestEvent(t *testing.T, db *sql.DB) *model.Event {
	t.Helper()
	repo := NewEventRepo(db)
	ev, err := repo.Create(context.Background(), testutil.NewEvent().Build())
	require.NoError(t, err)
	return ev
}

func issueParams(ev *model.Event, req *model.IssueTicketsRequest, enqueue bool) core.IssueBatchParams {
	return core.IssueBatchParams{
		Event:   ev,
		Request: req,
		BuildMetadata: func(num int64) model.NFTMetadata {
			return nft.Build(nft.BuildInput{
				TicketName:   req.TicketName,
				TicketNumber: num,
				TotalSupply:  req.Quantity,
				Event:        ev,
			})
		},
		EnqueueJob: enqueue,
	}
}

func TestTicketRepo_IssueBatchSequentialNumbers(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewTicketRepo(db)
		ev := createTestEvent(t, db)

		first, err := repo.IssueBatch(context.Background(),
			issueParams(ev, testutil.NewIssueRequest(ev.ID).WithQuantity(3).Build(), false))
		require.NoError(t, err)
		require.Len(t, first.Tickets, 3)
		assert.Equal(t, int64(1), first.StartingNumber)
		for i, ticket := range first.Tickets {
			assert.Equal(t, int64(i+1), ticket.TicketNumber)
			assert.Equal(t, model.MintStatusPending, ticket.MintStatus)
			require.NotNil(t, ticket.Metadata)
			num, ok := ticket.Metadata.Attribute(nft.TraitTicketNumber)
			require.True(t, ok)
			assert.EqualValues(t, i+1, num)
		}

		// The second batch continues where the first left off.
		second, err := repo.IssueBatch(context.Background(),
			issueParams(ev, testutil.NewIssueRequest(ev.ID).WithQuantity(2).Build(), false))
		require.NoError(t, err)
		assert.Equal(t, int64(4), second.StartingNumber)
		assert.Equal(t, int64(5), second.Tickets[1].TicketNumber)
	})
}

func TestTicketRepo_IssueBatchConcurrentNoOverlap(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewTicketRepo(db)
		ev := createTestEvent(t, db)

		const workers = 4
		const perBatch = 10

		runner := testutil.NewConcurrentTestRunner(t, db)
		funcs := make([]func() error, workers)
		for i := range workers {
			funcs[i] = func() error {
				_, err := repo.IssueBatch(context.Background(),
					issueParams(ev, testutil.NewIssueRequest(ev.ID).WithQuantity(perBatch).Build(), false))
				return err
			}
		}
		runner.AssertNoErrors(runner.RunConcurrent(funcs...))

		tickets, err := repo.ListByEvent(context.Background(), ev.ID)
		require.NoError(t, err)
		require.Len(t, tickets, workers*perBatch)
		for i, ticket := range tickets {
			assert.Equal(t, int64(i+1), ticket.TicketNumber, "numbers must be gap-free and unique")
		}
	})
}

func TestTicketRepo_IssueBatchEnqueuesJobAtomically(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewTicketRepo(db)
		ev := createTestEvent(t, db)

		result, err := repo.IssueBatch(context.Background(),
			issueParams(ev, testutil.NewIssueRequest(ev.ID).WithQuantity(4).Build(), true))
		require.NoError(t, err)
		require.NotNil(t, result.Job)
		assert.Equal(t, model.MintJobStatusPending, result.Job.Status)
		require.Len(t, result.Job.TicketIDs, 4)
		for i, ticket := range result.Tickets {
			assert.Equal(t, ticket.ID, result.Job.TicketIDs[i], "job preserves ticket-number order")
		}
	})
}

func TestTicketRepo_IssueBatchInvalidQuantity(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewTicketRepo(db)
		ev := createTestEvent(t, db)

		for _, quantity := range []int{0, 1001} {
			_, err := repo.IssueBatch(context.Background(),
				issueParams(ev, testutil.NewIssueRequest(ev.ID).WithQuantity(quantity).Build(), false))
			require.Error(t, err, "quantity %d", quantity)
			assert.True(t, apperrors.IsValidation(err))
		}
	})
}

func TestTicketRepo_ListByIDsPreservesOrder(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewTicketRepo(db)
		ev := createTestEvent(t, db)

		result, err := repo.IssueBatch(context.Background(),
			issueParams(ev, testutil.NewIssueRequest(ev.ID).WithQuantity(3).Build(), false))
		require.NoError(t, err)

		// Request in reverse order and expect the same order back.
		ids := []string{result.Tickets[2].ID, result.Tickets[0].ID, result.Tickets[1].ID}
		tickets, err := repo.ListByIDs(context.Background(), ids)
		require.NoError(t, err)
		require.Len(t, tickets, 3)
		for i, id := range ids {
			assert.Equal(t, id, tickets[i].ID)
		}
	})
}

func TestTicketRepo_RecordMintResults(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewTicketRepo(db)
		ev := createTestEvent(t, db)

		result, err := repo.IssueBatch(context.Background(),
			issueParams(ev, testutil.NewIssueRequest(ev.ID).WithQuantity(2).Build(), false))
		require.NoError(t, err)

		results := []core.MintResult{
			{TicketID: result.Tickets[0].ID, TokenID: result.Tickets[0].TicketNumber},
			{TicketID: result.Tickets[1].ID, TokenID: result.Tickets[1].TicketNumber},
		}
		require.NoError(t, repo.RecordMintResults(context.Background(), results))

		for _, res := range results {
			ticket, getErr := repo.GetByID(context.Background(), res.TicketID)
			require.NoError(t, getErr)
			assert.Equal(t, model.MintStatusMinted, ticket.MintStatus)
			require.NotNil(t, ticket.TokenID)
			assert.Equal(t, res.TokenID, *ticket.TokenID)
		}
	})
}

func TestTicketRepo_RecordMintResultsAllOrNothing(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewTicketRepo(db)
		ev := createTestEvent(t, db)

		result, err := repo.IssueBatch(context.Background(),
			issueParams(ev, testutil.NewIssueRequest(ev.ID).WithQuantity(2).Build(), false))
		require.NoError(t, err)

		// One real ticket, one that does not exist: nothing may change.
		err = repo.RecordMintResults(context.Background(), []core.MintResult{
			{TicketID: result.Tickets[0].ID, TokenID: 1},
			{TicketID: "00000000-0000-0000-0000-000000000000", TokenID: 2},
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))

		ticket, err := repo.GetByID(context.Background(), result.Tickets[0].ID)
		require.NoError(t, err)
		assert.Equal(t, model.MintStatusPending, ticket.MintStatus)
		assert.Nil(t, ticket.TokenID)
	})
}

func TestTicketRepo_MarkMintFailed(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewTicketRepo(db)
		ev := createTestEvent(t, db)

		result, err := repo.IssueBatch(context.Background(),
			issueParams(ev, testutil.NewIssueRequest(ev.ID).WithQuantity(2).Build(), false))
		require.NoError(t, err)

		// Mint one ticket first; MarkMintFailed must leave it alone.
		require.NoError(t, repo.RecordMintResults(context.Background(), []core.MintResult{
			{TicketID: result.Tickets[0].ID, TokenID: 1},
		}))

		ids := []string{result.Tickets[0].ID, result.Tickets[1].ID}
		updated, err := repo.MarkMintFailed(context.Background(), ids)
		require.NoError(t, err)
		assert.Equal(t, 1, updated)

		minted, err := repo.GetByID(context.Background(), result.Tickets[0].ID)
		require.NoError(t, err)
		assert.Equal(t, model.MintStatusMinted, minted.MintStatus)

		failed, err := repo.GetByID(context.Background(), result.Tickets[1].ID)
		require.NoError(t, err)
		assert.Equal(t, model.MintStatusFailed, failed.MintStatus)
	})
}

func TestTicketRepo_DeleteGuardedByMintStatus(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewTicketRepo(db)
		ev := createTestEvent(t, db)

		pendingID := testutil.InsertTicket(t, db, ev.ID, 1, model.MintStatusPending)
		failedID := testutil.InsertTicket(t, db, ev.ID, 2, model.MintStatusFailed)
		mintedID := testutil.InsertTicket(t, db, ev.ID, 3, model.MintStatusMinted)
		transferredID := testutil.InsertTicket(t, db, ev.ID, 4, model.MintStatusTransferred)

		require.NoError(t, repo.Delete(context.Background(), pendingID))
		require.NoError(t, repo.Delete(context.Background(), failedID))

		err := repo.Delete(context.Background(), mintedID)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))

		err = repo.Delete(context.Background(), transferredID)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))

		err = repo.Delete(context.Background(), pendingID)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestTicketRepo_DeleteByEvent(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewTicketRepo(db)
		ev := createTestEvent(t, db)

		testutil.InsertTicket(t, db, ev.ID, 1, model.MintStatusPending)
		testutil.InsertTicket(t, db, ev.ID, 2, model.MintStatusFailed)
		mintedID := testutil.InsertTicket(t, db, ev.ID, 3, model.MintStatusMinted)

		deleted, err := repo.DeleteByEvent(context.Background(), ev.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, deleted)

		remaining, err := repo.ListByEvent(context.Background(), ev.ID)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, mintedID, remaining[0].ID)
	})
}

func TestTicketRepo_CountsByMintStatus(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewTicketRepo(db)
		ev := createTestEvent(t, db)

		statuses := []model.MintStatus{
			model.MintStatusPending, model.MintStatusPending,
			model.MintStatusMinted,
			model.MintStatusFailed,
			model.MintStatusTransferred,
		}
		for i, status := range statuses {
			testutil.InsertTicket(t, db, ev.ID, int64(i+1), status)
		}

		counts, err := repo.CountsByMintStatus(context.Background(), ev.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, counts.Total)
		assert.Equal(t, 2, counts.Pending)
		assert.Equal(t, 1, counts.Minted)
		assert.Equal(t, 1, counts.Failed)
		assert.Equal(t, 1, counts.Transferred)
	})
}

func TestTicketRepo_PriceRoundTrip(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewTicketRepo(db)
		ev := createTestEvent(t, db)

		result, err := repo.IssueBatch(context.Background(),
			issueParams(ev, testutil.NewIssueRequest(ev.ID).WithQuantity(1).WithPrice("49.95").Build(), false))
		require.NoError(t, err)

		ticket, err := repo.GetByID(context.Background(), result.Tickets[0].ID)
		require.NoError(t, err)
		require.NotNil(t, ticket.Price)
		assert.Equal(t, "49.95", ticket.Price.String())
	})
}

func TestTicketRepo_LargestAllowedBatch(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	if testing.Short() {
		t.Skip("skipping large batch test in short mode")
	}

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewTicketRepo(db)
		ev := createTestEvent(t, db)

		result, err := repo.IssueBatch(context.Background(),
			issueParams(ev, testutil.NewIssueRequest(ev.ID).WithQuantity(model.MaxIssueQuantity).Build(), false))
		require.NoError(t, err)
		require.Len(t, result.Tickets, model.MaxIssueQuantity)
		last := result.Tickets[len(result.Tickets)-1]
		assert.Equal(t, int64(model.MaxIssueQuantity), last.TicketNumber)
		require.NotNil(t, last.Metadata)
		assert.Equal(t, fmt.Sprintf("General Admission #%d", model.MaxIssueQuantity), last.Metadata.Name)
	})
}
