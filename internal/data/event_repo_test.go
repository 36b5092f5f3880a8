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

func TestEventRepo_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewEventRepo(db)

		created, err := repo.Create(context.Background(), testutil.NewEvent().
			WithName("Mekong Sessions").
			WithVenue("Riverside Hall").
			Build())
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.Equal(t, "Mekong Sessions", created.Name)
		assert.Equal(t, model.MintModeQueued, created.MintMode)
		assert.True(t, created.MintConfigured())

		got, err := repo.GetByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.ContractAddress, got.ContractAddress)
	})
}

func TestEventRepo_CreateDefaultsMintMode(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewEventRepo(db)

		req := testutil.NewEvent().Build()
		req.MintMode = ""
		created, err := repo.Create(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, model.MintModeQueued, created.MintMode)
	})
}

func TestEventRepo_CreateInvalid(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewEventRepo(db)

		_, err := repo.Create(context.Background(), &model.CreateEventRequest{Name: "  "})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestEventRepo_GetByIDNotFound(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewEventRepo(db)

		_, err := repo.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestEventRepo_List(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewEventRepo(db)

		later := testutil.TestTime().Add(60 * 24 * time.Hour)
		_, err := repo.Create(context.Background(), testutil.NewEvent().
			WithName("Second").WithStartsAt(later).Build())
		require.NoError(t, err)
		_, err = repo.Create(context.Background(), testutil.NewEvent().
			WithName("First").WithStartsAt(testutil.TestTime()).Build())
		require.NoError(t, err)

		events, err := repo.List(context.Background())
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "First", events[0].Name)
		assert.Equal(t, "Second", events[1].Name)
	})
}

func TestEventRepo_UpdateMintConfig(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewEventRepo(db)

		created, err := repo.Create(context.Background(), testutil.NewEvent().WithoutMintConfig().Build())
		require.NoError(t, err)
		assert.False(t, created.MintConfigured())

		updated, err := repo.UpdateMintConfig(context.Background(), created.ID, &model.UpdateEventMintConfigRequest{
			ContractAddress: "0xabc",
			AdminWallet:     "0xdef",
			MintMode:        model.MintModeImmediate,
		})
		require.NoError(t, err)
		assert.Equal(t, "0xabc", updated.ContractAddress)
		assert.Equal(t, "0xdef", updated.AdminWallet)
		assert.Equal(t, model.MintModeImmediate, updated.MintMode)
		assert.True(t, updated.MintConfigured())

		// Omitting the mode keeps the existing one.
		kept, err := repo.UpdateMintConfig(context.Background(), created.ID, &model.UpdateEventMintConfigRequest{
			ContractAddress: "0xabc",
			AdminWallet:     "0xdef",
		})
		require.NoError(t, err)
		assert.Equal(t, model.MintModeImmediate, kept.MintMode)
	})
}

func TestEventRepo_UpdateMintConfigNotFound(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewEventRepo(db)

		_, err := repo.UpdateMintConfig(context.Background(), "00000000-0000-0000-0000-000000000000",
			&model.UpdateEventMintConfigRequest{ContractAddress: "0xabc", AdminWallet: "0xdef"})
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
