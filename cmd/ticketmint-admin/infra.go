package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ticketmint/ticketmint/config"
	"github.com/ticketmint/ticketmint/internal/bootstrap"
)

// connectDB opens the admin database connection. Admin commands never need
// Redis: they operate on the durable queue, and a stale status cache entry
// ages out on its own TTL.
func connectDB(logger *slog.Logger, cfg *config.AppConfig) (*sql.DB, error) {
	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: cfg.Postgres,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return db, nil
}

func closeDB(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Warn("db close failed", "error", err)
	}
}

// bootstrapMigrations applies migrations with the admin command's logger.
func bootstrapMigrations(ctx context.Context, cmdCtx *commandContext, db *sql.DB) error {
	return bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
}
