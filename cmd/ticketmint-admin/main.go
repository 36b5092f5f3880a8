// Command ticketmint-admin provides operational commands for the ticketing
// platform: migrations, development seeding, and mint-queue maintenance.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ticketmint/ticketmint/config"
	"github.com/ticketmint/ticketmint/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const defaultCommandTimeout = 5 * time.Minute

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrateCommand,
		},
		"db-seed": {
			name:        "db-seed",
			description: "Run database migrations and seed development data",
			run:         runDBSeedCommand,
		},
		"mint-status": {
			name:        "mint-status",
			description: "Print the mint status rollup for an event",
			run:         runMintStatusCommand,
		},
		"retry-failed": {
			name:        "retry-failed",
			description: "Return an event's failed mint jobs to the queue",
			run:         runRetryFailedCommand,
		},
		"fail-stale": {
			name:        "fail-stale",
			description: "Sweep processing jobs whose lease expired (one reaper pass)",
			run:         runFailStaleCommand,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: ticketmint-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	for _, c := range commands() {
		if err := writef(os.Stdout, "  %-16s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func parseTimeoutFlags(name string, args []string) (time.Duration, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	timeout := fs.Duration("timeout", defaultCommandTimeout, "command timeout")
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	return *timeout, nil
}

func parseEventFlags(name string, args []string) (string, time.Duration, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	eventID := fs.String("event", "", "event id (required)")
	timeout := fs.Duration("timeout", defaultCommandTimeout, "command timeout")
	if err := fs.Parse(args); err != nil {
		return "", 0, err
	}
	if *eventID == "" {
		return "", 0, fmt.Errorf("%s: -event is required", name)
	}
	return *eventID, *timeout, nil
}
