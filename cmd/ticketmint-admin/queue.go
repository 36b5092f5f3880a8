package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ticketmint/ticketmint/internal/data"
	"github.com/ticketmint/ticketmint/internal/devseed"
	"github.com/ticketmint/ticketmint/internal/service"
)

func runMigrateCommand(cmdCtx *commandContext, args []string) error {
	timeout, err := parseTimeoutFlags("migrate", args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, timeout)
	defer cancel()

	db, err := connectDB(cmdCtx.Logger, &cmdCtx.Config)
	if err != nil {
		return err
	}
	defer closeDB(db, cmdCtx.Logger)

	return bootstrapMigrations(ctx, cmdCtx, db)
}

func runDBSeedCommand(cmdCtx *commandContext, args []string) error {
	timeout, err := parseTimeoutFlags("db-seed", args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, timeout)
	defer cancel()

	db, err := connectDB(cmdCtx.Logger, &cmdCtx.Config)
	if err != nil {
		return err
	}
	defer closeDB(db, cmdCtx.Logger)

	if err := bootstrapMigrations(ctx, cmdCtx, db); err != nil {
		return err
	}

	return devseed.Run(ctx, devseed.NewServices(db), cmdCtx.Logger)
}

func runMintStatusCommand(cmdCtx *commandContext, args []string) error {
	eventID, timeout, err := parseEventFlags("mint-status", args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, timeout)
	defer cancel()

	db, err := connectDB(cmdCtx.Logger, &cmdCtx.Config)
	if err != nil {
		return err
	}
	defer closeDB(db, cmdCtx.Logger)

	status, err := service.NewStatusAggregator(service.StatusAggregatorOptions{
		Tickets: data.NewTicketRepo(db),
		Jobs:    data.NewMintJobRepo(db, data.MintJobRepoConfig{Logger: cmdCtx.Logger}),
	})
	if err != nil {
		return err
	}

	summary, err := status.Summary(ctx, eventID)
	if err != nil {
		return err
	}

	if err := writef(os.Stdout,
		"tickets: total=%d pending=%d minted=%d failed=%d transferred=%d\n\n",
		summary.Total, summary.Pending, summary.Minted, summary.Failed, summary.Transferred,
	); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tSTATUS\tTICKETS\tRETRIES\tCREATED\tERROR")
	for _, job := range summary.QueueJobs {
		errMsg := ""
		if job.ErrorMessage != nil {
			errMsg = *job.ErrorMessage
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			job.JobID, job.Status, job.TicketCount, job.RetryCount,
			job.CreatedAt.Format("2006-01-02 15:04:05"), errMsg)
	}
	return w.Flush()
}

func runRetryFailedCommand(cmdCtx *commandContext, args []string) error {
	eventID, timeout, err := parseEventFlags("retry-failed", args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, timeout)
	defer cancel()

	db, err := connectDB(cmdCtx.Logger, &cmdCtx.Config)
	if err != nil {
		return err
	}
	defer closeDB(db, cmdCtx.Logger)

	jobs := data.NewMintJobRepo(db, data.MintJobRepoConfig{Logger: cmdCtx.Logger})
	reset, err := jobs.ResetFailed(ctx, eventID)
	if err != nil {
		return err
	}

	cmdCtx.Logger.InfoContext(ctx, "retry failed complete", "event_id", eventID, "jobs_reset", reset)
	return nil
}

func runFailStaleCommand(cmdCtx *commandContext, args []string) error {
	timeout, err := parseTimeoutFlags("fail-stale", args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, timeout)
	defer cancel()

	db, err := connectDB(cmdCtx.Logger, &cmdCtx.Config)
	if err != nil {
		return err
	}
	defer closeDB(db, cmdCtx.Logger)

	jobs := data.NewMintJobRepo(db, data.MintJobRepoConfig{Logger: cmdCtx.Logger})
	swept, err := jobs.FailStale(ctx)
	if err != nil {
		return err
	}

	cmdCtx.Logger.InfoContext(ctx, "stale job sweep complete", "jobs_failed", swept)
	return nil
}
