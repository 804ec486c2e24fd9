package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dawrench-labs/dawrench-go/internal/platform/postgres"
	repopg "github.com/dawrench-labs/dawrench-go/internal/repo/postgres"
)

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report JOB_ID",
		Short: "Print a stored job report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showReport(cmd.Context(), args[0])
		},
	}
}

func (a *app) showReport(ctx context.Context, jobID string) error {
	cfg, err := postgres.ConfigFromEnv()
	if err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	if !cfg.Enabled() {
		return errors.New("DAWRENCH_DATABASE_URL is required to read stored reports")
	}
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("close database failed")
		}
	}()

	return a.printStoredReport(ctx, repopg.NewReportStore(db), jobID)
}

func (a *app) printStoredReport(ctx context.Context, store *repopg.ReportStore, jobID string) error {
	report, err := store.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, repopg.ErrReportNotFound) {
			return fmt.Errorf("job %s: %w", jobID, err)
		}
		return fmt.Errorf("load report: %w", err)
	}
	return a.printJSON(report)
}
