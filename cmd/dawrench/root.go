package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dawrench-labs/dawrench-go/internal/document"
	"github.com/dawrench-labs/dawrench-go/internal/document/localdoc"
	"github.com/dawrench-labs/dawrench-go/internal/platform/env"
	"github.com/dawrench-labs/dawrench-go/internal/platform/logging"
	"github.com/dawrench-labs/dawrench-go/internal/platform/postgres"
	repopg "github.com/dawrench-labs/dawrench-go/internal/repo/postgres"
	"github.com/dawrench-labs/dawrench-go/internal/reportexport"
)

// app carries what the root command sets up for its subcommands.
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	logger  zerolog.Logger
	closers []io.Closer

	openDocument func(path string) (document.Document, error)
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		logger: zerolog.Nop(),
		openDocument: func(path string) (document.Document, error) {
			doc, err := localdoc.Open(path)
			if err != nil {
				return nil, err
			}
			return doc, nil
		},
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	return newAppRootCmd(newApp(stdout, stderr))
}

func newAppRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "dawrench",
		Short:        "Batch update of assembly user parameters",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := env.LoadDotenv(); err != nil {
				return err
			}
			cfg, err := logging.ConfigFromEnv()
			if err != nil {
				return fmt.Errorf("logging config: %w", err)
			}
			a.logger = logging.New(cfg, a.stderr)
			return nil
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.AddCommand(newRunCmd(a), newReportCmd(a), newActivityCmd(a), newWorkItemCmd(a))
	return root
}

// exporter assembles the report sinks enabled by the environment. The log
// summary is always on. Callers release the sinks with close.
func (a *app) exporter(ctx context.Context) (reportexport.Exporter, error) {
	sinks := reportexport.Multi{reportexport.LogExporter{Logger: a.logger}}

	reportCfg, err := reportexport.ConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("report config: %w", err)
	}
	if reportCfg.Enabled() {
		ndjson, closer, err := reportexport.Open(reportCfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closer)
		sinks = append(sinks, ndjson)
	}

	dbCfg, err := postgres.ConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}
	if dbCfg.Enabled() {
		db, err := postgres.Open(ctx, dbCfg)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		a.closers = append(a.closers, db)
		store := repopg.NewReportStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		sinks = append(sinks, store)
	}
	return sinks, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
