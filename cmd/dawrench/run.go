package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dawrench-labs/dawrench-go/internal/domain"
	"github.com/dawrench-labs/dawrench-go/internal/heartbeat"
	"github.com/dawrench-labs/dawrench-go/internal/job"
	"github.com/dawrench-labs/dawrench-go/internal/platform/objectstore"
	"github.com/dawrench-labs/dawrench-go/internal/plugin"
)

type runOptions struct {
	project   string
	document  string
	params    string
	extra     []string
	publish   bool
	heartbeat time.Duration
}

func newRunCmd(a *app) *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the parameter update job on a local document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.project, "project", ".", "project directory holding inputFiles/")
	flags.StringVar(&opts.document, "document", "", "document path (default <project>/inputFiles/Wrench.iam)")
	flags.StringVar(&opts.params, "params", "", "parameter file (default <project>/inputFiles/params.json)")
	flags.StringArrayVar(&opts.extra, "arg", nil, "extra job argument as _N=VALUE (repeatable)")
	flags.BoolVar(&opts.publish, "publish", false, "upload the result archive to the outputs bucket")
	flags.DurationVar(&opts.heartbeat, "heartbeat", heartbeat.DefaultInterval, "liveness interval for long steps")
	return cmd
}

func (o runOptions) arguments() (job.Arguments, error) {
	paramsPath := o.params
	if paramsPath == "" {
		paramsPath = filepath.Join(o.project, "inputFiles", "params.json")
	}
	args := job.Arguments{job.ParamFileArgument: paramsPath}
	for _, raw := range o.extra {
		key, value, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || !strings.HasPrefix(key, "_") || len(key) < 2 {
			return nil, fmt.Errorf("invalid --arg %q, want _N=VALUE", raw)
		}
		args[key] = value
	}
	return args, nil
}

func (o runOptions) documentPath() string {
	if o.document != "" {
		return o.document
	}
	return filepath.Join(o.project, "inputFiles", "Wrench.iam")
}

func (a *app) run(ctx context.Context, opts runOptions) error {
	args, err := opts.arguments()
	if err != nil {
		return err
	}
	doc, err := a.openDocument(opts.documentPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := doc.Close(); err != nil {
			a.logger.Error().Err(err).Str("document", doc.Path()).Msg("close document failed")
		}
	}()

	defer a.close()
	exporter, err := a.exporter(ctx)
	if err != nil {
		return err
	}
	runner := job.NewRunner(job.Options{
		Logger:   a.logger,
		Liveness: heartbeat.NewMonitor(a.logger, opts.heartbeat),
		Exporter: exporter,
	})
	report := plugin.NewAutomation(a.logger, runner).RunWithArguments(ctx, doc, args)

	if opts.publish && report.ArtifactPath != "" {
		if err := a.publish(ctx, report); err != nil {
			return err
		}
	}
	if err := a.printJSON(report); err != nil {
		return err
	}
	if report.Status() == domain.JobStatusFailed {
		return fmt.Errorf("job %s failed: %s", report.JobID, report.FatalError)
	}
	return nil
}

func (a *app) publish(ctx context.Context, report domain.JobReport) error {
	cfg, err := objectstore.ConfigFromEnv()
	if err != nil {
		return fmt.Errorf("object store config: %w", err)
	}
	client, err := objectstore.NewMinIOClient(cfg)
	if err != nil {
		return err
	}
	if err := objectstore.EnsureBuckets(ctx, client, cfg); err != nil {
		return err
	}
	store, err := objectstore.NewMinioStore(client, cfg.PresignTTL)
	if err != nil {
		return err
	}
	key := report.JobID + "/" + filepath.Base(report.ArtifactPath)
	etag, err := store.PutFile(ctx, cfg.BucketOutputs, key, report.ArtifactPath, "application/zip")
	if err != nil {
		return fmt.Errorf("upload artifact: %w", err)
	}
	a.logger.Trace().Str("bucket", cfg.BucketOutputs).Str("key", key).Str("etag", etag).Msg("artifact published")
	return nil
}
