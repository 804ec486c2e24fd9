package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dawrench-labs/dawrench-go/internal/activity"
	"github.com/dawrench-labs/dawrench-go/internal/platform/env"
	"github.com/dawrench-labs/dawrench-go/internal/platform/oauth"
	"github.com/dawrench-labs/dawrench-go/internal/platform/objectstore"
)

func newActivityCmd(a *app) *cobra.Command {
	var configPath, owner string
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Print the app bundle and activity definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := activity.LoadConfig(configPath)
			if err != nil {
				return err
			}
			return a.printJSON(struct {
				AppBundle activity.AppBundle `json:"appBundle"`
				Activity  activity.Activity  `json:"activity"`
			}{cfg.AppBundle(), cfg.Activity(ownerOrEnv(owner))})
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "activity YAML config")
	cmd.Flags().StringVar(&owner, "owner", "", "owning app nickname (default $DAWRENCH_OWNER)")
	return cmd
}

func newWorkItemCmd(a *app) *cobra.Command {
	var (
		configPath string
		in         activity.WorkItemInput
		presign    bool
	)
	cmd := &cobra.Command{
		Use:   "workitem",
		Short: "Print a work item for the activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := activity.LoadConfig(configPath)
			if err != nil {
				return err
			}
			in.Owner = ownerOrEnv(in.Owner)

			var pub *activity.Publisher
			if presign {
				storeCfg, err := objectstore.ConfigFromEnv()
				if err != nil {
					return fmt.Errorf("object store config: %w", err)
				}
				client, err := objectstore.NewMinIOClient(storeCfg)
				if err != nil {
					return err
				}
				store, err := objectstore.NewMinioStore(client, storeCfg.PresignTTL)
				if err != nil {
					return err
				}
				pub, err = activity.NewPublisher(cfg, nil, store)
				if err != nil {
					return err
				}
			} else {
				oauthCfg, err := oauth.ConfigFromEnv()
				if err != nil {
					return fmt.Errorf("oauth config: %w", err)
				}
				tokens, err := oauth.TokenSource(cmd.Context(), oauthCfg)
				if err != nil {
					return err
				}
				pub, err = activity.NewPublisher(cfg, tokens, nil)
				if err != nil {
					return err
				}
			}

			wi, err := pub.WorkItem(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.logger.Trace().Str("activity_id", wi.ActivityID).Msg("work item built")
			return a.printJSON(wi)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "activity YAML config")
	flags.StringVar(&in.Owner, "owner", "", "owning app nickname (default $DAWRENCH_OWNER)")
	flags.StringVar(&in.BucketKey, "bucket", "", "bucket holding the input and output objects")
	flags.StringVar(&in.InputObject, "input", "", "zipped input assembly object")
	flags.StringVar(&in.ParamsFile, "params", "", "local parameter file to inline")
	flags.StringVar(&in.OutputObject, "output", "result.zip", "output object")
	flags.BoolVar(&presign, "presign", false, "use presigned object store URLs instead of bearer headers")
	_ = cmd.MarkFlagRequired("bucket")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("params")
	return cmd
}

func ownerOrEnv(owner string) string {
	if owner != "" {
		return owner
	}
	return env.String("DAWRENCH_OWNER", "dawrench")
}
