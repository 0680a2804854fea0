/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"errors"
	"fmt"

	"chainguard.dev/mskreplicator/handler"
	"chainguard.dev/mskreplicator/reconcilers/replicatorreconciler"
	"chainguard.dev/mskreplicator/replicator"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// handlerFactory builds the handler a verb drives. Tests swap it for a fake.
type handlerFactory func(*config) (replicatorreconciler.Invoker, error)

type requestFlags struct {
	desired      string
	previous     string
	desiredTags  map[string]string
	previousTags map[string]string
	arn          string
	token        string
	nextToken    string
	output       string
}

func newRootCmd(cfg *config, factory handlerFactory) *cobra.Command {
	flags := &requestFlags{}

	root := &cobra.Command{
		Use:   "replicatorctl",
		Short: "Create, read, update, delete and list MSK replicators",
		Long: `replicatorctl submits one request to the MSK replicator handler and
re-invokes it on the cadence it asks for until the operation succeeds or fails.

Process configuration comes from the environment: AWS_REGION, KAFKA_ENDPOINT,
MAX_RETRY, METRICS_PORT, LOG_LEVEL and CONCURRENCY.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.output, "output", "o", "yaml", "output format: yaml or json")
	root.PersistentFlags().StringVar(&flags.token, "token", "", "client request token (default: a random UUID)")

	verb := func(action handler.Action, use, short string, build func(*requestFlags, *handler.Request) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := checkOutput(flags.output); err != nil {
					return err
				}
				req := &handler.Request{Action: action, ClientRequestToken: flags.token}
				if req.ClientRequestToken == "" {
					req.ClientRequestToken = uuid.NewString()
				}
				if err := build(flags, req); err != nil {
					return err
				}
				return run(cmd, cfg, factory, req, flags.output)
			},
		}
	}

	create := verb(handler.ActionCreate, "create", "Create a replicator and wait until it is running", func(f *requestFlags, req *handler.Request) error {
		m, err := requireModel(f.desired, "--desired")
		if err != nil {
			return err
		}
		req.DesiredResourceState = m
		req.DesiredResourceTags = f.desiredTags
		return nil
	})
	addDesiredFlags(create, flags)

	read := verb(handler.ActionRead, "read", "Describe a replicator", func(f *requestFlags, req *handler.Request) error {
		m, err := identify(f)
		req.DesiredResourceState = m
		return err
	})
	addIdentityFlags(read, flags)

	update := verb(handler.ActionUpdate, "update", "Apply a changed replicator configuration", func(f *requestFlags, req *handler.Request) error {
		m, err := requireModel(f.desired, "--desired")
		if err != nil {
			return err
		}
		if f.arn != "" {
			m.ReplicatorArn = f.arn
		}
		req.DesiredResourceState = m
		req.DesiredResourceTags = f.desiredTags
		req.PreviousResourceTags = f.previousTags
		if f.previous != "" {
			if req.PreviousResourceState, err = loadModel(f.previous); err != nil {
				return err
			}
		}
		return nil
	})
	addDesiredFlags(update, flags)
	update.Flags().StringVar(&flags.previous, "previous", "", "file holding the previous replicator configuration")
	update.Flags().StringToStringVar(&flags.previousTags, "previous-tags", nil, "tags previously applied by the host")
	update.Flags().StringVar(&flags.arn, "arn", "", "replicator ARN, overriding the one in --desired")

	del := verb(handler.ActionDelete, "delete", "Delete a replicator and wait until it is gone", func(f *requestFlags, req *handler.Request) error {
		m, err := identify(f)
		req.DesiredResourceState = m
		return err
	})
	addIdentityFlags(del, flags)

	list := verb(handler.ActionList, "list", "List replicators, one page at a time", func(f *requestFlags, req *handler.Request) error {
		req.NextToken = f.nextToken
		return nil
	})
	list.Flags().StringVar(&flags.nextToken, "next-token", "", "continue from a previous page")

	root.AddCommand(create, read, update, del, list, newDiffCmd(flags))
	return root
}

func addDesiredFlags(cmd *cobra.Command, f *requestFlags) {
	cmd.Flags().StringVar(&f.desired, "desired", "", "file holding the desired replicator configuration (YAML or JSON)")
	cmd.Flags().StringToStringVar(&f.desiredTags, "desired-tags", nil, "tags applied by the host on top of the model's tags")
}

func addIdentityFlags(cmd *cobra.Command, f *requestFlags) {
	cmd.Flags().StringVar(&f.arn, "arn", "", "replicator ARN")
	cmd.Flags().StringVar(&f.desired, "desired", "", "file holding a replicator configuration carrying the ARN")
}

// identify builds the identity-only model read and delete operate on.
func identify(f *requestFlags) (*replicator.Model, error) {
	if f.arn != "" {
		return &replicator.Model{ReplicatorArn: f.arn}, nil
	}
	if f.desired != "" {
		return loadModel(f.desired)
	}
	return nil, errors.New("one of --arn or --desired is required")
}

func requireModel(path, flag string) (*replicator.Model, error) {
	if path == "" {
		return nil, fmt.Errorf("%s is required", flag)
	}
	return loadModel(path)
}
