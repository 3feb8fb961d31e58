package main

import (
	"fmt"
	"io"

	"github.com/digitalmediaserver/crowdinsync/internal/langsync"
	"github.com/spf13/cobra"
)

func newPushCmd(flags *globalFlags) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Upload source files, creating the branch and folders they need",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open()
			if err != nil {
				return err
			}
			if dryRun {
				actions, err := s.syncer.Plan(cmd.Context())
				if err != nil {
					return err
				}
				printActions(cmd.OutOrStdout(), actions)
				return nil
			}
			actions, err := s.syncer.Push(cmd.Context())
			printActions(cmd.OutOrStdout(), actions)
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", boolEnv(envPrefix+"DRY_RUN", false), "print the plan without changing anything")
	return cmd
}

func newPlanCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show what push would create, update or skip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open()
			if err != nil {
				return err
			}
			actions, err := s.syncer.Plan(cmd.Context())
			if err != nil {
				return err
			}
			printActions(cmd.OutOrStdout(), actions)
			return nil
		},
	}
}

func printActions(w io.Writer, actions []langsync.SyncAction) {
	for _, a := range actions {
		if a.Kind == langsync.ActionSkip {
			fmt.Fprintf(w, "%-6s %s (%s)\n", a.Kind, a.RemotePath, a.Reason)
			continue
		}
		fmt.Fprintf(w, "%-6s %s <- %s\n", a.Kind, a.RemotePath, a.LocalPath)
	}
}
