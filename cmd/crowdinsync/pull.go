package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPullCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Download the branch's translations into the staging directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open()
			if err != nil {
				return err
			}
			result, err := s.syncer.Pull(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result.Export != "" {
				fmt.Fprintf(out, "export %s\n", result.Export)
			}
			fmt.Fprintf(out, "staged %d files from %s in %s\n", len(result.Files), result.Scope, result.StagingDir)
			for _, f := range result.StatusFiles {
				fmt.Fprintf(out, "status %s\n", f)
			}
			return nil
		},
	}
}
