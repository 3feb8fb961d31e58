package main

import (
	"github.com/digitalmediaserver/crowdinsync/internal/langsync"
	"github.com/digitalmediaserver/crowdinsync/internal/logging"
	"github.com/spf13/cobra"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	debounce := durationEnv(envPrefix+"DEBOUNCE", langsync.DefaultDebounce)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Push once, then push again whenever a source file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			actions, err := s.syncer.Push(cmd.Context())
			printActions(out, actions)
			if err != nil {
				return err
			}
			logging.L().Info("watching for changes", logging.Duration("debounce", debounce), logging.Int("file_sets", len(s.cfg.Files)))
			return s.syncer.Watch(cmd.Context(), debounce, func(actions []langsync.SyncAction, err error) {
				if err == nil {
					printActions(out, actions)
				}
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", debounce, "quiet period before pushing changes")
	return cmd
}
