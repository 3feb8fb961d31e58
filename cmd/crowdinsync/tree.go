package main

import (
	"fmt"
	"strings"

	"github.com/digitalmediaserver/crowdinsync/internal/namespace"
	"github.com/spf13/cobra"
)

func newTreeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the remote project tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open()
			if err != nil {
				return err
			}
			snap, err := s.client.DescribeProject(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return namespace.Walk(snap, func(depth int, n namespace.Node) error {
				name := n.Name()
				if n.Kind() != namespace.KindFile {
					name += "/"
				}
				if n.Kind() == namespace.KindBranch {
					name += " [branch]"
				}
				_, err := fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth), name)
				return err
			})
		},
	}
}
