package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			if err := a.requireLogin(); err != nil {
				return err
			}
			stats, err := a.api.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, a.view.Stats(*stats))
			return nil
		},
	}
}
