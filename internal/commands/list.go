package commands

import (
	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var status, priority, search, sortBy, order string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Long: `List tasks with the stored filter. Filter flags are remembered for the
next run; pass --status All or --search "" to reset them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			if err := a.requireLogin(); err != nil {
				return err
			}

			flags := cmd.Flags()
			steps := []struct {
				flag  string
				apply func() error
			}{
				{"status", func() error { return a.dash.SetStatus(status) }},
				{"priority", func() error { return a.dash.SetPriority(priority) }},
				{"search", func() error { return a.dash.SetSearch(search) }},
				{"sort", func() error { return a.dash.SetSort(sortBy) }},
				{"order", func() error { return a.dash.SetOrder(order) }},
			}
			for _, step := range steps {
				if !flags.Changed(step.flag) {
					continue
				}
				if err := step.apply(); err != nil {
					return err
				}
			}

			if err := a.dash.Refresh(cmd.Context()); err != nil {
				return err
			}
			a.render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "filter by status: All, Pending, In Progress, Completed")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "filter by priority: All, Low, Medium, High")
	cmd.Flags().StringVarP(&search, "search", "q", "", "search title and description")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort field: title, status, priority, due_date, created_at, updated_at")
	cmd.Flags().StringVar(&order, "order", "", "sort order: asc or desc")
	return cmd
}
