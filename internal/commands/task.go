package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yukikurage/taskboard/internal/client"
	"github.com/yukikurage/taskboard/internal/dto"
)

// taskFlags are the editable fields shared by add and edit.
type taskFlags struct {
	title       string
	description string
	status      string
	priority    string
	due         string
	clearDue    bool
}

func (f *taskFlags) register(cmd *cobra.Command, withTitle bool) {
	if withTitle {
		cmd.Flags().StringVarP(&f.title, "title", "t", "", "task title")
	}
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&f.status, "status", "s", "", "Pending, In Progress or Completed")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "Low, Medium or High")
	cmd.Flags().StringVar(&f.due, "due", "", "due date as YYYY-MM-DD")
}

// input sets only the fields whose flags were given.
func (f *taskFlags) input(cmd *cobra.Command) client.TaskInput {
	var in client.TaskInput
	set := func(name string, value string) *string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v := value
		return &v
	}
	in.Title = set("title", f.title)
	in.Description = set("description", f.description)
	in.Status = set("status", f.status)
	in.Priority = set("priority", f.priority)
	in.DueDate = set("due", f.due)
	in.ClearDueDate = f.clearDue
	return in
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			if err := a.requireLogin(); err != nil {
				return err
			}

			in := f.input(cmd)
			title := strings.Join(args, " ")
			in.Title = &title

			task, err := a.dash.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, a.view.Tasks([]dto.TaskDTO{*task}))
			return nil
		},
	}

	f.register(cmd, false)
	return cmd
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "edit [task-id]",
		Short: "Change fields of a task",
		Long:  "Change fields of a task. Only the flags you pass are sent.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			in := f.input(cmd)
			if in.Empty() {
				return fmt.Errorf("nothing to change, pass at least one field flag")
			}
			return a.dash.SubmitEdit(cmd.Context(), id, in)
		},
	}

	f.register(cmd, true)
	cmd.Flags().BoolVar(&f.clearDue, "clear-due", false, "remove the due date")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	return cmd
}

func newRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm [task-id]",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return a.dash.Delete(cmd.Context(), id)
		},
	}
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [task-id]",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			if err := a.requireLogin(); err != nil {
				return err
			}
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			task, err := a.api.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out, a.view.Tasks([]dto.TaskDTO{*task}))
			if task.Description != "" {
				fmt.Fprintln(a.out, task.Description)
			}
			return nil
		},
	}
}

func parseTaskID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid task ID '%s'", arg)
	}
	return id, nil
}
