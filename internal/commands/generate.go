package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yukikurage/taskboard/internal/client"
	"github.com/yukikurage/taskboard/internal/dto"
	"github.com/yukikurage/taskboard/internal/models"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "generate [text]",
		Short: "Draft tasks from free text",
		Long: `Ask the server to turn notes into task drafts. Text is read from the
arguments, or from stdin when none are given. Drafts are only printed unless
--create is passed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			if err := a.requireLogin(); err != nil {
				return err
			}

			text := strings.Join(args, " ")
			if text == "" {
				raw, err := io.ReadAll(a.in)
				if err != nil {
					return err
				}
				text = string(raw)
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("no text given")
			}

			drafts, err := a.api.GenerateTasks(cmd.Context(), text)
			if err != nil {
				return err
			}

			preview := make([]dto.TaskDTO, len(drafts))
			for i, d := range drafts {
				preview[i] = dto.TaskDTO{
					ID:       uint64(i + 1),
					Title:    d.Title,
					Status:   models.TaskStatusPending,
					Priority: models.TaskPriority(d.Priority),
					DueDate:  d.DueDate,
				}
			}
			fmt.Fprint(a.out, a.view.Tasks(preview))

			if !create {
				return nil
			}
			created := 0
			for _, d := range drafts {
				if _, err := a.api.CreateTask(cmd.Context(), draftInput(d)); err != nil {
					a.notify.Error(fmt.Sprintf("%s: %v", d.Title, err))
					continue
				}
				created++
			}
			a.notify.Success(fmt.Sprintf("Created %d of %d tasks", created, len(drafts)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "create every draft")
	return cmd
}

func draftInput(d client.Draft) client.TaskInput {
	title, description, priority := d.Title, d.Description, d.Priority
	in := client.TaskInput{Title: &title, Priority: &priority}
	if description != "" {
		in.Description = &description
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC().Format("2006-01-02")
		in.DueDate = &due
	}
	return in
}
