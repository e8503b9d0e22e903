package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/yukikurage/taskboard/internal/client"
	"github.com/yukikurage/taskboard/internal/dashboard"
)

const shellHelp = `Type to search. Commands:
  :status <All|Pending|In Progress|Completed>
  :priority <All|Low|Medium|High>
  :sort <field>    :order    :clear
  :done <id>       :rm <id>  :refresh
  :quit`

func newShellCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive dashboard",
		Long:  "Interactive dashboard. Plain input is a live search applied after a short pause.\n\n" + shellHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			if err := a.requireLogin(); err != nil {
				return err
			}
			return newShell(a).run(cmd.Context())
		},
	}
}

type shell struct {
	a      *app
	mu     sync.Mutex
	search *dashboard.Debouncer
}

func newShell(a *app) *shell {
	s := &shell{a: a}
	s.search = dashboard.NewDebouncer(dashboard.SearchDelay, func(query string) {
		if err := a.dash.SetSearch(query); err != nil {
			a.logger.Warn("saving search failed", "error", err)
		}
		s.redraw()
	})
	return s
}

func (s *shell) redraw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.render()
}

func (s *shell) run(ctx context.Context) error {
	defer s.search.Stop()

	if err := s.a.dash.Refresh(ctx); err != nil {
		return err
	}
	s.redraw()
	fmt.Fprintln(s.a.out, shellHelp)

	for {
		line, err := s.a.in.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			quit, cmdErr := s.exec(ctx, line)
			if errors.Is(cmdErr, dashboard.ErrNotLoggedIn) {
				return cmdErr
			}
			if cmdErr != nil {
				s.a.logger.Debug("shell command failed", "line", line, "error", cmdErr)
			}
			if quit {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// exec runs one input line and reports whether the shell should exit.
// Dashboard calls report their own failures through the notifier, so only
// input errors are printed here.
func (s *shell) exec(ctx context.Context, line string) (bool, error) {
	if !strings.HasPrefix(line, ":") {
		s.search.Trigger(line)
		return false, nil
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	dash := s.a.dash

	var inputErr, syncErr error
	switch name {
	case "q", "quit", "exit":
		return true, nil
	case "help", "h":
		fmt.Fprintln(s.a.out, shellHelp)
		return false, nil
	case "status":
		inputErr = dash.SetStatus(arg)
	case "priority":
		if inputErr = dash.SetPriority(arg); inputErr == nil {
			syncErr = dash.Refresh(ctx)
		}
	case "sort":
		inputErr = dash.SetSort(arg)
	case "order":
		inputErr = dash.ToggleOrder()
	case "clear":
		s.search.Stop()
		inputErr = dash.SetSearch("")
	case "refresh", "r":
		syncErr = dash.Refresh(ctx)
	case "done", "rm":
		id, err := parseTaskID(arg)
		if err != nil {
			inputErr = err
			break
		}
		if name == "rm" {
			syncErr = dash.Delete(ctx, id)
		} else {
			completed := "Completed"
			syncErr = dash.SubmitEdit(ctx, id, client.TaskInput{Status: &completed})
		}
	default:
		inputErr = fmt.Errorf("unknown command :%s", name)
	}

	if inputErr != nil {
		s.a.notify.Error(inputErr.Error())
		return false, inputErr
	}
	s.redraw()
	return false, syncErr
}
