package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yukikurage/taskboard/internal/client"
	"github.com/yukikurage/taskboard/internal/dashboard"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var errNotLoggedIn = errors.New("not logged in, run `taskboard login` first")

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// rootOptions holds the persistent flags and the lazily built app.
type rootOptions struct {
	apiURL    string
	statePath string
	verbose   bool

	app *app
}

// app is what every command works with once flags are parsed.
type app struct {
	store  *dashboard.Store
	api    *client.Client
	dash   *dashboard.Dashboard
	view   dashboard.View
	notify *terminalNotifier
	logger *slog.Logger
	out    io.Writer
	in     *bufio.Reader
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "taskboard",
		Short: "A terminal dashboard for your tasks",
		Long: `taskboard talks to the task management API. Log in once, then list,
filter, edit and generate tasks from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.apiURL, "api", getEnv("TASKBOARD_API_URL", client.DefaultBaseURL), "API base URL")
	root.PersistentFlags().StringVar(&opts.statePath, "state", os.Getenv("TASKBOARD_STATE"), "path of the session file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newRegisterCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newAddCmd(opts),
		newEditCmd(opts),
		newRemoveCmd(opts),
		newStatsCmd(opts),
		newGenerateCmd(opts),
		newShellCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *rootOptions) load(cmd *cobra.Command) error {
	path := o.statePath
	if path == "" {
		var err error
		if path, err = dashboard.DefaultStatePath(); err != nil {
			return fmt.Errorf("locate state file: %w", err)
		}
	}

	store, err := dashboard.OpenStore(dashboard.NewFileStorage(path))
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	notify := newNotifier(cmd.OutOrStdout(), cmd.ErrOrStderr())
	api := client.New(o.apiURL, store)
	o.app = &app{
		store:  store,
		api:    api,
		dash:   dashboard.New(api, store, notify, dashboard.WithLogger(logger)),
		notify: notify,
		logger: logger,
		out:    cmd.OutOrStdout(),
		in:     bufio.NewReader(cmd.InOrStdin()),
	}
	logger.Debug("session loaded", "state", path, "api", o.apiURL, "logged_in", store.LoggedIn())
	return nil
}

func (a *app) requireLogin() error {
	if !a.store.LoggedIn() {
		return errNotLoggedIn
	}
	return nil
}

// prompt reads one line, used when a flag was left out.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func (a *app) render() {
	fmt.Fprint(a.out, a.view.Render(a.dash.Snapshot()))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taskboard %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
