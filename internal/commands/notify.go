package commands

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22C55E"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
)

// terminalNotifier prints dashboard notifications, one per line.
type terminalNotifier struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
}

func newNotifier(out, err io.Writer) *terminalNotifier {
	return &terminalNotifier{out: out, err: err}
}

func (n *terminalNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, successStyle.Render("✓ "+message))
}

func (n *terminalNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.err, errorStyle.Render("✗ "+message))
}
