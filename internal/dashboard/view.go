package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/yukikurage/taskboard/internal/dto"
	"github.com/yukikurage/taskboard/internal/models"
)

// Colors
const (
	colorBorder   = "#3A3F55"
	colorText     = "#E6EAF2"
	colorMuted    = "#6D7383"
	colorAccent   = "#7C3AED"
	colorHigh     = "#EF4444"
	colorMedium   = "#F59E0B"
	colorLow      = "#22C55E"
	colorProgress = "#3B82F6"
)

const (
	maxTitleWidth  = 48
	dueDateDisplay = "Jan 2, 2006"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted))
	textStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorText))
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorHigh))
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1)
)

// View renders snapshots as text.
type View struct {
	Now func() time.Time
}

func (v View) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Render draws the stats board followed by the task list.
func (v View) Render(s Snapshot) string {
	var b strings.Builder

	if s.User != nil {
		b.WriteString(headerStyle.Render("Hello, "+s.User.Name) + "\n")
	}
	if s.Stats != nil {
		b.WriteString(v.Stats(*s.Stats) + "\n")
	}
	b.WriteString(mutedStyle.Render(describeFilter(s.Filter)) + "\n")

	switch {
	case s.Phase == PhaseLoading && s.Total == 0:
		b.WriteString(mutedStyle.Render("Loading tasks...") + "\n")
	case len(s.Tasks) == 0:
		b.WriteString(mutedStyle.Render("No tasks found.") + "\n")
	default:
		b.WriteString(v.Tasks(s.Tasks))
	}
	return b.String()
}

// Stats renders the counts and completion rate.
func (v View) Stats(stats dto.TaskStats) string {
	rate := 0
	if stats.TotalTasks > 0 {
		rate = int((stats.CompletedCount*100 + stats.TotalTasks/2) / stats.TotalTasks)
	}

	overdue := fmt.Sprintf("Overdue %d", stats.OverdueCount)
	if stats.OverdueCount > 0 {
		overdue = alertStyle.Render(overdue)
	}

	cells := []string{
		cardStyle.Render(fmt.Sprintf("Total %d", stats.TotalTasks)),
		cardStyle.Render(fmt.Sprintf("Pending %d", stats.PendingCount)),
		cardStyle.Render(fmt.Sprintf("In Progress %d", stats.InProgressCount)),
		cardStyle.Render(fmt.Sprintf("Completed %d (%d%%)", stats.CompletedCount, rate)),
		cardStyle.Render(overdue),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// Tasks renders one line per task.
func (v View) Tasks(tasks []dto.TaskDTO) string {
	now := v.now()
	var b strings.Builder
	for _, t := range tasks {
		b.WriteString(v.line(t, now))
		b.WriteByte('\n')
	}
	return b.String()
}

func (v View) line(t dto.TaskDTO, now time.Time) string {
	due := "No due date"
	if t.DueDate != nil {
		due = t.DueDate.UTC().Format(dueDateDisplay)
	}

	title := truncate(t.Title, maxTitleWidth)
	cols := []string{
		mutedStyle.Render(fmt.Sprintf("#%-4d", t.ID)),
		statusStyle(t.Status).Render(fmt.Sprintf("%-11s", t.Status)),
		priorityStyle(t.Priority).Render(fmt.Sprintf("%-6s", t.Priority)),
		textStyle.Render(fmt.Sprintf("%-*s", maxTitleWidth, title)),
	}
	if IsOverdue(t, now) {
		cols = append(cols, alertStyle.Render(due+" OVERDUE"))
	} else {
		cols = append(cols, mutedStyle.Render(due))
	}
	return strings.Join(cols, " ")
}

func statusStyle(status models.TaskStatus) lipgloss.Style {
	switch status {
	case models.TaskStatusCompleted:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorLow))
	case models.TaskStatusInProgress:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorProgress))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(colorMedium))
}

func priorityStyle(priority models.TaskPriority) lipgloss.Style {
	switch priority {
	case models.TaskPriorityHigh:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorHigh))
	case models.TaskPriorityLow:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorLow))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(colorMedium))
}

func describeFilter(f FilterState) string {
	parts := []string{"status: " + f.Status, "priority: " + f.Priority}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", f.Search))
	}
	parts = append(parts, fmt.Sprintf("sort: %s %s", f.SortBy, f.Order))
	return strings.Join(parts, " | ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
