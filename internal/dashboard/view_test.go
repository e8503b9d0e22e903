package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/taskboard/internal/dto"
)

func TestViewRender(t *testing.T) {
	v := View{Now: func() time.Time { return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC) }}

	out := v.Render(Snapshot{
		Phase:  PhaseReady,
		Filter: DefaultFilterState(),
		Tasks:  sample(),
		Total:  4,
		Stats:  &dto.TaskStats{TotalTasks: 3, CompletedCount: 2, OverdueCount: 1},
		User:   &dto.UserDTO{Name: "Alice"},
	})

	assert.Contains(t, out, "Hello, Alice")
	assert.Contains(t, out, "Completed 2 (67%)")
	assert.Contains(t, out, "Pay rent")
	assert.Contains(t, out, "Jun 1, 2024 OVERDUE")
	assert.Contains(t, out, "Jun 20, 2024")
	assert.Contains(t, out, "No due date")
	assert.Contains(t, out, "sort: created_at DESC")
}

func TestViewEmptyStates(t *testing.T) {
	v := View{}

	assert.Contains(t, v.Render(Snapshot{Phase: PhaseLoading, Filter: DefaultFilterState()}), "Loading tasks...")
	assert.Contains(t, v.Render(Snapshot{Phase: PhaseReady, Filter: DefaultFilterState(), Total: 2}), "No tasks found.")
}

func TestViewStatsWithNoTasks(t *testing.T) {
	assert.Contains(t, View{}.Stats(dto.TaskStats{}), "Completed 0 (0%)")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmno", 10))
	assert.Equal(t, "ééééééé...", truncate("éééééééééééé", 10))
}
