package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/taskboard/internal/dto"
	"github.com/yukikurage/taskboard/internal/models"
)

func due(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func ids(tasks []dto.TaskDTO) []uint64 {
	out := make([]uint64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func sample() []dto.TaskDTO {
	return []dto.TaskDTO{
		{ID: 1, Title: "Buy milk", Status: models.TaskStatusPending, Priority: models.TaskPriorityLow, DueDate: due(2024, 6, 20), CreatedAt: base},
		{ID: 2, Title: "Write report", Description: "Quarterly MILK numbers", Status: models.TaskStatusInProgress, Priority: models.TaskPriorityHigh, CreatedAt: base.Add(time.Hour)},
		{ID: 3, Title: "Call mom", Status: models.TaskStatusCompleted, Priority: models.TaskPriorityMedium, DueDate: due(2024, 6, 10), CreatedAt: base.Add(2 * time.Hour)},
		{ID: 4, Title: "Pay rent", Status: models.TaskStatusPending, Priority: models.TaskPriorityHigh, DueDate: due(2024, 6, 1), CreatedAt: base.Add(3 * time.Hour)},
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		status string
		search string
		want   []uint64
	}{
		{name: "all", status: FilterAll, want: []uint64{1, 2, 3, 4}},
		{name: "empty status means all", status: "", want: []uint64{1, 2, 3, 4}},
		{name: "pending", status: "Pending", want: []uint64{1, 4}},
		{name: "search title or description ignoring case", status: FilterAll, search: "MiLk", want: []uint64{1, 2}},
		{name: "status and search", status: "Pending", search: "milk", want: []uint64{1}},
		{name: "nothing", status: "Completed", search: "rent", want: []uint64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(sample(), tt.status, tt.search)))
		})
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name  string
		field string
		order string
		want  []uint64
	}{
		{name: "created desc", field: "created_at", order: "DESC", want: []uint64{4, 3, 2, 1}},
		{name: "created asc", field: "created_at", order: "ASC", want: []uint64{1, 2, 3, 4}},
		{name: "title asc", field: "title", order: "ASC", want: []uint64{1, 3, 4, 2}},
		{name: "priority desc uses weights and is stable", field: "priority", order: "DESC", want: []uint64{2, 4, 3, 1}},
		{name: "priority asc", field: "priority", order: "ASC", want: []uint64{1, 3, 2, 4}},
		{name: "due date asc puts undated first", field: "due_date", order: "ASC", want: []uint64{2, 4, 3, 1}},
		{name: "due date desc puts undated last", field: "due_date", order: "DESC", want: []uint64{1, 3, 4, 2}},
		{name: "unknown field keeps input order", field: "color", order: "ASC", want: []uint64{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Sort(sample(), tt.field, tt.order)))
		})
	}
}

func TestRenderDoesNotModifyInput(t *testing.T) {
	tasks := sample()
	out := Render(tasks, FilterState{Status: FilterAll, SortBy: "title", Order: "ASC"})

	assert.Equal(t, []uint64{1, 2, 3, 4}, ids(tasks))
	assert.Equal(t, []uint64{1, 3, 4, 2}, ids(out))
}

func TestRenderIgnoresPriorityPreference(t *testing.T) {
	f := DefaultFilterState()
	f.Priority = "High"
	assert.Len(t, Render(sample(), f), 4)
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)
	tasks := sample()

	assert.False(t, IsOverdue(tasks[0], now), "due later")
	assert.False(t, IsOverdue(tasks[1], now), "no due date")
	assert.False(t, IsOverdue(tasks[2], now), "completed")
	assert.True(t, IsOverdue(tasks[3], now))

	dueToday := dto.TaskDTO{Status: models.TaskStatusPending, DueDate: due(2024, 6, 10)}
	assert.False(t, IsOverdue(dueToday, now))
}
