package dashboard

import (
	"sort"
	"strings"
	"time"

	"github.com/yukikurage/taskboard/internal/dto"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/repository"
)

// Render applies the status and search filters, then sorts. The input slice
// is not modified.
func Render(tasks []dto.TaskDTO, filter FilterState) []dto.TaskDTO {
	return Sort(Filter(tasks, filter.Status, filter.Search), filter.SortBy, filter.Order)
}

// Filter keeps tasks whose status equals status (any when All) and whose
// title or description contains search, ignoring case.
func Filter(tasks []dto.TaskDTO, status, search string) []dto.TaskDTO {
	search = strings.ToLower(search)
	out := make([]dto.TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		if status != "" && status != FilterAll && string(t.Status) != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Sort returns a stably sorted copy. Priority sorts by weight, missing due
// dates sort lowest, and an unknown field keeps the input order.
func Sort(tasks []dto.TaskDTO, field, order string) []dto.TaskDTO {
	out := make([]dto.TaskDTO, len(tasks))
	copy(out, tasks)

	cmp := comparator(field)
	if cmp == nil {
		return out
	}

	desc := !strings.EqualFold(order, repository.OrderAsc)
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return cmp(out[j], out[i]) < 0
		}
		return cmp(out[i], out[j]) < 0
	})
	return out
}

func comparator(field string) func(a, b dto.TaskDTO) int {
	switch field {
	case "id":
		return func(a, b dto.TaskDTO) int { return compareUint(a.ID, b.ID) }
	case "title":
		return func(a, b dto.TaskDTO) int { return strings.Compare(a.Title, b.Title) }
	case "description":
		return func(a, b dto.TaskDTO) int { return strings.Compare(a.Description, b.Description) }
	case "status":
		return func(a, b dto.TaskDTO) int { return strings.Compare(string(a.Status), string(b.Status)) }
	case "priority":
		return func(a, b dto.TaskDTO) int { return a.Priority.Weight() - b.Priority.Weight() }
	case "due_date":
		return func(a, b dto.TaskDTO) int { return compareDue(a.DueDate, b.DueDate) }
	case "created_at":
		return func(a, b dto.TaskDTO) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case "updated_at":
		return func(a, b dto.TaskDTO) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	}
	return nil
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareDue(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

// IsOverdue reports whether task is past its due day and not completed.
func IsOverdue(task dto.TaskDTO, now time.Time) bool {
	if task.DueDate == nil || task.Status == models.TaskStatusCompleted {
		return false
	}
	return task.DueDate.Before(models.DateOnly(now.UTC()))
}
