package dto

import (
	"time"

	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/repository"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	UserID      uint64              `json:"user_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TaskStats is the per-user aggregate returned by GET /tasks/stats
type TaskStats struct {
	TotalTasks        int64 `json:"total_tasks"`
	PendingCount      int64 `json:"pending_count"`
	InProgressCount   int64 `json:"in_progress_count"`
	CompletedCount    int64 `json:"completed_count"`
	HighPriorityCount int64 `json:"high_priority_count"`
	OverdueCount      int64 `json:"overdue_count"`
}

// CreateTaskRequest is the POST /tasks body
type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,taskstatus"`
	Priority    *string `json:"priority" binding:"omitempty,taskpriority"`
	DueDate     *string `json:"due_date" binding:"omitempty,isodate"`
}

// GenerateTasksRequest is the POST /tasks/generate body
type GenerateTasksRequest struct {
	Text string `json:"text" binding:"required,max=10000"`
}

// Envelope is the success response wrapper
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK wraps data in a success envelope
func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// List wraps a slice together with its length
func List[T any](items []T) Envelope {
	count := len(items)
	return Envelope{Success: true, Count: &count, Data: items}
}

// Message builds a success envelope without data
func Message(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToTaskStats converts a repository snapshot
func ToTaskStats(stats repository.TaskStats) TaskStats {
	return TaskStats(stats)
}
