package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskForbidden    = errors.New("not authorized to access this task")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrTitleRequired    = errors.New("title is required")
	ErrInvalidStatus    = errors.New("invalid status value")
	ErrInvalidPriority  = errors.New("invalid priority value")
)

// Updatable columns, in the order they are applied.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldPriority    = "priority"
	FieldDueDate     = "due_date"
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	now      func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		now:      time.Now,
	}
}

// WithClock replaces the clock used to decide which tasks are overdue.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// CreateTaskInput represents input for creating a task. Nil pointers take
// the column defaults.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDate     *time.Time
}

// UpdateTaskInput carries a partial update. Only non-nil fields are applied;
// DueDatePresent with a nil DueDate clears the due date.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
	DueDate        *time.Time
	DueDatePresent bool
}

// Fields returns the column assignments present in the input.
func (in UpdateTaskInput) Fields() map[string]any {
	fields := make(map[string]any)
	if in.Title != nil {
		fields[FieldTitle] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		fields[FieldDescription] = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		fields[FieldStatus] = *in.Status
	}
	if in.Priority != nil {
		fields[FieldPriority] = *in.Priority
	}
	if in.DueDatePresent {
		if in.DueDate == nil {
			fields[FieldDueDate] = nil
		} else {
			fields[FieldDueDate] = models.DateOnly(*in.DueDate)
		}
	}
	return fields
}

// ListTasks runs a filtered, sorted, paginated query over the caller's tasks
func (s *TaskService) ListTasks(ctx context.Context, query repository.TaskQuery) ([]models.Task, error) {
	tasks, err := s.taskRepo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a task owned by userID
func (s *TaskService) GetTask(ctx context.Context, taskID, userID uint64) (*models.Task, error) {
	return s.loadOwned(ctx, taskID, userID)
}

// CreateTask inserts a task for userID and returns the stored row
func (s *TaskService) CreateTask(ctx context.Context, userID uint64, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	task := &models.Task{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      models.TaskStatusPending,
		Priority:    models.TaskPriorityMedium,
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		due := models.DateOnly(*input.DueDate)
		task.DueDate = &due
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.reload(ctx, task.ID)
}

// UpdateTask applies a partial update to a task owned by userID
func (s *TaskService) UpdateTask(ctx context.Context, taskID, userID uint64, input UpdateTaskInput) (*models.Task, error) {
	if _, err := s.loadOwned(ctx, taskID, userID); err != nil {
		return nil, err
	}

	fields := input.Fields()
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	if title, ok := fields[FieldTitle]; ok && title == "" {
		return nil, ErrTitleRequired
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	if err := s.taskRepo.Update(ctx, taskID, userID, fields); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.reload(ctx, taskID)
}

// DeleteTask removes a task owned by userID
func (s *TaskService) DeleteTask(ctx context.Context, taskID, userID uint64) error {
	if _, err := s.loadOwned(ctx, taskID, userID); err != nil {
		return err
	}

	affected, err := s.taskRepo.Delete(ctx, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	// A concurrent delete won between the check and the delete.
	if affected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// Stats returns the aggregate counts over every task owned by userID. Overdue
// is judged against the current UTC date.
func (s *TaskService) Stats(ctx context.Context, userID uint64) (*repository.TaskStats, error) {
	stats, err := s.taskRepo.Stats(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to compute task stats: %w", err)
	}
	return stats, nil
}

// loadOwned checks existence before ownership, so a missing row is
// ErrTaskNotFound and someone else's row is ErrTaskForbidden.
func (s *TaskService) loadOwned(ctx context.Context, taskID, userID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.UserID != userID {
		return nil, ErrTaskForbidden
	}

	return task, nil
}

// reload reads back the canonical row after a write
func (s *TaskService) reload(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}
	return task, nil
}
