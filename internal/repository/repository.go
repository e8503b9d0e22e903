package repository

import (
	"context"
	"time"

	"github.com/yukikurage/taskboard/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create inserts a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID regardless of owner
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// List retrieves the caller's tasks matching the query
	List(ctx context.Context, query TaskQuery) ([]models.Task, error)

	// Update applies the given column values to the task owned by userID
	Update(ctx context.Context, id, userID uint64, fields map[string]any) error

	// Delete removes the task owned by userID and reports the affected rows
	Delete(ctx context.Context, id, userID uint64) (int64, error)

	// Stats aggregates counts over every task owned by userID
	Stats(ctx context.Context, userID uint64, today time.Time) (*TaskStats, error)
}

// TaskStats is one stats snapshot for a user
type TaskStats struct {
	TotalTasks        int64
	PendingCount      int64
	InProgressCount   int64
	CompletedCount    int64
	HighPriorityCount int64
	OverdueCount      int64
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
