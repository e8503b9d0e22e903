package repository

import (
	"context"
	"time"

	"github.com/yukikurage/taskboard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering, sorting and pagination
func (r *GormTaskRepository) List(ctx context.Context, query TaskQuery) ([]models.Task, error) {
	q := query.Normalize()

	db := r.db.WithContext(ctx).Model(&models.Task{}).Where("user_id = ?", q.UserID)

	// Apply filters
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.Priority != "" {
		db = db.Where("priority = ?", q.Priority)
	}
	if pattern := q.SearchPattern(); pattern != "" {
		db = db.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}

	db = db.Order(clause.OrderByColumn{
		Column: clause.Column{Name: q.SortBy},
		Desc:   q.Order == OrderDesc,
	})

	tasks := []models.Task{}
	if err := db.Limit(q.Limit).Offset(q.Offset).Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update updates the whitelisted columns of a task
func (r *GormTaskRepository) Update(ctx context.Context, id, userID uint64, fields map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields).Error
}

// Delete hard deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id, userID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Task{})
	return result.RowsAffected, result.Error
}

// Stats computes the aggregate counts for a user in a single query
func (r *GormTaskRepository) Stats(ctx context.Context, userID uint64, today time.Time) (*TaskStats, error) {
	var stats TaskStats

	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Select(`COUNT(*) AS total_tasks,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending_count,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS in_progress_count,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed_count,
			COALESCE(SUM(CASE WHEN priority = ? THEN 1 ELSE 0 END), 0) AS high_priority_count,
			COALESCE(SUM(CASE WHEN due_date < ? AND status <> ? THEN 1 ELSE 0 END), 0) AS overdue_count`,
			models.TaskStatusPending,
			models.TaskStatusInProgress,
			models.TaskStatusCompleted,
			models.TaskPriorityHigh,
			models.DateOnly(today),
			models.TaskStatusCompleted,
		).
		Where("user_id = ?", userID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
