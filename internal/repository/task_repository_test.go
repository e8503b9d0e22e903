package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskboard/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type TaskRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo TaskRepository
	ctx  context.Context
}

func TestTaskRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryTestSuite))
}

func (s *TaskRepositoryTestSuite) SetupTest() {
	var err error
	s.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)

	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	s.Require().NoError(s.db.AutoMigrate(&models.User{}, &models.Task{}))
	s.repo = NewTaskRepository(s.db)
	s.ctx = context.Background()
}

func (s *TaskRepositoryTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

func (s *TaskRepositoryTestSuite) insert(task models.Task) *models.Task {
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	s.Require().NoError(s.repo.Create(s.ctx, &task))
	return &task
}

func date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func taskTitles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func (s *TaskRepositoryTestSuite) TestCreateAppliesDefaults() {
	task := &models.Task{UserID: 1, Title: "defaults"}
	s.Require().NoError(s.repo.Create(s.ctx, task))

	found, err := s.repo.FindByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Equal(models.TaskStatusPending, found.Status)
	s.Equal(models.TaskPriorityMedium, found.Priority)
	s.Nil(found.DueDate)
	s.False(found.CreatedAt.IsZero())
}

func (s *TaskRepositoryTestSuite) TestFindByIDMissing() {
	_, err := s.repo.FindByID(s.ctx, 404)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *TaskRepositoryTestSuite) TestList() {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.insert(models.Task{UserID: 1, Title: "Alpha", Priority: models.TaskPriorityLow, DueDate: date(2024, 6, 30), CreatedAt: base})
	s.insert(models.Task{UserID: 1, Title: "bravo", Description: "ALPHA numeric", Status: models.TaskStatusCompleted, CreatedAt: base.Add(time.Hour)})
	s.insert(models.Task{UserID: 1, Title: "Charlie", Priority: models.TaskPriorityHigh, DueDate: date(2024, 6, 10), CreatedAt: base.Add(2 * time.Hour)})
	s.insert(models.Task{UserID: 2, Title: "Alpha of someone else", CreatedAt: base.Add(3 * time.Hour)})

	tests := []struct {
		name  string
		query TaskQuery
		want  []string
	}{
		{name: "newest first by default", query: TaskQuery{UserID: 1}, want: []string{"Charlie", "bravo", "Alpha"}},
		{name: "status filter", query: TaskQuery{UserID: 1, Status: "Completed"}, want: []string{"bravo"}},
		{name: "priority filter", query: TaskQuery{UserID: 1, Priority: "High"}, want: []string{"Charlie"}},
		{name: "search matches title or description", query: TaskQuery{UserID: 1, Search: "alpha", SortBy: "created_at", Order: "asc"}, want: []string{"Alpha", "bravo"}},
		{name: "search without match", query: TaskQuery{UserID: 1, Search: "zulu"}, want: []string{}},
		{name: "due date ascending", query: TaskQuery{UserID: 1, Status: "Pending", SortBy: "due_date", Order: "ASC"}, want: []string{"Charlie", "Alpha"}},
		{name: "limit and offset", query: TaskQuery{UserID: 1, Limit: 2, Offset: 1}, want: []string{"bravo", "Alpha"}},
		{name: "other user", query: TaskQuery{UserID: 2}, want: []string{"Alpha of someone else"}},
		{name: "unknown user", query: TaskQuery{UserID: 3}, want: []string{}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			tasks, err := s.repo.List(s.ctx, tt.query)
			s.Require().NoError(err)
			s.NotNil(tasks)
			s.Equal(tt.want, taskTitles(tasks))
		})
	}
}

func (s *TaskRepositoryTestSuite) TestListLimitCapped() {
	for i := 0; i < MaxLimit+5; i++ {
		s.insert(models.Task{UserID: 1, Title: "bulk"})
	}

	tasks, err := s.repo.List(s.ctx, TaskQuery{UserID: 1, Limit: 1000})
	s.Require().NoError(err)
	s.Len(tasks, MaxLimit)
}

func (s *TaskRepositoryTestSuite) TestUpdate() {
	task := s.insert(models.Task{UserID: 1, Title: "before", DueDate: date(2024, 6, 10)})

	err := s.repo.Update(s.ctx, task.ID, 1, map[string]any{
		"title":    "after",
		"due_date": nil,
	})
	s.Require().NoError(err)

	found, err := s.repo.FindByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Equal("after", found.Title)
	s.Nil(found.DueDate)
	s.Equal(models.TaskStatusPending, found.Status)
}

func (s *TaskRepositoryTestSuite) TestUpdateScopedToOwner() {
	task := s.insert(models.Task{UserID: 1, Title: "mine"})

	s.Require().NoError(s.repo.Update(s.ctx, task.ID, 2, map[string]any{"title": "theirs"}))

	found, err := s.repo.FindByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Equal("mine", found.Title)
}

func (s *TaskRepositoryTestSuite) TestDelete() {
	task := s.insert(models.Task{UserID: 1, Title: "doomed"})

	affected, err := s.repo.Delete(s.ctx, task.ID, 2)
	s.Require().NoError(err)
	s.Zero(affected)

	affected, err = s.repo.Delete(s.ctx, task.ID, 1)
	s.Require().NoError(err)
	s.Equal(int64(1), affected)

	_, err = s.repo.FindByID(s.ctx, task.ID)
	s.ErrorIs(err, gorm.ErrRecordNotFound)

	affected, err = s.repo.Delete(s.ctx, task.ID, 1)
	s.Require().NoError(err)
	s.Zero(affected)
}

func (s *TaskRepositoryTestSuite) TestStats() {
	today := time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC)

	s.insert(models.Task{UserID: 1, Title: "overdue", DueDate: date(2024, 6, 14)})
	s.insert(models.Task{UserID: 1, Title: "overdue in progress", Status: models.TaskStatusInProgress, Priority: models.TaskPriorityHigh, DueDate: date(2024, 1, 1)})
	s.insert(models.Task{UserID: 1, Title: "done late", Status: models.TaskStatusCompleted, DueDate: date(2024, 6, 1)})
	s.insert(models.Task{UserID: 1, Title: "due today", DueDate: date(2024, 6, 15)})
	s.insert(models.Task{UserID: 1, Title: "undated", Priority: models.TaskPriorityHigh})
	s.insert(models.Task{UserID: 2, Title: "not mine", DueDate: date(2020, 1, 1)})

	stats, err := s.repo.Stats(s.ctx, 1, today)
	s.Require().NoError(err)
	s.Equal(TaskStats{
		TotalTasks:        5,
		PendingCount:      3,
		InProgressCount:   1,
		CompletedCount:    1,
		HighPriorityCount: 2,
		OverdueCount:      2,
	}, *stats)
}

func (s *TaskRepositoryTestSuite) TestStatsEmpty() {
	stats, err := s.repo.Stats(s.ctx, 99, time.Now())
	s.Require().NoError(err)
	s.Equal(TaskStats{}, *stats)
}
