package repository

import (
	"context"
	"net"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlRecorder accepts every statement and keeps its text
type sqlRecorder struct {
	mu    sync.Mutex
	stmts []string
}

func (r *sqlRecorder) Match(expectedSQL, actualSQL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stmts = append(r.stmts, actualSQL)
	return nil
}

func (r *sqlRecorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stmts) == 0 {
		return ""
	}
	return r.stmts[len(r.stmts)-1]
}

func newMockRepo(t *testing.T) (TaskRepository, sqlmock.Sqlmock, *sqlRecorder) {
	t.Helper()

	rec := &sqlRecorder{}
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherFunc(rec.Match)))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return NewTaskRepository(db), mock, rec
}

func emptyTaskRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "title", "description", "status", "priority", "due_date", "created_at", "updated_at"})
}

func TestListBindsUserInputAsParameters(t *testing.T) {
	repo, mock, rec := newMockRepo(t)

	search := "x' OR '1'='1"
	mock.ExpectQuery("list").
		WithArgs(uint64(7), "Pending", "%x' or '1'='1%", "%x' or '1'='1%", 10).
		WillReturnRows(emptyTaskRows())

	tasks, err := repo.List(context.Background(), TaskQuery{UserID: 7, Status: "Pending", Search: search})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	stmt := rec.last()
	assert.NotContains(t, stmt, "'1'='1")
	assert.NotContains(t, stmt, "Pending")
	assert.Contains(t, stmt, "LOWER(title) LIKE ?")
	assert.Contains(t, stmt, "ORDER BY `created_at` DESC")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrderColumnComesFromWhitelist(t *testing.T) {
	tests := []struct {
		name  string
		query TaskQuery
		want  string
	}{
		{name: "title ascending", query: TaskQuery{SortBy: "title", Order: "asc"}, want: "ORDER BY `title` LIMIT"},
		{name: "priority descending", query: TaskQuery{SortBy: "priority", Order: "DESC"}, want: "ORDER BY `priority` DESC"},
		{name: "injection falls back", query: TaskQuery{SortBy: "title; DROP TABLE tasks", Order: "asc; --"}, want: "ORDER BY `created_at` DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, rec := newMockRepo(t)
			mock.ExpectQuery("list").WillReturnRows(emptyTaskRows())

			_, err := repo.List(context.Background(), tt.query)
			require.NoError(t, err)

			stmt := rec.last()
			assert.Contains(t, stmt, tt.want)
			assert.NotContains(t, stmt, "DROP")
			assert.NotContains(t, stmt, "--")
		})
	}
}

func TestStatsIsOneQueryWithBoundDate(t *testing.T) {
	repo, mock, rec := newMockRepo(t)

	today := time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)
	mock.ExpectQuery("stats").
		WithArgs("Pending", "In Progress", "Completed", "High", time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), "Completed", uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{
			"total_tasks", "pending_count", "in_progress_count", "completed_count", "high_priority_count", "overdue_count",
		}).AddRow(6, 2, 2, 2, 1, 1))

	stats, err := repo.Stats(context.Background(), 3, today)
	require.NoError(t, err)
	assert.Equal(t, TaskStats{
		TotalTasks:        6,
		PendingCount:      2,
		InProgressCount:   2,
		CompletedCount:    2,
		HighPriorityCount: 1,
		OverdueCount:      1,
	}, *stats)

	stmt := rec.last()
	assert.Equal(t, 1, strings.Count(stmt, "SELECT"))
	assert.Contains(t, stmt, "COALESCE(SUM(")
	assert.NotContains(t, stmt, "2024-06-15")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreErrorsSurfaceUnchanged(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	refused := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
	mock.ExpectQuery("list").WillReturnError(refused)

	_, err := repo.List(context.Background(), TaskQuery{UserID: 1})
	require.Error(t, err)
	assert.True(t, apierrors.IsStoreUnavailable(err))
	assert.False(t, apierrors.IsDuplicateEntry(err))
}

func TestDeleteReportsAffectedRows(t *testing.T) {
	repo, mock, rec := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("delete").WithArgs(uint64(5), uint64(9)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	affected, err := repo.Delete(context.Background(), 5, 9)
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.Contains(t, rec.last(), "id = ? AND user_id = ?")
	assert.NoError(t, mock.ExpectationsWereMet())
}
