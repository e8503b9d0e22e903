package database

import (
	"fmt"
	"log"

	"github.com/yukikurage/taskboard/internal/models"
	"gorm.io/gorm"
)

// compositeIndexes back the list query: every list is scoped by user_id and
// ordered by one of the whitelisted sort columns.
var compositeIndexes = []struct {
	name    string
	columns string
}{
	{"idx_tasks_user_created_at", "user_id, created_at"},
	{"idx_tasks_user_status", "user_id, status"},
	{"idx_tasks_user_due_date", "user_id, due_date"},
}

// AddIndexes adds performance-critical indexes to the tasks table
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range compositeIndexes {
		if migrator.HasIndex(&models.Task{}, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON tasks (%s)", idx.name, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on tasks(%s)", idx.name, idx.columns)
	}

	return nil
}
