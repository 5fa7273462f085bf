package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds the indexes used by the task and tag listings.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Active/completed split and priority filter
		{"tasks", "idx_tasks_is_completed", "is_completed"},
		{"tasks", "idx_tasks_priority", "priority"},
		{"tasks", "idx_tasks_created_at", "created_at"},

		// Reverse lookup from a tag to its tasks
		{"task_tag", "idx_task_tag_tag_id", "tag_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
