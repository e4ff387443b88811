package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/yukikurage/taskquest-api/internal/models"
	"gorm.io/gorm"
)

type compositeIndex struct {
	model   any
	name    string
	columns []string
}

// AddIndexes adds the multi-column indexes the task and message listings rely
// on. Single-column indexes are declared on the models.
func AddIndexes(db *gorm.DB) error {
	indexes := []compositeIndex{
		// Task board: tasks of a team filtered by status
		{&models.Task{}, "idx_tasks_team_status", []string{"team_id", "status"}},
		// Task message thread ordering
		{&models.Message{}, "idx_messages_task_created", []string{"task_id", "created_at"}},
		// Achievements page ordering
		{&models.UserAchievement{}, "idx_user_achievements_user_awarded", []string{"user_id", "awarded_at"}},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		cols := strings.Join(idx.columns, ", ")

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, cols)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, stmt.Schema.Table, cols)
	}

	return nil
}
