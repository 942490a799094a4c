package database

import (
	"fmt"

	"github.com/yukikurage/todo-reminder-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type index struct {
	name    string
	columns string
}

// taskIndexes back the owner listing filters and the reminder scan.
var taskIndexes = []index{
	{"idx_tasks_owner_completed_due", "owner_id, completed, due_date"},
	{"idx_tasks_completed_due", "completed, due_date"},
	{"idx_tasks_assigned_by", "assigned_by_id"},
}

// AddIndexes adds composite indexes that struct tags do not describe
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	migrator := db.Migrator()

	for _, idx := range taskIndexes {
		if migrator.HasIndex(&models.Task{}, idx.name) {
			log.Debug("Index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON tasks (%s)", idx.name, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("Created index", zap.String("index", idx.name), zap.String("columns", idx.columns))
	}

	return nil
}
