package migration

import (
	"fmt"

	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/logging"
	"gorm.io/gorm"
)

// Step is an incremental migration with its rollback
type Step struct {
	Name     string
	Up       func(db *gorm.DB) error
	Rollback func(db *gorm.DB) error
}

// Steps returns the incremental migrations in the order they are applied
func Steps() []Step {
	return []Step{
		{
			Name:     "20261017_add_hunt_status_check",
			Up:       AddHuntStatusCheck,
			Rollback: RollbackHuntStatusCheck,
		},
	}
}

// Latest returns the name of the newest incremental step, which is the
// schema level a fully migrated database is at
func Latest() string {
	steps := Steps()
	if len(steps) == 0 {
		return ""
	}
	return steps[len(steps)-1].Name
}

func migrationLogger() logging.Logger {
	return logging.GetGlobalLoggerFactory().CreateLogger("migration")
}

// RunMigration creates or updates every table and then applies the
// incremental steps
func RunMigration(db *gorm.DB) error {
	logger := migrationLogger()

	logger.Info("Running database migrations...", map[string]interface{}{
		"tables": len(models.All()),
	})
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	for _, step := range Steps() {
		logger.Info("Running migration step", map[string]interface{}{"step": step.Name})
		if err := step.Up(db); err != nil {
			return fmt.Errorf("migration %s: %w", step.Name, err)
		}
	}

	logger.Info("Migrations completed successfully", nil)
	return nil
}

// Rollback reverts the incremental steps, newest first
func Rollback(db *gorm.DB) error {
	logger := migrationLogger()

	steps := Steps()
	for i := len(steps) - 1; i >= 0; i-- {
		logger.Info("Rolling back migration step", map[string]interface{}{"step": steps[i].Name})
		if err := steps[i].Rollback(db); err != nil {
			return fmt.Errorf("rollback %s: %w", steps[i].Name, err)
		}
	}

	logger.Info("Rollback completed successfully", nil)
	return nil
}

// Reset drops every table, children before parents
func Reset(db *gorm.DB) error {
	logger := migrationLogger()

	all := models.All()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", all[i], err)
		}
	}

	logger.Info("Database reset successfully", map[string]interface{}{"tables": len(all)})
	return nil
}
