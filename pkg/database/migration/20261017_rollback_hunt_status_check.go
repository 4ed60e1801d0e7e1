package migration

import (
	"gorm.io/gorm"
)

// RollbackHuntStatusCheck removes the status check constraint from the hunt table.
// Statuses are still validated by the Hunt model before saving.
func RollbackHuntStatusCheck(db *gorm.DB) error {
	logger := migrationLogger()

	if !db.Migrator().HasConstraint(&HuntStatusMigration{}, HuntStatusCheckName) {
		logger.Debug("Hunt status check not present, nothing to roll back", nil)
		return nil
	}

	logger.Info("Dropping hunt status check constraint...", nil)
	if err := db.Migrator().DropConstraint(&HuntStatusMigration{}, HuntStatusCheckName); err != nil {
		return err
	}

	logger.Info("Hunt status check rollback completed successfully", nil)
	return nil
}
