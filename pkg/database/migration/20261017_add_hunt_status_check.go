package migration

import (
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// HuntStatusCheckName is the name of the check constraint on hunt.status
const HuntStatusCheckName = "hunt_status_check"

// AddHuntStatusCheck adds the status check constraint to hunt tables created
// before the constraint existed. Tables created by AutoMigrate already carry it.
func AddHuntStatusCheck(db *gorm.DB) error {
	logger := migrationLogger()

	if db.Migrator().HasConstraint(&HuntStatusMigration{}, HuntStatusCheckName) {
		logger.Debug("Hunt status check already present", nil)
		return nil
	}

	logger.Info("Adding hunt status check constraint...", nil)
	if err := db.Migrator().CreateConstraint(&HuntStatusMigration{}, HuntStatusCheckName); err != nil {
		return err
	}

	logger.Info("Hunt status check migration completed successfully", nil)
	return nil
}

// HuntStatusMigration is a temporary struct for migration constraint checks
type HuntStatusMigration struct {
	ID     int    `gorm:"column:id;primaryKey;size:32"`
	Status string `gorm:"column:status;size:255;not null;check:hunt_status_check,status IN ('success','exp_failure','req_failure','masq_failure')"`
}

// TableName returns the table name for migration checks
func (HuntStatusMigration) TableName(namer schema.Namer) string {
	return namer.TableName("hunt")
}
