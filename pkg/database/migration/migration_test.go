package migration_test

import (
	"testing"

	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/dbtest"
	"github.com/latoulicious/vtmsu/pkg/database/migration"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var expectedTables = []string{
	"user", "account", "session", "verificationToken", "post",
	"faction", "clan", "clanInFaction", "ability", "feature",
	"abilityAvailable", "featureAvailable", "character",
	"characterAbilities", "characterFeatures", "huntingGround",
	"huntingData", "huntingInstance", "huntingDescription", "hunt",
	"rule", "product", "productImage",
}

func TestRunMigrationCreatesPrefixedTables(t *testing.T) {
	db := dbtest.Open(t)

	require.NoError(t, migration.RunMigration(db))

	tables, err := db.Migrator().GetTables()
	require.NoError(t, err)

	for _, base := range expectedTables {
		assert.Contains(t, tables, database.TableName("", base))
	}
	assert.NotContains(t, tables, "user")
}

func TestRunMigrationIsRepeatable(t *testing.T) {
	db := dbtest.Open(t)

	require.NoError(t, migration.RunMigration(db))
	require.NoError(t, migration.RunMigration(db))
}

func TestRunMigrationCreatesNamedIndexes(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, migration.RunMigration(db))

	assert.True(t, db.Migrator().HasIndex(&models.Account{}, "account_userId_idx"))
	assert.True(t, db.Migrator().HasIndex(&models.Session{}, "session_userId_idx"))
	assert.True(t, db.Migrator().HasIndex(&models.Post{}, "post_name_idx"))
	assert.True(t, db.Migrator().HasIndex(&models.Post{}, "createdById_idx"))
}

func TestHuntStatusCheckRollbackAndReapply(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, migration.RunMigration(db))

	assert.True(t, db.Migrator().HasConstraint(&migration.HuntStatusMigration{}, migration.HuntStatusCheckName))

	require.NoError(t, migration.Rollback(db))
	assert.False(t, db.Migrator().HasConstraint(&migration.HuntStatusMigration{}, migration.HuntStatusCheckName))

	// Rolling back twice is a no-op
	require.NoError(t, migration.RollbackHuntStatusCheck(db))

	require.NoError(t, migration.AddHuntStatusCheck(db))
	assert.True(t, db.Migrator().HasConstraint(&migration.HuntStatusMigration{}, migration.HuntStatusCheckName))
}

func TestResetDropsEveryTable(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, migration.RunMigration(db))

	require.NoError(t, migration.Reset(db))

	for _, model := range models.All() {
		assert.False(t, db.Migrator().HasTable(model), "%T should be dropped", model)
	}
}

func TestMigrationStructure(t *testing.T) {
	helper := migration.HuntStatusMigration{}
	assert.Equal(t, database.DefaultTablePrefix+"hunt", helper.TableName(database.NewNamer("")))

	steps := migration.Steps()
	require.Len(t, steps, 1)
	assert.Equal(t, "20261017_add_hunt_status_check", steps[0].Name)
	assert.NotNil(t, steps[0].Up)
	assert.NotNil(t, steps[0].Rollback)
}

func TestLatestIsNewestStep(t *testing.T) {
	steps := migration.Steps()
	require.NotEmpty(t, steps)
	assert.Equal(t, steps[len(steps)-1].Name, migration.Latest())
}
