// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Open returns an empty SQLite database stored under t.TempDir with
// foreign keys enforced. The connection is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.NewGormDB(database.Options{
		Driver:       database.DriverSQLite,
		DSN:          filepath.Join(t.TempDir(), "vtmsu.db"),
		LogLevel:     "error",
		MaxOpenConns: 1,
		Logger:       logging.NewZapLoggerFrom(zap.NewNop(), "test"),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// OpenMigrated returns a database with every table created
func OpenMigrated(t testing.TB) *gorm.DB {
	t.Helper()

	db := Open(t)
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// User inserts a user and returns it
func User(t testing.TB, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{Name: email, Email: email}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}
