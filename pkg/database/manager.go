package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/latoulicious/vtmsu/pkg/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DatabaseManager provides connection health checks and housekeeping
type DatabaseManager struct {
	db *gorm.DB
}

// CleanupResult counts the rows removed by CleanupExpired
type CleanupResult struct {
	Sessions           int64 `json:"sessions"`
	VerificationTokens int64 `json:"verification_tokens"`
	HuntingInstances   int64 `json:"hunting_instances"`
}

// Total returns the number of rows removed across all tables
func (r CleanupResult) Total() int64 {
	return r.Sessions + r.VerificationTokens + r.HuntingInstances
}

// NewDatabaseManager creates a new database manager with GORM
func NewDatabaseManager(gormDB *gorm.DB) *DatabaseManager {
	return &DatabaseManager{
		db: gormDB,
	}
}

// DB returns the underlying GORM handle
func (dm *DatabaseManager) DB() *gorm.DB {
	return dm.db
}

// Close closes the database connection
func (dm *DatabaseManager) Close() error {
	sqlDB, err := dm.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies the connection is alive
func (dm *DatabaseManager) Ping(ctx context.Context) error {
	sqlDB, err := dm.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Version returns the server version string reported by the engine
func (dm *DatabaseManager) Version(ctx context.Context) (string, error) {
	var query string
	switch dm.db.Dialector.Name() {
	case DriverSQLite:
		query = "SELECT sqlite_version()"
	default:
		query = "SELECT version()"
	}

	var version string
	if err := dm.db.WithContext(ctx).Raw(query).Scan(&version).Error; err != nil {
		return "", fmt.Errorf("failed to get database version: %w", err)
	}
	return version, nil
}

// Stats returns connection pool statistics
func (dm *DatabaseManager) Stats() (sql.DBStats, error) {
	sqlDB, err := dm.db.DB()
	if err != nil {
		return sql.DBStats{}, err
	}
	return sqlDB.Stats(), nil
}

// CleanupExpired deletes sessions, verification tokens and temporary hunting
// instances whose expiry is at or before now
func (dm *DatabaseManager) CleanupExpired(ctx context.Context, now time.Time) (CleanupResult, error) {
	var result CleanupResult
	now = now.UTC()

	err := dm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(clause.Lte{Column: clause.Column{Name: "expires"}, Value: now}).Delete(&models.Session{})
		if res.Error != nil {
			return Classify(res.Error)
		}
		result.Sessions = res.RowsAffected

		res = tx.Where(clause.Lte{Column: clause.Column{Name: "expires"}, Value: now}).Delete(&models.VerificationToken{})
		if res.Error != nil {
			return Classify(res.Error)
		}
		result.VerificationTokens = res.RowsAffected

		res = tx.Where(clause.Eq{Column: clause.Column{Name: "temporary"}, Value: true}).
			Where(clause.Lte{Column: clause.Column{Name: "expires"}, Value: now}).
			Delete(&models.HuntingInstance{})
		if res.Error != nil {
			return Classify(res.Error)
		}
		result.HuntingInstances = res.RowsAffected

		return nil
	})

	return result, err
}

// GetTableStats returns the row count of every table
func (dm *DatabaseManager) GetTableStats(ctx context.Context) (map[string]int64, error) {
	stats := make(map[string]int64)
	for _, model := range models.All() {
		stmt := &gorm.Statement{DB: dm.db}
		if err := stmt.Parse(model); err != nil {
			return nil, err
		}

		var count int64
		if err := dm.db.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
			return nil, Classify(err)
		}
		stats[stmt.Schema.Table] = count
	}
	return stats, nil
}
