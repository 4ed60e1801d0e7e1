// Package database opens the GORM connection and hosts the storage-level
// helpers shared by migrations and repositories.
package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/latoulicious/vtmsu/pkg/logging"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// DefaultTablePrefix isolates this project's tables inside a shared database
const DefaultTablePrefix = "vtmsu-drizzle-postgres_"

// ErrEmptyDSN is returned when no connection string is configured
var ErrEmptyDSN = errors.New("database DSN is not set")

// Options configures a database connection
type Options struct {
	Driver          string
	DSN             string
	TablePrefix     string
	LogLevel        string
	SlowThreshold   time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Logger          logging.Logger
}

// NewGormDB creates a new GORM database connection using the provided options
func NewGormDB(opts Options) (*gorm.DB, error) {
	if opts.DSN == "" {
		return nil, ErrEmptyDSN
	}

	dialector, err := openDialector(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.GetGlobalLoggerFactory().CreateLogger("gorm")
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NamingStrategy: NewNamer(opts.TablePrefix),
		Logger:         logging.NewGormLogger(logger, logging.GormLogLevel(opts.LogLevel), opts.SlowThreshold),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driverName(opts.Driver), err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	return db, nil
}

func openDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driverName(driver) {
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverMySQL:
		normalized, err := MySQLDSN(dsn)
		if err != nil {
			return nil, err
		}
		return mysql.Open(normalized), nil
	case DriverSQLite:
		return sqlite.Open(SQLiteDSN(dsn)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func driverName(driver string) string {
	if driver == "" {
		return DriverPostgres
	}
	return strings.ToLower(driver)
}

// SQLiteDSN turns on foreign key enforcement, which SQLite leaves off by default
func SQLiteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// MySQLDSN makes MySQL report matched rather than changed rows, so an update
// writing identical values is not mistaken for a missing row. Time columns
// are parsed into time.Time.
func MySQLDSN(dsn string) (string, error) {
	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ClientFoundRows = true
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
