package database

import (
	"errors"
	"fmt"
	"strings"

	gosqlite "github.com/glebarez/go-sqlite"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a looked-up row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrUniqueViolation is returned when a primary or unique key already exists
	ErrUniqueViolation = errors.New("unique constraint violated")
	// ErrForeignKeyViolation is returned when a reference points to a missing row
	// or a referenced row cannot be deleted
	ErrForeignKeyViolation = errors.New("foreign key constraint violated")
	// ErrNotNullViolation is returned when a required column is missing
	ErrNotNullViolation = errors.New("not null constraint violated")
	// ErrCheckViolation is returned when a check constraint rejects a value
	ErrCheckViolation = errors.New("check constraint violated")
	// ErrValueTooLong is returned when a value exceeds its column length
	ErrValueTooLong = errors.New("value too long for column")
)

// ClassifiedError keeps the driver error while exposing its class
type ClassifiedError struct {
	Class error
	Err   error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Class, e.Err)
}

// Unwrap exposes both the class and the driver error to errors.Is/As
func (e *ClassifiedError) Unwrap() []error {
	return []error{e.Class, e.Err}
}

// PostgreSQL SQLSTATE codes
var pgCodes = map[string]error{
	"23505": ErrUniqueViolation,
	"23503": ErrForeignKeyViolation,
	"23502": ErrNotNullViolation,
	"23514": ErrCheckViolation,
	"22001": ErrValueTooLong,
}

// MySQL server error numbers
var mysqlCodes = map[uint16]error{
	1062: ErrUniqueViolation,
	1451: ErrForeignKeyViolation,
	1452: ErrForeignKeyViolation,
	1048: ErrNotNullViolation,
	1364: ErrNotNullViolation,
	3819: ErrCheckViolation,
	1406: ErrValueTooLong,
}

// SQLite extended result codes
var sqliteCodes = map[int]error{
	sqlite3.SQLITE_CONSTRAINT_UNIQUE:     ErrUniqueViolation,
	sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY: ErrUniqueViolation,
	sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY: ErrForeignKeyViolation,
	sqlite3.SQLITE_CONSTRAINT_NOTNULL:    ErrNotNullViolation,
	sqlite3.SQLITE_CONSTRAINT_CHECK:      ErrCheckViolation,
}

var sqliteMessages = []struct {
	fragment string
	class    error
}{
	{"UNIQUE constraint failed", ErrUniqueViolation},
	{"FOREIGN KEY constraint failed", ErrForeignKeyViolation},
	{"NOT NULL constraint failed", ErrNotNullViolation},
	{"CHECK constraint failed", ErrCheckViolation},
}

// Classify wraps a storage error with the class of constraint it violated.
// Unknown errors are returned unchanged and nil stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if class := classOf(err); class != nil {
		if errors.Is(err, class) {
			return err
		}
		return &ClassifiedError{Class: class, Err: err}
	}
	return err
}

// IsConstraintViolation reports whether err is any storage constraint failure
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrUniqueViolation) ||
		errors.Is(err, ErrForeignKeyViolation) ||
		errors.Is(err, ErrNotNullViolation) ||
		errors.Is(err, ErrCheckViolation) ||
		errors.Is(err, ErrValueTooLong)
}

func classOf(err error) error {
	for _, class := range []error{ErrNotFound, ErrUniqueViolation, ErrForeignKeyViolation, ErrNotNullViolation, ErrCheckViolation, ErrValueTooLong} {
		if errors.Is(err, class) {
			return class
		}
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrUniqueViolation
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKeyViolation
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return ErrCheckViolation
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgCodes[pgErr.Code]
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return mysqlCodes[myErr.Number]
	}

	var liteErr *gosqlite.Error
	if errors.As(err, &liteErr) {
		if class, ok := sqliteCodes[liteErr.Code()]; ok {
			return class
		}
	}

	msg := err.Error()
	for _, m := range sqliteMessages {
		if strings.Contains(msg, m.fragment) {
			return m.class
		}
	}

	return nil
}
