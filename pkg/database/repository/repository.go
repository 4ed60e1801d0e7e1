// Package repository holds the GORM-backed data access of every aggregate.
//
// Column names of the schema are camelCase, so conditions are built with
// clause expressions rather than raw SQL strings to keep them quoted on
// every dialect. Every error returned by a repository has gone through
// database.Classify.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// eq matches a column of the queried table against a value
func eq(column string, value interface{}) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: column}, Value: value}
}

// orderBy sorts by a quoted column
func orderBy(column string, desc bool) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}
}

// ascNullsLast sorts ascending by each column in turn with NULLs after every
// value, whatever the engine's own NULL ordering. It must be the only Order
// of the query since GORM drops an order expression when merging.
func ascNullsLast(columns ...string) clause.OrderBy {
	keys := make([]string, 0, len(columns))
	vars := make([]interface{}, 0, 2*len(columns))
	for _, name := range columns {
		column := clause.Column{Name: name}
		keys = append(keys, "? IS NULL, ?")
		vars = append(vars, column, column)
	}
	return clause.OrderBy{Expression: clause.Expr{SQL: strings.Join(keys, ", "), Vars: vars}}
}

func repoLogger(table string) logging.Logger {
	return logging.GetGlobalLoggerFactory().CreateRepositoryLogger(table)
}

// first loads one row matching conds into a new T
func first[T any](ctx context.Context, db *gorm.DB, conds ...interface{}) (*T, error) {
	var row T
	if err := db.WithContext(ctx).First(&row, conds...).Error; err != nil {
		return nil, database.Classify(err)
	}
	return &row, nil
}

// update writes every column of model except its associations and
// creation time, failing with ErrNotFound when no row matched
func update(ctx context.Context, db *gorm.DB, model interface{}) error {
	res := db.WithContext(ctx).Model(model).
		Select("*").
		Omit(clause.Associations, "created_at").
		Updates(model)
	if res.Error != nil {
		return database.Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// remove deletes rows of model matching conds, failing with ErrNotFound when
// nothing was deleted
func remove(ctx context.Context, db *gorm.DB, model interface{}, conds ...interface{}) error {
	res := db.WithContext(ctx).Delete(model, conds...)
	if res.Error != nil {
		return database.Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// IsNotFound reports whether err means the looked-up row does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}
