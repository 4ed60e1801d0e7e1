package database

import (
	"gorm.io/gorm/schema"
)

// Namer prefixes table names without re-casing or pluralising them.
// Models pass their exact base name ("huntingGround") through TableName.
type Namer struct {
	schema.NamingStrategy
}

var _ schema.Namer = Namer{}

// NewNamer creates a Namer using prefix, or DefaultTablePrefix when empty
func NewNamer(prefix string) Namer {
	if prefix == "" {
		prefix = DefaultTablePrefix
	}
	return Namer{NamingStrategy: schema.NamingStrategy{
		TablePrefix:   prefix,
		SingularTable: true,
	}}
}

// TableName returns the prefixed table name
func (n Namer) TableName(table string) string {
	return n.TablePrefix + table
}

// Prefix returns the configured table prefix
func (n Namer) Prefix() string {
	return n.TablePrefix
}

// TableName returns base with the given prefix applied, for raw SQL
func TableName(prefix, base string) string {
	return NewNamer(prefix).TableName(base)
}
