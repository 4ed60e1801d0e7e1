package models

import (
	"time"

	"gorm.io/gorm/schema"
)

// Rule is an ordered documentation entry
type Rule struct {
	ID          int        `gorm:"column:id;primaryKey;size:32" json:"id"`
	Name        string     `gorm:"column:name;size:256" json:"name"`
	Link        string     `gorm:"column:link;size:255" json:"link"`
	CategoryID  *int       `gorm:"column:categoryId;size:32" json:"categoryId"`
	OrderedAs   *int       `gorm:"column:orderedAs;size:32" json:"orderedAs"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	CreatedByID string     `gorm:"column:createdById;size:255;not null" json:"createdById"`
	UpdatedAt   *time.Time `gorm:"column:updatedAt" json:"updatedAt"`
	Content     string     `gorm:"column:content;type:text" json:"content"`

	CreatedBy *User `gorm:"foreignKey:CreatedByID;constraint:OnDelete:RESTRICT" json:"createdBy,omitempty"`
}

// TableName returns the table name for Rule
func (Rule) TableName(namer schema.Namer) string {
	return namer.TableName("rule")
}
