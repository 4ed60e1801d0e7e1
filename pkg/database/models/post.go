package models

import (
	"time"

	"gorm.io/gorm/schema"
)

// Post is a short piece of site content written by a User
type Post struct {
	ID          int        `gorm:"column:id;primaryKey;size:32" json:"id"`
	Name        string     `gorm:"column:name;size:256;index:post_name_idx" json:"name"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   *time.Time `gorm:"column:updatedAt" json:"updatedAt"`
	Content     string     `gorm:"column:content;type:text" json:"content"`
	CreatedByID string     `gorm:"column:createdById;size:255;not null;index:createdById_idx" json:"createdById"`

	CreatedBy *User `gorm:"foreignKey:CreatedByID;constraint:OnDelete:RESTRICT" json:"createdBy,omitempty"`
}

// TableName returns the table name for Post
func (Post) TableName(namer schema.Namer) string {
	return namer.TableName("post")
}
