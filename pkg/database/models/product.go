package models

import (
	"time"

	"gorm.io/gorm/schema"
)

// Product is an item of the shop catalog
type Product struct {
	ID              int        `gorm:"column:id;primaryKey;size:32" json:"id"`
	Title           string     `gorm:"column:title;size:256" json:"title"`
	Subtitle        string     `gorm:"column:subtitle;size:256" json:"subtitle"`
	Description     string     `gorm:"column:description;type:text" json:"description"`
	Size            string     `gorm:"column:size;size:256" json:"size"`
	Price           *float64   `gorm:"column:price;type:double precision" json:"price"`
	Color           string     `gorm:"column:color;size:256" json:"color"`
	ColorsAvailable string     `gorm:"column:colorsAvailable;size:256" json:"colorsAvailable"`
	Stock           *int       `gorm:"column:stock;size:32" json:"stock"`
	CreatedAt       time.Time  `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt       *time.Time `gorm:"column:updatedAt" json:"updatedAt"`

	// Relationships
	Images []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"productImages,omitempty"`
}

// ProductImage is an image of a Product
type ProductImage struct {
	ID        int    `gorm:"column:id;primaryKey;size:32" json:"id"`
	ProductID int    `gorm:"column:productId;size:32;not null" json:"productId"`
	Source    string `gorm:"column:source;size:255" json:"source"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Product
func (Product) TableName(namer schema.Namer) string {
	return namer.TableName("product")
}

// TableName returns the table name for ProductImage
func (ProductImage) TableName(namer schema.Namer) string {
	return namer.TableName("productImage")
}
