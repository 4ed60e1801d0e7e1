package repository

import (
	"context"
	"errors"

	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientStock is returned when a stock adjustment would go below zero
var ErrInsufficientStock = errors.New("insufficient stock")

// ProductRepository handles the shop catalog
type ProductRepository struct {
	db     *gorm.DB
	logger logging.Logger
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db, logger: repoLogger("product")}
}

// Create inserts a product and its images in one transaction
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return database.Classify(r.db.WithContext(ctx).Create(product).Error)
}

// Get returns a product with its images
func (r *ProductRepository) Get(ctx context.Context, id int) (*models.Product, error) {
	return first[models.Product](ctx, r.db.Preload("Images", orderByID), id)
}

// List returns every product with its images
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Images", orderByID).
		Order(orderBy("id", false)).
		Find(&products).Error; err != nil {
		return nil, database.Classify(err)
	}
	return products, nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order(orderBy("id", false))
}

// Update overwrites the product columns; images are managed with
// AddImage and RemoveImage
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	return update(ctx, r.db, product)
}

// AddImage attaches an image to a product
func (r *ProductRepository) AddImage(ctx context.Context, productID int, source string) (*models.ProductImage, error) {
	image := &models.ProductImage{ProductID: productID, Source: source}
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return nil, database.Classify(err)
	}
	return image, nil
}

// RemoveImage deletes one image
func (r *ProductRepository) RemoveImage(ctx context.Context, imageID int) error {
	return remove(ctx, r.db, &models.ProductImage{}, imageID)
}

// AdjustStock adds delta to the stock of a product and returns the new
// stock. A missing stock counts as zero. The change is rejected with
// ErrInsufficientStock when the result would be negative.
func (r *ProductRepository) AdjustStock(ctx context.Context, productID, delta int) (int, error) {
	stock := clause.Column{Name: "stock"}

	var newStock int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where(eq("id", productID)).
			Where("COALESCE(?, 0) + ? >= 0", stock, delta).
			Update("stock", gorm.Expr("COALESCE(?, 0) + ?", stock, delta))
		if res.Error != nil {
			return database.Classify(res.Error)
		}

		product, err := first[models.Product](ctx, tx, productID)
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}
		if product.Stock != nil {
			newStock = *product.Stock
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Debug("Stock adjusted", map[string]interface{}{
		"product_id": productID,
		"delta":      delta,
		"stock":      newStock,
	})
	return newStock, nil
}

// Delete removes a product with its images
func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	return remove(ctx, r.db, &models.Product{}, id)
}
