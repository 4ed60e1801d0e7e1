package repository

import (
	"context"

	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"gorm.io/gorm"
)

// PostRepository handles database operations for Post model
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return database.Classify(r.db.WithContext(ctx).Omit("CreatedBy").Create(post).Error)
}

func (r *PostRepository) Get(ctx context.Context, id int) (*models.Post, error) {
	return first[models.Post](ctx, r.db.Preload("CreatedBy"), id)
}

func (r *PostRepository) ListByCreator(ctx context.Context, userID string) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Where(eq("createdById", userID)).
		Order(orderBy("created_at", true)).
		Find(&posts).Error; err != nil {
		return nil, database.Classify(err)
	}
	return posts, nil
}

// Latest returns the most recent posts, newest first
func (r *PostRepository) Latest(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Order(orderBy("created_at", true)).
		Order(orderBy("id", true)).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, database.Classify(err)
	}
	return posts, nil
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	return update(ctx, r.db, post)
}

func (r *PostRepository) Delete(ctx context.Context, id int) error {
	return remove(ctx, r.db, &models.Post{}, id)
}
