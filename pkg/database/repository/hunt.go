package repository

import (
	"context"

	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"gorm.io/gorm"
)

// HuntRepository handles database operations for Hunt model
type HuntRepository struct {
	db *gorm.DB
}

func NewHuntRepository(db *gorm.DB) *HuntRepository {
	return &HuntRepository{db: db}
}

// WithTx returns a repository bound to an open transaction
func (r *HuntRepository) WithTx(tx *gorm.DB) *HuntRepository {
	return &HuntRepository{db: tx}
}

// Create records a hunt. Unknown statuses are rejected with
// models.ErrInvalidHuntStatus before reaching the database.
func (r *HuntRepository) Create(ctx context.Context, hunt *models.Hunt) error {
	err := r.db.WithContext(ctx).Omit("Instance", "Character", "CreatedBy").Create(hunt).Error
	return database.Classify(err)
}

// Get returns a hunt with its character and instance
func (r *HuntRepository) Get(ctx context.Context, id int) (*models.Hunt, error) {
	return first[models.Hunt](ctx, r.db.
		Preload("Character").
		Preload("Instance.Target"), id)
}

// ListByCharacter returns the hunts of a character, newest first
func (r *HuntRepository) ListByCharacter(ctx context.Context, characterID int) ([]models.Hunt, error) {
	return r.list(ctx, eq("characterId", characterID))
}

// ListByCreator returns the hunts recorded by a user, newest first
func (r *HuntRepository) ListByCreator(ctx context.Context, userID string) ([]models.Hunt, error) {
	return r.list(ctx, eq("createdById", userID))
}

func (r *HuntRepository) list(ctx context.Context, cond interface{}) ([]models.Hunt, error) {
	var hunts []models.Hunt
	if err := r.db.WithContext(ctx).
		Preload("Instance.Target").
		Where(cond).
		Order(orderBy("created_at", true)).
		Order(orderBy("id", true)).
		Find(&hunts).Error; err != nil {
		return nil, database.Classify(err)
	}
	return hunts, nil
}

func (r *HuntRepository) Delete(ctx context.Context, id int) error {
	return remove(ctx, r.db, &models.Hunt{}, id)
}
