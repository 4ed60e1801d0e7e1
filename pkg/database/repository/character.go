package repository

import (
	"context"

	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/logging"
	"gorm.io/gorm"
)

// CharacterFilter narrows List; nil fields match everything
type CharacterFilter struct {
	CreatedByID string
	ClanID      *int
	FactionID   *int
	Visible     *bool
	Pending     *bool
	Verified    *bool
}

// CharacterRepository handles database operations for Character model
type CharacterRepository struct {
	db     *gorm.DB
	logger logging.Logger
}

func NewCharacterRepository(db *gorm.DB) *CharacterRepository {
	return &CharacterRepository{db: db, logger: repoLogger("character")}
}

// Create inserts a character together with any abilities and features it
// carries, in one transaction
func (r *CharacterRepository) Create(ctx context.Context, character *models.Character) error {
	err := r.db.WithContext(ctx).
		Omit("CreatedBy", "Clan", "Faction", "Hunts").
		Create(character).Error
	return database.Classify(err)
}

// Get returns a character with its clan, faction and traits
func (r *CharacterRepository) Get(ctx context.Context, id int) (*models.Character, error) {
	return first[models.Character](ctx, r.db.
		Preload("Clan").
		Preload("Faction").
		Preload("Abilities.Ability").
		Preload("Features.Feature"), id)
}

// List returns the characters matching filter, newest first
func (r *CharacterRepository) List(ctx context.Context, filter CharacterFilter) ([]models.Character, error) {
	query := r.db.WithContext(ctx).Preload("Clan").Preload("Faction")

	if filter.CreatedByID != "" {
		query = query.Where(eq("createdById", filter.CreatedByID))
	}
	if filter.ClanID != nil {
		query = query.Where(eq("clanId", *filter.ClanID))
	}
	if filter.FactionID != nil {
		query = query.Where(eq("factionId", *filter.FactionID))
	}
	if filter.Visible != nil {
		query = query.Where(eq("visible", *filter.Visible))
	}
	if filter.Pending != nil {
		query = query.Where(eq("pending", *filter.Pending))
	}
	if filter.Verified != nil {
		query = query.Where(eq("verified", *filter.Verified))
	}

	var characters []models.Character
	if err := query.Order(orderBy("created_at", true)).Order(orderBy("id", true)).Find(&characters).Error; err != nil {
		return nil, database.Classify(err)
	}
	return characters, nil
}

// Update overwrites the sheet columns of a character; traits are managed
// through the Add/Remove methods
func (r *CharacterRepository) Update(ctx context.Context, character *models.Character) error {
	return update(ctx, r.db, character)
}

// Submit marks a character as waiting for verification
func (r *CharacterRepository) Submit(ctx context.Context, id int) error {
	return r.setFlags(ctx, id, map[string]interface{}{"pending": true})
}

// Verify accepts a submitted character
func (r *CharacterRepository) Verify(ctx context.Context, id int) error {
	if err := r.setFlags(ctx, id, map[string]interface{}{"pending": false, "verified": true}); err != nil {
		return err
	}
	r.logger.Info("Character verified", map[string]interface{}{"character_id": id})
	return nil
}

func (r *CharacterRepository) setFlags(ctx context.Context, id int, flags map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Character{}).Where(eq("id", id)).Updates(flags)
	if res.Error != nil {
		return database.Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a character with its traits and hunts
func (r *CharacterRepository) Delete(ctx context.Context, id int) error {
	return remove(ctx, r.db, &models.Character{}, id)
}

// AddAbility gives a character an ability
func (r *CharacterRepository) AddAbility(ctx context.Context, characterID, abilityID int) (*models.CharacterAbility, error) {
	row := &models.CharacterAbility{CharacterID: characterID, AbilityID: &abilityID}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, database.Classify(err)
	}
	return row, nil
}

// RemoveAbility takes an ability away from a character
func (r *CharacterRepository) RemoveAbility(ctx context.Context, characterID, abilityID int) error {
	return remove(ctx, r.db, &models.CharacterAbility{}, eq("characterId", characterID), eq("abilityId", abilityID))
}

// AddFeature gives a character a feature with a free-text description
func (r *CharacterRepository) AddFeature(ctx context.Context, characterID, featureID int, description string) (*models.CharacterFeature, error) {
	row := &models.CharacterFeature{CharacterID: characterID, FeatureID: &featureID, Description: description}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, database.Classify(err)
	}
	return row, nil
}

// RemoveFeature takes a feature away from a character
func (r *CharacterRepository) RemoveFeature(ctx context.Context, characterID, featureID int) error {
	return remove(ctx, r.db, &models.CharacterFeature{}, eq("characterId", characterID), eq("featureId", featureID))
}
