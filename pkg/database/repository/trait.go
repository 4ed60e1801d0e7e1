package repository

import (
	"context"

	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"gorm.io/gorm"
)

// TraitRepository handles the ability and feature catalogs and which clans
// may take each entry
type TraitRepository struct {
	db *gorm.DB
}

func NewTraitRepository(db *gorm.DB) *TraitRepository {
	return &TraitRepository{db: db}
}

// WithTransaction runs fn with a repository bound to one transaction
func (r *TraitRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo *TraitRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &TraitRepository{db: tx})
	})
}

func (r *TraitRepository) CreateAbility(ctx context.Context, ability *models.Ability) error {
	return database.Classify(r.db.WithContext(ctx).Create(ability).Error)
}

func (r *TraitRepository) GetAbility(ctx context.Context, id int) (*models.Ability, error) {
	return first[models.Ability](ctx, r.db.Preload("AbilityAvailable"), id)
}

func (r *TraitRepository) GetAbilityByName(ctx context.Context, name string) (*models.Ability, error) {
	return first[models.Ability](ctx, r.db, eq("name", name))
}

func (r *TraitRepository) ListAbilities(ctx context.Context) ([]models.Ability, error) {
	var abilities []models.Ability
	if err := r.db.WithContext(ctx).Order(orderBy("name", false)).Find(&abilities).Error; err != nil {
		return nil, database.Classify(err)
	}
	return abilities, nil
}

func (r *TraitRepository) UpdateAbility(ctx context.Context, ability *models.Ability) error {
	return update(ctx, r.db, ability)
}

// DeleteAbility removes an ability together with every character's copy of
// it and its clan availability
func (r *TraitRepository) DeleteAbility(ctx context.Context, id int) error {
	return remove(ctx, r.db, &models.Ability{}, id)
}

func (r *TraitRepository) CreateFeature(ctx context.Context, feature *models.Feature) error {
	return database.Classify(r.db.WithContext(ctx).Create(feature).Error)
}

func (r *TraitRepository) GetFeature(ctx context.Context, id int) (*models.Feature, error) {
	return first[models.Feature](ctx, r.db.Preload("FeatureAvailable"), id)
}

func (r *TraitRepository) GetFeatureByName(ctx context.Context, name string) (*models.Feature, error) {
	return first[models.Feature](ctx, r.db, eq("name", name))
}

func (r *TraitRepository) ListFeatures(ctx context.Context) ([]models.Feature, error) {
	var features []models.Feature
	if err := r.db.WithContext(ctx).Order(orderBy("name", false)).Find(&features).Error; err != nil {
		return nil, database.Classify(err)
	}
	return features, nil
}

func (r *TraitRepository) UpdateFeature(ctx context.Context, feature *models.Feature) error {
	return update(ctx, r.db, feature)
}

// DeleteFeature removes a feature together with every character's copy of
// it and its clan availability
func (r *TraitRepository) DeleteFeature(ctx context.Context, id int) error {
	return remove(ctx, r.db, &models.Feature{}, id)
}

// MakeAbilityAvailable allows a clan to take an ability. Repeated calls
// return the existing row.
func (r *TraitRepository) MakeAbilityAvailable(ctx context.Context, abilityID, clanID int) (*models.AbilityAvailable, error) {
	row := models.AbilityAvailable{AbilityID: abilityID, ClanID: clanID}
	err := r.db.WithContext(ctx).
		Where(eq("abilityId", abilityID)).
		Where(eq("clanId", clanID)).
		FirstOrCreate(&row).Error
	if err != nil {
		return nil, database.Classify(err)
	}
	return &row, nil
}

// RevokeAbility removes a clan's access to an ability
func (r *TraitRepository) RevokeAbility(ctx context.Context, abilityID, clanID int) error {
	return remove(ctx, r.db, &models.AbilityAvailable{}, eq("abilityId", abilityID), eq("clanId", clanID))
}

// MakeFeatureAvailable allows a clan to take a feature. Repeated calls
// return the existing row.
func (r *TraitRepository) MakeFeatureAvailable(ctx context.Context, featureID, clanID int) (*models.FeatureAvailable, error) {
	row := models.FeatureAvailable{FeatureID: featureID, ClanID: clanID}
	err := r.db.WithContext(ctx).
		Where(eq("abilityId", featureID)).
		Where(eq("clanId", clanID)).
		FirstOrCreate(&row).Error
	if err != nil {
		return nil, database.Classify(err)
	}
	return &row, nil
}

// RevokeFeature removes a clan's access to a feature
func (r *TraitRepository) RevokeFeature(ctx context.Context, featureID, clanID int) error {
	return remove(ctx, r.db, &models.FeatureAvailable{}, eq("abilityId", featureID), eq("clanId", clanID))
}

// AbilitiesForClan lists the abilities a clan may take
func (r *TraitRepository) AbilitiesForClan(ctx context.Context, clanID int) ([]models.Ability, error) {
	var abilities []models.Ability
	available := r.db.WithContext(ctx).Model(&models.AbilityAvailable{}).Select("abilityId").Where(eq("clanId", clanID))
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", available).
		Order(orderBy("name", false)).
		Find(&abilities).Error; err != nil {
		return nil, database.Classify(err)
	}
	return abilities, nil
}

// FeaturesForClan lists the features a clan may take
func (r *TraitRepository) FeaturesForClan(ctx context.Context, clanID int) ([]models.Feature, error) {
	var features []models.Feature
	available := r.db.WithContext(ctx).Model(&models.FeatureAvailable{}).Select("abilityId").Where(eq("clanId", clanID))
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", available).
		Order(orderBy("name", false)).
		Find(&features).Error; err != nil {
		return nil, database.Classify(err)
	}
	return features, nil
}
