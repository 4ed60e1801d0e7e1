package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HuntingRepository handles hunting grounds, targets, their spawned
// instances and narrative descriptions
type HuntingRepository struct {
	db *gorm.DB
}

func NewHuntingRepository(db *gorm.DB) *HuntingRepository {
	return &HuntingRepository{db: db}
}

// WithTransaction runs fn with a repository bound to one transaction
func (r *HuntingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo *HuntingRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &HuntingRepository{db: tx})
	})
}

// WithTx returns a repository bound to an open transaction
func (r *HuntingRepository) WithTx(tx *gorm.DB) *HuntingRepository {
	return &HuntingRepository{db: tx}
}

// live matches instances that never expire or expire after now
func live(now time.Time) clause.Expression {
	expires := clause.Column{Name: "expires"}
	return clause.Or(
		clause.Expr{SQL: "? IS NULL", Vars: []interface{}{expires}},
		clause.Gt{Column: expires, Value: now.UTC()},
	)
}

// Grounds

func (r *HuntingRepository) CreateGround(ctx context.Context, ground *models.HuntingGround) error {
	return database.Classify(r.db.WithContext(ctx).Omit("Instances").Create(ground).Error)
}

func (r *HuntingRepository) GetGround(ctx context.Context, id int) (*models.HuntingGround, error) {
	return first[models.HuntingGround](ctx, r.db, id)
}

func (r *HuntingRepository) GetGroundByName(ctx context.Context, name string) (*models.HuntingGround, error) {
	return first[models.HuntingGround](ctx, r.db, eq("name", name))
}

func (r *HuntingRepository) ListGrounds(ctx context.Context) ([]models.HuntingGround, error) {
	var grounds []models.HuntingGround
	if err := r.db.WithContext(ctx).Order(orderBy("id", false)).Find(&grounds).Error; err != nil {
		return nil, database.Classify(err)
	}
	return grounds, nil
}

func (r *HuntingRepository) UpdateGround(ctx context.Context, ground *models.HuntingGround) error {
	return update(ctx, r.db, ground)
}

// DeleteGround removes a ground; its instances stay and lose their ground
func (r *HuntingRepository) DeleteGround(ctx context.Context, id int) error {
	return remove(ctx, r.db, &models.HuntingGround{}, id)
}

// Targets

// CreateTarget inserts a hunting target with its descriptions
func (r *HuntingRepository) CreateTarget(ctx context.Context, target *models.HuntingData) error {
	return database.Classify(r.db.WithContext(ctx).Omit("Instances").Create(target).Error)
}

// GetTarget returns a target with its descriptions
func (r *HuntingRepository) GetTarget(ctx context.Context, id int) (*models.HuntingData, error) {
	return first[models.HuntingData](ctx, r.db.Preload("Descriptions", func(db *gorm.DB) *gorm.DB {
		return db.Order(orderBy("remains", true))
	}), id)
}

func (r *HuntingRepository) GetTargetByName(ctx context.Context, name string) (*models.HuntingData, error) {
	return first[models.HuntingData](ctx, r.db, eq("name", name))
}

func (r *HuntingRepository) ListTargets(ctx context.Context) ([]models.HuntingData, error) {
	var targets []models.HuntingData
	if err := r.db.WithContext(ctx).Order(orderBy("id", false)).Find(&targets).Error; err != nil {
		return nil, database.Classify(err)
	}
	return targets, nil
}

func (r *HuntingRepository) UpdateTarget(ctx context.Context, target *models.HuntingData) error {
	return update(ctx, r.db, target)
}

// DeleteTarget removes a target with its descriptions and instances
func (r *HuntingRepository) DeleteTarget(ctx context.Context, id int) error {
	return remove(ctx, r.db, &models.HuntingData{}, id)
}

// Descriptions

func (r *HuntingRepository) CreateDescription(ctx context.Context, desc *models.HuntingDescription) error {
	return database.Classify(r.db.WithContext(ctx).Omit("Target").Create(desc).Error)
}

func (r *HuntingRepository) UpdateDescription(ctx context.Context, desc *models.HuntingDescription) error {
	return update(ctx, r.db, desc)
}

func (r *HuntingRepository) DeleteDescription(ctx context.Context, id int) error {
	return remove(ctx, r.db, &models.HuntingDescription{}, id)
}

// DescriptionsOf lists the descriptions of a target, highest remains first
func (r *HuntingRepository) DescriptionsOf(ctx context.Context, targetID int) ([]models.HuntingDescription, error) {
	var descs []models.HuntingDescription
	if err := r.db.WithContext(ctx).
		Where(eq("targetId", targetID)).
		Order(orderBy("remains", true)).
		Find(&descs).Error; err != nil {
		return nil, database.Classify(err)
	}
	return descs, nil
}

// DescriptionFor picks the description of a target for the given remains:
// the exact match, or else the closest one below it
func (r *HuntingRepository) DescriptionFor(ctx context.Context, targetID, remains int) (*models.HuntingDescription, error) {
	return first[models.HuntingDescription](ctx, r.db.
		Where(eq("targetId", targetID)).
		Where(clause.Lte{Column: clause.Column{Name: "remains"}, Value: remains}).
		Order(orderBy("remains", true)))
}

// MaxRemains returns the highest remains among the descriptions of a
// target, or 1 when it has none
func (r *HuntingRepository) MaxRemains(ctx context.Context, targetID int) (int, error) {
	var max sql.NullInt64
	err := r.db.WithContext(ctx).Model(&models.HuntingDescription{}).
		Select("MAX(?)", clause.Column{Name: "remains"}).
		Where(eq("targetId", targetID)).
		Row().Scan(&max)
	if err != nil {
		return 0, database.Classify(err)
	}
	if !max.Valid || max.Int64 < 1 {
		return 1, nil
	}
	return int(max.Int64), nil
}

// Instances

func (r *HuntingRepository) CreateInstance(ctx context.Context, instance *models.HuntingInstance) error {
	return database.Classify(r.db.WithContext(ctx).Omit("Target", "Ground", "Hunts").Create(instance).Error)
}

// GetInstance returns an instance with its target
func (r *HuntingRepository) GetInstance(ctx context.Context, id int) (*models.HuntingInstance, error) {
	return first[models.HuntingInstance](ctx, r.db.Preload("Target"), id)
}

func (r *HuntingRepository) UpdateInstance(ctx context.Context, instance *models.HuntingInstance) error {
	return update(ctx, r.db, instance)
}

func (r *HuntingRepository) DeleteInstance(ctx context.Context, id int) error {
	return remove(ctx, r.db, &models.HuntingInstance{}, id)
}

// LiveInstances lists the instances that have not expired at now, with
// their targets. A nil groundID lists every ground.
func (r *HuntingRepository) LiveInstances(ctx context.Context, groundID *int, now time.Time) ([]models.HuntingInstance, error) {
	query := r.db.WithContext(ctx).Preload("Target").Where(live(now))
	if groundID != nil {
		query = query.Where(eq("groundId", *groundID))
	}

	var instances []models.HuntingInstance
	if err := query.Order(orderBy("id", false)).Find(&instances).Error; err != nil {
		return nil, database.Classify(err)
	}
	return instances, nil
}

// CountLiveInstances counts the instances of a ground not expired at now
func (r *HuntingRepository) CountLiveInstances(ctx context.Context, groundID int, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.HuntingInstance{}).
		Where(eq("groundId", groundID)).
		Where(live(now)).
		Count(&count).Error
	if err != nil {
		return 0, database.Classify(err)
	}
	return count, nil
}

// LatestInstance returns the most recently spawned instance of a ground
func (r *HuntingRepository) LatestInstance(ctx context.Context, groundID int) (*models.HuntingInstance, error) {
	return first[models.HuntingInstance](ctx, r.db.
		Where(eq("groundId", groundID)).
		Order(orderBy("created_at", true)).
		Order(orderBy("id", true)))
}

// DecrementRemains takes one from the remains of a live instance and
// expires it at now once nothing remains. Instances that are already
// depleted, expired or have no remains are returned unchanged.
func (r *HuntingRepository) DecrementRemains(ctx context.Context, instanceID int, now time.Time) (*models.HuntingInstance, error) {
	remains := clause.Column{Name: "remains"}

	res := r.db.WithContext(ctx).Model(&models.HuntingInstance{}).
		Where(eq("id", instanceID)).
		Where(clause.Gt{Column: remains, Value: 0}).
		Where(live(now)).
		Update("remains", gorm.Expr("? - 1", remains))
	if res.Error != nil {
		return nil, database.Classify(res.Error)
	}

	if res.RowsAffected > 0 {
		err := r.db.WithContext(ctx).Model(&models.HuntingInstance{}).
			Where(eq("id", instanceID)).
			Where(clause.Lte{Column: remains, Value: 0}).
			Update("expires", now.UTC()).Error
		if err != nil {
			return nil, database.Classify(err)
		}
	}

	return first[models.HuntingInstance](ctx, r.db, instanceID)
}
