package repository

import (
	"context"

	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"gorm.io/gorm"
)

// RuleRepository handles database operations for Rule model
type RuleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

func (r *RuleRepository) Create(ctx context.Context, rule *models.Rule) error {
	return database.Classify(r.db.WithContext(ctx).Omit("CreatedBy").Create(rule).Error)
}

func (r *RuleRepository) Get(ctx context.Context, id int) (*models.Rule, error) {
	return first[models.Rule](ctx, r.db, id)
}

// ListOrdered returns every rule grouped by category and sorted by its
// position inside the category. Rules without a category or position come
// last.
func (r *RuleRepository) ListOrdered(ctx context.Context) ([]models.Rule, error) {
	var rules []models.Rule
	if err := r.db.WithContext(ctx).
		Order(ascNullsLast("categoryId", "orderedAs", "id")).
		Find(&rules).Error; err != nil {
		return nil, database.Classify(err)
	}
	return rules, nil
}

// ListByCategory returns the rules of one category in order
func (r *RuleRepository) ListByCategory(ctx context.Context, categoryID int) ([]models.Rule, error) {
	var rules []models.Rule
	if err := r.db.WithContext(ctx).
		Where(eq("categoryId", categoryID)).
		Order(ascNullsLast("orderedAs", "id")).
		Find(&rules).Error; err != nil {
		return nil, database.Classify(err)
	}
	return rules, nil
}

func (r *RuleRepository) Update(ctx context.Context, rule *models.Rule) error {
	return update(ctx, r.db, rule)
}

func (r *RuleRepository) Delete(ctx context.Context, id int) error {
	return remove(ctx, r.db, &models.Rule{}, id)
}
