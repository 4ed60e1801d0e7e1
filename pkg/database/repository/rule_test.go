package repository_test

import (
	"context"
	"testing"

	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/dbtest"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/database/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesOrdered(t *testing.T) {
	db := dbtest.OpenMigrated(t)
	repo := repository.NewRuleRepository(db)
	ctx := context.Background()
	user := dbtest.User(t, db, "prince@example.com")

	for _, rule := range []*models.Rule{
		{Name: "Feeding", CategoryID: intPtr(2), OrderedAs: intPtr(1)},
		{Name: "Traditions", CategoryID: intPtr(1), OrderedAs: intPtr(2)},
		{Name: "Masquerade", CategoryID: intPtr(1), OrderedAs: intPtr(1)},
	} {
		rule.CreatedByID = user.ID
		require.NoError(t, repo.Create(ctx, rule))
	}

	rules, err := repo.ListOrdered(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, "Masquerade", rules[0].Name)
	assert.Equal(t, "Traditions", rules[1].Name)
	assert.Equal(t, "Feeding", rules[2].Name)

	rules, err = repo.ListByCategory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "Masquerade", rules[0].Name)

	moved := rules[0]
	moved.OrderedAs = intPtr(3)
	require.NoError(t, repo.Update(ctx, &moved))
	rules, err = repo.ListByCategory(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Traditions", rules[0].Name)

	require.NoError(t, repo.Delete(ctx, moved.ID))
	_, err = repo.Get(ctx, moved.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRulesWithoutPositionComeLast(t *testing.T) {
	db := dbtest.OpenMigrated(t)
	repo := repository.NewRuleRepository(db)
	ctx := context.Background()
	user := dbtest.User(t, db, "seneschal@example.com")

	for _, rule := range []*models.Rule{
		{Name: "Uncategorised"},
		{Name: "Unplaced", CategoryID: intPtr(1)},
		{Name: "Domain", CategoryID: intPtr(1), OrderedAs: intPtr(2)},
		{Name: "Hospitality", CategoryID: intPtr(1), OrderedAs: intPtr(1)},
		{Name: "Boons", CategoryID: intPtr(2), OrderedAs: intPtr(1)},
	} {
		rule.CreatedByID = user.ID
		require.NoError(t, repo.Create(ctx, rule))
	}

	rules, err := repo.ListOrdered(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(rules))
	for _, rule := range rules {
		names = append(names, rule.Name)
	}
	assert.Equal(t, []string{"Hospitality", "Domain", "Unplaced", "Boons", "Uncategorised"}, names)

	rules, err = repo.ListByCategory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, "Unplaced", rules[2].Name)
}

func TestRuleRequiresExistingCreator(t *testing.T) {
	db := dbtest.OpenMigrated(t)

	err := repository.NewRuleRepository(db).Create(context.Background(), &models.Rule{Name: "Sixth tradition", CreatedByID: "nobody"})
	assert.ErrorIs(t, err, database.ErrForeignKeyViolation)

	var count int64
	require.NoError(t, db.Model(&models.Rule{}).Count(&count).Error)
	assert.Zero(t, count)
}
