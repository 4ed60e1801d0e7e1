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
	"gorm.io/gorm"
)

type characterFixture struct {
	db         *gorm.DB
	characters *repository.CharacterRepository
	factions   *repository.FactionRepository
	traits     *repository.TraitRepository
	user       *models.User
	clan       *models.Clan
	faction    *models.Faction
	ability    *models.Ability
	feature    *models.Feature
}

func newCharacterFixture(t *testing.T) *characterFixture {
	t.Helper()
	ctx := context.Background()

	db := dbtest.OpenMigrated(t)
	f := &characterFixture{
		db:         db,
		characters: repository.NewCharacterRepository(db),
		factions:   repository.NewFactionRepository(db),
		traits:     repository.NewTraitRepository(db),
		user:       dbtest.User(t, db, "player@example.com"),
		clan:       &models.Clan{Name: "Brujah", VisibleToPlayer: true},
		faction:    &models.Faction{Name: "Anarchs", VisibleToPlayer: true},
		ability:    &models.Ability{Name: "Potence"},
		feature:    &models.Feature{Name: "Iron Gullet"},
	}

	require.NoError(t, f.factions.CreateClan(ctx, f.clan))
	require.NoError(t, f.factions.CreateFaction(ctx, f.faction))
	require.NoError(t, f.traits.CreateAbility(ctx, f.ability))
	require.NoError(t, f.traits.CreateFeature(ctx, f.feature))
	return f
}

func (f *characterFixture) newCharacter(t *testing.T, name string) *models.Character {
	t.Helper()

	character := &models.Character{
		Name:        name,
		ClanID:      &f.clan.ID,
		FactionID:   &f.faction.ID,
		CreatedByID: f.user.ID,
	}
	require.NoError(t, f.characters.Create(context.Background(), character))
	return character
}

func TestCharacterCreateWithTraits(t *testing.T) {
	f := newCharacterFixture(t)
	ctx := context.Background()

	character := &models.Character{
		Name:        "Salvador",
		ClanID:      &f.clan.ID,
		CreatedByID: f.user.ID,
		Abilities:   []models.CharacterAbility{{AbilityID: &f.ability.ID}},
		Features:    []models.CharacterFeature{{FeatureID: &f.feature.ID, Description: "cannot feed from animals"}},
	}
	require.NoError(t, f.characters.Create(ctx, character))

	got, err := f.characters.Get(ctx, character.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Clan)
	assert.Equal(t, "Brujah", got.Clan.Name)
	assert.Nil(t, got.Faction)
	require.Len(t, got.Abilities, 1)
	require.NotNil(t, got.Abilities[0].Ability)
	assert.Equal(t, "Potence", got.Abilities[0].Ability.Name)
	require.Len(t, got.Features, 1)
	assert.Equal(t, "cannot feed from animals", got.Features[0].Description)
	assert.False(t, got.Pending)
	assert.False(t, got.Verified)
}

func TestCharacterRequiresExistingCreator(t *testing.T) {
	f := newCharacterFixture(t)

	err := f.characters.Create(context.Background(), &models.Character{Name: "Ghost", CreatedByID: "nobody"})
	assert.ErrorIs(t, err, database.ErrForeignKeyViolation)
}

func TestCharacterSubmitAndVerify(t *testing.T) {
	f := newCharacterFixture(t)
	ctx := context.Background()
	character := f.newCharacter(t, "Jeanette")

	require.NoError(t, f.characters.Submit(ctx, character.ID))
	got, err := f.characters.Get(ctx, character.ID)
	require.NoError(t, err)
	assert.True(t, got.Pending)
	assert.False(t, got.Verified)

	pending := true
	list, err := f.characters.List(ctx, repository.CharacterFilter{Pending: &pending})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.characters.Verify(ctx, character.ID))
	got, err = f.characters.Get(ctx, character.ID)
	require.NoError(t, err)
	assert.False(t, got.Pending)
	assert.True(t, got.Verified)

	assert.ErrorIs(t, f.characters.Submit(ctx, 9999), database.ErrNotFound)
}

func TestCharacterListFilters(t *testing.T) {
	f := newCharacterFixture(t)
	ctx := context.Background()

	visible := f.newCharacter(t, "Therese")
	visible.Visible = true
	require.NoError(t, f.characters.Update(ctx, visible))
	f.newCharacter(t, "Bertram")

	yes := true
	list, err := f.characters.List(ctx, repository.CharacterFilter{Visible: &yes})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Therese", list[0].Name)

	list, err = f.characters.List(ctx, repository.CharacterFilter{CreatedByID: f.user.ID, ClanID: &f.clan.ID})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCharacterTraits(t *testing.T) {
	f := newCharacterFixture(t)
	ctx := context.Background()
	character := f.newCharacter(t, "Smiling Jack")

	_, err := f.characters.AddAbility(ctx, character.ID, f.ability.ID)
	require.NoError(t, err)
	_, err = f.characters.AddFeature(ctx, character.ID, f.feature.ID, "")
	require.NoError(t, err)

	_, err = f.characters.AddAbility(ctx, character.ID, 9999)
	assert.ErrorIs(t, err, database.ErrForeignKeyViolation)

	require.NoError(t, f.characters.RemoveAbility(ctx, character.ID, f.ability.ID))
	require.NoError(t, f.characters.RemoveFeature(ctx, character.ID, f.feature.ID))
	assert.ErrorIs(t, f.characters.RemoveAbility(ctx, character.ID, f.ability.ID), database.ErrNotFound)

	got, err := f.characters.Get(ctx, character.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Abilities)
	assert.Empty(t, got.Features)
}

func TestDeletingClanAndFactionNullsCharacterReferences(t *testing.T) {
	f := newCharacterFixture(t)
	ctx := context.Background()
	character := f.newCharacter(t, "Nines")

	require.NoError(t, f.factions.DeleteClan(ctx, f.clan.ID))
	got, err := f.characters.Get(ctx, character.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ClanID)
	require.NotNil(t, got.FactionID)

	require.NoError(t, f.factions.DeleteFaction(ctx, f.faction.ID))
	got, err = f.characters.Get(ctx, character.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FactionID)
}

func TestDeletingCharacterCascades(t *testing.T) {
	f := newCharacterFixture(t)
	ctx := context.Background()
	character := f.newCharacter(t, "Beckett")

	_, err := f.characters.AddAbility(ctx, character.ID, f.ability.ID)
	require.NoError(t, err)
	_, err = f.characters.AddFeature(ctx, character.ID, f.feature.ID, "note")
	require.NoError(t, err)
	require.NoError(t, repository.NewHuntRepository(f.db).Create(ctx, &models.Hunt{
		CharacterID: character.ID,
		CreatedByID: f.user.ID,
		Status:      models.HuntReqFailure,
	}))

	require.NoError(t, f.characters.Delete(ctx, character.ID))

	for _, model := range []interface{}{&models.CharacterAbility{}, &models.CharacterFeature{}, &models.Hunt{}} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T should be removed with its character", model)
	}
}

func TestDeletingTraitRemovesCharacterCopies(t *testing.T) {
	f := newCharacterFixture(t)
	ctx := context.Background()
	character := f.newCharacter(t, "Damsel")

	_, err := f.characters.AddAbility(ctx, character.ID, f.ability.ID)
	require.NoError(t, err)
	_, err = f.traits.MakeAbilityAvailable(ctx, f.ability.ID, f.clan.ID)
	require.NoError(t, err)

	require.NoError(t, f.traits.DeleteAbility(ctx, f.ability.ID))

	got, err := f.characters.Get(ctx, character.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Abilities)

	abilities, err := f.traits.AbilitiesForClan(ctx, f.clan.ID)
	require.NoError(t, err)
	assert.Empty(t, abilities)
}
