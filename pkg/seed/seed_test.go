package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/latoulicious/vtmsu/pkg/database/dbtest"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/database/repository"
	"github.com/latoulicious/vtmsu/pkg/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const sampleCatalog = "../../config/catalog.yaml"

func counts(t *testing.T, db *gorm.DB) map[string]int64 {
	t.Helper()

	out := make(map[string]int64)
	for name, model := range map[string]interface{}{
		"faction":            &models.Faction{},
		"clan":               &models.Clan{},
		"clanInFaction":      &models.ClanInFaction{},
		"ability":            &models.Ability{},
		"feature":            &models.Feature{},
		"abilityAvailable":   &models.AbilityAvailable{},
		"featureAvailable":   &models.FeatureAvailable{},
		"huntingData":        &models.HuntingData{},
		"huntingDescription": &models.HuntingDescription{},
		"huntingGround":      &models.HuntingGround{},
	} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		out[name] = n
	}
	return out
}

func TestApplySampleCatalogIsIdempotent(t *testing.T) {
	db := dbtest.OpenMigrated(t)
	ctx := context.Background()

	catalog, err := seed.LoadCatalog(sampleCatalog)
	require.NoError(t, err)

	stats, err := seed.Apply(ctx, db, catalog)
	require.NoError(t, err)
	assert.Equal(t, 31, stats.Created)
	assert.Zero(t, stats.Updated)
	assert.Equal(t, 31, stats.Linked)

	first := counts(t, db)
	assert.Equal(t, map[string]int64{
		"faction":            3,
		"clan":               6,
		"clanInFaction":      8,
		"ability":            10,
		"feature":            3,
		"abilityAvailable":   18,
		"featureAvailable":   5,
		"huntingData":        2,
		"huntingDescription": 5,
		"huntingGround":      2,
	}, first)

	stats, err = seed.Apply(ctx, db, catalog)
	require.NoError(t, err)
	assert.Zero(t, stats.Created)
	assert.Zero(t, stats.Updated)
	assert.Equal(t, first, counts(t, db))

	abilities, err := repository.NewTraitRepository(db).AbilitiesForClan(ctx, clanID(t, db, "Tremere"))
	require.NoError(t, err)
	require.Len(t, abilities, 3)
	assert.Equal(t, "Auspex", abilities[0].Name)
}

func TestApplyUpdatesChangedEntries(t *testing.T) {
	db := dbtest.OpenMigrated(t)
	ctx := context.Background()

	catalog, err := seed.LoadCatalog(filepath.Join("testdata", "catalog.toml"))
	require.NoError(t, err)
	_, err = seed.Apply(ctx, db, catalog)
	require.NoError(t, err)

	catalog.Factions[0].Content = "Elders rule"
	catalog.Targets[0].Descriptions[0].Content = "The banker has gone home."
	stats, err := seed.Apply(ctx, db, catalog)
	require.NoError(t, err)
	assert.Zero(t, stats.Created)
	assert.Equal(t, 2, stats.Updated)

	faction, err := repository.NewFactionRepository(db).GetFactionByName(ctx, "Camarilla")
	require.NoError(t, err)
	assert.Equal(t, "Elders rule", faction.Content)

	ground, err := repository.NewHuntingRepository(db).GetGroundByName(ctx, "Financial district")
	require.NoError(t, err)
	require.NotNil(t, ground.Delay)
	assert.Equal(t, 3600, *ground.Delay)
}

func TestApplyValidatesBeforeWriting(t *testing.T) {
	db := dbtest.OpenMigrated(t)
	ctx := context.Background()

	catalog := &seed.Catalog{
		Factions: []seed.Faction{{Name: "Camarilla"}},
		Clans:    []seed.Clan{{Name: "Ventrue", Factions: []string{"Sabbat"}}},
	}
	_, err := seed.Apply(ctx, db, catalog)
	assert.ErrorIs(t, err, seed.ErrInvalidCatalog)

	var n int64
	require.NoError(t, db.Model(&models.Faction{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestLoadCatalogErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"unsupported extension", write("catalog.json", "{}"), seed.ErrUnsupportedFormat},
		{"duplicate faction", write("dup.yaml", "factions:\n  - name: Sabbat\n  - name: Sabbat\n"), seed.ErrInvalidCatalog},
		{"unnamed clan", write("unnamed.yml", "clans:\n  - icon: x.svg\n"), seed.ErrInvalidCatalog},
		{"unknown ability", write("ref.toml", "[[clans]]\nname = \"Tzimisce\"\nabilities = [\"Vicissitude\"]\n"), seed.ErrInvalidCatalog},
		{"min above max", write("ground.yaml", "grounds:\n  - name: Port\n    min_inst: 3\n    max_inst: 1\n"), seed.ErrInvalidCatalog},
		{"description clash", write("desc.yaml", "targets:\n  - name: Cat\n    descriptions:\n      - remains: 1\n      - remains: 1\n"), seed.ErrInvalidCatalog},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := seed.LoadCatalog(tt.path)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("unknown yaml field", func(t *testing.T) {
		_, err := seed.LoadCatalog(write("typo.yaml", "factionz: []\n"))
		assert.Error(t, err)
	})
	t.Run("unknown toml key", func(t *testing.T) {
		_, err := seed.LoadCatalog(write("typo.toml", "[[factions]]\nname = \"A\"\ncolour = \"red\"\n"))
		assert.Error(t, err)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := seed.LoadCatalog(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})
}

func clanID(t *testing.T, db *gorm.DB, name string) int {
	t.Helper()
	clan, err := repository.NewFactionRepository(db).GetClanByName(context.Background(), name)
	require.NoError(t, err)
	return clan.ID
}
