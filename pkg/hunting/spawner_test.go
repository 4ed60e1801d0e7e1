package hunting_test

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/latoulicious/vtmsu/pkg/database/dbtest"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/database/repository"
	"github.com/latoulicious/vtmsu/pkg/hunting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var base = time.Date(2026, 10, 17, 21, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func newSpawner(db *gorm.DB) *hunting.Spawner {
	return hunting.NewSpawner(db, hunting.WithRand(rand.New(rand.NewPCG(1, 2))))
}

func seedTarget(t *testing.T, db *gorm.DB, name string, remains ...int) *models.HuntingData {
	t.Helper()

	target := &models.HuntingData{Name: name}
	for _, r := range remains {
		target.Descriptions = append(target.Descriptions, models.HuntingDescription{Remains: intPtr(r), Content: name})
	}
	require.NoError(t, repository.NewHuntingRepository(db).CreateTarget(context.Background(), target))
	return target
}

func seedGround(t *testing.T, db *gorm.DB, ground *models.HuntingGround) *models.HuntingGround {
	t.Helper()
	require.NoError(t, repository.NewHuntingRepository(db).CreateGround(context.Background(), ground))
	return ground
}

func TestPlanGround(t *testing.T) {
	ground := &models.HuntingGround{MinInst: intPtr(2), MaxInst: intPtr(4), Delay: intPtr(600)}
	recent := &models.HuntingInstance{CreatedAt: base.Add(-5 * time.Minute)}
	old := &models.HuntingInstance{CreatedAt: base.Add(-10 * time.Minute)}

	tests := []struct {
		name   string
		ground *models.HuntingGround
		live   int64
		latest *models.HuntingInstance
		want   hunting.Plan
	}{
		{"empty ground is filled to min", ground, 0, nil, hunting.Plan{Permanent: 2}},
		{"partly filled to min", ground, 1, old, hunting.Plan{Permanent: 1}},
		{"at min with old latest", ground, 2, old, hunting.Plan{Temporary: 1}},
		{"at min with recent latest", ground, 2, recent, hunting.Plan{}},
		{"at max", ground, 4, old, hunting.Plan{}},
		{"no max means min is the cap", &models.HuntingGround{MinInst: intPtr(1)}, 1, nil, hunting.Plan{}},
		{"defaults spawn one temporary", &models.HuntingGround{MaxInst: intPtr(1)}, 0, nil, hunting.Plan{Temporary: 1}},
		{"default delay is an hour", &models.HuntingGround{MaxInst: intPtr(2)}, 1, old, hunting.Plan{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hunting.PlanGround(tt.ground, tt.live, tt.latest, base))
		})
	}
}

func TestSpawnGroundHonoursLimits(t *testing.T) {
	db := dbtest.OpenMigrated(t)
	ctx := context.Background()
	spawner := newSpawner(db)

	target := seedTarget(t, db, "Night shift nurse", 1, 3)
	ground := seedGround(t, db, &models.HuntingGround{
		Name:    "Hospital",
		MinInst: intPtr(2),
		MaxInst: intPtr(3),
		Delay:   intPtr(600),
		Radius:  intPtr(500),
		CoordY:  floatPtr(59.9343),
		CoordX:  floatPtr(30.3351),
	})

	spawned, err := spawner.SpawnGround(ctx, ground, base)
	require.NoError(t, err)
	require.Len(t, spawned, 2)
	for _, inst := range spawned {
		assert.False(t, inst.Temporary)
		assert.Nil(t, inst.Expires)
		assert.Equal(t, target.ID, inst.TargetID)
		require.NotNil(t, inst.Remains)
		assert.Equal(t, 3, *inst.Remains)
		require.NotNil(t, inst.CoordY)
		require.NotNil(t, inst.CoordX)
		assert.LessOrEqual(t, distance(*ground.CoordY, *ground.CoordX, *inst.CoordY, *inst.CoordX), 501.0)
	}

	// Newest instance is younger than the delay
	spawned, err = spawner.SpawnGround(ctx, ground, base.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, spawned)

	later := base.Add(11 * time.Minute)
	spawned, err = spawner.SpawnGround(ctx, ground, later)
	require.NoError(t, err)
	require.Len(t, spawned, 1)
	assert.True(t, spawned[0].Temporary)
	require.NotNil(t, spawned[0].Expires)
	assert.True(t, later.Add(10*time.Minute).Equal(*spawned[0].Expires))

	// At max_inst nothing more spawns
	spawned, err = spawner.SpawnGround(ctx, ground, later.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, spawned)

	// Once the temporary instance expires there is room again
	spawned, err = spawner.SpawnGround(ctx, ground, later.Add(25*time.Minute))
	require.NoError(t, err)
	assert.Len(t, spawned, 1)
}

func TestSpawnGroundWithoutTargets(t *testing.T) {
	db := dbtest.OpenMigrated(t)
	ground := seedGround(t, db, &models.HuntingGround{Name: "Empty lot", MinInst: intPtr(1)})

	_, err := newSpawner(db).SpawnGround(context.Background(), ground, base)
	assert.ErrorIs(t, err, hunting.ErrNoTargets)
}

func TestSpawnAll(t *testing.T) {
	db := dbtest.OpenMigrated(t)
	ctx := context.Background()

	seedTarget(t, db, "Drunk")
	seedTarget(t, db, "Clubber", 2)
	seedGround(t, db, &models.HuntingGround{Name: "Bar", MinInst: intPtr(1)})
	seedGround(t, db, &models.HuntingGround{Name: "Club", MinInst: intPtr(2)})

	total, err := newSpawner(db).SpawnAll(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	live, err := repository.NewHuntingRepository(db).LiveInstances(ctx, nil, base)
	require.NoError(t, err)
	assert.Len(t, live, 3)

	total, err = newSpawner(db).SpawnAll(ctx, base.Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, total)
}

// distance approximates the metres between two nearby points
func distance(lat1, lng1, lat2, lng2 float64) float64 {
	const metresPerDegree = 111320.0
	dy := (lat2 - lat1) * metresPerDegree
	dx := (lng2 - lng1) * metresPerDegree * math.Cos(lat1*math.Pi/180)
	return math.Hypot(dx, dy)
}
