// Package hunting keeps hunting grounds populated with instances and records
// the hunts characters make against them.
package hunting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/database/repository"
	"github.com/latoulicious/vtmsu/pkg/logging"
	"gorm.io/gorm"
)

// DefaultDelay applies to grounds without a delay
const DefaultDelay = time.Hour

// metresPerDegree is the length of one degree of latitude
const metresPerDegree = 111320.0

// ErrNoTargets is returned when a ground needs an instance but no hunting
// target exists to spawn
var ErrNoTargets = errors.New("no hunting targets to spawn")

// Spawner creates hunting instances on grounds
type Spawner struct {
	db      *gorm.DB
	hunting *repository.HuntingRepository
	rand    *rand.Rand
	logger  logging.Logger
}

// SpawnerOption configures a Spawner
type SpawnerOption func(*Spawner)

// WithRand sets the random source used to pick targets and positions
func WithRand(r *rand.Rand) SpawnerOption {
	return func(s *Spawner) {
		s.rand = r
	}
}

// WithSpawnerLogger replaces the default component logger
func WithSpawnerLogger(logger logging.Logger) SpawnerOption {
	return func(s *Spawner) {
		s.logger = logger
	}
}

func NewSpawner(db *gorm.DB, opts ...SpawnerOption) *Spawner {
	s := &Spawner{
		db:      db,
		hunting: repository.NewHuntingRepository(db),
		rand:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:  logging.GetGlobalLoggerFactory().CreateLogger("spawner"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plan is how many instances a ground should receive
type Plan struct {
	Permanent int
	Temporary int
}

// Total returns the number of instances to spawn
func (p Plan) Total() int {
	return p.Permanent + p.Temporary
}

// PlanGround decides what a ground needs given its live instance count and
// its newest instance, if any. A ground below min_inst is topped up with
// permanent instances. A ground between min_inst and max_inst receives one
// temporary instance once its newest instance is older than the delay.
func PlanGround(ground *models.HuntingGround, live int64, latest *models.HuntingInstance, now time.Time) Plan {
	minInst := deref(ground.MinInst, 0)
	maxInst := deref(ground.MaxInst, minInst)

	if live < int64(minInst) {
		return Plan{Permanent: minInst - int(live)}
	}
	if live >= int64(maxInst) {
		return Plan{}
	}
	if latest != nil && latest.CreatedAt.Add(groundDelay(ground)).After(now) {
		return Plan{}
	}
	return Plan{Temporary: 1}
}

// SpawnGround spawns the instances a ground needs at now and returns them
func (s *Spawner) SpawnGround(ctx context.Context, ground *models.HuntingGround, now time.Time) ([]models.HuntingInstance, error) {
	var spawned []models.HuntingInstance

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.hunting.WithTx(tx)

		live, err := repo.CountLiveInstances(ctx, ground.ID, now)
		if err != nil {
			return err
		}

		latest, err := repo.LatestInstance(ctx, ground.ID)
		if err != nil && !repository.IsNotFound(err) {
			return err
		}

		plan := PlanGround(ground, live, latest, now)
		if plan.Total() == 0 {
			return nil
		}

		targets, err := repo.ListTargets(ctx)
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			return ErrNoTargets
		}

		for i := 0; i < plan.Total(); i++ {
			temporary := i >= plan.Permanent
			instance, err := s.newInstance(ctx, repo, ground, targets, temporary, now)
			if err != nil {
				return err
			}
			if err := repo.CreateInstance(ctx, instance); err != nil {
				return err
			}
			spawned = append(spawned, *instance)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("spawn on ground %d: %w", ground.ID, err)
	}

	if len(spawned) > 0 {
		s.logger.Info("Spawned hunting instances", map[string]interface{}{
			"ground_id": ground.ID,
			"ground":    ground.Name,
			"count":     len(spawned),
		})
	}
	return spawned, nil
}

// SpawnAll runs SpawnGround over every ground and returns the number of
// instances spawned
func (s *Spawner) SpawnAll(ctx context.Context, now time.Time) (int, error) {
	grounds, err := s.hunting.ListGrounds(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for i := range grounds {
		spawned, err := s.SpawnGround(ctx, &grounds[i], now)
		if err != nil {
			return total, err
		}
		total += len(spawned)
	}

	s.logger.Debug("Spawn pass finished", map[string]interface{}{
		"grounds": len(grounds),
		"spawned": total,
	})
	return total, nil
}

func (s *Spawner) newInstance(ctx context.Context, repo *repository.HuntingRepository, ground *models.HuntingGround, targets []models.HuntingData, temporary bool, now time.Time) (*models.HuntingInstance, error) {
	target := targets[s.rand.IntN(len(targets))]

	remains, err := repo.MaxRemains(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	instance := &models.HuntingInstance{
		TargetID:  target.ID,
		GroundID:  &ground.ID,
		Remains:   &remains,
		Temporary: temporary,
		CreatedAt: now,
	}
	if temporary {
		expires := now.Add(groundDelay(ground))
		instance.Expires = &expires
	}

	if ground.CoordY != nil && ground.CoordX != nil {
		lat, lng := s.pointInCircle(*ground.CoordY, *ground.CoordX, float64(deref(ground.Radius, 0)))
		instance.CoordY = &lat
		instance.CoordX = &lng
	}
	return instance, nil
}

// pointInCircle picks a point uniformly inside the circle of radius metres
// around lat/lng
func (s *Spawner) pointInCircle(lat, lng, radius float64) (float64, float64) {
	if radius <= 0 {
		return lat, lng
	}

	r := radius * math.Sqrt(s.rand.Float64())
	theta := 2 * math.Pi * s.rand.Float64()

	north := r * math.Sin(theta)
	east := r * math.Cos(theta)

	dLat := north / metresPerDegree
	dLng := 0.0
	if c := math.Cos(lat * math.Pi / 180); c > 1e-9 {
		dLng = east / (metresPerDegree * c)
	}
	return lat + dLat, lng + dLng
}

func groundDelay(ground *models.HuntingGround) time.Duration {
	if ground.Delay == nil || *ground.Delay < 0 {
		return DefaultDelay
	}
	return time.Duration(*ground.Delay) * time.Second
}

func deref(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
