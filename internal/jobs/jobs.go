package jobs

import (
	"context"
	"time"

	"github.com/latoulicious/vtmsu/pkg/database"
)

// Job names
const (
	CleanupJobName = "cleanup"
	SpawnJobName   = "spawn"
)

// Cleaner removes expired rows
type Cleaner interface {
	CleanupExpired(ctx context.Context, now time.Time) (database.CleanupResult, error)
}

// Spawner tops up the hunting grounds
type Spawner interface {
	SpawnAll(ctx context.Context, now time.Time) (int, error)
}

// CleanupJob deletes expired sessions, verification tokens and temporary
// hunting instances
func CleanupJob(cleaner Cleaner) Job {
	return func(ctx context.Context, now time.Time) (map[string]interface{}, error) {
		result, err := cleaner.CleanupExpired(ctx, now)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"sessions":            result.Sessions,
			"verification_tokens": result.VerificationTokens,
			"hunting_instances":   result.HuntingInstances,
		}, nil
	}
}

// SpawnJob spawns hunting instances on every ground that needs them
func SpawnJob(spawner Spawner) Job {
	return func(ctx context.Context, now time.Time) (map[string]interface{}, error) {
		spawned, err := spawner.SpawnAll(ctx, now)
		if err != nil {
			return map[string]interface{}{"spawned": spawned}, err
		}
		return map[string]interface{}{"spawned": spawned}, nil
	}
}

// Register adds the cleanup and spawn jobs to s
func Register(s *Scheduler, cleaner Cleaner, spawner Spawner, cleanupSpec, spawnSpec string) error {
	if err := s.Add(CleanupJobName, cleanupSpec, CleanupJob(cleaner)); err != nil {
		return err
	}
	return s.Add(SpawnJobName, spawnSpec, SpawnJob(spawner))
}
