package hunting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/database/repository"
	"github.com/latoulicious/vtmsu/pkg/logging"
	"gorm.io/gorm"
)

// ErrInstanceExpired is returned when a hunt targets an instance that is no
// longer live
var ErrInstanceExpired = errors.New("hunting instance has expired")

// HuntNotifier is told about every recorded hunt
type HuntNotifier interface {
	HuntRecorded(ctx context.Context, hunt *models.Hunt, description *models.HuntingDescription) error
}

// HuntInput describes a hunt to record
type HuntInput struct {
	CharacterID int
	CreatedByID string
	InstanceID  *int
	Status      models.HuntStatus
}

// HuntResult is the outcome of Record
type HuntResult struct {
	Hunt        *models.Hunt
	Instance    *models.HuntingInstance
	Description *models.HuntingDescription
}

// Recorder stores hunts and applies their effect on hunting instances
type Recorder struct {
	db       *gorm.DB
	hunts    *repository.HuntRepository
	hunting  *repository.HuntingRepository
	notifier HuntNotifier
	logger   logging.Logger
	now      func() time.Time
}

// RecorderOption configures a Recorder
type RecorderOption func(*Recorder)

// WithNotifier sets the notifier called after each recorded hunt
func WithNotifier(n HuntNotifier) RecorderOption {
	return func(r *Recorder) {
		r.notifier = n
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		r.now = now
	}
}

func NewRecorder(db *gorm.DB, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		db:      db,
		hunts:   repository.NewHuntRepository(db),
		hunting: repository.NewHuntingRepository(db),
		logger:  logging.GetGlobalLoggerFactory().CreateLogger("hunt_recorder"),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record stores a hunt. A successful hunt at an instance takes one from its
// remains, and the instance expires once nothing remains. The result carries
// the target description matching what is left of the instance.
func (r *Recorder) Record(ctx context.Context, in HuntInput) (*HuntResult, error) {
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidHuntStatus, in.Status)
	}

	now := r.now()
	result := &HuntResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hunts := r.hunts.WithTx(tx)
		hunting := r.hunting.WithTx(tx)

		if in.InstanceID != nil {
			instance, err := hunting.GetInstance(ctx, *in.InstanceID)
			if err != nil {
				return err
			}
			if !instance.Live(now) {
				return ErrInstanceExpired
			}
			result.Instance = instance
		}

		hunt := &models.Hunt{
			InstanceID:  in.InstanceID,
			CharacterID: in.CharacterID,
			CreatedByID: in.CreatedByID,
			Status:      in.Status,
		}
		if err := hunts.Create(ctx, hunt); err != nil {
			return err
		}
		result.Hunt = hunt

		instance := result.Instance
		if instance == nil {
			return nil
		}

		if in.Status == models.HuntSuccess && instance.Remains != nil && *instance.Remains > 0 {
			updated, err := hunting.DecrementRemains(ctx, instance.ID, now)
			if err != nil {
				return err
			}
			updated.Target = instance.Target
			result.Instance = updated
			instance = updated
		}

		if instance.Remains != nil {
			desc, err := hunting.DescriptionFor(ctx, instance.TargetID, *instance.Remains)
			if err != nil && !repository.IsNotFound(err) {
				return err
			}
			result.Description = desc
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record hunt: %w", err)
	}

	fields := map[string]interface{}{
		"hunt_id":      result.Hunt.ID,
		"character_id": in.CharacterID,
		"status":       string(in.Status),
	}
	if result.Instance != nil {
		fields["instance_id"] = result.Instance.ID
		if result.Instance.Remains != nil {
			fields["remains"] = *result.Instance.Remains
		}
	}
	r.logger.Info("Hunt recorded", fields)

	if r.notifier != nil {
		if err := r.notifier.HuntRecorded(ctx, result.Hunt, result.Description); err != nil {
			r.logger.Warn("Hunt notification failed", map[string]interface{}{
				"hunt_id": result.Hunt.ID,
				"error":   err.Error(),
			})
		}
	}
	return result, nil
}
