// Package jobs runs the periodic housekeeping of the game world: expiring
// stale rows and spawning hunting instances.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/latoulicious/vtmsu/pkg/logging"
	"github.com/robfig/cron/v3"
)

// ErrUnknownJob is returned for a job name that was never registered
var ErrUnknownJob = errors.New("unknown job")

// Job is one unit of scheduled work. The returned fields are logged with the
// completion message.
type Job func(ctx context.Context, now time.Time) (map[string]interface{}, error)

// Status describes a registered job
type Status struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	Next     time.Time `json:"next"`
	Prev     time.Time `json:"prev"`
	Running  bool      `json:"running"`
}

type entry struct {
	id       cron.EntryID
	schedule string
	job      Job
	running  bool
}

// Scheduler runs named jobs on cron schedules. A run that is still going
// when its next tick fires is skipped.
type Scheduler struct {
	cron    *cron.Cron
	factory logging.LoggerFactory
	logger  logging.Logger
	clock   func() time.Time

	mu      sync.Mutex
	entries map[string]*entry

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock replaces time.Now for the runs of every job
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) { s.clock = clock }
}

// WithLoggerFactory sets the factory the job loggers come from
func WithLoggerFactory(factory logging.LoggerFactory) Option {
	return func(s *Scheduler) { s.factory = factory }
}

// NewScheduler creates a stopped scheduler
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		factory: logging.GetGlobalLoggerFactory(),
		clock:   func() time.Time { return time.Now().UTC() },
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.factory.CreateLogger("jobs")

	adapter := cronLogger{s.logger}
	s.cron = cron.New(
		cron.WithLogger(adapter),
		cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
	)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Add registers job under name with a standard five field cron spec or a
// descriptor such as @hourly
func (s *Scheduler) Add(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %q is already registered", name)
	}

	e := &entry{schedule: spec, job: job}
	id, err := s.cron.AddFunc(spec, func() {
		// A failed scheduled run is already logged by run
		_ = s.run(s.ctx, name, e)
	})
	if err != nil {
		return fmt.Errorf("schedule job %q: %w", name, err)
	}
	e.id = id
	s.entries[name] = e

	s.logger.Info("Job registered", map[string]interface{}{
		"job":      name,
		"schedule": spec,
	})
	return nil
}

// RunNow runs the named job synchronously, outside its schedule
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.run(ctx, name, e)
}

func (s *Scheduler) run(ctx context.Context, name string, e *entry) error {
	s.mu.Lock()
	if e.running {
		s.mu.Unlock()
		return fmt.Errorf("job %q is already running", name)
	}
	e.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		e.running = false
		s.mu.Unlock()
	}()

	logger := s.factory.CreateJobLogger(name).WithContext(map[string]interface{}{
		"run_id": uuid.NewString(),
	})
	start := s.clock()
	logger.Debug("Job started", nil)

	fields, err := e.job(ctx, start)
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["duration_ms"] = time.Since(start).Milliseconds()

	if err != nil {
		logger.Error("Job failed", err, fields)
		return err
	}
	logger.Info("Job completed", fields)
	return nil
}

// Start begins running jobs on their schedules
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", map[string]interface{}{"jobs": len(s.entries)})
}

// Stop halts the schedule and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()

	select {
	case <-done.Done():
		s.logger.Info("Scheduler stopped", nil)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for running jobs: %w", ctx.Err())
	}
}

// Status reports every registered job, sorted by name
func (s *Scheduler) Status() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Status, 0, len(s.entries))
	for name, e := range s.entries {
		ce := s.cron.Entry(e.id)
		out = append(out, Status{
			Name:     name,
			Schedule: e.schedule,
			Next:     ce.Next,
			Prev:     ce.Prev,
			Running:  e.running,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// cronLogger forwards the cron library's own messages
type cronLogger struct {
	logger logging.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.logger.Debug(msg, pairs(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.logger.Error(msg, err, pairs(keysAndValues))
}

func pairs(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
