package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/free-games-notifier/internal/metrics"
	domain "github.com/donaldgifford/free-games-notifier/pkg/types"
)

// Cycler runs one check cycle. *Engine satisfies it.
type Cycler interface {
	RunCycle(ctx context.Context, trigger domain.Trigger) (domain.CycleResult, error)
}

var _ Cycler = (*Engine)(nil)

// Scheduler runs check cycles on a cron schedule.
type Scheduler struct {
	cron         *cron.Cron
	cycler       Cycler
	entryID      cron.EntryID
	cycleTimeout time.Duration
	log          *slog.Logger
}

// NewScheduler creates a new Scheduler that runs a cycle whenever the
// standard 5-field spec fires in loc. A non-positive cycleTimeout leaves
// scheduled cycles unbounded.
func NewScheduler(
	c Cycler,
	spec string,
	loc *time.Location,
	cycleTimeout time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}

	s := &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		cycler:       c,
		cycleTimeout: cycleTimeout,
		log:          log,
	}

	id, err := s.cron.AddFunc(spec, s.runScheduled)
	if err != nil {
		return nil, err
	}
	s.entryID = id

	return s, nil
}

// Start begins running scheduled cycles.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.SyncNextRunTimestamp()
	s.log.Info("scheduler started", "next_run", s.NextRun())
}

// Stop halts the scheduler. The returned context is done once any
// running cycle has finished.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// NextRun returns the next activation time, or the zero time when the
// scheduler has not been started.
func (s *Scheduler) NextRun() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// SyncNextRunTimestamp publishes the next activation time as a gauge.
func (s *Scheduler) SyncNextRunTimestamp() {
	next := s.NextRun()
	if next.IsZero() {
		return
	}
	metrics.SchedulerNextRunTimestamp.Set(float64(next.Unix()))
}

// RunOnStart fires one scheduled-trigger cycle in the background. The
// returned channel is closed when that cycle finishes.
func (s *Scheduler) RunOnStart() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.log.Info("running startup check")
		s.runCycle()
	}()
	return done
}

func (s *Scheduler) runScheduled() {
	s.log.Info("scheduled check starting")
	s.runCycle()
	s.SyncNextRunTimestamp()
}

func (s *Scheduler) runCycle() {
	ctx := context.Background()
	if s.cycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cycleTimeout)
		defer cancel()
	}

	result, err := s.cycler.RunCycle(ctx, domain.TriggerScheduled)
	if err != nil {
		s.log.Error("scheduled check failed", "error", err)
		return
	}
	s.log.Info("scheduled check finished",
		"new", len(result.Offers),
		"duration", result.Duration,
	)
}
