// Package scheduler provides the cron scheduler for NewsBot.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule fires at minute 0 of every hour.
const DefaultSchedule = "0 * * * *"

// Job represents a scheduled task.
type Job struct {
	Name     string
	Schedule string // standard 5-field cron expression, e.g. "0 * * * *"
	Fn       func(ctx context.Context) error
}

// Options control how the scheduler runs its jobs.
type Options struct {
	// RunOnStart runs every job once as soon as Start is called.
	RunOnStart bool
	// SkipOverlapping drops a tick while the previous run of the same job is
	// still in flight. Off by default, so a slow run can overlap the next one.
	SkipOverlapping bool
}

// Scheduler runs jobs on cron schedules.
type Scheduler struct {
	jobs   []Job
	opts   Options
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// NewScheduler creates a new scheduler.
func NewScheduler(opts Options) *Scheduler {
	logger := slog.Default()
	wrappers := []cron.JobWrapper{cron.Recover(cronLogger{logger})}
	if opts.SkipOverlapping {
		wrappers = append(wrappers, cron.SkipIfStillRunning(cronLogger{logger}))
	}
	return &Scheduler{
		opts:    opts,
		cron:    cron.New(cron.WithChain(wrappers...)),
		logger:  logger,
		entries: make(map[string]cron.EntryID),
	}
}

// Add registers a job with the scheduler. The schedule is validated here.
func (s *Scheduler) Add(job Job) error {
	if job.Schedule == "" {
		job.Schedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(job.Schedule); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", job.Schedule, job.Name, err)
	}
	s.jobs = append(s.jobs, job)
	return nil
}

// RunOnce executes all registered jobs once, in registration order.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	var firstErr error
	for _, job := range s.jobs {
		if err := s.run(ctx, job); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	s.logger.Info("running job", "name", job.Name)
	start := time.Now()
	if err := job.Fn(ctx); err != nil {
		s.logger.Error("job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return err
	}
	s.logger.Info("job completed", "name", job.Name, "duration", time.Since(start))
	return nil
}

// Start runs the jobs once (when RunOnStart is set), then on their schedules
// until ctx is cancelled. It returns after in-flight jobs have finished.
func (s *Scheduler) Start(ctx context.Context) error {
	ids := make([]cron.EntryID, 0, len(s.jobs))
	s.mu.Lock()
	for _, job := range s.jobs {
		id, err := s.cron.AddFunc(job.Schedule, func() {
			s.logger.Info("scheduled job triggered 🟡", "name", job.Name)
			s.run(ctx, job)
		})
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("schedule job %s: %w", job.Name, err)
		}
		s.entries[job.Name] = id
		ids = append(ids, id)
	}
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("scheduler started 🟢", "jobs", len(s.jobs), "skip_overlapping", s.opts.SkipOverlapping)

	// The startup run goes through the same job chain as scheduled ticks,
	// so SkipOverlapping also covers a slow first run.
	if s.opts.RunOnStart {
		for _, id := range ids {
			s.cron.Entry(id).WrappedJob.Run()
		}
	}

	<-ctx.Done()
	s.logger.Info("scheduler stopping")
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// Next reports when the named job fires next. It is only meaningful after
// Start has registered the job.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.entries[name]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
