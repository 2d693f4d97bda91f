package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ArticleEnricher/internal/ports"
)

// CronScheduler runs registered jobs on five-field cron expressions.
// Jobs never overlap: a tick that fires while any job is still running waits
// for it, and a tick for a job that is itself still running is skipped.
type CronScheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	runMu  sync.Mutex

	mu      sync.Mutex
	running bool
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler evaluating expressions in loc.
func NewCronScheduler(loc *time.Location, logger *slog.Logger) *CronScheduler {
	if loc == nil {
		loc = time.Local
	}
	s := &CronScheduler{}
	if logger != nil {
		s.logger = logger.With("component", "scheduler")
	}

	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
		cron.WithChain(
			cron.Recover(cronLogger{s.logger}),
			cron.SkipIfStillRunning(cronLogger{s.logger}),
		),
	)
	return s
}

// Add registers job under the cron expression spec.
func (s *CronScheduler) Add(spec string, job func(time.Time)) error {
	if job == nil {
		return fmt.Errorf("job for %q is nil", spec)
	}

	id, err := s.cron.AddFunc(spec, func() {
		s.runMu.Lock()
		defer s.runMu.Unlock()
		job(time.Now())
	})
	if err != nil {
		return fmt.Errorf("add cron job %q: %w", spec, err)
	}

	s.debug("job registered", "spec", spec, "entry", int(id))
	return nil
}

// Start launches the cron loop. It returns immediately.
func (s *CronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.cron.Start()
	s.running = true
	s.debug("scheduler started", "entries", len(s.cron.Entries()))
	return nil
}

// Stop halts the loop and waits for in-flight jobs or ctx cancellation.
func (s *CronScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.debug("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop scheduler: %w", ctx.Err())
	}
}

// Next reports the next activation of every registered job.
func (s *CronScheduler) Next() []time.Time {
	entries := s.cron.Entries()
	out := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Next)
	}
	return out
}

func (s *CronScheduler) debug(msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Debug(msg, args...)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
