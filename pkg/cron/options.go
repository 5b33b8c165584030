package cron

import (
	"log/slog"
	"time"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Scheduler) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithTickInterval sets how often Run checks for due tasks. Defaults to one
// second; tasks still fire at most once per minute.
func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// TaskOption configures a single task.
type TaskOption func(*task)

// WithTimezone evaluates the expression in loc instead of the local zone.
func WithTimezone(loc *time.Location) TaskOption {
	return func(t *task) {
		if loc != nil {
			t.location = loc
		}
	}
}

// WithRunOnInit fires the task once right after registration, regardless
// of its schedule.
func WithRunOnInit() TaskOption {
	return func(t *task) {
		t.runOnInit = true
	}
}
