package cron

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/dmitrymomot/elysium/pkg/logger"
)

// Handler is the work a task performs. Errors and panics are logged and
// never stop the scheduler.
type Handler func(ctx context.Context) error

// State of a registered task.
type State int

const (
	StateRunning State = iota
	StateStopped
)

func (s State) String() string {
	if s == StateStopped {
		return "stopped"
	}
	return "running"
}

// TaskInfo is a snapshot of a registered task.
type TaskInfo struct {
	Name       string
	Expression string
	Location   *time.Location
	State      State
	InFlight   bool
	LastRun    time.Time
	NextRun    time.Time
}

type task struct {
	name       string
	expression string
	schedule   cronlib.Schedule
	handler    Handler
	location   *time.Location
	runOnInit  bool

	state      State
	lastMinute time.Time
	lastRun    time.Time
	inFlight   atomic.Bool
}

// Standard five fields plus @hourly style descriptors.
var parser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// Parse validates a five-field expression (minute hour day-of-month month
// day-of-week). Fields accept *, values, */step, ranges and lists.
// Interval descriptors such as "@every 5m" are rejected because tasks are
// matched against wall-clock minutes.
func Parse(expression string) (cronlib.Schedule, error) {
	expression = strings.TrimSpace(expression)
	if strings.HasPrefix(expression, "@every") {
		return nil, fmt.Errorf("%w: %q: interval descriptors are not supported", ErrInvalidExpression, expression)
	}
	schedule, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidExpression, expression, err)
	}
	return schedule, nil
}

// Matches reports whether the schedule fires in the minute containing t,
// evaluated in t's location. Every field must contain its value, including
// both day-of-month and day-of-week.
func Matches(schedule cronlib.Schedule, t time.Time) bool {
	spec, ok := schedule.(*cronlib.SpecSchedule)
	if !ok {
		minute := t.Truncate(time.Minute)
		return schedule.Next(minute.Add(-time.Second)).Equal(minute)
	}
	t = inLocation(spec, t)
	return dayMatches(spec, t) && has(spec.Hour, t.Hour()) && has(spec.Minute, t.Minute())
}

// Next returns the first matching minute after t, or the zero time when
// none occurs within five years.
func Next(schedule cronlib.Schedule, t time.Time) time.Time {
	spec, ok := schedule.(*cronlib.SpecSchedule)
	if !ok {
		return schedule.Next(t)
	}
	t = inLocation(spec, t)
	start := t.Truncate(time.Minute).Add(time.Minute)
	loc := start.Location()
	y, mo, d := start.Date()

	for i := 0; i < 5*366; i++ {
		day := time.Date(y, mo, d+i, 0, 0, 0, 0, loc)
		if !dayMatches(spec, day) {
			continue
		}
		for h := 0; h < 24; h++ {
			if !has(spec.Hour, h) {
				continue
			}
			for m := 0; m < 60; m++ {
				if !has(spec.Minute, m) {
					continue
				}
				c := time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc)
				// Skip wall-clock times that do not exist because of DST.
				if c.Hour() == h && c.Minute() == m && !c.Before(start) {
					return c
				}
			}
		}
	}
	return time.Time{}
}

func has(bits uint64, v int) bool {
	return bits&(1<<uint(v)) != 0
}

func dayMatches(spec *cronlib.SpecSchedule, t time.Time) bool {
	return has(spec.Month, int(t.Month())) && has(spec.Dom, t.Day()) && has(spec.Dow, int(t.Weekday()))
}

// Expressions prefixed with CRON_TZ= carry their own location.
func inLocation(spec *cronlib.SpecSchedule, t time.Time) time.Time {
	if spec.Location != nil && spec.Location != time.Local {
		return t.In(spec.Location)
	}
	return t
}

// Scheduler polls registered tasks and runs those whose expression matches
// the current minute.
type Scheduler struct {
	mu       sync.RWMutex
	tasks    map[string]*task
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	running atomic.Bool
	baseCtx atomic.Pointer[context.Context]
	wg      sync.WaitGroup
}

// New creates a scheduler. Call Run to start polling.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		tasks:    make(map[string]*task),
		logger:   slog.Default(),
		interval: time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("cron"))
	return s
}

// AddTask validates the expression, registers the task and marks it
// running. Names are unique within the scheduler.
func (s *Scheduler) AddTask(name, expression string, h Handler, opts ...TaskOption) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if h == nil {
		return ErrNilHandler
	}
	schedule, err := Parse(expression)
	if err != nil {
		return err
	}

	t := &task{
		name:       name,
		expression: expression,
		schedule:   schedule,
		handler:    h,
		location:   time.Local,
		state:      StateRunning,
	}
	for _, opt := range opts {
		opt(t)
	}

	s.mu.Lock()
	if _, exists := s.tasks[name]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskExists, name)
	}
	s.tasks[name] = t
	s.mu.Unlock()

	s.logger.Info("task registered",
		logger.Task(name),
		slog.String("expression", expression),
		slog.String("timezone", t.location.String()),
	)

	if t.runOnInit {
		s.fire(s.context(), t, s.now())
	}
	return nil
}

// StartTask resumes a stopped task.
func (s *Scheduler) StartTask(name string) error {
	return s.setState(name, StateRunning)
}

// StopTask pauses a task without removing it. An invocation already in
// progress finishes normally.
func (s *Scheduler) StopTask(name string) error {
	return s.setState(name, StateStopped)
}

func (s *Scheduler) setState(name string, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	t.state = state
	s.logger.Info("task "+state.String(), logger.Task(name))
	return nil
}

// RemoveTask stops and deletes a task.
func (s *Scheduler) RemoveTask(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	t.state = StateStopped
	delete(s.tasks, name)
	s.logger.Info("task removed", logger.Task(name))
	return nil
}

// Tasks returns snapshots of all tasks sorted by name.
func (s *Scheduler) Tasks() []TaskInfo {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]TaskInfo, 0, len(s.tasks))
	for _, t := range s.tasks {
		info := TaskInfo{
			Name:       t.name,
			Expression: t.expression,
			Location:   t.location,
			State:      t.state,
			InFlight:   t.inFlight.Load(),
			LastRun:    t.lastRun,
		}
		if t.state == StateRunning {
			info.NextRun = Next(t.schedule, now.In(t.location))
		}
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b TaskInfo) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Run polls tasks until ctx is done, then waits for in-flight handlers.
// Handlers receive ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)
	s.baseCtx.Store(&ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("cron scheduler started", slog.Duration("tick_interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.Wait()
			s.logger.Info("cron scheduler stopped")
			return nil
		case <-ticker.C:
			s.Tick(s.now())
		}
	}
}

// Tick fires every running task whose expression matches the minute of
// now in the task's timezone, at most once per minute per task. A task
// whose previous invocation is still in flight is skipped.
func (s *Scheduler) Tick(now time.Time) {
	ctx := s.context()

	var due []*task
	s.mu.Lock()
	for _, t := range s.tasks {
		if t.state != StateRunning {
			continue
		}
		local := now.In(t.location)
		minute := local.Truncate(time.Minute)
		if minute.Equal(t.lastMinute) || !Matches(t.schedule, local) {
			continue
		}
		if t.inFlight.Load() {
			s.logger.Warn("task still running, skipping this minute", logger.Task(t.name))
			continue
		}
		t.lastMinute = minute
		due = append(due, t)
	}
	s.mu.Unlock()

	for _, t := range due {
		s.fire(ctx, t, now)
	}
}

// Wait blocks until all in-flight handlers return.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) context() context.Context {
	if ctx := s.baseCtx.Load(); ctx != nil {
		return *ctx
	}
	return context.Background()
}

func (s *Scheduler) fire(ctx context.Context, t *task, now time.Time) {
	if !t.inFlight.CompareAndSwap(false, true) {
		return
	}
	s.mu.Lock()
	t.lastRun = now
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer t.inFlight.Store(false)
		s.execute(ctx, t)
	}()
}

func (s *Scheduler) execute(ctx context.Context, t *task) {
	start := time.Now()
	err := s.call(ctx, t)
	if err != nil {
		s.logger.ErrorContext(ctx, "task failed",
			logger.Task(t.name),
			logger.Duration(time.Since(start)),
			logger.Error(err),
		)
		return
	}
	s.logger.DebugContext(ctx, "task completed",
		logger.Task(t.name),
		logger.Duration(time.Since(start)),
	)
}

func (s *Scheduler) call(ctx context.Context, t *task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()
	return t.handler(ctx)
}
