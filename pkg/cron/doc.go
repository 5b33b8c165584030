// Package cron runs named tasks on five-field cron expressions.
//
// A Scheduler polls its tasks once per second and fires every running task
// whose expression matches the current minute in the task's timezone. Each
// task fires at most once per minute, never overlaps with itself, and has
// its errors and panics logged instead of propagated.
//
//	s := cron.New(cron.WithLogger(log))
//	_ = s.AddTask("cleanup", "*/15 * * * *", func(ctx context.Context) error {
//		return store.Prune(ctx)
//	}, cron.WithTimezone(time.UTC))
//	go s.Run(ctx)
//
// Expressions use the standard minute, hour, day-of-month, month and
// day-of-week fields. Ranges, lists, steps and descriptors like @daily are
// accepted; @every intervals are not. A minute matches only when every field
// contains it, so "0 0 1 * 1" fires on the first of the month when it is a
// Monday.
package cron
