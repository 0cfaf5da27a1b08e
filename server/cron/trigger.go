// Package cron runs a task on a cron schedule. The server uses it to
// refresh the activity metrics in the background.
//
// Example usage:
//
//	trigger, err := cron.NewCronTrigger("*/5 * * * *", refresher, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	trigger.Start(ctx)  // Returns immediately, runs in background
//	<-ctx.Done()        // Wait for shutdown signal
package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidCronSpec is returned when the cron specification cannot be parsed.
var ErrInvalidCronSpec = errors.New("invalid cron spec")

// Runnable is implemented by anything that can be triggered by the cron scheduler.
type Runnable interface {
	Run(ctx context.Context) error
}

// RunFunc adapts a function to the Runnable interface.
type RunFunc func(ctx context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// CronTrigger executes a Runnable according to a cron schedule.
type CronTrigger struct {
	spec     string
	schedule cron.Schedule
	runnable Runnable
	logger   *slog.Logger
	now      func() time.Time
}

// NewCronTrigger creates a new CronTrigger with the given cron specification.
// Returns ErrInvalidCronSpec if the specification cannot be parsed.
func NewCronTrigger(spec string, runnable Runnable, logger *slog.Logger) (*CronTrigger, error) {
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return nil, err
	}

	return &CronTrigger{
		spec:     spec,
		schedule: schedule,
		runnable: runnable,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start launches a goroutine that triggers runs according to the cron schedule.
// Returns immediately. The goroutine exits when ctx is cancelled.
func (ct *CronTrigger) Start(ctx context.Context) {
	go ct.loop(ctx)
}

// NextRun returns the next scheduled run time from now.
func (ct *CronTrigger) NextRun() time.Time {
	return ct.schedule.Next(ct.now())
}

func (ct *CronTrigger) loop(ctx context.Context) {
	for {
		nextRun := ct.NextRun()
		wait := time.Until(nextRun)

		ct.logger.Debug("waiting for next scheduled run",
			"next_run", nextRun,
			"wait_duration", wait,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			ct.logger.Info("cron trigger shutting down")
			return
		case <-timer.C:
			ct.executeRun(ctx)
		}
	}
}

// executeRun executes the runnable and logs the result.
func (ct *CronTrigger) executeRun(ctx context.Context) {
	ct.logger.Debug("starting scheduled run", "spec", ct.spec)

	if err := ct.runnable.Run(ctx); err != nil {
		ct.logger.Warn("scheduled run completed with error", "spec", ct.spec, "error", err)
		return
	}
	ct.logger.Debug("scheduled run completed successfully", "spec", ct.spec)
}
