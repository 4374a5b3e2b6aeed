// Package scheduler turns cadence specs into recurring callbacks.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Parser accepts standard 5-field specs, an optional leading seconds field and
// descriptors such as "@daily" or "@every 30s".
var Parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Cron registers triggers on a robfig/cron instance evaluated in a fixed location.
type Cron struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func New(location *time.Location, logger *slog.Logger) *Cron {
	if location == nil {
		location = time.UTC
	}
	cronLogger := slogAdapter{logger: logger}
	c := cron.New(
		cron.WithLocation(location),
		cron.WithParser(Parser),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger)),
	)
	return &Cron{cron: c, logger: logger}
}

// Register schedules fn on spec and returns a handle for Cancel.
func (c *Cron) Register(spec string, fn func()) (int, error) {
	id, err := c.cron.AddFunc(spec, fn)
	if err != nil {
		return 0, fmt.Errorf("register trigger %q: %w", spec, err)
	}

	entry := c.cron.Entry(id)
	c.logger.Debug("trigger registered", "spec", spec, "entry_id", id, "next_run", entry.Next)
	return int(id), nil
}

// Cancel removes a registration. Unknown handles are ignored.
func (c *Cron) Cancel(handle int) {
	c.cron.Remove(cron.EntryID(handle))
}

func (c *Cron) Start() {
	c.cron.Start()
	c.logger.Info("scheduler started", "location", c.cron.Location().String())
}

// Stop halts the cron loop and waits for running callbacks until ctx expires.
func (c *Cron) Stop(ctx context.Context) error {
	done := c.cron.Stop()
	select {
	case <-done.Done():
		c.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ValidateSpec reports whether spec can be parsed.
func ValidateSpec(spec string) error {
	if _, err := Parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cadence %q: %w", spec, err)
	}
	return nil
}

type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug("cron: "+msg, keysAndValues...)
}

func (a slogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
