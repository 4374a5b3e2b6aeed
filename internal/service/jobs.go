package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"listing_jobs/internal/config"
	"listing_jobs/internal/domain"
)

const (
	TriggerScrape  = "scrape"
	TriggerHealth  = "health"
	TriggerCleanup = "cleanup"
)

var (
	ErrTickSkipped    = errors.New("previous tick still running")
	ErrUnknownTrigger = errors.New("unknown trigger")
	ErrStopped        = errors.New("job scheduler is not running")
)

// TriggerScheduler runs callbacks on a cadence spec.
type TriggerScheduler interface {
	Register(spec string, fn func()) (int, error)
	Cancel(handle int)
}

// SourceRunner scrapes one configured source.
type SourceRunner interface {
	Scrape(ctx context.Context, src config.SourceConfig) (*domain.ScrapeResult, error)
}

type HealthChecker interface {
	Check(ctx context.Context) domain.HealthSnapshot
}

type CleanupRunner interface {
	Run(ctx context.Context) (CleanupReport, error)
}

// Recorder is the outcome ledger written by the job scheduler.
type Recorder interface {
	RecordCycleSuccess(cycleID string, d time.Duration, sourceCount int)
	RecordCycleError(cycleID string, d time.Duration, sourceCount int, err error)
	RecordHealthSuccess(snap domain.HealthSnapshot)
	RecordHealthFailure(snap domain.HealthSnapshot, err error)
	RecordCleanupSuccess(deleted int, d time.Duration)
	RecordCleanupFailure(deleted int, d time.Duration, err error)
	Prune() int
}

type trigger struct {
	name    string
	spec    string
	run     func(ctx context.Context)
	handle  int
	active  bool
	running atomic.Bool
}

// JobScheduler owns the scrape, health and cleanup triggers.
type JobScheduler struct {
	sources   []config.SourceConfig
	schedule  config.ScheduleConfig
	triggers  TriggerScheduler
	runner    SourceRunner
	health    HealthChecker
	cleanup   CleanupRunner
	recorder  Recorder
	publisher EventPublisher
	logger    *slog.Logger

	now   func() time.Time
	newID func() string

	// ticks run on baseCtx so Stop never aborts in-flight work.
	baseCtx context.Context

	mu      sync.Mutex
	byName  map[string]*trigger
	order   []*trigger
	started bool
	wg      sync.WaitGroup
}

// Deps bundles the collaborators of a JobScheduler. Publisher may be nil.
type Deps struct {
	Triggers  TriggerScheduler
	Runner    SourceRunner
	Health    HealthChecker
	Cleanup   CleanupRunner
	Recorder  Recorder
	Publisher EventPublisher
}

func NewJobScheduler(sources []config.SourceConfig, schedule config.ScheduleConfig, deps Deps, logger *slog.Logger) *JobScheduler {
	s := &JobScheduler{
		sources:   sources,
		schedule:  schedule,
		triggers:  deps.Triggers,
		runner:    deps.Runner,
		health:    deps.Health,
		cleanup:   deps.Cleanup,
		recorder:  deps.Recorder,
		publisher: deps.Publisher,
		logger:    logger.With("component", "job_scheduler"),
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
		baseCtx:   context.Background(),
		byName:    make(map[string]*trigger),
	}

	for _, t := range []*trigger{
		{name: TriggerScrape, spec: schedule.Scrape, run: s.RunScrapeCycle},
		{name: TriggerHealth, spec: schedule.Health, run: s.RunHealthCheck},
		{name: TriggerCleanup, spec: schedule.Cleanup, run: s.RunCleanup},
	} {
		s.byName[t.name] = t
		s.order = append(s.order, t)
	}

	return s
}

// Start registers every trigger. Calling Start on a started scheduler is a no-op.
func (s *JobScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	for _, t := range s.order {
		t := t
		handle, err := s.triggers.Register(t.spec, func() { _ = s.fire(t) })
		if err != nil {
			s.cancelLocked()
			return fmt.Errorf("start trigger %s: %w", t.name, err)
		}
		t.handle = handle
		t.active = true
		s.logger.Info("trigger active", "trigger", t.name, "spec", t.spec)
	}
	s.started = true

	if s.schedule.RunOnStart {
		go func() { _ = s.fire(s.byName[TriggerScrape]) }()
	}

	s.logger.Info("job scheduler started", "sources", len(s.sources), "timezone", s.schedule.Timezone)
	return nil
}

// Stop deactivates every trigger and waits for in-flight ticks until ctx is
// done. In-flight external calls are not cancelled.
func (s *JobScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.cancelLocked()
		s.started = false
		s.logger.Info("job scheduler stopping")
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running ticks: %w", ctx.Err())
	}
}

func (s *JobScheduler) cancelLocked() {
	for _, t := range s.order {
		if t.active {
			s.triggers.Cancel(t.handle)
			t.active = false
		}
	}
}

// Status reports whether each trigger is currently registered.
func (s *JobScheduler) Status() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := make(map[string]bool, len(s.order))
	for _, t := range s.order {
		status[t.name] = t.active
	}
	return status
}

// RunNow fires one tick of the named trigger in the background, honouring
// skip-on-overlap.
func (s *JobScheduler) RunNow(name string) error {
	t, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTrigger, name)
	}
	if err := s.begin(t); err != nil {
		return err
	}
	go func() {
		defer s.end(t)
		s.tick(t)
	}()
	return nil
}

// fire runs one tick synchronously unless the previous tick of the same
// trigger is still running, in which case the tick is dropped.
func (s *JobScheduler) fire(t *trigger) error {
	if err := s.begin(t); err != nil {
		return err
	}
	defer s.end(t)

	s.tick(t)
	return nil
}

func (s *JobScheduler) begin(t *trigger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrStopped
	}
	if !t.running.CompareAndSwap(false, true) {
		s.logger.Warn("tick skipped, previous run still in progress", "trigger", t.name)
		return ErrTickSkipped
	}
	s.wg.Add(1)
	return nil
}

func (s *JobScheduler) end(t *trigger) {
	t.running.Store(false)
	s.wg.Done()
}

func (s *JobScheduler) tick(t *trigger) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("tick panicked", "trigger", t.name, "panic", p)
		}
	}()
	t.run(s.baseCtx)
}

// RunScrapeCycle scrapes every enabled source concurrently and records one
// cycle outcome. Individual source failures never fail the cycle.
func (s *JobScheduler) RunScrapeCycle(ctx context.Context) {
	cycleID := s.newID()
	start := s.now()
	logger := s.logger.With("cycle_id", cycleID)

	enabled, err := s.enabledSources()
	if err != nil {
		duration := s.now().Sub(start)
		logger.Error("scrape cycle aborted", "error", err)
		s.recorder.RecordCycleError(cycleID, duration, 0, err)
		s.publishCycle(ctx, domain.CycleOutcome{CycleID: cycleID, Duration: duration, Error: err.Error(), Timestamp: s.now()})
		return
	}

	if len(enabled) == 0 {
		logger.Info("no enabled sources, skipping scrape cycle")
		return
	}

	logger.Info("scrape cycle started", "sources", len(enabled))

	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)
	for _, src := range enabled {
		wg.Add(1)
		go func(src config.SourceConfig) {
			defer wg.Done()
			if err := s.scrapeIsolated(ctx, src); err != nil {
				failed.Add(1)
				logger.Error("source scrape failed", "source", src.Name, "error", err)
			}
		}(src)
	}
	wg.Wait()

	duration := s.now().Sub(start)
	s.recorder.RecordCycleSuccess(cycleID, duration, len(enabled))
	s.publishCycle(ctx, domain.CycleOutcome{
		CycleID:     cycleID,
		Duration:    duration,
		Success:     true,
		SourceCount: len(enabled),
		Timestamp:   s.now(),
	})

	logger.Info("scrape cycle completed",
		"sources", len(enabled),
		"failed", failed.Load(),
		"duration", duration,
	)
}

func (s *JobScheduler) scrapeIsolated(ctx context.Context, src config.SourceConfig) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	_, err = s.runner.Scrape(ctx, src)
	return err
}

func (s *JobScheduler) enabledSources() ([]config.SourceConfig, error) {
	if s.runner == nil {
		return nil, errors.New("no scrape runner configured")
	}
	if err := config.ValidateSources(s.sources); err != nil {
		return nil, fmt.Errorf("invalid sources: %w", err)
	}

	enabled := make([]config.SourceConfig, 0, len(s.sources))
	for _, src := range s.sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}
	return enabled, nil
}

// RunHealthCheck records the current health snapshot. Any failure is recorded
// as an unhealthy snapshot.
func (s *JobScheduler) RunHealthCheck(ctx context.Context) {
	snap, err := s.checkHealth(ctx)
	if err != nil {
		s.logger.Error("health check failed", "error", err)
		s.recorder.RecordHealthFailure(snap, err)
		snap.Status = domain.HealthUnhealthy
		if snap.Error == "" {
			snap.Error = err.Error()
		}
	} else {
		s.recorder.RecordHealthSuccess(snap)
		s.logger.Info("health check completed",
			"status", snap.Status,
			"records", snap.ExternalRecordCount,
			"oldest_record_age", snap.OldestRecordAge,
		)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishHealth(ctx, snap); err != nil {
			s.logger.Warn("publish health event failed", "error", err)
		}
	}
}

func (s *JobScheduler) checkHealth(ctx context.Context) (snap domain.HealthSnapshot, err error) {
	defer func() {
		if p := recover(); p != nil {
			snap = domain.HealthSnapshot{Status: domain.HealthUnhealthy, Timestamp: s.now()}
			err = fmt.Errorf("health check panic: %v", p)
		}
	}()

	snap = s.health.Check(ctx)
	if snap.Error != "" {
		return snap, errors.New(snap.Error)
	}
	return snap, nil
}

// RunCleanup runs the two-phase cleanup and prunes the metrics ledger.
func (s *JobScheduler) RunCleanup(ctx context.Context) {
	defer func() {
		if n := s.recorder.Prune(); n > 0 {
			s.logger.Info("pruned metrics ledger", "removed", n)
		}
	}()

	start := s.now()
	report, err := s.runCleanup(ctx)
	duration := s.now().Sub(start)

	if err != nil {
		s.logger.Error("cleanup failed",
			"would_delete", report.WouldDelete,
			"executed", report.Executed,
			"error", err,
		)
		s.recorder.RecordCleanupFailure(report.Deleted, duration, err)
		s.publishCleanup(ctx, domain.CleanupOutcome{Deleted: report.Deleted, Duration: duration, Error: err.Error(), Timestamp: s.now()})
		return
	}

	if !report.Executed {
		s.logger.Info("nothing to clean up")
		return
	}

	s.recorder.RecordCleanupSuccess(report.Deleted, duration)
	s.publishCleanup(ctx, domain.CleanupOutcome{Deleted: report.Deleted, Duration: duration, Success: true, Timestamp: s.now()})
	s.logger.Info("cleanup completed", "deleted", report.Deleted, "duration", duration)
}

func (s *JobScheduler) runCleanup(ctx context.Context) (report CleanupReport, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("cleanup panic: %v", p)
		}
	}()
	return s.cleanup.Run(ctx)
}

func (s *JobScheduler) publishCycle(ctx context.Context, o domain.CycleOutcome) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCycle(ctx, o); err != nil {
		s.logger.Warn("publish cycle event failed", "cycle_id", o.CycleID, "error", err)
	}
}

func (s *JobScheduler) publishCleanup(ctx context.Context, o domain.CleanupOutcome) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCleanup(ctx, o); err != nil {
		s.logger.Warn("publish cleanup event failed", "error", err)
	}
}
