// Package metrics keeps an append-only, in-memory ledger of job outcomes and
// derives windowed summaries from it.
package metrics

import (
	"sync"
	"time"

	"listing_jobs/internal/domain"
)

// Retention is how long outcomes stay in the ledger before Prune drops them.
const Retention = 7 * 24 * time.Hour

// Recorder is the outcome ledger. Entries are never modified after they are
// appended; only Prune removes them. All methods are safe for concurrent use.
type Recorder struct {
	mu       sync.RWMutex
	scrapes  []domain.ScrapeOutcome
	cycles   []domain.CycleOutcome
	health   []domain.HealthSnapshot
	cleanups []domain.CleanupOutcome

	exporter *Exporter
	now      func() time.Time // injectable for deterministic tests
}

type Option func(*Recorder)

// WithClock overrides the time source used to stamp and window outcomes.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithExporter mirrors every recorded outcome into Prometheus collectors.
func WithExporter(e *Exporter) Option {
	return func(r *Recorder) { r.exporter = e }
}

func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recorder) RecordScrapeSuccess(source string, d time.Duration) {
	r.appendScrape(domain.ScrapeOutcome{Source: source, Success: true, Duration: d})
}

func (r *Recorder) RecordScrapeError(source string, d time.Duration, err error) {
	r.appendScrape(domain.ScrapeOutcome{Source: source, Duration: d, Error: errString(err)})
}

func (r *Recorder) appendScrape(o domain.ScrapeOutcome) {
	o.Timestamp = r.now()
	r.mu.Lock()
	r.scrapes = append(r.scrapes, o)
	r.mu.Unlock()
	r.exporter.observeScrape(o)
}

func (r *Recorder) RecordCycleSuccess(cycleID string, d time.Duration, sourceCount int) {
	r.appendCycle(domain.CycleOutcome{CycleID: cycleID, Duration: d, Success: true, SourceCount: sourceCount})
}

func (r *Recorder) RecordCycleError(cycleID string, d time.Duration, sourceCount int, err error) {
	r.appendCycle(domain.CycleOutcome{CycleID: cycleID, Duration: d, SourceCount: sourceCount, Error: errString(err)})
}

func (r *Recorder) appendCycle(o domain.CycleOutcome) {
	o.Timestamp = r.now()
	r.mu.Lock()
	r.cycles = append(r.cycles, o)
	r.mu.Unlock()
	r.exporter.observeCycle(o)
}

func (r *Recorder) RecordHealthSuccess(snap domain.HealthSnapshot) {
	r.appendHealth(snap)
}

// RecordHealthFailure stores snap as unhealthy regardless of the status it carries.
func (r *Recorder) RecordHealthFailure(snap domain.HealthSnapshot, err error) {
	snap.Status = domain.HealthUnhealthy
	if err != nil && snap.Error == "" {
		snap.Error = err.Error()
	}
	r.appendHealth(snap)
}

func (r *Recorder) appendHealth(snap domain.HealthSnapshot) {
	if snap.Timestamp.IsZero() {
		snap.Timestamp = r.now()
	}
	r.mu.Lock()
	r.health = append(r.health, snap)
	r.mu.Unlock()
	r.exporter.observeHealth(snap)
}

func (r *Recorder) RecordCleanupSuccess(deleted int, d time.Duration) {
	r.appendCleanup(domain.CleanupOutcome{Deleted: deleted, Duration: d, Success: true})
}

func (r *Recorder) RecordCleanupFailure(deleted int, d time.Duration, err error) {
	r.appendCleanup(domain.CleanupOutcome{Deleted: deleted, Duration: d, Error: errString(err)})
}

func (r *Recorder) appendCleanup(o domain.CleanupOutcome) {
	o.Timestamp = r.now()
	r.mu.Lock()
	r.cleanups = append(r.cleanups, o)
	r.mu.Unlock()
	r.exporter.observeCleanup(o)
}

// Prune drops every entry older than Retention and returns how many were removed.
func (r *Recorder) Prune() int {
	cutoff := r.now().Add(-Retention)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	r.scrapes, removed = pruneBefore(r.scrapes, cutoff, removed, func(o domain.ScrapeOutcome) time.Time { return o.Timestamp })
	r.cycles, removed = pruneBefore(r.cycles, cutoff, removed, func(o domain.CycleOutcome) time.Time { return o.Timestamp })
	r.health, removed = pruneBefore(r.health, cutoff, removed, func(o domain.HealthSnapshot) time.Time { return o.Timestamp })
	r.cleanups, removed = pruneBefore(r.cleanups, cutoff, removed, func(o domain.CleanupOutcome) time.Time { return o.Timestamp })
	return removed
}

// pruneBefore keeps entries stamped at or after cutoff. Order of the input is
// not assumed, so a late-appended old entry is still dropped.
func pruneBefore[T any](entries []T, cutoff time.Time, removed int, ts func(T) time.Time) ([]T, int) {
	kept := entries[:0]
	for _, e := range entries {
		if ts(e).Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	var zero T
	for i := len(kept); i < len(entries); i++ {
		entries[i] = zero
	}
	return kept, removed
}

func (r *Recorder) ScrapeOutcomes() []domain.ScrapeOutcome {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.ScrapeOutcome(nil), r.scrapes...)
}

func (r *Recorder) CycleOutcomes() []domain.CycleOutcome {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.CycleOutcome(nil), r.cycles...)
}

func (r *Recorder) HealthSnapshots() []domain.HealthSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.HealthSnapshot(nil), r.health...)
}

func (r *Recorder) CleanupOutcomes() []domain.CleanupOutcome {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.CleanupOutcome(nil), r.cleanups...)
}

// LatestHealth returns the most recently recorded snapshot, if any.
func (r *Recorder) LatestHealth() (domain.HealthSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.health) == 0 {
		return domain.HealthSnapshot{}, false
	}
	return r.health[len(r.health)-1], true
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
