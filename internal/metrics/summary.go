package metrics

import (
	"fmt"
	"sort"
	"time"

	"listing_jobs/internal/domain"
)

const (
	ScrapeWindow  = time.Hour
	CycleWindow   = time.Hour
	CleanupWindow = 24 * time.Hour
)

// WindowStats aggregates the attempts that fall inside one summary window.
type WindowStats struct {
	Window        string `json:"window"`
	Attempts      int    `json:"attempts"`
	Successes     int    `json:"successes"`
	Failures      int    `json:"failures"`
	SuccessRate   string `json:"success_rate"`
	AvgDurationMs int64  `json:"avg_duration_ms"`
}

type SourceStats struct {
	Source string `json:"source"`
	WindowStats
}

type CleanupStats struct {
	WindowStats
	TotalDeleted int `json:"total_deleted"`
}

type Summary struct {
	GeneratedAt  time.Time              `json:"generated_at"`
	Scrapes      WindowStats            `json:"scrapes"`
	Sources      []SourceStats          `json:"sources"`
	Cycles       WindowStats            `json:"cycles"`
	Cleanups     CleanupStats           `json:"cleanups"`
	LatestHealth *domain.HealthSnapshot `json:"latest_health,omitempty"`
}

// Summary computes windowed statistics over the current ledger contents.
func (r *Recorder) Summary() Summary {
	now := r.now()

	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Summary{GeneratedAt: now}

	scrapeCutoff := now.Add(-ScrapeWindow)
	all := accumulator{}
	perSource := make(map[string]*accumulator)
	for _, o := range r.scrapes {
		if o.Timestamp.Before(scrapeCutoff) {
			continue
		}
		all.add(o.Success, o.Duration)
		acc, ok := perSource[o.Source]
		if !ok {
			acc = &accumulator{}
			perSource[o.Source] = acc
		}
		acc.add(o.Success, o.Duration)
	}
	s.Scrapes = all.stats(ScrapeWindow)

	s.Sources = make([]SourceStats, 0, len(perSource))
	for name, acc := range perSource {
		s.Sources = append(s.Sources, SourceStats{Source: name, WindowStats: acc.stats(ScrapeWindow)})
	}
	sort.Slice(s.Sources, func(i, j int) bool { return s.Sources[i].Source < s.Sources[j].Source })

	cycleCutoff := now.Add(-CycleWindow)
	cycles := accumulator{}
	for _, o := range r.cycles {
		if o.Timestamp.Before(cycleCutoff) {
			continue
		}
		cycles.add(o.Success, o.Duration)
	}
	s.Cycles = cycles.stats(CycleWindow)

	cleanupCutoff := now.Add(-CleanupWindow)
	cleanups := accumulator{}
	deleted := 0
	for _, o := range r.cleanups {
		if o.Timestamp.Before(cleanupCutoff) {
			continue
		}
		cleanups.add(o.Success, o.Duration)
		deleted += o.Deleted
	}
	s.Cleanups = CleanupStats{WindowStats: cleanups.stats(CleanupWindow), TotalDeleted: deleted}

	if len(r.health) > 0 {
		latest := r.health[len(r.health)-1]
		s.LatestHealth = &latest
	}

	return s
}

type accumulator struct {
	attempts  int
	successes int
	total     time.Duration
}

func (a *accumulator) add(success bool, d time.Duration) {
	a.attempts++
	if success {
		a.successes++
	}
	a.total += d
}

func (a accumulator) stats(window time.Duration) WindowStats {
	ws := WindowStats{
		Window:      window.String(),
		Attempts:    a.attempts,
		Successes:   a.successes,
		Failures:    a.attempts - a.successes,
		SuccessRate: SuccessRate(a.successes, a.attempts),
	}
	if a.attempts > 0 {
		ws.AvgDurationMs = (a.total / time.Duration(a.attempts)).Milliseconds()
	}
	return ws
}

// SuccessRate formats successes/attempts as a percentage with one decimal.
// Zero attempts yield "0%".
func SuccessRate(successes, attempts int) string {
	if attempts == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(successes)/float64(attempts)*100)
}
