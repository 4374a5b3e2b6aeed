package domain

import "time"

// ScrapeRequest is a source resolved for a single page request.
type ScrapeRequest struct {
	Source     string
	URL        string
	Page       int
	PageCount  int
	Timeout    time.Duration
	MaxRetries int
	BatchSize  int
}

// ScrapeResult holds the counts reported by the external scraper for one or more pages.
type ScrapeResult struct {
	Created        int           `json:"created"`
	Updated        int           `json:"updated"`
	Skipped        int           `json:"skipped"`
	Errors         int           `json:"errors"`
	TotalProcessed int           `json:"total_processed"`
	Duration       time.Duration `json:"duration"`
	ErrorDetails   []string      `json:"error_details,omitempty"`
}

// Add sums other into r component-wise and appends its error details.
func (r *ScrapeResult) Add(other *ScrapeResult) {
	if other == nil {
		return
	}
	r.Created += other.Created
	r.Updated += other.Updated
	r.Skipped += other.Skipped
	r.Errors += other.Errors
	r.TotalProcessed += other.TotalProcessed
	r.Duration += other.Duration
	r.ErrorDetails = append(r.ErrorDetails, other.ErrorDetails...)
}

// ScrapeOutcome is recorded once per scrape of an enabled source.
type ScrapeOutcome struct {
	Source    string        `json:"source"`
	Success   bool          `json:"success"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// CycleOutcome is recorded once per scrape tick that attempted at least one source.
type CycleOutcome struct {
	CycleID     string        `json:"cycle_id"`
	Duration    time.Duration `json:"duration"`
	Success     bool          `json:"success"`
	SourceCount int           `json:"source_count"`
	Error       string        `json:"error,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}
