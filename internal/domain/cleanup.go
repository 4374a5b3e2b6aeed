package domain

import "time"

// CleanupResult is returned by the expired-record purger. On a dry run Deleted
// is the number of records that would be removed.
type CleanupResult struct {
	Deleted int
	Errors  []string
}

type CleanupOutcome struct {
	Deleted   int           `json:"deleted"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
