package domain

import "time"

type HealthStatus string

const (
	HealthHealthy HealthStatus = "healthy"
	// HealthDegraded is reserved; no classification rule produces it.
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// HealthSignal is what the record-staleness inspector reports.
type HealthSignal struct {
	Status              HealthStatus
	ExternalRecordCount int64
	OldestRecordAge     time.Duration
	RecentErrorCount    int
}

type HealthSnapshot struct {
	Status              HealthStatus  `json:"status"`
	ExternalRecordCount int64         `json:"external_record_count"`
	OldestRecordAge     time.Duration `json:"oldest_record_age"`
	RecentErrorCount    int           `json:"recent_error_count"`
	Error               string        `json:"error,omitempty"`
	Timestamp           time.Time     `json:"timestamp"`
}
