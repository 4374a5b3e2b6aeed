package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"listing_jobs/internal/domain"
)

// ExternalScraper fetches, parses and persists one page of a source.
type ExternalScraper interface {
	RunExternalScrape(ctx context.Context, req domain.ScrapeRequest) (*domain.ScrapeResult, error)
}

// HealthInspector reports record staleness for the scraped data set.
type HealthInspector interface {
	ScraperHealth(ctx context.Context) (*domain.HealthSignal, error)
}

// RecordPurger removes records older than their source's TTL. With dryRun set
// it only counts them.
type RecordPurger interface {
	CleanupExpiredRecords(ctx context.Context, dryRun bool) (*domain.CleanupResult, error)
}

// EventPublisher announces finished ticks to downstream consumers.
type EventPublisher interface {
	PublishCycle(ctx context.Context, outcome domain.CycleOutcome) error
	PublishCleanup(ctx context.Context, outcome domain.CleanupOutcome) error
	PublishHealth(ctx context.Context, snapshot domain.HealthSnapshot) error
	Close() error
}
