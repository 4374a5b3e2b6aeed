package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"listing_jobs/internal/config"
	"listing_jobs/internal/domain"
)

// DefaultErrorWindow is how far back scrape_errors rows count as recent.
const DefaultErrorWindow = time.Hour

// ListingStore inspects and purges the listings written by the scraper worker.
type ListingStore struct {
	db          *sqlx.DB
	tx          *TransactionManager
	sources     []config.SourceConfig
	errorWindow time.Duration
	now         func() time.Time
}

func NewListingStore(db *sqlx.DB, sources []config.SourceConfig) *ListingStore {
	return &ListingStore{
		db:          db,
		tx:          NewTransactionManager(db),
		sources:     sources,
		errorWindow: DefaultErrorWindow,
		now:         time.Now,
	}
}

type listingStats struct {
	Count  int64        `db:"count"`
	Oldest sql.NullTime `db:"oldest"`
}

// ScraperHealth reports how many listings are stored, the age of the oldest
// one and how many scrape errors were logged within the error window.
func (s *ListingStore) ScraperHealth(ctx context.Context) (*domain.HealthSignal, error) {
	now := s.now()

	var stats listingStats
	if err := s.db.GetContext(ctx, &stats, `SELECT COUNT(*) AS count, MIN(scraped_at) AS oldest FROM listings`); err != nil {
		return nil, fmt.Errorf("query listing stats: %w", err)
	}

	var recentErrors int
	if err := s.db.GetContext(ctx, &recentErrors,
		`SELECT COUNT(*) FROM scrape_errors WHERE occurred_at > $1`,
		now.Add(-s.errorWindow),
	); err != nil {
		return nil, fmt.Errorf("count scrape errors: %w", err)
	}

	signal := &domain.HealthSignal{
		Status:              domain.HealthHealthy,
		ExternalRecordCount: stats.Count,
		RecentErrorCount:    recentErrors,
	}
	if stats.Oldest.Valid {
		signal.OldestRecordAge = now.Sub(stats.Oldest.Time)
	}
	return signal, nil
}

// CleanupExpiredRecords counts (dryRun) or deletes the listings of every
// configured source whose scraped_at is older than the source TTL. Deletion
// runs in one transaction and is rolled back entirely if any source fails.
func (s *ListingStore) CleanupExpiredRecords(ctx context.Context, dryRun bool) (*domain.CleanupResult, error) {
	if dryRun {
		return s.countExpired(ctx), nil
	}

	result := &domain.CleanupResult{}
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := GetExecutor(txCtx, s.db)
		for _, src := range s.sources {
			res, err := exec.ExecContext(txCtx,
				`DELETE FROM listings WHERE source = $1 AND scraped_at < $2`,
				src.Name, s.cutoff(src),
			)
			if err != nil {
				return fmt.Errorf("delete expired listings for %s: %w", src.Name, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected for %s: %w", src.Name, err)
			}
			result.Deleted += int(n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *ListingStore) countExpired(ctx context.Context) *domain.CleanupResult {
	result := &domain.CleanupResult{}
	for _, src := range s.sources {
		var n int
		err := s.db.GetContext(ctx, &n,
			`SELECT COUNT(*) FROM listings WHERE source = $1 AND scraped_at < $2`,
			src.Name, s.cutoff(src),
		)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("count expired listings for %s: %v", src.Name, err))
			continue
		}
		result.Deleted += n
	}
	return result
}

func (s *ListingStore) cutoff(src config.SourceConfig) time.Time {
	return s.now().AddDate(0, 0, -src.TTLDays)
}
