//go:build integration

package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"listing_jobs/internal/config"
	"listing_jobs/internal/domain"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_listings.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM listings")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM scrape_errors")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) insertListing(source, externalID string, scrapedAt time.Time) {
	_, err := s.db.ExecContext(s.ctx,
		`INSERT INTO listings (source, external_id, url, title, scraped_at) VALUES ($1, $2, $3, $4, $5)`,
		source, externalID, "https://"+source+".example/"+externalID, "Flat "+externalID, scrapedAt,
	)
	s.Require().NoError(err)
}

func (s *PostgresIntegrationSuite) countListings(source string) int {
	var n int
	s.Require().NoError(s.db.GetContext(s.ctx, &n, "SELECT COUNT(*) FROM listings WHERE source = $1", source))
	return n
}

func (s *PostgresIntegrationSuite) newStore() *ListingStore {
	return NewListingStore(s.db, []config.SourceConfig{
		{Name: "fotocasa", TTLDays: 30},
		{Name: "idealista", TTLDays: 7},
	})
}

func (s *PostgresIntegrationSuite) TestScraperHealth() {
	now := time.Now()
	s.insertListing("fotocasa", "1", now.Add(-48*time.Hour))
	s.insertListing("fotocasa", "2", now.Add(-time.Hour))
	_, err := s.db.ExecContext(s.ctx, `INSERT INTO scrape_errors (source, message) VALUES ('fotocasa', 'http 503')`)
	s.Require().NoError(err)
	_, err = s.db.ExecContext(s.ctx,
		`INSERT INTO scrape_errors (source, message, occurred_at) VALUES ('fotocasa', 'old', $1)`,
		now.Add(-3*time.Hour),
	)
	s.Require().NoError(err)

	signal, err := s.newStore().ScraperHealth(s.ctx)

	s.Require().NoError(err)
	s.Equal(domain.HealthHealthy, signal.Status)
	s.Equal(int64(2), signal.ExternalRecordCount)
	s.Equal(1, signal.RecentErrorCount)
	s.InDelta(float64(48*time.Hour), float64(signal.OldestRecordAge), float64(time.Minute))
}

func (s *PostgresIntegrationSuite) TestCleanup_DryRunDoesNotDelete() {
	now := time.Now()
	s.insertListing("fotocasa", "old", now.AddDate(0, 0, -31))
	s.insertListing("fotocasa", "new", now.AddDate(0, 0, -1))
	s.insertListing("idealista", "old", now.AddDate(0, 0, -8))

	res, err := s.newStore().CleanupExpiredRecords(s.ctx, true)

	s.Require().NoError(err)
	s.Equal(2, res.Deleted)
	s.Empty(res.Errors)
	s.Equal(2, s.countListings("fotocasa"))
	s.Equal(1, s.countListings("idealista"))
}

func (s *PostgresIntegrationSuite) TestCleanup_DeletesExpiredPerSourceTTL() {
	now := time.Now()
	s.insertListing("fotocasa", "old", now.AddDate(0, 0, -31))
	s.insertListing("fotocasa", "week", now.AddDate(0, 0, -8))
	s.insertListing("idealista", "week", now.AddDate(0, 0, -8))
	s.insertListing("idealista", "new", now.AddDate(0, 0, -1))

	res, err := s.newStore().CleanupExpiredRecords(s.ctx, false)

	s.Require().NoError(err)
	s.Equal(2, res.Deleted)
	s.Equal(1, s.countListings("fotocasa"))
	s.Equal(1, s.countListings("idealista"))
}

func (s *PostgresIntegrationSuite) TestTransactionManager_RollbackOnError() {
	tm := NewTransactionManager(s.db)
	s.insertListing("fotocasa", "1", time.Now())

	err := tm.WithTransaction(s.ctx, func(txCtx context.Context) error {
		_, err := GetExecutor(txCtx, s.db).ExecContext(txCtx, "DELETE FROM listings")
		s.Require().NoError(err)
		return context.Canceled
	})

	s.ErrorIs(err, context.Canceled)
	s.Equal(1, s.countListings("fotocasa"))
}
