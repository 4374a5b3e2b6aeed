package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
environment: production
log_level: debug
database:
  host: db
  port: 5432
  user: jobs
  password: ${LISTING_JOBS_TEST_PASSWORD}
  dbname: listings
  sslmode: disable
sources:
  - name: fotocasa
    endpoint: https://www.fotocasa.es/alquiler?page={page}
    page_count: 3
    enabled: true
    timeout: 45s
    ttl_days: 14
  - name: idealista
    endpoint: https://www.idealista.com/alquiler
    enabled: false
`

func TestParse_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("LISTING_JOBS_TEST_PASSWORD", "s3cret")

	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Contains(t, cfg.Database.DSN(), "password=s3cret")

	assert.Equal(t, "@every 30m", cfg.Schedule.Scrape)
	assert.Equal(t, "*/5 * * * *", cfg.Schedule.Health)
	assert.Equal(t, "0 3 * * *", cfg.Schedule.Cleanup)
	assert.Equal(t, "UTC", cfg.Schedule.Timezone)

	require.Len(t, cfg.Sources, 2)
	fotocasa := cfg.Sources[0]
	assert.Equal(t, 3, fotocasa.PageCount)
	assert.Equal(t, 45*time.Second, fotocasa.Timeout)
	assert.Equal(t, 14, fotocasa.TTLDays)
	assert.Equal(t, 3, fotocasa.MaxRetries)

	idealista := cfg.Sources[1]
	assert.False(t, idealista.Enabled)
	assert.Equal(t, 1, idealista.PageCount)
	assert.Equal(t, 30, idealista.TTLDays)
}

func TestParse_DevelopmentScrapeCadence(t *testing.T) {
	cfg, err := Parse([]byte("log_level: info\n"))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "@every 30s", cfg.Schedule.Scrape)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestParse_InvalidSources(t *testing.T) {
	data := `
sources:
  - name: a
    endpoint: https://a.example
    page_count: -1
  - name: a
    endpoint: ""
`
	_, err := Parse([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page_count must be >= 1")
	assert.Contains(t, err.Error(), "duplicate name")
	assert.Contains(t, err.Error(), "endpoint is required")
}

func TestParse_InvalidTimezone(t *testing.T) {
	_, err := Parse([]byte("schedule:\n  timezone: Mars/Olympus\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule timezone")
}

func TestParse_InvalidCadence(t *testing.T) {
	_, err := Parse([]byte("schedule:\n  health: \"every five minutes\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule health")
}

func TestValidateSources_Valid(t *testing.T) {
	err := ValidateSources([]SourceConfig{
		{Name: "fotocasa", EndpointTemplate: "https://x", PageCount: 1, Timeout: time.Second, TTLDays: 1},
	})
	assert.NoError(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}
