package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"listing_jobs/internal/config"
	"listing_jobs/internal/domain"
	"listing_jobs/internal/service/mocks"
)

var healthCfg = config.HealthConfig{
	Timeout:         time.Second,
	MaxRecentErrors: 5,
	MaxRecordAge:    48 * time.Hour,
}

func TestHealthMonitor_Classify(t *testing.T) {
	m := NewHealthMonitor(nil, healthCfg, testLogger())

	cases := []struct {
		name   string
		signal domain.HealthSignal
		want   domain.HealthStatus
	}{
		{"fresh", domain.HealthSignal{ExternalRecordCount: 100, OldestRecordAge: time.Hour, RecentErrorCount: 0}, domain.HealthHealthy},
		{"errors at threshold", domain.HealthSignal{RecentErrorCount: 5}, domain.HealthHealthy},
		{"errors over threshold", domain.HealthSignal{RecentErrorCount: 6}, domain.HealthUnhealthy},
		{"age at threshold", domain.HealthSignal{OldestRecordAge: 48 * time.Hour}, domain.HealthHealthy},
		{"stale records", domain.HealthSignal{OldestRecordAge: 49 * time.Hour}, domain.HealthUnhealthy},
		{"self reported unhealthy", domain.HealthSignal{Status: domain.HealthUnhealthy}, domain.HealthUnhealthy},
		{"self reported degraded", domain.HealthSignal{Status: domain.HealthDegraded}, domain.HealthHealthy},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.Classify(tc.signal))
		})
	}
}

func TestHealthMonitor_Check(t *testing.T) {
	ctrl := gomock.NewController(t)
	inspector := mocks.NewMockHealthInspector(ctrl)
	clock := newFakeClock()
	m := NewHealthMonitor(inspector, healthCfg, testLogger())
	m.now = clock.Now

	inspector.EXPECT().ScraperHealth(gomock.Any()).Return(&domain.HealthSignal{
		Status:              domain.HealthHealthy,
		ExternalRecordCount: 1500,
		OldestRecordAge:     3 * time.Hour,
		RecentErrorCount:    1,
	}, nil)

	snap := m.Check(context.Background())

	assert.Equal(t, domain.HealthHealthy, snap.Status)
	assert.Equal(t, int64(1500), snap.ExternalRecordCount)
	assert.Equal(t, 3*time.Hour, snap.OldestRecordAge)
	assert.Equal(t, 1, snap.RecentErrorCount)
	assert.Empty(t, snap.Error)
	assert.Equal(t, clock.Now(), snap.Timestamp)
}

func TestHealthMonitor_CheckNeverFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	inspector := mocks.NewMockHealthInspector(ctrl)
	m := NewHealthMonitor(inspector, healthCfg, testLogger())

	inspector.EXPECT().ScraperHealth(gomock.Any()).Return(nil, errors.New("connection refused"))
	snap := m.Check(context.Background())
	assert.Equal(t, domain.HealthUnhealthy, snap.Status)
	assert.Equal(t, "connection refused", snap.Error)

	inspector.EXPECT().ScraperHealth(gomock.Any()).Return(nil, nil)
	snap = m.Check(context.Background())
	assert.Equal(t, domain.HealthUnhealthy, snap.Status)
	assert.NotEmpty(t, snap.Error)

	inspector.EXPECT().ScraperHealth(gomock.Any()).DoAndReturn(
		func(context.Context) (*domain.HealthSignal, error) { panic("nil map") },
	)
	require.NotPanics(t, func() { snap = m.Check(context.Background()) })
	assert.Equal(t, domain.HealthUnhealthy, snap.Status)
	assert.Contains(t, snap.Error, "nil map")
}

func TestHealthMonitor_CheckAppliesTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	inspector := mocks.NewMockHealthInspector(ctrl)
	m := NewHealthMonitor(inspector, healthCfg, testLogger())

	inspector.EXPECT().ScraperHealth(gomock.Any()).DoAndReturn(
		func(ctx context.Context) (*domain.HealthSignal, error) {
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
			return &domain.HealthSignal{}, nil
		},
	)

	assert.Equal(t, domain.HealthHealthy, m.Check(context.Background()).Status)
}
