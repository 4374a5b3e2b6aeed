package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"listing_jobs/internal/config"
	"listing_jobs/internal/domain"
)

// HealthMonitor classifies scraper health from the inspector's signal.
//
// The result is unhealthy when the inspector fails, reports itself unhealthy,
// reports more than MaxRecentErrors recent errors, or reports an oldest record
// older than MaxRecordAge. Everything else is healthy; degraded is never
// produced.
type HealthMonitor struct {
	inspector HealthInspector
	cfg       config.HealthConfig
	logger    *slog.Logger
	now       func() time.Time
}

func NewHealthMonitor(inspector HealthInspector, cfg config.HealthConfig, logger *slog.Logger) *HealthMonitor {
	return &HealthMonitor{
		inspector: inspector,
		cfg:       cfg,
		logger:    logger.With("component", "health_monitor"),
		now:       time.Now,
	}
}

// Check never returns an error. When the inspector fails the snapshot is
// unhealthy and carries the error message.
func (m *HealthMonitor) Check(ctx context.Context) (snap domain.HealthSnapshot) {
	defer func() {
		if p := recover(); p != nil {
			m.logger.Error("health inspector panicked", "panic", p)
			snap = m.unhealthy(fmt.Errorf("health inspector panic: %v", p))
		}
	}()

	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	signal, err := m.inspector.ScraperHealth(ctx)
	if err != nil {
		m.logger.Error("health inspection failed", "error", err)
		return m.unhealthy(err)
	}
	if signal == nil {
		return m.unhealthy(fmt.Errorf("health inspector returned no signal"))
	}

	snap = domain.HealthSnapshot{
		Status:              m.Classify(*signal),
		ExternalRecordCount: signal.ExternalRecordCount,
		OldestRecordAge:     signal.OldestRecordAge,
		RecentErrorCount:    signal.RecentErrorCount,
		Timestamp:           m.now(),
	}

	m.logger.Debug("health classified",
		"status", snap.Status,
		"records", snap.ExternalRecordCount,
		"oldest_record_age", snap.OldestRecordAge,
		"recent_errors", snap.RecentErrorCount,
	)
	return snap
}

// Classify applies the health policy to a signal.
func (m *HealthMonitor) Classify(signal domain.HealthSignal) domain.HealthStatus {
	switch {
	case signal.Status == domain.HealthUnhealthy:
		return domain.HealthUnhealthy
	case signal.RecentErrorCount > m.cfg.MaxRecentErrors:
		return domain.HealthUnhealthy
	case m.cfg.MaxRecordAge > 0 && signal.OldestRecordAge > m.cfg.MaxRecordAge:
		return domain.HealthUnhealthy
	default:
		return domain.HealthHealthy
	}
}

func (m *HealthMonitor) unhealthy(err error) domain.HealthSnapshot {
	return domain.HealthSnapshot{
		Status:    domain.HealthUnhealthy,
		Error:     err.Error(),
		Timestamp: m.now(),
	}
}
