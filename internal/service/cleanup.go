package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"listing_jobs/internal/domain"
)

var ErrDryRunFailed = errors.New("dry run failed")

// CleanupReport describes one two-phase cleanup.
type CleanupReport struct {
	WouldDelete int
	Deleted     int
	Executed    bool
	Errors      []string
}

// CleanupCoordinator guarantees that the destructive purge only runs after a
// successful, non-empty dry run.
type CleanupCoordinator struct {
	purger  RecordPurger
	timeout time.Duration
	logger  *slog.Logger
}

func NewCleanupCoordinator(purger RecordPurger, timeout time.Duration, logger *slog.Logger) *CleanupCoordinator {
	return &CleanupCoordinator{
		purger:  purger,
		timeout: timeout,
		logger:  logger.With("component", "cleanup_coordinator"),
	}
}

// Cleanup performs a single purge call.
func (c *CleanupCoordinator) Cleanup(ctx context.Context, dryRun bool) (*domain.CleanupResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	res, err := c.purger.CleanupExpiredRecords(ctx, dryRun)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &domain.CleanupResult{}
	}
	return res, nil
}

// Run dry-runs the purge and, only if that succeeded with a nonzero count,
// performs the real purge.
func (c *CleanupCoordinator) Run(ctx context.Context) (CleanupReport, error) {
	var report CleanupReport

	preview, err := c.Cleanup(ctx, true)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrDryRunFailed, err)
	}
	report.WouldDelete = preview.Deleted
	if len(preview.Errors) > 0 {
		report.Errors = preview.Errors
		return report, fmt.Errorf("%w: %s", ErrDryRunFailed, strings.Join(preview.Errors, "; "))
	}

	c.logger.Info("cleanup dry run completed", "would_delete", preview.Deleted)
	if preview.Deleted == 0 {
		return report, nil
	}

	res, err := c.Cleanup(ctx, false)
	report.Executed = true
	if err != nil {
		return report, fmt.Errorf("cleanup: %w", err)
	}
	report.Deleted = res.Deleted
	report.Errors = res.Errors
	if len(res.Errors) > 0 {
		return report, fmt.Errorf("cleanup: %s", strings.Join(res.Errors, "; "))
	}

	c.logger.Info("cleanup completed", "deleted", res.Deleted)
	return report, nil
}
