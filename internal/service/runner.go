package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"listing_jobs/internal/config"
	"listing_jobs/internal/domain"
)

// PageDelay separates consecutive page requests of one source.
const PageDelay = 1000 * time.Millisecond

const pagePlaceholder = "{page}"

// ScrapeRecorder is the part of the metrics ledger the runner writes to.
type ScrapeRecorder interface {
	RecordScrapeSuccess(source string, d time.Duration)
	RecordScrapeError(source string, d time.Duration, err error)
}

// SourceScrapeRunner drives a single source through its pages.
type SourceScrapeRunner struct {
	scraper  ExternalScraper
	recorder ScrapeRecorder
	logger   *slog.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

type RunnerOption func(*SourceScrapeRunner)

func WithRunnerClock(now func() time.Time) RunnerOption {
	return func(r *SourceScrapeRunner) { r.now = now }
}

// WithSleeper replaces the inter-page wait.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) RunnerOption {
	return func(r *SourceScrapeRunner) { r.sleep = sleep }
}

func NewSourceScrapeRunner(scraper ExternalScraper, recorder ScrapeRecorder, logger *slog.Logger, opts ...RunnerOption) *SourceScrapeRunner {
	r := &SourceScrapeRunner{
		scraper:  scraper,
		recorder: recorder,
		logger:   logger.With("component", "scrape_runner"),
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scrape runs every page of src and records one outcome. Disabled sources are
// ignored entirely. A failure is recorded and then returned.
func (r *SourceScrapeRunner) Scrape(ctx context.Context, src config.SourceConfig) (*domain.ScrapeResult, error) {
	if !src.Enabled {
		r.logger.Debug("source disabled, skipping", "source", src.Name)
		return nil, nil
	}

	logger := r.logger.With("source", src.Name)
	start := r.now()

	var (
		result *domain.ScrapeResult
		err    error
	)
	if src.PageCount > 1 {
		result, err = r.scrapePages(ctx, src, logger)
	} else {
		result, err = r.call(ctx, src, 1)
	}

	duration := r.now().Sub(start)
	if err != nil {
		r.recorder.RecordScrapeError(src.Name, duration, err)
		logger.Error("scrape failed", "duration", duration, "error", err)
		return nil, fmt.Errorf("scrape %s: %w", src.Name, err)
	}

	r.recorder.RecordScrapeSuccess(src.Name, duration)
	logger.Info("scrape completed",
		"pages", src.PageCount,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", result.Errors,
		"total_processed", result.TotalProcessed,
		"duration", duration,
	)

	return result, nil
}

func (r *SourceScrapeRunner) scrapePages(ctx context.Context, src config.SourceConfig, logger *slog.Logger) (*domain.ScrapeResult, error) {
	total := &domain.ScrapeResult{}

	for page := 1; page <= src.PageCount; page++ {
		res, err := r.call(ctx, src, page)
		if err != nil {
			logger.Warn("page failed", "page", page, "error", err)
			return nil, err
		}
		total.Add(res)

		logger.Debug("scraped page",
			"page", page,
			"processed", res.TotalProcessed,
			"total_processed", total.TotalProcessed,
		)

		if page < src.PageCount {
			if err := r.sleep(ctx, PageDelay); err != nil {
				return nil, fmt.Errorf("wait before page %d: %w", page+1, err)
			}
		}
	}

	return total, nil
}

// call issues one request bounded by the source timeout. The bound holds even
// when the scraper ignores context cancellation.
func (r *SourceScrapeRunner) call(ctx context.Context, src config.SourceConfig, page int) (*domain.ScrapeResult, error) {
	req := domain.ScrapeRequest{
		Source:     src.Name,
		URL:        ResolveEndpoint(src.EndpointTemplate, page, src.PageCount),
		Page:       page,
		PageCount:  src.PageCount,
		Timeout:    src.Timeout,
		MaxRetries: src.MaxRetries,
		BatchSize:  src.BatchSize,
	}

	callCtx := ctx
	if src.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, src.Timeout)
		defer cancel()
	}

	type reply struct {
		res *domain.ScrapeResult
		err error
	}
	done := make(chan reply, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- reply{err: fmt.Errorf("scraper panic: %v", p)}
			}
		}()
		res, err := r.scraper.RunExternalScrape(callCtx, req)
		done <- reply{res: res, err: err}
	}()

	select {
	case rep := <-done:
		if rep.err != nil {
			return nil, rep.err
		}
		if rep.res == nil {
			return &domain.ScrapeResult{}, nil
		}
		return rep.res, nil
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("timeout after %s", src.Timeout)
		}
		return nil, callCtx.Err()
	}
}

// ResolveEndpoint substitutes page into template. Templates without a {page}
// placeholder get a page query parameter when the source spans several pages.
func ResolveEndpoint(template string, page, pageCount int) string {
	p := strconv.Itoa(page)
	if strings.Contains(template, pagePlaceholder) {
		return strings.ReplaceAll(template, pagePlaceholder, p)
	}
	if pageCount <= 1 {
		return template
	}

	u, err := url.Parse(template)
	if err != nil {
		sep := "?"
		if strings.Contains(template, "?") {
			sep = "&"
		}
		return template + sep + "page=" + p
	}
	q := u.Query()
	q.Set("page", p)
	u.RawQuery = q.Encode()
	return u.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
