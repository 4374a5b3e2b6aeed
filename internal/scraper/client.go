// Package scraper talks to the worker that performs the site-specific
// scraping and persistence of listings.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"listing_jobs/internal/domain"
)

const scrapePath = "/api/v1/scrape"

type Config struct {
	BaseURL        string
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Client implements the external scraper call over HTTP.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient:     &http.Client{},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("component", "scraper_client"),
	}
}

type scrapeRequest struct {
	Source    string `json:"source"`
	URL       string `json:"url"`
	Page      int    `json:"page"`
	PageCount int    `json:"page_count"`
	BatchSize int    `json:"batch_size"`
}

// statusError is returned for non-2xx responses.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("unexpected status: %d", e.code)
	}
	return fmt.Sprintf("unexpected status: %d: %s", e.code, e.body)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= http.StatusInternalServerError
}

// RunExternalScrape asks the worker to scrape one page, retrying transport
// failures and 5xx/429 responses up to req.MaxRetries times. Bounding the
// whole call is left to ctx.
func (c *Client) RunExternalScrape(ctx context.Context, req domain.ScrapeRequest) (*domain.ScrapeResult, error) {
	body, err := json.Marshal(scrapeRequest{
		Source:    req.Source,
		URL:       req.URL,
		Page:      req.Page,
		PageCount: req.PageCount,
		BatchSize: req.BatchSize,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	attempts := req.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var result *domain.ScrapeResult
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err = c.doRequest(ctx, body)
		if err == nil {
			return result, nil
		}

		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			return nil, err
		}
		if attempt == attempts {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("scrape request failed, retrying",
			"source", req.Source,
			"page", req.Page,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", attempts, err)
}

func (c *Client) doRequest(ctx context.Context, body []byte) (*domain.ScrapeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+scrapePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ListingJobs/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(msg))}
	}

	var result domain.ScrapeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}
