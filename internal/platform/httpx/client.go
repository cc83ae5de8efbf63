// Package httpx provides the shared outbound HTTP client used by every
// source fetcher: per-host rate limiting plus bounded exponential-backoff
// retries on transient failures.
package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/mercuryhq/mercuryd/internal/domain"
)

const userAgent = "Mozilla/5.0 Mercury/1.0"

// Client wraps http.Client with rate limiting and retries.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	maxElapsed time.Duration
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	Timeout        time.Duration // per-attempt timeout (default 10s)
	RequestsPerSec int           // sustained request rate (default 5)
	MaxRetryTime   time.Duration // total retry budget (default 15s)
}

// New creates a rate-limited retrying client.
func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.MaxRetryTime == 0 {
		opts.MaxRetryTime = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.RequestsPerSec),
		maxElapsed: opts.MaxRetryTime,
	}
}

// GetJSON performs a GET against url and returns the response body. Non-2xx
// statuses and transport errors are retried with exponential backoff until
// the retry budget or ctx expires. 4xx statuses are not retried.
func (c *Client) GetJSON(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, url, "application/json")
}

// GetXML is GetJSON with an XML accept header, for RSS feeds.
func (c *Client) GetXML(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, url, "application/xml")
}

func (c *Client) get(ctx context.Context, url, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("httpx: rate limit wait: %w", err)
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", accept)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(&StatusError{StatusCode: resp.StatusCode})
		}
		if resp.StatusCode != http.StatusOK {
			return &StatusError{StatusCode: resp.StatusCode}
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = c.maxElapsed
	if err := backoff.Retry(operation, backoff.WithContext(strategy, ctx)); err != nil {
		return nil, fmt.Errorf("httpx: get %s: %w", url, err)
	}
	return body, nil
}

// StatusError reports a non-200 HTTP status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap maps the status code to a domain sentinel so callers can use
// errors.Is(err, domain.ErrRateLimited) and friends.
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case e.StatusCode >= 500:
		return domain.ErrUnavailable
	}
	return nil
}
