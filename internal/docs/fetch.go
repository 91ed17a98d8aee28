package docs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pankaj-dahiya-devops/shcx/internal/logger"
)

// Fetcher retrieves the raw bytes of a documentation page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Crawl defaults. NewHTTPFetcher applies the timeout and backoff to
// zero-valued options; DefaultMaxRetries is the configured default.
const (
	DefaultRequestTimeout = 20 * time.Second
	DefaultMaxRetries     = 3
	DefaultBackoffBase    = 500 * time.Millisecond

	maxPageBytes = 16 << 20
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// FetcherOptions configures an HTTPFetcher.
type FetcherOptions struct {
	// Client is the shared connection pool. nil means a new http.Client.
	Client *http.Client

	// Timeout bounds each attempt, including reading the body.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	// Zero or negative disables retries.
	MaxRetries int

	// BackoffBase is the wait before the first retry; it doubles per retry.
	BackoffBase time.Duration

	UserAgent string

	// Limiter paces requests against the documentation host. Every attempt,
	// retries included, takes one token. nil disables pacing.
	Limiter *rate.Limiter
}

// NewLimiter returns a token bucket allowing rps requests per second with
// the given burst, or nil when rps is not positive.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// HTTPFetcher fetches pages over HTTP with a per-attempt timeout and retries
// with exponential backoff on transport errors, 429, and 5xx responses.
// With a limiter set, each attempt waits for a token before it is sent.
type HTTPFetcher struct {
	client     *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	userAgent  string
	limiter    *rate.Limiter
}

// NewHTTPFetcher returns an HTTPFetcher, filling unset options with defaults.
func NewHTTPFetcher(opts FetcherOptions) *HTTPFetcher {
	f := &HTTPFetcher{
		client:     opts.Client,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		backoff:    opts.BackoffBase,
		userAgent:  opts.UserAgent,
		limiter:    opts.Limiter,
	}
	if f.client == nil {
		f.client = &http.Client{}
	}
	if f.timeout <= 0 {
		f.timeout = DefaultRequestTimeout
	}
	if f.maxRetries < 0 {
		f.maxRetries = 0
	}
	if f.backoff <= 0 {
		f.backoff = DefaultBackoffBase
	}
	return f
}

// Fetch returns the body of url. It gives up early when ctx is done or the
// failure is not retryable.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	log := logger.FromContext(ctx)

	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("wait to fetch %s: %w", url, err)
			}
		}
		body, err := f.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) {
			return nil, err
		}
		if attempt == f.maxRetries {
			break
		}

		wait := f.backoff * (1 << uint(attempt))
		log.Debugw("retrying page fetch",
			"url", url,
			"attempt", attempt+1,
			"max_retries", f.maxRetries,
			"backoff", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("giving up after %d attempts: %w", f.maxRetries+1, lastErr)
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &permanentError{err: fmt.Errorf("build request for %s: %w", url, err)}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}

// permanentError marks failures that retrying cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return status.Temporary()
	}
	return true
}
