package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/pauljones0/listing-watch-bot/internal/util"
)

const maxBodyBytes = 10 << 20

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetchOptions controls retry behaviour for both fetcher implementations.
type FetchOptions struct {
	MaxRetries int
	MaxElapsed time.Duration

	// Sleep and Now are overridden in tests.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

// DefaultFetchOptions returns 3 retries under a 10 second ceiling.
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{MaxRetries: 3, MaxElapsed: 10 * time.Second}
}

func (o FetchOptions) backoff() util.Backoff {
	return util.Backoff{
		MaxRetries: o.MaxRetries,
		MaxElapsed: o.MaxElapsed,
		Sleep:      o.Sleep,
		Now:        o.Now,
	}
}

// Fetcher downloads listing pages over plain HTTP.
type Fetcher struct {
	client HTTPClient
	opts   FetchOptions
}

// NewFetcher creates a Fetcher. A nil client gets a default *http.Client.
func NewFetcher(client HTTPClient, opts FetchOptions) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client, opts: opts}
}

// Fetch returns the page body as text, or a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	return fetchWithRetry(ctx, f.opts, pageURL, f.fetchOnce)
}

func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for URL %s: %w", pageURL, err)
	}
	setBrowserHeaders(req)

	res, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL %s: %w", pageURL, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("failed to fetch URL %s: status code %d", pageURL, res.StatusCode)
	}

	body, err := charset.NewReader(io.LimitReader(res.Body, maxBodyBytes), res.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("failed to decode body of %s: %w", pageURL, err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read body of %s: %w", pageURL, err)
	}
	return string(data), nil
}

// fetchWithRetry runs fetchOnce under the retry policy, bounding each attempt
// by what is left of the elapsed ceiling, and converts terminal failures into
// *FetchError.
func fetchWithRetry(ctx context.Context, opts FetchOptions, pageURL string, fetchOnce func(context.Context, string) (string, error)) (string, error) {
	if !util.IsHTTPURL(pageURL) {
		return "", &FetchError{URL: pageURL, Err: ErrInvalidURL}
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	start := now()

	var body string
	attempts := 0
	err := util.RetryWithBackoff(ctx, opts.backoff(), func(attempt int) error {
		attempts = attempt + 1

		attemptCtx := ctx
		if opts.MaxElapsed > 0 {
			// Only the time left under the ceiling, not a fresh MaxElapsed.
			remaining := max(opts.MaxElapsed-now().Sub(start), 0)
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, remaining)
			defer cancel()
		}

		b, err := fetchOnce(attemptCtx, pageURL)
		if err != nil {
			slog.Warn("Fetch attempt failed", "url", pageURL, "attempt", attempts, "error", err)
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return "", &FetchError{URL: pageURL, Attempts: attempts, Err: err}
	}
	return body, nil
}
