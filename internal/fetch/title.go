// Package fetch looks up problem titles from their web pages so a manual add
// can be made from a bare URL.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

const (
	// maxRetries is the number of fetch attempts before giving up.
	maxRetries = 3
	// maxBodySize is the maximum HTTP response body size (5MB).
	maxBodySize = 5 * 1024 * 1024
)

// ErrNoTitle is returned when a page was fetched but carried no usable title.
var ErrNoTitle = errors.New("page has no title")

// TitleFetcher resolves a page URL to a human readable title.
type TitleFetcher interface {
	FetchTitle(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches pages over HTTP and reads their title with go-readability.
type HTTPFetcher struct {
	client  *http.Client
	backoff time.Duration
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		backoff: 2 * time.Second,
	}
}

// statusError is a non-200 response. Client errors are not retried.
type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.code, e.url)
}

func (e *statusError) retryable() bool {
	return e.code >= 500 || e.code == http.StatusTooManyRequests
}

// FetchTitle fetches url and returns its title, retrying transient failures.
func (f *HTTPFetcher) FetchTitle(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * f.backoff
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		title, err := f.fetchOnce(ctx, url)
		if err == nil {
			return title, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var se *statusError
		if errors.Is(err, ErrNoTitle) || (errors.As(err, &se) && !se.retryable()) {
			return "", err
		}
	}
	return "", fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) (string, error) {
	parsedURL, err := nurl.Parse(url)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &statusError{code: resp.StatusCode, url: url}
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxBodySize), parsedURL)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}

	title := cleanTitle(article.Title)
	if title == "" {
		return "", fmt.Errorf("%s: %w", url, ErrNoTitle)
	}
	return title, nil
}

var (
	siteSuffix = regexp.MustCompile(`\s+[-|]\s+LeetCode\s*$`)
	multiSpace = regexp.MustCompile(`\s+`)
)

// cleanTitle collapses whitespace and drops a trailing " - LeetCode".
func cleanTitle(s string) string {
	s = siteSuffix.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
