// Package fetch retrieves and parses remote RSS/Atom feeds.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"newsdesk/internal/feeds"
)

const (
	userAgent       = "Mozilla/5.0 (compatible; newsdesk/1.0)"
	maxPayloadBytes = 10 << 20 // feeds larger than this are cut off
)

// FetchError reports a failed feed retrieval for one source. It never
// aborts sibling sources; callers log it and treat the source as empty.
type FetchError struct {
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s (%s): status %d", e.Source, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s (%s): %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client fetches raw feed payloads over HTTP. It performs no retries;
// retry policy belongs to callers.
type Client struct {
	http *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

// Fetch retrieves the payload for one source. The context bounds the
// request in addition to the client timeout.
func (c *Client) Fetch(ctx context.Context, src feeds.Source) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, &FetchError{Source: src.Name, URL: src.URL, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Source: src.Name, URL: src.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Source: src.Name, URL: src.URL, StatusCode: resp.StatusCode}
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, &FetchError{Source: src.Name, URL: src.URL, Err: err}
	}
	return payload, nil
}
