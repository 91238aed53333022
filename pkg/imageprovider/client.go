package imageprovider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultURL is the placeholder image endpoint used when none is configured.
const DefaultURL = "https://picsum.photos/400/300"

// Config holds image provider settings.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Error reports a failed image fetch. StatusCode is zero when the provider
// could not be reached at all.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("image provider %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("image provider %s unreachable: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client fetches placeholder image URLs. Each call makes exactly one request;
// there is no retry and no fallback image.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a Client with a traced HTTP transport.
func NewClient(cfg Config) *Client {
	url := cfg.URL
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// FetchImageURL requests the configured endpoint, follows redirects, and
// returns the final resolved URL.
func (c *Client) FetchImageURL(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", &Error{URL: c.url, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{URL: c.url, Err: err}
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused; the image bytes are not needed.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{URL: c.url, StatusCode: resp.StatusCode}
	}

	return resp.Request.URL.String(), nil
}
