package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/petscout/backend/internal/domain"
	"golang.org/x/time/rate"
)

// browserHeaders is the fixed header set sent with every request. Target
// sites reject requests with default Go user agents; this is static
// configuration, not evasion logic.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
}

// Response is the outcome of a completed request. Non-2xx statuses other
// than 429/5xx are returned here rather than as errors so callers can
// interpret them (e.g. 404 means "not found", not "fetch failed").
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the response carries a 200 status
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Options configures a Client
type Options struct {
	MaxRetries  int
	Timeout     time.Duration
	RequestsSec float64 // client-side rate limit; 0 disables
	Headers     map[string]string
	Debug       bool
}

// Client issues HTTP GET/POST requests with timeout, retry on transient
// failure and browser-like headers
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	maxRetries int
	limiter    *rate.Limiter
	debug      bool
}

// NewClient creates a resilient HTTP client
func NewClient(opts Options) *Client {
	maxRetries := opts.MaxRetries
	if maxRetries < 1 {
		maxRetries = 3
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if opts.RequestsSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsSec), 5)
	}

	headers := make(map[string]string, len(browserHeaders)+len(opts.Headers))
	for k, v := range browserHeaders {
		headers[k] = v
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		headers:    headers,
		maxRetries: maxRetries,
		limiter:    limiter,
		debug:      opts.Debug,
	}
}

// SetDebug toggles per-request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Get performs a GET request with retries. It retries on connection
// failure, timeout, HTTP 429 and 5xx; other statuses are returned as-is.
// After exhausting retries it fails with ErrFetchExhausted.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (*Response, error) {
	reqURL := rawURL
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", rawURL, params.Encode())
	}
	return c.do(ctx, http.MethodGet, reqURL, nil, "")
}

// GetJSON performs a GET request and decodes a 200 JSON response into out
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	resp, err := c.Get(ctx, rawURL, params)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("%w: %s returned status %d", domain.ErrSourceUnavailable, rawURL, resp.StatusCode)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", domain.ErrSourceUnavailable, rawURL, err)
	}
	return nil
}

// PostJSON performs a POST request with a JSON payload and decodes a 200
// JSON response into out
func (c *Client) PostJSON(ctx context.Context, rawURL string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request payload: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, rawURL, body, "application/json")
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("%w: %s returned status %d", domain.ErrSourceUnavailable, rawURL, resp.StatusCode)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", domain.ErrSourceUnavailable, rawURL, err)
	}
	return nil
}

// do runs the retry loop around a single request
func (c *Client) do(ctx context.Context, method, reqURL string, body []byte, contentType string) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter error: %w", err)
			}
		}

		resp, err := c.request(ctx, method, reqURL, body, contentType)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if c.debug {
				log.Printf("[FETCH] %s %s failed (attempt %d/%d): %v", method, reqURL, attempt, c.maxRetries, err)
			}
			lastErr = err
			sleep(ctx, exponentialBackoff(attempt))
			continue
		}

		// Retry only on 429 and 5xx; everything else is the caller's to interpret
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			if c.debug {
				log.Printf("[FETCH] %s %s returned %d (attempt %d/%d)", method, reqURL, resp.StatusCode, attempt, c.maxRetries)
			}
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			sleep(ctx, exponentialBackoff(attempt))
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("%w: %s after %d attempts: %v", domain.ErrFetchExhausted, reqURL, c.maxRetries, lastErr)
}

// request executes a single HTTP request
func (c *Client) request(ctx context.Context, method, reqURL string, body []byte, contentType string) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// exponentialBackoff returns the delay before the next retry attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// sleep waits for d or until the context is cancelled
func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
