// internal/adapter/social/client.go

package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"socialpulse/internal/domain/content"
)

const defaultTimeout = 10 * time.Second

// HTTPClient makes HTTP requests (allows injection for testing)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a platform client
type Option func(*clientOptions)

type clientOptions struct {
	baseURL    string
	httpClient HTTPClient
	now        func() time.Time
	userAgent  string
}

// WithBaseURL overrides the upstream base URL
func WithBaseURL(url string) Option {
	return func(o *clientOptions) {
		if url != "" {
			o.baseURL = url
		}
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c HTTPClient) Option {
	return func(o *clientOptions) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithClock sets the clock used for date filters and retry windows
func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithUserAgent sets the User-Agent header sent upstream
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

func newClientOptions(baseURL string, opts []Option) clientOptions {
	o := clientOptions{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		now:        time.Now,
		userAgent:  "socialpulse/1.0",
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// getJSON performs a GET request and decodes the JSON body into out.
// Status codes are mapped onto the content error classes: 429 becomes a
// *content.RateLimitError, any other non-2xx ErrUpstreamUnavailable and an
// undecodable body ErrMalformedResponse.
func (o clientOptions) getJSON(ctx context.Context, platform, url string, header http.Header, out interface{}) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", o.userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to %s API: %v", content.ErrUpstreamUnavailable, platform, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.Header, fmt.Errorf("%w: failed to read %s response: %v", content.ErrUpstreamUnavailable, platform, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return resp.Header, &content.RateLimitError{
			RetryAfter: retryAfter(resp.Header, o.now()),
			Message:    fmt.Sprintf("%s rate limit exceeded", platform),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.Header, fmt.Errorf("%w: %s API returned status code %d", content.ErrUpstreamUnavailable, platform, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		log.Printf("Malformed %s response from %s: %v", platform, url, err)
		return resp.Header, fmt.Errorf("%w: %s: %v", content.ErrMalformedResponse, platform, err)
	}

	return resp.Header, nil
}

// retryAfter reads the wait time from Retry-After (seconds) or from a
// rate-limit reset header holding a unix timestamp.
func retryAfter(h http.Header, now time.Time) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}

	for _, key := range []string{"x-rate-limit-reset", "x-ratelimit-reset"} {
		v := h.Get(key)
		if v == "" {
			continue
		}
		epoch, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		if d := time.Unix(epoch, 0).Sub(now); d > 0 {
			return d.Round(time.Second)
		}
	}

	return 0
}
