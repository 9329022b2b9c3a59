// internal/adapter/social/x.go

package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"socialpulse/internal/domain/content"
)

const (
	defaultXBaseURL    = "https://alpha.pumpagent.ai/api"
	defaultProbeHandle = "X"
	searchDateLayout   = "2006-01-02"
	xPlatformName      = "X"
	rateLimitExceeded  = "Rate limit exceeded"
	unknownHeaderValue = "unknown"
)

// TrendSource supplies trending topics
type TrendSource interface {
	FetchTrending(ctx context.Context, keywords []string) ([]content.ContentItem, error)
}

// SearchFilters narrows post searches with X search operators
type SearchFilters struct {
	MinLikes    int
	MinRetweets int
	Since       time.Time
}

// Apply appends the filters to query as since:/min_faves:/min_retweets:
// operators
func (f SearchFilters) Apply(query string) string {
	var b strings.Builder
	b.WriteString(query)
	if !f.Since.IsZero() {
		fmt.Fprintf(&b, " since:%s", f.Since.Format(searchDateLayout))
	}
	if f.MinLikes > 0 {
		fmt.Fprintf(&b, " min_faves:%d", f.MinLikes)
	}
	if f.MinRetweets > 0 {
		fmt.Fprintf(&b, " min_retweets:%d", f.MinRetweets)
	}
	return b.String()
}

// XConfig contains configuration for XClient
type XConfig struct {
	APIKey string

	// ProbeHandle is the account looked up by CheckRateLimit
	ProbeHandle string

	Filters SearchFilters

	// AccountsSince drops older account posts. Zero means the start of
	// the current day.
	AccountsSince time.Time

	// Trends supplies trending topics; the tool API has none of its own
	Trends TrendSource
}

// RateLimitStatus is the outcome of a rate-limit probe
type RateLimitStatus struct {
	OK        bool   `json:"ok"`
	Limit     string `json:"limit,omitempty"`
	Remaining string `json:"remaining,omitempty"`
	Reset     string `json:"reset,omitempty"`
	Message   string `json:"message,omitempty"`
}

// XClient reads X posts through the API-key authenticated tool API
type XClient struct {
	apiKey        string
	probeHandle   string
	filters       SearchFilters
	accountsSince time.Time
	trends        TrendSource
	opts          clientOptions
}

type xTweet struct {
	ID           flexString `json:"id"`
	Text         string     `json:"text"`
	Timestamp    float64    `json:"timestamp"`
	Username     string     `json:"username"`
	Likes        int64      `json:"likes"`
	Retweets     int64      `json:"retweets"`
	Replies      int64      `json:"replies"`
	Views        int64      `json:"views"`
	Hashtags     []string   `json:"hashtags"`
	PermanentURL string     `json:"permanentUrl"`
}

func (t xTweet) record() PostRecord {
	return PostRecord{
		Platform:  content.PlatformX,
		ID:        string(t.ID),
		Text:      t.Text,
		Author:    t.Username,
		URL:       t.PermanentURL,
		CreatedAt: time.Unix(int64(t.Timestamp), 0).UTC(),
		Likes:     t.Likes,
		Reposts:   t.Retweets,
		Replies:   t.Replies,
		Views:     t.Views,
		Hashtags:  t.Hashtags,
	}
}

// NewXClient creates an X client. The API key is required.
func NewXClient(cfg XConfig, opts ...Option) (*XClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: X_API_KEY is required", content.ErrConfiguration)
	}
	if cfg.ProbeHandle == "" {
		cfg.ProbeHandle = defaultProbeHandle
	}

	return &XClient{
		apiKey:        cfg.APIKey,
		probeHandle:   cfg.ProbeHandle,
		filters:       cfg.Filters,
		accountsSince: cfg.AccountsSince,
		trends:        cfg.Trends,
		opts:          newClientOptions(defaultXBaseURL, opts),
	}, nil
}

// FetchTrending delegates to the configured trend source
func (c *XClient) FetchTrending(ctx context.Context, keywords []string) ([]content.ContentItem, error) {
	if c.trends == nil {
		return nil, fmt.Errorf("%w: no X trend source configured", content.ErrConfiguration)
	}
	return c.trends.FetchTrending(ctx, keywords)
}

// FetchPosts searches posts matching query with the client's filters
func (c *XClient) FetchPosts(ctx context.Context, query string, limit int) ([]content.ContentItem, error) {
	params := url.Values{}
	params.Set("query", c.filters.Apply(query))
	params.Set("maxResults", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/tool/twitter/search?%s", c.opts.baseURL, params.Encode())

	var raw json.RawMessage
	if _, err := c.opts.getJSON(ctx, xPlatformName, endpoint, c.header(), &raw); err != nil {
		return nil, err
	}

	tweets, err := decodeSearchResults(raw)
	if err != nil {
		return nil, err
	}

	posts := make([]content.ContentItem, 0, len(tweets))
	for _, t := range tweets {
		posts = append(posts, ConvertPost(t.record()))
	}

	log.Printf("Found %d posts matching query: %s", len(posts), query)
	return limitItems(posts, limit), nil
}

// FetchAccountPosts returns recent posts of handle, dropping posts older
// than the client's account cutoff
func (c *XClient) FetchAccountPosts(ctx context.Context, handle string, limit int) ([]content.ContentItem, error) {
	handle = strings.TrimLeft(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, fmt.Errorf("%w: empty handle", content.ErrConfiguration)
	}

	endpoint := fmt.Sprintf("%s/tool/twitter/user-tweets/?username=%s", c.opts.baseURL, url.QueryEscape(handle))

	var tweets []xTweet
	if _, err := c.opts.getJSON(ctx, xPlatformName, endpoint, c.header(), &tweets); err != nil {
		return nil, err
	}

	since := c.accountsCutoff()
	posts := make([]content.ContentItem, 0, len(tweets))
	for _, t := range tweets {
		if int64(t.Timestamp) < since.Unix() {
			continue
		}
		posts = append(posts, ConvertPost(t.record()))
	}

	log.Printf("Retrieved %d of %d posts from %s since %s", len(posts), len(tweets), handle, since.Format(time.RFC3339))
	return limitItems(posts, limit), nil
}

// CheckRateLimit makes a lightweight call to see whether the quota is
// exhausted. Failures are reported in the status rather than returned.
func (c *XClient) CheckRateLimit(ctx context.Context) RateLimitStatus {
	endpoint := fmt.Sprintf("%s/tool/twitter/user-info/?username=%s", c.opts.baseURL, url.QueryEscape(c.probeHandle))

	var discard json.RawMessage
	header, err := c.opts.getJSON(ctx, xPlatformName, endpoint, c.header(), &discard)

	if err == nil {
		return RateLimitStatus{
			OK:        true,
			Limit:     headerOr(header, "x-ratelimit-limit", unknownHeaderValue),
			Remaining: headerOr(header, "x-ratelimit-remaining", unknownHeaderValue),
			Reset:     headerOr(header, "x-ratelimit-reset", unknownHeaderValue),
		}
	}

	var rle *content.RateLimitError
	if errors.As(err, &rle) {
		return RateLimitStatus{
			Message:   rateLimitExceeded,
			Limit:     headerOr(header, "x-rate-limit-limit", ""),
			Remaining: headerOr(header, "x-rate-limit-remaining", ""),
			Reset:     headerOr(header, "x-rate-limit-reset", ""),
		}
	}

	if errors.Is(err, content.ErrMalformedResponse) {
		// the probe only cares that the call went through
		return RateLimitStatus{OK: true, Limit: unknownHeaderValue, Remaining: unknownHeaderValue, Reset: unknownHeaderValue}
	}

	return RateLimitStatus{Message: fmt.Sprintf("API error: %v", err)}
}

func (c *XClient) header() http.Header {
	h := http.Header{}
	h.Set("x-api-key", c.apiKey)
	return h
}

func (c *XClient) accountsCutoff() time.Time {
	if !c.accountsSince.IsZero() {
		return c.accountsSince
	}
	now := c.opts.now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// decodeSearchResults accepts either a bare list of posts or an object
// wrapping them in "data"
func decodeSearchResults(raw json.RawMessage) ([]xTweet, error) {
	var list []xTweet
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Data []xTweet `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: unexpected search response shape", content.ErrMalformedResponse)
	}
	return wrapped.Data, nil
}

func headerOr(h http.Header, key, fallback string) string {
	if h == nil {
		return fallback
	}
	if v := h.Get(key); v != "" {
		return v
	}
	return fallback
}

func limitItems(items []content.ContentItem, limit int) []content.ContentItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
