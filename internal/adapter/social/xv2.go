// internal/adapter/social/xv2.go

package social

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	twitter "github.com/g8rswimmer/go-twitter/v2"

	"socialpulse/internal/domain/content"
)

const (
	defaultXV2Host = "https://api.twitter.com"

	// bounds of max_results on the v2 search and timeline endpoints
	v2SearchMinResults   = 10
	v2TimelineMinResults = 5
	v2MaxResults         = 100
)

var v2TweetFields = []twitter.TweetField{
	twitter.TweetFieldCreatedAt,
	twitter.TweetFieldAuthorID,
	twitter.TweetFieldPublicMetrics,
}

type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// XV2Client reads X posts through the official v2 API with a bearer token
type XV2Client struct {
	client        *twitter.Client
	trends        TrendSource
	accountsSince time.Time
	now           func() time.Time

	mu      sync.Mutex
	userIDs map[string]string
}

// NewXV2Client creates a v2 API client. Trends come from trends, since the
// v2 API exposes none.
func NewXV2Client(bearerToken string, trends TrendSource, accountsSince time.Time, opts ...Option) (*XV2Client, error) {
	if bearerToken == "" {
		return nil, fmt.Errorf("%w: X_BEARER_TOKEN is required for the v2 backend", content.ErrConfiguration)
	}

	o := newClientOptions(defaultXV2Host, opts)
	httpClient, ok := o.httpClient.(*http.Client)
	if !ok {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &XV2Client{
		client: &twitter.Client{
			Authorizer: bearerAuthorizer{token: bearerToken},
			Client:     httpClient,
			Host:       strings.TrimRight(o.baseURL, "/"),
		},
		trends:        trends,
		accountsSince: accountsSince,
		now:           o.now,
		userIDs:       make(map[string]string),
	}, nil
}

// FetchTrending delegates to the configured trend source
func (c *XV2Client) FetchTrending(ctx context.Context, keywords []string) ([]content.ContentItem, error) {
	if c.trends == nil {
		return nil, fmt.Errorf("%w: no X trend source configured", content.ErrConfiguration)
	}
	return c.trends.FetchTrending(ctx, keywords)
}

// FetchPosts runs a recent search for query
func (c *XV2Client) FetchPosts(ctx context.Context, query string, limit int) ([]content.ContentItem, error) {
	resp, err := c.client.TweetRecentSearch(ctx, query, twitter.TweetRecentSearchOpts{
		TweetFields: v2TweetFields,
		MaxResults:  clamp(limit, v2SearchMinResults, v2MaxResults),
	})
	if err != nil {
		return nil, mapV2Error(err, c.now())
	}
	if resp == nil || resp.Raw == nil {
		return []content.ContentItem{}, nil
	}

	posts := convertV2Tweets(resp.Raw.Tweets, time.Time{})
	log.Printf("Found %d posts matching query: %s", len(posts), query)
	return limitItems(posts, limit), nil
}

// FetchAccountPosts returns the timeline of handle since the account cutoff
func (c *XV2Client) FetchAccountPosts(ctx context.Context, handle string, limit int) ([]content.ContentItem, error) {
	handle = strings.TrimLeft(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, fmt.Errorf("%w: empty handle", content.ErrConfiguration)
	}

	id, err := c.userID(ctx, handle)
	if err != nil {
		return nil, err
	}

	since := c.cutoff()
	resp, err := c.client.UserTweetTimeline(ctx, id, twitter.UserTweetTimelineOpts{
		TweetFields: v2TweetFields,
		MaxResults:  clamp(limit, v2TimelineMinResults, v2MaxResults),
		StartTime:   since,
	})
	if err != nil {
		return nil, mapV2Error(err, c.now())
	}
	if resp == nil || resp.Raw == nil {
		return []content.ContentItem{}, nil
	}

	posts := convertV2Tweets(resp.Raw.Tweets, since)
	for i := range posts {
		posts[i].Metadata["author"] = handle
	}

	log.Printf("Retrieved %d posts from %s", len(posts), handle)
	return limitItems(posts, limit), nil
}

func (c *XV2Client) userID(ctx context.Context, handle string) (string, error) {
	key := strings.ToLower(handle)

	c.mu.Lock()
	id, ok := c.userIDs[key]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	resp, err := c.client.UserNameLookup(ctx, []string{handle}, twitter.UserLookupOpts{})
	if err != nil {
		return "", mapV2Error(err, c.now())
	}
	if resp == nil || resp.Raw == nil || len(resp.Raw.Users) == 0 || resp.Raw.Users[0] == nil {
		return "", fmt.Errorf("%w: user %s not found", content.ErrUpstreamUnavailable, handle)
	}

	id = resp.Raw.Users[0].ID
	c.mu.Lock()
	c.userIDs[key] = id
	c.mu.Unlock()
	return id, nil
}

func (c *XV2Client) cutoff() time.Time {
	if !c.accountsSince.IsZero() {
		return c.accountsSince
	}
	now := c.now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

func convertV2Tweets(tweets []*twitter.TweetObj, since time.Time) []content.ContentItem {
	posts := make([]content.ContentItem, 0, len(tweets))
	for _, t := range tweets {
		if t == nil {
			continue
		}

		created, _ := time.Parse(time.RFC3339, t.CreatedAt)
		if !since.IsZero() && !created.IsZero() && created.Before(since) {
			continue
		}

		rec := PostRecord{
			Platform:  content.PlatformX,
			ID:        t.ID,
			Text:      t.Text,
			Author:    t.AuthorID,
			URL:       fmt.Sprintf("https://x.com/i/web/status/%s", t.ID),
			CreatedAt: created,
		}
		if m := t.PublicMetrics; m != nil {
			rec.Likes = int64(m.Likes)
			rec.Reposts = int64(m.Retweets)
			rec.Replies = int64(m.Replies)
		}
		posts = append(posts, ConvertPost(rec))
	}
	return posts
}

// mapV2Error maps go-twitter errors onto the content error classes. A rate
// limit carries the time left until the reported reset.
func mapV2Error(err error, now time.Time) error {
	var (
		status int
		limit  *twitter.RateLimit
	)

	var errResp *twitter.ErrorResponse
	var httpErr *twitter.HTTPError
	switch {
	case errors.As(err, &errResp):
		status, limit = errResp.StatusCode, errResp.RateLimit
	case errors.As(err, &httpErr):
		status, limit = httpErr.StatusCode, httpErr.RateLimit
	}

	if status == http.StatusTooManyRequests {
		rle := &content.RateLimitError{Message: fmt.Sprintf("X rate limit exceeded: %v", err)}
		if limit != nil && limit.Reset > 0 {
			if wait := limit.Reset.Time().Sub(now); wait > 0 {
				rle.RetryAfter = wait
			}
		}
		return rle
	}
	return fmt.Errorf("%w: X v2 API: %v", content.ErrUpstreamUnavailable, err)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
