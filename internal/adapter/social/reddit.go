// internal/adapter/social/reddit.go

package social

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"socialpulse/internal/domain/content"
)

const (
	defaultRedditBaseURL   = "https://www.reddit.com"
	defaultRedditSubreddit = "popular"
	defaultRedditTimeRange = "day"
	defaultRedditLimit     = 25
	redditPlatformName     = "Reddit"
)

// RedditConfig contains configuration for RedditClient
type RedditConfig struct {
	// Subreddit whose top posts are treated as trends
	Subreddit string

	// TimeRange can be: hour, day, week, month, year, all
	TimeRange string

	// TrendLimit caps the number of trends fetched per call
	TrendLimit int
}

// RedditClient reads trends and posts from Reddit's public JSON API
type RedditClient struct {
	subreddit  string
	timeRange  string
	trendLimit int
	opts       clientOptions
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Score       int64   `json:"score"`
	NumComments int64   `json:"num_comments"`
	Subreddit   string  `json:"subreddit"`
	Created     float64 `json:"created_utc"`
	SelfText    string  `json:"selftext"`
	Author      string  `json:"author"`
}

type redditListing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string     `json:"kind"`
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// NewRedditClient creates a Reddit client
func NewRedditClient(cfg RedditConfig, opts ...Option) *RedditClient {
	if cfg.Subreddit == "" {
		cfg.Subreddit = defaultRedditSubreddit
	}
	if cfg.TimeRange == "" {
		cfg.TimeRange = defaultRedditTimeRange
	}
	if cfg.TrendLimit <= 0 {
		cfg.TrendLimit = defaultRedditLimit
	}

	return &RedditClient{
		subreddit:  cfg.Subreddit,
		timeRange:  cfg.TimeRange,
		trendLimit: cfg.TrendLimit,
		opts:       newClientOptions(defaultRedditBaseURL, opts),
	}
}

// FetchTrending returns the top posts of the configured subreddit as
// trends, with the post score as volume
func (c *RedditClient) FetchTrending(ctx context.Context, keywords []string) ([]content.ContentItem, error) {
	endpoint := fmt.Sprintf("%s/r/%s/top.json?limit=%d&t=%s",
		c.opts.baseURL, url.PathEscape(c.subreddit), c.trendLimit, url.QueryEscape(c.timeRange))

	posts, err := c.listing(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	now := c.opts.now()
	items := make([]content.ContentItem, 0, len(posts))
	for _, p := range posts {
		if p.Title == "" {
			continue
		}
		score := p.Score
		items = append(items, ConvertTrend(TrendRecord{
			Platform: content.PlatformReddit,
			ID:       p.ID,
			Name:     p.Title,
			Volume:   &score,
			URL:      c.permalink(p),
			Extra: map[string]interface{}{
				"subreddit":    p.Subreddit,
				"num_comments": p.NumComments,
			},
		}, now))
	}

	log.Printf("Received %d trends from r/%s", len(items), c.subreddit)
	return items, nil
}

// FetchPosts searches Reddit for query
func (c *RedditClient) FetchPosts(ctx context.Context, query string, limit int) ([]content.ContentItem, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "top")
	params.Set("t", c.timeRange)
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}
	endpoint := fmt.Sprintf("%s/search.json?%s", c.opts.baseURL, params.Encode())

	posts, err := c.listing(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return limitItems(c.convertPosts(posts), limit), nil
}

// FetchAccountPosts returns the latest submissions of a Reddit user
func (c *RedditClient) FetchAccountPosts(ctx context.Context, handle string, limit int) ([]content.ContentItem, error) {
	handle = strings.TrimPrefix(strings.TrimLeft(strings.TrimSpace(handle), "@"), "u/")
	if handle == "" {
		return nil, fmt.Errorf("%w: empty handle", content.ErrConfiguration)
	}

	endpoint := fmt.Sprintf("%s/user/%s/submitted.json?sort=new", c.opts.baseURL, url.PathEscape(handle))
	if limit > 0 {
		endpoint += fmt.Sprintf("&limit=%d", limit)
	}

	posts, err := c.listing(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return limitItems(c.convertPosts(posts), limit), nil
}

func (c *RedditClient) listing(ctx context.Context, endpoint string) ([]redditPost, error) {
	log.Printf("Making request to Reddit API: %s", endpoint)

	var resp redditListing
	if _, err := c.opts.getJSON(ctx, redditPlatformName, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	posts := make([]redditPost, 0, len(resp.Data.Children))
	for _, child := range resp.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

func (c *RedditClient) convertPosts(posts []redditPost) []content.ContentItem {
	items := make([]content.ContentItem, 0, len(posts))
	for _, p := range posts {
		text := p.Title
		if p.SelfText != "" {
			text = p.Title + "\n\n" + p.SelfText
		}
		items = append(items, ConvertPost(PostRecord{
			Platform:  content.PlatformReddit,
			ID:        p.ID,
			Text:      text,
			Author:    p.Author,
			URL:       c.permalink(p),
			CreatedAt: time.Unix(int64(p.Created), 0).UTC(),
			Likes:     p.Score,
			Replies:   p.NumComments,
		}))
	}
	return items
}

func (c *RedditClient) permalink(p redditPost) string {
	if p.Permalink == "" {
		return p.URL
	}
	return defaultRedditBaseURL + p.Permalink
}
