// internal/adapter/social/trends.go

package social

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"socialpulse/internal/domain/content"
)

const (
	defaultTrendsBaseURL = "https://api.twitter.com/1.1"
	worldwideWOEID       = "1"
)

// TrendsClient reads trending topics for a location from the X trends API
type TrendsClient struct {
	bearerToken string
	woeid       string
	opts        clientOptions
}

type xTrend struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Query       string `json:"query"`
	TweetVolume *int64 `json:"tweet_volume"`
}

type xTrendsResponse []struct {
	Trends    []xTrend `json:"trends"`
	Locations []struct {
		Name  string `json:"name"`
		WoeID int    `json:"woeid"`
	} `json:"locations"`
}

// NewTrendsClient creates a trends client. An empty woeid means worldwide.
func NewTrendsClient(bearerToken, woeid string, opts ...Option) *TrendsClient {
	if woeid == "" {
		woeid = worldwideWOEID
	}
	return &TrendsClient{
		bearerToken: bearerToken,
		woeid:       woeid,
		opts:        newClientOptions(defaultTrendsBaseURL, opts),
	}
}

// FetchTrending returns the current trends for the client's location.
// Keywords are not sent upstream; relevance filtering happens on our side.
func (c *TrendsClient) FetchTrending(ctx context.Context, keywords []string) ([]content.ContentItem, error) {
	if c.bearerToken == "" {
		return nil, fmt.Errorf("%w: X bearer token not configured", content.ErrConfiguration)
	}

	endpoint := fmt.Sprintf("%s/trends/place.json?id=%s", c.opts.baseURL, url.QueryEscape(c.woeid))
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.bearerToken)

	var resp xTrendsResponse
	if _, err := c.opts.getJSON(ctx, "X", endpoint, header, &resp); err != nil {
		return nil, err
	}

	if len(resp) == 0 {
		return []content.ContentItem{}, nil
	}

	now := c.opts.now()
	items := make([]content.ContentItem, 0, len(resp[0].Trends))
	for _, t := range resp[0].Trends {
		if t.Name == "" {
			continue
		}
		items = append(items, ConvertTrend(TrendRecord{
			Platform: content.PlatformX,
			Name:     t.Name,
			Volume:   t.TweetVolume,
			URL:      t.URL,
			Query:    t.Query,
		}, now))
	}

	log.Printf("Received %d trends from X for location %s", len(items), c.woeid)
	return items, nil
}
