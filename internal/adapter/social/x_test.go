package social

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"testing"
	"time"

	"socialpulse/internal/domain/content"
)

var testNow = time.Date(2025, 3, 19, 15, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func newTestXClient(t *testing.T, serverURL string, cfg XConfig) *XClient {
	t.Helper()
	if cfg.APIKey == "" {
		cfg.APIKey = "test-key"
	}
	c, err := NewXClient(cfg, WithBaseURL(serverURL), WithClock(testClock))
	if err != nil {
		t.Fatalf("NewXClient() error: %v", err)
	}
	return c
}

func TestNewXClient_RequiresAPIKey(t *testing.T) {
	_, err := NewXClient(XConfig{})
	if !content.IsConfiguration(err) {
		t.Errorf("expected a configuration error, got %v", err)
	}
}

func TestSearchFilters_Apply(t *testing.T) {
	tests := []struct {
		name    string
		filters SearchFilters
		want    string
	}{
		{"no filters", SearchFilters{}, "crypto"},
		{"popularity only", SearchFilters{MinLikes: 5, MinRetweets: 2}, "crypto min_faves:5 min_retweets:2"},
		{"all filters", SearchFilters{MinLikes: 5, MinRetweets: 2, Since: testNow}, "crypto since:2025-03-19 min_faves:5 min_retweets:2"},
		{"zero values are skipped", SearchFilters{MinRetweets: 1}, "crypto min_retweets:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filters.Apply("crypto"); got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestXClient_FetchAccountPosts_KeepsTodaysPosts(t *testing.T) {
	today := time.Date(2025, 3, 19, 10, 0, 0, 0, time.UTC).Unix()
	yesterday := time.Date(2025, 3, 18, 23, 0, 0, 0, time.UTC).Unix()

	var gotPath, gotUser, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser = r.URL.Query().Get("username")
		gotKey = r.Header.Get("x-api-key")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[
			{"id": 101, "text": "Hello #OpenSource world!", "timestamp": %d, "username": "OpenSourceOrg", "likes": 4, "retweets": 1, "permanentUrl": "https://x.com/OpenSourceOrg/status/101"},
			{"id": "100", "text": "old news", "timestamp": %d, "username": "OpenSourceOrg"}
		]`, today, yesterday)
	}))
	defer server.Close()

	client := newTestXClient(t, server.URL, XConfig{})
	posts, err := client.FetchAccountPosts(context.Background(), "@OpenSourceOrg", 10)
	if err != nil {
		t.Fatalf("FetchAccountPosts() error: %v", err)
	}

	if gotPath != "/tool/twitter/user-tweets/" || gotUser != "OpenSourceOrg" || gotKey != "test-key" {
		t.Errorf("request = %s?username=%s with key %q", gotPath, gotUser, gotKey)
	}
	if len(posts) != 1 {
		t.Fatalf("expected only today's post, got %d", len(posts))
	}

	post := posts[0]
	if post.ID != "101" || post.Platform != content.PlatformX {
		t.Errorf("post = %+v", post)
	}
	if !post.Timestamp.Equal(time.Unix(today, 0)) {
		t.Errorf("timestamp = %v", post.Timestamp)
	}
	if tags, _ := post.Metadata["hashtags"].([]string); !reflect.DeepEqual(tags, []string{"OpenSource"}) {
		t.Errorf("hashtags = %v", post.Metadata["hashtags"])
	}
	if post.Metadata["url"] != "https://x.com/OpenSourceOrg/status/101" {
		t.Errorf("url = %v", post.Metadata["url"])
	}
}

func TestXClient_FetchAccountPosts_ExplicitSince(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[{"id": "1", "text": "a", "timestamp": %d}, {"id": "2", "text": "b", "timestamp": %d}]`,
			time.Date(2025, 3, 17, 12, 0, 0, 0, time.UTC).Unix(),
			time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC).Unix())
	}))
	defer server.Close()

	client := newTestXClient(t, server.URL, XConfig{AccountsSince: time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)})
	posts, err := client.FetchAccountPosts(context.Background(), "someone", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 || posts[0].ID != "1" {
		t.Errorf("posts = %+v", posts)
	}
}

func TestXClient_FetchAccountPosts_ObjectIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "user not found"}`))
	}))
	defer server.Close()

	client := newTestXClient(t, server.URL, XConfig{})
	_, err := client.FetchAccountPosts(context.Background(), "ghost", 10)

	if !errors.Is(err, content.ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
	if !errors.Is(err, content.ErrUpstreamUnavailable) {
		t.Error("malformed responses should count as an unavailable upstream")
	}
}

func TestXClient_FetchAccountPosts_EmptyHandle(t *testing.T) {
	client := newTestXClient(t, "http://unused.invalid", XConfig{})
	if _, err := client.FetchAccountPosts(context.Background(), " @ ", 10); !content.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestXClient_FetchPosts_ResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare list", `[{"id":"1","text":"gm #crypto"},{"id":"2","text":"b"},{"id":"3","text":"c"}]`},
		{"wrapped in data", `{"data":[{"id":"1","text":"gm #crypto"},{"id":"2","text":"b"},{"id":"3","text":"c"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery, gotMax string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/tool/twitter/search" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				gotQuery = r.URL.Query().Get("query")
				gotMax = r.URL.Query().Get("maxResults")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestXClient(t, server.URL, XConfig{
				Filters: SearchFilters{MinLikes: 5, MinRetweets: 2, Since: testNow},
			})
			posts, err := client.FetchPosts(context.Background(), "crypto", 2)
			if err != nil {
				t.Fatalf("FetchPosts() error: %v", err)
			}

			if gotQuery != "crypto since:2025-03-19 min_faves:5 min_retweets:2" {
				t.Errorf("query = %q", gotQuery)
			}
			if gotMax != "2" {
				t.Errorf("maxResults = %q", gotMax)
			}
			if len(posts) != 2 || posts[0].ID != "1" {
				t.Errorf("posts = %+v", posts)
			}
		})
	}
}

func TestXClient_FetchPosts_UnexpectedShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`"nope"`))
	}))
	defer server.Close()

	client := newTestXClient(t, server.URL, XConfig{})
	if _, err := client.FetchPosts(context.Background(), "q", 5); !errors.Is(err, content.ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestXClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		header      map[string]string
		rateLimited bool
		retryAfter  time.Duration
	}{
		{"429 with retry-after", http.StatusTooManyRequests, map[string]string{"Retry-After": "120"}, true, 2 * time.Minute},
		{"429 with reset epoch", http.StatusTooManyRequests, map[string]string{"x-rate-limit-reset": strconv.FormatInt(testNow.Add(5*time.Minute).Unix(), 10)}, true, 5 * time.Minute},
		{"429 without hints", http.StatusTooManyRequests, nil, true, 0},
		{"server error", http.StatusInternalServerError, nil, false, 0},
		{"unauthorized", http.StatusUnauthorized, nil, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := newTestXClient(t, server.URL, XConfig{})
			_, err := client.FetchPosts(context.Background(), "q", 5)

			if content.IsRateLimited(err) != tt.rateLimited {
				t.Fatalf("IsRateLimited = %v, want %v (err: %v)", !tt.rateLimited, tt.rateLimited, err)
			}
			if tt.rateLimited {
				var rle *content.RateLimitError
				if !errors.As(err, &rle) || rle.RetryAfter != tt.retryAfter {
					t.Errorf("RetryAfter = %v, want %v", rle, tt.retryAfter)
				}
				return
			}
			if !errors.Is(err, content.ErrUpstreamUnavailable) {
				t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
			}
		})
	}
}

func TestXClient_CheckRateLimit(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		header    map[string]string
		wantOK    bool
		wantLimit string
		wantMsg   string
	}{
		{
			name:      "quota available",
			status:    http.StatusOK,
			header:    map[string]string{"x-ratelimit-limit": "100", "x-ratelimit-remaining": "42"},
			wantOK:    true,
			wantLimit: "100",
		},
		{
			name:      "quota exhausted",
			status:    http.StatusTooManyRequests,
			header:    map[string]string{"x-rate-limit-limit": "100", "x-rate-limit-remaining": "0"},
			wantLimit: "100",
			wantMsg:   "Rate limit exceeded",
		},
		{
			name:    "server error",
			status:  http.StatusBadGateway,
			wantMsg: "API error: upstream unavailable: X API returned status code 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/tool/twitter/user-info/" || r.URL.Query().Get("username") != "probe" {
					t.Errorf("unexpected request %s", r.URL)
				}
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"id":"1"}`))
			}))
			defer server.Close()

			client := newTestXClient(t, server.URL, XConfig{ProbeHandle: "probe"})
			status := client.CheckRateLimit(context.Background())

			if status.OK != tt.wantOK {
				t.Errorf("OK = %v, want %v", status.OK, tt.wantOK)
			}
			if status.Limit != tt.wantLimit {
				t.Errorf("Limit = %q, want %q", status.Limit, tt.wantLimit)
			}
			if status.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", status.Message, tt.wantMsg)
			}
		})
	}
}

func TestXClient_FetchTrending(t *testing.T) {
	var gotAuth, gotID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trends/place.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotID = r.URL.Query().Get("id")
		_, _ = w.Write([]byte(`[{"trends":[
			{"name":"#NFT","url":"https://x.com/search?q=%23NFT","query":"%23NFT","tweet_volume":9000},
			{"name":"DeFi","tweet_volume":null},
			{"name":""}
		]}]`))
	}))
	defer server.Close()

	trends := NewTrendsClient("bearer", "", WithBaseURL(server.URL), WithClock(testClock))
	client := newTestXClient(t, "http://unused.invalid", XConfig{Trends: trends})

	items, err := client.FetchTrending(context.Background(), []string{"nft"})
	if err != nil {
		t.Fatalf("FetchTrending() error: %v", err)
	}

	if gotAuth != "Bearer bearer" || gotID != "1" {
		t.Errorf("auth = %q, id = %q", gotAuth, gotID)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 trends, got %d", len(items))
	}
	if items[0].Text != "#NFT" || items[0].Volume == nil || *items[0].Volume != 9000 {
		t.Errorf("first trend = %+v", items[0])
	}
	if items[1].Volume != nil {
		t.Error("a null tweet_volume should stay nil")
	}
	if items[0].ID == "" || items[0].ID == items[1].ID {
		t.Error("trends should get distinct synthesized IDs")
	}
	if !items[0].Timestamp.Equal(testNow) {
		t.Errorf("timestamp = %v", items[0].Timestamp)
	}
}

func TestXClient_FetchTrendingNeedsSource(t *testing.T) {
	client := newTestXClient(t, "http://unused.invalid", XConfig{})
	if _, err := client.FetchTrending(context.Background(), nil); !content.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}

	trends := NewTrendsClient("", "")
	if _, err := trends.FetchTrending(context.Background(), nil); !content.IsConfiguration(err) {
		t.Errorf("trends without a bearer token: got %v", err)
	}
}
