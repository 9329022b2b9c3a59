package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialpulse/internal/domain/content"
)

const redditListingBody = `{
	"kind": "Listing",
	"data": {
		"after": "t3_next",
		"children": [
			{"kind": "t3", "data": {"id": "abc", "title": "Go 1.24 released", "permalink": "/r/golang/comments/abc/", "score": 1500, "num_comments": 230, "subreddit": "golang", "created_utc": 1742378400, "author": "gopher"}},
			{"kind": "t3", "data": {"id": "def", "title": "Weekly #DeFi thread", "selftext": "post your questions", "score": 40, "num_comments": 12, "subreddit": "defi", "created_utc": 1742378500, "author": "mod"}}
		]
	}
}`

func newRedditServer(t *testing.T, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("reddit requests need a User-Agent")
		}
		check(r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(redditListingBody))
	}))
}

func TestRedditClient_FetchTrending(t *testing.T) {
	server := newRedditServer(t, func(r *http.Request) {
		if r.URL.Path != "/r/popular/top.json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if q := r.URL.Query(); q.Get("limit") != "25" || q.Get("t") != "day" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
	})
	defer server.Close()

	client := NewRedditClient(RedditConfig{}, WithBaseURL(server.URL), WithClock(testClock))
	trends, err := client.FetchTrending(context.Background(), nil)
	if err != nil {
		t.Fatalf("FetchTrending() error: %v", err)
	}

	if len(trends) != 2 {
		t.Fatalf("expected 2 trends, got %d", len(trends))
	}
	first := trends[0]
	if first.ID != "reddit:abc" || first.Text != "Go 1.24 released" || first.Platform != content.PlatformReddit {
		t.Errorf("first trend = %+v", first)
	}
	if first.Volume == nil || *first.Volume != 1500 {
		t.Errorf("volume should be the post score, got %v", first.Volume)
	}
	if first.Metadata["permalink"] != "https://www.reddit.com/r/golang/comments/abc/" {
		t.Errorf("permalink = %v", first.Metadata["permalink"])
	}
}

func TestRedditClient_FetchPosts(t *testing.T) {
	server := newRedditServer(t, func(r *http.Request) {
		if r.URL.Path != "/search.json" || r.URL.Query().Get("q") != "#defi OR golang" {
			t.Errorf("request = %s", r.URL)
		}
	})
	defer server.Close()

	client := NewRedditClient(RedditConfig{}, WithBaseURL(server.URL))
	posts, err := client.FetchPosts(context.Background(), "#defi OR golang", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 || posts[0].ID != "reddit:abc" {
		t.Errorf("posts = %+v", posts)
	}
}

func TestRedditClient_FetchAccountPosts(t *testing.T) {
	server := newRedditServer(t, func(r *http.Request) {
		if r.URL.Path != "/user/spez/submitted.json" {
			t.Errorf("path = %s", r.URL.Path)
		}
	})
	defer server.Close()

	client := NewRedditClient(RedditConfig{}, WithBaseURL(server.URL))
	posts, err := client.FetchAccountPosts(context.Background(), "u/spez", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[1].Text != "Weekly #DeFi thread\n\npost your questions" {
		t.Errorf("self text should follow the title, got %q", posts[1].Text)
	}
	if tags := posts[1].Metadata["hashtags"].([]string); len(tags) != 1 || tags[0] != "DeFi" {
		t.Errorf("hashtags = %v", tags)
	}
}

func TestRedditClient_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewRedditClient(RedditConfig{Subreddit: "golang"}, WithBaseURL(server.URL))
	if _, err := client.FetchTrending(context.Background(), nil); !content.IsRateLimited(err) {
		t.Errorf("expected rate limit, got %v", err)
	}
}
