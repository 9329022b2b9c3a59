package social

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	twitter "github.com/g8rswimmer/go-twitter/v2"

	"socialpulse/internal/domain/content"
)

func TestNewXV2Client_RequiresToken(t *testing.T) {
	if _, err := NewXV2Client("", nil, testNow); !content.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestXV2Client_FetchPosts(t *testing.T) {
	var gotAuth, gotMax string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/tweets/search/recent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotMax = r.URL.Query().Get("max_results")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": "1", "text": "gm #web3", "author_id": "9", "created_at": "2025-03-19T10:00:00.000Z",
				 "public_metrics": {"retweet_count": 1, "reply_count": 2, "like_count": 3, "quote_count": 0}},
				{"id": "2", "text": "second"}
			],
			"meta": {"result_count": 2}
		}`))
	}))
	defer server.Close()

	client, err := NewXV2Client("token", nil, testNow, WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatal(err)
	}

	posts, err := client.FetchPosts(context.Background(), "web3", 1)
	if err != nil {
		t.Fatalf("FetchPosts() error: %v", err)
	}

	if gotAuth != "Bearer token" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotMax != "10" {
		t.Errorf("max_results should be clamped to the API minimum, got %q", gotMax)
	}
	if len(posts) != 1 || posts[0].ID != "1" {
		t.Fatalf("posts = %+v", posts)
	}
	metrics := posts[0].Metadata["metrics"].(map[string]int64)
	if metrics["likes"] != 3 || metrics["replies"] != 2 {
		t.Errorf("metrics = %v", metrics)
	}
}

func TestMapV2Error(t *testing.T) {
	reset := &twitter.RateLimit{Limit: 450, Reset: twitter.Epoch(testNow.Add(90 * time.Second).Unix())}

	tests := []struct {
		name        string
		err         error
		rateLimited bool
		retryAfter  time.Duration
	}{
		{"error response 429", &twitter.ErrorResponse{StatusCode: http.StatusTooManyRequests}, true, 0},
		{"error response 429 with reset", &twitter.ErrorResponse{StatusCode: http.StatusTooManyRequests, RateLimit: reset}, true, 90 * time.Second},
		{"http error 429 with reset", &twitter.HTTPError{StatusCode: http.StatusTooManyRequests, RateLimit: reset}, true, 90 * time.Second},
		{"http error 429 reset passed", &twitter.HTTPError{StatusCode: http.StatusTooManyRequests, RateLimit: &twitter.RateLimit{Reset: twitter.Epoch(testNow.Add(-time.Minute).Unix())}}, true, 0},
		{"http error 503", &twitter.HTTPError{StatusCode: http.StatusServiceUnavailable}, false, 0},
		{"transport error", errors.New("connection reset"), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapV2Error(tt.err, testNow)
			if content.IsRateLimited(err) != tt.rateLimited {
				t.Errorf("IsRateLimited(%v) = %v, want %v", err, !tt.rateLimited, tt.rateLimited)
			}
			if !tt.rateLimited && !errors.Is(err, content.ErrUpstreamUnavailable) {
				t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
			}

			var rle *content.RateLimitError
			if errors.As(err, &rle) && rle.RetryAfter != tt.retryAfter {
				t.Errorf("RetryAfter = %v, want %v", rle.RetryAfter, tt.retryAfter)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ n, want int }{{0, 10}, {10, 10}, {50, 50}, {500, 100}}
	for _, tt := range tests {
		if got := clamp(tt.n, 10, 100); got != tt.want {
			t.Errorf("clamp(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}
