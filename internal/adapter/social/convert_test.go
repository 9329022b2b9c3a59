package social

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"socialpulse/internal/domain/content"
)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"no tags here", []string{}},
		{"#gm everyone", []string{"gm"}},
		{"Building on #Solana, #DeFi!", []string{"Solana", "DeFi"}},
		{"snake #case_tag.", []string{"case_tag"}},
		{"lonely # sign", []string{}},
		{"mid#word is not a tag", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ExtractHashtags(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractHashtags(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestConvertTrend_PerPlatform(t *testing.T) {
	now := time.Date(2025, 3, 19, 12, 0, 0, 0, time.UTC)
	volume := int64(512)

	x := ConvertTrend(TrendRecord{Platform: content.PlatformX, Name: " #NFT ", Volume: &volume, Query: "%23NFT"}, now)
	if x.Text != "#NFT" || x.Platform != content.PlatformX {
		t.Errorf("x trend = %+v", x)
	}
	if x.Metadata["tweet_volume"] != int64(512) || x.Metadata["query"] != "%23NFT" {
		t.Errorf("x metadata = %v", x.Metadata)
	}
	if x.ID == "" {
		t.Error("x trends should get a synthesized ID")
	}

	reddit := ConvertTrend(TrendRecord{
		Platform: content.PlatformReddit,
		ID:       "abc",
		Name:     "Big news",
		Volume:   &volume,
		Extra:    map[string]interface{}{"subreddit": "golang"},
	}, now)
	if reddit.ID != "reddit:abc" || reddit.Metadata["subreddit"] != "golang" {
		t.Errorf("reddit trend = %+v", reddit)
	}
	if !reddit.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v", reddit.Timestamp)
	}
}

func TestConvertPost_KeepsProviderHashtags(t *testing.T) {
	post := ConvertPost(PostRecord{
		Platform: content.PlatformX,
		ID:       "7",
		Text:     "text with #other",
		Hashtags: []string{"given"},
		Likes:    3,
	})

	if tags := post.Metadata["hashtags"].([]string); !reflect.DeepEqual(tags, []string{"given"}) {
		t.Errorf("hashtags = %v", tags)
	}
	metrics := post.Metadata["metrics"].(map[string]int64)
	if metrics["likes"] != 3 {
		t.Errorf("metrics = %v", metrics)
	}
	if post.ID != "7" {
		t.Errorf("ID = %q", post.ID)
	}
}

func TestFlexString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"id": "abc"}`, "abc"},
		{`{"id": 1234567890123456789}`, "1234567890123456789"},
		{`{"id": null}`, ""},
		{`{}`, ""},
	}

	for _, tt := range tests {
		var v struct {
			ID flexString `json:"id"`
		}
		if err := json.Unmarshal([]byte(tt.in), &v); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", tt.in, err)
		}
		if string(v.ID) != tt.want {
			t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, v.ID, tt.want)
		}
	}
}
