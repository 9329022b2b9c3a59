package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"socialpulse/internal/adapter/social"
	"socialpulse/internal/domain/content"
	"socialpulse/internal/domain/profile"
	"socialpulse/internal/service/relevance"
)

func TestRenderPulse(t *testing.T) {
	vol := int64(9000)
	result := content.NewAggregationResult()
	result.GeneratedAt = time.Date(2025, 3, 19, 12, 0, 0, 0, time.UTC)
	result.Trends = []content.ScoredItem{{
		ContentItem:    content.ContentItem{Text: "#NFT", Volume: &vol, Platform: content.PlatformX},
		RelevanceScore: 2,
		Matches:        []string{"hashtag:nft"},
	}}
	result.TrendPosts.Set("#NFT", []content.ContentItem{{Text: "minting   today\n#nft", Metadata: map[string]interface{}{"author": "alice"}}})
	result.KeywordPosts = []content.ContentItem{{Text: "defi summer is back"}}
	result.TrackTweets.Set("bob", []content.ContentItem{})
	result.Diagnostics = []content.Diagnostic{{Branch: content.BranchTrackTweets, Key: "carol", Error: "upstream unavailable"}}

	var buf bytes.Buffer
	RenderPulse(&buf, result, profile.New("Acme", []string{"defi"}, []string{"nft"}, []string{"Bridge: moves assets across chains", "Wallet"}))
	out := buf.String()

	for _, want := range []string{
		"Social pulse for Acme",
		"#nft",
		"Components: Bridge, Wallet",
		"Trends (1)",
		"#NFT",
		"9000",
		"score 2",
		"minting today #nft",
		"@alice",
		"Keyword posts (1)",
		"[1]",
		"Tracked accounts (1)",
		"bob",
		"track_tweets carol: upstream unavailable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
}

func TestRenderPulse_NoProfile(t *testing.T) {
	var buf bytes.Buffer
	RenderPulse(&buf, content.NewAggregationResult(), nil)

	out := buf.String()
	if !strings.Contains(out, "no profile") || !strings.Contains(out, "none") {
		t.Errorf("output = %s", out)
	}
}

func TestRenderVolume(t *testing.T) {
	a, b := int64(100), int64(300)
	report := relevance.AnalyzeVolume([]content.ContentItem{
		{Text: "small", Volume: &a},
		{Text: "big", Volume: &b},
	}, time.Now())

	var buf bytes.Buffer
	RenderVolume(&buf, report)
	out := buf.String()
	for _, want := range []string{"Total volume:   400", "Average volume: 200", "1. big"} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	RenderVolume(&buf, relevance.AnalyzeVolume(nil, time.Now()))
	if !strings.Contains(buf.String(), "no trends") {
		t.Errorf("empty report output = %s", buf.String())
	}
}

func TestRenderRateLimit(t *testing.T) {
	var buf bytes.Buffer
	RenderRateLimit(&buf, social.RateLimitStatus{OK: false, Message: "Rate limit exceeded", Limit: "300", Remaining: "0", Reset: "1710000000"})

	out := buf.String()
	for _, want := range []string{"LIMITED", "Rate limit exceeded", "300", "1710000000"} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
}

func TestClip(t *testing.T) {
	long := strings.Repeat("a", maxTextWidth+10)
	if got := []rune(clip(long)); len(got) != maxTextWidth {
		t.Errorf("clip length = %d", len(got))
	}
	if got := clip("a\n  b"); got != "a b" {
		t.Errorf("clip = %q", got)
	}
}
