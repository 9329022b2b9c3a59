// internal/domain/content/model.go

package content

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Platform identifies the social network an item came from
type Platform int

const (
	PlatformUnknown Platform = iota
	PlatformX
	PlatformReddit
)

// String returns the platform's wire name
func (p Platform) String() string {
	switch p {
	case PlatformX:
		return "x"
	case PlatformReddit:
		return "reddit"
	default:
		return "unknown"
	}
}

// ParsePlatform maps a wire name back to a Platform
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x", "twitter":
		return PlatformX, nil
	case "reddit":
		return PlatformReddit, nil
	default:
		return PlatformUnknown, fmt.Errorf("unsupported platform: %s", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (p Platform) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Platform) UnmarshalText(b []byte) error {
	parsed, err := ParsePlatform(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ContentItem is a trend or a post in a platform-neutral shape
type ContentItem struct {
	ID        string                 `json:"id"`
	Text      string                 `json:"text"`
	Volume    *int64                 `json:"volume,omitempty"`
	Platform  Platform               `json:"platform"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// EnsureID assigns a synthesized ID when the provider did not supply one
func (c *ContentItem) EnsureID() {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
}

// ScoredItem is a content item annotated with its profile relevance
type ScoredItem struct {
	ContentItem
	RelevanceScore int      `json:"relevance_score"`
	Matches        []string `json:"matches"`
}

// Diagnostic records a branch of an aggregation that degraded to empty
type Diagnostic struct {
	Branch string `json:"branch"`
	Key    string `json:"key,omitempty"`
	Error  string `json:"error"`
}

// Branch names used in diagnostics
const (
	BranchTrending     = "trending"
	BranchTrendPosts   = "trend_posts"
	BranchKeywordPosts = "keyword_posts"
	BranchTrackTweets  = "track_tweets"
	BranchProfile      = "profile"
)

// AggregationResult is the combined view of content relevant to a profile
type AggregationResult struct {
	Trends       []ScoredItem  `json:"trends"`
	TrendPosts   *OrderedPosts `json:"trend_posts"`
	KeywordPosts []ContentItem `json:"keyword_posts"`
	TrackTweets  *OrderedPosts `json:"track_tweets"`
	GeneratedAt  time.Time     `json:"generated_at"`
	Diagnostics  []Diagnostic  `json:"diagnostics,omitempty"`
}

// NewAggregationResult returns a result with every collection empty
func NewAggregationResult() AggregationResult {
	return AggregationResult{
		Trends:       []ScoredItem{},
		TrendPosts:   NewOrderedPosts(),
		KeywordPosts: []ContentItem{},
		TrackTweets:  NewOrderedPosts(),
	}
}

// IsEmpty reports whether the result holds no content at all
func (r AggregationResult) IsEmpty() bool {
	return len(r.Trends) == 0 &&
		r.TrendPosts.Len() == 0 &&
		len(r.KeywordPosts) == 0 &&
		r.TrackTweets.Len() == 0
}
