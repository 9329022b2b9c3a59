// internal/adapter/social/convert.go

package social

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"socialpulse/internal/domain/content"
)

// TrendRecord is a trending topic as reported by one platform
type TrendRecord struct {
	Platform content.Platform
	ID       string
	Name     string
	Volume   *int64
	URL      string
	Query    string
	Extra    map[string]interface{}
}

// PostRecord is a post as reported by one platform
type PostRecord struct {
	Platform  content.Platform
	ID        string
	Text      string
	Author    string
	URL       string
	CreatedAt time.Time
	Likes     int64
	Reposts   int64
	Replies   int64
	Views     int64
	Hashtags  []string
}

// ConvertTrend turns a platform trend into a content item
func ConvertTrend(r TrendRecord, now time.Time) content.ContentItem {
	item := content.ContentItem{
		ID:        r.ID,
		Text:      strings.TrimSpace(r.Name),
		Volume:    r.Volume,
		Platform:  r.Platform,
		Timestamp: now,
		Metadata:  make(map[string]interface{}, len(r.Extra)+2),
	}
	for k, v := range r.Extra {
		item.Metadata[k] = v
	}

	switch r.Platform {
	case content.PlatformX:
		item.Metadata["name"] = r.Name
		if r.Volume != nil {
			item.Metadata["tweet_volume"] = *r.Volume
		}
		if r.URL != "" {
			item.Metadata["url"] = r.URL
		}
		if r.Query != "" {
			item.Metadata["query"] = r.Query
		}
	case content.PlatformReddit:
		if r.ID != "" {
			item.ID = "reddit:" + r.ID
		}
		if r.URL != "" {
			item.Metadata["permalink"] = r.URL
		}
	default:
		item.Metadata["name"] = r.Name
	}

	item.EnsureID()
	return item
}

// ConvertPost turns a platform post into a content item. Posts without
// provider hashtags get the #words found in their text.
func ConvertPost(p PostRecord) content.ContentItem {
	hashtags := p.Hashtags
	if len(hashtags) == 0 {
		hashtags = ExtractHashtags(p.Text)
	}

	item := content.ContentItem{
		ID:        p.ID,
		Text:      p.Text,
		Platform:  p.Platform,
		Timestamp: p.CreatedAt,
		Metadata: map[string]interface{}{
			"author":   p.Author,
			"hashtags": hashtags,
		},
	}
	if p.URL != "" {
		item.Metadata["url"] = p.URL
	}

	switch p.Platform {
	case content.PlatformX:
		item.Metadata["metrics"] = map[string]int64{
			"likes":    p.Likes,
			"retweets": p.Reposts,
			"replies":  p.Replies,
			"views":    p.Views,
		}
	case content.PlatformReddit:
		if p.ID != "" {
			item.ID = "reddit:" + p.ID
		}
		item.Metadata["metrics"] = map[string]int64{
			"score":        p.Likes,
			"num_comments": p.Replies,
		}
	}

	item.EnsureID()
	return item
}

// ExtractHashtags returns the words of text that start with '#', without
// the sigil and without trailing punctuation
func ExtractHashtags(text string) []string {
	tags := []string{}
	for _, word := range strings.Fields(text) {
		if !strings.HasPrefix(word, "#") {
			continue
		}
		tag := strings.TrimRightFunc(word[1:], func(r rune) bool {
			return unicode.IsPunct(r) && r != '_'
		})
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// flexString decodes a JSON string or number into a string
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
