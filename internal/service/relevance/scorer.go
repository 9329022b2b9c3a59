// internal/service/relevance/scorer.go

package relevance

import (
	"strings"
)

// Match weights. Hashtags are curated profile terms, keywords are broader.
const (
	HashtagWeight = 2
	KeywordWeight = 1
)

// Match kinds used in the "<kind>:<term>" match labels
const (
	KindHashtag = "hashtag"
	KindKeyword = "keyword"
)

// Result is the outcome of scoring one candidate
type Result struct {
	Score   int
	Matches []string
}

// Score rates candidate text against profile keywords and hashtags.
//
// The candidate is compared with its leading '#' removed and lower-cased.
// A term matches when it is a substring of the candidate; this is
// deliberately permissive. Hashtag matches are listed before keyword
// matches, each in input order. Empty terms never match.
func Score(candidate string, keywords, hashtags []string) Result {
	text := normalizeCandidate(candidate)
	res := Result{Matches: []string{}}

	for _, h := range hashtags {
		if h == "" {
			continue
		}
		if h == text || strings.Contains(text, h) {
			res.Score += HashtagWeight
			res.Matches = append(res.Matches, KindHashtag+":"+h)
		}
	}

	for _, k := range keywords {
		k = strings.ToLower(k)
		if k == "" {
			continue
		}
		if k == text || strings.Contains(text, k) {
			res.Score += KeywordWeight
			res.Matches = append(res.Matches, KindKeyword+":"+k)
		}
	}

	return res
}

func normalizeCandidate(s string) string {
	return strings.ToLower(strings.TrimLeft(s, "#"))
}
