// internal/service/relevance/ranker.go

package relevance

import (
	"sort"

	"socialpulse/internal/domain/content"
	"socialpulse/internal/domain/profile"
)

// RankTrends filters and orders raw trends by relevance to the profile.
//
// When useProfile is false or the profile has no keywords and no hashtags
// the trends are passed through unchanged, unscored and in input order.
// Otherwise trends scoring zero are dropped and the rest are sorted by
// score, highest first, keeping input order among equal scores.
func RankTrends(raw []content.ContentItem, p *profile.Profile, useProfile bool) []content.ScoredItem {
	if !useProfile || !p.HasTerms() {
		return passThrough(raw)
	}

	ranked := make([]content.ScoredItem, 0, len(raw))
	for _, item := range raw {
		res := Score(item.Text, p.Keywords, p.Hashtags)
		if res.Score == 0 {
			continue
		}
		ranked = append(ranked, content.ScoredItem{
			ContentItem:    item,
			RelevanceScore: res.Score,
			Matches:        res.Matches,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RelevanceScore > ranked[j].RelevanceScore
	})

	return ranked
}

// ScorePosts annotates posts with their relevance without filtering or
// reordering them.
func ScorePosts(posts []content.ContentItem, p *profile.Profile) []content.ScoredItem {
	out := make([]content.ScoredItem, len(posts))
	for i, post := range posts {
		out[i] = content.ScoredItem{ContentItem: post, Matches: []string{}}
		if !p.HasTerms() {
			continue
		}
		res := Score(post.Text, p.Keywords, p.Hashtags)
		out[i].RelevanceScore = res.Score
		out[i].Matches = res.Matches
	}
	return out
}

func passThrough(raw []content.ContentItem) []content.ScoredItem {
	out := make([]content.ScoredItem, len(raw))
	for i, item := range raw {
		out[i] = content.ScoredItem{ContentItem: item, Matches: []string{}}
	}
	return out
}
