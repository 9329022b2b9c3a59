// internal/display/render.go

// Package display renders pulses for the terminal
package display

import (
	"fmt"
	"io"
	"strings"

	"socialpulse/internal/adapter/social"
	"socialpulse/internal/domain/content"
	"socialpulse/internal/domain/profile"
	"socialpulse/internal/service/relevance"
)

const maxTextWidth = 140

// RenderPulse writes a pulse to w. Keyword posts are scored against p so
// the best matches are easy to spot.
func RenderPulse(w io.Writer, result content.AggregationResult, p *profile.Profile) {
	var lines []string

	name := "no profile"
	if p != nil && p.Name != "" {
		name = p.Name
	}
	lines = append(lines, titleStyle.Render(fmt.Sprintf("Social pulse for %s", name)))
	if tags := p.DisplayHashtags(); len(tags) > 0 {
		lines = append(lines, metaStyle.Render(strings.Join(tags, " ")))
	}
	if labels := p.ComponentLabels(); len(labels) > 0 {
		lines = append(lines, metaStyle.Render("Components: "+strings.Join(labels, ", ")))
	}
	if !result.GeneratedAt.IsZero() {
		lines = append(lines, metaStyle.Render("Generated "+result.GeneratedAt.Format("2006-01-02 15:04 MST")))
	}

	lines = append(lines, sectionStyle.Render(fmt.Sprintf("Trends (%d)", len(result.Trends))))
	if len(result.Trends) == 0 {
		lines = append(lines, metaStyle.Render("  none"))
	}
	for i, t := range result.Trends {
		lines = append(lines, trendLine(i+1, t))
	}

	lines = append(lines, postGroups("Trend posts", result.TrendPosts)...)

	lines = append(lines, sectionStyle.Render(fmt.Sprintf("Keyword posts (%d)", len(result.KeywordPosts))))
	for _, post := range relevance.ScorePosts(result.KeywordPosts, p) {
		lines = append(lines, scoredPostLine(post))
	}

	lines = append(lines, postGroups("Tracked accounts", result.TrackTweets)...)

	if len(result.Diagnostics) > 0 {
		lines = append(lines, sectionStyle.Render("Diagnostics"))
		for _, d := range result.Diagnostics {
			label := d.Branch
			if d.Key != "" {
				label += " " + d.Key
			}
			lines = append(lines, warnStyle.Render(fmt.Sprintf("  %s: %s", label, d.Error)))
		}
	}

	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

// RenderTrends writes ranked trends to w
func RenderTrends(w io.Writer, trends []content.ScoredItem) {
	lines := []string{sectionStyle.Render(fmt.Sprintf("Trends (%d)", len(trends)))}
	for i, t := range trends {
		lines = append(lines, trendLine(i+1, t))
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

// RenderVolume writes a volume report to w
func RenderVolume(w io.Writer, report relevance.VolumeReport) {
	lines := []string{sectionStyle.Render("Trend volume")}

	if report.Empty {
		lines = append(lines, metaStyle.Render("  no trends to analyze"))
		fmt.Fprintln(w, strings.Join(lines, "\n"))
		return
	}

	lines = append(lines,
		bodyStyle.Render(fmt.Sprintf("  Trends:         %d", report.TotalTrends)),
		bodyStyle.Render(fmt.Sprintf("  Total volume:   %d", report.TotalVolume)),
		bodyStyle.Render(fmt.Sprintf("  Average volume: %.0f", report.AverageVolume)),
	)
	for i, t := range report.TopTrends {
		lines = append(lines, fmt.Sprintf("  %d. %s %s", i+1, keyStyle.Render(t.Text), metaStyle.Render(volume(t.Volume))))
	}

	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

// RenderRateLimit writes a rate-limit status to w
func RenderRateLimit(w io.Writer, status social.RateLimitStatus) {
	state := keyStyle.Render("OK")
	if !status.OK {
		state = warnStyle.Render("LIMITED")
	}

	lines := []string{
		sectionStyle.Render("X API rate limit"),
		"  Status:    " + state,
	}
	if status.Message != "" {
		lines = append(lines, "  Message:   "+bodyStyle.Render(status.Message))
	}
	if status.Limit != "" {
		lines = append(lines,
			"  Limit:     "+bodyStyle.Render(status.Limit),
			"  Remaining: "+bodyStyle.Render(status.Remaining),
			"  Reset:     "+bodyStyle.Render(status.Reset),
		)
	}

	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

func trendLine(rank int, t content.ScoredItem) string {
	line := fmt.Sprintf("  %2d. %s %s", rank, keyStyle.Render(t.Text), metaStyle.Render(t.Platform.String()+volume(t.Volume)))
	if t.RelevanceScore > 0 {
		line += " " + scoreStyle.Render(fmt.Sprintf("score %d", t.RelevanceScore))
		line += " " + metaStyle.Render(strings.Join(t.Matches, ", "))
	}
	return line
}

func postGroups(title string, groups *content.OrderedPosts) []string {
	lines := []string{sectionStyle.Render(fmt.Sprintf("%s (%d)", title, groups.Len()))}
	for _, key := range groups.Keys() {
		posts, _ := groups.Get(key)
		lines = append(lines, "  "+keyStyle.Render(key)+metaStyle.Render(fmt.Sprintf(" %d posts", len(posts))))
		for _, post := range posts {
			lines = append(lines, postLine(post))
		}
	}
	return lines
}

func postLine(post content.ContentItem) string {
	line := "    " + bodyStyle.Render(clip(post.Text))
	if author, ok := post.Metadata["author"].(string); ok && author != "" {
		line += metaStyle.Render(" @" + author)
	}
	return line
}

func scoredPostLine(post content.ScoredItem) string {
	line := postLine(post.ContentItem)
	if post.RelevanceScore > 0 {
		line += " " + scoreStyle.Render(fmt.Sprintf("[%d]", post.RelevanceScore))
	}
	return line
}

func volume(v *int64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf(" · %d", *v)
}

// clip flattens text to one line of at most maxTextWidth runes
func clip(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= maxTextWidth {
		return text
	}
	return string(runes[:maxTextWidth-1]) + "…"
}
