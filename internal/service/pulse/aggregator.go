// internal/service/pulse/aggregator.go

package pulse

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"socialpulse/internal/domain/content"
	"socialpulse/internal/domain/profile"
	"socialpulse/internal/service/relevance"
)

// Limits caps how much content one aggregation collects
type Limits struct {
	MaxTrends             int
	MaxPostsPerTrend      int
	TrackTweetsPerAccount int
}

// DefaultLimits returns the limits used when none are configured
func DefaultLimits() Limits {
	return Limits{
		MaxTrends:             5,
		MaxPostsPerTrend:      10,
		TrackTweetsPerAccount: 10,
	}
}

// KeywordPostsLimit is the cap for the profile keyword search
func (l Limits) KeywordPostsLimit() int {
	return 2 * l.MaxPostsPerTrend
}

// TrendSection is the trend-driven half of an aggregation. Raw keeps every
// trend the provider returned, before ranking and the MaxTrends cut.
type TrendSection struct {
	Raw          []content.ContentItem
	Trends       []content.ScoredItem
	TrendPosts   *content.OrderedPosts
	KeywordPosts []content.ContentItem
	Diagnostics  []content.Diagnostic
}

// TrackedSection is the tracked-account half of an aggregation
type TrackedSection struct {
	TrackTweets *content.OrderedPosts
	Diagnostics []content.Diagnostic
}

// AggregatorOption configures an Aggregator
type AggregatorOption func(*Aggregator)

// WithConcurrency bounds the number of upstream calls in flight
func WithConcurrency(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithClock sets the clock used to stamp results
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// Aggregator collects profile-relevant content from a provider
type Aggregator struct {
	provider    content.Provider
	concurrency int
	now         func() time.Time
}

// NewAggregator creates an aggregator reading from provider
func NewAggregator(provider content.Provider, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		provider:    provider,
		concurrency: 4,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate ranks trends, searches posts for each retained trend and for
// the profile terms, and fetches posts from every tracked account.
//
// A failing branch is recorded in the result's diagnostics and left out;
// the aggregation always completes. The returned error is ErrNoProfile
// when there is no profile, a *content.RateLimitError when the upstream
// quota ran out, or nil.
func (a *Aggregator) Aggregate(
	ctx context.Context,
	p *profile.Profile,
	accounts []profile.TrackedAccount,
	limits Limits,
) (content.AggregationResult, error) {
	result := content.NewAggregationResult()
	result.GeneratedAt = a.now()

	if p.IsEmpty() {
		log.Printf("No profile loaded, skipping aggregation")
		result.Diagnostics = append(result.Diagnostics, diagnostic(content.BranchProfile, "", content.ErrNoProfile))
		return result, content.ErrNoProfile
	}

	limited := &rateLimit{}

	trends := a.trendSection(ctx, p, limits, limited)
	tracked := a.trackedSection(ctx, accounts, limits.TrackTweetsPerAccount, limited)

	result.Trends = trends.Trends
	result.TrendPosts = trends.TrendPosts
	result.KeywordPosts = trends.KeywordPosts
	result.TrackTweets = tracked.TrackTweets
	result.Diagnostics = append(result.Diagnostics, trends.Diagnostics...)
	result.Diagnostics = append(result.Diagnostics, tracked.Diagnostics...)

	return result, limited.Err()
}

// TrendSection runs the trend-driven half of Aggregate on its own
func (a *Aggregator) TrendSection(ctx context.Context, p *profile.Profile, limits Limits) (TrendSection, error) {
	if p.IsEmpty() {
		log.Printf("No profile loaded, skipping trends")
		return emptyTrendSection(), content.ErrNoProfile
	}

	limited := &rateLimit{}
	section := a.trendSection(ctx, p, limits, limited)
	return section, limited.Err()
}

// TrackedSection runs the tracked-account half of Aggregate on its own
func (a *Aggregator) TrackedSection(ctx context.Context, accounts []profile.TrackedAccount, perAccount int) (TrackedSection, error) {
	limited := &rateLimit{}
	section := a.trackedSection(ctx, accounts, perAccount, limited)
	return section, limited.Err()
}

func (a *Aggregator) trendSection(ctx context.Context, p *profile.Profile, limits Limits, limited *rateLimit) TrendSection {
	section := emptyTrendSection()

	raw, err := a.call(limited, func() ([]content.ContentItem, error) {
		return a.provider.FetchTrending(ctx, p.Keywords)
	})
	if err != nil {
		section.Diagnostics = append(section.Diagnostics, diagnostic(content.BranchTrending, "", err))
	}
	if raw != nil {
		section.Raw = raw
	}

	ranked := relevance.RankTrends(raw, p, true)
	if n := nonNegative(limits.MaxTrends); len(ranked) > n {
		ranked = ranked[:n]
	}
	section.Trends = ranked

	queries := make([]string, len(ranked))
	for i, t := range ranked {
		queries[i] = t.Text
	}
	queries = uniqueKeys(queries)

	for _, r := range a.fanOut(queries, func(query string) ([]content.ContentItem, error) {
		return a.call(limited, func() ([]content.ContentItem, error) {
			return a.provider.FetchPosts(ctx, query, limits.MaxPostsPerTrend)
		})
	}) {
		if r.err != nil {
			section.Diagnostics = append(section.Diagnostics, diagnostic(content.BranchTrendPosts, r.key, r.err))
			continue
		}
		section.TrendPosts.Set(r.key, truncate(r.items, limits.MaxPostsPerTrend))
	}

	if query := p.SearchQuery(); query != "" {
		keywordLimit := limits.KeywordPostsLimit()
		posts, err := a.call(limited, func() ([]content.ContentItem, error) {
			return a.provider.FetchPosts(ctx, query, keywordLimit)
		})
		if err != nil {
			section.Diagnostics = append(section.Diagnostics, diagnostic(content.BranchKeywordPosts, query, err))
		} else {
			section.KeywordPosts = truncate(posts, keywordLimit)
		}
	}

	return section
}

func (a *Aggregator) trackedSection(ctx context.Context, accounts []profile.TrackedAccount, perAccount int, limited *rateLimit) TrackedSection {
	section := TrackedSection{
		TrackTweets: content.NewOrderedPosts(),
		Diagnostics: []content.Diagnostic{},
	}

	if len(accounts) == 0 {
		log.Printf("No tracked accounts configured")
		section.Diagnostics = append(section.Diagnostics, diagnostic(content.BranchTrackTweets, "", content.ErrNoAccounts))
		return section
	}

	handles := make([]string, 0, len(accounts))
	for _, acc := range accounts {
		handles = append(handles, profile.NormalizeHandle(acc.Handle))
	}

	handles = uniqueKeys(handles)

	for _, r := range a.fanOut(handles, func(handle string) ([]content.ContentItem, error) {
		if handle == "" {
			return nil, fmt.Errorf("%w: empty handle", content.ErrConfiguration)
		}
		return a.call(limited, func() ([]content.ContentItem, error) {
			return a.provider.FetchAccountPosts(ctx, handle, perAccount)
		})
	}) {
		if r.err != nil {
			section.Diagnostics = append(section.Diagnostics, diagnostic(content.BranchTrackTweets, r.key, r.err))
			continue
		}
		section.TrackTweets.Set(r.key, truncate(r.items, perAccount))
	}

	return section
}

type branchResult struct {
	key   string
	items []content.ContentItem
	err   error
}

// fanOut runs fetch for every key with bounded concurrency and returns
// the results in key order, independent of completion order.
func (a *Aggregator) fanOut(keys []string, fetch func(key string) ([]content.ContentItem, error)) []branchResult {
	results := make([]branchResult, len(keys))
	sem := make(chan struct{}, a.concurrency)

	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			items, err := fetch(key)
			results[i] = branchResult{key: key, items: items, err: err}
		}(i, key)
	}
	wg.Wait()

	return results
}

// call invokes fetch unless the upstream has already reported an
// exhausted quota during this aggregation.
func (a *Aggregator) call(limited *rateLimit, fetch func() ([]content.ContentItem, error)) ([]content.ContentItem, error) {
	if err := limited.Err(); err != nil {
		return nil, fmt.Errorf("skipped: %w", err)
	}

	items, err := fetch()
	if err != nil {
		if content.IsRateLimited(err) {
			limited.Set(err)
		}
		return nil, err
	}
	if items == nil {
		items = []content.ContentItem{}
	}
	return items, nil
}

// rateLimit remembers the first rate-limit error seen by any branch
type rateLimit struct {
	once sync.Once
	hit  atomic.Bool
	err  error
}

func (r *rateLimit) Set(err error) {
	r.once.Do(func() {
		var rle *content.RateLimitError
		if !errors.As(err, &rle) {
			rle = &content.RateLimitError{Message: err.Error()}
		}
		r.err = rle
		r.hit.Store(true)
	})
}

func (r *rateLimit) Err() error {
	if !r.hit.Load() {
		return nil
	}
	return r.err
}

func diagnostic(branch, key string, err error) content.Diagnostic {
	if key != "" {
		log.Printf("Error in %s branch for %q: %v", branch, key, err)
	} else {
		log.Printf("Error in %s branch: %v", branch, err)
	}
	return content.Diagnostic{Branch: branch, Key: key, Error: err.Error()}
}

// uniqueKeys drops repeated keys, keeping the first occurrence in order.
// Trends with the same text from different platforms share one search.
func uniqueKeys(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func emptyTrendSection() TrendSection {
	return TrendSection{
		Raw:          []content.ContentItem{},
		Trends:       []content.ScoredItem{},
		TrendPosts:   content.NewOrderedPosts(),
		KeywordPosts: []content.ContentItem{},
		Diagnostics:  []content.Diagnostic{},
	}
}

func truncate(items []content.ContentItem, limit int) []content.ContentItem {
	n := nonNegative(limit)
	if len(items) > n {
		return items[:n]
	}
	return items
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
