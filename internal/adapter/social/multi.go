// internal/adapter/social/multi.go

package social

import (
	"context"
	"log"

	"socialpulse/internal/domain/content"
)

// Source is a named trend source
type Source struct {
	Name   string
	Trends TrendSource
}

// Multi merges trends from several platforms and reads posts from one
// primary provider
type Multi struct {
	primary content.Provider
	sources []Source
}

// NewMulti creates a multi-platform provider. The primary provider is
// always the first trend source.
func NewMulti(primary content.Provider, primaryName string, extra ...Source) *Multi {
	sources := make([]Source, 0, len(extra)+1)
	sources = append(sources, Source{Name: primaryName, Trends: primary})
	for _, s := range extra {
		if s.Trends != nil {
			sources = append(sources, s)
		}
	}
	return &Multi{primary: primary, sources: sources}
}

// FetchTrending collects trends from every source in order. A failing
// source is logged and skipped; an error is returned only when every
// source failed, preferring a rate-limit error.
func (m *Multi) FetchTrending(ctx context.Context, keywords []string) ([]content.ContentItem, error) {
	var (
		all      = []content.ContentItem{}
		firstErr error
		failed   int
	)

	for _, s := range m.sources {
		items, err := s.Trends.FetchTrending(ctx, keywords)
		if err != nil {
			log.Printf("Error getting trends from %s: %v", s.Name, err)
			failed++
			if firstErr == nil || (content.IsRateLimited(err) && !content.IsRateLimited(firstErr)) {
				firstErr = err
			}
			continue
		}
		all = append(all, items...)
	}

	if failed == len(m.sources) && firstErr != nil {
		return nil, firstErr
	}
	return all, nil
}

// FetchPosts searches posts on the primary provider
func (m *Multi) FetchPosts(ctx context.Context, query string, limit int) ([]content.ContentItem, error) {
	return m.primary.FetchPosts(ctx, query, limit)
}

// FetchAccountPosts reads account posts from the primary provider
func (m *Multi) FetchAccountPosts(ctx context.Context, handle string, limit int) ([]content.ContentItem, error) {
	return m.primary.FetchAccountPosts(ctx, handle, limit)
}
