// internal/domain/content/provider.go

package content

import (
	"context"
)

// Provider is the upstream source of trends and posts
type Provider interface {
	// FetchTrending returns current trending topics, optionally narrowed
	// by keywords
	FetchTrending(ctx context.Context, keywords []string) ([]ContentItem, error)

	// FetchPosts searches posts matching query, returning at most limit items
	FetchPosts(ctx context.Context, query string, limit int) ([]ContentItem, error)

	// FetchAccountPosts returns at most limit recent posts from handle
	FetchAccountPosts(ctx context.Context, handle string, limit int) ([]ContentItem, error)
}
