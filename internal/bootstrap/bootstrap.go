// internal/bootstrap/bootstrap.go

package bootstrap

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"socialpulse/internal/adapter/social"
	"socialpulse/internal/adapter/storage"
	"socialpulse/internal/config"
	"socialpulse/internal/domain/content"
	"socialpulse/internal/domain/profile"
	"socialpulse/internal/service/freshness"
	"socialpulse/internal/service/pulse"
)

// NewProvider builds the content provider for the configured backend.
// Reddit trends are merged in when enabled.
func NewProvider(cfg config.UpstreamConfig) (content.Provider, error) {
	opts := clientOptions(cfg)

	var trends social.TrendSource
	if cfg.XBearerToken != "" {
		trendOpts := append([]social.Option{}, opts...)
		if cfg.XTrendsBaseURL != "" {
			trendOpts = append(trendOpts, social.WithBaseURL(cfg.XTrendsBaseURL))
		}
		trends = social.NewTrendsClient(cfg.XBearerToken, cfg.WOEID, trendOpts...)
	} else {
		log.Printf("X_BEARER_TOKEN not set, X trends are unavailable")
	}

	var (
		primary content.Provider
		name    string
	)
	switch cfg.Backend {
	case config.BackendXV2:
		client, err := social.NewXV2Client(cfg.XBearerToken, trends, time.Time{}, opts...)
		if err != nil {
			return nil, err
		}
		primary, name = client, "x"

	case config.BackendPumpAgent, "":
		client, err := NewXClient(cfg, trends)
		if err != nil {
			return nil, err
		}
		primary, name = client, "x"

	default:
		return nil, fmt.Errorf("%w: unsupported upstream backend %s", content.ErrConfiguration, cfg.Backend)
	}

	if !cfg.RedditEnabled {
		return primary, nil
	}

	reddit := social.NewRedditClient(social.RedditConfig{
		Subreddit: cfg.RedditSubreddit,
		TimeRange: cfg.RedditTimeRange,
	}, opts...)
	log.Printf("Reddit trends enabled for r/%s", cfg.RedditSubreddit)

	return social.NewMulti(primary, name, social.Source{Name: "reddit", Trends: reddit}), nil
}

// NewXClient builds the keyed X client, which also serves rate-limit
// checks. trends may be nil.
func NewXClient(cfg config.UpstreamConfig, trends social.TrendSource) (*social.XClient, error) {
	opts := clientOptions(cfg)
	if cfg.XBaseURL != "" {
		opts = append(opts, social.WithBaseURL(cfg.XBaseURL))
	}

	return social.NewXClient(social.XConfig{
		APIKey:      cfg.XAPIKey,
		ProbeHandle: cfg.ProbeHandle,
		Filters: social.SearchFilters{
			MinLikes:    cfg.MinLikes,
			MinRetweets: cfg.MinRetweets,
		},
		Trends: trends,
	}, opts...)
}

// NewService wires an aggregator and a pulse service. store and
// publisher may be nil.
func NewService(cfg config.PulseConfig, provider content.Provider, store profile.Store, publisher pulse.Publisher) *pulse.Service {
	aggregator := pulse.NewAggregator(provider, pulse.WithConcurrency(cfg.Concurrency))

	return pulse.NewService(
		aggregator,
		store,
		freshness.NewCache(nil),
		publisher,
		ServiceConfig(cfg),
	)
}

// ServiceConfig maps the pulse configuration onto the service's
func ServiceConfig(cfg config.PulseConfig) pulse.ServiceConfig {
	return pulse.ServiceConfig{
		Limits: pulse.Limits{
			MaxTrends:             cfg.MaxTrends,
			MaxPostsPerTrend:      cfg.MaxPostsPerTrend,
			TrackTweetsPerAccount: cfg.TrackTweetsPerAccount,
		},
		TrendsInterval:  cfg.TrendsInterval,
		TrackedInterval: cfg.TrackedInterval,
	}
}

// NewFileStore builds the document-backed profile store
func NewFileStore(cfg config.ProfileConfig) *storage.FileStore {
	return storage.NewFileStore(cfg.Path, cfg.TrackPath)
}

func clientOptions(cfg config.UpstreamConfig) []social.Option {
	if cfg.RequestTimeout <= 0 {
		return nil
	}
	return []social.Option{
		social.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
	}
}
