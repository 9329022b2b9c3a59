// internal/service/pulse/service.go

package pulse

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"socialpulse/internal/domain/content"
	"socialpulse/internal/domain/profile"
	"socialpulse/internal/service/freshness"
	"socialpulse/internal/service/relevance"
)

// Publisher announces freshly computed pulses
type Publisher interface {
	PublishPulse(ctx context.Context, result content.AggregationResult) error
}

// ServiceConfig contains configuration for the pulse service
type ServiceConfig struct {
	Limits          Limits
	TrendsInterval  time.Duration
	TrackedInterval time.Duration
}

// DefaultServiceConfig returns the default limits and gate intervals
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Limits:          DefaultLimits(),
		TrendsInterval:  freshness.DefaultTrendsInterval,
		TrackedInterval: freshness.DefaultTrackedInterval,
	}
}

// ErrHalted is returned while the session is halted after a rate limit
var ErrHalted = errors.New("session halted after rate limit")

// Service holds the session's profile and tracked accounts and serves
// pulses, reusing cached halves while their freshness gate allows it.
type Service struct {
	aggregator *Aggregator
	store      profile.Store
	cache      *freshness.Cache
	publisher  Publisher
	config     ServiceConfig

	trendsGate  freshness.Gate
	trackedGate freshness.Gate

	mu          sync.RWMutex
	profile     *profile.Profile
	accounts    []profile.TrackedAccount
	haltedBy    error
	haltedUntil time.Time

	refreshMu sync.Mutex
}

// NewService creates a pulse service. store and publisher may be nil.
func NewService(
	aggregator *Aggregator,
	store profile.Store,
	cache *freshness.Cache,
	publisher Publisher,
	config ServiceConfig,
) *Service {
	if cache == nil {
		cache = freshness.NewCache(nil)
	}

	return &Service{
		aggregator:  aggregator,
		store:       store,
		cache:       cache,
		publisher:   publisher,
		config:      config,
		trendsGate:  freshness.Gate{ID: freshness.GateTrends, Interval: config.TrendsInterval},
		trackedGate: freshness.Gate{ID: freshness.GateTracked, Interval: config.TrackedInterval},
		accounts:    []profile.TrackedAccount{},
	}
}

// Load reads the profile and tracked accounts from the store
func (s *Service) Load(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("%w: no profile store configured", content.ErrConfiguration)
	}

	p, err := s.store.LoadProfile(ctx)
	if err != nil {
		return fmt.Errorf("error loading profile: %w", err)
	}
	accounts, err := s.store.LoadAccounts(ctx)
	if err != nil {
		return fmt.Errorf("error loading tracked accounts: %w", err)
	}

	s.setProfile(p)
	s.setAccounts(accounts)

	if p.IsEmpty() {
		log.Printf("Loaded empty profile")
	} else {
		log.Printf("Loaded profile for %s", p.Name)
	}
	log.Printf("Loaded %d tracked accounts", len(s.Accounts()))

	return nil
}

// Profile returns a copy of the current profile, or nil
func (s *Service) Profile() *profile.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// Accounts returns a copy of the tracked accounts
func (s *Service) Accounts() []profile.TrackedAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]profile.TrackedAccount, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// UpdateProfile swaps in a new profile and drops cached trend data
func (s *Service) UpdateProfile(ctx context.Context, p *profile.Profile) error {
	if p == nil {
		return content.ErrNoProfile
	}
	p = p.Clone()
	p.Normalize()

	if s.store != nil {
		if err := s.store.SaveProfile(ctx, p); err != nil {
			return fmt.Errorf("error saving profile: %w", err)
		}
	}

	s.setProfile(p)
	s.cache.Invalidate(freshness.GateTrends)
	return nil
}

// UpdateAccounts swaps in new tracked accounts and drops cached account posts
func (s *Service) UpdateAccounts(ctx context.Context, accounts []profile.TrackedAccount) error {
	accounts = profile.NormalizeAccounts(accounts)

	if s.store != nil {
		if err := s.store.SaveAccounts(ctx, accounts); err != nil {
			return fmt.Errorf("error saving tracked accounts: %w", err)
		}
	}

	s.setAccounts(accounts)
	s.cache.Invalidate(freshness.GateTracked)
	return nil
}

// Pulse returns the aggregated content for the current profile. Each
// half is refetched only when its freshness gate says the cached copy is
// stale. While halted by a rate limit, cached data is served together
// with the rate-limit error.
func (s *Service) Pulse(ctx context.Context) (content.AggregationResult, error) {
	result, _, err := s.pulse(ctx)
	return result, err
}

func (s *Service) pulse(ctx context.Context) (content.AggregationResult, TrendSection, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	p := s.Profile()
	accounts := s.Accounts()

	result := content.NewAggregationResult()
	result.GeneratedAt = s.cache.Now()

	if p.IsEmpty() {
		log.Printf("No profile loaded, returning empty pulse")
		result.Diagnostics = append(result.Diagnostics, content.Diagnostic{
			Branch: content.BranchProfile,
			Error:  content.ErrNoProfile.Error(),
		})
		return result, emptyTrendSection(), content.ErrNoProfile
	}

	if err := s.halted(); err != nil {
		trends := s.fillFromCache(&result)
		return result, trends, err
	}

	var (
		fresh    bool
		pulseErr error
	)

	trends, ok := s.cachedTrends()
	if !ok {
		section, err := s.aggregator.TrendSection(ctx, p, s.config.Limits)
		trends = section
		fresh = true
		if err != nil {
			pulseErr = s.recordError(err)
		} else {
			s.cache.Put(freshness.GateTrends, section)
		}
	}

	tracked, ok := s.cachedTracked()
	if !ok {
		if pulseErr != nil && content.IsRateLimited(pulseErr) {
			tracked = TrackedSection{TrackTweets: content.NewOrderedPosts()}
			if cached, exists := s.cache.Get(freshness.GateTracked); exists {
				if section, ok := cached.Value.(TrackedSection); ok {
					tracked = section
				}
			}
		} else {
			section, err := s.aggregator.TrackedSection(ctx, accounts, s.config.Limits.TrackTweetsPerAccount)
			tracked = section
			fresh = true
			if err != nil {
				pulseErr = s.recordError(err)
			} else {
				s.cache.Put(freshness.GateTracked, section)
			}
		}
	}

	result.Trends = trends.Trends
	result.TrendPosts = trends.TrendPosts
	result.KeywordPosts = trends.KeywordPosts
	result.TrackTweets = tracked.TrackTweets
	result.Diagnostics = append(result.Diagnostics, trends.Diagnostics...)
	result.Diagnostics = append(result.Diagnostics, tracked.Diagnostics...)

	if fresh && s.publisher != nil {
		if err := s.publisher.PublishPulse(ctx, result); err != nil {
			log.Printf("Error publishing pulse: %v", err)
		}
	}

	return result, trends, pulseErr
}

// Refresh drops all cached data, clears a rate-limit halt and computes a
// new pulse
func (s *Service) Refresh(ctx context.Context) (content.AggregationResult, error) {
	s.Resume()
	s.cache.InvalidateAll()
	return s.Pulse(ctx)
}

// Trends returns the ranked trends of the current pulse
func (s *Service) Trends(ctx context.Context) ([]content.ScoredItem, error) {
	result, err := s.Pulse(ctx)
	return result.Trends, err
}

// Volume analyzes the volume of every trend the provider returned for
// the current pulse, not only the ranked ones
func (s *Service) Volume(ctx context.Context) (relevance.VolumeReport, error) {
	_, trends, err := s.pulse(ctx)
	return relevance.AnalyzeVolume(trends.Raw, s.cache.Now()), err
}

// Resume clears a rate-limit halt
func (s *Service) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.haltedBy = nil
	s.haltedUntil = time.Time{}
}

func (s *Service) halted() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.haltedBy == nil {
		return nil
	}
	if !s.haltedUntil.IsZero() && !s.cache.Now().Before(s.haltedUntil) {
		log.Printf("Rate limit window passed, resuming upstream calls")
		s.haltedBy = nil
		s.haltedUntil = time.Time{}
		return nil
	}
	return fmt.Errorf("%w: %w", ErrHalted, s.haltedBy)
}

// recordError halts the session on a rate limit and passes err through
func (s *Service) recordError(err error) error {
	if !content.IsRateLimited(err) {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wait := s.haltWindow()
	var rle *content.RateLimitError
	if errors.As(err, &rle) && rle.RetryAfter > 0 {
		wait = rle.RetryAfter
	}
	s.haltedBy = err
	s.haltedUntil = s.cache.Now().Add(wait)
	log.Printf("Upstream rate limited, halting session for %s: %v", wait, err)
	return err
}

// haltWindow is how long a rate limit without a reported reset halts the
// session: one trends interval
func (s *Service) haltWindow() time.Duration {
	if s.config.TrendsInterval > 0 {
		return s.config.TrendsInterval
	}
	return freshness.DefaultTrendsInterval
}

func (s *Service) cachedTrends() (TrendSection, bool) {
	v, ok := s.cache.Fresh(s.trendsGate)
	if !ok {
		return TrendSection{}, false
	}
	section, ok := v.(TrendSection)
	return section, ok
}

func (s *Service) cachedTracked() (TrackedSection, bool) {
	v, ok := s.cache.Fresh(s.trackedGate)
	if !ok {
		return TrackedSection{}, false
	}
	section, ok := v.(TrackedSection)
	return section, ok
}

// fillFromCache copies whatever was last cached into result, stale or not,
// and returns the cached trend section
func (s *Service) fillFromCache(result *content.AggregationResult) TrendSection {
	trends := emptyTrendSection()
	if e, ok := s.cache.Get(freshness.GateTrends); ok {
		if section, ok := e.Value.(TrendSection); ok {
			trends = section
			result.Trends = section.Trends
			result.TrendPosts = section.TrendPosts
			result.KeywordPosts = section.KeywordPosts
		}
	}
	if e, ok := s.cache.Get(freshness.GateTracked); ok {
		if section, ok := e.Value.(TrackedSection); ok {
			result.TrackTweets = section.TrackTweets
		}
	}
	return trends
}

func (s *Service) setProfile(p *profile.Profile) {
	if p != nil {
		p = p.Clone()
		p.Normalize()
	}
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
}

func (s *Service) setAccounts(accounts []profile.TrackedAccount) {
	accounts = profile.NormalizeAccounts(accounts)
	s.mu.Lock()
	s.accounts = accounts
	s.mu.Unlock()
}
