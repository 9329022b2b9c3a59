// internal/service/pulse/scheduler.go

package pulse

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"socialpulse/internal/domain/content"
)

// Runner computes a pulse
type Runner interface {
	Pulse(ctx context.Context) (content.AggregationResult, error)
}

// Scheduler polls a Runner on an interval. Each poll goes through the
// freshness gates, so upstream calls only happen when a section is stale.
type Scheduler struct {
	runner   Runner
	interval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewScheduler creates a scheduler polling runner every interval
func NewScheduler(runner Runner, interval time.Duration) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
	}
}

// Start polls once immediately and then on every tick until Stop
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("scheduler interval must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("scheduler already running")
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	s.wg.Add(1)
	go s.loop(ctx)

	log.Printf("Pulse scheduler started, polling every %s", s.interval)
	return nil
}

// Stop ends polling and waits for an in-flight poll, bounded by ctx
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	c := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(c)
	}()

	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *Scheduler) poll(ctx context.Context) {
	_, err := s.runner.Pulse(ctx)
	switch {
	case err == nil:
	case errors.Is(err, content.ErrNoProfile):
		// nothing to do until a profile is set
	case content.IsRateLimited(err):
		log.Printf("Pulse poll skipped: %v", err)
	case ctx.Err() != nil:
	default:
		log.Printf("Pulse poll failed: %v", err)
	}
}
