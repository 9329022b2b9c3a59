// internal/domain/content/errors.go

package content

import (
	"errors"
	"fmt"
	"time"
)

// Error classes
var (
	// ErrConfiguration marks missing or empty profile/account data
	ErrConfiguration = errors.New("configuration error")

	// ErrUpstreamUnavailable marks a failed fetch from the content provider
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrRateLimited marks an exhausted upstream quota
	ErrRateLimited = errors.New("rate limited")
)

// Configuration errors
var (
	ErrNoProfile  = fmt.Errorf("%w: no profile loaded", ErrConfiguration)
	ErrNoAccounts = fmt.Errorf("%w: no tracked accounts", ErrConfiguration)
)

// ErrMalformedResponse marks upstream data that does not have the
// expected shape. It is handled like any other unavailable upstream.
var ErrMalformedResponse = fmt.Errorf("%w: malformed response", ErrUpstreamUnavailable)

// RateLimitError is returned when the upstream reports quota exhaustion
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "rate limit exceeded"
	}
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", msg, e.RetryAfter)
	}
	return msg
}

// Is makes errors.Is(err, ErrRateLimited) match any RateLimitError
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// IsRateLimited reports whether err signals an exhausted quota
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsConfiguration reports whether err is a configuration error
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
