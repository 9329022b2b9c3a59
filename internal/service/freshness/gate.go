// internal/service/freshness/gate.go

package freshness

import (
	"time"
)

// GateID names an independently refreshed slice of data
type GateID string

const (
	// GateTrends covers trending topics and the searches derived from them
	GateTrends GateID = "trends"

	// GateTracked covers posts from tracked accounts
	GateTracked GateID = "tracked"
)

// Default refresh intervals
const (
	DefaultTrendsInterval  = 30 * time.Minute
	DefaultTrackedInterval = 6 * time.Hour
)

// ShouldRefetch reports whether data last checked at lastCheck is stale.
// A nil lastCheck means the data was never fetched.
func ShouldRefetch(lastCheck *time.Time, interval time.Duration, now time.Time) bool {
	if lastCheck == nil {
		return true
	}
	return now.Sub(*lastCheck) > interval
}

// Gate pairs a gate ID with its refresh interval
type Gate struct {
	ID       GateID
	Interval time.Duration
}

// ShouldRefetch applies the gate's interval
func (g Gate) ShouldRefetch(lastCheck *time.Time, now time.Time) bool {
	return ShouldRefetch(lastCheck, g.Interval, now)
}
