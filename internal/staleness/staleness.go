// Package staleness tracks, per data source, how long ago a feed last
// produced an update and compares it against a configured horizon so the
// strategy evaluator can refuse to trade on stale inputs.
package staleness

import (
	"sync"
	"time"
)

// Tracker records the last-seen time for a set of named sources.
type Tracker struct {
	mu       sync.RWMutex
	lastSeen map[string]time.Time
	horizons map[string]time.Duration
	now      func() time.Time
}

// NewTracker builds a Tracker. horizons maps a source name (e.g.
// "orderbook", "odds_feed") to the maximum age a reading may have before
// it is considered stale.
func NewTracker(horizons map[string]time.Duration) *Tracker {
	return &Tracker{
		lastSeen: make(map[string]time.Time),
		horizons: horizons,
		now:      time.Now,
	}
}

// Touch records that source produced a fresh update now.
func (t *Tracker) Touch(source string) {
	t.mu.Lock()
	t.lastSeen[source] = t.now()
	t.mu.Unlock()
}

// FetchFresh reports whether source has ever produced a reading at all,
// i.e. whether the initial fetch ever succeeded.
func (t *Tracker) FetchFresh(source string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.lastSeen[source]
	return ok
}

// DataFresh reports whether source's most recent reading is within its
// configured horizon. A source with no
// configured horizon is always considered fresh once it has fetched at
// least once. A source that has never fetched is never fresh.
func (t *Tracker) DataFresh(source string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	seen, ok := t.lastSeen[source]
	if !ok {
		return false
	}
	horizon, ok := t.horizons[source]
	if !ok {
		return true
	}
	return t.now().Sub(seen) <= horizon
}

// Fresh reports FetchFresh && DataFresh, the combined gate the strategy
// evaluator checks before acting on a source's data.
func (t *Tracker) Fresh(source string) bool {
	return t.FetchFresh(source) && t.DataFresh(source)
}

// Age returns how long ago source was last touched, and whether it has
// ever been touched at all.
func (t *Tracker) Age(source string) (time.Duration, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	seen, ok := t.lastSeen[source]
	if !ok {
		return 0, false
	}
	return t.now().Sub(seen), true
}
