// Package risk implements the exposure and liquidity gates that decide
// whether the strategy is allowed to submit new orders on a given tick.
// The breaker uses the same hysteresis pattern as a
// balance-based circuit breaker: it disables trading once the latest
// trade's size exceeds a high-water mark (a multiple of the recent average,
// with an absolute floor), and only re-enables once a later trade is at or
// under a lower mark, so a single noisy tick near the
// threshold doesn't flap the engine on and off.
package risk

import (
	"math"
	"sync"
	"sync/atomic"
)

const (
	defaultWindowSize      = 20
	defaultHysteresisRatio = 0.8
)

// Breaker gates order submission on aggregate exposure and recent trade
// size. It starts enabled (trading allowed).
type Breaker struct {
	enabled atomic.Bool

	mu          sync.Mutex
	window      []int64 // recent trade notional, cents
	windowSize  int
	maxExposure int64 // configured ceiling on total open notional, cents

	disableMultiplier float64
	minAbsolute       int64
	hysteresisRatio   float64
}

// Config controls the Breaker's thresholds.
type Config struct {
	MaxExposureCents     int64
	DisableMultiplier    float64 // disable once avg trade size * multiplier is breached
	MinAbsoluteCents     int64   // floor under which the multiplier-derived threshold never drops
	HysteresisRatio      float64 // re-enable threshold = disable threshold * ratio
	WindowSize           int
}

// NewBreaker builds a Breaker from cfg, filling in sane defaults for any
// zero-valued fields.
func NewBreaker(cfg Config) *Breaker {
	b := &Breaker{
		windowSize:        cfg.WindowSize,
		maxExposure:       cfg.MaxExposureCents,
		disableMultiplier: cfg.DisableMultiplier,
		minAbsolute:       cfg.MinAbsoluteCents,
		hysteresisRatio:   cfg.HysteresisRatio,
	}
	if b.windowSize <= 0 {
		b.windowSize = defaultWindowSize
	}
	if b.disableMultiplier <= 0 {
		b.disableMultiplier = 3.0
	}
	if b.hysteresisRatio <= 0 {
		b.hysteresisRatio = defaultHysteresisRatio
	}
	b.enabled.Store(true)
	return b
}

// Enabled reports whether new orders may currently be submitted.
func (b *Breaker) Enabled() bool {
	return b.enabled.Load()
}

// RecordTrade appends a trade's notional (price*qty, cents) to the rolling
// window and re-evaluates the enable/disable thresholds.
func (b *Breaker) RecordTrade(notionalCents int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.window = append(b.window, notionalCents)
	if len(b.window) > b.windowSize {
		b.window = b.window[len(b.window)-b.windowSize:]
	}

	avg := b.averageLocked()
	disableThreshold := math.Max(avg*b.disableMultiplier, float64(b.minAbsolute))
	enableThreshold := disableThreshold * b.hysteresisRatio

	latest := float64(notionalCents)
	if b.enabled.Load() && latest > disableThreshold {
		b.enabled.Store(false)
	} else if !b.enabled.Load() && latest <= enableThreshold {
		b.enabled.Store(true)
	}
}

func (b *Breaker) averageLocked() float64 {
	if len(b.window) == 0 {
		return 0
	}
	var sum int64
	for _, v := range b.window {
		sum += v
	}
	return float64(sum) / float64(len(b.window))
}

// CheckExposure reports whether adding addCents of new notional would
// keep total open exposure within the configured ceiling. A zero or
// negative MaxExposureCents disables the check (unbounded exposure).
func (b *Breaker) CheckExposure(currentExposureCents, addCents int64) bool {
	if b.maxExposure <= 0 {
		return true
	}
	return currentExposureCents+addCents <= b.maxExposure
}

// CheckLiquidity reports whether the resting size at the best level can
// fill the requested quantity without the order becoming the dominant
// share of depth.
func CheckLiquidity(requestedQty int, restingQty int64, maxShare float64) bool {
	if restingQty <= 0 {
		return false
	}
	if maxShare <= 0 || maxShare > 1 {
		maxShare = 1
	}
	return float64(requestedQty) <= float64(restingQty)*maxShare
}

// Trip forces the breaker open immediately, e.g. on a Fatal-kind error
// from another component.
func (b *Breaker) Trip() {
	b.enabled.Store(false)
}

// Reset forces the breaker closed and clears the rolling window. Intended
// for operator-initiated recovery, not automatic re-enable.
func (b *Breaker) Reset() {
	b.mu.Lock()
	b.window = nil
	b.mu.Unlock()
	b.enabled.Store(true)
}
