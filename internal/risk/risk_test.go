package risk

import "testing"

func TestBreakerStartsEnabled(t *testing.T) {
	b := NewBreaker(Config{})
	if !b.Enabled() {
		t.Error("expected breaker to start enabled")
	}
}

func TestBreakerDisablesOnLargeTrade(t *testing.T) {
	b := NewBreaker(Config{DisableMultiplier: 2, MinAbsoluteCents: 100})
	for i := 0; i < 10; i++ {
		b.RecordTrade(500)
	}
	if !b.Enabled() {
		t.Fatal("expected breaker still enabled after steady trades")
	}
	b.RecordTrade(5000)
	if b.Enabled() {
		t.Error("expected breaker to disable after a trade far above average*multiplier")
	}
}

func TestBreakerReenablesBelowHysteresisThreshold(t *testing.T) {
	b := NewBreaker(Config{DisableMultiplier: 2, MinAbsoluteCents: 100, HysteresisRatio: 0.5})
	for i := 0; i < 10; i++ {
		b.RecordTrade(500)
	}
	b.RecordTrade(5000)
	if b.Enabled() {
		t.Fatal("expected disabled after large trade")
	}
	// Small trades bring the rolling average down; next trade should be
	// small enough relative to the new (lower) disable threshold to
	// re-enable.
	for i := 0; i < 20; i++ {
		b.RecordTrade(10)
	}
	if !b.Enabled() {
		t.Error("expected breaker to re-enable once recent trades are small")
	}
}

func TestCheckExposure(t *testing.T) {
	b := NewBreaker(Config{MaxExposureCents: 1000})
	if !b.CheckExposure(500, 400) {
		t.Error("expected 900 <= 1000 to pass")
	}
	if b.CheckExposure(500, 600) {
		t.Error("expected 1100 > 1000 to fail")
	}
}

func TestCheckExposureUnbounded(t *testing.T) {
	b := NewBreaker(Config{})
	if !b.CheckExposure(1_000_000, 1_000_000) {
		t.Error("expected unbounded exposure check to always pass")
	}
}

func TestCheckLiquidity(t *testing.T) {
	if !CheckLiquidity(10, 100, 0.5) {
		t.Error("expected 10 <= 50 to pass")
	}
	if CheckLiquidity(60, 100, 0.5) {
		t.Error("expected 60 > 50 to fail")
	}
	if CheckLiquidity(1, 0, 0.5) {
		t.Error("expected zero resting quantity to fail")
	}
}

func TestTripAndReset(t *testing.T) {
	b := NewBreaker(Config{})
	b.Trip()
	if b.Enabled() {
		t.Error("expected Trip to disable")
	}
	b.Reset()
	if !b.Enabled() {
		t.Error("expected Reset to re-enable")
	}
}
