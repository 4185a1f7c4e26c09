package staleness

import (
	"testing"
	"time"
)

func TestNeverTouchedIsNotFresh(t *testing.T) {
	tr := NewTracker(map[string]time.Duration{"orderbook": time.Second})
	if tr.FetchFresh("orderbook") {
		t.Error("expected FetchFresh false before any Touch")
	}
	if tr.DataFresh("orderbook") {
		t.Error("expected DataFresh false before any Touch")
	}
	if tr.Fresh("orderbook") {
		t.Error("expected Fresh false before any Touch")
	}
}

func TestFreshAfterTouch(t *testing.T) {
	tr := NewTracker(map[string]time.Duration{"orderbook": time.Minute})
	frozen := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return frozen }

	tr.Touch("orderbook")
	if !tr.FetchFresh("orderbook") {
		t.Error("expected FetchFresh true after Touch")
	}
	if !tr.DataFresh("orderbook") {
		t.Error("expected DataFresh true immediately after Touch")
	}
}

func TestStaleAfterHorizonElapses(t *testing.T) {
	tr := NewTracker(map[string]time.Duration{"orderbook": time.Minute})
	frozen := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return frozen }
	tr.Touch("orderbook")

	tr.now = func() time.Time { return frozen.Add(2 * time.Minute) }
	if tr.DataFresh("orderbook") {
		t.Error("expected DataFresh false once horizon has elapsed")
	}
	if tr.Fresh("orderbook") {
		t.Error("expected Fresh false once horizon has elapsed")
	}
	if !tr.FetchFresh("orderbook") {
		t.Error("FetchFresh should remain true once a fetch has ever succeeded")
	}
}

func TestSourceWithNoHorizonAlwaysFreshOnceTouched(t *testing.T) {
	tr := NewTracker(nil)
	tr.Touch("odds_feed")
	if !tr.DataFresh("odds_feed") {
		t.Error("expected unconfigured source to be fresh once touched")
	}
}

func TestAge(t *testing.T) {
	tr := NewTracker(nil)
	if _, ok := tr.Age("x"); ok {
		t.Error("expected Age ok=false before Touch")
	}
	frozen := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return frozen }
	tr.Touch("x")
	tr.now = func() time.Time { return frozen.Add(5 * time.Second) }
	age, ok := tr.Age("x")
	if !ok || age != 5*time.Second {
		t.Errorf("Age = %v, ok=%v, want 5s, true", age, ok)
	}
}
