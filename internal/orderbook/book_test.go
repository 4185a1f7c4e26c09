package orderbook

import (
	"testing"

	"go.uber.org/zap"
)

func TestApplySnapshotAndBestLevels(t *testing.T) {
	m := NewManager(zap.NewNop(), 8)
	m.ApplySnapshot("TICKER-1",
		[]Level{{PriceCents: 40, Quantity: 10}, {PriceCents: 45, Quantity: 5}},
		[]Level{{PriceCents: 50, Quantity: 20}},
	)

	bid, ok := m.BestBidFor("TICKER-1", "yes")
	if !ok || bid.PriceCents != 45 || bid.Quantity != 5 {
		t.Fatalf("BestBid(yes) = %+v, ok=%v", bid, ok)
	}

	ask, ok := m.BestAskFor("TICKER-1", "yes")
	if !ok || ask.PriceCents != 50 {
		t.Fatalf("BestAsk(yes) = %+v, ok=%v", ask, ok)
	}

	select {
	case ticker := <-m.Updates():
		if ticker != "TICKER-1" {
			t.Errorf("notified ticker = %q, want TICKER-1", ticker)
		}
	default:
		t.Fatal("expected a notification after ApplySnapshot")
	}
}

func TestApplyDeltaAddAndRemove(t *testing.T) {
	m := NewManager(zap.NewNop(), 8)
	m.ApplySnapshot("TICKER-1", []Level{{PriceCents: 40, Quantity: 10}}, nil)
	<-m.Updates()

	if err := m.ApplyDelta("TICKER-1", "yes", 40, 5); err != nil {
		t.Fatalf("ApplyDelta add: %v", err)
	}
	snap, _ := m.Snapshot("TICKER-1")
	if snap.YesLevels[40] != 15 {
		t.Errorf("qty after add = %d, want 15", snap.YesLevels[40])
	}

	if err := m.ApplyDelta("TICKER-1", "yes", 40, -20); err != nil {
		t.Fatalf("ApplyDelta remove: %v", err)
	}
	snap, _ = m.Snapshot("TICKER-1")
	if _, exists := snap.YesLevels[40]; exists {
		t.Error("expected level to be removed once quantity drops to zero")
	}
}

func TestApplyDeltaUnknownSide(t *testing.T) {
	m := NewManager(zap.NewNop(), 8)
	if err := m.ApplyDelta("TICKER-1", "maybe", 40, 5); err == nil {
		t.Fatal("expected error for unknown side")
	}
}

func TestUpdateChannelDropsWhenFull(t *testing.T) {
	m := NewManager(zap.NewNop(), 1)
	m.ApplySnapshot("A", []Level{{PriceCents: 10, Quantity: 1}}, nil)
	m.ApplySnapshot("B", []Level{{PriceCents: 10, Quantity: 1}}, nil)

	<-m.Updates()
	select {
	case <-m.Updates():
		t.Fatal("expected second notification to have been dropped")
	default:
	}
}

func TestRemove(t *testing.T) {
	m := NewManager(zap.NewNop(), 8)
	m.ApplySnapshot("TICKER-1", []Level{{PriceCents: 10, Quantity: 1}}, nil)
	m.Remove("TICKER-1")
	if _, ok := m.Snapshot("TICKER-1"); ok {
		t.Error("expected ticker to be removed")
	}
}
