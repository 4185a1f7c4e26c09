package fairvalue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/brabsmit/sportsbook-arb/internal/domain"
)

// fakeCache is a minimal in-memory cache.Cache for testing, with no TTL
// expiry (tests control freshness explicitly via Delete/Clear).
type fakeCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]interface{})}
}

func (c *fakeCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value interface{}, _ time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return true
}

func (c *fakeCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *fakeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]interface{})
}

func (c *fakeCache) Close() {}

type countingProvider struct {
	calls int
	res   Result
	err   error
}

func (p *countingProvider) FairValue(_ context.Context, _ domain.OddsGame, _ string) (Result, error) {
	p.calls++
	return p.res, p.err
}

func TestCachedProvider_SecondCallIsCached(t *testing.T) {
	inner := &countingProvider{res: Result{FairValueCents: 55, BookmakerCount: 2}}
	p := NewCachedProvider(inner, newFakeCache(), time.Minute)
	game := gameWith(bookmaker("book-a", -110, -110))

	first, err := p.FairValue(context.Background(), game, "X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.FairValue(context.Background(), game, "X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner.calls = %d, want 1 (second call should hit cache)", inner.calls)
	}
	if first != second {
		t.Errorf("cached result mismatch: %+v != %+v", first, second)
	}
}

func TestCachedProvider_DifferentTargetTeamMisses(t *testing.T) {
	inner := &countingProvider{res: Result{FairValueCents: 55}}
	p := NewCachedProvider(inner, newFakeCache(), time.Minute)
	game := gameWith(bookmaker("book-a", -110, -110))

	if _, err := p.FairValue(context.Background(), game, "X"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.FairValue(context.Background(), game, "Y"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.calls != 2 {
		t.Errorf("inner.calls = %d, want 2 (different target team should miss cache)", inner.calls)
	}
}

func TestCachedProvider_ErrorNotCached(t *testing.T) {
	innerErr := &countingProvider{err: context.DeadlineExceeded}
	p := NewCachedProvider(innerErr, newFakeCache(), time.Minute)
	game := gameWith(bookmaker("book-a", -110, -110))

	if _, err := p.FairValue(context.Background(), game, "X"); err == nil {
		t.Fatal("expected error to propagate")
	}
	if _, err := p.FairValue(context.Background(), game, "X"); err == nil {
		t.Fatal("expected error to propagate again, not a cached nil error")
	}
	if innerErr.calls != 2 {
		t.Errorf("inner.calls = %d, want 2 (errors should never be cached)", innerErr.calls)
	}
}
