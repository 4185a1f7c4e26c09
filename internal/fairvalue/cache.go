package fairvalue

import (
	"context"
	"fmt"
	"time"

	"github.com/brabsmit/sportsbook-arb/internal/domain"
	"github.com/brabsmit/sportsbook-arb/pkg/cache"
)

// CachedProvider wraps another Provider with a short-TTL cache keyed by
// game and target team, so the engine's per-tick re-evaluation of every
// tracked market and every held position's auto-close quote doesn't
// recompute the devig (or re-hit a score model) for a game whose odds
// haven't moved since the last poll.
type CachedProvider struct {
	inner Provider
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedProvider builds a CachedProvider around inner, caching results
// in c for ttl.
func NewCachedProvider(inner Provider, c cache.Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{inner: inner, cache: c, ttl: ttl}
}

func fairValueCacheKey(game domain.OddsGame, targetTeam string) string {
	return fmt.Sprintf("fv:%s:%s", game.ID, targetTeam)
}

// FairValue returns the cached result for (game, targetTeam) if one is
// still fresh, otherwise delegates to inner and caches the outcome.
// Errors from inner are never cached, so a transient fetch failure
// doesn't wedge the engine out of pricing a side for the rest of the TTL.
func (p *CachedProvider) FairValue(ctx context.Context, game domain.OddsGame, targetTeam string) (Result, error) {
	key := fairValueCacheKey(game, targetTeam)
	if v, ok := p.cache.Get(key); ok {
		if res, ok := v.(Result); ok {
			return res, nil
		}
	}

	res, err := p.inner.FairValue(ctx, game, targetTeam)
	if err != nil {
		return Result{}, err
	}
	p.cache.Set(key, res, p.ttl)
	return res, nil
}
