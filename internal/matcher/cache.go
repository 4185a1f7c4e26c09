package matcher

import (
	"fmt"
	"time"

	"github.com/brabsmit/sportsbook-arb/internal/domain"
	"github.com/brabsmit/sportsbook-arb/pkg/cache"
)

// titleCacheTTL bounds how long a parsed market title is trusted before
// CachingIndexBuilder re-parses it, so a ticker whose title is corrected
// upstream picks up the change within one cache generation instead of
// being stuck on a stale parse indefinitely.
const titleCacheTTL = 30 * time.Minute

type parsedTitle struct {
	away, home string
}

// CachingIndexBuilder rebuilds the matchup index every tick but memoizes
// each market's title parse, so a ticker whose title hasn't changed since
// the last refresh skips ParseTitle; tickerSide still runs on every build.
type CachingIndexBuilder struct {
	cache cache.Cache
}

// NewCachingIndexBuilder builds a CachingIndexBuilder backed by c.
func NewCachingIndexBuilder(c cache.Cache) *CachingIndexBuilder {
	return &CachingIndexBuilder{cache: c}
}

// Build is BuildIndex with the per-market title parse cached in b.cache.
func (b *CachingIndexBuilder) Build(sport string, markets []domain.ExchangeMarket, dateFn func(m domain.ExchangeMarket) string) *Index {
	idx := NewIndex()
	for _, m := range markets {
		date := dateFn(m)
		if date == "" {
			continue
		}

		pt, ok := b.parsedTitle(m)
		if !ok {
			continue
		}

		isAway, ok := tickerSide(m.Ticker, pt.away, pt.home)
		if !ok {
			continue
		}

		key := domain.NewMatchKey(sport, date, Normalize(pt.away), Normalize(pt.home))
		idx.Put(key, m, isAway)
	}
	return idx
}

func (b *CachingIndexBuilder) parsedTitle(m domain.ExchangeMarket) (parsedTitle, bool) {
	key := fmt.Sprintf("matchup-title:%s:%s", m.Ticker, m.Title)

	if v, ok := b.cache.Get(key); ok {
		if pt, ok := v.(parsedTitle); ok {
			return pt, true
		}
	}

	away, home, ok := ParseTitle(m.Title)
	if !ok {
		return parsedTitle{}, false
	}
	pt := parsedTitle{away: away, home: home}
	b.cache.Set(key, pt, titleCacheTTL)
	return pt, true
}
