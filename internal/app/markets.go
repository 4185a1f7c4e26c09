package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/brabsmit/sportsbook-arb/internal/domain"
	"github.com/brabsmit/sportsbook-arb/internal/kalshi"
	"github.com/brabsmit/sportsbook-arb/internal/matcher"
)

// staleTouch records that fresh data was just received from source.
func (a *App) staleTouch(source string) {
	a.staleTracker.Touch(source)
}

// staleFresh reports whether source has ever been touched and is still
// within its configured staleness horizon.
func (a *App) staleFresh(source string) bool {
	return a.staleTracker.Fresh(source)
}

// matchDate extracts the UTC calendar date used as the date component of
// a match key. Both exchange markets (via their expiration time) and
// odds-feed games (via commence time) are keyed by this same format so
// the two sides of a matchup collide.
func matchDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func toExchangeMarket(m kalshi.Market) domain.ExchangeMarket {
	expiry, _ := m.ExpirationParsed()
	return domain.ExchangeMarket{
		Ticker:         m.Ticker,
		Title:          m.Title,
		Series:         m.SeriesTicker,
		ExpirationTime: expiry,
		YesBid:         domain.Cents(m.YesBid),
		YesAsk:         domain.Cents(m.YesAsk),
		NoBid:          domain.Cents(m.NoBid),
		NoAsk:          domain.Cents(m.NoAsk),
		Volume:         m.Volume,
	}
}

// refreshMatching polls the exchange's market list and the odds source,
// rebuilds the matchup index, and updates the set of tracked tickers.
// Newly-tracked tickers are subscribed on the WebSocket feed; Feed itself
// applies the resulting snapshots/deltas.
func (a *App) refreshMatching(ctx context.Context) error {
	wireMarkets, err := a.exchangeClient.GetMarkets(ctx, a.seriesTicker, "open")
	if err != nil {
		return err
	}
	a.staleTouch("markets")

	markets := make([]domain.ExchangeMarket, 0, len(wireMarkets))
	volumeByTicker := make(map[string]int64, len(wireMarkets))
	for _, m := range wireMarkets {
		em := toExchangeMarket(m)
		markets = append(markets, em)
		volumeByTicker[em.Ticker] = em.Volume
	}

	idx := a.indexBuilder.Build(a.sport, markets, func(m domain.ExchangeMarket) string {
		return matchDate(m.ExpirationTime)
	})

	games, quota, err := a.oddsClient.FetchGames(ctx, a.sport, a.cfg.OddsRegion)
	if err != nil {
		return err
	}
	a.staleTouch("odds")
	a.logger.Debug("odds quota", zap.Int("remaining", quota.Remaining), zap.Int("used", quota.Used))

	prev := a.trackedSnapshotMap()
	next := make(map[string]trackedMarket)
	var newTickers []string

	for _, game := range games {
		key := domain.NewMatchKey(a.sport, matchDate(game.CommenceTime), matcher.Normalize(game.AwayTeam), matcher.Normalize(game.HomeTeam))
		entry, ok := idx.Lookup(key)
		if !ok {
			continue
		}
		for _, team := range []string{game.HomeTeam, game.AwayTeam} {
			market, inverted, ok := matcher.ResolveSide(entry, team, game.HomeTeam)
			if !ok {
				continue
			}
			tm := trackedMarket{
				Ticker:         market.Ticker,
				Sport:          a.sport,
				TargetTeam:     team,
				HomeTeam:       game.HomeTeam,
				Inverted:       inverted,
				Volume:         volumeByTicker[market.Ticker],
				ExpirationTime: market.ExpirationTime,
				Game:           game,
			}
			next[market.Ticker] = tm
			if _, already := prev[market.Ticker]; !already {
				newTickers = append(newTickers, market.Ticker)
			}
		}
	}

	a.trackedMu.Lock()
	a.tracked = next
	a.trackedMu.Unlock()

	if len(newTickers) > 0 {
		if err := a.wsFeed.Subscribe(newTickers); err != nil {
			a.logger.Error("subscribe-failed", zap.Strings("tickers", newTickers), zap.Error(err))
		} else {
			a.logger.Info("subscribed-to-tickers", zap.Strings("tickers", newTickers))
		}
	}

	return nil
}

func (a *App) trackedSnapshotMap() map[string]trackedMarket {
	a.trackedMu.RLock()
	defer a.trackedMu.RUnlock()
	out := make(map[string]trackedMarket, len(a.tracked))
	for k, v := range a.tracked {
		out[k] = v
	}
	return out
}

func (a *App) trackedSnapshot() []trackedMarket {
	a.trackedMu.RLock()
	defer a.trackedMu.RUnlock()
	out := make([]trackedMarket, 0, len(a.tracked))
	for _, tm := range a.tracked {
		out = append(out, tm)
	}
	return out
}

func (a *App) trackedByTicker(ticker string) (trackedMarket, bool) {
	a.trackedMu.RLock()
	defer a.trackedMu.RUnlock()
	tm, ok := a.tracked[ticker]
	return tm, ok
}
