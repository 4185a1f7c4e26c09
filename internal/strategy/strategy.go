// Package strategy is the decision tree that turns a fair-value estimate
// and the current order book into a buy/skip decision with a sized
// quantity. Sizing combines Kelly-criterion position sizing with a
// constant cent-denominated slippage buffer; the buffer is fixed rather
// than scaled to recent volatility because a wider buffer in a volatile
// market only waters down the edge it's supposed to protect.
package strategy

import (
	"math"

	"github.com/brabsmit/sportsbook-arb/internal/domain"
	"github.com/brabsmit/sportsbook-arb/internal/fees"
)

// Config holds the evaluator's tunables.
type Config struct {
	SlippageBufferCents int
	TakerEdgeCents      int     // effective edge at/above which a taker candidate is considered
	MakerEdgeCents      int     // effective edge at/above which a maker candidate is considered; below this, skip outright
	MinEdgeAfterFees    int     // minimum net profit estimate (in cents) required for either path to be taken
	KellyFractionCap    float64 // cap on Kelly's suggested fraction of bankroll, e.g. 0.25 for quarter-Kelly
	MaxQuantityPerTrade int
	MaxLiquidityShare   float64 // fraction of resting depth a single order may consume
}

// Input is one tick's worth of market state for a single ticker.
type Input struct {
	Ticker         string
	FairValueCents int
	YesAskCents    int
	YesAskQty      int64
	YesBidCents    int
	YesBidQty      int64
	BankrollCents  int64
}

// Evaluate runs the decision tree: first gate on the slippage-adjusted
// edge, then separately price and size a taker candidate (cross the
// ask) and a maker candidate (rest one cent above the bid), preferring
// the taker path when both its edge and profit thresholds clear.
func Evaluate(in Input, cfg Config) domain.StrategySignal {
	if in.YesAskCents <= 0 || in.YesAskCents >= 100 || in.YesAskQty <= 0 {
		return domain.StrategySignal{Ticker: in.Ticker, Action: domain.Skip}
	}

	rawEdge := in.FairValueCents - in.YesAskCents
	effectiveEdge := rawEdge - cfg.SlippageBufferCents

	if effectiveEdge < cfg.MakerEdgeCents {
		return domain.StrategySignal{Ticker: in.Ticker, Action: domain.Skip, EdgeCents: rawEdge}
	}

	if effectiveEdge >= cfg.TakerEdgeCents {
		qty := kellySize(in, cfg, in.YesAskCents, in.YesAskQty)
		if qty > 0 {
			takerEntryFee := fees.Taker(in.YesAskCents, qty)
			makerExitFee := fees.Maker(clampPrice(in.FairValueCents), qty)
			profit := (in.FairValueCents-in.YesAskCents)*qty - int(takerEntryFee) - int(makerExitFee) - cfg.SlippageBufferCents*qty
			if profit >= cfg.MinEdgeAfterFees {
				return domain.StrategySignal{
					Ticker:                 in.Ticker,
					Action:                 domain.TakerBuy,
					Price:                  domain.Cents(in.YesAskCents),
					Quantity:               qty,
					EdgeCents:              rawEdge,
					NetProfitEstimateCents: profit,
				}
			}
		}
	}

	makerPrice := in.YesBidCents + 1
	if makerPrice > 99 {
		makerPrice = 99
	}
	qty := kellySize(in, cfg, makerPrice, in.YesBidQty)
	if qty > 0 {
		makerEntryFee := fees.Maker(makerPrice, qty)
		makerExitFee := fees.Maker(clampPrice(in.FairValueCents), qty)
		profit := (in.FairValueCents-makerPrice)*qty - int(makerEntryFee) - int(makerExitFee)
		if profit >= cfg.MinEdgeAfterFees {
			return domain.StrategySignal{
				Ticker:                 in.Ticker,
				Action:                 domain.MakerBuy,
				Price:                  domain.Cents(makerPrice),
				Quantity:               qty,
				EdgeCents:              rawEdge,
				NetProfitEstimateCents: profit,
			}
		}
	}

	return domain.StrategySignal{Ticker: in.Ticker, Action: domain.Skip, EdgeCents: rawEdge}
}

func clampPrice(p int) int {
	if p < 1 {
		return 1
	}
	if p > 99 {
		return 99
	}
	return p
}

// kellySize applies Kelly-criterion sizing at the given candidate price,
// capped by the configured fraction cap, available bankroll, resting
// liquidity at that side, and the configured max-quantity ceiling.
func kellySize(in Input, cfg Config, priceCents int, availableQty int64) int {
	if priceCents <= 0 || priceCents >= 100 {
		return 0
	}
	p := float64(in.FairValueCents) / 100.0
	q := 1 - p

	winCents := float64(100 - priceCents)
	lossCents := float64(priceCents)
	b := winCents / lossCents

	kelly := (b*p - q) / b
	if kelly <= 0 {
		return 0
	}

	cap := cfg.KellyFractionCap
	if cap <= 0 || cap > 1 {
		cap = 1
	}
	if kelly > cap {
		kelly = cap
	}

	bankrollQty := math.Floor(kelly * float64(in.BankrollCents) / float64(priceCents))
	qty := int(bankrollQty)

	share := cfg.MaxLiquidityShare
	if share <= 0 || share > 1 {
		share = 1
	}
	liquidityQty := int(math.Floor(float64(availableQty) * share))
	if liquidityQty < qty {
		qty = liquidityQty
	}

	if cfg.MaxQuantityPerTrade > 0 && qty > cfg.MaxQuantityPerTrade {
		qty = cfg.MaxQuantityPerTrade
	}
	if qty < 0 {
		qty = 0
	}
	return qty
}
