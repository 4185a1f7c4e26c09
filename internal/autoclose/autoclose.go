// Package autoclose implements the resting-exit controller: once a
// position is open, it quotes an exit price derived from the current
// fair value and the position's own break-even price, whichever is
// higher, marked up by a fixed percentage margin.
package autoclose

import "github.com/brabsmit/sportsbook-arb/internal/fees"

// Config controls the exit quote.
type Config struct {
	MarginPct float64 // e.g. 2.0 for a 2% markup on top of max(fair_value, break_even)
}

// Quote is the autoclose controller's recommended resting sell price.
type Quote struct {
	PriceCents int
	BreakEven  int
}

// Evaluate computes the exit quote for a held position: the higher of
// its current fair value or its fee-aware break-even price, marked up
// by the configured percentage, clamped to the valid [1..99] trading range.
func Evaluate(fairValueCents int, entryCostCents int64, qty int, isTakerExit bool, cfg Config) Quote {
	breakEven := fees.BreakEvenSellPrice(entryCostCents, qty, isTakerExit)

	base := fairValueCents
	if breakEven > base {
		base = breakEven
	}

	price := int(float64(base) * (1 + cfg.MarginPct/100))
	if price > 99 {
		price = 99
	}
	if price < 1 {
		price = 1
	}
	return Quote{PriceCents: price, BreakEven: breakEven}
}
