// Package bailout implements the emergency liquidation controller: once
// a losing position is close enough to expiry that it can no longer be
// expected to recover, it is closed immediately via an IOC order rather
// than held to settlement.
package bailout

import "github.com/brabsmit/sportsbook-arb/internal/domain"

// Config controls when a position qualifies for bailout.
type Config struct {
	TriggerPct          float64 // e.g. 20.0 means bail out once unrealized loss exceeds 20% of cost basis
	HoursBeforeExpiry   float64 // only bail out within this many hours of expiration
}

// Decision is the bailout controller's verdict for one position.
type Decision struct {
	ShouldBail  bool
	PnLFraction float64
	ExitPrice   int // IOC limit price to submit: the mark price computed for the held side
}

// Evaluate decides whether a held position should be liquidated now.
// hoursToExpiry is expected to be non-negative; a position already past
// expiry is handled by settlement, not bailout.
func Evaluate(pos domain.Position, currentYesBid, currentNoBid int, hoursToExpiry float64, cfg Config) Decision {
	if pos.Quantity <= 0 || pos.CostBasis <= 0 {
		return Decision{}
	}
	if hoursToExpiry > cfg.HoursBeforeExpiry {
		return Decision{}
	}

	// Mark-to-market value of the position at the current best bid on
	// its own side. A NO position's bailout bid is derived as
	// 100 - yes_bid when the market only quotes a YES side directly,
	// since a resting YES bid at p is equivalent to a resting NO ask at
	// 100-p (and thus a NO bid exists wherever a YES ask does).
	var markCents int
	if pos.Side == domain.Yes {
		markCents = currentYesBid
	} else {
		if currentNoBid > 0 {
			markCents = currentNoBid
		} else {
			markCents = 100 - currentYesBid
		}
	}

	markValue := int64(markCents) * int64(pos.Quantity)
	pnl := markValue - pos.CostBasis
	pnlFraction := float64(pnl) / float64(pos.CostBasis)

	if pnlFraction >= -cfg.TriggerPct/100 {
		return Decision{PnLFraction: pnlFraction}
	}

	return Decision{
		ShouldBail:  true,
		PnLFraction: pnlFraction,
		ExitPrice:   markCents,
	}
}
