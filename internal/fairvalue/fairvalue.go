// Package fairvalue computes a vig-free fair-value probability for a game
// side from multi-bookmaker American odds, behind a Provider interface so
// the engine can swap in an alternative pricing source per sport without a
// type switch at the call site.
package fairvalue

import (
	"context"
	"fmt"
	"math"

	"github.com/brabsmit/sportsbook-arb/internal/domain"
	"github.com/brabsmit/sportsbook-arb/internal/errkind"
	"github.com/shopspring/decimal"
)

// maxSpread is the maximum tolerated disagreement between bookmakers'
// vig-free probabilities before the signal is rejected as noisy.
const maxSpread = 0.15

// Result is what a Provider returns for one (game, target side) pair.
type Result struct {
	FairValueCents int
	BookmakerCount int
	Spread         float64
}

// Provider produces a fair value for a target side of a game.
type Provider interface {
	FairValue(ctx context.Context, game domain.OddsGame, targetTeam string) (Result, error)
}

// OddsDevigProvider implements the multi-book devig algorithm.
type OddsDevigProvider struct{}

// NewOddsDevigProvider constructs the default devig-based provider.
func NewOddsDevigProvider() *OddsDevigProvider {
	return &OddsDevigProvider{}
}

// americanToImplied converts an American odds price to an implied
// probability using exact decimal arithmetic.
func americanToImplied(price int) decimal.Decimal {
	o := decimal.NewFromInt(int64(price))
	hundred := decimal.NewFromInt(100)
	if price > 0 {
		return hundred.Div(o.Add(hundred))
	}
	abs := o.Abs()
	return abs.Div(abs.Add(hundred))
}

// FairValue implements Provider by devigging each bookmaker's head-to-head
// market independently, then averaging the per-book vig-free probabilities
// for the target team.
func (p *OddsDevigProvider) FairValue(_ context.Context, game domain.OddsGame, targetTeam string) (Result, error) {
	if len(game.Bookmakers) == 0 {
		return Result{}, errkind.New(errkind.Logical, "no bookmakers for game")
	}

	probs := make([]float64, 0, len(game.Bookmakers))

	for _, bk := range game.Bookmakers {
		if len(bk.Outcomes) == 0 {
			continue
		}

		sum := decimal.Zero
		var targetImplied decimal.Decimal
		found := false

		for _, o := range bk.Outcomes {
			implied := americanToImplied(o.Price)
			sum = sum.Add(implied)
			if o.Name == targetTeam {
				targetImplied = implied
				found = true
			}
		}

		if !found || sum.IsZero() {
			continue
		}

		vigFree := targetImplied.Div(sum)
		f, _ := vigFree.Float64()
		probs = append(probs, f)
	}

	if len(probs) == 0 {
		return Result{}, errkind.New(errkind.Logical, fmt.Sprintf("no bookmaker quoted target team %q", targetTeam))
	}

	minP, maxP, sumP := probs[0], probs[0], 0.0
	for _, pr := range probs {
		if pr < minP {
			minP = pr
		}
		if pr > maxP {
			maxP = pr
		}
		sumP += pr
	}
	avg := sumP / float64(len(probs))
	spread := maxP - minP

	if spread > maxSpread {
		return Result{}, errkind.Wrap(errkind.Logical, "spread too high", fmt.Errorf("spread=%.4f > %.4f", spread, maxSpread))
	}

	fv := int(math.Round(avg * 100))
	if fv < 1 {
		fv = 1
	}
	if fv > 99 {
		fv = 99
	}

	return Result{
		FairValueCents: fv,
		BookmakerCount: len(probs),
		Spread:         spread,
	}, nil
}
