// Package journal persists every buy order the engine submits, filled or
// resting, so positions and P&L can be audited after the fact; exit
// orders are not recorded. It follows the same
// Postgres-or-console duality the rest of the stack uses: a Postgres
// journal in production, a console journal when no database is
// configured (local runs, smoke tests).
package journal

import (
	"context"
	"time"

	"github.com/brabsmit/sportsbook-arb/internal/domain"
)

// Entry is one recorded order submission.
type Entry struct {
	Ticker     string
	Side       domain.Side
	Action     domain.Action
	Quantity   int
	PriceCents int
	FeeCents   int64
	IsTaker    bool
	Timestamp  time.Time
}

// Journal records order submissions as they happen.
type Journal interface {
	Record(ctx context.Context, e Entry) error
	Close() error
}
