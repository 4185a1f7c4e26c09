// Package position owns the authoritative per-ticker position ledger and
// its reconciliation against the exchange's reported balances.
// Reconciliation retries with exponential backoff and treats
// persistent fetch failure as fatal, since a wrong position size is the
// single most dangerous state the engine can trade from.
package position

import (
	"context"
	"sync"
	"time"

	"github.com/brabsmit/sportsbook-arb/internal/domain"
	"github.com/brabsmit/sportsbook-arb/internal/errkind"
	"go.uber.org/zap"
)

const (
	reconcileBaseDelay = time.Second
	reconcileMaxDelay  = 30 * time.Second
	reconcileMaxTries  = 3
)

// Ledger is the in-memory, mutex-guarded position book.
type Ledger struct {
	mu   sync.RWMutex
	byTk map[string]domain.Position
}

// NewLedger builds an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{byTk: make(map[string]domain.Position)}
}

// Get returns the current position for a ticker, or the zero value if
// none is held.
func (l *Ledger) Get(ticker string) domain.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.byTk[ticker]
}

// All returns a snapshot of every held position.
func (l *Ledger) All() []domain.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Position, 0, len(l.byTk))
	for _, p := range l.byTk {
		out = append(out, p)
	}
	return out
}

// ApplyFill folds a fill into the ledger: a new position is opened at the
// fill price, or an existing one has its average price, cost basis, and
// fees paid updated proportionally.
func (l *Ledger) ApplyFill(ticker string, side domain.Side, qty int, priceCents domain.Cents, feeCents int64, expirationTime time.Time) domain.Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.byTk[ticker]
	if !ok {
		pos = domain.Position{
			Ticker:         ticker,
			Side:           side,
			ExpirationTime: expirationTime,
		}
	}

	newQty := pos.Quantity + qty
	newCost := pos.CostBasis + int64(priceCents)*int64(qty)
	if newQty > 0 {
		pos.AvgPrice = domain.Cents(newCost / int64(newQty))
	}
	pos.Quantity = newQty
	pos.CostBasis = newCost
	pos.FeesPaid += feeCents
	pos.Side = side
	pos.ExpirationTime = expirationTime

	l.byTk[ticker] = pos
	return pos
}

// Settle marks a position settled and records its realized PNL.
func (l *Ledger) Settle(ticker string, realizedPNL int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pos, ok := l.byTk[ticker]
	if !ok {
		return
	}
	pos.SettlementStatus = domain.Settled
	pos.RealizedPNL = realizedPNL
	l.byTk[ticker] = pos
}

// ExchangePosition is the exchange's own report of held quantity for a
// ticker, used as the source of truth during reconciliation.
type ExchangePosition struct {
	Ticker   string
	Quantity int
}

// FetchPositions fetches the exchange's authoritative positions.
type FetchPositions func(ctx context.Context) ([]ExchangePosition, error)

// Reconciler compares the local ledger against exchange-reported
// positions on startup (and periodically) and fixes local drift.
type Reconciler struct {
	ledger *Ledger
	fetch  FetchPositions
	logger *zap.Logger
}

// NewReconciler builds a Reconciler.
func NewReconciler(ledger *Ledger, fetch FetchPositions, logger *zap.Logger) *Reconciler {
	return &Reconciler{ledger: ledger, fetch: fetch, logger: logger}
}

// Reconcile fetches exchange positions with exponential backoff (1s, then
// 2s between the three attempts; the doubling is capped at 30s) and overwrites local quantities that disagree. After
// reconcileMaxTries consecutive fetch failures it returns a Fatal error:
// the engine must not trade against a ledger it cannot verify.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	delay := reconcileBaseDelay
	var lastErr error

	for attempt := 1; attempt <= reconcileMaxTries; attempt++ {
		positions, err := r.fetch(ctx)
		if err == nil {
			r.applyLocked(positions)
			return nil
		}
		lastErr = err
		if r.logger != nil {
			r.logger.Warn("position reconciliation fetch failed",
				zap.Int("attempt", attempt), zap.Error(err))
		}
		if attempt == reconcileMaxTries {
			break
		}
		select {
		case <-ctx.Done():
			return errkind.Wrap(errkind.Fatal, "reconciliation aborted", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
		if delay > reconcileMaxDelay {
			delay = reconcileMaxDelay
		}
	}

	return errkind.Wrap(errkind.Fatal, "position reconciliation failed after retries", lastErr)
}

func (r *Reconciler) applyLocked(positions []ExchangePosition) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	seen := make(map[string]bool, len(positions))
	for _, ep := range positions {
		seen[ep.Ticker] = true
		local := r.ledger.byTk[ep.Ticker]
		if local.Quantity != ep.Quantity {
			if r.logger != nil {
				r.logger.Warn("position drift corrected",
					zap.String("ticker", ep.Ticker),
					zap.Int("local_qty", local.Quantity),
					zap.Int("exchange_qty", ep.Quantity))
			}
			local.Quantity = ep.Quantity
			local.Ticker = ep.Ticker
			r.ledger.byTk[ep.Ticker] = local
		}
	}
	for ticker, local := range r.ledger.byTk {
		if !seen[ticker] && local.Quantity != 0 {
			if r.logger != nil {
				r.logger.Warn("local position has no exchange counterpart, zeroing",
					zap.String("ticker", ticker))
			}
			local.Quantity = 0
			r.ledger.byTk[ticker] = local
		}
	}
}
