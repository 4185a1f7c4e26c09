package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/brabsmit/sportsbook-arb/internal/autoclose"
	"github.com/brabsmit/sportsbook-arb/internal/bailout"
	"github.com/brabsmit/sportsbook-arb/internal/domain"
	"github.com/brabsmit/sportsbook-arb/internal/errkind"
	"github.com/brabsmit/sportsbook-arb/internal/journal"
	"github.com/brabsmit/sportsbook-arb/internal/strategy"
)

const reconcileInterval = 5 * time.Second

// runEngine is the tick loop: it polls matchings, evaluates the
// strategy against every tracked market, manages resting exits and
// emergency bailouts on held positions, and periodically reconciles the
// ledger against the exchange. It returns once the kill switch fires or
// ctx is cancelled.
func (a *App) runEngine(ctx context.Context) {
	defer a.wg.Done()

	matchTicker := time.NewTicker(a.pollInterval())
	defer matchTicker.Stop()

	if err := a.refreshMatching(ctx); err != nil {
		a.logger.Error("initial-matching-refresh-failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-a.killCh:
			a.engineKill()
			return

		case <-matchTicker.C:
			a.expirePendingOrders(ctx)

			if time.Since(a.lastReconcile) >= reconcileInterval {
				if err := a.reconciler.Reconcile(ctx); err != nil {
					if errkind.Is(err, errkind.Fatal) {
						a.logger.Error("reconciliation-fatal-pausing", zap.Error(err))
						a.riskBreaker.Trip()
					}
				}
				a.lastReconcile = time.Now()
			}

			if err := a.refreshMatching(ctx); err != nil {
				a.logger.Error("matching-refresh-failed", zap.Error(err))
			}

			if a.paused.Load() {
				continue
			}

			a.evaluateTrackedMarkets(ctx)
			a.runAutoClose(ctx)
			a.runBailout(ctx)

			// Turbo mode shortens the poll interval once any position is
			// open; re-evaluated every tick since holding a position can
			// start or end between ticks.
			matchTicker.Reset(a.pollInterval())
		}
	}
}

// pollInterval selects the tick cadence: the faster turbo interval once
// any position is held (so exits and bailouts are evaluated promptly),
// the normal interval otherwise.
func (a *App) pollInterval() time.Duration {
	if a.cfg.TurboModeEnabled && len(a.posLedger.All()) > 0 {
		return a.cfg.PollIntervalTurbo
	}
	return a.cfg.PollIntervalNormal
}

// engineKill implements the kill-switch ordering guarantee: trading is
// paused first, every pending order is drained from the
// registry and cancelled on the exchange, and only then does the loop
// terminate. No new order may be submitted once the kill signal has been
// observed.
func (a *App) engineKill() {
	a.logger.Warn("kill-switch-triggered")
	a.paused.Store(true)

	cancelCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, po := range a.registry.Drain() {
		if po.OrderID == "" {
			continue
		}
		if err := a.executor.Cancel(cancelCtx, po.OrderID); err != nil {
			a.logger.Error("kill-switch-cancel-failed",
				zap.String("ticker", po.Ticker), zap.String("order_id", po.OrderID), zap.Error(err))
		}
	}
}

// expirePendingOrders expires registry entries older than the configured
// order timeout and cancels those that carry an exchange order ID; entries
// that were never ACKed are only dropped from the registry.
func (a *App) expirePendingOrders(ctx context.Context) {
	for _, po := range a.registry.ExpireOlderThan(a.cfg.OrderTimeout) {
		if po.OrderID == "" {
			continue
		}
		if err := a.executor.Cancel(ctx, po.OrderID); err != nil {
			a.logger.Error("expired-order-cancel-failed",
				zap.String("ticker", po.Ticker), zap.String("order_id", po.OrderID), zap.Error(err))
		}
	}
}

// evaluateTrackedMarkets runs the strategy decision tree over every
// tracked market with fresh data and a live order book, gated by the
// risk manager and the exposure breaker, and submits any resulting buy.
func (a *App) evaluateTrackedMarkets(ctx context.Context) {
	if !a.staleFresh("odds") || !a.staleFresh("markets") {
		return
	}
	if !a.riskBreaker.Enabled() {
		return
	}

	for _, tm := range a.trackedSnapshot() {
		a.evaluateOne(ctx, tm)
	}
}

func (a *App) evaluateOne(ctx context.Context, tm trackedMarket) {
	if existing := a.posLedger.Get(tm.Ticker); existing.Quantity > 0 {
		return
	}
	if _, pending := a.registry.Get(tm.Ticker); pending {
		return
	}

	book, ok := a.obManager.Snapshot(tm.Ticker)
	if !ok {
		return
	}
	yesAsk, hasAsk := book.BestAsk("yes")
	yesBid, hasBid := book.BestBid("yes")
	if !hasAsk || !hasBid {
		return
	}

	gate := a.riskMgr.CheckLiquidity(tm.Volume, yesBid.PriceCents, yesAsk.PriceCents)
	if !gate.Admitted {
		return
	}
	gate = a.riskMgr.Admit(tm.Ticker, tm.Sport)
	if !gate.Admitted {
		a.logger.Debug("admission-gate-rejected", zap.String("ticker", tm.Ticker), zap.String("gate", gate.Gate))
		return
	}

	fv, err := a.fvProvider.FairValue(ctx, tm.Game, tm.TargetTeam)
	if err != nil {
		a.logger.Debug("fair-value-unavailable", zap.String("ticker", tm.Ticker), zap.Error(err))
		return
	}
	fairValueCents := fv.FairValueCents
	if tm.Inverted {
		fairValueCents = 100 - fairValueCents
	}

	signal := strategy.Evaluate(strategy.Input{
		Ticker:         tm.Ticker,
		FairValueCents: fairValueCents,
		YesAskCents:    yesAsk.PriceCents,
		YesAskQty:      yesAsk.Quantity,
		YesBidCents:    yesBid.PriceCents,
		YesBidQty:      yesBid.Quantity,
		BankrollCents:  a.cfg.MaxAggregateExposureCents,
	}, a.strategyCfg)

	if signal.Action == domain.Skip {
		return
	}

	notional := int64(signal.Price) * int64(signal.Quantity)
	if !a.riskBreaker.CheckExposure(a.openExposureCents(), notional) {
		return
	}

	isTaker := signal.Action == domain.TakerBuy
	if !a.registry.TryRegister(tm.Ticker, signal.Quantity, signal.Price, isTaker) {
		return
	}

	ack, err := a.executor.Submit(ctx, tm.Ticker, domain.Yes, false, int(signal.Price), signal.Quantity, domain.Limit)
	if err != nil {
		a.registry.Complete(tm.Ticker)
		a.logger.Error("submit-failed", zap.String("ticker", tm.Ticker), zap.Error(err))
		return
	}

	a.riskMgr.Record(tm.Ticker, tm.Sport)
	a.riskBreaker.RecordTrade(notional)

	if err := a.journal.Record(ctx, journal.Entry{
		Ticker:     tm.Ticker,
		Side:       domain.Yes,
		Action:     signal.Action,
		Quantity:   signal.Quantity,
		PriceCents: int(signal.Price),
		IsTaker:    isTaker,
		Timestamp:  time.Now(),
	}); err != nil {
		a.logger.Error("journal-record-failed", zap.String("ticker", tm.Ticker), zap.Error(err))
	}

	if ack.FilledCount == 0 {
		// resting order, left pending in the registry until it fills,
		// expires, or is cancelled.
		return
	}
	a.registry.Complete(tm.Ticker)
}

// openExposureCents sums notional cost basis across every held position,
// the breaker's view of "current exposure" for CheckExposure.
func (a *App) openExposureCents() int64 {
	var total int64
	for _, p := range a.posLedger.All() {
		total += p.CostBasis
	}
	return total
}

// requoteGraceDelay separates a cancel from its replacement order so the
// pair doesn't trip the exchange's rate limiter.
const requoteGraceDelay = 100 * time.Millisecond

// runAutoClose quotes a resting exit order for every held, unsettled
// position: places one if none rests, re-quotes it (cancel then replace)
// if the target price has moved, and otherwise leaves it resting.
func (a *App) runAutoClose(ctx context.Context) {
	for _, pos := range a.posLedger.All() {
		if pos.Quantity <= 0 || pos.SettlementStatus == domain.Settled {
			continue
		}
		exitTicker := pos.Ticker

		tm, ok := a.trackedByTicker(exitTicker)
		fairValueCents := int(pos.AvgPrice)
		if ok {
			if fv, err := a.fvProvider.FairValue(ctx, tm.Game, tm.TargetTeam); err == nil {
				fairValueCents = fv.FairValueCents
				if tm.Inverted {
					fairValueCents = 100 - fairValueCents
				}
			}
		}

		quote := autoclose.Evaluate(fairValueCents, pos.CostBasis, pos.Quantity, true, a.autocloseCfg)

		if pending, isPending := a.registry.Get(exitTicker); isPending {
			if int(pending.Price) == quote.PriceCents {
				continue
			}
			if pending.OrderID != "" {
				if err := a.executor.Cancel(ctx, pending.OrderID); err != nil {
					a.logger.Error("autoclose-requote-cancel-failed",
						zap.String("ticker", exitTicker), zap.String("order_id", pending.OrderID), zap.Error(err))
					continue
				}
			}
			a.registry.Complete(exitTicker)

			select {
			case <-ctx.Done():
				return
			case <-time.After(requoteGraceDelay):
			}
		}

		if !a.registry.TryRegister(exitTicker, pos.Quantity, domain.Cents(quote.PriceCents), false) {
			continue
		}
		if _, err := a.executor.Submit(ctx, exitTicker, pos.Side, true, quote.PriceCents, pos.Quantity, domain.Limit); err != nil {
			a.registry.Complete(exitTicker)
			a.logger.Error("autoclose-submit-failed", zap.String("ticker", exitTicker), zap.Error(err))
		}
	}
}

// runBailout evaluates every held position for emergency liquidation and
// submits an IOC exit for any that qualify.
func (a *App) runBailout(ctx context.Context) {
	if !a.cfg.BailoutEnabled {
		return
	}
	for _, pos := range a.posLedger.All() {
		if pos.Quantity <= 0 || pos.SettlementStatus == domain.Settled {
			continue
		}
		if pos.ExpirationTime.IsZero() {
			continue
		}
		hoursToExpiry := time.Until(pos.ExpirationTime).Hours()
		if hoursToExpiry < 0 {
			continue
		}

		yesBid, _ := a.obManager.BestBidFor(pos.Ticker, "yes")
		noBid, _ := a.obManager.BestBidFor(pos.Ticker, "no")

		decision := bailout.Evaluate(pos, yesBid.PriceCents, noBid.PriceCents, hoursToExpiry, a.bailoutCfg)
		if !decision.ShouldBail {
			continue
		}

		if pending, isPending := a.registry.Get(pos.Ticker); isPending {
			if pending.OrderID != "" {
				if err := a.executor.Cancel(ctx, pending.OrderID); err != nil {
					a.logger.Error("bailout-cancel-failed",
						zap.String("ticker", pos.Ticker), zap.String("order_id", pending.OrderID), zap.Error(err))
					continue
				}
			}
			a.registry.Complete(pos.Ticker)
		}
		if !a.registry.TryRegister(pos.Ticker, pos.Quantity, domain.Cents(decision.ExitPrice), true) {
			continue
		}
		if _, err := a.executor.Submit(ctx, pos.Ticker, pos.Side, true, decision.ExitPrice, pos.Quantity, domain.IOC); err != nil {
			a.registry.Complete(pos.Ticker)
			a.logger.Error("bailout-submit-failed", zap.String("ticker", pos.Ticker), zap.Error(err))
			continue
		}
		a.logger.Warn("bailout-triggered",
			zap.String("ticker", pos.Ticker), zap.Float64("pnl_fraction", decision.PnLFraction))
	}
}
