// Package execution is the order executor (component J): it composes
// and signs order submissions against the exchange, translates the
// response into an optimistic position update and a pending-order
// registry entry, and handles cancellation including the 404-is-success
// mapping for orders that are already gone.
package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/brabsmit/sportsbook-arb/internal/domain"
	"github.com/brabsmit/sportsbook-arb/internal/errkind"
	"github.com/brabsmit/sportsbook-arb/internal/kalshi"
	"github.com/brabsmit/sportsbook-arb/internal/orders"
	"github.com/brabsmit/sportsbook-arb/internal/position"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExchangeClient is the subset of kalshi.Client the executor depends on,
// narrowed so tests can substitute a fake.
type ExchangeClient interface {
	CreateOrder(ctx context.Context, req kalshi.OrderRequest) (*kalshi.Order, error)
	CancelOrder(ctx context.Context, orderID string) error
}

// Ack is the executor's result for a successful submission.
type Ack struct {
	OrderID     string
	FilledCount int
}

// Executor submits and cancels orders against the exchange.
type Executor struct {
	client   ExchangeClient
	registry *orders.Registry
	ledger   *position.Ledger
	logger   *zap.Logger
	dryRun   bool
}

// Config configures an Executor.
type Config struct {
	Client   ExchangeClient
	Registry *orders.Registry
	Ledger   *position.Ledger
	Logger   *zap.Logger
	DryRun   bool
}

// New builds an Executor.
func New(cfg Config) *Executor {
	return &Executor{
		client:   cfg.Client,
		registry: cfg.Registry,
		ledger:   cfg.Ledger,
		logger:   cfg.Logger,
		dryRun:   cfg.DryRun,
	}
}

// Submit composes, signs, and sends an order. On success it always
// records the returned order ID in the pending-order registry and, if
// the ACK reports a non-zero fill count, optimistically opens or grows
// the position in the ledger.
func (e *Executor) Submit(ctx context.Context, ticker string, side domain.Side, isSell bool, priceCents int, qty int, tif domain.TimeInForce) (Ack, error) {
	start := time.Now()

	action := "buy"
	if isSell {
		action = "sell"
	}

	// ClientOrderID is a fresh UUID for every Submit call; Submit itself
	// never resends a request.
	req := kalshi.OrderRequest{
		Ticker:        ticker,
		Action:        action,
		Side:          sideWire(side),
		Type:          "limit",
		Count:         qty,
		TimeInForce:   tif.String(),
		ClientOrderID: uuid.NewString(),
	}
	if side == domain.Yes {
		req.YesPrice = priceCents
	} else {
		req.NoPrice = priceCents
	}

	if e.dryRun {
		ack := Ack{OrderID: fmt.Sprintf("dryrun-%s-%d", ticker, start.UnixNano())}
		e.registry.SetOrderID(ticker, ack.OrderID)
		OrdersSubmittedTotal.WithLabelValues(tif.String(), "dry_run").Inc()
		e.logger.Info("dry-run order submitted",
			zap.String("ticker", ticker), zap.Int("price", priceCents),
			zap.Int("qty", qty), zap.String("tif", tif.String()))
		return ack, nil
	}

	order, err := e.client.CreateOrder(ctx, req)
	OrderSubmitDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		ExecutionErrorsByKind.WithLabelValues(errkind.KindOf(err).String()).Inc()
		e.logger.Error("order submission failed",
			zap.String("ticker", ticker), zap.Error(err))
		return Ack{}, err
	}

	e.registry.SetOrderID(ticker, order.OrderID)
	OrdersSubmittedTotal.WithLabelValues(tif.String(), "live").Inc()

	if order.FilledCount > 0 {
		fee := int64(0) // the ACK carries no fee, so FeesPaid is not updated here.
		e.ledger.ApplyFill(ticker, side, order.FilledCount, domain.Cents(priceCents), fee, time.Time{})
		e.logger.Info("optimistic fill recorded",
			zap.String("ticker", ticker), zap.Int("filled", order.FilledCount))
	}

	return Ack{OrderID: order.OrderID, FilledCount: order.FilledCount}, nil
}

// Cancel cancels a resting order. In dry-run mode it always succeeds.
// In live mode, a 404 (order already gone) is mapped to success.
func (e *Executor) Cancel(ctx context.Context, orderID string) error {
	if e.dryRun {
		e.logger.Info("dry-run cancel", zap.String("order_id", orderID))
		return nil
	}

	err := e.client.CancelOrder(ctx, orderID)
	if err == nil {
		OrdersCancelledTotal.Inc()
		return nil
	}

	if status, ok := errkind.StatusOf(err); ok && status == 404 {
		e.logger.Info("cancel target already gone, treating as success", zap.String("order_id", orderID))
		OrdersCancelledTotal.Inc()
		return nil
	}

	ExecutionErrorsByKind.WithLabelValues(errkind.KindOf(err).String()).Inc()
	return err
}

func sideWire(side domain.Side) string {
	if side == domain.No {
		return "no"
	}
	return "yes"
}
