package journal

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleJournal logs every recorded entry through zap instead of persisting it,
// for local runs where no database is configured.
type ConsoleJournal struct {
	logger *zap.Logger
}

// NewConsoleJournal builds a ConsoleJournal.
func NewConsoleJournal(logger *zap.Logger) *ConsoleJournal {
	return &ConsoleJournal{logger: logger}
}

// Record implements Journal.
func (c *ConsoleJournal) Record(_ context.Context, e Entry) error {
	c.logger.Info("fill recorded",
		zap.String("ticker", e.Ticker),
		zap.String("side", e.Side.String()),
		zap.String("action", e.Action.String()),
		zap.Int("quantity", e.Quantity),
		zap.Int("price_cents", e.PriceCents),
		zap.Int64("fee_cents", e.FeeCents),
		zap.Bool("is_taker", e.IsTaker),
		zap.Time("timestamp", e.Timestamp),
	)
	return nil
}

// Close implements Journal.
func (c *ConsoleJournal) Close() error {
	return nil
}
