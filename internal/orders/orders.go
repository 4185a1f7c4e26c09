// Package orders implements the pending-order registry that sits between
// "the strategy decided to buy" and "the exchange acknowledged the
// order". It enforces at most one in-flight order per
// ticker and expires orders that the exchange never acknowledged within
// a TTL, so a dropped ACK doesn't permanently block that ticker from
// trading again.
package orders

import (
	"sync"
	"time"

	"github.com/brabsmit/sportsbook-arb/internal/domain"
)

// Registry tracks pending orders keyed by ticker.
type Registry struct {
	mu      sync.Mutex
	pending map[string]domain.PendingOrder
	now     func() time.Time
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		pending: make(map[string]domain.PendingOrder),
		now:     time.Now,
	}
}

// TryRegister registers a pending order for ticker if (and only if) no
// order is already pending for it. Returns false if one is already
// in-flight.
func (r *Registry) TryRegister(ticker string, qty int, price domain.Cents, isTaker bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pending[ticker]; exists {
		return false
	}
	r.pending[ticker] = domain.PendingOrder{
		Ticker:      ticker,
		Quantity:    qty,
		Price:       price,
		IsTaker:     isTaker,
		SubmittedAt: r.now(),
	}
	return true
}

// SetOrderID records the exchange-assigned order ID once the submission
// is ACKed. A no-op if no order is pending for the ticker (it may have
// already expired).
func (r *Registry) SetOrderID(ticker, orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	po, ok := r.pending[ticker]
	if !ok {
		return
	}
	po.OrderID = orderID
	r.pending[ticker] = po
}

// Get returns the pending order for a ticker, if any.
func (r *Registry) Get(ticker string) (domain.PendingOrder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	po, ok := r.pending[ticker]
	return po, ok
}

// Complete removes a ticker's pending order once it has been filled,
// canceled, or otherwise terminally resolved.
func (r *Registry) Complete(ticker string) {
	r.mu.Lock()
	delete(r.pending, ticker)
	r.mu.Unlock()
}

// ExpireOlderThan removes (and returns) every pending order whose
// SubmittedAt is older than maxAge, so the caller can cancel them on the
// exchange if they were in fact ACKed after all.
func (r *Registry) ExpireOlderThan(maxAge time.Duration) []domain.PendingOrder {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxAge)
	var expired []domain.PendingOrder
	for ticker, po := range r.pending {
		if po.SubmittedAt.Before(cutoff) {
			expired = append(expired, po)
			delete(r.pending, ticker)
		}
	}
	return expired
}

// Drain removes and returns every currently pending order. Used by the
// kill switch, which must cancel every in-flight order before it
// terminates.
func (r *Registry) Drain() []domain.PendingOrder {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.PendingOrder, 0, len(r.pending))
	for _, po := range r.pending {
		out = append(out, po)
	}
	r.pending = make(map[string]domain.PendingOrder)
	return out
}

// Len reports how many orders are currently pending.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
