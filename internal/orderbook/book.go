// Package orderbook holds a mutex-guarded depth book per ticker, fed by
// the exchange's orderbook_snapshot/orderbook_delta WebSocket messages.
// Prices are integer cents in [1..99]; quantities are contract counts.
package orderbook

import (
	"sync"
	"time"

	"github.com/brabsmit/sportsbook-arb/internal/errkind"
	"go.uber.org/zap"
)

// Level is one price level's resting quantity.
type Level struct {
	PriceCents int
	Quantity   int64
}

// Book is a single ticker's YES-side and NO-side depth, keyed by price in
// cents. A snapshot clears and repopulates both sides; a delta adds to
// (or removes, at qty<=0) a single price level on one side.
type Book struct {
	Ticker    string
	YesLevels map[int]int64
	NoLevels  map[int]int64
	UpdatedAt time.Time
}

func newBook(ticker string) *Book {
	return &Book{
		Ticker:    ticker,
		YesLevels: make(map[int]int64),
		NoLevels:  make(map[int]int64),
	}
}

func sideMap(b *Book, side string) (map[int]int64, bool) {
	switch side {
	case "yes":
		return b.YesLevels, true
	case "no":
		return b.NoLevels, true
	default:
		return nil, false
	}
}

// BestBid returns the highest-priced resting level on the given side.
func (b *Book) BestBid(side string) (Level, bool) {
	levels, ok := sideMap(b, side)
	if !ok {
		return Level{}, false
	}
	best := -1
	for p, q := range levels {
		if q > 0 && p > best {
			best = p
		}
	}
	if best < 0 {
		return Level{}, false
	}
	return Level{PriceCents: best, Quantity: levels[best]}, true
}

// BestAsk returns the lowest-priced resting level on the given side,
// derived as 100 minus the opposite side's best bid: a resting YES bid at
// price p is equivalent to a resting NO ask at 100-p, since buying YES at
// p or selling NO at 100-p settle identically.
func (b *Book) BestAsk(side string) (Level, bool) {
	opposite := "no"
	if side == "no" {
		opposite = "yes"
	}
	bid, ok := b.BestBid(opposite)
	if !ok {
		return Level{}, false
	}
	return Level{PriceCents: 100 - bid.PriceCents, Quantity: bid.Quantity}, true
}

// Manager owns the full set of tracked order books and the channel used
// to notify downstream consumers (the strategy evaluator) of updates.
type Manager struct {
	books    map[string]*Book
	mu       sync.RWMutex
	updateCh chan string
	logger   *zap.Logger
}

// NewManager constructs an empty Manager. updateChanSize bounds the
// notification channel; updates are dropped (and counted) rather than
// blocking the WebSocket read loop when the channel is full.
func NewManager(logger *zap.Logger, updateChanSize int) *Manager {
	return &Manager{
		books:    make(map[string]*Book),
		updateCh: make(chan string, updateChanSize),
		logger:   logger,
	}
}

// Updates returns the channel of tickers with a fresh update. Consumers
// should treat the ticker as a hint to re-read the book via Snapshot, not
// as the update payload itself.
func (m *Manager) Updates() <-chan string {
	return m.updateCh
}

// ApplySnapshot replaces both sides of a ticker's book entirely.
func (m *Manager) ApplySnapshot(ticker string, yes, no []Level) {
	start := time.Now()
	m.mu.Lock()
	book, ok := m.books[ticker]
	if !ok {
		book = newBook(ticker)
		m.books[ticker] = book
		BooksTracked.Set(float64(len(m.books)))
	}
	book.YesLevels = make(map[int]int64, len(yes))
	book.NoLevels = make(map[int]int64, len(no))
	for _, l := range yes {
		if l.Quantity > 0 {
			book.YesLevels[l.PriceCents] = l.Quantity
		}
	}
	for _, l := range no {
		if l.Quantity > 0 {
			book.NoLevels[l.PriceCents] = l.Quantity
		}
	}
	book.UpdatedAt = time.Now()
	m.mu.Unlock()

	UpdatesTotal.WithLabelValues("snapshot").Inc()
	UpdateProcessingDuration.Observe(time.Since(start).Seconds())
	m.notify(ticker)
}

// ApplyDelta adds delta to the resting quantity at priceCents on side,
// removing the level entirely once quantity drops to zero or below.
// Negative deltas driving quantity below zero are a protocol violation
// by the exchange and are clamped to zero rather than panicking.
func (m *Manager) ApplyDelta(ticker, side string, priceCents int, delta int64) error {
	start := time.Now()
	m.mu.Lock()
	book, ok := m.books[ticker]
	if !ok {
		book = newBook(ticker)
		m.books[ticker] = book
		BooksTracked.Set(float64(len(m.books)))
	}
	levels, ok := sideMap(book, side)
	if !ok {
		m.mu.Unlock()
		return errkind.New(errkind.Protocol, "unknown orderbook side: "+side)
	}
	newQty := levels[priceCents] + delta
	if newQty <= 0 {
		delete(levels, priceCents)
	} else {
		levels[priceCents] = newQty
	}
	book.UpdatedAt = time.Now()
	m.mu.Unlock()

	UpdatesTotal.WithLabelValues("delta").Inc()
	UpdateProcessingDuration.Observe(time.Since(start).Seconds())
	m.notify(ticker)
	return nil
}

func (m *Manager) notify(ticker string) {
	select {
	case m.updateCh <- ticker:
	default:
		UpdatesDroppedTotal.WithLabelValues("channel_full").Inc()
		if m.logger != nil {
			m.logger.Warn("orderbook update dropped, channel full", zap.String("ticker", ticker))
		}
	}
}

// Snapshot returns a copy of the current book for a ticker, safe to read
// without holding the Manager's lock.
func (m *Manager) Snapshot(ticker string) (Book, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	book, ok := m.books[ticker]
	if !ok {
		return Book{}, false
	}
	out := Book{Ticker: book.Ticker, UpdatedAt: book.UpdatedAt,
		YesLevels: make(map[int]int64, len(book.YesLevels)),
		NoLevels:  make(map[int]int64, len(book.NoLevels)),
	}
	for p, q := range book.YesLevels {
		out.YesLevels[p] = q
	}
	for p, q := range book.NoLevels {
		out.NoLevels[p] = q
	}
	return out, true
}

// Remove drops a ticker's book entirely, e.g. once its market expires.
func (m *Manager) Remove(ticker string) {
	m.mu.Lock()
	delete(m.books, ticker)
	BooksTracked.Set(float64(len(m.books)))
	m.mu.Unlock()
}

// BestBidFor returns the best resting bid for a ticker's side.
func (m *Manager) BestBidFor(ticker, side string) (Level, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	book, ok := m.books[ticker]
	if !ok {
		return Level{}, false
	}
	return book.BestBid(side)
}

// BestAskFor returns the best derived ask for a ticker's side.
func (m *Manager) BestAskFor(ticker, side string) (Level, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	book, ok := m.books[ticker]
	if !ok {
		return Level{}, false
	}
	return book.BestAsk(side)
}
