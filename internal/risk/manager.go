package risk

import "sync"

// GateConfig controls the admission gates evaluated before any buy signal
// reaches the executor: per-ticker and per-sport position caps, a
// ceiling on the number of distinct markets held at once, and liquidity
// gates on the candidate market's own book.
type GateConfig struct {
	MaxPositionsPerTicker      int
	MaxPositionsPerSport       int
	MaxPositions               int
	EnableSportDiversification bool
	MinLiquidityContracts      int64
	MaxBidAskSpreadCents       int
	EnableLiquidityChecks      bool
}

// Manager tracks per-ticker and per-sport position counts and evaluates
// the admission gates against a candidate signal. It holds no notion of
// cost basis or notional; aggregate exposure is the Breaker's job.
type Manager struct {
	cfg GateConfig

	mu           sync.Mutex
	perTicker    map[string]int
	perSport     map[string]int
	totalHeld    int
}

// NewManager builds a Manager from cfg.
func NewManager(cfg GateConfig) *Manager {
	return &Manager{
		cfg:       cfg,
		perTicker: make(map[string]int),
		perSport:  make(map[string]int),
	}
}

// GateResult reports the outcome of an admission check: whether it
// passed and, if not, which specific gate rejected it (for logging the
// gate name and the values that tripped it).
type GateResult struct {
	Admitted bool
	Gate     string
}

// CheckLiquidity evaluates the candidate market's own volume and spread
// against the configured minimums, independent of position counts.
func (m *Manager) CheckLiquidity(volume int64, bestBid, bestAsk int) GateResult {
	if !m.cfg.EnableLiquidityChecks {
		return GateResult{Admitted: true}
	}
	if volume < m.cfg.MinLiquidityContracts {
		return GateResult{Gate: "min_liquidity_contracts"}
	}
	if bestBid > 0 && bestAsk > 0 && bestAsk-bestBid > m.cfg.MaxBidAskSpreadCents {
		return GateResult{Gate: "max_bid_ask_spread_cents"}
	}
	return GateResult{Admitted: true}
}

// Admit evaluates the position-count gates for a candidate buy on
// ticker/sport. It does not itself record the position; call Record
// after the order is actually submitted.
func (m *Manager) Admit(ticker, sport string) GateResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxPositions > 0 && m.totalHeld >= m.cfg.MaxPositions {
		return GateResult{Gate: "max_positions"}
	}
	if m.cfg.MaxPositionsPerTicker > 0 && m.perTicker[ticker] >= m.cfg.MaxPositionsPerTicker {
		return GateResult{Gate: "max_positions_per_ticker"}
	}
	if m.cfg.EnableSportDiversification && m.cfg.MaxPositionsPerSport > 0 && m.perSport[sport] >= m.cfg.MaxPositionsPerSport {
		return GateResult{Gate: "max_positions_per_sport"}
	}
	return GateResult{Admitted: true}
}

// Record registers that a position on ticker/sport is now held, so later
// Admit calls see the updated counts.
func (m *Manager) Record(ticker, sport string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perTicker[ticker]++
	m.perSport[sport]++
	m.totalHeld++
}

// Release reverses a prior Record, e.g. once a position settles or is
// fully closed.
func (m *Manager) Release(ticker, sport string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.perTicker[ticker] > 0 {
		m.perTicker[ticker]--
	}
	if m.perSport[sport] > 0 {
		m.perSport[sport]--
	}
	if m.totalHeld > 0 {
		m.totalHeld--
	}
}

// Sync reconciles the manager's counts against the authoritative set of
// currently-held (ticker, sport) pairs, e.g. after position reconciliation
// against the exchange. It replaces the tracked state wholesale rather
// than incrementally, since the ledger is the source of truth.
func (m *Manager) Sync(held map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.perTicker = make(map[string]int, len(held))
	m.perSport = make(map[string]int, len(held))
	m.totalHeld = 0
	for ticker, sport := range held {
		m.perTicker[ticker]++
		m.perSport[sport]++
		m.totalHeld++
	}
}
