package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/brabsmit/sportsbook-arb/internal/autoclose"
	"github.com/brabsmit/sportsbook-arb/internal/bailout"
	"github.com/brabsmit/sportsbook-arb/internal/domain"
	"github.com/brabsmit/sportsbook-arb/internal/execution"
	"github.com/brabsmit/sportsbook-arb/internal/fairvalue"
	"github.com/brabsmit/sportsbook-arb/internal/journal"
	"github.com/brabsmit/sportsbook-arb/internal/kalshi"
	"github.com/brabsmit/sportsbook-arb/internal/matcher"
	"github.com/brabsmit/sportsbook-arb/internal/oddsapi"
	"github.com/brabsmit/sportsbook-arb/internal/orderbook"
	"github.com/brabsmit/sportsbook-arb/internal/orders"
	"github.com/brabsmit/sportsbook-arb/internal/position"
	"github.com/brabsmit/sportsbook-arb/internal/risk"
	"github.com/brabsmit/sportsbook-arb/internal/staleness"
	"github.com/brabsmit/sportsbook-arb/internal/strategy"
	"github.com/brabsmit/sportsbook-arb/pkg/cache"
	"github.com/brabsmit/sportsbook-arb/pkg/config"
	"github.com/brabsmit/sportsbook-arb/pkg/healthprobe"
	"github.com/brabsmit/sportsbook-arb/pkg/httpserver"
)

// trackedMarket is one exchange ticker the engine has matched against an
// odds-feed game, along with enough context to compute its fair value and
// submission side on every tick.
type trackedMarket struct {
	Ticker         string
	Sport          string
	TargetTeam     string
	HomeTeam       string
	Inverted       bool
	Volume         int64
	ExpirationTime time.Time
	Game           domain.OddsGame
}

// App wires every component of the engine loop together and owns its
// lifecycle.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server

	oddsClient     *oddsapi.Client
	exchangeClient *kalshi.Client
	wsFeed         *kalshi.Feed
	obManager      *orderbook.Manager

	fvProvider   fairvalue.Provider
	indexBuilder *matcher.CachingIndexBuilder
	matchupCache cache.Cache

	strategyCfg  strategy.Config
	autocloseCfg autoclose.Config
	bailoutCfg   bailout.Config

	riskBreaker *risk.Breaker
	riskMgr     *risk.Manager

	registry    *orders.Registry
	posLedger   *position.Ledger
	reconciler  *position.Reconciler
	executor    *execution.Executor
	journal     journal.Journal

	staleTracker *staleness.Tracker

	sport        string
	seriesTicker string

	trackedMu sync.RWMutex
	tracked   map[string]trackedMarket

	killCh chan struct{}
	paused atomic.Bool

	lastReconcile time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Options holds application options.
type Options struct {
	SingleTicker string // logged at startup; it does not restrict which markets are tracked
}

// TriggerKill posts a kill command to the engine loop. It is safe to call
// from any goroutine; only the first call has an effect.
func (a *App) TriggerKill() {
	select {
	case a.killCh <- struct{}{}:
	default:
	}
}
