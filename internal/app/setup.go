package app

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/brabsmit/sportsbook-arb/internal/autoclose"
	"github.com/brabsmit/sportsbook-arb/internal/bailout"
	"github.com/brabsmit/sportsbook-arb/internal/errkind"
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

// fairValueCacheTTL bounds how long a computed fair value is reused across
// ticks: short enough that a moving odds line is picked up within a couple
// of polls, long enough that evaluateTrackedMarkets and runAutoClose don't
// redo the devig twice per tick for the same (game, team).
const fairValueCacheTTL = 10 * time.Second

// New wires every engine component from cfg and returns a ready-to-Run App.
func New(cfg *config.Config, logger *zap.Logger, opts *Options) (*App, error) {
	if opts == nil {
		opts = &Options{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	privKey, err := kalshi.LoadPrivateKey(cfg.ExchangePrivateKeyPath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load exchange private key: %w", err)
	}

	exchangeClient, err := kalshi.NewClient(kalshi.Config{
		BaseURL:     cfg.ExchangeBaseURL,
		APIKeyID:    cfg.ExchangeAPIKeyID,
		PrivateKey:  privKey,
		Logger:      logger,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create exchange client: %w", err)
	}

	oddsClient := oddsapi.NewClient(oddsapi.Config{
		BaseURL: cfg.OddsAPIURL,
		APIKey:  cfg.OddsAPIKey,
		Logger:  logger,
	})

	obManager := orderbook.NewManager(logger, cfg.WSMessageBufferSize)

	wsBasePath := ""
	if parsed, err := url.Parse(cfg.ExchangeWSURL); err == nil {
		wsBasePath = parsed.Path
	}
	authHeaderFn := kalshi.WSAuthHeaderFunc(cfg.ExchangeAPIKeyID, privKey, wsBasePath)
	wsFeed := kalshi.NewFeed(kalshi.FeedConfig{
		URL:                   cfg.ExchangeWSURL,
		APIKeyID:              cfg.ExchangeAPIKeyID,
		DialTimeout:           cfg.WSDialTimeout,
		PongTimeout:           cfg.WSPongTimeout,
		PingInterval:          cfg.WSPingInterval,
		ReconnectInitialDelay: cfg.WSReconnectInitialDelay,
		ReconnectMaxDelay:     cfg.WSReconnectMaxDelay,
		ReconnectBackoffMult:  cfg.WSReconnectBackoffMult,
		Logger:                logger,
	}, authHeaderFn, obManager)

	matchupCache, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
		Logger:      logger,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create matchup cache: %w", err)
	}
	indexBuilder := matcher.NewCachingIndexBuilder(matchupCache)
	fvProvider := fairvalue.NewCachedProvider(fairvalue.NewOddsDevigProvider(), matchupCache, fairValueCacheTTL)

	posLedger := position.NewLedger()
	registry := orders.NewRegistry()

	reconciler := position.NewReconciler(posLedger, func(ctx context.Context) ([]position.ExchangePosition, error) {
		exPositions, err := exchangeClient.GetPositions(ctx, "")
		if err != nil {
			return nil, err
		}
		out := make([]position.ExchangePosition, 0, len(exPositions))
		for _, p := range exPositions {
			out = append(out, position.ExchangePosition{Ticker: p.Ticker, Quantity: p.Position})
		}
		return out, nil
	}, logger)

	executor := execution.New(execution.Config{
		Client:   exchangeClient,
		Registry: registry,
		Ledger:   posLedger,
		Logger:   logger,
		DryRun:   cfg.DryRun,
	})

	j, err := setupJournal(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup journal: %w", err)
	}

	riskBreaker := risk.NewBreaker(risk.Config{
		MaxExposureCents: cfg.MaxAggregateExposureCents,
	})
	riskMgr := risk.NewManager(risk.GateConfig{
		MaxPositionsPerTicker:      cfg.MaxPositionsPerTicker,
		MaxPositionsPerSport:       cfg.MaxPositionsPerSport,
		MaxPositions:               cfg.MaxPositions,
		EnableSportDiversification: cfg.EnableSportDiversification,
		MinLiquidityContracts:      cfg.MinLiquidityContracts,
		MaxBidAskSpreadCents:       cfg.MaxBidAskSpreadCents,
		EnableLiquidityChecks:      cfg.EnableLiquidityChecks,
	})

	staleTracker := staleness.NewTracker(map[string]time.Duration{
		"odds":    cfg.StaleDataThreshold,
		"markets": cfg.StaleDataThreshold,
	})

	healthChecker := healthprobe.New()
	httpServer := httpserver.New(&httpserver.Config{
		Port:             cfg.HTTPPort,
		Logger:           logger,
		HealthChecker:    healthChecker,
		OrderbookManager: obManager,
		PositionLedger:   posLedger,
	})

	a := &App{
		cfg:            cfg,
		logger:         logger,
		healthChecker:  healthChecker,
		httpServer:     httpServer,
		oddsClient:     oddsClient,
		exchangeClient: exchangeClient,
		wsFeed:         wsFeed,
		obManager:      obManager,
		fvProvider:     fvProvider,
		indexBuilder:   indexBuilder,
		matchupCache:   matchupCache,
		strategyCfg:    setupStrategyConfig(cfg),
		autocloseCfg:   autoclose.Config{MarginPct: cfg.AutoCloseMarginPct},
		bailoutCfg: bailout.Config{
			TriggerPct:        cfg.BailoutTriggerPct,
			HoursBeforeExpiry: cfg.BailoutHoursBeforeExpiry,
		},
		riskBreaker:  riskBreaker,
		riskMgr:      riskMgr,
		registry:     registry,
		posLedger:    posLedger,
		reconciler:   reconciler,
		executor:     executor,
		journal:      j,
		staleTracker: staleTracker,
		sport:        cfg.OddsSport,
		seriesTicker: cfg.ExchangeSeriesTicker,
		tracked:      make(map[string]trackedMarket),
		killCh:       make(chan struct{}, 1),
		ctx:          ctx,
		cancel:       cancel,
	}
	if opts.SingleTicker != "" {
		a.logger.Info("single-ticker-debug-mode", zap.String("ticker", opts.SingleTicker))
	}
	return a, nil
}

func setupStrategyConfig(cfg *config.Config) strategy.Config {
	return strategy.Config{
		SlippageBufferCents: cfg.SlippageBufferCents,
		TakerEdgeCents:      cfg.TakerEdgeThresholdCents,
		MakerEdgeCents:      cfg.MakerEdgeThresholdCents,
		MinEdgeAfterFees:    cfg.MinEdgeAfterFeesCents,
		KellyFractionCap:    cfg.KellyFraction,
		MaxQuantityPerTrade: cfg.TradeSizeContracts,
		MaxLiquidityShare:   0.5,
	}
}

func setupJournal(cfg *config.Config, logger *zap.Logger) (journal.Journal, error) {
	if cfg.StorageMode == "postgres" {
		pg, err := journal.NewPostgresJournal(journal.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, errkind.Wrap(errkind.Fatal, "opening postgres journal", err)
		}
		return pg, nil
	}
	return journal.NewConsoleJournal(logger), nil
}
