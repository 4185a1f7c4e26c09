package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Odds source (REST, pull)
	OddsAPIURL    string
	OddsAPIKey    string
	OddsSport     string
	OddsRegion    string
	OddsPollInterval time.Duration

	// Exchange (Kalshi-shaped) REST + WebSocket
	ExchangeBaseURL       string
	ExchangeWSURL         string
	ExchangeAPIKeyID      string
	ExchangePrivateKeyPath string
	ExchangeSeriesTicker  string

	// WebSocket transport
	WSDialTimeout           time.Duration
	WSPongTimeout           time.Duration
	WSPingInterval          time.Duration
	WSReconnectInitialDelay time.Duration
	WSReconnectMaxDelay     time.Duration
	WSReconnectBackoffMult  float64
	WSMessageBufferSize     int

	// Strategy / sizing
	TakerEdgeThresholdCents int
	MakerEdgeThresholdCents int
	MinEdgeAfterFeesCents   int
	SlippageBufferCents     int
	KellyFraction           float64
	TradeSizeContracts      int
	TurboModeEnabled        bool

	// Risk manager
	MaxPositions               int
	MaxPositionsPerTicker      int
	MaxPositionsPerSport       int
	EnableSportDiversification bool
	MinLiquidityContracts      int64
	MaxBidAskSpreadCents       int
	EnableLiquidityChecks      bool
	MaxAggregateExposureCents  int64

	// Staleness
	PollIntervalNormal time.Duration
	PollIntervalTurbo  time.Duration
	StaleDataThreshold time.Duration

	// Pending orders
	OrderTimeout time.Duration

	// Auto-close
	AutoCloseMarginPct float64

	// Bailout
	BailoutEnabled         bool
	BailoutHoursBeforeExpiry float64
	BailoutTriggerPct      float64

	// Execution
	DryRun bool

	// Storage / journal
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		OddsAPIURL:       getEnvOrDefault("ODDS_API_URL", "https://api.the-odds-api.com/v4"),
		OddsAPIKey:       os.Getenv("ODDS_API_KEY"),
		OddsSport:        getEnvOrDefault("ODDS_SPORT", "basketball_nba"),
		OddsRegion:       getEnvOrDefault("ODDS_REGION", "us"),
		OddsPollInterval: getDurationOrDefault("ODDS_POLL_INTERVAL", 15*time.Second),

		ExchangeBaseURL:        getEnvOrDefault("EXCHANGE_BASE_URL", "https://trading-api.kalshi.com/trade-api/v2"),
		ExchangeWSURL:          getEnvOrDefault("EXCHANGE_WS_URL", "wss://trading-api.kalshi.com/trade-api/ws/v2"),
		ExchangeAPIKeyID:       os.Getenv("EXCHANGE_API_KEY_ID"),
		ExchangePrivateKeyPath: os.Getenv("EXCHANGE_PRIVATE_KEY_PATH"),
		ExchangeSeriesTicker:   os.Getenv("EXCHANGE_SERIES_TICKER"),

		WSDialTimeout:           getDurationOrDefault("WS_DIAL_TIMEOUT", 10*time.Second),
		WSPongTimeout:           getDurationOrDefault("WS_PONG_TIMEOUT", 15*time.Second),
		WSPingInterval:          getDurationOrDefault("WS_PING_INTERVAL", 10*time.Second),
		WSReconnectInitialDelay: getDurationOrDefault("WS_RECONNECT_INITIAL_DELAY", 1*time.Second),
		WSReconnectMaxDelay:     getDurationOrDefault("WS_RECONNECT_MAX_DELAY", 30*time.Second),
		WSReconnectBackoffMult:  getFloat64OrDefault("WS_RECONNECT_BACKOFF_MULTIPLIER", 2.0),
		WSMessageBufferSize:     getIntOrDefault("WS_MESSAGE_BUFFER_SIZE", 10000),

		TakerEdgeThresholdCents: getIntOrDefault("TAKER_EDGE_THRESHOLD_CENTS", 5),
		MakerEdgeThresholdCents: getIntOrDefault("MAKER_EDGE_THRESHOLD_CENTS", 2),
		MinEdgeAfterFeesCents:   getIntOrDefault("MIN_EDGE_AFTER_FEES_CENTS", 1),
		SlippageBufferCents:     getIntOrDefault("SLIPPAGE_BUFFER_CENTS", 2),
		KellyFraction:           getFloat64OrDefault("KELLY_FRACTION", 0.25),
		TradeSizeContracts:      getIntOrDefault("TRADE_SIZE_CONTRACTS", 1),
		TurboModeEnabled:        getBoolOrDefault("TURBO_MODE_BOOL", false),

		MaxPositions:               getIntOrDefault("MAX_POSITIONS", 50),
		MaxPositionsPerTicker:      getIntOrDefault("MAX_POSITIONS_PER_TICKER", 1),
		MaxPositionsPerSport:       getIntOrDefault("MAX_POSITIONS_PER_SPORT", 10),
		EnableSportDiversification: getBoolOrDefault("ENABLE_SPORT_DIVERSIFICATION", true),
		MinLiquidityContracts:      getInt64OrDefault("MIN_LIQUIDITY_CONTRACTS", 5),
		MaxBidAskSpreadCents:       getIntOrDefault("MAX_BID_ASK_SPREAD_CENTS", 10),
		EnableLiquidityChecks:      getBoolOrDefault("ENABLE_LIQUIDITY_CHECKS", true),
		MaxAggregateExposureCents:  getInt64OrDefault("MAX_AGGREGATE_EXPOSURE_CENTS", 10_000_00),

		PollIntervalNormal: getDurationOrDefault("POLL_INTERVAL_NORMAL_S", 15*time.Second),
		PollIntervalTurbo:  getDurationOrDefault("POLL_INTERVAL_TURBO_S", 3*time.Second),
		StaleDataThreshold: getDurationOrDefault("STALE_DATA_THRESHOLD_S", 30*time.Second),

		OrderTimeout: getDurationOrDefault("ORDER_TIMEOUT_S", 30*time.Second),

		AutoCloseMarginPct: getFloat64OrDefault("AUTO_CLOSE_MARGIN_PCT", 2.0),

		BailoutEnabled:           getBoolOrDefault("BAILOUT_ENABLED", true),
		BailoutHoursBeforeExpiry: getFloat64OrDefault("BAILOUT_HOURS_BEFORE_EXPIRY", 2.0),
		BailoutTriggerPct:        getFloat64OrDefault("BAILOUT_TRIGGER_PCT", 20.0),

		DryRun: getBoolOrDefault("DRY_RUN_BOOL", true),

		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "sportsbook"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "sportsbook123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "sportsbook_arb"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return errors.New("HTTP_PORT cannot be empty")
	}
	if c.OddsAPIURL == "" {
		return errors.New("ODDS_API_URL cannot be empty")
	}
	if c.ExchangeBaseURL == "" {
		return errors.New("EXCHANGE_BASE_URL cannot be empty")
	}
	if c.ExchangeWSURL == "" {
		return errors.New("EXCHANGE_WS_URL cannot be empty")
	}

	if c.KellyFraction <= 0 || c.KellyFraction > 1.0 {
		return fmt.Errorf("KELLY_FRACTION must be in (0, 1.0], got %f", c.KellyFraction)
	}

	if c.TradeSizeContracts <= 0 {
		return fmt.Errorf("TRADE_SIZE_CONTRACTS must be positive, got %d", c.TradeSizeContracts)
	}

	if c.TakerEdgeThresholdCents < c.MakerEdgeThresholdCents {
		return fmt.Errorf("TAKER_EDGE_THRESHOLD_CENTS (%d) must be >= MAKER_EDGE_THRESHOLD_CENTS (%d)",
			c.TakerEdgeThresholdCents, c.MakerEdgeThresholdCents)
	}

	if c.SlippageBufferCents < 0 {
		return fmt.Errorf("SLIPPAGE_BUFFER_CENTS must be non-negative, got %d", c.SlippageBufferCents)
	}

	if c.MaxPositionsPerTicker < 1 {
		return fmt.Errorf("MAX_POSITIONS_PER_TICKER must be at least 1, got %d", c.MaxPositionsPerTicker)
	}

	if c.MaxAggregateExposureCents <= 0 {
		return fmt.Errorf("MAX_AGGREGATE_EXPOSURE_CENTS must be positive, got %d", c.MaxAggregateExposureCents)
	}

	// auto-close margin was documented as unused in an earlier iteration
	// while actually being applied; enforce it is non-negative here so a
	// stray negative value can't produce a below-break-even exit quote.
	if c.AutoCloseMarginPct < 0 {
		return fmt.Errorf("AUTO_CLOSE_MARGIN_PCT must be non-negative, got %f", c.AutoCloseMarginPct)
	}

	if c.BailoutTriggerPct <= 0 {
		return fmt.Errorf("BAILOUT_TRIGGER_PCT must be positive, got %f", c.BailoutTriggerPct)
	}

	if c.PollIntervalNormal <= 0 {
		return fmt.Errorf("POLL_INTERVAL_NORMAL_S must be positive, got %s", c.PollIntervalNormal)
	}
	if c.PollIntervalTurbo <= 0 {
		return fmt.Errorf("POLL_INTERVAL_TURBO_S must be positive, got %s", c.PollIntervalTurbo)
	}
	if c.OrderTimeout <= 0 {
		return fmt.Errorf("ORDER_TIMEOUT_S must be positive, got %s", c.OrderTimeout)
	}

	if c.StorageMode != "postgres" && c.StorageMode != "console" {
		return fmt.Errorf("STORAGE_MODE must be 'postgres' or 'console', got %q", c.StorageMode)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}
