package config

import (
	"os"
	"testing"
	"time"
)

func TestConfig_DefaultsLoadSuccessfully(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.TakerEdgeThresholdCents != 5 {
		t.Errorf("TakerEdgeThresholdCents = %d, want 5", cfg.TakerEdgeThresholdCents)
	}
	if cfg.MakerEdgeThresholdCents != 2 {
		t.Errorf("MakerEdgeThresholdCents = %d, want 2", cfg.MakerEdgeThresholdCents)
	}
	if cfg.KellyFraction != 0.25 {
		t.Errorf("KellyFraction = %f, want 0.25", cfg.KellyFraction)
	}
	if cfg.DryRun != true {
		t.Error("expected DryRun to default true")
	}
	if cfg.StorageMode != "console" {
		t.Errorf("StorageMode = %q, want console", cfg.StorageMode)
	}
}

func TestConfig_PollIntervalOverride(t *testing.T) {
	os.Setenv("POLL_INTERVAL_TURBO_S", "2s")
	t.Cleanup(func() { os.Unsetenv("POLL_INTERVAL_TURBO_S") })

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.PollIntervalTurbo != 2*time.Second {
		t.Errorf("PollIntervalTurbo = %v, want 2s", cfg.PollIntervalTurbo)
	}
}

func TestConfig_KellyFractionOutOfRangeRejected(t *testing.T) {
	cfg := &Config{
		HTTPPort:                  "8080",
		OddsAPIURL:                "https://example.com",
		ExchangeBaseURL:           "https://example.com",
		ExchangeWSURL:             "wss://example.com",
		KellyFraction:             1.5,
		TradeSizeContracts:        1,
		TakerEdgeThresholdCents:   5,
		MakerEdgeThresholdCents:   2,
		MaxPositionsPerTicker:     1,
		MaxAggregateExposureCents: 1000,
		BailoutTriggerPct:         20,
		PollIntervalNormal:        15 * time.Second,
		PollIntervalTurbo:         3 * time.Second,
		OrderTimeout:              30 * time.Second,
		StorageMode:               "console",
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for out-of-range kelly fraction, got nil")
	}
}

func TestConfig_TakerBelowMakerThresholdRejected(t *testing.T) {
	cfg := &Config{
		HTTPPort:                  "8080",
		OddsAPIURL:                "https://example.com",
		ExchangeBaseURL:           "https://example.com",
		ExchangeWSURL:             "wss://example.com",
		KellyFraction:             0.25,
		TradeSizeContracts:        1,
		TakerEdgeThresholdCents:   1,
		MakerEdgeThresholdCents:   5,
		MaxPositionsPerTicker:     1,
		MaxAggregateExposureCents: 1000,
		BailoutTriggerPct:         20,
		PollIntervalNormal:        15 * time.Second,
		PollIntervalTurbo:         3 * time.Second,
		OrderTimeout:              30 * time.Second,
		StorageMode:               "console",
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when taker threshold is below maker threshold, got nil")
	}
}

func TestConfig_NegativeAutoCloseMarginRejected(t *testing.T) {
	cfg := &Config{
		HTTPPort:                  "8080",
		OddsAPIURL:                "https://example.com",
		ExchangeBaseURL:           "https://example.com",
		ExchangeWSURL:             "wss://example.com",
		KellyFraction:             0.25,
		TradeSizeContracts:        1,
		TakerEdgeThresholdCents:   5,
		MakerEdgeThresholdCents:   2,
		MaxPositionsPerTicker:     1,
		MaxAggregateExposureCents: 1000,
		AutoCloseMarginPct:       -1,
		BailoutTriggerPct:         20,
		PollIntervalNormal:        15 * time.Second,
		PollIntervalTurbo:         3 * time.Second,
		OrderTimeout:              30 * time.Second,
		StorageMode:               "console",
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for negative auto-close margin, got nil")
	}
}

func TestConfig_InvalidStorageModeRejected(t *testing.T) {
	cfg := &Config{
		HTTPPort:                  "8080",
		OddsAPIURL:                "https://example.com",
		ExchangeBaseURL:           "https://example.com",
		ExchangeWSURL:             "wss://example.com",
		KellyFraction:             0.25,
		TradeSizeContracts:        1,
		TakerEdgeThresholdCents:   5,
		MakerEdgeThresholdCents:   2,
		MaxPositionsPerTicker:     1,
		MaxAggregateExposureCents: 1000,
		BailoutTriggerPct:         20,
		PollIntervalNormal:        15 * time.Second,
		PollIntervalTurbo:         3 * time.Second,
		OrderTimeout:              30 * time.Second,
		StorageMode:               "mysql",
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unsupported storage mode, got nil")
	}
}

func TestConfig_EmptyExchangeURLRejected(t *testing.T) {
	cfg := &Config{
		HTTPPort:                  "8080",
		OddsAPIURL:                "https://example.com",
		ExchangeBaseURL:           "",
		ExchangeWSURL:             "wss://example.com",
		KellyFraction:             0.25,
		TradeSizeContracts:        1,
		TakerEdgeThresholdCents:   5,
		MakerEdgeThresholdCents:   2,
		MaxPositionsPerTicker:     1,
		MaxAggregateExposureCents: 1000,
		BailoutTriggerPct:         20,
		PollIntervalNormal:        15 * time.Second,
		PollIntervalTurbo:         3 * time.Second,
		OrderTimeout:              30 * time.Second,
		StorageMode:               "console",
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for empty exchange base URL, got nil")
	}
}
