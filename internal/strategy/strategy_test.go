package strategy

import (
	"testing"

	"github.com/brabsmit/sportsbook-arb/internal/domain"
)

func baseConfig() Config {
	return Config{
		SlippageBufferCents: 2,
		TakerEdgeCents:      5,
		MakerEdgeCents:      2,
		MinEdgeAfterFees:    1,
		KellyFractionCap:    0.25,
		MaxQuantityPerTrade: 1000,
		MaxLiquidityShare:   1.0,
	}
}

func TestEvaluateSkipsWhenNoAsk(t *testing.T) {
	in := Input{Ticker: "T", FairValueCents: 60, YesAskCents: 0, YesAskQty: 0, BankrollCents: 100000}
	sig := Evaluate(in, baseConfig())
	if sig.Action != domain.Skip {
		t.Errorf("Action = %v, want Skip", sig.Action)
	}
}

func TestEvaluateSkipsWhenFairValueBelowPrice(t *testing.T) {
	in := Input{Ticker: "T", FairValueCents: 40, YesAskCents: 50, YesAskQty: 100, YesBidCents: 48, YesBidQty: 100, BankrollCents: 100000}
	sig := Evaluate(in, baseConfig())
	if sig.Action != domain.Skip {
		t.Errorf("Action = %v, want Skip", sig.Action)
	}
	if sig.EdgeCents != -10 {
		t.Errorf("EdgeCents = %d, want -10", sig.EdgeCents)
	}
}

// TestEvaluateMakerBuyOnModestEdge reproduces the "slippage downgrade"
// scenario: raw_edge=5, effective_edge=3 clears the maker threshold (2)
// but not the taker threshold (5), so the maker candidate at
// best_bid+1=59 is priced and sized instead.
func TestEvaluateMakerBuyOnModestEdge(t *testing.T) {
	in := Input{
		Ticker: "T", FairValueCents: 65,
		YesAskCents: 60, YesAskQty: 1000,
		YesBidCents: 58, YesBidQty: 1000,
		BankrollCents: 100000,
	}
	cfg := baseConfig()
	cfg.MaxQuantityPerTrade = 100

	sig := Evaluate(in, cfg)
	if sig.Action != domain.MakerBuy {
		t.Fatalf("Action = %v, want MakerBuy", sig.Action)
	}
	if sig.Price != 59 {
		t.Errorf("Price = %d, want 59", sig.Price)
	}
	if sig.Quantity != 100 {
		t.Errorf("Quantity = %d, want 100", sig.Quantity)
	}
	if sig.NetProfitEstimateCents != 517 {
		t.Errorf("NetProfitEstimateCents = %d, want 517", sig.NetProfitEstimateCents)
	}
}

// TestEvaluateSkipsBelowMakerThreshold reproduces the "slippage skip"
// scenario: same book as above but fair value of 63 drops effective_edge
// to 1, below the maker threshold of 2.
func TestEvaluateSkipsBelowMakerThreshold(t *testing.T) {
	in := Input{
		Ticker: "T", FairValueCents: 63,
		YesAskCents: 60, YesAskQty: 1000,
		YesBidCents: 58, YesBidQty: 1000,
		BankrollCents: 100000,
	}
	sig := Evaluate(in, baseConfig())
	if sig.Action != domain.Skip {
		t.Fatalf("Action = %v, want Skip", sig.Action)
	}
	if sig.EdgeCents != 3 {
		t.Errorf("EdgeCents = %d, want 3", sig.EdgeCents)
	}
}

func TestEvaluateTakerBuyOnLargeEdge(t *testing.T) {
	in := Input{
		Ticker: "T", FairValueCents: 80,
		YesAskCents: 50, YesAskQty: 1000,
		YesBidCents: 45, YesBidQty: 1000,
		BankrollCents: 100000,
	}
	cfg := baseConfig()
	cfg.MaxQuantityPerTrade = 500

	sig := Evaluate(in, cfg)
	if sig.Action != domain.TakerBuy {
		t.Fatalf("Action = %v, want TakerBuy", sig.Action)
	}
	if sig.Price != 50 {
		t.Errorf("Price = %d, want 50", sig.Price)
	}
	if sig.Quantity != 500 {
		t.Errorf("Quantity = %d, want 500", sig.Quantity)
	}
	if sig.NetProfitEstimateCents != 12985 {
		t.Errorf("NetProfitEstimateCents = %d, want 12985", sig.NetProfitEstimateCents)
	}
}

func TestEvaluateQuantityBoundedByMaxPerTrade(t *testing.T) {
	in := Input{
		Ticker: "T", FairValueCents: 80,
		YesAskCents: 50, YesAskQty: 1000,
		YesBidCents: 45, YesBidQty: 1000,
		BankrollCents: 100000,
	}
	cfg := baseConfig()
	cfg.MaxQuantityPerTrade = 3

	sig := Evaluate(in, cfg)
	if sig.Action != domain.TakerBuy {
		t.Fatalf("Action = %v, want TakerBuy", sig.Action)
	}
	if sig.Quantity != 3 {
		t.Errorf("Quantity = %d, want 3", sig.Quantity)
	}
	if sig.NetProfitEstimateCents != 77 {
		t.Errorf("NetProfitEstimateCents = %d, want 77", sig.NetProfitEstimateCents)
	}
}

func TestEvaluateQuantityBoundedByLiquidity(t *testing.T) {
	in := Input{
		Ticker: "T", FairValueCents: 80,
		YesAskCents: 50, YesAskQty: 5,
		YesBidCents: 45, YesBidQty: 1000,
		BankrollCents: 100000,
	}
	cfg := baseConfig()
	cfg.MaxQuantityPerTrade = 1000

	sig := Evaluate(in, cfg)
	if sig.Action != domain.TakerBuy {
		t.Fatalf("Action = %v, want TakerBuy", sig.Action)
	}
	if sig.Quantity != 5 {
		t.Errorf("Quantity = %d, want 5 (bounded by resting ask depth)", sig.Quantity)
	}
	if sig.NetProfitEstimateCents != 129 {
		t.Errorf("NetProfitEstimateCents = %d, want 129", sig.NetProfitEstimateCents)
	}
}
