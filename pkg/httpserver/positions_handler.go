package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/brabsmit/sportsbook-arb/internal/position"
	"go.uber.org/zap"
)

// PositionsHandler serves the currently-held position ledger.
type PositionsHandler struct {
	ledger *position.Ledger
	logger *zap.Logger
}

// NewPositionsHandler creates a new positions handler.
func NewPositionsHandler(ledger *position.Ledger, logger *zap.Logger) *PositionsHandler {
	return &PositionsHandler{ledger: ledger, logger: logger}
}

// PositionResponse is the HTTP representation of a single held position.
type PositionResponse struct {
	Ticker           string `json:"ticker"`
	Side             string `json:"side"`
	Quantity         int    `json:"quantity"`
	AvgPriceCents    int    `json:"avg_price_cents"`
	CostBasisCents   int64  `json:"cost_basis_cents"`
	FeesPaidCents    int64  `json:"fees_paid_cents"`
	RealizedPNLCents int64  `json:"realized_pnl_cents"`
	IsInverse        bool   `json:"is_inverse"`
}

// HandlePositions handles GET /api/positions.
func (h *PositionsHandler) HandlePositions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	all := h.ledger.All()
	resp := make([]PositionResponse, 0, len(all))
	for _, p := range all {
		resp = append(resp, PositionResponse{
			Ticker:           p.Ticker,
			Side:             string(p.Side),
			Quantity:         p.Quantity,
			AvgPriceCents:    int(p.AvgPrice),
			CostBasisCents:   p.CostBasis,
			FeesPaidCents:    p.FeesPaid,
			RealizedPNLCents: p.RealizedPNL,
			IsInverse:        p.IsInverse,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

func (h *PositionsHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
