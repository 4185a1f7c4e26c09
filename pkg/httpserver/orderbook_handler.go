package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/brabsmit/sportsbook-arb/internal/orderbook"
	"go.uber.org/zap"
)

// OrderbookHandler serves the current depth book for a single ticker.
type OrderbookHandler struct {
	obManager *orderbook.Manager
	logger    *zap.Logger
}

// NewOrderbookHandler creates a new orderbook handler.
func NewOrderbookHandler(obMgr *orderbook.Manager, logger *zap.Logger) *OrderbookHandler {
	return &OrderbookHandler{obManager: obMgr, logger: logger}
}

// LevelResponse is one price level's resting quantity.
type LevelResponse struct {
	PriceCents int   `json:"price_cents"`
	Quantity   int64 `json:"quantity"`
}

// OrderbookResponse is the HTTP response for one ticker's depth book.
type OrderbookResponse struct {
	Ticker string          `json:"ticker"`
	Yes    []LevelResponse `json:"yes"`
	No     []LevelResponse `json:"no"`
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleOrderbook handles GET /api/orderbook?ticker=<exchange-ticker>.
func (h *OrderbookHandler) HandleOrderbook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ticker := r.URL.Query().Get("ticker")
	if ticker == "" {
		h.writeError(w, "missing required query parameter: ticker", http.StatusBadRequest)
		return
	}

	h.logger.Debug("orderbook-request-received", zap.String("ticker", ticker))

	book, ok := h.obManager.Snapshot(ticker)
	if !ok {
		h.writeError(w, "no book tracked for ticker", http.StatusNotFound)
		return
	}

	resp := OrderbookResponse{
		Ticker: ticker,
		Yes:    levelsOf(book.YesLevels),
		No:     levelsOf(book.NoLevels),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

func levelsOf(m map[int]int64) []LevelResponse {
	out := make([]LevelResponse, 0, len(m))
	for price, qty := range m {
		out = append(out, LevelResponse{PriceCents: price, Quantity: qty})
	}
	return out
}

// writeError writes a JSON error response.
func (h *OrderbookHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
