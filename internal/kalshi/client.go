// Package kalshi is the exchange client: a signed REST client plus a
// WebSocket orderbook feed. Every request
// is signed per auth.go's RSA-PSS-SHA256 scheme and every response is
// classified into the errkind taxonomy so callers can branch on
// Transient/Credentials/Logical/Protocol without inspecting HTTP status codes
// themselves.
package kalshi

import (
	"context"
	"crypto/rsa"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/brabsmit/sportsbook-arb/internal/errkind"
	"go.uber.org/zap"
)

// Client is a signed HTTP client for the Kalshi trade API.
type Client struct {
	apiKeyID       string
	privKey        *rsa.PrivateKey
	http           *http.Client
	baseURL        string
	basePathPrefix string
	logger         *zap.Logger
}

// Config configures a Client.
type Config struct {
	BaseURL       string // e.g. "https://api.elections.kalshi.com/trade-api/v2"
	APIKeyID      string
	PrivateKey    *rsa.PrivateKey
	HTTPTimeout   time.Duration
	Logger        *zap.Logger
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config) (*Client, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errkind.Wrap(errkind.Fatal, "parsing kalshi base URL", err)
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKeyID:       cfg.APIKeyID,
		privKey:        cfg.PrivateKey,
		http:           &http.Client{Timeout: timeout},
		baseURL:        cfg.BaseURL,
		basePathPrefix: parsed.Path,
		logger:         cfg.Logger,
	}, nil
}

func (c *Client) signPath(path string) string {
	return c.basePathPrefix + path
}

// Market is the exchange's wire representation of one tradeable ticker.
type Market struct {
	Ticker                 string `json:"ticker"`
	EventTicker            string `json:"event_ticker"`
	SeriesTicker           string `json:"series_ticker"`
	Title                  string `json:"title"`
	Status                 string `json:"status"`
	YesBid                 int    `json:"yes_bid"`
	YesAsk                 int    `json:"yes_ask"`
	NoBid                  int    `json:"no_bid"`
	NoAsk                  int    `json:"no_ask"`
	Volume                 int64  `json:"volume"`
	ExpectedExpirationTime string `json:"expected_expiration_time"`
	ExpirationTime         string `json:"expiration_time"`
}

// ExpirationParsed resolves the market's effective expiration time,
// preferring the expected time Kalshi uses for series with a rolling
// settlement window.
func (m *Market) ExpirationParsed() (time.Time, error) {
	if m.ExpectedExpirationTime != "" {
		return time.Parse(time.RFC3339, m.ExpectedExpirationTime)
	}
	return time.Parse(time.RFC3339, m.ExpirationTime)
}

// Orderbook is the exchange's REST snapshot shape: depth levels as
// [price, quantity] pairs per side.
type Orderbook struct {
	Ticker string  `json:"ticker"`
	Yes    [][]int `json:"yes"`
	No     [][]int `json:"no"`
}

// Balance is the account's total settled balance in cents.
type Balance struct {
	Balance int64 `json:"balance"`
}

// Position is one ticker's exchange-reported exposure.
type Position struct {
	Ticker         string `json:"ticker"`
	Position       int    `json:"position"` // positive=YES, negative=NO
	MarketExposure int64  `json:"market_exposure"`
	RealizedPnl    int64  `json:"realized_pnl"`
}

// OrderRequest is the signed order-placement body.
type OrderRequest struct {
	Ticker      string `json:"ticker"`
	Action      string `json:"action"` // "buy" or "sell"
	Side        string `json:"side"`   // "yes" or "no"
	Type        string `json:"type"`   // "limit" or "market"
	Count       int    `json:"count"`
	YesPrice    int    `json:"yes_price,omitempty"`
	NoPrice     int    `json:"no_price,omitempty"`
	TimeInForce string `json:"time_in_force,omitempty"`
	ClientOrderID string `json:"client_order_id,omitempty"`
}

// Order is the exchange's acknowledgement of a placed order.
type Order struct {
	OrderID        string `json:"order_id"`
	Ticker         string `json:"ticker"`
	Status         string `json:"status"`
	RemainingCount int    `json:"remaining_count"`
	FilledCount    int    `json:"fill_count"`
}

// GetMarkets lists markets for a series, optionally filtered by status.
func (c *Client) GetMarkets(ctx context.Context, seriesTicker, status string) ([]Market, error) {
	params := url.Values{}
	if seriesTicker != "" {
		params.Set("series_ticker", seriesTicker)
	}
	if status != "" {
		params.Set("status", status)
	}
	params.Set("limit", "200")

	var result struct {
		Markets []Market `json:"markets"`
	}
	if err := c.get(ctx, "/markets", params, &result); err != nil {
		return nil, err
	}
	return result.Markets, nil
}

// GetOrderbook fetches a REST snapshot of a ticker's depth book.
func (c *Client) GetOrderbook(ctx context.Context, ticker string, depth int) (*Orderbook, error) {
	params := url.Values{}
	if depth > 0 {
		params.Set("depth", fmt.Sprintf("%d", depth))
	}
	var result struct {
		Orderbook Orderbook `json:"orderbook"`
	}
	if err := c.get(ctx, "/markets/"+ticker+"/orderbook", params, &result); err != nil {
		return nil, err
	}
	return &result.Orderbook, nil
}

// GetBalance fetches the account's total balance.
func (c *Client) GetBalance(ctx context.Context) (*Balance, error) {
	var result Balance
	if err := c.get(ctx, "/portfolio/balance", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPositions fetches every open position, optionally filtered to one
// event.
func (c *Client) GetPositions(ctx context.Context, eventTicker string) ([]Position, error) {
	params := url.Values{}
	if eventTicker != "" {
		params.Set("event_ticker", eventTicker)
	}
	params.Set("limit", "200")

	var result struct {
		Positions []Position `json:"market_positions"`
	}
	if err := c.get(ctx, "/portfolio/positions", params, &result); err != nil {
		return nil, err
	}
	return result.Positions, nil
}

// CreateOrder submits a signed order.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	var result struct {
		Order Order `json:"order"`
	}
	if err := c.post(ctx, "/portfolio/orders", req, &result); err != nil {
		return nil, err
	}
	return &result.Order, nil
}

// CancelOrder cancels a resting order by ID.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	return c.delete(ctx, "/portfolio/orders/"+orderID)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errkind.Wrap(errkind.Transient, "building request", err)
	}
	return c.doSigned(req, path, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errkind.Wrap(errkind.Logical, "encoding request body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(data)))
	if err != nil {
		return errkind.Wrap(errkind.Transient, "building request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doSigned(req, path, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return errkind.Wrap(errkind.Transient, "building request", err)
	}
	return c.doSigned(req, path, nil)
}

func (c *Client) doSigned(req *http.Request, signPath string, out interface{}) error {
	headers, err := AuthHeaders(c.apiKeyID, c.privKey, req.Method, c.signPath(signPath))
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")

	if c.logger != nil {
		c.logger.Debug("kalshi request", zap.String("method", req.Method), zap.String("url", req.URL.String()))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errkind.Wrap(errkind.Transient, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errkind.Wrap(errkind.Transient, "reading response", err)
	}

	if resp.StatusCode >= 400 {
		return classifyHTTPError(resp.StatusCode, body)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return errkind.Wrap(errkind.Protocol, "decoding response", err)
		}
	}
	return nil
}

func classifyHTTPError(status int, body []byte) error {
	msg := fmt.Sprintf("kalshi API error %d: %s", status, string(body))
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errkind.NewHTTP(errkind.Credentials, status, msg)
	case status == http.StatusTooManyRequests || status >= 500:
		return errkind.NewHTTP(errkind.Transient, status, msg)
	default:
		return errkind.NewHTTP(errkind.Logical, status, msg)
	}
}
