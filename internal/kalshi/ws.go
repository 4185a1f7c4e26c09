package kalshi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/brabsmit/sportsbook-arb/internal/errkind"
	"github.com/brabsmit/sportsbook-arb/internal/orderbook"
)

// subscribeCmd is the client->server command to join the orderbook_delta
// channel for a set of tickers. Kalshi assigns no server-side ID for the
// subscription; the client picks its own correlation ID ("id") to match
// later "subscribed"/"error" acks against the command that caused them.
type subscribeCmd struct {
	ID     int      `json:"id"`
	Cmd    string   `json:"cmd"`
	Params cmdParams `json:"params"`
}

type cmdParams struct {
	Channels      []string `json:"channels"`
	MarketTickers []string `json:"market_tickers"`
}

// wireMessage is the server->client envelope; Type selects how Msg
// should be interpreted.
type wireMessage struct {
	Type string          `json:"type"`
	SID  int             `json:"sid"`
	Msg  json.RawMessage `json:"msg"`
}

type snapshotMsg struct {
	MarketTicker string  `json:"market_ticker"`
	Yes          [][]int `json:"yes"`
	No           [][]int `json:"no"`
}

type deltaMsg struct {
	MarketTicker string `json:"market_ticker"`
	Price        int    `json:"price"`
	Delta        int64  `json:"delta"`
	Side         string `json:"side"`
}

// FeedConfig configures a Feed.
type FeedConfig struct {
	URL                   string
	APIKeyID              string
	DialTimeout           time.Duration
	PongTimeout           time.Duration
	PingInterval          time.Duration
	ReconnectInitialDelay time.Duration
	ReconnectMaxDelay     time.Duration
	ReconnectBackoffMult  float64
	Logger                *zap.Logger
}

// Feed is a single WebSocket connection to Kalshi's market data channel,
// forwarding orderbook_snapshot/orderbook_delta messages into an
// orderbook.Manager.
type Feed struct {
	cfg          FeedConfig
	authHeader   func(method, path string) (http.Header, error)
	conn         *websocket.Conn
	books        *orderbook.Manager
	logger       *zap.Logger
	reconnectMgr *ReconnectManager

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.RWMutex
	subscribed map[string]bool
	nextCmdID  atomic.Int64
	connected  atomic.Bool
}

// NewFeed builds a Feed. authHeader is called on every dial to produce
// the signing headers for the WebSocket upgrade request (Kalshi signs
// the handshake path, not each frame).
func NewFeed(cfg FeedConfig, authHeader func(method, path string) (http.Header, error), books *orderbook.Manager) *Feed {
	ctx, cancel := context.WithCancel(context.Background())
	return &Feed{
		cfg:        cfg,
		authHeader: authHeader,
		books:      books,
		logger:     cfg.Logger,
		reconnectMgr: NewReconnectManager(ReconnectConfig{
			InitialDelay:      cfg.ReconnectInitialDelay,
			MaxDelay:          cfg.ReconnectMaxDelay,
			BackoffMultiplier: cfg.ReconnectBackoffMult,
			JitterPercent:     0.2,
		}, cfg.Logger),
		ctx:        ctx,
		cancel:     cancel,
		subscribed: make(map[string]bool),
	}
}

// Start dials the feed and begins the read/ping/reconnect loops.
func (f *Feed) Start() error {
	if err := f.connect(f.ctx); err != nil {
		return fmt.Errorf("initial connection: %w", err)
	}
	f.wg.Add(3)
	go f.readLoop()
	go f.pingLoop()
	go f.reconnectLoop()
	return nil
}

func (f *Feed) connect(ctx context.Context) error {
	header, err := f.authHeader(http.MethodGet, "/ws")
	if err != nil {
		return err
	}
	dialer := websocket.Dialer{HandshakeTimeout: f.cfg.DialTimeout}
	conn, _, err := dialer.DialContext(ctx, f.cfg.URL, header)
	if err != nil {
		return errkind.Wrap(errkind.Transient, "websocket dial", err)
	}
	conn.SetPongHandler(func(string) error { return nil })

	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()
	f.connected.Store(true)
	ActiveConnections.Set(1)
	if f.logger != nil {
		f.logger.Info("kalshi websocket connected")
	}
	return nil
}

// Subscribe joins the orderbook_delta channel for the given tickers.
func (f *Feed) Subscribe(tickers []string) error {
	if len(tickers) == 0 {
		return nil
	}
	f.mu.Lock()
	newTickers := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if !f.subscribed[t] {
			f.subscribed[t] = true
			newTickers = append(newTickers, t)
		}
	}
	conn := f.conn
	f.mu.Unlock()
	if len(newTickers) == 0 || conn == nil {
		return nil
	}

	cmd := subscribeCmd{
		ID:  int(f.nextCmdID.Add(1)),
		Cmd: "subscribe",
		Params: cmdParams{
			Channels:      []string{"orderbook_delta"},
			MarketTickers: newTickers,
		},
	}
	return conn.WriteJSON(cmd)
}

func (f *Feed) readLoop() {
	defer f.wg.Done()
	for {
		select {
		case <-f.ctx.Done():
			return
		default:
		}

		f.mu.RLock()
		conn := f.conn
		f.mu.RUnlock()
		if conn == nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if f.logger != nil {
				f.logger.Warn("kalshi websocket read error", zap.Error(err))
			}
			f.connected.Store(false)
			ActiveConnections.Set(0)
			return
		}
		f.handleMessage(raw)
	}
}

func (f *Feed) handleMessage(raw []byte) {
	var wm wireMessage
	if err := json.Unmarshal(raw, &wm); err != nil {
		if f.logger != nil {
			f.logger.Debug("kalshi websocket unparseable message", zap.Error(err))
		}
		return
	}

	switch wm.Type {
	case "orderbook_snapshot":
		var sm snapshotMsg
		if err := json.Unmarshal(wm.Msg, &sm); err != nil {
			MessagesDroppedTotal.WithLabelValues("parse_error").Inc()
			return
		}
		MessagesReceivedTotal.WithLabelValues("orderbook_snapshot").Inc()
		f.books.ApplySnapshot(sm.MarketTicker, toLevels(sm.Yes), toLevels(sm.No))
	case "orderbook_delta":
		var dm deltaMsg
		if err := json.Unmarshal(wm.Msg, &dm); err != nil {
			MessagesDroppedTotal.WithLabelValues("parse_error").Inc()
			return
		}
		MessagesReceivedTotal.WithLabelValues("orderbook_delta").Inc()
		if err := f.books.ApplyDelta(dm.MarketTicker, dm.Side, dm.Price, dm.Delta); err != nil {
			if f.logger != nil {
				f.logger.Warn("dropping malformed orderbook delta", zap.Error(err))
			}
		}
	default:
		MessagesReceivedTotal.WithLabelValues(wm.Type).Inc()
	}
}

func toLevels(pairs [][]int) []orderbook.Level {
	out := make([]orderbook.Level, 0, len(pairs))
	for _, p := range pairs {
		if len(p) < 2 {
			continue
		}
		out = append(out, orderbook.Level{PriceCents: p[0], Quantity: int64(p[1])})
	}
	return out
}

func (f *Feed) pingLoop() {
	defer f.wg.Done()
	ticker := time.NewTicker(f.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			if !f.connected.Load() {
				continue
			}
			f.mu.RLock()
			conn := f.conn
			f.mu.RUnlock()
			if conn == nil {
				continue
			}
			_ = conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
		}
	}
}

func (f *Feed) reconnectLoop() {
	defer f.wg.Done()
	for {
		select {
		case <-f.ctx.Done():
			return
		default:
		}
		if f.connected.Load() {
			time.Sleep(time.Second)
			continue
		}
		if f.logger != nil {
			f.logger.Warn("kalshi websocket connection lost, reconnecting")
		}
		if err := f.reconnectMgr.Reconnect(f.ctx, f.connect); err != nil {
			return
		}
		if err := f.resubscribeAll(); err != nil {
			if f.logger != nil {
				f.logger.Error("resubscribe after reconnect failed", zap.Error(err))
			}
			f.connected.Store(false)
			continue
		}
		f.wg.Add(1)
		go f.readLoop()
	}
}

func (f *Feed) resubscribeAll() error {
	f.mu.RLock()
	tickers := make([]string, 0, len(f.subscribed))
	for t := range f.subscribed {
		tickers = append(tickers, t)
	}
	f.mu.RUnlock()
	if len(tickers) == 0 {
		return nil
	}
	f.mu.Lock()
	f.subscribed = make(map[string]bool)
	f.mu.Unlock()
	return f.Subscribe(tickers)
}

// Close stops all loops and closes the underlying connection.
func (f *Feed) Close() error {
	f.cancel()
	f.mu.RLock()
	if f.conn != nil {
		f.conn.Close()
	}
	f.mu.RUnlock()
	f.wg.Wait()
	ActiveConnections.Set(0)
	return nil
}
