// Package oddsapi is the sportsbook odds source client: a plain HTTP GET
// against a REST aggregator that returns, per sport, an array of
// games each carrying every bookmaker's head-to-head American-odds quote.
// Unlike internal/kalshi this endpoint is unauthenticated beyond a query
// key and unsigned, but it rate-limits by subscription quota, so every
// response's remaining/used headers are read and logged rather than
// discarded.
package oddsapi

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/brabsmit/sportsbook-arb/internal/domain"
	"github.com/brabsmit/sportsbook-arb/internal/errkind"
)

// Client fetches odds for one sport at a time.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// Config configures a Client.
type Config struct {
	BaseURL     string
	APIKey      string
	HTTPTimeout time.Duration
	Logger      *zap.Logger
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  cfg.Logger,
	}
}

// Quota is the subscription usage reported by the odds source on every
// response.
type Quota struct {
	Remaining int
	Used      int
}

type wireOutcome struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

type wireMarket struct {
	Key      string        `json:"key"`
	Outcomes []wireOutcome `json:"outcomes"`
}

type wireBookmaker struct {
	Key     string       `json:"key"`
	Markets []wireMarket `json:"markets"`
}

type wireGame struct {
	ID           string          `json:"id"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	CommenceTime time.Time       `json:"commence_time"`
	Bookmakers   []wireBookmaker `json:"bookmakers"`
}

// FetchGames fetches every upcoming game for a sport, along with the
// quota the response reported.
func (c *Client) FetchGames(ctx context.Context, sport, region string) ([]domain.OddsGame, Quota, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", region)
	params.Set("markets", "h2h")
	params.Set("oddsFormat", "american")

	reqURL := c.baseURL + "/v4/sports/" + sport + "/odds?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, Quota{}, errkind.Wrap(errkind.Transient, "building odds request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, Quota{}, errkind.Wrap(errkind.Transient, "odds request failed", err)
	}
	defer resp.Body.Close()

	quota := Quota{
		Remaining: parseIntHeader(resp.Header.Get("x-requests-remaining")),
		Used:      parseIntHeader(resp.Header.Get("x-requests-used")),
	}
	if c.logger != nil {
		c.logger.Debug("odds source quota",
			zap.String("sport", sport),
			zap.Int("remaining", quota.Remaining),
			zap.Int("used", quota.Used))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, quota, errkind.Wrap(errkind.Transient, "reading odds response", err)
	}

	if resp.StatusCode >= 400 {
		return nil, quota, classifyHTTPError(resp.StatusCode, body)
	}

	var wire []wireGame
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, quota, errkind.Wrap(errkind.Protocol, "decoding odds response", err)
	}

	games := make([]domain.OddsGame, 0, len(wire))
	for _, g := range wire {
		games = append(games, toDomainGame(g))
	}
	return games, quota, nil
}

func toDomainGame(g wireGame) domain.OddsGame {
	bookmakers := make([]domain.Bookmaker, 0, len(g.Bookmakers))
	for _, bk := range g.Bookmakers {
		if len(bk.Markets) == 0 {
			continue
		}
		outcomes := make([]domain.OddsOutcome, 0, len(bk.Markets[0].Outcomes))
		for _, o := range bk.Markets[0].Outcomes {
			outcomes = append(outcomes, domain.OddsOutcome{Name: o.Name, Price: o.Price})
		}
		bookmakers = append(bookmakers, domain.Bookmaker{Key: bk.Key, Outcomes: outcomes})
	}
	return domain.OddsGame{
		ID:           g.ID,
		HomeTeam:     g.HomeTeam,
		AwayTeam:     g.AwayTeam,
		CommenceTime: g.CommenceTime,
		Bookmakers:   bookmakers,
	}
}

func parseIntHeader(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

func classifyHTTPError(status int, body []byte) error {
	msg := "odds API error " + strconv.Itoa(status) + ": " + string(body)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errkind.NewHTTP(errkind.Credentials, status, msg)
	case status == http.StatusTooManyRequests || status >= 500:
		return errkind.NewHTTP(errkind.Transient, status, msg)
	default:
		return errkind.NewHTTP(errkind.Logical, status, msg)
	}
}
