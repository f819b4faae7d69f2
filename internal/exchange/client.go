package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"coinboard/internal/market"
)

const (
	DefaultRESTBase = "https://api.binance.com"

	klinesPath      = "/api/v3/klines"
	tickerPricePath = "/api/v3/ticker/price"
	ticker24hPath   = "/api/v3/ticker/24hr"

	// MaxKlineLimit is the largest page the klines endpoint serves.
	MaxKlineLimit = 1000

	requestTimeout = 10 * time.Second
)

// HTTPClient is the shared client for all REST calls.
var HTTPClient = &http.Client{Timeout: requestTimeout}

// Client is a read-only REST client for a single exchange symbol.
// All requests go through one rate limiter so the paged historical
// fetch and the pollers never trample the exchange limits together.
type Client struct {
	baseURL string
	symbol  string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a client for one symbol. baseURL may be empty to
// use the public endpoint.
func NewClient(baseURL, symbol string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultRESTBase
	}
	return &Client{
		baseURL: baseURL,
		symbol:  symbol,
		http:    HTTPClient,
		limiter: rate.NewLimiter(rate.Limit(10), 10),
		logger:  logger.With("component", "exchange"),
	}
}

// Symbol returns the symbol this client is bound to.
func (c *Client) Symbol() string { return c.symbol }

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("non-success response", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("%s: status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// Klines fetches one page of candles. start is inclusive, end
// exclusive; limit is capped at MaxKlineLimit by the exchange. The
// result is ascending by open time, as the exchange serves it.
func (c *Client) Klines(ctx context.Context, interval string, start, end time.Time, limit int) ([]market.Candle, error) {
	query := url.Values{}
	query.Set("symbol", c.symbol)
	query.Set("interval", interval)
	query.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	query.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var rows [][]any
	if err := c.get(ctx, klinesPath, query, &rows); err != nil {
		return nil, err
	}

	candles := make([]market.Candle, 0, len(rows))
	for _, row := range rows {
		candle, err := parseKlineRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", klinesPath, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// RecentKlines fetches the most recent candles at the given
// granularity without a time window, newest last.
func (c *Client) RecentKlines(ctx context.Context, interval string, limit int) ([]market.Candle, error) {
	query := url.Values{}
	query.Set("symbol", c.symbol)
	query.Set("interval", interval)
	query.Set("limit", strconv.Itoa(limit))

	var rows [][]any
	if err := c.get(ctx, klinesPath, query, &rows); err != nil {
		return nil, err
	}

	candles := make([]market.Candle, 0, len(rows))
	for _, row := range rows {
		candle, err := parseKlineRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", klinesPath, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// LastPrice fetches the current ticker price.
func (c *Client) LastPrice(ctx context.Context) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("symbol", c.symbol)

	var body struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := c.get(ctx, tickerPricePath, query, &body); err != nil {
		return decimal.Zero, err
	}

	price, err := decimal.NewFromString(body.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", body.Price, err)
	}
	return price, nil
}

// Change24h fetches the rolling 24-hour price change percentage.
func (c *Client) Change24h(ctx context.Context) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("symbol", c.symbol)

	var body struct {
		Symbol             string `json:"symbol"`
		PriceChangePercent string `json:"priceChangePercent"`
	}
	if err := c.get(ctx, ticker24hPath, query, &body); err != nil {
		return decimal.Zero, err
	}

	change, err := decimal.NewFromString(body.PriceChangePercent)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse change %q: %w", body.PriceChangePercent, err)
	}
	return change, nil
}
