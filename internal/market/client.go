package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/mansourplus/crypto-trader/internal/models"
)

type Config struct {
	BaseURL string
	WSURL   string
	Timeout time.Duration
}

// Client talks to the market-data API: REST for snapshots and history,
// websocket for a live last-price feed (see stream.go). The last seen
// price per symbol is kept in an in-memory map fed by both paths.
type Client struct {
	mu     sync.RWMutex
	prices map[string]float64

	http    *http.Client
	baseURL string
	wsURL   string
	cache   *Cache
}

func NewClient(cfg Config, cache *Cache) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		prices:  make(map[string]float64),
		http:    &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		wsURL:   cfg.WSURL,
		cache:   cache,
	}
}

func (c *Client) setPrice(symbol string, price float64) {
	c.mu.Lock()
	c.prices[symbol] = price
	c.mu.Unlock()
}

// LastPrice returns the most recent price seen for the symbol, 0 if
// none yet.
func (c *Client) LastPrice(symbol string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prices[symbol]
}

type tickerPayload struct {
	Symbol             string  `json:"symbol"`
	Name               string  `json:"name"`
	LastPrice          float64 `json:"lastPrice"`
	PriceChangePercent float64 `json:"priceChangePercent"`
	MarketCap          float64 `json:"marketCap"`
	Volume             float64 `json:"volume"`
	CirculatingSupply  float64 `json:"circulatingSupply"`
	TotalSupply        float64 `json:"totalSupply"`
}

func (p tickerPayload) asset() models.Asset {
	return models.Asset{
		Symbol:            p.Symbol,
		Name:              p.Name,
		CurrentPrice:      p.LastPrice,
		Change24h:         p.PriceChangePercent,
		MarketCap:         p.MarketCap,
		Volume24h:         p.Volume,
		CirculatingSupply: p.CirculatingSupply,
		TotalSupply:       p.TotalSupply,
		UpdatedAt:         time.Now().UTC(),
	}
}

// CurrentPrice returns the asset snapshot for a symbol, read through
// the redis cache.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (models.Asset, error) {
	if cached, ok := c.cache.GetAsset(ctx, symbol); ok {
		return *cached, nil
	}

	var payload tickerPayload
	if err := c.getJSON(ctx, "/api/v1/ticker", url.Values{"symbol": {symbol}}, &payload); err != nil {
		return models.Asset{}, fmt.Errorf("market.CurrentPrice: %w", err)
	}

	asset := payload.asset()
	c.setPrice(symbol, asset.CurrentPrice)
	// Cache writes are best-effort; the snapshot is already here.
	_ = c.cache.SetAsset(ctx, asset)
	return asset, nil
}

type klinePayload struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// PriceHistory returns up to limit candles for the symbol, ascending by
// timestamp.
func (c *Client) PriceHistory(ctx context.Context, symbol, timeframe string, limit int) ([]models.PricePoint, error) {
	q := url.Values{
		"symbol":   {symbol},
		"interval": {timeframe},
		"limit":    {strconv.Itoa(limit)},
	}
	var payload []klinePayload
	if err := c.getJSON(ctx, "/api/v1/klines", q, &payload); err != nil {
		return nil, fmt.Errorf("market.PriceHistory: %w", err)
	}

	points := make([]models.PricePoint, 0, len(payload))
	for _, k := range payload {
		points = append(points, models.PricePoint{
			Timestamp: time.UnixMilli(k.Timestamp).UTC(),
			Open:      k.Open,
			High:      k.High,
			Low:       k.Low,
			Close:     k.Close,
			Volume:    k.Volume,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
	return points, nil
}

// TopAssets returns the exchange's ranking of assets by market cap.
func (c *Client) TopAssets(ctx context.Context, limit int) ([]models.Asset, error) {
	var payload []tickerPayload
	if err := c.getJSON(ctx, "/api/v1/tickers", url.Values{"limit": {strconv.Itoa(limit)}}, &payload); err != nil {
		return nil, fmt.Errorf("market.TopAssets: %w", err)
	}

	assets := make([]models.Asset, 0, len(payload))
	for _, p := range payload {
		assets = append(assets, p.asset())
	}
	return assets, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}
	return sonic.Unmarshal(body, out)
}
