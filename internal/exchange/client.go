package exchange

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/mansourplus/crypto-trader/internal/models"
)

type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

// Client places orders against the exchange's signed REST API. Errors
// from Do/decode are transient by contract; retry policy belongs to the
// caller.
type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	apiSecret string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
	}
}

// PlaceBuy submits a market buy order and returns the recorded
// transaction.
func (c *Client) PlaceBuy(ctx context.Context, userID int64, symbol string, quantity float64) (models.Transaction, error) {
	return c.placeOrder(ctx, userID, symbol, models.TransactionBuy, quantity)
}

// PlaceSell submits a market sell order and returns the recorded
// transaction.
func (c *Client) PlaceSell(ctx context.Context, userID int64, symbol string, quantity float64) (models.Transaction, error) {
	return c.placeOrder(ctx, userID, symbol, models.TransactionSell, quantity)
}

type orderResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		OrderID  string  `json:"orderId"`
		Symbol   string  `json:"symbol"`
		Side     string  `json:"side"`
		Quantity float64 `json:"quantity"`
		Price    float64 `json:"price"`
		Fee      float64 `json:"fee"`
		Status   string  `json:"status"`
	} `json:"data"`
}

func (c *Client) placeOrder(ctx context.Context, userID int64, symbol string, side models.TransactionType, quantity float64) (tx models.Transaction, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("exchange.placeOrder: %w", err)
		}
	}()

	body := map[string]any{
		"symbol":   symbol,
		"side":     string(side),
		"ordType":  "market",
		"quantity": quantity,
	}
	payload, err := sonic.Marshal(body)
	if err != nil {
		return models.Transaction{}, err
	}

	const requestPath = "/api/v1/order"
	ts := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+requestPath, bytes.NewReader(payload))
	if err != nil {
		return models.Transaction{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("X-API-TIMESTAMP", ts)
	req.Header.Set("X-API-SIGN", c.sign(ts, http.MethodPost, requestPath, string(payload)))

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Transaction{}, err
	}
	defer resp.Body.Close()

	rb, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return models.Transaction{}, fmt.Errorf("http %d: %s", resp.StatusCode, string(rb))
	}

	var r orderResponse
	if err := sonic.Unmarshal(rb, &r); err != nil {
		return models.Transaction{}, err
	}
	if r.Code != "0" {
		return models.Transaction{}, fmt.Errorf("order rejected: code=%s msg=%s", r.Code, r.Msg)
	}

	status := models.TransactionPending
	if r.Data.Status == "filled" {
		status = models.TransactionCompleted
	}

	return models.Transaction{
		ID:         uuid.NewString(),
		UserID:     userID,
		Symbol:     symbol,
		Type:       side,
		Quantity:   r.Data.Quantity,
		Price:      r.Data.Price,
		Total:      r.Data.Quantity * r.Data.Price,
		Fee:        r.Data.Fee,
		Timestamp:  time.Now().UTC(),
		ExchangeID: r.Data.OrderID,
		Status:     status,
	}, nil
}

// sign builds the HMAC-SHA256 request signature expected by the
// exchange: base64(hmac(ts + method + path + body)).
func (c *Client) sign(ts, method, path, body string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(ts + method + path + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
