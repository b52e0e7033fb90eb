package market

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/mansourplus/crypto-trader/pkg/logger"
)

// StreamPrices subscribes to the ticker channel for one symbol and
// emits every last-price update until ctx is cancelled. The connection
// reconnects with linear backoff, giving up after eight consecutive
// dial failures.
func (c *Client) StreamPrices(ctx context.Context, symbol string) <-chan float64 {
	ch := make(chan float64)
	go func() {
		defer close(ch)
		dialer := &websocket.Dialer{}
		retry := 0
		for {
			conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
			if err != nil {
				retry++
				if retry > 8 {
					logger.Error("market stream %s: giving up after %d dial failures", symbol, retry-1)
					return
				}
				time.Sleep(time.Duration(300*retry) * time.Millisecond)
				continue
			}
			retry = 0
			_ = conn.WriteJSON(map[string]any{"method": "sub.ticker", "param": map[string]string{"symbol": symbol}})

			stopPing := make(chan struct{})
			go func() {
				t := time.NewTicker(15 * time.Second)
				defer t.Stop()
				for {
					select {
					case <-stopPing:
						return
					case <-ctx.Done():
						// Unblocks a pending ReadMessage so the stream
						// goroutine does not linger until the peer drops.
						_ = conn.Close()
						return
					case <-t.C:
						_ = conn.WriteJSON(map[string]string{"method": "ping"})
					}
				}
			}()

			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					close(stopPing)
					_ = conn.Close()
					break
				}
				var frame struct {
					Channel string `json:"channel"`
					Data    struct {
						Last float64 `json:"lastPrice"`
					} `json:"data"`
				}
				if err := sonic.Unmarshal(msg, &frame); err == nil && frame.Channel == "push.ticker" {
					if frame.Data.Last != 0 {
						c.setPrice(symbol, frame.Data.Last)
						select {
						case ch <- frame.Data.Last:
						case <-ctx.Done():
							_ = conn.Close()
							return
						}
					}
				}
			}

			select {
			case <-ctx.Done():
				return
			default:
				time.Sleep(1 * time.Second)
			}
		}
	}()
	return ch
}
