package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWSServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Subscribe frame comes first.
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.WriteJSON(map[string]any{
			"channel": "push.ticker",
			"data":    map[string]float64{"lastPrice": 50000},
		})
		// Hold the connection open until the client drops it.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func TestStreamPricesStopsOnContextCancel(t *testing.T) {
	srv := newWSServer(t)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	c := NewClient(Config{WSURL: wsURL}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := c.StreamPrices(ctx, "BTC")

	select {
	case price, ok := <-ch:
		require.True(t, ok)
		assert.InDelta(t, 50000.0, price, 1e-9)
	case <-time.After(3 * time.Second):
		t.Fatal("no price received from stream")
	}
	assert.InDelta(t, 50000.0, c.LastPrice("BTC"), 1e-9)

	// Cancelling must close the idle connection and end the stream even
	// though the reader is blocked waiting for the next frame.
	cancel()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stream did not stop after context cancel")
		}
	}
}
