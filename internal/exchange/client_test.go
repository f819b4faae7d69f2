package exchange

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "BTCUSDT", testLogger())
}

func TestKlinesParsesPositionalRows(t *testing.T) {
	var gotQuery map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, klinesPath, r.URL.Path)
		gotQuery = map[string]string{
			"symbol":    r.URL.Query().Get("symbol"),
			"interval":  r.URL.Query().Get("interval"),
			"startTime": r.URL.Query().Get("startTime"),
			"limit":     r.URL.Query().Get("limit"),
		}
		w.Write([]byte(`[
			[1737331200000,"104512.01","104610.00","104498.35","104533.96","12.48",1737331259999,"1304000.12",420,"6.2","648000.55","0"],
			[1737331260000,"104533.96","104590.00","104500.00","104571.10","8.90",1737331319999,"930000.00",300,"4.1","428000.00","0"]
		]`))
	})

	start := time.UnixMilli(1737331200000)
	candles, err := client.Klines(context.Background(), "1m", start, start.Add(2*time.Minute), 1000)
	require.NoError(t, err)
	require.Len(t, candles, 2)

	assert.Equal(t, "BTCUSDT", gotQuery["symbol"])
	assert.Equal(t, "1m", gotQuery["interval"])
	assert.Equal(t, "1737331200000", gotQuery["startTime"])
	assert.Equal(t, "1000", gotQuery["limit"])

	assert.Equal(t, int64(1737331200000), candles[0].OpenTime.UnixMilli())
	assert.True(t, candles[0].Close.Equal(decimal.RequireFromString("104533.96")))
	assert.True(t, candles[1].Close.Equal(decimal.RequireFromString("104571.10")))
}

func TestKlinesNonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	})

	_, err := client.Klines(context.Background(), "1m", time.Now().Add(-time.Hour), time.Now(), 1000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 418")
}

func TestKlinesMalformedRow(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[1737331200000,"o","h","l",42]]`))
	})

	_, err := client.Klines(context.Background(), "1m", time.Now().Add(-time.Hour), time.Now(), 1000)
	require.Error(t, err)
}

func TestKlinesMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	})

	_, err := client.Klines(context.Background(), "1m", time.Now().Add(-time.Hour), time.Now(), 1000)
	require.Error(t, err)
}

func TestRecentKlines(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "2", r.URL.Query().Get("limit"))
		require.Empty(t, r.URL.Query().Get("startTime"))
		w.Write([]byte(`[
			[1737244800000,"o","h","l","103000.00","v"],
			[1737331200000,"o","h","l","104000.00","v"]
		]`))
	})

	candles, err := client.RecentKlines(context.Background(), "1d", 2)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.True(t, candles[0].Close.Equal(decimal.RequireFromString("103000.00")))
}

func TestLastPrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, tickerPricePath, r.URL.Path)
		require.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"104533.96000000"}`))
	})

	price, err := client.LastPrice(context.Background())
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("104533.96")))
}

func TestLastPriceBadDecimal(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"not-a-number"}`))
	})

	_, err := client.LastPrice(context.Background())
	require.Error(t, err)
}

func TestChange24h(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, ticker24hPath, r.URL.Path)
		w.Write([]byte(`{"symbol":"BTCUSDT","priceChangePercent":"-2.150"}`))
	})

	change, err := client.Change24h(context.Background())
	require.NoError(t, err)
	assert.True(t, change.Equal(decimal.RequireFromString("-2.15")))
}
