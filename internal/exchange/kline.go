// Kline wire formats for the exchange REST and WebSocket APIs.
//
// REST rows are positional JSON arrays:
//
//	[
//	  1737331200000,        // 0: open time (ms epoch)
//	  "104512.01000000",    // 1: open
//	  "104610.00000000",    // 2: high
//	  "104498.35000000",    // 3: low
//	  "104533.96000000",    // 4: close
//	  "12.48213000",        // 5: volume
//	  ...                   // close time, quote volume, trade count, ...
//	]
//
// The stream wraps one forming kline per message:
//
//	{"e":"kline","E":1737331260123,"s":"BTCUSDT","k":{"t":1737331200000,"c":"104533.96",...}}
package exchange

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"coinboard/internal/market"
)

const (
	klineOpenTimeIndex = 0
	klineCloseIndex    = 4
	klineRowMinLen     = 5
)

// klineEvent is the streaming envelope for a single forming kline.
type klineEvent struct {
	EventType string       `json:"e"`
	EventTime int64        `json:"E"`
	Symbol    string       `json:"s"`
	Kline     klinePayload `json:"k"`
}

type klinePayload struct {
	OpenTime  int64  `json:"t"`
	CloseTime int64  `json:"T"`
	Interval  string `json:"i"`
	Open      string `json:"o"`
	Close     string `json:"c"`
	High      string `json:"h"`
	Low       string `json:"l"`
	IsClosed  bool   `json:"x"`
}

// parseKlineRow reduces one positional REST row to the candle fields
// the chart needs.
func parseKlineRow(row []any) (market.Candle, error) {
	if len(row) < klineRowMinLen {
		return market.Candle{}, fmt.Errorf("kline row too short: %d fields", len(row))
	}

	openMs, ok := row[klineOpenTimeIndex].(float64)
	if !ok {
		return market.Candle{}, fmt.Errorf("kline open time is %T, want number", row[klineOpenTimeIndex])
	}
	closeStr, ok := row[klineCloseIndex].(string)
	if !ok {
		return market.Candle{}, fmt.Errorf("kline close is %T, want string", row[klineCloseIndex])
	}
	closePrice, err := decimal.NewFromString(closeStr)
	if err != nil {
		return market.Candle{}, fmt.Errorf("parse close %q: %w", closeStr, err)
	}

	return market.Candle{
		OpenTime: time.UnixMilli(int64(openMs)),
		Close:    closePrice,
	}, nil
}

// BucketInterval maps a window bucket duration to the exchange kline
// interval parameter.
func BucketInterval(bucket time.Duration) string {
	switch bucket {
	case time.Minute:
		return "1m"
	case time.Hour:
		return "1h"
	case 4 * time.Hour:
		return "4h"
	default:
		return "1d"
	}
}
