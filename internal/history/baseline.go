package history

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"coinboard/internal/exchange"
	"coinboard/internal/market"
)

// ErrNoData means the exchange returned too few rows to derive a
// baseline. Callers treat it like any other resolver failure: the
// baseline stays absent and coloring degrades to neutral.
var ErrNoData = fmt.Errorf("baseline: not enough data")

// ResolveBaseline computes the reference close the chart is colored
// against.
//
// For the intraday interval it is yesterday's daily close: the daily
// granularity is queried with a 2-row window and the second-to-last
// row is taken, since the last row is today's still-forming candle.
//
// For every other interval the reference is the close of the first
// candle in the interval's own window, i.e. the price at the start of
// the window rather than a true prior-period close. That asymmetry is
// deliberate product behavior; see DESIGN.md.
func ResolveBaseline(ctx context.Context, source KlineSource, interval market.Interval, window market.ClockWindow) (*decimal.Decimal, error) {
	if interval == market.IntervalToday {
		rows, err := source.RecentKlines(ctx, "1d", 2)
		if err != nil {
			return nil, err
		}
		if len(rows) < 2 {
			return nil, ErrNoData
		}
		yesterday := rows[len(rows)-2].Close
		return &yesterday, nil
	}

	rows, err := source.Klines(ctx, exchange.BucketInterval(window.Bucket), window.Start, window.End, exchange.MaxKlineLimit)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	first := rows[0].Close
	return &first, nil
}
