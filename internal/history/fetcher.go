// Package history retrieves the candle backfill and the reference
// price for one interval activation from the exchange REST API.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coinboard/internal/exchange"
	"coinboard/internal/market"
)

// KlineSource is the slice of the exchange client the fetchers need.
type KlineSource interface {
	Klines(ctx context.Context, interval string, start, end time.Time, limit int) ([]market.Candle, error)
	RecentKlines(ctx context.Context, interval string, limit int) ([]market.Candle, error)
}

// Fetcher retrieves the full candle history for a clock window in
// pages of up to 1000 buckets.
type Fetcher struct {
	source KlineSource
	logger *slog.Logger
}

func NewFetcher(source KlineSource, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		source: source,
		logger: logger.With("component", "history"),
	}
}

// Fetch pages through the window and returns every candle in it,
// ascending by open time with no duplicate buckets. Any page failure
// aborts the whole fetch; accumulated pages are discarded so the
// caller never builds a series from a partial window.
func (f *Fetcher) Fetch(ctx context.Context, window market.ClockWindow) ([]market.Candle, error) {
	interval := exchange.BucketInterval(window.Bucket)
	pageSpan := time.Duration(exchange.MaxKlineLimit) * window.Bucket

	var candles []market.Candle
	cursor := window.Start

	for cursor.Before(window.End) {
		pageEnd := cursor.Add(pageSpan)
		if pageEnd.After(window.End) {
			pageEnd = window.End
		}

		page, err := f.source.Klines(ctx, interval, cursor, pageEnd, exchange.MaxKlineLimit)
		if err != nil {
			return nil, fmt.Errorf("fetch %s page at %s: %w", interval, cursor.Format(time.RFC3339), err)
		}
		if len(page) == 0 {
			break
		}

		candles = append(candles, page...)
		// One bucket past the last received candle, so the next page
		// can never repeat a bucket.
		cursor = page[len(page)-1].OpenTime.Add(window.Bucket)
	}

	f.logger.Debug("history fetched",
		"interval", interval,
		"candles", len(candles),
		"from", window.Start.Format(time.RFC3339),
		"to", window.End.Format(time.RFC3339),
	)
	return candles, nil
}
