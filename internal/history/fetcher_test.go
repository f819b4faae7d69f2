package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coinboard/internal/market"
)

type klineCall struct {
	start time.Time
	end   time.Time
}

// fakeSource serves a fixed ascending candle set, windowed the way
// the exchange does: [start, end), capped at limit rows.
type fakeSource struct {
	data      []market.Candle
	calls     []klineCall
	failAfter int // fail the n-th call (1-based); 0 = never
	recent    []market.Candle
	recentErr error
}

func (f *fakeSource) Klines(_ context.Context, _ string, start, end time.Time, limit int) ([]market.Candle, error) {
	f.calls = append(f.calls, klineCall{start: start, end: end})
	if f.failAfter > 0 && len(f.calls) >= f.failAfter {
		return nil, errors.New("boom")
	}

	var out []market.Candle
	for _, c := range f.data {
		if c.OpenTime.Before(start) || !c.OpenTime.Before(end) {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeSource) RecentKlines(context.Context, string, int) ([]market.Candle, error) {
	return f.recent, f.recentErr
}

func minuteCandles(start time.Time, n int) []market.Candle {
	out := make([]market.Candle, n)
	for i := 0; i < n; i++ {
		out[i] = market.Candle{
			OpenTime: start.Add(time.Duration(i) * time.Minute),
			Close:    decimal.NewFromInt(int64(100 + i)),
		}
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchPagesThroughWindow(t *testing.T) {
	start := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{data: minuteCandles(start, 2500)}
	window := market.ClockWindow{
		Start:  start,
		End:    start.Add(2500 * time.Minute),
		Bucket: time.Minute,
	}

	candles, err := NewFetcher(source, testLogger()).Fetch(context.Background(), window)
	require.NoError(t, err)

	// 2500 one-minute buckets at page size 1000 is exactly 3 pages.
	require.Len(t, source.calls, 3)
	require.Len(t, candles, 2500)

	for i := 1; i < len(candles); i++ {
		require.True(t, candles[i].OpenTime.After(candles[i-1].OpenTime),
			"candle %d not strictly after its predecessor", i)
	}
	assert.Equal(t, start, candles[0].OpenTime)
	assert.Equal(t, start.Add(2499*time.Minute), candles[2499].OpenTime)
}

func TestFetchStopsOnEmptyPage(t *testing.T) {
	start := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{data: minuteCandles(start, 500)}
	window := market.ClockWindow{
		Start:  start,
		End:    start.Add(24 * time.Hour),
		Bucket: time.Minute,
	}

	candles, err := NewFetcher(source, testLogger()).Fetch(context.Background(), window)
	require.NoError(t, err)
	require.Len(t, candles, 500)
	// First page drains the data, second comes back empty.
	assert.Len(t, source.calls, 2)
}

func TestFetchEmptyWindowData(t *testing.T) {
	start := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{}
	window := market.ClockWindow{Start: start, End: start.Add(time.Hour), Bucket: time.Minute}

	candles, err := NewFetcher(source, testLogger()).Fetch(context.Background(), window)
	require.NoError(t, err)
	assert.Empty(t, candles)
	assert.Len(t, source.calls, 1)
}

func TestFetchAbortsWholeBatchOnPageFailure(t *testing.T) {
	start := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{data: minuteCandles(start, 2500), failAfter: 2}
	window := market.ClockWindow{
		Start:  start,
		End:    start.Add(2500 * time.Minute),
		Bucket: time.Minute,
	}

	candles, err := NewFetcher(source, testLogger()).Fetch(context.Background(), window)
	require.Error(t, err)
	// No partial result survives a failed page.
	assert.Nil(t, candles)
}

func TestFetchPageBoundsNeverExceedWindow(t *testing.T) {
	start := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{data: minuteCandles(start, 2500)}
	window := market.ClockWindow{
		Start:  start,
		End:    start.Add(2500 * time.Minute),
		Bucket: time.Minute,
	}

	_, err := NewFetcher(source, testLogger()).Fetch(context.Background(), window)
	require.NoError(t, err)

	for i, call := range source.calls {
		assert.False(t, call.end.After(window.End), "call %d end exceeds window", i)
		assert.True(t, call.start.Before(call.end), "call %d bounds inverted", i)
	}
}
