package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// minuteLabel is the label format the intraday grid and the live feed
// must agree on; live updates are matched to slots by this string.
const minuteLabel = "15:04"

// Candle is one exchange kline reduced to the fields the chart uses.
// Immutable once fetched, ordered ascending by OpenTime.
type Candle struct {
	OpenTime time.Time
	Close    decimal.Decimal
}

// LiveUpdate is one streaming tick for a forming bucket, keyed by the
// bucket's open time.
type LiveUpdate struct {
	OpenTime time.Time
	Close    decimal.Decimal
}

// Series is the positionally aligned label/price pair the renderer
// draws. A nil price means "no data for this slot"; the renderer must
// not draw a connecting line through it.
type Series struct {
	Labels []string
	Prices []*decimal.Decimal
}

// Len returns the number of slots.
func (s Series) Len() int { return len(s.Labels) }

// Clone returns a deep copy of the label and price slices. Prices are
// immutable decimals, so sharing the pointed-to values is fine.
func (s Series) Clone() Series {
	out := Series{
		Labels: make([]string, len(s.Labels)),
		Prices: make([]*decimal.Decimal, len(s.Prices)),
	}
	copy(out.Labels, s.Labels)
	copy(out.Prices, s.Prices)
	return out
}

// SlotIndex returns the position of a label, or -1 when the label is
// not part of the series.
func (s Series) SlotIndex(label string) int {
	for i, l := range s.Labels {
		if l == label {
			return i
		}
	}
	return -1
}

// MinuteLabel formats a bucket open time the way the intraday grid
// labels its slots.
func MinuteLabel(t time.Time) string {
	return t.Local().Format(minuteLabel)
}

func labelFormat(interval Interval) string {
	switch interval {
	case IntervalWeek, IntervalMonth:
		return "01/02 15"
	default:
		return "2006-01-02"
	}
}

// BuildSeries converts fetched candles into a renderable series.
//
// For the intraday interval the full 1440-minute grid is generated up
// front and candles are slotted into it by wall-clock minute, so slots
// with no trade stay absent and live updates later land on an existing
// label. Should two candles map to the same minute the first one wins;
// correct exchange input never does that.
//
// Every other interval gets one label per candle in fetch order, with
// no gap synthesis. The series is rebuilt from scratch on every
// interval or data change.
func BuildSeries(candles []Candle, interval Interval) Series {
	if interval != IntervalToday {
		s := Series{
			Labels: make([]string, 0, len(candles)),
			Prices: make([]*decimal.Decimal, 0, len(candles)),
		}
		format := labelFormat(interval)
		for _, c := range candles {
			price := c.Close
			s.Labels = append(s.Labels, c.OpenTime.Local().Format(format))
			s.Prices = append(s.Prices, &price)
		}
		return s
	}

	const minutesPerDay = 24 * 60
	s := Series{
		Labels: make([]string, minutesPerDay),
		Prices: make([]*decimal.Decimal, minutesPerDay),
	}
	for i := 0; i < minutesPerDay; i++ {
		s.Labels[i] = time.Date(0, 1, 1, i/60, i%60, 0, 0, time.UTC).Format(minuteLabel)
	}
	for _, c := range candles {
		local := c.OpenTime.Local()
		idx := local.Hour()*60 + local.Minute()
		if s.Prices[idx] == nil {
			price := c.Close
			s.Prices[idx] = &price
		}
	}
	return s
}
