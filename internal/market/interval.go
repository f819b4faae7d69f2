package market

import "time"

// Interval is the display range selected by the user. Selecting a new
// interval discards every piece of derived state and starts a fresh
// fetch cycle.
type Interval int

const (
	IntervalToday Interval = iota
	IntervalWeek
	IntervalMonth
	IntervalThreeMonths
	IntervalYearToDate
	IntervalYear
)

var intervalNames = map[Interval]string{
	IntervalToday:       "today",
	IntervalWeek:        "1w",
	IntervalMonth:       "1m",
	IntervalThreeMonths: "3m",
	IntervalYearToDate:  "ytd",
	IntervalYear:        "1y",
}

func (i Interval) String() string {
	if name, ok := intervalNames[i]; ok {
		return name
	}
	return "unknown"
}

// Intervals lists every selectable interval in display order.
func Intervals() []Interval {
	return []Interval{
		IntervalToday,
		IntervalWeek,
		IntervalMonth,
		IntervalThreeMonths,
		IntervalYearToDate,
		IntervalYear,
	}
}

// ClockWindow is the wall-clock range and candle granularity a single
// interval activation covers. Start is always before End; exchange
// buckets are fixed-size so the bucket only approximately divides the
// window.
type ClockWindow struct {
	Start  time.Time
	End    time.Time
	Bucket time.Duration
}

// WindowFor computes the fetch window for an interval at the given
// wall-clock time. Pure; no failure mode.
func WindowFor(interval Interval, now time.Time) ClockWindow {
	switch interval {
	case IntervalToday:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return ClockWindow{
			Start:  midnight,
			End:    midnight.Add(24*time.Hour - time.Millisecond),
			Bucket: time.Minute,
		}
	case IntervalWeek:
		return ClockWindow{Start: now.Add(-7 * 24 * time.Hour), End: now, Bucket: time.Hour}
	case IntervalMonth:
		return ClockWindow{Start: now.Add(-30 * 24 * time.Hour), End: now, Bucket: 4 * time.Hour}
	case IntervalThreeMonths:
		return ClockWindow{Start: now.Add(-90 * 24 * time.Hour), End: now, Bucket: 24 * time.Hour}
	case IntervalYearToDate:
		jan1 := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return ClockWindow{Start: jan1, End: now, Bucket: 24 * time.Hour}
	default:
		return ClockWindow{Start: now.Add(-365 * 24 * time.Hour), End: now, Bucket: 24 * time.Hour}
	}
}
