package market

import "github.com/shopspring/decimal"

// Chart colors. Up/down follow the usual exchange palette; neutral is
// used until a baseline is known.
const (
	ColorUp      = "#0ecb81"
	ColorDown    = "#f6465d"
	ColorNeutral = "#848e9c"
)

// Marker radius of the last known point. Every other point is drawn
// without a marker.
const lastPointRadius = 4.0

// PresentationState carries the per-render attributes derived from a
// series and its baseline. It is recomputed whenever either changes
// and never stored independently.
type PresentationState struct {
	LineColor   string
	MarkerColor string
	// LastIndex is the highest slot holding a price, or -1 when the
	// series holds no data yet.
	LastIndex int
}

// MarkerRadius returns the point radius for a slot. Only the last
// known point gets a visible marker.
func (p PresentationState) MarkerRadius(index int) float64 {
	if index == p.LastIndex && p.LastIndex >= 0 {
		return lastPointRadius
	}
	return 0
}

// Derive computes the presentation state for a series against a
// baseline. Pure and total: a nil baseline or an empty series yields
// neutral coloring, a last price strictly above the baseline colors
// up, anything else (ties included) colors down.
func Derive(series Series, baseline *decimal.Decimal) PresentationState {
	state := PresentationState{
		LineColor:   ColorNeutral,
		MarkerColor: ColorNeutral,
		LastIndex:   -1,
	}
	for i := len(series.Prices) - 1; i >= 0; i-- {
		if series.Prices[i] != nil {
			state.LastIndex = i
			break
		}
	}
	if state.LastIndex < 0 || baseline == nil {
		return state
	}
	if series.Prices[state.LastIndex].GreaterThan(*baseline) {
		state.LineColor = ColorUp
		state.MarkerColor = ColorUp
	} else {
		state.LineColor = ColorDown
		state.MarkerColor = ColorDown
	}
	return state
}
