package dashboard

import (
	"github.com/shopspring/decimal"

	"coinboard/internal/market"
)

// Model is the full data contract handed to the renderer: the chart
// series with its derived styling, the reference baseline, and the
// two poller snapshots. Absent values are nil and renderable (loading
// placeholder, neutral coloring).
type Model struct {
	Interval     market.Interval
	Series       market.Series
	State        market.PresentationState
	Baseline     *decimal.Decimal
	LastPrice    *decimal.Decimal
	Change24hPct *decimal.Decimal
}

// Renderer draws the dashboard from a model. It is the external
// collaborator: the controller pushes every state change to it and
// expects interval selections back through SelectInterval.
//
// Render is called with the controller lock held; implementations
// must not call back into the controller synchronously.
type Renderer interface {
	Render(Model)
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(Model)

func (f RenderFunc) Render(m Model) { f(m) }
