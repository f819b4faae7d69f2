package main

import (
	"log/slog"

	"coinboard/internal/dashboard"
)

// logRenderer is a headless stand-in for the browser renderer: it
// logs each published model instead of drawing it.
type logRenderer struct {
	logger *slog.Logger
}

func newLogRenderer(logger *slog.Logger) *logRenderer {
	return &logRenderer{logger: logger.With("component", "renderer")}
}

func (r *logRenderer) Render(m dashboard.Model) {
	attrs := []any{
		"interval", m.Interval.String(),
		"slots", m.Series.Len(),
		"color", m.State.LineColor,
	}
	if m.State.LastIndex >= 0 {
		attrs = append(attrs, "last", m.Series.Prices[m.State.LastIndex].String())
	}
	if m.Baseline != nil {
		attrs = append(attrs, "baseline", m.Baseline.String())
	}
	if m.LastPrice != nil {
		attrs = append(attrs, "price", m.LastPrice.String())
	}
	if m.Change24hPct != nil {
		attrs = append(attrs, "change24h", m.Change24hPct.String()+"%")
	}
	r.logger.Debug("render", attrs...)
}
