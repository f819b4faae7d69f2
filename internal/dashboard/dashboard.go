// Package dashboard owns the per-interval fetch/merge lifecycle and
// the data model pushed to the renderer.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"coinboard/internal/history"
	"coinboard/internal/market"
)

// Exchange is the slice of the REST client the controller consumes.
type Exchange interface {
	history.KlineSource
	LastPrice(ctx context.Context) (decimal.Decimal, error)
	Change24h(ctx context.Context) (decimal.Decimal, error)
}

// Streamer delivers live per-minute updates for the intraday chart.
// Run blocks until its context is cancelled and closes Updates on
// return; reconnection is the streamer's own business.
type Streamer interface {
	Run(ctx context.Context)
	Updates() <-chan market.LiveUpdate
}

// Controller coordinates one interval activation at a time: it fires
// the historical fetch and the baseline query concurrently, merges
// live updates while the intraday interval is active, and publishes
// every consistent Series+PresentationState pair to the renderer.
//
// Each activation carries a generation number. Results from a
// previous activation that land after an interval switch fail the
// generation check and are dropped, so stale responses can never
// overwrite the newly selected interval's data.
type Controller struct {
	exchange   Exchange
	fetcher    *history.Fetcher
	openStream func() Streamer
	renderer   Renderer
	logger     *slog.Logger
	now        func() time.Time

	mu         sync.Mutex
	generation int
	cancel     context.CancelFunc
	model      Model
	wg         sync.WaitGroup
}

// NewController wires the controller. openStream is called once per
// intraday activation; it may be nil when live updates are not
// wanted.
func NewController(exchange Exchange, openStream func() Streamer, renderer Renderer, logger *slog.Logger) *Controller {
	return &Controller{
		exchange:   exchange,
		fetcher:    history.NewFetcher(exchange, logger),
		openStream: openStream,
		renderer:   renderer,
		logger:     logger.With("component", "dashboard"),
		now:        time.Now,
	}
}

// Model returns a copy of the current renderer model.
func (c *Controller) Model() Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SelectInterval activates an interval: the previous activation is
// cancelled, its stream closed, and a fresh fetch cycle started. The
// renderer sees an immediate reset, then each completion (series,
// baseline, live ticks) as it lands.
func (c *Controller) SelectInterval(ctx context.Context, interval market.Interval) {
	c.mu.Lock()

	if c.cancel != nil {
		c.cancel()
	}
	actCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.generation++
	gen := c.generation

	// Fresh cycle: no carryover from the previous interval.
	c.model.Interval = interval
	c.model.Series = market.Series{}
	c.model.Baseline = nil
	c.model.State = market.Derive(c.model.Series, nil)
	c.publishLocked()
	c.mu.Unlock()

	window := market.WindowFor(interval, c.now())
	c.logger.Info("interval selected",
		"interval", interval.String(),
		"from", window.Start.Format(time.RFC3339),
		"to", window.End.Format(time.RFC3339),
	)

	c.wg.Add(2)
	go c.loadHistory(actCtx, gen, interval, window)
	go c.loadBaseline(actCtx, gen, interval, window)

	if interval == market.IntervalToday && c.openStream != nil {
		stream := c.openStream()
		c.wg.Add(2)
		go func() {
			defer c.wg.Done()
			stream.Run(actCtx)
		}()
		go c.consumeStream(gen, stream)
	}
}

// Shutdown cancels the active interval cycle and waits for its
// goroutines to drain. Pollers are stopped by their own contexts.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Controller) loadHistory(ctx context.Context, gen int, interval market.Interval, window market.ClockWindow) {
	defer c.wg.Done()

	candles, err := c.fetcher.Fetch(ctx, window)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Error("historical fetch failed", "interval", interval.String(), "error", err)
		}
		return
	}

	series := market.BuildSeries(candles, interval)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.model.Series = series
	c.model.State = market.Derive(c.model.Series, c.model.Baseline)
	c.publishLocked()
}

func (c *Controller) loadBaseline(ctx context.Context, gen int, interval market.Interval, window market.ClockWindow) {
	defer c.wg.Done()

	baseline, err := history.ResolveBaseline(ctx, c.exchange, interval, window)
	if err != nil {
		// Absent baseline is renderable; coloring stays neutral.
		if ctx.Err() == nil {
			c.logger.Warn("baseline unresolved", "interval", interval.String(), "error", err)
		}
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.model.Baseline = baseline
	c.model.State = market.Derive(c.model.Series, c.model.Baseline)
	c.publishLocked()
}

func (c *Controller) consumeStream(gen int, stream Streamer) {
	defer c.wg.Done()

	for update := range stream.Updates() {
		c.mu.Lock()
		if gen != c.generation {
			c.mu.Unlock()
			return
		}
		if applyUpdate(&c.model.Series, update) {
			c.model.State = market.Derive(c.model.Series, c.model.Baseline)
			c.publishLocked()
		}
		c.mu.Unlock()
	}
}

// snapshotLocked copies the model so the renderer never observes an
// in-place merge. Callers hold c.mu.
func (c *Controller) snapshotLocked() Model {
	snap := c.model
	snap.Series = c.model.Series.Clone()
	return snap
}

func (c *Controller) publishLocked() {
	if c.renderer != nil {
		c.renderer.Render(c.snapshotLocked())
	}
}
