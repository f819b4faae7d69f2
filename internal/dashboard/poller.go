package dashboard

import (
	"context"
	"time"
)

// Default poll cadences. Both pollers run for the whole process
// lifetime regardless of the selected interval.
const (
	DefaultPricePollEvery = 1 * time.Second
	DefaultStatsPollEvery = 10 * time.Second
)

// RunPricePoll refreshes the live price readout on a fixed cadence
// until the context is cancelled. A failed tick is logged and skipped;
// the next tick retries, so no extra backoff is needed. Blocks; run
// it in its own goroutine.
func (c *Controller) RunPricePoll(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			price, err := c.exchange.LastPrice(ctx)
			if err != nil {
				if ctx.Err() == nil {
					c.logger.Debug("price poll tick failed", "error", err)
				}
				continue
			}
			c.mu.Lock()
			c.model.LastPrice = &price
			c.publishLocked()
			c.mu.Unlock()
		}
	}
}

// RunStatsPoll refreshes the 24h change readout on a fixed cadence
// until the context is cancelled. Same skip-and-retry error policy as
// the price poll.
func (c *Controller) RunStatsPoll(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			change, err := c.exchange.Change24h(ctx)
			if err != nil {
				if ctx.Err() == nil {
					c.logger.Debug("stats poll tick failed", "error", err)
				}
				continue
			}
			c.mu.Lock()
			c.model.Change24hPct = &change
			c.publishLocked()
			c.mu.Unlock()
		}
	}
}
