package dashboard

import "coinboard/internal/market"

// applyUpdate merges one streaming tick into the series by matching
// the update's bucket to an existing minute label. Returns whether a
// slot matched; the series is untouched otherwise.
//
// Unmatched updates are expected (tick arriving mid interval switch,
// or before the grid exists) and carry no error. Re-applying the same
// update is idempotent: the slot is simply overwritten, last write
// wins.
func applyUpdate(series *market.Series, update market.LiveUpdate) bool {
	idx := series.SlotIndex(market.MinuteLabel(update.OpenTime))
	if idx < 0 {
		return false
	}
	price := update.Close
	series.Prices[idx] = &price
	return true
}
