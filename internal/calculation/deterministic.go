package calculation

import "time"

// nowFunc returns the current time (override in tests for determinism).
var nowFunc = time.Now

// SetNowFunc overrides the time provider (use only in tests).
func SetNowFunc(f func() time.Time) { nowFunc = f }

// seedFunc supplies the seed for runs configured with seed 0.
var seedFunc = func() uint64 { return uint64(time.Now().UnixNano()) }

// SetSeedFunc overrides the seed provider (use only in tests).
func SetSeedFunc(f func() uint64) { seedFunc = f }

// PCG stream selectors. The portfolio and benchmark draws come from the same
// seed but never share a stream.
const (
	portfolioStream uint64 = 0x9e3779b97f4a7c15
	benchmarkStream uint64 = 0xbf58476d1ce4e5b9
)
