package lib

import (
	"math/rand"
	"time"
)

// JitterTicker returns a ticker that ticks every interval plus a random
// delay of up to 10% of it, so sources configured with the same interval do
// not all refresh at once.
func JitterTicker(interval time.Duration) *time.Ticker {
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	jitter := time.Duration(0)
	if spread := int64(interval / 10); spread > 0 {
		jitter = time.Duration(rand.Int63n(spread))
	}

	return time.NewTicker(interval + jitter)
}
