package pipeline

import (
	"math/rand/v2"
	"time"
)

// maxConvertAttempts bounds the outer retry loop for quota-exceeded
// conversion calls. Other failures are not retried here; the provider
// client already retries transient network faults internally.
const maxConvertAttempts = 3

// backoff returns a duration for attempt n (0-indexed) with jitter.
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}
