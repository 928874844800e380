package worker

import (
	"math"
	"time"
)

// BackoffPolicy computes the delay before a failed notification becomes
// eligible for re-claim. The delay grows exponentially with the attempt
// count: base * factor^(n-1) for the n-th attempt, rounded to whole
// seconds.
type BackoffPolicy struct {
	Base   time.Duration // delay after the first failure
	Factor float64       // growth factor per additional failure
}

// Delay returns the backoff for the given attempt number (1-based). A
// non-positive attempt is treated as the first.
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	seconds := p.Base.Seconds() * math.Pow(p.Factor, float64(attempt-1))
	return time.Duration(math.Round(seconds)) * time.Second
}
