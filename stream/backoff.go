package stream

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// backoffPolicy implements spec.md §4.6's two independent scheduling
// axes: an exponential arm for transient failures (backed by
// cenkalti/backoff's ExponentialBackOff, configured for deterministic
// doubling with no jitter) and an advisory reconnectAt floor set by the
// rate-limit/block/admin-kick classes, which always dominates.
type backoffPolicy struct {
	exp         *backoff.ExponentialBackOff
	reconnectAt time.Time
}

func newBackoffPolicy(base, max time.Duration) *backoffPolicy {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = base
	exp.MaxInterval = max
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	return &backoffPolicy{exp: exp}
}

// setReconnectAt installs an advisory floor: no connect attempt may begin
// before t. Does not touch the exponential arm.
func (b *backoffPolicy) setReconnectAt(t time.Time) {
	b.reconnectAt = t
}

// reset restores the exponential arm to its base value and clears the
// floor. Called on every successful transport open (spec.md §3).
func (b *backoffPolicy) reset() {
	b.exp.Reset()
	b.reconnectAt = time.Time{}
}

// next computes how long to sleep before the next connect attempt. If a
// reconnectAt floor is set and still in the future, it is honored and the
// exponential arm is not advanced. Otherwise the exponential arm's
// current delay is used and then doubled (capped at max).
func (b *backoffPolicy) next(now time.Time) time.Duration {
	if !b.reconnectAt.IsZero() && now.Before(b.reconnectAt) {
		return b.reconnectAt.Sub(now)
	}
	d := b.exp.NextBackOff()
	if d == backoff.Stop {
		d = b.exp.MaxInterval
	}
	return d
}
