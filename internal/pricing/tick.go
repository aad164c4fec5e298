package pricing

import "time"

// Clock maps wall-clock time onto a monotonic integer tick index.
// Two reads inside the same quantum return the same tick.
type Clock struct {
	quantum time.Duration
	now     func() time.Time
}

// NewClock creates a clock with the given tick quantum.
func NewClock(quantum time.Duration) *Clock {
	if quantum <= 0 {
		quantum = 3 * time.Second
	}
	return &Clock{quantum: quantum, now: time.Now}
}

// WithNow replaces the time source, used by tests.
func (c *Clock) WithNow(now func() time.Time) *Clock {
	cp := *c
	cp.now = now
	return &cp
}

// CurrentTick returns floor(nowSeconds / quantum).
func (c *Clock) CurrentTick() int64 {
	return c.now().Unix() / int64(c.quantum/time.Second)
}

// Quantum returns the tick quantum.
func (c *Clock) Quantum() time.Duration {
	return c.quantum
}
