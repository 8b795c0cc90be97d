package domain

import (
	"sync/atomic"
	"time"
)

// IDGenerator hands out ids derived from the wall clock in milliseconds. Ids
// are strictly increasing, so two entities created within the same
// millisecond still receive distinct ids.
type IDGenerator struct {
	last atomic.Int64
	now  func() time.Time
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

func (g *IDGenerator) Next() int64 {
	for {
		now := g.now().UnixMilli()
		last := g.last.Load()
		if now <= last {
			now = last + 1
		}
		if g.last.CompareAndSwap(last, now) {
			return now
		}
	}
}

// Observe records an id already in use so it is never handed out again.
func (g *IDGenerator) Observe(id int64) {
	for {
		last := g.last.Load()
		if id <= last || g.last.CompareAndSwap(last, id) {
			return
		}
	}
}
