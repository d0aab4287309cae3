package task

import (
	"sync"
	"time"
)

// IDGenerator hands out time-derived ids that never repeat: each id is the
// current Unix millisecond, bumped past the last issued or observed id.
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last ID
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

func (g *IDGenerator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := ID(g.now().UnixMilli())
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Observe records an id that already exists so it is never issued again.
func (g *IDGenerator) Observe(id ID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id > g.last {
		g.last = id
	}
}
