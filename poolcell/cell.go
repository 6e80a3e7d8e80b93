// Package poolcell provides a mutex-guarded cell holding a
// lazily-initialized Pool, for process-wide use where threading a *Pool
// through every call site isn't practical. It is explicitly not on the
// hot path -- code that interns heavily should hold its own Pool clone
// rather than calling through a Cell on every string.
package poolcell

import (
	"sync"

	"strpool/pool"
)

// Cell lazily constructs a Pool on first use and hands out clones of it.
// The zero value is ready to use.
type Cell struct {
	mu   sync.Mutex
	pool *pool.Pool
	opts []pool.Option
}

// New returns a Cell that will construct its Pool with the given options
// on first access.
func New(opts ...pool.Option) *Cell {
	return &Cell{opts: opts}
}

// Pool returns a clone of the cell's backing pool, constructing it on
// first call. The caller owns the returned clone and must Release it.
func (c *Cell) Pool() *pool.Pool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pool == nil {
		c.pool = pool.New(c.opts...)
	}
	return c.pool.Clone()
}

// Swap replaces the cell's backing pool with p, releasing the old one's
// reference. The cell takes ownership of p; callers should not Release it
// themselves afterward.
func (c *Cell) Swap(p *pool.Pool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.pool
	c.pool = p
	if old != nil {
		old.Release()
	}
}
