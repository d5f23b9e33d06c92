package cache

import "sync/atomic"

// cell holds a state enum shared between the dispatch goroutine and HTTP
// handlers. Every transition is a single atomic store or compare-and-swap.
type cell[S ~uint32] struct {
	v atomic.Uint32
}

func (c *cell[S]) Load() S { return S(c.v.Load()) }

func (c *cell[S]) Store(s S) { c.v.Store(uint32(s)) }

func (c *cell[S]) CompareAndSwap(old, new S) bool {
	return c.v.CompareAndSwap(uint32(old), uint32(new))
}
