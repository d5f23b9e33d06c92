package cache

import "sync/atomic"

// Allocator hands out fragments and keeps count of the ones not yet released.
type Allocator struct {
	live      atomic.Int64
	allocated atomic.Uint64
}

// NewAllocator returns an empty allocator.
func NewAllocator() *Allocator { return &Allocator{} }

// New copies src into a fresh fragment owned by the caller.
func (a *Allocator) New(src []byte) *Fragment {
	a.live.Add(1)
	a.allocated.Add(1)
	return &Fragment{data: append(make([]byte, 0, len(src)), src...), alloc: a}
}

// Live reports fragments allocated and not yet released.
func (a *Allocator) Live() int64 { return a.live.Load() }

// Allocated reports every fragment ever allocated.
func (a *Allocator) Allocated() uint64 { return a.allocated.Load() }

// Fragment is one owned buffer holding a single image record. It has exactly
// one owner at a time; ownership moves through Slot and is ended by Release.
type Fragment struct {
	data     []byte
	alloc    *Allocator
	released atomic.Bool
}

// Bytes returns the fragment contents. The slice is valid until Release.
func (f *Fragment) Bytes() []byte { return f.data }

// Len returns the content length.
func (f *Fragment) Len() int { return len(f.data) }

// Release gives the fragment back to its allocator. Only the first call has
// an effect.
func (f *Fragment) Release() {
	if f == nil || !f.released.CompareAndSwap(false, true) {
		return
	}
	f.data = nil
	f.alloc.live.Add(-1)
}
