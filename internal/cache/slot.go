package cache

import "sync/atomic"

// Slot is a single-slot hand-off cell between one producer and one consumer.
// It is lock-free and never blocks: TryPut fails while occupied, TryTake
// returns nil while empty. A fragment leaves the slot exactly once.
type Slot struct {
	p atomic.Pointer[Fragment]
}

// TryPut moves f into the slot. On false the caller still owns f.
func (s *Slot) TryPut(f *Fragment) bool {
	if f == nil {
		return false
	}
	return s.p.CompareAndSwap(nil, f)
}

// TryTake moves the occupant out of the slot, or returns nil.
func (s *Slot) TryTake() *Fragment { return s.p.Swap(nil) }

// Occupied reports whether a fragment is waiting.
func (s *Slot) Occupied() bool { return s.p.Load() != nil }
