package cache

import (
	"bytes"
	"sync/atomic"
)

// DefaultStatusCapacity matches the largest payload a control-link frame can carry.
const DefaultStatusCapacity = 4096

var emptyStatus = []byte("{}")

// StatusSnapshot holds the latest status document pushed by the peer. Each
// Update replaces the whole document.
type StatusSnapshot struct {
	capacity int
	doc      atomic.Pointer[[]byte]
}

// NewStatusSnapshot returns a snapshot reading "{}" until the first update.
func NewStatusSnapshot(capacity int) *StatusSnapshot {
	if capacity <= 0 {
		capacity = DefaultStatusCapacity
	}
	s := &StatusSnapshot{capacity: capacity}
	s.doc.Store(&emptyStatus)
	return s
}

// Update stores a copy of payload cut at the first NUL and at capacity. An
// empty payload carries no value and leaves the previous snapshot in place.
func (s *StatusSnapshot) Update(payload []byte) bool {
	if i := bytes.IndexByte(payload, 0); i >= 0 {
		payload = payload[:i]
	}
	if len(payload) == 0 {
		return false
	}
	if len(payload) > s.capacity {
		payload = payload[:s.capacity]
		statusTruncatedTotal.Inc()
	}
	cp := append(make([]byte, 0, len(payload)), payload...)
	s.doc.Store(&cp)
	return true
}

// Document returns the current snapshot. The slice is never written again.
func (s *StatusSnapshot) Document() []byte { return *s.doc.Load() }
