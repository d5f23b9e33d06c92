package cache

import (
	"sync"
	"testing"
)

func TestSlotSecondPutFails(t *testing.T) {
	alloc := NewAllocator()
	var s Slot
	first := alloc.New([]byte("first"))
	second := alloc.New([]byte("second"))

	if !s.TryPut(first) {
		t.Fatalf("put into empty slot failed")
	}
	if s.TryPut(second) {
		t.Fatalf("put into occupied slot succeeded")
	}
	if s.TryPut(nil) {
		t.Fatalf("nil put succeeded")
	}
	got := s.TryTake()
	if got != first || string(got.Bytes()) != "first" {
		t.Fatalf("occupant corrupted: %q", got.Bytes())
	}
	if s.TryTake() != nil || s.Occupied() {
		t.Fatalf("slot not empty after take")
	}
	got.Release()
	second.Release()
	if alloc.Live() != 0 {
		t.Fatalf("live=%d", alloc.Live())
	}
}

func TestSlotConcurrentHandOff(t *testing.T) {
	const n = 2000
	alloc := NewAllocator()
	var s Slot
	var wg sync.WaitGroup
	var dropped, taken int
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			f := alloc.New([]byte{byte(i)})
			if !s.TryPut(f) {
				f.Release()
				dropped++
			}
		}
		close(stop)
	}()

	for done := false; !done; {
		select {
		case <-stop:
			done = true
		default:
		}
		if f := s.TryTake(); f != nil {
			f.Release()
			taken++
		}
	}
	wg.Wait()
	if f := s.TryTake(); f != nil {
		f.Release()
		taken++
	}
	if taken+dropped != n {
		t.Fatalf("taken=%d dropped=%d want total %d", taken, dropped, n)
	}
	if alloc.Live() != 0 {
		t.Fatalf("leaked %d fragments", alloc.Live())
	}
}
