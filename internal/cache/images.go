package cache

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ImageState is the mode of the image cache.
type ImageState uint32

const (
	ImagesIdle ImageState = iota
	ImagesBulkCollecting
	ImagesBulkReady
	ImagesIterating
	ImagesIterationExhausted
)

func (s ImageState) String() string {
	switch s {
	case ImagesIdle:
		return "idle"
	case ImagesBulkCollecting:
		return "bulk_collecting"
	case ImagesBulkReady:
		return "bulk_ready"
	case ImagesIterating:
		return "iterating"
	case ImagesIterationExhausted:
		return "iteration_exhausted"
	default:
		return "unknown"
	}
}

// Images holds image records received from the peer, either aggregated into
// one JSON array (bulk) or handed over one at a time through a Slot
// (iteration). Accept runs on the dispatch goroutine; the remaining methods
// are called by HTTP handlers.
type Images struct {
	alloc *Allocator
	log   zerolog.Logger

	state   cell[ImageState]
	slot    Slot
	pending atomic.Bool
	doc     atomic.Pointer[[]byte]

	// owned by the dispatch goroutine
	fragments []*Fragment
}

// NewImages returns an idle image cache drawing fragments from alloc.
func NewImages(alloc *Allocator, log zerolog.Logger) *Images {
	if alloc == nil {
		alloc = NewAllocator()
	}
	return &Images{alloc: alloc, log: log}
}

// Allocator returns the fragment allocator.
func (im *Images) Allocator() *Allocator { return im.alloc }

// State returns the current mode.
func (im *Images) State() ImageState { return im.state.Load() }

// StartBulk moves Idle to BulkCollecting. It reports false if another fetch owns the cache.
func (im *Images) StartBulk() bool {
	return im.state.CompareAndSwap(ImagesIdle, ImagesBulkCollecting)
}

// AbortBulk reverts a StartBulk whose request never reached the peer.
func (im *Images) AbortBulk() bool {
	return im.state.CompareAndSwap(ImagesBulkCollecting, ImagesIdle)
}

// StartIteration moves Idle to Iterating.
func (im *Images) StartIteration() bool {
	return im.state.CompareAndSwap(ImagesIdle, ImagesIterating)
}

// AbortIteration reverts a StartIteration whose first request never reached the peer.
func (im *Images) AbortIteration() bool {
	im.pending.Store(false)
	return im.state.CompareAndSwap(ImagesIterating, ImagesIdle)
}

// ClaimRequest marks a fetch-next request as in flight. Only the caller that
// gets true may enqueue the request; it must call ReleaseRequest if the
// enqueue fails.
func (im *Images) ClaimRequest() bool { return im.pending.CompareAndSwap(false, true) }

// ReleaseRequest clears the in-flight mark.
func (im *Images) ReleaseRequest() { im.pending.Store(false) }

// Accept consumes one image chunk. An empty chunk ends the current fetch.
func (im *Images) Accept(chunk []byte) {
	switch st := im.state.Load(); st {
	case ImagesBulkCollecting:
		if len(chunk) == 0 {
			im.rebuild()
			im.state.Store(ImagesBulkReady)
			return
		}
		im.fragments = append(im.fragments, im.alloc.New(chunk))
	case ImagesIterating:
		// the answer is published before pending clears, so a reader that
		// sees no request in flight also sees the slot or the exhaustion
		defer im.pending.Store(false)
		if len(chunk) == 0 {
			im.state.CompareAndSwap(ImagesIterating, ImagesIterationExhausted)
			return
		}
		frag := im.alloc.New(chunk)
		if !im.slot.TryPut(frag) {
			frag.Release()
			slotDroppedTotal.Inc()
			im.log.Warn().Int("bytes", len(chunk)).Msg("prefetch slot full, dropping image")
		}
	default:
		if len(chunk) > 0 {
			strayChunksTotal.Inc()
			im.log.Debug().Str("state", st.String()).Int("bytes", len(chunk)).Msg("image chunk outside a fetch ignored")
		}
	}
}

// TakeNext moves the prefetched image to the caller, or returns nil.
func (im *Images) TakeNext() *Fragment { return im.slot.TryTake() }

// HasNext reports whether a prefetched image is waiting.
func (im *Images) HasNext() bool { return im.slot.Occupied() }

// FinishIteration moves IterationExhausted to Idle. It reports true exactly
// once per exhausted iteration.
func (im *Images) FinishIteration() bool {
	return im.state.CompareAndSwap(ImagesIterationExhausted, ImagesIdle)
}

// Document returns the aggregated bulk document while BulkReady.
func (im *Images) Document() ([]byte, bool) {
	if im.state.Load() != ImagesBulkReady {
		return nil, false
	}
	p := im.doc.Load()
	if p == nil {
		return nil, false
	}
	return *p, true
}

// rebuild joins the collected fragments into [f1,f2,...] and releases them.
func (im *Images) rebuild() {
	size := 2
	for i, f := range im.fragments {
		if i > 0 {
			size++
		}
		size += f.Len()
	}
	out := make([]byte, 0, size)
	out = append(out, '[')
	for i, f := range im.fragments {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, f.Bytes()...)
		f.Release()
		im.fragments[i] = nil
	}
	out = append(out, ']')
	n := len(im.fragments)
	im.fragments = im.fragments[:0]
	im.doc.Store(&out)
	im.log.Debug().Int("images", n).Int("bytes", len(out)).Msg("image cache rebuilt")
}
