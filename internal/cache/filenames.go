package cache

import (
	"bytes"
	"encoding/json"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// FilenameState is the assembly state of the filename document.
type FilenameState uint32

const (
	FilenamesIdle FilenameState = iota
	FilenamesCollecting
	FilenamesReady
	FilenamesOverflow
)

func (s FilenameState) String() string {
	switch s {
	case FilenamesIdle:
		return "idle"
	case FilenamesCollecting:
		return "collecting"
	case FilenamesReady:
		return "ready"
	case FilenamesOverflow:
		return "overflow"
	default:
		return "unknown"
	}
}

// DefaultFilenameCapacity bounds the filename document when no capacity is configured.
const DefaultFilenameCapacity = 16 * 1024

const (
	filenamesOpen  = `{"filenames":[`
	filenamesClose = `]}`
)

// Filenames assembles {"filenames":[...]} from a stream of chunks into a
// buffer of fixed capacity. Begin and Accept are called from the dispatch
// goroutine only; the remaining methods may be called from any goroutine.
type Filenames struct {
	capacity int
	log      zerolog.Logger

	state     cell[FilenameState]
	doc       atomic.Pointer[[]byte]
	requested atomic.Bool

	// owned by the dispatch goroutine
	buf     []byte
	entries int
	scratch bytes.Buffer
}

// NewFilenames returns an idle assembler. A capacity <= 0 selects
// DefaultFilenameCapacity.
func NewFilenames(capacity int, log zerolog.Logger) *Filenames {
	if capacity <= 0 {
		capacity = DefaultFilenameCapacity
	}
	return &Filenames{capacity: capacity, log: log}
}

// Capacity returns the document size bound in bytes.
func (f *Filenames) Capacity() int { return f.capacity }

// Begin discards any prior assembly and starts a new document. It answers
// the outstanding fetch, if any.
func (f *Filenames) Begin() {
	f.requested.Store(false)
	f.entries = 0
	if f.capacity < len(filenamesOpen)+len(filenamesClose) {
		f.buf = nil
		f.overflow("begin")
		return
	}
	// fresh buffer: the last published document stays intact for readers
	f.buf = make([]byte, 0, f.capacity)
	f.buf = append(f.buf, filenamesOpen...)
	f.state.Store(FilenamesCollecting)
}

// Accept appends one filename, or closes the document on an empty chunk.
// Chunks outside Collecting are ignored.
func (f *Filenames) Accept(chunk []byte) {
	if f.state.Load() != FilenamesCollecting {
		return
	}
	if len(chunk) == 0 {
		if len(f.buf)+len(filenamesClose) > f.capacity {
			f.overflow("close")
			return
		}
		f.buf = append(f.buf, filenamesClose...)
		done := f.buf
		f.buf = nil
		f.doc.Store(&done)
		f.state.Store(FilenamesReady)
		f.log.Debug().Int("entries", f.entries).Int("bytes", len(done)).Msg("filename cache ready")
		return
	}
	quoted := f.quote(chunk)
	need := len(quoted)
	if f.entries > 0 {
		need++
	}
	if len(f.buf)+need > f.capacity {
		f.overflow("entry")
		return
	}
	if f.entries > 0 {
		f.buf = append(f.buf, ',')
	}
	f.buf = append(f.buf, quoted...)
	f.entries++
}

// MarkRequested records a fetch sent to the peer. Only the caller that gets
// true may enqueue it; it must call ClearRequested if the enqueue fails.
func (f *Filenames) MarkRequested() bool { return f.requested.CompareAndSwap(false, true) }

// ClearRequested drops the fetch mark.
func (f *Filenames) ClearRequested() { f.requested.Store(false) }

// State returns the current assembly state.
func (f *Filenames) State() FilenameState { return f.state.Load() }

// Last returns the most recently completed document in any state. A refresh
// in progress does not affect it.
func (f *Filenames) Last() ([]byte, bool) {
	p := f.doc.Load()
	if p == nil {
		return nil, false
	}
	return *p, true
}

func (f *Filenames) overflow(at string) {
	f.state.Store(FilenamesOverflow)
	filenameOverflowTotal.Inc()
	f.log.Warn().Str("at", at).Int("capacity", f.capacity).Int("entries", f.entries).
		Msg("filename cache overflowed, increase cache size")
}

// quote renders chunk as a JSON string literal without HTML escaping.
func (f *Filenames) quote(chunk []byte) []byte {
	f.scratch.Reset()
	enc := json.NewEncoder(&f.scratch)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(string(chunk))
	return bytes.TrimSuffix(f.scratch.Bytes(), []byte{'\n'})
}
