// Package cache holds the documents the bridge serves over HTTP while they
// are filled in by control-link messages.
//
// Writers run on the dispatch goroutine and readers on HTTP handler
// goroutines. Every state enum is an atomic cell with compare-and-swap
// transitions, and finished documents are published through atomic pointers
// so a reader never sees a buffer that is still being assembled.
//
//   - filenames.go: bounded {"filenames":[...]} assembler
//   - images.go:    bulk aggregation and depth-1 iteration of image records
//   - slot.go:      single-slot lock-free hand-off
//   - fragment.go:  owned buffers with live-count accounting
//   - status.go:    latest status document
package cache
