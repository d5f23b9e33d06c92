package resolver

import (
	"io"

	"zulubridge/internal/cache"
)

// File is an open virtual file. Next hands out windows into the backing
// buffer without copying, so the buffer must not change while the file is
// open: cache documents are immutable once published and a fragment is
// owned by the file until Close.
type File struct {
	name string
	data []byte
	off  int
	frag *cache.Fragment
}

func newFile(name string, data []byte) *File { return &File{name: name, data: data} }

// Name returns the resource name the file was opened with.
func (f *File) Name() string { return f.name }

// Len returns the total size.
func (f *File) Len() int { return len(f.data) }

// Next returns the next window of at most count bytes, or io.EOF once the
// whole file has been handed out. The window aliases the backing buffer.
func (f *File) Next(count int) ([]byte, error) {
	if f.off >= len(f.data) {
		return nil, io.EOF
	}
	if count <= 0 {
		return nil, nil
	}
	end := f.off + count
	if end > len(f.data) {
		end = len(f.data)
	}
	w := f.data[f.off:end:end]
	f.off = end
	return w, nil
}

// Read implements io.Reader on top of Next.
func (f *File) Read(p []byte) (int, error) {
	w, err := f.Next(len(p))
	if err != nil {
		return 0, err
	}
	return copy(p, w), nil
}

// WriteTo writes the unread remainder to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	rest, err := f.Next(len(f.data) - f.off)
	if err == io.EOF {
		return 0, nil
	}
	n, err := w.Write(rest)
	return int64(n), err
}

// Close releases a fragment taken from the prefetch slot for this open.
// Calling it more than once is harmless.
func (f *File) Close() error {
	if f.frag != nil {
		f.frag.Release()
		f.frag = nil
	}
	f.data = nil
	return nil
}
