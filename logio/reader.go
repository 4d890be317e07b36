// Package logio provides positional buffered I/O over the append-only
// log files the storage engine owns: a Reader that can be seeked to an
// arbitrary offset and a Writer that always appends at the current
// end of file, each tracking its own byte position the way upspin's
// serverlog Reader/Writer track fileOffset.
package logio

import (
	"bufio"
	"io"
	"os"
)

// Reader is a buffered, seekable reader over one log file that tracks
// its own position so callers never need to ask the OS for it.
type Reader struct {
	f   *os.File
	br  *bufio.Reader
	pos uint64
}

// OpenReader opens path for reading, positioned at offset 0.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{f: f, br: bufio.NewReader(f)}, nil
}

// Read implements io.Reader, advancing Pos by the number of bytes read.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.br.Read(p)
	r.pos += uint64(n)
	return n, err
}

// Seek repositions the reader to an absolute byte offset within the
// file. It is a no-op when already at pos, so reading records back to
// back in file order doesn't pay for a syscall.
func (r *Reader) Seek(pos uint64) error {
	if pos == r.pos {
		return nil
	}
	if _, err := r.f.Seek(int64(pos), io.SeekStart); err != nil {
		return err
	}
	r.br.Reset(r.f)
	r.pos = pos
	return nil
}

// Pos returns the current byte offset within the file.
func (r *Reader) Pos() uint64 { return r.pos }

// ReadExactlyAt seeks to pos and reads exactly n bytes, as required to
// decode one record whose length is already known from the index.
func (r *Reader) ReadExactlyAt(pos, n uint64) ([]byte, error) {
	if err := r.Seek(pos); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error { return r.f.Close() }
