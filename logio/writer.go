package logio

import (
	"bufio"
	"os"
)

// Writer is a buffered, append-only writer over one log file that
// tracks the next write offset, mirroring upspin's BufWriterWithPos.
type Writer struct {
	f   *os.File
	bw  *bufio.Writer
	pos uint64
}

// OpenWriter opens (creating if necessary) path for appending. The
// writer's initial position is the file's current size, so reopening
// a generation that already has data resumes at its tail.
func OpenWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Writer{f: f, bw: bufio.NewWriter(f), pos: uint64(info.Size())}, nil
}

// Write implements io.Writer, advancing Pos by the number of bytes
// buffered (not yet necessarily flushed to the OS).
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.bw.Write(p)
	w.pos += uint64(n)
	return n, err
}

// Flush pushes any buffered bytes to the operating system. It does not
// fsync: per this store's durability contract, a flushed write is
// durable enough, and fsync is not required.
func (w *Writer) Flush() error { return w.bw.Flush() }

// Pos returns the offset the next Write will land at.
func (w *Writer) Pos() uint64 { return w.pos }

// Close closes the underlying file. Callers must Flush first if any
// buffered bytes must survive.
func (w *Writer) Close() error { return w.f.Close() }
