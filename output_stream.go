package fileio

import (
	"bytes"
	"context"
	"errors"
	"io"
)

// OutputStream accumulates writes in memory and stores them with a single
// write when closed. Nothing is visible in the store before Close returns.
//
// Close uses the context passed to NewOutputStream. An OutputStream is not
// safe for concurrent use.
type OutputStream struct {
	ctx       context.Context
	op        *operator
	path      Path
	overwrite bool
	buf       bytes.Buffer
	reserved  int64
	closed    bool
}

var (
	_ io.Writer       = (*OutputStream)(nil)
	_ io.ByteWriter   = (*OutputStream)(nil)
	_ io.StringWriter = (*OutputStream)(nil)
	_ io.ReaderFrom   = (*OutputStream)(nil)
	_ io.Closer       = (*OutputStream)(nil)
)

func newOutputStream(ctx context.Context, op *operator, p Path, overwrite bool) *OutputStream {
	return &OutputStream{ctx: ctx, op: op, path: p, overwrite: overwrite}
}

// Path returns the target path.
func (s *OutputStream) Path() Path { return s.path }

// reserve charges n more bytes against the memory limit.
func (s *OutputStream) reserve(n int) error {
	if err := s.op.rc.AcquireMemory(int64(n)); err != nil {
		return newMemoryLimitError("write", s.path, s.op.rc, int64(n))
	}
	s.reserved += int64(n)
	return nil
}

// Write implements io.Writer.
func (s *OutputStream) Write(b []byte) (int, error) {
	if s.closed {
		return 0, ErrClosedStream
	}
	if err := s.reserve(len(b)); err != nil {
		return 0, err
	}
	return s.buf.Write(b)
}

// WriteByte implements io.ByteWriter.
func (s *OutputStream) WriteByte(c byte) error {
	if s.closed {
		return ErrClosedStream
	}
	if err := s.reserve(1); err != nil {
		return err
	}
	return s.buf.WriteByte(c)
}

// WriteString implements io.StringWriter.
func (s *OutputStream) WriteString(str string) (int, error) {
	if s.closed {
		return 0, ErrClosedStream
	}
	if err := s.reserve(len(str)); err != nil {
		return 0, err
	}
	return s.buf.WriteString(str)
}

// ReadFrom implements io.ReaderFrom.
func (s *OutputStream) ReadFrom(r io.Reader) (int64, error) {
	if s.closed {
		return 0, ErrClosedStream
	}
	chunk := make([]byte, 32*1024)
	var total int64
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			if _, werr := s.Write(chunk[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Pos returns the number of bytes written so far.
func (s *OutputStream) Pos() (int64, error) {
	if s.closed {
		return 0, ErrClosedStream
	}
	return int64(s.buf.Len()), nil
}

// Flush is a no-op: there is no durability point before Close.
func (s *OutputStream) Flush() error {
	if s.closed {
		return ErrClosedStream
	}
	return nil
}

// Close writes the accumulated bytes with one store call and releases them.
// The stream is closed even when the write fails. Closing twice is a no-op.
func (s *OutputStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.op.writeAll(s.ctx, s.path, s.buf.Bytes(), s.overwrite)

	s.buf = bytes.Buffer{}
	s.op.rc.ReleaseMemory(s.reserved)
	s.reserved = 0
	return err
}

// discard closes the stream without writing anything.
func (s *OutputStream) discard() {
	if s.closed {
		return
	}
	s.closed = true
	s.buf = bytes.Buffer{}
	s.op.rc.ReleaseMemory(s.reserved)
	s.reserved = 0
}
