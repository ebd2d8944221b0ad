package fileio

import (
	"errors"
	"fmt"
	"io"
)

var errNegativePosition = errors.New("negative position")

// InputStream is a seekable reader over a whole-object snapshot.
//
// The object is fetched once when the stream is opened; seeking never goes
// back to the store. An InputStream is not safe for concurrent use.
type InputStream struct {
	path    Path
	data    []byte
	size    int64
	pos     int64
	closed  bool
	release func()
}

var (
	_ io.Reader     = (*InputStream)(nil)
	_ io.ByteReader = (*InputStream)(nil)
	_ io.Seeker     = (*InputStream)(nil)
	_ io.ReaderAt   = (*InputStream)(nil)
	_ io.WriterTo   = (*InputStream)(nil)
	_ io.Closer     = (*InputStream)(nil)
)

func newInputStream(p Path, data []byte, release func()) *InputStream {
	return &InputStream{path: p, data: data, size: int64(len(data)), release: release}
}

// Path returns the path the stream was opened on.
func (s *InputStream) Path() Path { return s.path }

// Read implements io.Reader.
func (s *InputStream) Read(b []byte) (int, error) {
	if s.closed {
		return 0, ErrClosedStream
	}
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(b, s.data[s.pos:])
	s.pos += int64(n)
	return n, nil
}

// ReadByte implements io.ByteReader.
func (s *InputStream) ReadByte() (byte, error) {
	if s.closed {
		return 0, ErrClosedStream
	}
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

// Seek implements io.Seeker. Seeking past the end is allowed; subsequent
// reads return io.EOF.
func (s *InputStream) Seek(offset int64, whence int) (int64, error) {
	if s.closed {
		return 0, ErrClosedStream
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		abs = int64(len(s.data)) + offset
	default:
		return 0, fmt.Errorf("fileio: seek %s: invalid whence %d", s.path, whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("fileio: seek %s: %w: %d", s.path, errNegativePosition, abs)
	}
	s.pos = abs
	return abs, nil
}

// ReadAt implements io.ReaderAt. It does not move the cursor.
func (s *InputStream) ReadAt(b []byte, off int64) (int, error) {
	if s.closed {
		return 0, ErrClosedStream
	}
	if off < 0 {
		return 0, fmt.Errorf("fileio: read %s: %w: %d", s.path, errNegativePosition, off)
	}
	if off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(b, s.data[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

// WriteTo implements io.WriterTo, draining the stream from the cursor.
func (s *InputStream) WriteTo(w io.Writer) (int64, error) {
	if s.closed {
		return 0, ErrClosedStream
	}
	if s.pos >= int64(len(s.data)) {
		return 0, nil
	}
	b := s.data[s.pos:]
	m, err := w.Write(b)
	if m > len(b) {
		panic("fileio: invalid Write count")
	}
	s.pos += int64(m)
	if m != len(b) && err == nil {
		err = io.ErrShortWrite
	}
	return int64(m), err
}

// Pos returns the cursor position.
func (s *InputStream) Pos() (int64, error) {
	if s.closed {
		return 0, ErrClosedStream
	}
	return s.pos, nil
}

// Len returns the number of unread bytes.
func (s *InputStream) Len() int {
	if s.closed || s.pos >= int64(len(s.data)) {
		return 0
	}
	return int(int64(len(s.data)) - s.pos)
}

// Size returns the size of the object.
func (s *InputStream) Size() int64 { return s.size }

// Close releases the buffer. Closing twice returns ErrClosedStream.
func (s *InputStream) Close() error {
	if s.closed {
		return ErrClosedStream
	}
	s.closed = true
	s.data = nil
	s.pos = 0
	if s.release != nil {
		s.release()
	}
	return nil
}
