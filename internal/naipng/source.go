package naipng

import (
	"bufio"
	"bytes"
	"hash"
	"io"
)

// source is a forward-only cursor over a PNG datastream.
//
// read returns exactly n bytes, io.EOF if nothing was left, or
// io.ErrUnexpectedEOF on a short read. discard advances n bytes, feeding
// them to h when h is non-nil.
type source interface {
	read(n int) ([]byte, error)
	discard(n int64, h hash.Hash32) error
	offset() int64
}

func newSource(r io.Reader) source {
	if rs, ok := r.(io.ReadSeeker); ok {
		if s, ok := newSeekSource(rs); ok {
			return s
		}
	}
	return &streamSource{r: bufio.NewReaderSize(r, 64<<10)}
}

type bytesSource struct {
	data []byte
	pos  int64
}

func newBytesSource(data []byte) *bytesSource {
	return &bytesSource{data: data}
}

// read returns a sub-slice of the backing buffer without copying.
func (s *bytesSource) read(n int) ([]byte, error) {
	remaining := int64(len(s.data)) - s.pos
	if n > 0 && remaining == 0 {
		return nil, io.EOF
	}
	if int64(n) > remaining {
		s.pos = int64(len(s.data))
		return nil, io.ErrUnexpectedEOF
	}
	out := s.data[s.pos : s.pos+int64(n)]
	s.pos += int64(n)
	return out, nil
}

func (s *bytesSource) discard(n int64, h hash.Hash32) error {
	remaining := int64(len(s.data)) - s.pos
	if n > remaining {
		s.pos = int64(len(s.data))
		return io.ErrUnexpectedEOF
	}
	if h != nil {
		h.Write(s.data[s.pos : s.pos+n])
	}
	s.pos += n
	return nil
}

func (s *bytesSource) offset() int64 { return s.pos }

// seekSource skips unread chunk data with Seek. The end position is
// recorded up front so that a skip past it is reported as truncation.
type seekSource struct {
	r   io.ReadSeeker
	pos int64
	end int64
}

func newSeekSource(r io.ReadSeeker) (*seekSource, bool) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		// Pipes and terminals implement Seek but fail on use.
		return nil, false
	}
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, false
	}
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return nil, false
	}
	return &seekSource{r: r, pos: pos, end: end}, true
}

// read checks n against the recorded end before allocating, so a bogus
// length field costs no more than the file holds.
func (s *seekSource) read(n int) ([]byte, error) {
	if n > 0 && s.pos >= s.end {
		return nil, io.EOF
	}
	if s.pos+int64(n) > s.end {
		s.pos = s.end
		if _, err := s.r.Seek(s.end, io.SeekStart); err != nil {
			return nil, err
		}
		return nil, io.ErrUnexpectedEOF
	}
	buf := make([]byte, n)
	m, err := io.ReadFull(s.r, buf)
	s.pos += int64(m)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *seekSource) discard(n int64, h hash.Hash32) error {
	if s.pos+n > s.end {
		s.pos = s.end
		if _, err := s.r.Seek(s.end, io.SeekStart); err != nil {
			return err
		}
		return io.ErrUnexpectedEOF
	}
	if h != nil {
		m, err := io.CopyN(h, s.r, n)
		s.pos += m
		return shortCopy(err)
	}
	if _, err := s.r.Seek(n, io.SeekCurrent); err != nil {
		return err
	}
	s.pos += n
	return nil
}

func (s *seekSource) offset() int64 { return s.pos }

type streamSource struct {
	r   *bufio.Reader
	pos int64
}

// read grows its buffer as data arrives, so a bogus length field on a
// short stream does not allocate the full declared size.
func (s *streamSource) read(n int) ([]byte, error) {
	var buf bytes.Buffer
	m, err := buf.ReadFrom(io.LimitReader(s.r, int64(n)))
	s.pos += m
	if err != nil {
		return nil, err
	}
	switch {
	case m == int64(n):
		return buf.Bytes(), nil
	case m == 0:
		return nil, io.EOF
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func (s *streamSource) discard(n int64, h hash.Hash32) error {
	var w io.Writer = io.Discard
	if h != nil {
		w = h
	}
	m, err := io.CopyN(w, s.r, n)
	s.pos += m
	return shortCopy(err)
}

func (s *streamSource) offset() int64 { return s.pos }

func shortCopy(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
