package tar

import (
	"io"

	"github.com/cockroachdb/errors"
)

// discardChunk is the scratch buffer size used to skip bytes on a source
// that cannot reposition.
const discardChunk = 32 * 1024

// source wraps the caller's io.Reader, tracking the number of bytes
// consumed so far. If the underlying reader also implements io.Seeker,
// skip uses it directly instead of discarding through a scratch buffer.
// Exactly one entity reads from a source at a time (see package doc).
type source struct {
	r   io.Reader
	pos int64
}

func newSource(r io.Reader) *source {
	return &source{r: r}
}

// Read implements io.Reader, advancing pos by the number of bytes
// successfully read.
func (s *source) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.pos += int64(n)
	return n, err
}

// skip advances the source by n bytes without returning them, using
// repositioning when available and a discard loop otherwise.
func (s *source) skip(n int64) error {
	if n == 0 {
		return nil
	}
	if n < 0 {
		return errors.New("tar: negative skip")
	}
	if seeker, ok := s.r.(io.Seeker); ok {
		newPos, err := seeker.Seek(n, io.SeekCurrent)
		if err != nil {
			return err
		}
		s.pos = newPos
		return nil
	}
	var buf [discardChunk]byte
	for n > 0 {
		chunk := buf[:]
		if int64(len(chunk)) > n {
			chunk = chunk[:n]
		}
		read, err := s.Read(chunk)
		n -= int64(read)
		if err != nil {
			if err == io.EOF && n == 0 {
				return nil
			}
			return err
		}
	}
	return nil
}

// readFull reads exactly len(p) bytes, or returns an error. It reports
// (false, nil) when zero bytes were available before hitting EOF (a clean
// end of input), and a wrapped io.ErrUnexpectedEOF for a partial read.
func (s *source) readFull(p []byte) (ok bool, err error) {
	n, err := io.ReadFull(s, p)
	switch {
	case err == nil:
		return true, nil
	case err == io.EOF && n == 0:
		return false, nil
	case err == io.ErrUnexpectedEOF || err == io.EOF:
		return false, errors.Wrap(err, "tar: truncated archive")
	default:
		return false, err
	}
}
