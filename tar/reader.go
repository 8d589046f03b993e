package tar

import (
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Reader drives a forward-only archive stream, splicing GNU long-name,
// long-link, and PAX auxiliary entries into the logical entries it
// returns from Next. It owns the sole forward parsing cursor; a returned
// Entry borrows read access to the shared source and is only valid until
// the next Next call (see package doc and §5 of the design).
type Reader struct {
	src        *source
	config     Config
	nextHeader int64
	paxRecords map[string]string
	terminated bool
}

// NewReader creates a Reader with the default Config.
func NewReader(r io.Reader) *Reader {
	return NewReaderConfig(r, Config{})
}

// NewReaderConfig creates a Reader with an explicit Config.
func NewReaderConfig(r io.Reader, cfg Config) *Reader {
	return &Reader{src: newSource(r), config: cfg}
}

// Next advances to and returns the next logical entry. It returns io.EOF
// once the archive is exhausted. In non-raw (default) mode, GNU long-name,
// long-link, and PAX auxiliary entries are consumed transparently and
// folded into the entry that follows them; in raw mode every physical
// entry is returned, auxiliary ones included.
func (r *Reader) Next() (*Entry, error) {
	if r.config.Raw {
		return r.advance()
	}

	var gnuLongName, gnuLongLink *string
	processed := 0
	for {
		processed++
		e, err := r.advance()
		if err != nil {
			if err == io.EOF && processed > 1 {
				return nil, errors.Wrap(ErrDanglingAux, "archive ended")
			}
			return nil, err
		}

		switch e.Header.Typeflag {
		case KindGNULong:
			if gnuLongName != nil {
				return nil, errors.Wrap(ErrDuplicateAux, "two long-name entries for the same member")
			}
			s, err := readAllBody(e)
			if err != nil {
				return nil, err
			}
			s = strings.TrimSuffix(s, "\x00")
			gnuLongName = &s
			continue

		case KindGNULink:
			if gnuLongLink != nil {
				return nil, errors.Wrap(ErrDuplicateAux, "two long-link entries for the same member")
			}
			s, err := readAllBody(e)
			if err != nil {
				return nil, err
			}
			s = strings.TrimSuffix(s, "\x00")
			gnuLongLink = &s
			continue

		case KindXHeader:
			if r.paxRecords != nil {
				return nil, errors.Wrap(ErrDuplicateAux, "two pax extension entries for the same member")
			}
			s, err := readAllBody(e)
			if err != nil {
				return nil, err
			}
			recs, err := parsePAXRecords([]byte(s))
			if err != nil {
				return nil, err
			}
			r.paxRecords = recs
			continue

		default:
			if gnuLongName != nil {
				e.Name = *gnuLongName
			}
			if gnuLongLink != nil {
				e.Linkname = *gnuLongLink
			}
			if r.paxRecords != nil {
				e.PAXRecords = r.paxRecords
				if v, ok := paxLookup(r.paxRecords, paxPath); ok {
					e.Name = v
				}
				if v, ok := paxLookup(r.paxRecords, paxLinkpath); ok {
					e.Linkname = v
				}
				r.paxRecords = nil
			}
			if e.Header.Typeflag == KindGNUSparse {
				if err := r.applySparse(e); err != nil {
					return nil, err
				}
			}
			return e, nil
		}
	}
}

// advance implements the advance-to-next algorithm of §4.4, steps 1-8: it
// produces one raw physical entry (auxiliary or real), with PAX uid/gid/
// size overrides from any buffer accumulated so far already applied, and
// the shared cursor moved past this entry's header and body.
func (r *Reader) advance() (*Entry, error) {
	if r.terminated {
		return nil, io.EOF
	}

	var blk block
	headerPos := r.nextHeader
	for {
		if err := r.src.skip(r.nextHeader - r.src.pos); err != nil {
			r.terminated = true
			return nil, err
		}

		ok, err := r.src.readFull(blk[:])
		if err != nil {
			r.terminated = true
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, errors.Mark(err, ErrTruncated)
			}
			return nil, err
		}
		if !ok {
			r.terminated = true
			return nil, io.EOF
		}

		if blk.isZero() {
			r.nextHeader += blockSize
			if !r.config.IgnoreZeros {
				r.terminated = true
				return nil, io.EOF
			}
			headerPos = r.nextHeader
			continue
		}

		r.nextHeader += blockSize
		break
	}

	h, err := parseHeader(&blk)
	if err != nil {
		r.terminated = true
		return nil, err
	}

	if r.paxRecords != nil {
		if h.Size == 0 {
			if v, ok := paxLookup(r.paxRecords, paxSize); ok {
				if n, perr := strconv.ParseInt(v, 10, 64); perr == nil {
					h.Size = n
				}
			}
		}
		if v, ok := paxLookup(r.paxRecords, paxUID); ok {
			if n, perr := strconv.ParseInt(v, 10, 64); perr == nil {
				h.UID = n
			}
		}
		if v, ok := paxLookup(r.paxRecords, paxGID); ok {
			if n, perr := strconv.ParseInt(v, 10, 64); perr == nil {
				h.GID = n
			}
		}
	}

	bodyStart := headerPos + blockSize
	size := h.Size

	padded, err := roundedSize(size)
	if err != nil {
		r.terminated = true
		return nil, err
	}
	newNext := r.nextHeader + padded
	if newNext < r.nextHeader {
		r.terminated = true
		return nil, ErrSizeOverflow
	}
	r.nextHeader = newNext

	e := &Entry{
		Header:       h,
		Name:         h.Name,
		Linkname:     h.Linkname,
		Size:         size,
		HeaderOffset: headerPos,
		BodyOffset:   bodyStart,
	}
	e.body = newBodyReader(r.src, []bodySegment{{n: size}})
	return e, nil
}

// applySparse replaces e's body plan with the sparse assembler's
// reconstruction (§4.5), reading any chained extension blocks directly
// from the shared source.
func (r *Reader) applySparse(e *Entry) error {
	if e.Header.Format != FormatGNU {
		return ErrNotGNU
	}

	next := func() ([]sparseDescriptor, bool, error) {
		var ext sparseExt
		ok, err := r.src.readFull(ext[:])
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, errors.New("tar: sparse: failed to read extension block")
		}
		r.nextHeader += blockSize

		arr := ext.entries()
		var descs []sparseDescriptor
		for i := 0; i < arr.maxEntries(); i++ {
			el := arr.entry(i)
			off, err1 := parseNumeric(el.offset())
			length, err2 := parseNumeric(el.length())
			if err1 != nil || err2 != nil {
				return nil, false, errors.New("tar: sparse: invalid extension descriptor")
			}
			if off == 0 && length == 0 {
				continue
			}
			descs = append(descs, sparseDescriptor{off, length})
		}
		return descs, ext.isExtended() != 0, nil
	}

	plan, realSize, err := buildSparsePlan(e.Header.GNUSparse, e.Size, e.Header.RealSize, e.Header.GNUExtended, next)
	if err != nil {
		return err
	}
	e.Size = realSize
	e.body = newBodyReader(r.src, plan)
	return nil
}

// roundedSize adds the padding needed to round size up to a 512-byte
// multiple, failing on overflow.
func roundedSize(size int64) (int64, error) {
	const maxBeforeOverflow = (1<<63 - 1) - (blockSize - 1)
	if size < 0 || size > maxBeforeOverflow {
		return 0, ErrSizeOverflow
	}
	return size + blockPadding(size), nil
}

// readAllBody drains an auxiliary entry's body into a string.
func readAllBody(e *Entry) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 32*1024)
	for {
		n, err := e.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
	}
}
