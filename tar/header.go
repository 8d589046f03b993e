package tar

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Format identifies which tar header variant a block decoded as.
type Format int

const (
	FormatUnknown Format = iota
	FormatV7
	FormatUSTAR
	FormatGNU
)

// Kind classifies an entry's type flag byte.
type Kind byte

const (
	KindRegular   Kind = '0'
	KindHardlink  Kind = '1'
	KindSymlink   Kind = '2'
	KindChar      Kind = '3'
	KindBlock     Kind = '4'
	KindDir       Kind = '5'
	KindFifo      Kind = '6'
	KindCont      Kind = '7' // contiguous file, treated as regular
	KindXHeader   Kind = 'x' // PAX per-entry extended attributes
	KindXGlobal   Kind = 'g' // PAX global extended attributes (ignored)
	KindGNULong   Kind = 'L' // GNU long name
	KindGNULink   Kind = 'K' // GNU long link
	KindGNUSparse Kind = 'S'
)

// IsRegular reports whether k should be treated as a regular file, folding
// in the legacy '0'/NUL encodings and the GNU contiguous-file type.
func (k Kind) IsRegular() bool {
	return k == KindRegular || k == 0 || k == KindCont
}

// ErrHeader is returned for any header that fails to parse or verify.
var ErrHeader = errors.New("tar: invalid header")

// Header is the decoded metadata of one archive entry; see the wire layout
// in block.go. Name and Linkname here are the raw ustar/GNU fields before
// any GNU long-name/long-link/PAX override is applied by the iterator.
type Header struct {
	Format   Format
	Name     string
	Mode     int64
	UID      int64
	GID      int64
	Size     int64
	ModTime  time.Time
	Typeflag Kind
	Linkname string
	Uname    string
	Gname    string
	DevMajor int64
	DevMinor int64

	// GNU-only fields; zero value if Format != FormatGNU.
	AccessTime  time.Time
	ChangeTime  time.Time
	GNUSparse   []sparseDescriptor
	GNUExtended bool
	RealSize    int64
}

// sparseDescriptor is one raw (offset, length) pair as decoded straight off
// the wire, before the assembler in sparse.go validates and chains it.
type sparseDescriptor struct {
	Offset, Length int64
}

// parseHeader decodes a 512-byte header block, verifying its checksum and
// detecting the format variant.
func parseHeader(b *block) (Header, error) {
	format, err := verifyChecksum(b)
	if err != nil {
		return Header{}, err
	}

	v7 := b.v7()
	var h Header
	h.Format = format
	h.Name = cstr(v7.name())
	h.Linkname = cstr(v7.linkName())
	h.Typeflag = Kind(v7.typeFlag()[0])

	if h.Mode, err = parseNumeric(v7.mode()); err != nil {
		return Header{}, errors.Wrap(ErrHeader, "mode field")
	}
	if h.UID, err = parseNumeric(v7.uid()); err != nil {
		return Header{}, errors.Wrap(ErrHeader, "uid field")
	}
	if h.GID, err = parseNumeric(v7.gid()); err != nil {
		return Header{}, errors.Wrap(ErrHeader, "gid field")
	}
	if h.Size, err = parseNumeric(v7.size()); err != nil {
		return Header{}, errors.Wrap(ErrHeader, "size field")
	}
	if h.Size < 0 {
		return Header{}, errors.Wrap(ErrHeader, "negative size field")
	}
	mtime, err := parseNumeric(v7.modTime())
	if err != nil {
		return Header{}, errors.Wrap(ErrHeader, "mtime field")
	}
	h.ModTime = time.Unix(mtime, 0)

	switch format {
	case FormatUSTAR:
		u := b.ustar()
		h.Uname = cstr(u.uname())
		h.Gname = cstr(u.gname())
		if h.DevMajor, err = parseNumeric(u.devMajor()); err != nil {
			return Header{}, errors.Wrap(ErrHeader, "devmajor field")
		}
		if h.DevMinor, err = parseNumeric(u.devMinor()); err != nil {
			return Header{}, errors.Wrap(ErrHeader, "devminor field")
		}
		h.Name = joinUSTARName(cstr(u.prefix()), h.Name)

	case FormatGNU:
		g := b.gnu()
		h.Uname = cstr(g.uname())
		h.Gname = cstr(g.gname())
		if h.DevMajor, err = parseNumeric(g.devMajor()); err != nil {
			return Header{}, errors.Wrap(ErrHeader, "devmajor field")
		}
		if h.DevMinor, err = parseNumeric(g.devMinor()); err != nil {
			return Header{}, errors.Wrap(ErrHeader, "devminor field")
		}
		if at, err := parseNumeric(g.accessTime()); err == nil && at != 0 {
			h.AccessTime = time.Unix(at, 0)
		}
		if ct, err := parseNumeric(g.changeTime()); err == nil && ct != 0 {
			h.ChangeTime = time.Unix(ct, 0)
		}
		if h.RealSize, err = parseNumeric(g.realSize()); err != nil {
			return Header{}, errors.Wrap(ErrHeader, "realsize field")
		}
		h.GNUExtended = g.isExtended() != 0
		sparse := g.sparse()
		for i := 0; i < sparse.maxEntries(); i++ {
			e := sparse.entry(i)
			off, err1 := parseNumeric(e.offset())
			length, err2 := parseNumeric(e.length())
			if err1 != nil || err2 != nil {
				return Header{}, errors.Wrap(ErrHeader, "sparse field")
			}
			if off == 0 && length == 0 {
				continue
			}
			h.GNUSparse = append(h.GNUSparse, sparseDescriptor{off, length})
		}
	}

	return h, nil
}

// verifyChecksum sums the block's bytes (substituting ASCII spaces for the
// checksum field itself) and compares against the stored ASCII-octal
// value, accepting both the POSIX unsigned-sum and the historical
// signed-sum conventions. It also classifies the format from the
// magic/version fields.
func verifyChecksum(b *block) (Format, error) {
	have, err := parseOctal(b.v7().chksum())
	if err != nil {
		return FormatUnknown, errors.Wrap(ErrHeader, "checksum field")
	}
	unsigned, signed := b.computeChecksum()
	if have != unsigned && have != signed {
		return FormatUnknown, errors.Wrap(ErrHeader, "checksum mismatch")
	}

	magic := string(b.ustar().magic())
	version := string(b.ustar().version())
	switch {
	case magic == magicUSTAR && version == versionUSTAR:
		return FormatUSTAR, nil
	case magic == magicGNU && version == versionGNU:
		return FormatGNU, nil
	default:
		return FormatV7, nil
	}
}

// joinUSTARName reconstructs a ustar path from its prefix and name fields.
func joinUSTARName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
