package tar

import "github.com/cockroachdb/errors"

// Sentinel and taxonomy errors for the parser. Transport errors are
// propagated unchanged from the underlying io.Reader/io.Seeker and are not
// named here.
var (
	// ErrTruncated indicates a header block stopped mid-way through.
	ErrTruncated = errors.New("tar: truncated header")

	// ErrSizeOverflow indicates the next-header position could not be
	// represented without overflow.
	ErrSizeOverflow = errors.New("tar: size overflow")

	// ErrDuplicateAux indicates two consecutive GNU long-name, long-link,
	// or PAX auxiliary entries of the same kind preceded a real member.
	ErrDuplicateAux = errors.New("tar: duplicate auxiliary header")

	// ErrDanglingAux indicates an auxiliary header was the last thing in
	// the archive, describing no following member.
	ErrDanglingAux = errors.New("tar: auxiliary header describes no following member")

	// ErrNotGNU indicates a sparse type flag appeared on a non-GNU header.
	ErrNotGNU = errors.New("tar: sparse entry type listed but header is not GNU format")
)
