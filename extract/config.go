// Package extract implements safe extraction of a tar archive to a
// destination filesystem, defending against path traversal and
// symlink-traversal attacks while the archive is unpacked.
package extract

import "os"

// Config parameterizes an Extractor. The zero value is unsafe-by-omission
// only in the sense that it disables optional features (xattrs, ownership,
// filters); the path-traversal and symlink-traversal defenses themselves are
// always on and cannot be disabled.
type Config struct {
	// Mask holds mode bits to clear: every regular file and directory's
	// mode has these bits removed (mode &^ Mask) before it is applied,
	// stripping bits like setuid/setgid/sticky. Zero means no bits are
	// stripped.
	Mask os.FileMode

	// UnpackXattrs applies SCHILY.xattr.* PAX records via the
	// configured XattrApplier. Ignored if Applier is nil.
	UnpackXattrs bool
	Applier      XattrApplier

	// PreservePermissions writes each entry's mode (after Mask) instead
	// of a default. PreserveOwnerships chowns each entry to its
	// header-declared uid/gid, when the destination filesystem supports
	// it.
	PreservePermissions bool
	PreserveOwnerships  bool

	// PreserveMtime restores each entry's recorded modification time
	// after writing it. Defaults to true in DefaultConfig.
	PreserveMtime bool

	// Overwrite allows an existing file or directory at the destination
	// path to be replaced. Defaults to true in DefaultConfig.
	Overwrite bool

	// Include and Exclude are doublestar glob patterns matched against
	// an entry's sanitized path. An entry is unpacked only if Include is
	// empty or it matches at least one Include pattern, and it matches
	// no Exclude pattern.
	Include []string
	Exclude []string

	// Digest, when true, makes Unpack return a path -> xxhash64 content
	// digest manifest for every regular file written.
	Digest bool
}

// DefaultConfig returns a Config with PreserveMtime and Overwrite enabled
// and every other option off. NewExtractor uses whatever Config it is given.
func DefaultConfig() Config {
	return Config{PreserveMtime: true, Overwrite: true}
}
