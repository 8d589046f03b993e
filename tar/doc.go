// Package tar implements a streaming reader for the ustar, GNU, and PAX
// tar archive formats.
//
// An archive is read forward-only through a Reader: each call to Next
// advances past the current entry's body (even if the caller read none of
// it) and returns the next logical Entry, with any GNU long-name/long-link
// and PAX extended-attribute auxiliary records already spliced in. GNU
// sparse files are reconstructed lazily: reading an Entry's body never
// materializes more than the current segment's bytes, even for sparse
// files that are nominally gigabytes long.
//
// This package only reads. Archive construction, on-disk symlink xattr
// manipulation, and safe extraction to a destination directory are left to
// callers and to the sibling extract package, respectively.
package tar
