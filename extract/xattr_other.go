//go:build !linux && !darwin

package extract

// NewUnixXattrApplier returns a no-op applier on platforms without xattr
// syscall support, so callers can wire it unconditionally.
func NewUnixXattrApplier() XattrApplier { return noopApplier{} }
