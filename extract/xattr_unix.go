//go:build linux || darwin

package extract

import "golang.org/x/sys/unix"

// unixXattrApplier applies xattrs by calling into the host kernel directly;
// it only works against a real on-disk path, not an in-memory afero.Fs.
type unixXattrApplier struct{}

// NewUnixXattrApplier returns an XattrApplier backed by the unix Lsetxattr
// syscall. It is only meaningful when the Extractor's destination
// filesystem is backed by the real OS (afero.NewOsFs).
func NewUnixXattrApplier() XattrApplier { return unixXattrApplier{} }

func (unixXattrApplier) Apply(path string, records map[string]string) error {
	for name, value := range records {
		if err := unix.Lsetxattr(path, name, []byte(value), 0); err != nil {
			return err
		}
	}
	return nil
}
