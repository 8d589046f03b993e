package extract

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/relaxedtar/tarsafe/sanitizer"
	"github.com/relaxedtar/tarsafe/tar"
)

// ErrAlreadyExists is returned when Overwrite is disabled and a file or
// link entry's destination path is already occupied. Directory entries are
// not checked: an existing directory is reused.
var ErrAlreadyExists = errors.New("extract: destination already exists")

// ErrSymlinkTraversal is returned when writing an entry would require
// passing through a symbolic link the archive planted earlier.
var ErrSymlinkTraversal = errors.New("extract: refusing to write through a symlink")

// ErrLinkEscapesRoot is returned when a hardlink or symlink's resolved
// target would fall outside the destination root.
var ErrLinkEscapesRoot = errors.New("extract: link target escapes destination root")

// Extractor unpacks a tar.Reader's entries onto a destination filesystem,
// rejecting any path that would escape the destination root and any write
// that would pass through a symlink planted by an earlier entry.
type Extractor struct {
	fs     afero.Fs
	config Config
}

// NewExtractor creates an Extractor targeting fs.
func NewExtractor(fs afero.Fs, config Config) *Extractor {
	if config.Applier == nil {
		config.Applier = NoopXattrApplier()
	}
	return &Extractor{fs: fs, config: config}
}

// NewOSExtractor creates an Extractor targeting the real operating system
// filesystem.
func NewOSExtractor(config Config) *Extractor {
	return NewExtractor(afero.NewOsFs(), config)
}

type pendingDir struct {
	path    string
	mode    os.FileMode
	modTime time.Time
}

// Unpack writes every entry from r beneath dest, creating dest itself
// (including parents) if it does not already exist. It returns a manifest
// of sanitized-path -> content digest for every regular file written, or
// nil if Config.Digest is false.
func (x *Extractor) Unpack(r *tar.Reader, dest string) (map[string]uint64, error) {
	if err := x.fs.MkdirAll(dest, 0o755); err != nil {
		return nil, errors.Wrap(err, "extract: creating destination root")
	}
	root, err := filepath.Abs(dest)
	if err != nil {
		root = dest // tolerate failure to canonicalize; fall back to the literal
	}

	var (
		manifest map[string]uint64
		pending  []pendingDir
		symlinks = make(map[string]bool) // sanitized relative path -> planted by this unpack
	)
	if x.config.Digest {
		manifest = make(map[string]uint64)
	}

	for {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return manifest, err
		}

		if sanitizer.HasNUL(e.Name) {
			return manifest, errors.Newf("extract: entry %q: embedded NUL in path", e.Name)
		}
		if sanitizer.HasParentRef(e.Name) {
			continue // silent traversal-defense skip, per spec
		}

		clean := sanitizer.SanitizePath(e.Name)
		clean = strings.TrimSuffix(clean, "/")
		if clean == "" || clean == "." {
			continue
		}
		if !matchesFilters(clean, x.config.Include, x.config.Exclude) {
			continue
		}

		if x.walksThroughSymlink(root, clean, symlinks) {
			return manifest, errors.Wrapf(ErrSymlinkTraversal, "entry %q", e.Name)
		}

		full := filepath.Join(root, clean)

		switch {
		case e.Header.Typeflag == tar.KindDir:
			if err := x.fs.MkdirAll(full, 0o755); err != nil {
				return manifest, errors.Wrapf(err, "entry %q", e.Name)
			}
			pending = append(pending, pendingDir{
				path:    full,
				mode:    x.finalMode(e.Header.Mode, true),
				modTime: e.Header.ModTime,
			})

		case e.Header.Typeflag == tar.KindSymlink:
			if err := x.checkOverwrite(full); err != nil {
				return manifest, errors.Wrapf(err, "entry %q", e.Name)
			}
			if escapesRoot(root, filepath.Dir(full), e.Linkname) {
				return manifest, errors.Wrapf(ErrLinkEscapesRoot, "entry %q", e.Name)
			}
			if err := x.ensureParent(full); err != nil {
				return manifest, errors.Wrapf(err, "entry %q", e.Name)
			}
			if err := x.symlink(e.Linkname, full); err != nil {
				return manifest, errors.Wrapf(err, "entry %q", e.Name)
			}
			symlinks[clean] = true

		case e.Header.Typeflag == tar.KindHardlink:
			targetClean := strings.TrimSuffix(sanitizer.SanitizePath(e.Linkname), "/")
			targetFull := filepath.Join(root, targetClean)
			if !withinRoot(root, targetFull) {
				return manifest, errors.Wrapf(ErrLinkEscapesRoot, "entry %q", e.Name)
			}
			if err := x.checkOverwrite(full); err != nil {
				return manifest, errors.Wrapf(err, "entry %q", e.Name)
			}
			if err := x.ensureParent(full); err != nil {
				return manifest, errors.Wrapf(err, "entry %q", e.Name)
			}
			if err := x.hardlink(targetFull, full); err != nil {
				return manifest, errors.Wrapf(err, "entry %q", e.Name)
			}

		case e.Header.Typeflag.IsRegular():
			digest, err := x.writeRegular(e, full)
			if err != nil {
				return manifest, errors.Wrapf(err, "entry %q", e.Name)
			}
			if manifest != nil {
				manifest[clean] = digest
			}

		default:
			// Devices, FIFOs, and any other special type are silently
			// skipped: writing them is out of scope (see Non-goals).
			continue
		}
	}

	for _, d := range pending {
		if x.config.PreservePermissions {
			_ = x.fs.Chmod(d.path, d.mode)
		}
		if x.config.PreserveMtime && !d.modTime.IsZero() {
			_ = x.fs.Chtimes(d.path, d.modTime, d.modTime)
		}
	}

	return manifest, nil
}

func (x *Extractor) writeRegular(e *tar.Entry, full string) (uint64, error) {
	if err := x.checkOverwrite(full); err != nil {
		return 0, err
	}
	if err := x.ensureParent(full); err != nil {
		return 0, err
	}

	f, err := x.fs.Create(full)
	if err != nil {
		return 0, errors.Wrap(err, "creating file")
	}
	_, copyErr := io.Copy(f, e)
	closeErr := f.Close()
	if copyErr != nil {
		return 0, errors.Wrap(copyErr, "writing body")
	}
	if closeErr != nil {
		return 0, errors.Wrap(closeErr, "closing file")
	}

	digest, _ := e.Digest()
	x.postActions(e, full, true)
	return digest, nil
}

// postActions applies the per-entry configuration-gated steps: mode mask,
// mtime, ownership, and xattrs. Directories are handled via the deferred
// replay in Unpack instead, except when called for a file (isFile=true).
func (x *Extractor) postActions(e *tar.Entry, full string, isFile bool) {
	if x.config.PreservePermissions {
		_ = x.fs.Chmod(full, x.finalMode(e.Header.Mode, !isFile))
	}
	if x.config.PreserveOwnerships {
		_ = x.fs.Chown(full, int(e.Header.UID), int(e.Header.GID))
	}
	if x.config.PreserveMtime && !e.Header.ModTime.IsZero() {
		_ = x.fs.Chtimes(full, e.Header.ModTime, e.Header.ModTime)
	}
	if x.config.UnpackXattrs {
		if xattrs := e.Xattrs(); len(xattrs) > 0 {
			_ = x.config.Applier.Apply(full, xattrs)
		}
	}
}

func (x *Extractor) finalMode(headerMode int64, dir bool) os.FileMode {
	mode := os.FileMode(headerMode)
	if dir {
		mode |= os.ModeDir
	}
	return mode &^ x.config.Mask
}

func (x *Extractor) checkOverwrite(full string) error {
	if x.config.Overwrite {
		return nil
	}
	if _, err := x.fs.Stat(full); err == nil {
		return errors.Wrapf(ErrAlreadyExists, "%q", full)
	}
	return nil
}

func (x *Extractor) ensureParent(full string) error {
	return x.fs.MkdirAll(filepath.Dir(full), 0o755)
}

// walksThroughSymlink reports whether writing beneath clean (relative to
// root) would require passing through a path component that is itself a
// symlink, checking both the live destination filesystem and this unpack's
// own record of symlinks it has already planted.
func (x *Extractor) walksThroughSymlink(root, clean string, symlinks map[string]bool) bool {
	parts := strings.Split(clean, "/")
	acc := ""
	for i := 0; i < len(parts)-1; i++ {
		if acc == "" {
			acc = parts[i]
		} else {
			acc = acc + "/" + parts[i]
		}
		if symlinks[acc] {
			return true
		}
		full := filepath.Join(root, acc)
		if isSymlink(x.fs, full) {
			return true
		}
	}
	return false
}

func isSymlink(fs afero.Fs, path string) bool {
	lst, ok := fs.(afero.Lstater)
	if !ok {
		return false
	}
	info, usedLstat, err := lst.LstatIfPossible(path)
	if err != nil || !usedLstat || info == nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

// escapesRoot reports whether a symlink placed at dir with the given
// target would, if resolved, point outside root. Relative targets resolve
// against dir; absolute targets resolve against root itself (there being
// no meaningful absolute path inside an extraction sandbox).
func escapesRoot(root, dir, target string) bool {
	var resolved string
	if filepath.IsAbs(target) {
		resolved = filepath.Join(root, target)
	} else {
		resolved = filepath.Join(dir, target)
	}
	return !withinRoot(root, resolved)
}

func withinRoot(root, path string) bool {
	rel, err := filepath.Rel(root, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (x *Extractor) symlink(target, full string) error {
	linker, ok := x.fs.(afero.Symlinker)
	if !ok {
		return nil // best-effort: filesystem does not support symlinks
	}
	_ = x.fs.Remove(full)
	return linker.SymlinkIfPossible(target, full)
}

func (x *Extractor) hardlink(targetFull, full string) error {
	if _, ok := x.fs.(*afero.OsFs); !ok {
		return x.copyFile(targetFull, full) // best-effort fallback
	}
	_ = x.fs.Remove(full)
	return os.Link(targetFull, full)
}

func (x *Extractor) copyFile(src, dst string) error {
	in, err := x.fs.Open(src)
	if err != nil {
		return errors.Wrap(err, "opening hardlink target for fallback copy")
	}
	defer in.Close()
	out, err := x.fs.Create(dst)
	if err != nil {
		return errors.Wrap(err, "creating hardlink fallback copy")
	}
	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		return errors.Wrap(copyErr, "copying hardlink fallback body")
	}
	return closeErr
}
