package tar

// Magics used to identify the ustar and GNU header variants.
const (
	magicGNU, versionGNU     = "ustar ", " \x00"
	magicUSTAR, versionUSTAR = "ustar\x00", "00"
)

// Size constants from the tar specifications.
const (
	blockSize  = 512 // size of each block in a tar stream
	nameSize   = 100 // max length of the name field in USTAR format
	prefixSize = 155 // max length of the prefix field in USTAR format
)

// blockPadding computes the number of bytes needed to pad offset up to the
// nearest block edge, where 0 <= n < blockSize.
func blockPadding(offset int64) (n int64) {
	return -offset & (blockSize - 1)
}

var zeroBlock block

// block is the fixed 512-byte unit every header and every payload chunk is
// aligned to.
type block [blockSize]byte

func (b *block) isZero() bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// v7 returns the common v7/USTAR/GNU field layout shared by every variant.
func (b *block) v7() *blockV7 { return (*blockV7)(b) }

// ustar returns the ustar-specific field layout (also used for PAX headers).
func (b *block) ustar() *blockUSTAR { return (*blockUSTAR)(b) }

// gnu returns the GNU-specific field layout (overlays atime/ctime/sparse).
func (b *block) gnu() *blockGNU { return (*blockGNU)(b) }

// computeChecksum computes the checksum for the header block. POSIX
// specifies a sum of the unsigned byte values, but some historical tar
// implementations used signed byte values; we compute and return both so
// the caller can accept either.
func (b *block) computeChecksum() (unsigned, signed int64) {
	for i, c := range b {
		if 148 <= i && i < 156 {
			c = ' ' // the checksum field itself is treated as all spaces
		}
		unsigned += int64(c)
		signed += int64(int8(c))
	}
	return unsigned, signed
}

// blockV7 is the original Unix V7 header layout, a prefix of every variant.
type blockV7 [blockSize]byte

func (h *blockV7) name() []byte     { return h[0:][:100] }
func (h *blockV7) mode() []byte     { return h[100:][:8] }
func (h *blockV7) uid() []byte      { return h[108:][:8] }
func (h *blockV7) gid() []byte      { return h[116:][:8] }
func (h *blockV7) size() []byte     { return h[124:][:12] }
func (h *blockV7) modTime() []byte  { return h[136:][:12] }
func (h *blockV7) chksum() []byte   { return h[148:][:8] }
func (h *blockV7) typeFlag() []byte { return h[156:][:1] }
func (h *blockV7) linkName() []byte { return h[157:][:100] }

// blockUSTAR overlays the POSIX ustar extension fields.
type blockUSTAR [blockSize]byte

func (h *blockUSTAR) v7() *blockV7     { return (*blockV7)(h) }
func (h *blockUSTAR) magic() []byte    { return h[257:][:6] }
func (h *blockUSTAR) version() []byte  { return h[263:][:2] }
func (h *blockUSTAR) uname() []byte    { return h[265:][:32] }
func (h *blockUSTAR) gname() []byte    { return h[297:][:32] }
func (h *blockUSTAR) devMajor() []byte { return h[329:][:8] }
func (h *blockUSTAR) devMinor() []byte { return h[337:][:8] }
func (h *blockUSTAR) prefix() []byte   { return h[345:][:prefixSize] }

// blockGNU overlays the GNU extension fields: atime/ctime, inline sparse
// descriptors, the isextended flag, and realsize.
type blockGNU [blockSize]byte

func (h *blockGNU) v7() *blockV7        { return (*blockV7)(h) }
func (h *blockGNU) magic() []byte       { return h[257:][:6] }
func (h *blockGNU) version() []byte     { return h[263:][:2] }
func (h *blockGNU) uname() []byte       { return h[265:][:32] }
func (h *blockGNU) gname() []byte       { return h[297:][:32] }
func (h *blockGNU) devMajor() []byte    { return h[329:][:8] }
func (h *blockGNU) devMinor() []byte    { return h[337:][:8] }
func (h *blockGNU) accessTime() []byte  { return h[345:][:12] }
func (h *blockGNU) changeTime() []byte  { return h[357:][:12] }
func (h *blockGNU) sparse() sparseArray { return (sparseArray)(h[386:][:24*4+1]) }
func (h *blockGNU) isExtended() byte    { return h[482] }
func (h *blockGNU) realSize() []byte    { return h[483:][:12] }

// sparseArray is the 4-entry inline sparse descriptor table embedded in a
// GNU header, plus its trailing isextended byte.
type sparseArray []byte

func (s sparseArray) entry(i int) sparseElem { return (sparseElem)(s[i*24:]) }
func (s sparseArray) maxEntries() int        { return len(s) / 24 }

// sparseExt is one 512-byte GNU sparse extension block: 21 descriptors of
// 24 bytes each, followed by an isextended byte at offset 504.
type sparseExt [blockSize]byte

func (s *sparseExt) entries() sparseArray { return (sparseArray)(s[:21*24]) }
func (s *sparseExt) isExtended() byte     { return s[504] }

// sparseElem is one (offset, length) descriptor, 12 ASCII-octal bytes each.
type sparseElem []byte

func (s sparseElem) offset() []byte { return s[0:][:12] }
func (s sparseElem) length() []byte { return s[12:][:12] }
