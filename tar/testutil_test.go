package tar

import "strconv"

// rawEntry describes one physical archive member for hand-built test
// fixtures; building archives is test-only infrastructure, not a
// supported feature of this package.
type rawEntry struct {
	name     string
	linkname string
	typeflag byte
	size     int64
	magic    string
	version  string
	data     []byte
}

func buildArchive(entries ...rawEntry) []byte {
	var out []byte
	for _, e := range entries {
		out = append(out, buildHeaderBlock(e)...)
		out = append(out, e.data...)
		if pad := blockPadding(int64(len(e.data))); pad > 0 {
			out = append(out, make([]byte, pad)...)
		}
	}
	out = append(out, make([]byte, 2*blockSize)...) // canonical end-of-archive
	return out
}

func buildHeaderBlock(e rawEntry) []byte {
	var b block
	v7 := b.v7()
	copy(v7.name(), e.name)
	formatOctal(v7.mode(), 0644)
	formatOctal(v7.uid(), 0)
	formatOctal(v7.gid(), 0)
	formatOctal(v7.size(), e.size)
	formatOctal(v7.modTime(), 0)
	v7.typeFlag()[0] = e.typeflag
	copy(v7.linkName(), e.linkname)

	magic, version := magicUSTAR, versionUSTAR
	if e.magic != "" {
		magic, version = e.magic, e.version
	}
	u := b.ustar()
	copy(u.magic(), magic)
	copy(u.version(), version)
	copy(u.uname(), "user")
	copy(u.gname(), "group")

	for i := range v7.chksum() {
		v7.chksum()[i] = ' '
	}
	unsigned, _ := b.computeChecksum()
	formatChecksum(v7.chksum(), unsigned)

	return b[:]
}

func formatOctal(b []byte, v int64) {
	s := strconv.FormatInt(v, 8)
	n := len(b) - 1
	for i := range b {
		b[i] = '0'
	}
	if len(s) > n {
		s = s[len(s)-n:]
	}
	copy(b[n-len(s):n], s)
	b[len(b)-1] = 0
}

func formatChecksum(b []byte, v int64) {
	s := strconv.FormatInt(v, 8)
	n := len(b) - 2
	for i := 0; i < n; i++ {
		b[i] = '0'
	}
	if len(s) > n {
		s = s[len(s)-n:]
	}
	copy(b[n-len(s):n], s)
	b[n] = 0
	b[n+1] = ' '
}

func buildPAXRecord(key, value string) []byte {
	// LEN is self-inclusive; grow the guessed length until it's stable.
	suffix := " " + key + "=" + value + "\n"
	n := len(suffix) + 1
	for {
		candidate := strconv.Itoa(n) + suffix
		if len(candidate) == n {
			return []byte(candidate)
		}
		n = len(candidate)
	}
}
