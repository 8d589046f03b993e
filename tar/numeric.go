package tar

import "github.com/cockroachdb/errors"

// ErrFieldTooLong is returned when a numeric field cannot represent a value.
var ErrFieldTooLong = errors.New("tar: header field too long")

// parseNumeric parses a NUL- or space-terminated ASCII-octal field. If the
// high bit of the first byte is set, the field instead holds a GNU
// base-256 encoding: the remaining bits of the field form a big-endian
// two's-complement integer.
func parseNumeric(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if b[0]&0x80 != 0 {
		return parseBase256(b)
	}
	return parseOctal(b)
}

// parseBase256 decodes the GNU extension for numeric fields: clear the
// leading continuation bit and read the rest big-endian. If the sign bit
// (the next-highest bit) is set, the bytes are inverted while reading and
// the result complemented, using the identity -a-1 == ^a.
func parseBase256(b []byte) (int64, error) {
	var inv byte // 0xff if negative, 0x00 otherwise
	if b[0]&0x40 != 0 {
		inv = 0xff
	}
	var x uint64
	for i, c := range b {
		c ^= inv
		if i == 0 {
			c &= 0x7f
		}
		if x>>56 != 0 {
			return 0, ErrFieldTooLong
		}
		x = x<<8 | uint64(c)
	}
	if x>>63 != 0 {
		return 0, ErrFieldTooLong
	}
	if inv == 0xff {
		return ^int64(x), nil
	}
	return int64(x), nil
}

func parseOctal(b []byte) (int64, error) {
	// trim trailing NULs/spaces and leading spaces
	for len(b) > 0 && (b[len(b)-1] == 0 || b[len(b)-1] == ' ') {
		b = b[:len(b)-1]
	}
	for len(b) > 0 && b[0] == ' ' {
		b = b[1:]
	}
	if len(b) == 0 {
		return 0, nil
	}
	var n int64
	for _, c := range b {
		if c == 0 {
			break
		}
		if c < '0' || c > '7' {
			return 0, errors.Newf("tar: invalid octal digit %q", c)
		}
		if n > (1<<63-1)/8 {
			return 0, ErrFieldTooLong
		}
		n = n<<3 | int64(c-'0')
	}
	return n, nil
}

// cstr reads a NUL-terminated (or fully-occupied) ASCII string field.
func cstr(b []byte) string {
	if i := indexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}
