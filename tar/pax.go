package tar

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// PAX record keys recognized by the core.
const (
	paxSize     = "size"
	paxUID      = "uid"
	paxGID      = "gid"
	paxPath     = "path"
	paxLinkpath = "linkpath"
	xattrPrefix = "SCHILY.xattr."
)

// parsePAXRecords decodes a buffer of concatenated "LEN key=value\n"
// records into a map, where a later record overrides an earlier one with
// the same key, matching §4.3's "last record wins" rule.
func parsePAXRecords(buf []byte) (map[string]string, error) {
	records := make(map[string]string)
	for len(buf) > 0 {
		key, value, rest, err := parsePAXRecord(buf)
		if err != nil {
			return nil, err
		}
		records[key] = value
		buf = rest
	}
	return records, nil
}

// parsePAXRecord parses a single "LEN key=value\n" record from the front of
// buf and returns the remainder.
func parsePAXRecord(buf []byte) (key, value string, rest []byte, err error) {
	sp := indexByte(buf, ' ')
	if sp < 0 {
		return "", "", nil, errors.New("tar: malformed pax record: missing length")
	}
	n, err := strconv.ParseInt(string(buf[:sp]), 10, 64)
	if err != nil || n < 0 || n > int64(len(buf)) {
		return "", "", nil, errors.New("tar: malformed pax record: invalid length")
	}
	// LEN must be at least: its own decimal digits + space + '=' + newline.
	if n < int64(sp)+3 {
		return "", "", nil, errors.New("tar: malformed pax record: length too small")
	}

	record := buf[:n]
	rest = buf[n:]

	kv := record[sp+1:]
	if len(kv) == 0 || kv[len(kv)-1] != '\n' {
		return "", "", nil, errors.New("tar: malformed pax record: missing trailing newline")
	}
	kv = kv[:len(kv)-1]

	eq := indexByte(kv, '=')
	if eq < 0 {
		return "", "", nil, errors.New("tar: malformed pax record: missing '='")
	}
	return string(kv[:eq]), string(kv[eq+1:]), rest, nil
}

// paxLookup returns the value for key in records, and whether it was
// present at all.
func paxLookup(records map[string]string, key string) (string, bool) {
	v, ok := records[key]
	return v, ok
}

// paxXattrs extracts the SCHILY.xattr.* records as a plain name -> value
// map, stripping the prefix.
func paxXattrs(records map[string]string) map[string]string {
	var out map[string]string
	for k, v := range records {
		if name, ok := strings.CutPrefix(k, xattrPrefix); ok {
			if out == nil {
				out = make(map[string]string)
			}
			out[name] = v
		}
	}
	return out
}
