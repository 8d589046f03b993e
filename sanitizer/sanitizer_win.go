//go:build windows
// +build windows

package sanitizer

import (
	"path/filepath"
	"strings"
)

var replacer = strings.NewReplacer(`:`, `\`, `/`, `\`, `?`, `\`)

// Superscript digits count as a port number suffix too: "COM\u00B9" is
// reserved exactly like "COM1". See https://www.compart.com/en/unicode/U+00B9
// (and U+00B2, U+00B3).
const (
	superscriptOne   = "\u00B9"
	superscriptTwo   = "\u00B2"
	superscriptThree = "\u00B3"
)

var bareReservedPrefixes = map[string]bool{
	"PRN": true,
	"AUX": true,
	"NUL": true,
}

// isReservedName reports if name is a Windows reserved device name or a
// console handle, ignoring any trailing whitespace. It does not detect
// names with an extension, which are also reserved on some Windows
// versions. See https://docs.microsoft.com/en-us/windows/desktop/fileio/naming-a-file
// (search for PRN) for the full rule set this implements.
func isReservedName(name string) bool {
	if len(name) < 3 {
		return false
	}

	var reservedLen int
	switch prefix := strings.ToUpper(name[:3]); {
	case prefix == "CON":
		reservedLen = consoleHandleLen(name)
	case bareReservedPrefixes[prefix]:
		reservedLen = 3
	case prefix == "COM" || prefix == "LPT":
		reservedLen = portNumberLen(name)
	}

	return reservedLen != 0 && strings.TrimSpace(name[reservedLen:]) == ""
}

// consoleHandleLen returns how much of name is consumed by CON, CONIN$, or
// CONOUT$. Passing any of the three to CreateFile opens a console handle;
// https://learn.microsoft.com/en-us/windows/win32/api/fileapi/nf-fileapi-createfilea#consoles
// documents CONIN$/CONOUT$ but they behave like CON for naming purposes.
func consoleHandleLen(name string) int {
	switch {
	case len(name) >= 7 && name[6] == '$' && strings.EqualFold(name[3:7], "OUT$"):
		return 7
	case len(name) >= 6 && name[5] == '$' && strings.EqualFold(name[3:6], "IN$"):
		return 6
	default:
		return 3
	}
}

// portNumberLen returns how much of name (already known to start with COM or
// LPT) is consumed by a trailing ASCII digit 1-9 or Unicode superscript
// digit; both forms are reserved.
func portNumberLen(name string) int {
	if len(name) < 4 {
		return 0
	}
	switch name[3] {
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return 4
	case superscriptOne[0]:
		if len(name) >= 5 {
			switch name[4] {
			case superscriptOne[1], superscriptTwo[1], superscriptThree[1]:
				return 5
			}
		}
	}
	return 0
}

func sanitizePath(original string) string {
	// we get rid of : (ADS or drive letter specifier)
	in := replacer.Replace(original)

	// note: we do clean(trim(clean())) so even weird syntax like \\.\C:\something is sanitized safely
	tmp := filepath.Clean(strings.TrimLeft(filepath.Clean(winPathSeparator+in), winPathSeparator))

	sb := strings.Builder{}

	// time to deal with reserved path components (e.g. LPT1), if any
	// at this point, the path separators in tmp are already normalized (\)
	first := true
	for p := tmp; p != ""; {
		var part string
		part, p, _ = strings.Cut(p, winPathSeparator)
		// Trim the extension and look for a reserved name.
		base, ext, _ := strings.Cut(part, ".")
		if first {
			first = false
		} else {
			sb.WriteString(winPathSeparator)
		}
		sb.WriteString(base)
		if isReservedName(base) {
			sb.WriteString("-safe")
		}
		if ext != "" {
			sb.WriteString(".")
			sb.WriteString(ext)
		}
	}

	out := sb.String()
	if len(original) > 0 &&
		(original[len(original)-1] == nixPathSeparator[0] || original[len(original)-1] == winPathSeparator[0]) &&
		out != "" && !strings.HasSuffix(out, winPathSeparator) {
		out += winPathSeparator
	}
	return out
}
