//go:build !windows
// +build !windows

package sanitizer

import "testing"

func TestSanitizePathUnix(t *testing.T) {
	type testCase struct {
		input, expected string
	}

	testCases := map[string][]testCase{
		"AbsolutePaths": {
			{"/some/thing", `some/thing`},
			{`/some/thing/`, `some/thing/`},
		},
		// Backslashes are not a separator on unix-like targets: they are
		// preserved verbatim as part of a single path component.
		"BackslashIsLiteral": {
			{`\some\thing`, `\some\thing`},
			{`C:\some\thing`, `C:\some\thing`},
			{`somedir\LPT1`, `somedir\LPT1`},
		},
		"RelativePaths": {
			{`../../some/thing`, `some/thing`},
			{`./some/./thing`, `some/thing`},
		},
		"TrailingSlash": {
			{`some/path/`, `some/path/`},
			{`some/path\`, `some/path\`},
		},
	}

	for testName, tests := range testCases {
		t.Run(testName, func(t *testing.T) {
			for _, tc := range tests {
				sanitized := SanitizePath(tc.input)
				if tc.expected != sanitized {
					t.Errorf("SanitizePath(%q) = %q, want %q", tc.input, sanitized, tc.expected)
				}
			}
		})
	}
}

func TestHasParentRef(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"../rel", true},
		{"foo/../../bar", true},
		{"foo/bar", false},
		{"foo/..bar", false},
		{"..", true},
	}
	for _, tc := range tests {
		if got := HasParentRef(tc.in); got != tc.want {
			t.Errorf("HasParentRef(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestHasNUL(t *testing.T) {
	if !HasNUL("foo\x00bar") {
		t.Error("HasNUL should detect an embedded NUL")
	}
	if HasNUL("foo/bar") {
		t.Error("HasNUL should not flag a clean path")
	}
}
