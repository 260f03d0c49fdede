package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxFilenameLength is the maximum number of characters (runes) that
// Filename will return.
const MaxFilenameLength = 200

var dotRuns = regexp.MustCompile(`\.{2,}`)

// Filename maps an arbitrary string to one that is safe to use as a file
// name on common filesystems and inside a quoted Content-Disposition
// header value:
//   - `< > : " / \ | ? *` and control characters 0x00-0x1F become '_'
//   - runs of '.' collapse to a single '.'
//   - leading and trailing whitespace is removed
//   - the result is truncated to MaxFilenameLength runes
//
// Filename never fails and Filename(Filename(s)) == Filename(s).
func Filename(name string) string {
	name = strings.Map(replaceIllegal, name)
	name = dotRuns.ReplaceAllString(name, ".")
	name = strings.TrimSpace(name)

	if runes := []rune(name); len(runes) > MaxFilenameLength {
		// Truncation may expose whitespace that used to be interior.
		name = strings.TrimRightFunc(string(runes[:MaxFilenameLength]), unicode.IsSpace)
	}

	return name
}

func replaceIllegal(r rune) rune {
	if r <= 0x1f {
		return '_'
	}

	switch r {
	case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
		return '_'
	}

	return r
}
