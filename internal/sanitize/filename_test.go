package sanitize_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hbomb79/Cadence/internal/sanitize"
	"github.com/labstack/gommon/random"
	"github.com/stretchr/testify/assert"
)

const forbidden = "<>:\"/\\|?*"

func Test_Filename(t *testing.T) {
	tests := []struct {
		summary  string
		input    string
		expected string
	}{
		{"plain", "DJ X - Song", "DJ X - Song"},
		{"illegal punctuation", "DJ X - Song!?", "DJ X - Song!_"},
		{"all forbidden", forbidden, "_________"},
		{"control characters", "a\x00b\x1fc\td", "a_b_c_d"},
		{"dot runs", "a...b..c.d", "a.b.c.d"},
		{"only dots", "....", "."},
		{"surrounding whitespace", "   name  ", "name"},
		{"path traversal", "../../etc/passwd", "._._etc_passwd"},
		{"empty", "", ""},
		{"unicode kept", "Björk - Jóga", "Björk - Jóga"},
		{"header injection", "a\r\nContent-Type: x", "a__Content-Type_ x"},
	}

	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitize.Filename(tt.input))
		})
	}
}

func Test_Filename_Truncates(t *testing.T) {
	long := strings.Repeat("é", sanitize.MaxFilenameLength+50)
	out := sanitize.Filename(long)
	assert.Equal(t, sanitize.MaxFilenameLength, utf8.RuneCountInString(out))
	assert.True(t, utf8.ValidString(out))

	// Whitespace sitting on the truncation boundary is trimmed.
	boundary := strings.Repeat("a", sanitize.MaxFilenameLength-1) + " b"
	assert.Equal(t, strings.Repeat("a", sanitize.MaxFilenameLength-1), sanitize.Filename(boundary))
}

// Property checks over random input: the sanitizer is total, bounded,
// free of forbidden characters and idempotent.
func Test_Filename_Properties(t *testing.T) {
	charset := forbidden + ". \t\x00\x01\x1fabcXYZ019-_é日"
	inputs := []string{"\xff\xfe invalid utf8", strings.Repeat(" .", 300)}
	for i := 0; i < 500; i++ {
		inputs = append(inputs, random.String(uint8(i%255), charset))
	}

	for _, in := range inputs {
		out := sanitize.Filename(in)

		assert.LessOrEqual(t, utf8.RuneCountInString(out), sanitize.MaxFilenameLength)
		assert.Falsef(t, strings.ContainsAny(out, forbidden), "output %q contains forbidden characters", out)
		for _, r := range out {
			assert.Greaterf(t, r, rune(0x1f), "output %q contains a control character", out)
		}
		assert.NotContains(t, out, "..")
		assert.Equal(t, strings.TrimSpace(out), out)
		assert.Equalf(t, out, sanitize.Filename(out), "Filename is not idempotent for %q", in)
	}
}
