package util

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

func normalizeHex(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// DecodeHex accepts upper or lower case and ignores whitespace.
func DecodeHex(s string) ([]byte, error) {
	return hex.DecodeString(normalizeHex(s))
}

// PrintableText returns b as a string when it is valid UTF-8 without control
// characters other than tab and newline.
func PrintableText(b []byte) (string, bool) {
	if !utf8.Valid(b) {
		return "", false
	}
	for _, r := range string(b) {
		if r < 0x20 && r != '\n' && r != '\t' && r != '\r' || r == 0x7f {
			return "", false
		}
	}
	return string(b), true
}
