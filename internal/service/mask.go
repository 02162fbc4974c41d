package service

import "strings"

const (
	maskRune        = "•"
	maskVisibleRune = 4
	maskMaxMiddle   = 20
)

// PlaceholderMask is shown for secrets shorter than 8 characters and for a
// stored key that has not been decrypted yet.
var PlaceholderMask = strings.Repeat(maskRune, 8)

// Mask returns a display form of plaintext that keeps its first and last four
// characters. Short secrets map to [PlaceholderMask] so that their length is
// not revealed. Lengths are counted in runes.
func Mask(plaintext string) string {
	runes := []rune(plaintext)
	n := len(runes)
	if n < 2*maskVisibleRune {
		return PlaceholderMask
	}

	middle := min(n-2*maskVisibleRune, maskMaxMiddle)

	var b strings.Builder
	b.Grow(2*maskVisibleRune + middle*len(maskRune))
	b.WriteString(string(runes[:maskVisibleRune]))
	b.WriteString(strings.Repeat(maskRune, middle))
	b.WriteString(string(runes[n-maskVisibleRune:]))
	return b.String()
}
