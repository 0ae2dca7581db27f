package alpha

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// extendedChars maps the Nordic letters the sign font carries to their
// two-byte extended character sequences.
var extendedChars = map[rune]string{
	'ä': "\x08\x24",
	'Ä': "\x08\x2E",
	'ö': "\x08\x34",
	'Ö': "\x08\x39",
	'å': "\x08\x26",
	'Å': "\x08\x2F",
}

// unsupportedChar replaces any non-ASCII rune the sign cannot render.
const unsupportedChar = '_'

// EscapeText rewrites text into the sign's character set.
//
// Input is NFC-normalised first so that decomposed sequences such as
// "a" + U+0308 are treated as "ä". Supported extended letters become
// their 0x08-prefixed sequences; every other non-ASCII rune becomes '_'.
// ASCII is copied unchanged, including tag markup, so EscapeText must run
// before tag encoding.
func EscapeText(text string) string {
	text = norm.NFC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		if seq, ok := extendedChars[r]; ok {
			b.WriteString(seq)
			continue
		}
		b.WriteByte(unsupportedChar)
	}
	return b.String()
}
