// Package textnorm normalises user-entered text (customer and branch names) and
// converts between UTF-8 and the Windows-1250 code page that Czech Excel installs
// still default to.
package textnorm

import (
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Clean trims surrounding whitespace and brings the text to NFC so that
// "Děčín" typed on different keyboards compares and counts the same.
func Clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Fold returns a caseless key for uniqueness checks.
func Fold(s string) string {
	return cases.Fold().String(Clean(s))
}

// EqualFold reports whether a and b are equal after Clean and case folding.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Len counts characters, not bytes.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate cuts s to at most n characters. The second result reports whether anything was cut.
func Truncate(s string, n int) (string, bool) {
	if Len(s) <= n {
		return s, false
	}
	r := []rune(s)
	return string(r[:n]), true
}

// CP1250Writer wraps w so UTF-8 written to it lands as Windows-1250.
// Characters the code page cannot represent are replaced. Close flushes the
// tail of the output; it does not close w.
func CP1250Writer(w io.Writer) io.WriteCloser {
	enc := encoding.ReplaceUnsupported(charmap.Windows1250.NewEncoder())
	return transform.NewWriter(w, enc)
}

// CP1250Reader decodes Windows-1250 input into UTF-8.
func CP1250Reader(r io.Reader) io.Reader {
	return transform.NewReader(r, charmap.Windows1250.NewDecoder())
}
