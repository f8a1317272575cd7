package biblio

import (
	"regexp"
	"strings"
)

// The capture stops at "(", ";" and "," because none of them is allowed.
var isbnRe = regexp.MustCompile(`(?i)ISBN(?:-1[03])?[ \t]*:?[ \t]*([0-9X\-–—−‐ \t]+)`)

// ExtractISBN finds the first well-formed ISBN after an "ISBN" marker and
// returns it as 10 or 13 characters without separators, or "".
func ExtractISBN(text string) string {
	for _, m := range isbnRe.FindAllStringSubmatch(text, -1) {
		if isbn := pickISBN(m[1]); isbn != "" {
			return isbn
		}
	}
	return ""
}

// pickISBN reads space separated groups until their characters add up to a
// valid length, so a trailing page count is not glued on. Ten characters
// starting with 978 or 979 may be the head of an ISBN-13, so later groups are
// tried first; if they do not complete one, the ten characters stand.
func pickISBN(raw string) string {
	var acc strings.Builder
	pending := ""
	for _, g := range strings.Fields(raw) {
		acc.WriteString(g)
		digits := isbnChars(acc.String())
		if len(digits) > 13 {
			break
		}
		if len(digits) == 10 && (strings.HasPrefix(digits, "978") || strings.HasPrefix(digits, "979")) {
			pending = NormalizeISBN(digits)
			continue
		}
		if v := NormalizeISBN(digits); v != "" {
			return v
		}
	}
	return pending
}

// NormalizeISBN truncates value at the first "(", ";" or ",", keeps only
// digits and X, and returns the result if it has the shape of an ISBN-10 or
// ISBN-13. Checksums are not verified.
func NormalizeISBN(value string) string {
	if i := strings.IndexAny(value, "(;,"); i >= 0 {
		value = value[:i]
	}
	v := isbnChars(value)
	switch len(v) {
	case 10:
		if strings.IndexByte(v[:9], 'X') >= 0 {
			return ""
		}
		return v
	case 13:
		if strings.IndexByte(v, 'X') >= 0 {
			return ""
		}
		return v
	}
	return ""
}

func isbnChars(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteByte('X')
		}
	}
	return b.String()
}
