// Package textnorm canonicalizes recognized text: whitespace, pre-reform
// Cyrillic orthography and library classification codes.
package textnorm

import (
	"strings"
	"unicode"
)

// legacyLetters maps pre-reform Cyrillic letters to their modern equivalents.
var legacyLetters = map[rune]rune{
	'ѣ': 'е', 'Ѣ': 'Е', // yat
	'і': 'и', 'І': 'И', // i-decimal
	'ѵ': 'и', 'Ѵ': 'И', // izhitsa
	'ѳ': 'ф', 'Ѳ': 'Ф', // fita
}

// Collapse joins all whitespace runs (including line breaks) into single
// spaces and trims the ends.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Compact removes every whitespace character.
func Compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// Classification normalizes a UDK or BBK code. Codes never keep internal spaces.
func Classification(code string) string {
	return Compact(code)
}

// Modernize rewrites pre-reform orthography: yat, i-decimal, izhitsa and fita
// are replaced, and a hard sign closing a word is dropped.
func Modernize(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range runes {
		if m, ok := legacyLetters[r]; ok {
			b.WriteRune(m)
			continue
		}
		if (r == 'ъ' || r == 'Ъ') && i > 0 && unicode.IsLetter(runes[i-1]) &&
			(i == len(runes)-1 || !unicode.IsLetter(runes[i+1])) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Lines splits text into trimmed, non-empty lines.
func Lines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
