package biblio

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/homelibrary/bookworm/internal/textnorm"
)

var (
	udkMarkerRe = regexp.MustCompile(`(?:^|[^\p{L}])(?:УДК|UDK|UDC)[ \t]*[:.]?[ \t]*`)
	bbkMarkerRe = regexp.MustCompile(`(?:^|[^\p{L}])(?:ББК|BBK)[ \t]*[:.]?[ \t]*`)
	blankLineRe = regexp.MustCompile(`\n[ \t]*\n|[ \t]{2,}`)
)

// classScheme describes which characters may appear in a code and which may
// open it.
type classScheme struct {
	marker *regexp.Regexp
	first  func(r rune) bool
	body   func(r rune) bool
	// stopAtGap cuts the candidate at a blank line or a run of spaces.
	stopAtGap bool
}

var udkScheme = classScheme{
	marker: udkMarkerRe,
	first:  isDigit,
	body: func(r rune) bool {
		return isDigit(r) || strings.ContainsRune(".:()+=/-'\"[]*", r)
	},
}

var bbkScheme = classScheme{
	marker: bbkMarkerRe,
	first: func(r rune) bool {
		return isDigit(r) || isUpperCyrillic(r)
	},
	body: func(r rune) bool {
		return isDigit(r) || unicode.Is(unicode.Cyrillic, r) || strings.ContainsRune(".:()+=/-", r)
	},
	stopAtGap: true,
}

// ExtractUDK returns the Universal Decimal Classification code, or "".
func ExtractUDK(text string) string {
	return udkScheme.extract(text)
}

// ExtractBBK returns the Library-Bibliographic Classification code, or "".
// A BBK code may open with a Cyrillic letter ("Ч 84").
func ExtractBBK(text string) string {
	return bbkScheme.extract(text)
}

func (s classScheme) extract(text string) string {
	loc := s.marker.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	rest := text[loc[1]:]
	if s.stopAtGap {
		if gap := blankLineRe.FindStringIndex(rest); gap != nil {
			rest = rest[:gap[0]]
		}
	} else if i := strings.Index(rest, "\n\n"); i >= 0 {
		rest = rest[:i]
	}

	var tokens []string
	for i, tok := range strings.Fields(rest) {
		r := []rune(tok)
		if i == 0 && !s.first(r[0]) {
			return ""
		}
		// Later tokens continue the code only when they look like its tail;
		// "84(2Рос=Рус)6-44 К89" stops before the shelf code.
		if i > 0 && !(isDigit(r[0]) || strings.ContainsRune("(.:+=/-", r[0])) {
			break
		}
		n := 0
		for n < len(r) && s.body(r[n]) {
			n++
		}
		if i == 0 && n == 0 {
			return ""
		}
		if n > 0 {
			tokens = append(tokens, string(r[:n]))
		}
		if n < len(r) {
			break
		}
	}
	return strings.TrimRight(textnorm.Collapse(strings.Join(tokens, " ")), ".,;:-")
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isUpperCyrillic(r rune) bool {
	return unicode.Is(unicode.Cyrillic, r) && unicode.IsUpper(r)
}
