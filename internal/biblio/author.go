package biblio

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/homelibrary/bookworm/internal/textnorm"
)

// authorRule is one step of the author cascade. It reports whether it found a
// candidate; the first rule that does wins.
type authorRule func(text string) (string, bool)

const (
	surname  = `[А-ЯЁA-Z][а-яёa-z]+(?:-[А-ЯЁA-Z][а-яёa-z]+)?`
	initials = `[А-ЯЁA-Z]\.[ \t]?[А-ЯЁA-Z]\.`
)

var (
	// "Куваев О. М." directly above or before the shelf code "К89".
	authorBeforeShelfRe = regexp.MustCompile(`(?:^|[^\p{L}])(` + surname + `[ \t]+` + initials + `)[ \t]*\n?[ \t]*[А-ЯЁA-Z][ \t]?\d{1,4}(?:\s|$)`)
	authorInitialsRe    = regexp.MustCompile(`(?:^|[^\p{L}])(` + surname + `[ \t]+` + initials + `)`)
	authorCommaRe       = regexp.MustCompile(`(?m)^[ \t]*(` + surname + `,[ \t]*[А-ЯЁA-Z][а-яёa-z]+(?:[ \t]+[А-ЯЁA-Z][а-яёa-z]+)?)[ \t]*$`)
	copyrightAuthorRe   = regexp.MustCompile(`(?:©|\([cCсС]\))[ \t]*(` + surname + `[ \t]+` + initials + `)`)
	copyrightInitialsRe = regexp.MustCompile(`(?:©|\([cCсС]\))[ \t]*(` + initials + `)[ \t]*(` + surname + `)`)
)

// Rules after the citation parsers, strongest first.
var authorRules = []authorRule{
	firstGroup(authorBeforeShelfRe),
	firstGroup(authorInitialsRe),
	commaAuthor,
	copyrightAuthor,
}

// ExtractAuthor returns the most trustworthy author name in text, or "".
func ExtractAuthor(text string) string {
	return extractAuthor(text, ParseCitation(text))
}

func extractAuthor(text string, c *Citation) string {
	if c != nil && c.Author != "" {
		return c.Author
	}
	for _, rule := range authorRules {
		if author, ok := rule(text); ok {
			return author
		}
	}
	return ""
}

func firstGroup(re *regexp.Regexp) authorRule {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return textnorm.Collapse(m[1]), true
	}
}

func commaAuthor(text string) (string, bool) {
	m := authorCommaRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return NormalizeCommaAuthor(m[1]), true
}

func copyrightAuthor(text string) (string, bool) {
	if m := copyrightAuthorRe.FindStringSubmatch(text); m != nil {
		return textnorm.Collapse(m[1]), true
	}
	if m := copyrightInitialsRe.FindStringSubmatch(text); m != nil {
		return textnorm.Collapse(m[2] + " " + m[1]), true
	}
	return "", false
}

// looksLikeAuthor reports whether a whole line is just a personal name.
// Covers often set the name in capitals, so the line is also tried with each
// word capitalized.
func looksLikeAuthor(line string) bool {
	line = strings.TrimSpace(line)
	for _, candidate := range []string{line, capitalizeWords(line)} {
		for _, re := range []*regexp.Regexp{authorLineRe, authorCommaRe} {
			if re.MatchString(candidate) {
				return true
			}
		}
	}
	return false
}

// capitalizeWords lowercases every word but its first letter.
func capitalizeWords(line string) string {
	words := strings.Fields(line)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

var authorLineRe = regexp.MustCompile(`^(?:` + surname + `[ \t]+` + initials + `|` + initials + `[ \t]*` + surname + `|[А-ЯЁA-Z][а-яёa-z]+[ \t]+` + surname + `)$`)
