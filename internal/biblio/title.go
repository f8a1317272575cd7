package biblio

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/homelibrary/bookworm/internal/textnorm"
)

var (
	// "К89 Куваев, О. М. — Территория" keeps "Территория".
	catalogTitleRe = regexp.MustCompile(`(?m)^[ \t]*[А-ЯЁA-Z][ \t]?\d{1,4}[ \t]+` +
		`(?:[А-ЯЁA-Z][а-яёa-z]+,[ \t]*(?:[А-ЯЁA-Z][а-яёa-z]*\.?[ \t]*)+(?:—|–)[ \t]*)?([^—–\n]+)`)
	// "Москва : Азбука, 2020"
	imprintRe = regexp.MustCompile(`([А-ЯЁA-Z][А-ЯЁа-яёA-Za-z\-]*\.?(?:[ -][А-ЯЁA-Z][а-яёa-z\-]*\.?)?)[ \t]*:[ \t]*` +
		`([^,:;\n]{2,60}?)[ \t]*,[ \t]*((?:1[5-9]|20)\d{2})`)
	shelfCodePrefixRe = regexp.MustCompile(`^[А-ЯЁA-Z][ \t]?\d{1,4}(?:[ \t]+|$)`)
)

// ExtractTitle returns the title of the catalog entry in text, or "".
func ExtractTitle(text string) string {
	return extractTitle(text, ParseCitation(text))
}

func extractTitle(text string, c *Citation) string {
	if c != nil {
		return c.Title
	}
	m := catalogTitleRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	title := stripSubtitle(m[1])
	if len([]rune(title)) <= 3 {
		return ""
	}
	return title
}

// ExtractPublisher returns the publisher named in the imprint, or "".
func ExtractPublisher(text string) string {
	return extractPublisher(text, ParseCitation(text))
}

func extractPublisher(text string, c *Citation) string {
	if c != nil {
		return c.Publisher
	}
	if m := imprintRe.FindStringSubmatch(text); m != nil {
		return cleanPublisher(m[2])
	}
	return ""
}

// ExtractYear returns the publication year from the imprint, or 0.
func ExtractYear(text string) int {
	return extractYear(text, ParseCitation(text))
}

func extractYear(text string, c *Citation) int {
	if c != nil {
		return c.Year
	}
	if m := imprintRe.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[3])
		return y
	}
	return 0
}

// CoverTitle guesses the title on a cover: the longest line of more than five
// characters that is not a personal name.
func CoverTitle(text string) string {
	best := ""
	for _, line := range textnorm.Lines(text) {
		line = trimPunct(shelfCodePrefixRe.ReplaceAllString(line, ""))
		if len([]rune(line)) <= 5 || looksLikeAuthor(line) || isbnRe.MatchString(line) {
			continue
		}
		if len([]rune(line)) > len([]rune(best)) {
			best = line
		}
	}
	return strings.TrimSpace(best)
}
