// Package biblio holds the deterministic extractors that pull bibliographic
// fields out of recognized page text, the citation parsers that recognize a
// whole catalog entry at once, and the hint aggregator that combines them.
//
// Every extractor is a pure function that reports "no signal" with an empty
// string (or 0 for the year); none of them fail.
package biblio

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/homelibrary/bookworm/internal/textnorm"
)

// Citation is a complete bibliographic entry recognized as one syntactic unit.
// Author may be empty; the other fields are always set.
type Citation struct {
	Author    string
	Title     string
	Publisher string
	Year      int
}

// ShelfCode [Author. —] Title. — Place : Publisher, Year[. — Pages.]
// On cards the author often sits on its own line with no dash after it.
var gostRe = regexp.MustCompile(`(?s)(?:^|\n)[ \t]*[А-ЯЁA-Z][ \t]?\d{1,4}\s+` +
	`(?:([А-ЯЁA-Z][а-яёa-z]+(?:-[А-ЯЁA-Z][а-яёa-z]+)?,\s*[А-ЯЁA-Z][а-яёa-z]*)\.?(?:\s*[А-ЯЁA-Z][а-яёa-z]*\.)*(?:\s*(?:—|–|-)\s*|[ \t]*\n\s*))?` +
	`(.+?)\s*\.\s*(?:—|–|-)\s*` +
	`[А-ЯЁA-Z][^:\n]{0,40}?\s*:\s*` +
	`([^,\n]+?)\s*,\s*` +
	`((?:1[5-9]|20)\d{2})`)

// Title / Author. - Place : Publisher, Year.
var englishSlashRe = regexp.MustCompile(`(?m)([A-Z][^/\n]*?)\s+/\s+([^\n]+?)\.\s*(?:—|–|-)\s*` +
	`[A-Z][A-Za-z'-]*(?:[ -][A-Z][A-Za-z'-]*)*\s*:\s*([^,\n]+?)\s*,\s*((?:1[5-9]|20)\d{2})`)

// Author. Title. Place: Publisher, Year.
var englishPlainRe = regexp.MustCompile(`(?m)^[ \t]*([A-Z][A-Za-z'-]+,?(?:\s+[A-Z]\.){1,3}|[A-Z][A-Za-z'-]+,\s+[A-Z][A-Za-z'-]+\.)` +
	`\s+([A-Z][^\n]*?)\.\s+[A-Z][A-Za-z'-]*(?:[ -][A-Z][A-Za-z'-]*)*\s*:\s*([^,\n]+?)\s*,\s*((?:1[5-9]|20)\d{2})`)

var leadingShelfCodeRe = regexp.MustCompile(`^[А-ЯЁA-Z][ \t]?\d{1,4}\s+`)

// ParseCitation tries the GOST parser and then the English parser.
func ParseCitation(text string) *Citation {
	if c := ParseGOST(text); c != nil {
		return c
	}
	return ParseEnglish(text)
}

// "А. С. Пушкин" or "Пушкин А. С." after the slash of a card without a
// heading. Statements like "сост. И. Петров" start lower case and do not match.
var (
	slashInitialsFirstRe = regexp.MustCompile(`^((?:[А-ЯЁA-Z]\.[ \t]?){1,3})[ \t]*([А-ЯЁA-Z][а-яёa-z]+(?:-[А-ЯЁA-Z][а-яёa-z]+)?)$`)
	slashSurnameFirstRe  = regexp.MustCompile(`^[А-ЯЁA-Z][а-яёa-z]+(?:-[А-ЯЁA-Z][а-яёa-z]+)?(?:[ \t]+[А-ЯЁA-Z]\.){0,2}[ \t]+[А-ЯЁA-Z]$`)
)

// ParseGOST recognizes a Russian catalog card entry. Line breaks inside the
// entry are tolerated. The title loses any subtitle introduced by a colon or
// slash, and the author is reduced to "Surname Given". Without a heading the
// author is taken from the statement after " / ".
func ParseGOST(text string) *Citation {
	m := gostRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	title := stripSubtitle(m[2])
	if title == "" {
		return nil
	}
	author := NormalizeCommaAuthor(textnorm.Collapse(m[1]))
	if author == "" {
		author = slashAuthor(m[2])
	}
	year, _ := strconv.Atoi(m[4])
	return &Citation{
		Author:    author,
		Title:     title,
		Publisher: cleanPublisher(m[3]),
		Year:      year,
	}
}

// slashAuthor returns the personal name after the first " / " of a title
// statement, surname first, or "".
func slashAuthor(statement string) string {
	i := strings.Index(statement, "/")
	if i < 0 {
		return ""
	}
	name := trimPunct(textnorm.Collapse(statement[i+1:]))
	if j := strings.IndexAny(name, ";,"); j >= 0 {
		name = trimPunct(name[:j])
	}
	if m := slashInitialsFirstRe.FindStringSubmatch(name); m != nil {
		return m[2] + " " + strings.TrimSpace(m[1])
	}
	// The closing dot of the last initial went with the entry's ". —".
	if slashSurnameFirstRe.MatchString(name) {
		return name + "."
	}
	return ""
}

// ParseEnglish recognizes "Author. Title. Place: Publisher, Year." and
// "Title / Author. - Place : Publisher, Year.". When both shapes are present
// the one that starts earlier in the text wins.
func ParseEnglish(text string) *Citation {
	slash := englishSlashRe.FindStringSubmatchIndex(text)
	plain := englishPlainRe.FindStringSubmatchIndex(text)

	switch {
	case slash == nil && plain == nil:
		return nil
	case plain == nil || (slash != nil && slash[0] <= plain[0]):
		title := leadingShelfCodeRe.ReplaceAllString(submatch(text, slash, 1), "")
		return englishCitation(submatch(text, slash, 2), title, submatch(text, slash, 3), submatch(text, slash, 4))
	default:
		return englishCitation(submatch(text, plain, 1), submatch(text, plain, 2), submatch(text, plain, 3), submatch(text, plain, 4))
	}
}

func englishCitation(author, title, publisher, year string) *Citation {
	title = stripSubtitle(title)
	if title == "" {
		return nil
	}
	y, _ := strconv.Atoi(year)
	author = NormalizeCommaAuthor(author)
	// "Rowling, Joanne." loses the sentence dot; initials keep theirs.
	if fields := strings.Fields(author); len(fields) > 0 && len([]rune(fields[len(fields)-1])) > 2 {
		author = strings.TrimSuffix(author, ".")
	}
	return &Citation{
		Author:    author,
		Title:     title,
		Publisher: cleanPublisher(publisher),
		Year:      y,
	}
}

func submatch(text string, loc []int, n int) string {
	if loc[2*n] < 0 {
		return ""
	}
	return text[loc[2*n]:loc[2*n+1]]
}

// NormalizeCommaAuthor turns "Surname, Given [Patronymic], ..." into
// "Surname Given".
// Names without a comma are returned collapsed but otherwise unchanged.
func NormalizeCommaAuthor(author string) string {
	author = textnorm.Collapse(author)
	if !strings.Contains(author, ",") {
		return author
	}
	parts := strings.Split(author, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	given := strings.Fields(parts[1])
	if len(given) == 0 {
		return parts[0]
	}
	return parts[0] + " " + given[0]
}

// stripSubtitle keeps the part of a title before the first colon or slash.
func stripSubtitle(title string) string {
	title = textnorm.Collapse(title)
	if i := strings.IndexAny(title, ":/"); i >= 0 {
		title = title[:i]
	}
	return trimPunct(title)
}

func cleanPublisher(p string) string {
	return trimPunct(textnorm.Collapse(p))
}

func trimPunct(s string) string {
	return strings.Trim(strings.TrimSpace(s), " .,;:/-—–")
}
