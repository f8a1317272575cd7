package biblio

import "github.com/homelibrary/bookworm/internal/textnorm"

// Hints is the output of every deterministic extractor over one text. Empty
// strings and a zero Year mean the extractor found nothing.
type Hints struct {
	Author    string
	ISBN      string
	UDK       string
	BBK       string
	Title     string
	Publisher string
	Year      int
	// Entry is the block most likely to be the catalog entry, if any.
	Entry string
}

// Collect runs all extractors over catalog-page text. The ISBN is looked up in
// isbnText first, which is the same pages recognized for Latin script, and in
// text after that.
func Collect(text, isbnText string) Hints {
	c := ParseCitation(text)
	isbn := ExtractISBN(isbnText)
	if isbn == "" {
		isbn = ExtractISBN(text)
	}
	return Hints{
		Author:    extractAuthor(text, c),
		ISBN:      isbn,
		UDK:       ExtractUDK(text),
		BBK:       ExtractBBK(text),
		Title:     extractTitle(text, c),
		Publisher: extractPublisher(text, c),
		Year:      extractYear(text, c),
		Entry:     PrimaryBlock(text),
	}
}

// CollectCover gathers the title and author hints a cover can carry.
func CollectCover(text string) Hints {
	c := ParseCitation(text)
	title := extractTitle(text, c)
	if title == "" {
		title = CoverTitle(text)
	}
	author := extractAuthor(text, c)
	if author == "" {
		author = nameLine(text)
	}
	return Hints{
		Author: author,
		Title:  title,
	}
}

// nameLine returns the first line that consists of a personal name only.
func nameLine(text string) string {
	for _, line := range textnorm.Lines(text) {
		if looksLikeAuthor(line) {
			return NormalizeCommaAuthor(line)
		}
	}
	return ""
}

// Empty reports whether no extractor produced anything.
func (h Hints) Empty() bool {
	return h == Hints{}
}
