// Package normalize turns a draft record, from the model or from the hints,
// into the validated record returned to callers.
package normalize

import (
	"math"
	"regexp"
	"strings"

	"github.com/homelibrary/bookworm/internal/biblio"
	"github.com/homelibrary/bookworm/internal/models"
	"github.com/homelibrary/bookworm/internal/textnorm"
)

var garbageKeywords = []string{"copyright", "trademark", "reserved", "indicia", "rights reserved"}

var (
	titleShelfCodeRe = regexp.MustCompile(`^[А-ЯЁA-Z][ \t]?\d{1,4}\s+`)
	// "Куваев, Олег. — Территория"
	embeddedAuthorRe = regexp.MustCompile(`^([А-ЯЁ][а-яё]+),\s*([А-ЯЁ][а-яё]+)\.\s*[—–-]\s*(.+)`)
	sentenceRe       = regexp.MustCompile(`[^.!?]*[.!?]+`)
)

// FromModel reads the fields of a decoded model response. Strings equal to
// "unknown" and values of the wrong type are treated as absent; the year
// survives only as a non-negative whole number.
func FromModel(obj map[string]any) models.Record {
	return models.Record{
		Title:      stringField(obj, "title"),
		Author:     stringField(obj, "author"),
		Publisher:  stringField(obj, "publisher"),
		Year:       yearField(obj, "year"),
		ISBN:       stringField(obj, "isbn"),
		UDK:        stringField(obj, "udk"),
		BBK:        stringField(obj, "bbk"),
		Annotation: stringField(obj, "annotation"),
	}
}

// FromHints builds the draft used when the model gave nothing usable.
func FromHints(h biblio.Hints) models.Record {
	return models.Record{
		Title:     h.Title,
		Author:    h.Author,
		Publisher: h.Publisher,
		Year:      h.Year,
		ISBN:      h.ISBN,
		UDK:       h.UDK,
		BBK:       h.BBK,
	}
}

// Record validates a draft. Missing ISBN, UDK and BBK values are taken from
// the hints. RawOCR passes through untouched.
func Record(r models.Record, h biblio.Hints) models.Record {
	if IsGarbageTitle(r.Title) {
		r.Title = ""
	}
	// The author form "Surname, Given. — Title" shares its separator with the
	// imprint tail, so it is taken off before CleanTitle cuts at ". —".
	r.Title = titleShelfCodeRe.ReplaceAllString(textnorm.Collapse(r.Title), "")
	r.Title, r.Author = splitEmbeddedAuthor(r.Title, r.Author)
	r.Title = CleanTitle(r.Title)

	r.Title = textnorm.Modernize(textnorm.Collapse(r.Title))
	r.Author = textnorm.Modernize(textnorm.Collapse(r.Author))
	r.Publisher = textnorm.Modernize(textnorm.Collapse(r.Publisher))
	r.ISBN = textnorm.Collapse(r.ISBN)
	r.UDK = textnorm.Collapse(r.UDK)
	r.BBK = textnorm.Collapse(r.BBK)

	if r.Year < 0 {
		r.Year = 0
	}
	if r.ISBN == "" {
		r.ISBN = h.ISBN
	}
	if r.UDK == "" {
		r.UDK = h.UDK
	}
	if r.BBK == "" {
		r.BBK = h.BBK
	}

	r.UDK = textnorm.Classification(r.UDK)
	r.BBK = textnorm.Classification(r.BBK)
	r.ISBN = biblio.NormalizeISBN(r.ISBN)
	r.Annotation = CleanAnnotation(r.Annotation)
	return r
}

// IsGarbageTitle reports whether a title was taken from copyright or legal
// boilerplate.
func IsGarbageTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range garbageKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// CleanTitle removes what does not belong to the title proper: a leading
// shelf code, the statement of responsibility after " / ", the imprint after
// ". —" and a subtitle after the first colon.
func CleanTitle(title string) string {
	title = textnorm.Collapse(title)
	title = titleShelfCodeRe.ReplaceAllString(title, "")
	if i := strings.Index(title, " / "); i >= 0 {
		title = title[:i]
	}
	if i := strings.Index(title, ". —"); i >= 0 {
		title = title[:i]
	}
	if i := strings.Index(title, ":"); i >= 0 {
		title = title[:i]
	}
	return strings.TrimSpace(title)
}

func splitEmbeddedAuthor(title, author string) (string, string) {
	m := embeddedAuthorRe.FindStringSubmatch(title)
	if m == nil {
		return title, author
	}
	return strings.TrimSpace(m[3]), m[1] + " " + m[2]
}

// CleanAnnotation collapses whitespace and drops sentences that repeat an
// earlier one. Text after the last sentence end is kept as a final sentence.
func CleanAnnotation(text string) string {
	text = textnorm.Collapse(text)
	if text == "" {
		return ""
	}

	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	rest := text
	for _, loc := range sentenceRe.FindAllStringIndex(text, -1) {
		add(text[loc[0]:loc[1]])
		rest = text[loc[1]:]
	}
	add(rest)
	return strings.Join(out, " ")
}

func stringField(obj map[string]any, key string) string {
	s, ok := obj[key].(string)
	if !ok {
		return ""
	}
	return models.FromWire(s)
}

func yearField(obj map[string]any, key string) int {
	f, ok := obj[key].(float64)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}
