// Package prompts builds the instructions sent to the language model for
// each extraction variant.
package prompts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/homelibrary/bookworm/internal/biblio"
	"github.com/homelibrary/bookworm/internal/models"
)

// Variant selects which fields are requested and which guidance applies.
type Variant int

const (
	// Catalog extracts the full record from info pages and the back cover.
	Catalog Variant = iota
	// Cover extracts only title and author from the front cover.
	Cover
)

func (v Variant) String() string {
	switch v {
	case Catalog:
		return "catalog"
	case Cover:
		return "cover"
	default:
		return "variant(" + strconv.Itoa(int(v)) + ")"
	}
}

// Fields lists the keys the model must return for the variant.
func (v Variant) Fields() []string {
	if v == Cover {
		return []string{"title", "author"}
	}
	return []string{"title", "author", "publisher", "year", "isbn", "udk", "bbk", "annotation"}
}

// Schema returns the JSON schema a model response is checked against. It
// only rejects shapes the normalizer cannot read; a non-integer year is
// accepted here and zeroed later.
func Schema(v Variant) []byte {
	props := make(map[string]any)
	for _, f := range v.Fields() {
		if f == "year" {
			props[f] = map[string]any{"type": []string{"integer", "number", "string", "null"}}
			continue
		}
		props[f] = map[string]any{"type": []string{"string", "null"}}
	}
	schema := map[string]any{
		"$schema":       "http://json-schema.org/draft-07/schema#",
		"type":          "object",
		"properties":    props,
		"minProperties": 1,
	}
	out, _ := json.Marshal(schema)
	return out
}

// Build returns the prompt for ocrText. The text is embedded verbatim.
func Build(v Variant, ocrText string, hints biblio.Hints) string {
	if v == Cover {
		return buildCover(ocrText, hints)
	}
	return buildCatalog(ocrText, hints)
}

const catalogRules = `You are a library cataloger. Extract bibliographic metadata from the OCR text of a book's
catalog page (library card, GOST-style entry, imprint page) and back cover.
The text may contain recognition errors and may mix Cyrillic and Latin script.

RULES:
1. title: take it from the bibliographic entry line only. Stop at the first colon; never include
   the subtitle, the statement of responsibility after "/" or anything after ". —".
2. title: if the text contains no bibliographic entry line, return "unknown".
3. title: never copy it from copyright notices, legal boilerplate, printing or licensing text.
4. author: "Surname Given" or "Surname I. I." of the primary author. No editors, translators
   or reviewers.
5. publisher: the publisher name from the imprint "Place : Publisher, Year", without the place.
6. year: the four-digit publication year as an integer, 0 if unknown.
7. isbn, udk, bbk: copy them as printed; keep Cyrillic letters in BBK and UDK.
8. annotation: the summary paragraph, if there is one.
9. Any field you cannot find is "unknown". Do not invent values.

EXAMPLES:
Text: "К89 Куваев, О. М. — Территория : роман. — Москва : Азбука, 2020. — 416 с."
Good: {"title": "Территория", "author": "Куваев О", "publisher": "Азбука", "year": 2020}
Bad:  {"title": "Территория : роман"}            (subtitle kept)
Bad:  {"title": "Куваев, О. М. — Территория"}    (author inside the title)
Text: "© ООО «Издательская Группа Азбука-Аттикус», 2020. All rights reserved."
Bad:  {"title": "All rights reserved"}           (copyright text is never a title)`

const coverRules = `You are a library cataloger. Extract the title and the author from the OCR text of a book's
front cover. The text may contain recognition errors and decorative noise.

RULES:
1. title: usually the visually largest text block on the cover. It never contains the author's
   name. Drop series names, publisher logos and taglines.
2. author: the person's name printed on the cover, as "Surname Given" when possible.
3. Any field you cannot find is "unknown". Do not invent values.

EXAMPLES:
Text: "ОЛЕГ КУВАЕВ\nТЕРРИТОРИЯ\nроман"
Good: {"title": "Территория", "author": "Куваев Олег"}
Bad:  {"title": "Олег Куваев Территория"}        (author inside the title)`

func buildCatalog(ocrText string, h biblio.Hints) string {
	var b strings.Builder
	b.WriteString(catalogRules)
	b.WriteString("\n\n")
	writeHints(&b, [][2]string{
		{"author", h.Author},
		{"title", h.Title},
		{"publisher", h.Publisher},
		{"year", yearHint(h.Year)},
		{"isbn", h.ISBN},
		{"udk", h.UDK},
		{"bbk", h.BBK},
	})
	writeSchema(&b, Catalog)
	if h.Entry != "" {
		fmt.Fprintf(&b, "CATALOG ENTRY CANDIDATE:\n%s\n\n", h.Entry)
	}
	fmt.Fprintf(&b, "OCR TEXT:\n%s\n\nReturn ONLY the JSON object:", ocrText)
	return b.String()
}

func buildCover(ocrText string, h biblio.Hints) string {
	var b strings.Builder
	b.WriteString(coverRules)
	b.WriteString("\n\n")
	writeHints(&b, [][2]string{
		{"author", h.Author},
		{"title", h.Title},
	})
	writeSchema(&b, Cover)
	fmt.Fprintf(&b, "OCR TEXT:\n%s\n\nReturn ONLY the JSON object:", ocrText)
	return b.String()
}

func writeHints(b *strings.Builder, hints [][2]string) {
	b.WriteString("HINTS (found by pattern matching; use them only when the text itself is ambiguous, never to override clear evidence in the text):\n")
	for _, h := range hints {
		v := h[1]
		if v == "" {
			v = models.Unknown
		}
		fmt.Fprintf(b, "%s = %q\n", h[0], v)
	}
	b.WriteString("\n")
}

func writeSchema(b *strings.Builder, v Variant) {
	b.WriteString("JSON SCHEMA:\n{\n")
	fields := v.Fields()
	for i, f := range fields {
		value := `"..."`
		if f == "year" {
			value = "0"
		}
		sep := ","
		if i == len(fields)-1 {
			sep = ""
		}
		fmt.Fprintf(b, "  %q: %s%s\n", f, value, sep)
	}
	b.WriteString("}\n\n")
}

func yearHint(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}
