package metadata

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/homelibrary/bookworm/internal/eval/dataset"
	"github.com/homelibrary/bookworm/internal/models"
)

// Latin letters OCR confuses with Cyrillic ones.
var latinToCyrillic = strings.NewReplacer(
	"a", "а", "b", "в", "c", "с", "e", "е", "h", "н", "k", "к",
	"m", "м", "o", "о", "p", "р", "t", "т", "x", "х", "y", "у",
)

// CompareRecord compares an extracted record with the expected values. The
// record is compared in its wire form, so an absent field equals "unknown".
func CompareRecord(expected dataset.Expected, rec models.Record) *Comparison {
	actual := map[string]string{
		"title":     wire(rec.Title),
		"author":    wire(rec.Author),
		"isbn":      wire(rec.ISBN),
		"year":      strconv.Itoa(rec.Year),
		"udk":       wire(rec.UDK),
		"bbk":       wire(rec.BBK),
		"publisher": wire(rec.Publisher),
	}
	want := map[string]string{
		"title":     expected.Title,
		"author":    expected.Author,
		"isbn":      expected.ISBN,
		"year":      expected.Year,
		"udk":       expected.UDK,
		"bbk":       expected.BBK,
		"publisher": expected.Publisher,
	}

	comparison := &Comparison{
		Fields: make(map[string]FieldComparison, len(Fields)),
	}
	total := 0.0
	for _, field := range Fields {
		fc := compareField(field, want[field], actual[field])
		comparison.Fields[field] = fc
		total += fc.Score
		comparison.LevenshteinTotal += fc.Distance
		switch {
		case fc.Match:
			comparison.FieldsMatched++
		case isAbsent(field, fc.Actual):
			comparison.FieldsMissing++
		default:
			comparison.FieldsIncorrect++
		}
	}
	comparison.OverallScore = total / float64(len(Fields))
	return comparison
}

func wire(s string) string {
	if s == "" {
		return models.Unknown
	}
	return s
}

func isAbsent(field, value string) bool {
	if field == "year" {
		return value == "0" || value == ""
	}
	return models.FromWire(value) == ""
}

// compareField compares a single field after field-specific normalization.
func compareField(fieldName, expected, actual string) FieldComparison {
	comp := FieldComparison{
		FieldName: fieldName,
		Expected:  expected,
		Actual:    actual,
	}

	norm := NormalizeText
	if fieldName == "isbn" {
		norm = NormalizeISBN
	}
	expNorm := norm(expected)
	actNorm := norm(actual)

	comp.Distance = levenshteinDistance(expNorm, actNorm)
	if expNorm == actNorm {
		comp.Match = true
		comp.Score = 1.0
		return comp
	}

	maxLen := max(len([]rune(expNorm)), len([]rune(actNorm)))
	comp.Score = 1.0 - float64(comp.Distance)/float64(maxLen)
	return comp
}

// NormalizeText lowercases s, folds Latin look-alikes to Cyrillic and keeps
// only letters and digits. UDK and BBK codes are compared the same way.
func NormalizeText(s string) string {
	s = latinToCyrillic.Replace(strings.ToLower(s))
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeISBN keeps the digits and X of an ISBN.
func NormalizeISBN(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// levenshteinDistance calculates the Levenshtein distance between two strings
// rune by rune.
func levenshteinDistance(a, b string) int {
	s1, s2 := []rune(a), []rune(b)
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}
