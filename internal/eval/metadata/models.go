package metadata

// Fields lists the compared fields in report order.
var Fields = []string{"title", "author", "isbn", "year", "udk", "bbk", "publisher"}

// Comparison is the field-by-field comparison of one extracted record.
type Comparison struct {
	Fields        map[string]FieldComparison
	OverallScore  float64
	FieldsMatched int
	FieldsMissing int
	// FieldsIncorrect counts fields with a value that does not match.
	FieldsIncorrect  int
	LevenshteinTotal int
}

// FieldComparison represents comparison for a single field
type FieldComparison struct {
	FieldName string
	Expected  string
	Actual    string
	// Match is true when the normalized values are equal.
	Match    bool
	Score    float64 // 0.0 to 1.0
	Distance int     // Levenshtein distance of normalized values
}
