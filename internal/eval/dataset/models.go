package dataset

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Case is one book with its expected record. Image cases come from fixture
// directories and carry file paths; text cases carry recognized text.
type Case struct {
	ID       string `json:"id" parquet:"id"`
	Language string `json:"language" parquet:"language"`

	CoverText string `json:"cover_text" parquet:"cover_text"`
	InfoText  string `json:"info_text" parquet:"info_text"`
	BackText  string `json:"back_text" parquet:"back_text"`

	Expected Expected `json:"expected" parquet:"expected"`

	CoverPath string   `json:"-" parquet:"-"`
	InfoPaths []string `json:"-" parquet:"-"`
	BackPath  string   `json:"-" parquet:"-"`
}

// HasImages reports whether the case is recognized from image files.
func (c *Case) HasImages() bool {
	return c.CoverPath != "" || len(c.InfoPaths) > 0 || c.BackPath != ""
}

// Expected holds the reference values as written by a cataloger. Absent
// values are "unknown", the year "0" when unknown.
type Expected struct {
	Title     string `json:"title" parquet:"title"`
	Author    string `json:"author" parquet:"author"`
	Publisher string `json:"publisher" parquet:"publisher"`
	Year      string `json:"year" parquet:"year"`
	ISBN      string `json:"isbn" parquet:"isbn"`
	UDK       string `json:"udk" parquet:"udk"`
	BBK       string `json:"bbk" parquet:"bbk"`
}

// UnmarshalJSON accepts numbers, strings and null for every field, since
// expected.json files write the year as a number.
func (e *Expected) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	field := func(key string) string {
		switch v := raw[key].(type) {
		case nil:
			return ""
		case string:
			return strings.TrimSpace(v)
		case float64:
			return fmt.Sprintf("%.0f", v)
		default:
			return fmt.Sprint(v)
		}
	}
	*e = Expected{
		Title:     field("title"),
		Author:    field("author"),
		Publisher: field("publisher"),
		Year:      field("year"),
		ISBN:      field("isbn"),
		UDK:       field("udk"),
		BBK:       field("bbk"),
	}
	return nil
}
