package prompts

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/homelibrary/bookworm/internal/biblio"
)

func TestBuildCatalog(t *testing.T) {
	ocr := "К89 Куваев, О. М. — Территория : роман.\n\nISBN 978-5-389-12345-6"
	hints := biblio.Hints{Author: "Куваев О", ISBN: "9785389123456", Year: 2020, Entry: "К89 Куваев"}

	prompt := Build(Catalog, ocr, hints)

	for _, want := range []string{
		"Stop at the first colon",
		`return "unknown"`,
		"copyright",
		"HINTS",
		`author = "Куваев О"`,
		`isbn = "9785389123456"`,
		`year = "2020"`,
		`udk = "unknown"`,
		`"annotation": "..."`,
		`"year": 0`,
		"CATALOG ENTRY CANDIDATE:\nК89 Куваев",
		"OCR TEXT:\n" + ocr + "\n",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected catalog prompt to contain %q", want)
		}
	}
}

func TestBuildCover(t *testing.T) {
	prompt := Build(Cover, "ОЛЕГ КУВАЕВ\nТЕРРИТОРИЯ", biblio.Hints{Title: "ТЕРРИТОРИЯ"})

	if !strings.Contains(prompt, "visually largest") {
		t.Error("Expected cover guidance about the largest text block")
	}
	if !strings.Contains(prompt, `title = "ТЕРРИТОРИЯ"`) {
		t.Error("Expected the title hint")
	}
	for _, unwanted := range []string{`"isbn"`, `"publisher"`, "CATALOG ENTRY CANDIDATE"} {
		if strings.Contains(prompt, unwanted) {
			t.Errorf("Expected cover prompt not to contain %q", unwanted)
		}
	}
}

func TestSchema(t *testing.T) {
	tests := []struct {
		variant Variant
		fields  int
	}{
		{Catalog, 8},
		{Cover, 2},
	}

	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			var schema struct {
				Type       string                    `json:"type"`
				Properties map[string]map[string]any `json:"properties"`
			}
			if err := json.Unmarshal(Schema(tt.variant), &schema); err != nil {
				t.Fatalf("Schema is not valid JSON: %v", err)
			}
			if schema.Type != "object" {
				t.Errorf("Expected object schema, got %s", schema.Type)
			}
			if len(schema.Properties) != tt.fields {
				t.Errorf("Expected %d properties, got %d", tt.fields, len(schema.Properties))
			}
		})
	}
}
