package biblio

import "testing"

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"citation", kuvaevEntry, "Территория"},
		{"catalog line without imprint", "К89 Куваев, О. М. — Территория : роман", "Территория"},
		{"too short", "К89 Тут", ""},
		{"nothing", "просто текст", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTitle(tt.text); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestExtractPublisherAndYear(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		publisher string
		year      int
	}{
		{"citation", kuvaevEntry, "Азбука", 2020},
		{"imprint only", "Москва : Азбука, 2020. — 416 с.", "Азбука", 2020},
		{"abbreviated place", "М. : Наука, 1985", "Наука", 1985},
		{"nothing", "Территория", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPublisher(tt.text); got != tt.publisher {
				t.Errorf("Expected publisher %q, got %q", tt.publisher, got)
			}
			if got := ExtractYear(tt.text); got != tt.year {
				t.Errorf("Expected year %d, got %d", tt.year, got)
			}
		})
	}
}

func TestCoverTitle(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"skips author line", "Олег Куваев\nТерритория\nроман", "Территория"},
		{"skips author line in capitals", "ОЛЕГ КУВАЕВ\nТЕРРИТОРИЯ", "ТЕРРИТОРИЯ"},
		{"skips isbn line", "Территория\nISBN 978-5-389-12345-6", "Территория"},
		{"short lines only", "АСТ\nроман", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoverTitle(tt.text); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
