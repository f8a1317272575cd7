package biblio

import "testing"

const kuvaevEntry = "К89 Куваев, О. М. — Территория : роман. — Москва : Азбука, 2020. — 416 с."

func TestParseGOST(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Citation
	}{
		{
			name:     "single line entry",
			text:     kuvaevEntry,
			expected: Citation{Author: "Куваев О", Title: "Территория", Publisher: "Азбука", Year: 2020},
		},
		{
			name:     "entry wrapped across lines",
			text:     "К89 Куваев, О. М. — Территория : роман. —\nМосква : Азбука, 2020. — 416 с.",
			expected: Citation{Author: "Куваев О", Title: "Территория", Publisher: "Азбука", Year: 2020},
		},
		{
			name:     "author on its own line",
			text:     "К89\nКуваев, О. М.\nТерритория : роман / Олег Куваев. — Москва : Азбука, 2020.",
			expected: Citation{Author: "Куваев О", Title: "Территория", Publisher: "Азбука", Year: 2020},
		},
		{
			name:     "entry without author",
			text:     "Т35 Территория / сост. И. Петров. — Москва : Наука, 1985. — 120 с.",
			expected: Citation{Title: "Территория", Publisher: "Наука", Year: 1985},
		},
		{
			name:     "author after slash",
			text:     "Рецензент Петров А. Б.\nБ 12 Сказки / А. С. Пушкин. - Ленинград : Детская литература, 1985.",
			expected: Citation{Author: "Пушкин А. С.", Title: "Сказки", Publisher: "Детская литература", Year: 1985},
		},
		{
			name:     "surname first after slash",
			text:     "Б 12 Сказки : стихи / Пушкин А. С. — Москва : Детгиз, 1950. — 64 с.",
			expected: Citation{Author: "Пушкин А. С.", Title: "Сказки", Publisher: "Детгиз", Year: 1950},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseGOST(tt.text)
			if got == nil {
				t.Fatalf("Expected a citation, got nil")
			}
			if *got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, *got)
			}
		})
	}
}

func TestParseGOSTNoMatch(t *testing.T) {
	for _, text := range []string{"", "Территория", "Москва : Азбука, 2020"} {
		if got := ParseGOST(text); got != nil {
			t.Errorf("Expected nil for %q, got %+v", text, *got)
		}
	}
}

func TestParseEnglish(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Citation
	}{
		{
			name:     "title slash author",
			text:     "Harry Potter and the Philosopher's Stone / J. K. Rowling. - London : Bloomsbury, 1997.",
			expected: Citation{Author: "J. K. Rowling", Title: "Harry Potter and the Philosopher's Stone", Publisher: "Bloomsbury", Year: 1997},
		},
		{
			name:     "author first",
			text:     "Orwell, G. Nineteen Eighty-Four. London: Secker and Warburg, 1949.",
			expected: Citation{Author: "Orwell G.", Title: "Nineteen Eighty-Four", Publisher: "Secker and Warburg", Year: 1949},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseEnglish(tt.text)
			if got == nil {
				t.Fatalf("Expected a citation, got nil")
			}
			if *got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, *got)
			}
		})
	}
}

func TestParseCitationPrefersGOST(t *testing.T) {
	got := ParseCitation("Preface\n" + kuvaevEntry)
	if got == nil {
		t.Fatal("Expected a citation, got nil")
	}
	if got.Author != "Куваев О" {
		t.Errorf("Expected author Куваев О, got %s", got.Author)
	}
}

func TestNormalizeCommaAuthor(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Куваев, Олег, Михайлович", "Куваев Олег"},
		{"Куваев,  Олег Михайлович", "Куваев Олег"},
		{"Куваев, О. М.", "Куваев О."},
		{"Толстой Л. Н.", "Толстой Л. Н."},
		{"Пушкин,", "Пушкин"},
	}

	for _, tt := range tests {
		if got := NormalizeCommaAuthor(tt.input); got != tt.expected {
			t.Errorf("NormalizeCommaAuthor(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}
