package normalize

import (
	"encoding/json"
	"testing"

	"github.com/homelibrary/bookworm/internal/biblio"
	"github.com/homelibrary/bookworm/internal/models"
)

func TestFromModel(t *testing.T) {
	var obj map[string]any
	input := `{"title":"Территория","author":"Unknown","publisher":7,"year":2020,"isbn":"978-5-389-12345-6","annotation":null}`
	if err := json.Unmarshal([]byte(input), &obj); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	got := FromModel(obj)
	expected := models.Record{Title: "Территория", Year: 2020, ISBN: "978-5-389-12345-6"}
	if got != expected {
		t.Errorf("Expected %+v, got %+v", expected, got)
	}
}

func TestFromModelYear(t *testing.T) {
	tests := []struct {
		name     string
		year     any
		expected int
	}{
		{"integer", float64(1985), 1985},
		{"fraction", 1985.5, 0},
		{"negative", float64(-3), 0},
		{"string", "1985", 0},
		{"missing", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromModel(map[string]any{"year": tt.year}).Year
			if got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestIsGarbageTitle(t *testing.T) {
	tests := []struct {
		title    string
		expected bool
	}{
		{"Copyright 2020 Azbuka", true},
		{"All Rights Reserved", true},
		{"Printed under TRADEMARK license", true},
		{"Indicia", true},
		{"Территория", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsGarbageTitle(tt.title); got != tt.expected {
			t.Errorf("IsGarbageTitle(%q): expected %v, got %v", tt.title, tt.expected, got)
		}
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"К89 Территория", "Территория"},
		{"Территория / Олег Куваев", "Территория"},
		{"Территория. — Москва : Азбука, 2020", "Территория"},
		{"Территория : роман", "Территория"},
		{"  Территория\n", "Территория"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanTitle(tt.input); got != tt.expected {
			t.Errorf("CleanTitle(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestRecordEmbeddedAuthor(t *testing.T) {
	got := Record(models.Record{Title: "Куваев, Олег. — Территория", Author: "Петров"}, biblio.Hints{})
	if got.Title != "Территория" {
		t.Errorf("Expected title Территория, got %q", got.Title)
	}
	if got.Author != "Куваев Олег" {
		t.Errorf("Expected author Куваев Олег, got %q", got.Author)
	}
}

func TestRecordGarbageTitle(t *testing.T) {
	got := Record(models.Record{Title: "© 2020. All rights reserved", Author: "Куваев О"}, biblio.Hints{})
	if got.Title != "" {
		t.Errorf("Expected garbage title to be dropped, got %q", got.Title)
	}
	if got.Author != "Куваев О" {
		t.Errorf("Expected author to survive, got %q", got.Author)
	}
}

func TestRecordModernizesNames(t *testing.T) {
	got := Record(models.Record{Title: "Мѣсяцъ   въ\nдеревнѣ", Author: "Тургеневъ И. С.", Publisher: "Изданіе"}, biblio.Hints{})
	if got.Title != "Месяц в деревне" {
		t.Errorf("Expected modern title, got %q", got.Title)
	}
	if got.Author != "Тургенев И. С." {
		t.Errorf("Expected modern author, got %q", got.Author)
	}
	if got.Publisher != "Издание" {
		t.Errorf("Expected modern publisher, got %q", got.Publisher)
	}
}

func TestRecordHintFallback(t *testing.T) {
	hints := biblio.Hints{ISBN: "9785389123456", UDK: "821.161.1-31", BBK: "Ч 84"}

	got := Record(models.Record{Title: "Территория", UDK: "94 (47)"}, hints)
	if got.ISBN != "9785389123456" {
		t.Errorf("Expected ISBN from hints, got %q", got.ISBN)
	}
	if got.UDK != "94(47)" {
		t.Errorf("Expected model UDK to win and be compacted, got %q", got.UDK)
	}
	if got.BBK != "Ч84" {
		t.Errorf("Expected BBK from hints without spaces, got %q", got.BBK)
	}
}

func TestRecordRejectsBadISBN(t *testing.T) {
	got := Record(models.Record{ISBN: "123"}, biblio.Hints{ISBN: "9785389123456"})
	if got.ISBN != "" {
		t.Errorf("Expected invalid model ISBN to be dropped, got %q", got.ISBN)
	}

	got = Record(models.Record{ISBN: "978-5-17-123456-7 (в пер.)"}, biblio.Hints{})
	if got.ISBN != "9785171234567" {
		t.Errorf("Expected 9785171234567, got %q", got.ISBN)
	}
}

func TestRecordFromHintsCitation(t *testing.T) {
	text := "Рецензент Иванов И. И.\nК89 Куваев, О. М. — Территория : роман. — Москва : Азбука, 2020. — 416 с."
	h := biblio.Collect(text, "")
	got := Record(FromHints(h), h)

	expected := models.Record{Title: "Территория", Author: "Куваев О", Publisher: "Азбука", Year: 2020}
	if got != expected {
		t.Errorf("Expected %+v, got %+v", expected, got)
	}
}

func TestRecordIsIdempotent(t *testing.T) {
	in := models.Record{
		Title:      "К89 Территория : роман / Олег Куваев",
		Author:     " Куваев  О ",
		Annotation: "Роман о геологах. Роман о геологах. Север!",
		BBK:        "84(2Рос=Рус)6-44",
	}
	once := Record(in, biblio.Hints{})
	twice := Record(once, biblio.Hints{})
	if once != twice {
		t.Errorf("Expected normalization to be stable, got %+v then %+v", once, twice)
	}
}

func TestCleanAnnotation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"duplicates", "Роман о геологах. Роман о геологах. Север!", "Роман о геологах. Север!"},
		{"whitespace", "Одно.\n\n  Два?  Одно.", "Одно. Два?"},
		{"trailing fragment", "Первое. Хвост без точки", "Первое. Хвост без точки"},
		{"ellipsis", "Ну... Ну...", "Ну..."},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := CleanAnnotation(tt.input)
			if once != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, once)
			}
			if twice := CleanAnnotation(once); twice != once {
				t.Errorf("Expected idempotence, got %q then %q", once, twice)
			}
		})
	}
}

func TestRecordEmbeddedAuthorWithImprint(t *testing.T) {
	got := Record(models.Record{Title: "К89 Куваев, Олег. — Территория : роман. — Москва, 2020"}, biblio.Hints{})
	if got.Title != "Территория" || got.Author != "Куваев Олег" {
		t.Errorf("Expected Территория by Куваев Олег, got %q by %q", got.Title, got.Author)
	}
}
