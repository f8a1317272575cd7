package cataloging

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/homelibrary/bookworm/internal/biblio"
	"github.com/homelibrary/bookworm/internal/models"
	"github.com/homelibrary/bookworm/internal/normalize"
	"github.com/homelibrary/bookworm/internal/ocr"
	"github.com/homelibrary/bookworm/internal/providers"
)

const catalogPage = `УДК 821.161.1-31
ББК 84(2Рос=Рус)6-44
К89 Куваев, О. М. — Территория : роман. — Москва : Азбука, 2020. — 416 с.
ISBN 978-5-389-12345-6`

type fakeProvider struct {
	respond func(prompt string) (string, error)
	configs []providers.Config
}

func (f *fakeProvider) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	f.configs = append(f.configs, config)
	return f.respond(config.Prompt)
}

func isCoverPrompt(prompt string) bool {
	return strings.Contains(prompt, "front cover")
}

type fakeRecognizer struct {
	texts map[string]string
	langs []string
}

func (f *fakeRecognizer) Recognize(ctx context.Context, image []byte, lang string) (string, error) {
	f.langs = append(f.langs, lang)
	if text, ok := f.texts[string(image)+"|"+lang]; ok {
		return text, nil
	}
	if text, ok := f.texts[string(image)]; ok {
		return text, nil
	}
	return "", errors.New("unreadable")
}

func newTestService(t *testing.T, p providers.Provider, rec *fakeRecognizer, coverPass bool) *Service {
	t.Helper()
	var r ocr.Recognizer
	if rec != nil {
		r = rec
	}
	s, err := NewService(r, p, Options{
		Model:        "test-model",
		MaxTokens:    800,
		Timeout:      time.Second,
		Language:     "rus+eng",
		ISBNLanguage: "eng",
		CoverPass:    coverPass,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return s
}

func TestExtractTextNoText(t *testing.T) {
	s := newTestService(t, &fakeProvider{}, nil, true)
	_, err := s.ExtractText(context.Background(), models.TextRequest{CoverText: "  \n ", InfoText: ""})
	if !errors.Is(err, ErrNoText) {
		t.Errorf("Expected ErrNoText, got %v", err)
	}
}

func TestExtractTextUsesModel(t *testing.T) {
	p := &fakeProvider{respond: func(prompt string) (string, error) {
		if isCoverPrompt(prompt) {
			return `{"title": "Территория", "author": "Олег Куваев"}`, nil
		}
		return "```json\n" + `{"title": "Территория : роман", "author": "Куваев О", "publisher": "Азбука", "year": 2020, "isbn": "unknown", "udk": "821.161.1-31", "bbk": "84(2Рос=Рус) 6-44", "annotation": "Роман о геологах. Роман о геологах."}` + "\n```", nil
	}}
	s := newTestService(t, p, nil, true)

	rec, err := s.ExtractText(context.Background(), models.TextRequest{CoverText: "ОЛЕГ КУВАЕВ\nТЕРРИТОРИЯ", InfoText: catalogPage})
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}

	expected := models.Record{
		Title:      "Территория",
		Author:     "Куваев О",
		Publisher:  "Азбука",
		Year:       2020,
		ISBN:       "9785389123456",
		UDK:        "821.161.1-31",
		BBK:        "84(2Рос=Рус)6-44",
		Annotation: "Роман о геологах.",
		RawOCR:     "=== COVER ===\nОЛЕГ КУВАЕВ\nТЕРРИТОРИЯ\n=== INFO PAGE 1 ===\n" + catalogPage + "\n",
	}
	if rec != expected {
		t.Errorf("Expected %+v, got %+v", expected, rec)
	}

	if len(p.configs) != 2 {
		t.Fatalf("Expected catalog and cover calls, got %d", len(p.configs))
	}
	for _, c := range p.configs {
		if c.Temperature != 0 || c.MaxTokens != 800 || c.Model != "test-model" {
			t.Errorf("Unexpected call config %+v", c)
		}
	}
}

func TestExtractTextFallsBackToHints(t *testing.T) {
	tests := []struct {
		name    string
		respond func(string) (string, error)
	}{
		{"model unreachable", func(string) (string, error) { return "", errors.New("connection refused") }},
		{"no json", func(string) (string, error) { return "Sorry, I cannot help with that.", nil }},
		{"wrong shape", func(string) (string, error) { return `{"title": ["a", "b"]}`, nil }},
		{"timeout", func(string) (string, error) { return "", context.DeadlineExceeded }},
	}

	hints := biblio.Collect(catalogPage, "")
	expected := normalize.Record(normalize.FromHints(hints), hints)
	expected.RawOCR = "=== INFO PAGE 1 ===\n" + catalogPage + "\n"

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t, &fakeProvider{respond: tt.respond}, nil, true)
			rec, err := s.ExtractText(context.Background(), models.TextRequest{InfoText: catalogPage})
			if err != nil {
				t.Fatalf("Expected a fallback record, got error %v", err)
			}
			if rec != expected {
				t.Errorf("Expected hints-only record %+v, got %+v", expected, rec)
			}
		})
	}

	if expected.Title != "Территория" || expected.Author != "Куваев О" || expected.Year != 2020 {
		t.Errorf("Expected the citation to drive the fallback record, got %+v", expected)
	}
}

func TestExtractTextCoverFillsUnknownTitle(t *testing.T) {
	p := &fakeProvider{respond: func(prompt string) (string, error) {
		if isCoverPrompt(prompt) {
			return `{"title": "Территория", "author": "Куваев Олег"}`, nil
		}
		return `{"title": "unknown", "author": "unknown", "publisher": "Азбука", "year": 2020}`, nil
	}}
	s := newTestService(t, p, nil, true)

	rec, err := s.ExtractText(context.Background(), models.TextRequest{CoverText: "ТЕРРИТОРИЯ", BackText: "Москва : Азбука, 2020"})
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if rec.Title != "Территория" || rec.Author != "Куваев Олег" {
		t.Errorf("Expected cover title and author, got %q by %q", rec.Title, rec.Author)
	}
	if rec.Publisher != "Азбука" {
		t.Errorf("Expected catalog publisher, got %q", rec.Publisher)
	}
	if !strings.Contains(rec.RawOCR, "=== BACK COVER ===") {
		t.Errorf("Expected back cover section in trace, got %q", rec.RawOCR)
	}
}

func TestExtractTextWithoutCoverPass(t *testing.T) {
	p := &fakeProvider{respond: func(prompt string) (string, error) {
		if isCoverPrompt(prompt) {
			t.Error("Expected no cover call")
		}
		return `{"title": "unknown", "author": "unknown"}`, nil
	}}
	s := newTestService(t, p, nil, false)

	rec, err := s.ExtractText(context.Background(), models.TextRequest{CoverText: "Олег Куваев\nТерритория", InfoText: "Москва : Азбука, 2020"})
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if rec.Title != "Территория" || rec.Author != "Олег Куваев" {
		t.Errorf("Expected cover hints to fill title and author, got %q by %q", rec.Title, rec.Author)
	}
	if len(p.configs) != 1 {
		t.Errorf("Expected one model call, got %d", len(p.configs))
	}
}

func TestExtractImages(t *testing.T) {
	rec := &fakeRecognizer{texts: map[string]string{
		"cover":    "ТЕРРИТОРИЯ",
		"info|eng": "ISBN 978-5-389-99999-9",
		"info":     catalogPage,
		"back":     "Роман о геологах.",
	}}
	p := &fakeProvider{respond: func(string) (string, error) { return "", errors.New("offline") }}
	s := newTestService(t, p, rec, true)

	enc := base64.StdEncoding.EncodeToString
	out, err := s.Extract(context.Background(), models.Request{
		CoverImage: enc([]byte("cover")),
		InfoImages: []string{"data:image/jpeg;base64," + enc([]byte("info"))},
		BackImage:  enc([]byte("back")),
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if out.ISBN != "9785389999999" {
		t.Errorf("Expected ISBN from the Latin pass, got %s", out.ISBN)
	}
	if out.Title != "Территория" {
		t.Errorf("Expected title Территория, got %s", out.Title)
	}
	want := "=== COVER ===\nТЕРРИТОРИЯ\n=== INFO PAGE 1 ===\n" + catalogPage + "\n=== BACK COVER ===\nРоман о геологах.\n"
	if out.RawOCR != want {
		t.Errorf("Unexpected trace:\n%s", out.RawOCR)
	}
	if strings.Join(rec.langs, ",") != "rus+eng,rus+eng,eng,rus+eng" {
		t.Errorf("Unexpected recognition languages %v", rec.langs)
	}
}

func TestExtractBadImage(t *testing.T) {
	s := newTestService(t, &fakeProvider{}, &fakeRecognizer{}, true)
	_, err := s.Extract(context.Background(), models.Request{CoverImage: "not base64!"})
	if !errors.Is(err, ErrBadImage) {
		t.Errorf("Expected ErrBadImage, got %v", err)
	}
}

func TestExtractUnreadableImages(t *testing.T) {
	s := newTestService(t, &fakeProvider{}, &fakeRecognizer{}, true)
	enc := base64.StdEncoding.EncodeToString([]byte("noise"))
	_, err := s.Extract(context.Background(), models.Request{CoverImage: enc, Language: "rus"})
	if !errors.Is(err, ErrNoText) {
		t.Errorf("Expected ErrNoText, got %v", err)
	}
}

func TestExtractTraceKeepsEmptyRegions(t *testing.T) {
	rec := &fakeRecognizer{texts: map[string]string{"info": catalogPage}}
	p := &fakeProvider{respond: func(string) (string, error) { return "", errors.New("offline") }}
	s := newTestService(t, p, rec, true)

	enc := base64.StdEncoding.EncodeToString
	out, err := s.Extract(context.Background(), models.Request{
		CoverImage: enc([]byte("blurred cover")),
		InfoImages: []string{enc([]byte("info"))},
		BackImage:  enc([]byte("blank back")),
	})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	want := "=== COVER ===\n\n=== INFO PAGE 1 ===\n" + catalogPage + "\n=== BACK COVER ===\n\n"
	if out.RawOCR != want {
		t.Errorf("Expected every submitted region in the trace, got:\n%q", out.RawOCR)
	}
}

func TestTraceOmitsRegionsNotSent(t *testing.T) {
	got := Pages{Info: []string{"К89"}}.Trace()
	if got != "=== INFO PAGE 1 ===\nК89\n" {
		t.Errorf("Expected only the info page, got %q", got)
	}
}
