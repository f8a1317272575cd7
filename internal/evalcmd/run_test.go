package evalcmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/homelibrary/bookworm/internal/eval/dataset"
	"github.com/homelibrary/bookworm/internal/eval/metrics"
	"github.com/homelibrary/bookworm/internal/eval/results"
	"github.com/homelibrary/bookworm/internal/models"
)

type fakeExtractor struct {
	imageReqs []models.Request
}

func (f *fakeExtractor) Extract(ctx context.Context, req models.Request) (models.Record, error) {
	f.imageReqs = append(f.imageReqs, req)
	return models.Record{Title: "Территория", Author: "Куваев О", Year: 2020}, nil
}

func (f *fakeExtractor) ExtractText(ctx context.Context, req models.TextRequest) (models.Record, error) {
	if req.InfoText == "" && req.CoverText == "" {
		return models.Record{}, errors.New("no OCR text")
	}
	return models.Record{Title: "Звезды", ISBN: "9785389123456"}, nil
}

func TestExecuteRun(t *testing.T) {
	dir := t.TempDir()
	cover := filepath.Join(dir, "cover.jpg")
	if err := os.WriteFile(cover, []byte("jpeg"), 0644); err != nil {
		t.Fatal(err)
	}

	cases := []dataset.Case{
		{ID: "rus/territory", Language: "rus", CoverPath: cover, Expected: dataset.Expected{Title: "Территория", Author: "Куваев О.", Year: "2020"}},
		{ID: "text", InfoText: "ЗВЕЗДЫ", Expected: dataset.Expected{Title: "Звезды", ISBN: "978-5-389-12345-6", Year: "0"}},
		{ID: "empty"},
		{ID: "missing", CoverPath: filepath.Join(dir, "nope.jpg")},
	}

	ex := &fakeExtractor{}
	got := executeRun(context.Background(), ex, cases, 2)

	if len(got) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(got))
	}
	if got[0].ID != "rus/territory" || got[0].Comparison == nil {
		t.Fatalf("Expected first result in case order, got %+v", got[0])
	}
	for _, field := range []string{"title", "author", "year"} {
		if !got[0].Comparison.Fields[field].Match {
			t.Errorf("Expected %s to match, got %+v", field, got[0].Comparison.Fields[field])
		}
	}
	if !got[1].Comparison.Fields["isbn"].Match || !got[1].Comparison.Fields["year"].Match {
		t.Errorf("Expected text case isbn and year to match, got %+v", got[1].Comparison.Fields)
	}
	if got[2].Error != "no OCR text" {
		t.Errorf("Expected error for empty case, got %q", got[2].Error)
	}
	if got[3].Error == "" {
		t.Error("Expected error for missing image")
	}

	if len(ex.imageReqs) != 1 {
		t.Fatalf("Expected one image request, got %d", len(ex.imageReqs))
	}
	if ex.imageReqs[0].CoverImage != base64.StdEncoding.EncodeToString([]byte("jpeg")) || ex.imageReqs[0].Language != "rus" {
		t.Errorf("Unexpected image request %+v", ex.imageReqs[0])
	}
}

func TestExecuteReport(t *testing.T) {
	got := executeRun(context.Background(), &fakeExtractor{}, []dataset.Case{
		{ID: "text", InfoText: "ЗВЕЗДЫ", Expected: dataset.Expected{Title: "Звёзды", Year: "0"}},
	}, 1)
	agg := metrics.AggregateEvaluationResults(got, "ollama", "m")
	path, err := results.SaveToYAML(t.TempDir(), results.Build(results.EvalConfig{Provider: "ollama", Model: "m"}, agg))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		format string
		want   string
	}{
		{"text", "Expected:  Звёзды"},
		{"csv", "ID,Overall Score,Error,match_title"},
		{"json", `"Identifier": "text"`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := executeReport(&buf, path, tt.format); err != nil {
				t.Fatalf("executeReport failed: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.want, buf.String())
			}
		})
	}

	if err := executeReport(&bytes.Buffer{}, path, "xml"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}
