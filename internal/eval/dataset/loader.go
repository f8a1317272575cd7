package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

var imageExts = []string{".jpg", ".jpeg", ".jfif", ".png"}

var infoNames = []string{"info", "info_page", "info1", "info2", "info3", "info4"}

// Loader reads evaluation cases from a fixture directory, a JSONL file or a
// Parquet file.
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load loads every case
func (l *Loader) Load() ([]Case, error) {
	info, err := os.Stat(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat dataset: %w", err)
	}
	if info.IsDir() {
		return l.loadFixtures()
	}

	switch ext := strings.ToLower(filepath.Ext(l.datasetPath)); ext {
	case ".parquet":
		return l.loadParquet()
	case ".jsonl", ".json":
		return l.loadJSONL()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: directory, .parquet, .jsonl)", ext)
	}
}

// LoadSample loads at most limit cases. A limit below 1 loads everything.
func (l *Loader) LoadSample(limit int) ([]Case, error) {
	cases, err := l.Load()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(cases) > limit {
		cases = cases[:limit]
	}
	return cases, nil
}

// loadFixtures walks <root>/<language>/<book>/ directories holding an
// expected.json and page images named cover, info, info1..info4 and back.
func (l *Loader) loadFixtures() ([]Case, error) {
	langs, err := os.ReadDir(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset directory: %w", err)
	}

	var cases []Case
	for _, lang := range langs {
		if !lang.IsDir() {
			continue
		}
		books, err := os.ReadDir(filepath.Join(l.datasetPath, lang.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read language directory: %w", err)
		}
		for _, book := range books {
			dir := filepath.Join(l.datasetPath, lang.Name(), book.Name())
			if !book.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(dir, "expected.json"))
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read expected.json: %w", err)
			}

			c := Case{
				ID:        lang.Name() + "/" + book.Name(),
				Language:  lang.Name(),
				CoverPath: findImage(dir, "cover"),
				BackPath:  findImage(dir, "back"),
			}
			if err := json.Unmarshal(data, &c.Expected); err != nil {
				return nil, fmt.Errorf("failed to parse %s/expected.json: %w", c.ID, err)
			}
			for _, name := range infoNames {
				if path := findImage(dir, name); path != "" {
					c.InfoPaths = append(c.InfoPaths, path)
				}
			}
			cases = append(cases, c)
		}
	}

	slog.Debug("Loaded fixture cases", "path", l.datasetPath, "cases", len(cases))
	return cases, nil
}

func findImage(dir, name string) string {
	for _, ext := range imageExts {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadJSONL loads cases from a JSONL file
func (l *Loader) loadJSONL() ([]Case, error) {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var cases []Case
	scanner := bufio.NewScanner(file)

	// Increase buffer size for large JSON lines
	const maxCapacity = 10 * 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var c Case
		if err := json.Unmarshal(line, &c); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		if c.ID == "" {
			c.ID = fmt.Sprintf("line-%d", lineNum)
		}
		cases = append(cases, c)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_cases", len(cases), "total_lines", lineNum)

	return cases, nil
}

// loadParquet loads cases from a Parquet file
func (l *Loader) loadParquet() ([]Case, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Case](pf)
	defer reader.Close()

	var cases []Case
	rows := make([]Case, 128) // Read in batches

	for {
		n, err := reader.Read(rows)
		cases = append(cases, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	for i := range cases {
		if cases[i].ID == "" {
			cases[i].ID = fmt.Sprintf("row-%d", i+1)
		}
	}

	slog.Debug("Finished reading Parquet file", "total_cases", len(cases))

	return cases, nil
}
