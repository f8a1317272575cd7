package results

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/homelibrary/bookworm/internal/eval/metadata"
	"github.com/homelibrary/bookworm/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	DatasetPath string  `yaml:"datasetpath"`
	SampleSize  int     `yaml:"samplesize"`
	Timestamp   string  `yaml:"timestamp"`
}

// FieldSummary is the aggregate of one field across all cases.
type FieldSummary struct {
	Accuracy   float64 `yaml:"accuracy"`
	Similarity float64 `yaml:"similarity"`
	Matched    int     `yaml:"matched"`
	Incorrect  int     `yaml:"incorrect"`
	Missing    int     `yaml:"missing"`
}

// EvalSummary holds the per-field accuracy table.
type EvalSummary struct {
	Total           int                     `yaml:"total"`
	Successful      int                     `yaml:"successful"`
	Failed          int                     `yaml:"failed"`
	OverallAccuracy float64                 `yaml:"overallaccuracy"`
	Fields          map[string]FieldSummary `yaml:"fields"`
}

// FieldResult is the comparison of one field of one case.
type FieldResult struct {
	Expected string  `yaml:"expected"`
	Actual   string  `yaml:"actual"`
	Match    bool    `yaml:"match"`
	Score    float64 `yaml:"score"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	Identifier       string                 `yaml:"identifier"`
	Language         string                 `yaml:"language,omitempty"`
	Error            string                 `yaml:"error,omitempty"`
	OverallScore     float64                `yaml:"overallscore"`
	LevenshteinTotal int                    `yaml:"levenshteintotal"`
	FieldsMatched    int                    `yaml:"fieldsmatched"`
	FieldsMissing    int                    `yaml:"fieldsmissing"`
	FieldsIncorrect  int                    `yaml:"fieldsincorrect"`
	Fields           map[string]FieldResult `yaml:"fields,omitempty"`
	RawOCR           string                 `yaml:"rawocr,omitempty"`
}

// EvalSpec represents the complete evaluation report
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Summary EvalSummary  `yaml:"summary"`
	Results []EvalResult `yaml:"results"`
}

// Build converts aggregated results into the report layout.
func Build(config EvalConfig, agg *metrics.AggregateResults) EvalSpec {
	spec := EvalSpec{
		Config: config,
		Summary: EvalSummary{
			Total:           agg.TotalRecords,
			Successful:      agg.SuccessCount,
			Failed:          agg.FailureCount,
			OverallAccuracy: agg.OverallAccuracy,
			Fields:          make(map[string]FieldSummary, len(agg.Fields)),
		},
		Results: make([]EvalResult, 0, len(agg.Results)),
	}
	for field, stats := range agg.Fields {
		spec.Summary.Fields[field] = FieldSummary{
			Accuracy:   stats.Accuracy,
			Similarity: stats.AverageScore,
			Matched:    stats.Matches,
			Incorrect:  stats.Incorrect,
			Missing:    stats.Missing,
		}
	}

	for _, r := range agg.Results {
		evalResult := EvalResult{
			Identifier: r.ID,
			Language:   r.Language,
			Error:      r.Error,
			RawOCR:     r.Record.RawOCR,
		}
		if r.Comparison != nil {
			evalResult.OverallScore = r.Comparison.OverallScore
			evalResult.LevenshteinTotal = r.Comparison.LevenshteinTotal
			evalResult.FieldsMatched = r.Comparison.FieldsMatched
			evalResult.FieldsMissing = r.Comparison.FieldsMissing
			evalResult.FieldsIncorrect = r.Comparison.FieldsIncorrect
			evalResult.Fields = make(map[string]FieldResult, len(metadata.Fields))
			for _, field := range metadata.Fields {
				fc := r.Comparison.Fields[field]
				evalResult.Fields[field] = FieldResult{
					Expected: fc.Expected,
					Actual:   fc.Actual,
					Match:    fc.Match,
					Score:    fc.Score,
				}
			}
		}
		spec.Results = append(spec.Results, evalResult)
	}
	return spec
}

// SaveToYAML writes the report to <dir>/<model>-<timestamp>.yaml and returns
// the file path.
func SaveToYAML(dir string, spec EvalSpec) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	if spec.Config.Timestamp == "" {
		spec.Config.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}

	// Model names such as "qwen2.5:7b" or "org/model" are not file-name safe.
	name := strings.NewReplacer("/", "_", ":", "_").Replace(spec.Config.Model)
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", name, spec.Config.Timestamp))

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return filename, nil
}

// LoadYAML reads a report written by SaveToYAML.
func LoadYAML(path string) (EvalSpec, error) {
	var spec EvalSpec
	data, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("failed to read results: %w", err)
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return spec, fmt.Errorf("failed to parse results: %w", err)
	}
	return spec, nil
}
