package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/homelibrary/bookworm/internal/eval/metadata"
	"github.com/homelibrary/bookworm/internal/models"
)

// EvaluationResult represents the results for a single book evaluation
type EvaluationResult struct {
	ID             string
	Language       string
	Record         models.Record
	Comparison     *metadata.Comparison
	ProcessingTime time.Duration
	Error          string // If extraction failed
}

// AggregateResults represents aggregated evaluation metrics
type AggregateResults struct {
	TotalRecords int
	SuccessCount int
	FailureCount int

	// Field-level statistics, keyed by field name
	Fields map[string]*FieldStats

	// Overall
	OverallAccuracy float64

	// Timing
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration

	// Detailed results
	Results []EvaluationResult `json:"-"`

	// Metadata
	EvaluationDate time.Time
	Provider       string
	Model          string
}

// FieldStats contains statistics for one compared field
type FieldStats struct {
	Matches   int
	Incorrect int
	Missing   int
	// Accuracy is the share of successful records where the field matched.
	Accuracy     float64
	AverageScore float64
	Scores       []float64
}

// AggregateEvaluationResults aggregates multiple evaluation results
func AggregateEvaluationResults(results []EvaluationResult, provider, model string) *AggregateResults {
	agg := &AggregateResults{
		TotalRecords:   len(results),
		Results:        results,
		EvaluationDate: time.Now(),
		Provider:       provider,
		Model:          model,
		Fields:         make(map[string]*FieldStats, len(metadata.Fields)),
	}
	for _, field := range metadata.Fields {
		agg.Fields[field] = &FieldStats{Scores: []float64{}}
	}

	totalOverallScore := 0.0
	var successDuration time.Duration

	for _, result := range results {
		agg.TotalProcessingTime += result.ProcessingTime

		if result.Error != "" || result.Comparison == nil {
			agg.FailureCount++
			continue
		}

		agg.SuccessCount++
		successDuration += result.ProcessingTime
		totalOverallScore += result.Comparison.OverallScore

		for _, field := range metadata.Fields {
			aggregateFieldStats(agg.Fields[field], field, result.Comparison.Fields[field])
		}
	}

	if agg.SuccessCount > 0 {
		for _, stats := range agg.Fields {
			stats.AverageScore = calculateAverage(stats.Scores)
			stats.Accuracy = float64(stats.Matches) / float64(agg.SuccessCount)
		}
		agg.OverallAccuracy = totalOverallScore / float64(agg.SuccessCount)
		agg.AverageProcessingTime = successDuration / time.Duration(agg.SuccessCount)
	}

	return agg
}

// aggregateFieldStats updates field statistics
func aggregateFieldStats(stats *FieldStats, field string, fc metadata.FieldComparison) {
	stats.Scores = append(stats.Scores, fc.Score)

	switch {
	case fc.Match:
		stats.Matches++
	case fc.Actual == models.Unknown || (field == "year" && fc.Actual == "0"):
		stats.Missing++
	default:
		stats.Incorrect++
	}
}

// calculateAverage calculates the average of a slice of scores
func calculateAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, score := range scores {
		sum += score
	}

	return sum / float64(len(scores))
}

// PrintSummary writes a human-readable summary of the evaluation
func (a *AggregateResults) PrintSummary(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "BOOKWORM EVALUATION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Provider: %s\n", a.Provider)
	fmt.Fprintf(w, "Model: %s\n", a.Model)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PROCESSING STATISTICS")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Total Records: %d\n", a.TotalRecords)
	if a.TotalRecords > 0 {
		fmt.Fprintf(w, "Successful: %d (%.1f%%)\n", a.SuccessCount, float64(a.SuccessCount)/float64(a.TotalRecords)*100)
		fmt.Fprintf(w, "Failed: %d (%.1f%%)\n", a.FailureCount, float64(a.FailureCount)/float64(a.TotalRecords)*100)
	}
	fmt.Fprintf(w, "Average Processing Time: %s\n", a.AverageProcessingTime)
	fmt.Fprintf(w, "Total Processing Time: %s\n", a.TotalProcessingTime)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "FIELD-LEVEL ACCURACY")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "%-10s %9s %9s %8s %8s %10s\n", "Field", "Accuracy", "Matched", "Wrong", "Missing", "Similarity")
	for _, field := range metadata.Fields {
		stats := a.Fields[field]
		fmt.Fprintf(w, "%-10s %8.1f%% %9d %8d %8d %9.1f%%\n",
			field, stats.Accuracy*100, stats.Matches, stats.Incorrect, stats.Missing, stats.AverageScore*100)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Overall Accuracy: %.2f%% (%.3f)\n", a.OverallAccuracy*100, a.OverallAccuracy)
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

// SaveToJSON saves the aggregate results to a JSON file
func (a *AggregateResults) SaveToJSON(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(a); err != nil {
		return fmt.Errorf("failed to encode results to JSON: %w", err)
	}

	return nil
}

// SaveDetailedReport saves a detailed report with individual results
func (a *AggregateResults) SaveDetailedReport(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "BOOKWORM EVALUATION DETAILED REPORT\n")
	fmt.Fprintf(file, "Generated: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Provider: %s, Model: %s\n", a.Provider, a.Model)
	separator := strings.Repeat("=", 80)
	fmt.Fprintf(file, "%s\n\n", separator)

	dash := strings.Repeat("-", 80)
	for i, result := range a.Results {
		fmt.Fprintf(file, "RECORD %d: %s\n", i+1, result.ID)
		fmt.Fprintf(file, "%s\n", dash)
		fmt.Fprintf(file, "Processing Time: %s\n", result.ProcessingTime)

		if result.Error != "" {
			fmt.Fprintf(file, "ERROR: %s\n", result.Error)
		} else if result.Comparison != nil {
			fmt.Fprintf(file, "\nField Comparisons:\n")
			for _, field := range metadata.Fields {
				fc := result.Comparison.Fields[field]
				mark := "FAIL"
				if fc.Match {
					mark = "OK"
				}
				fmt.Fprintf(file, "  %-10s [%s] %.2f - Expected: %s, Actual: %s\n", field, mark, fc.Score, fc.Expected, fc.Actual)
			}
			fmt.Fprintf(file, "\nOverall Score: %.2f%%\n", result.Comparison.OverallScore*100)
		}

		fmt.Fprintf(file, "\n%s\n\n", separator)
	}

	return nil
}
