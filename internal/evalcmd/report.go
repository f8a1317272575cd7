package evalcmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/homelibrary/bookworm/internal/eval/metadata"
	"github.com/homelibrary/bookworm/internal/eval/results"
)

func executeReport(w io.Writer, resultsPath, format string) error {
	spec, err := results.LoadYAML(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	switch format {
	case "text":
		return printTextReport(w, spec)
	case "json":
		return printJSONReport(w, spec)
	case "csv":
		return printCSVReport(w, spec)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(w io.Writer, spec results.EvalSpec) error {
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintln(w, "Metadata Extraction Evaluation Report")
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintf(w, "Provider: %s\n", spec.Config.Provider)
	fmt.Fprintf(w, "Model:    %s\n", spec.Config.Model)
	fmt.Fprintf(w, "Run:      %s\n", spec.Config.Timestamp)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total: %d  Successful: %d  Failed: %d\n", spec.Summary.Total, spec.Summary.Successful, spec.Summary.Failed)
	fmt.Fprintf(w, "Overall Accuracy: %.2f%%\n", spec.Summary.OverallAccuracy*100)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Field Accuracies:")
	for _, field := range metadata.Fields {
		fs := spec.Summary.Fields[field]
		fmt.Fprintf(w, "  %-10s %6.2f%%  (similarity %.2f%%)\n", field, fs.Accuracy*100, fs.Similarity*100)
	}

	fmt.Fprintln(w, "\nDetailed Results:")
	fmt.Fprintln(w, strings.Repeat("=", 40))
	for i, result := range spec.Results {
		fmt.Fprintf(w, "\n[%d] %s\n", i+1, result.Identifier)
		if result.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", result.Error)
			continue
		}
		fmt.Fprintf(w, "  Overall Score: %.2f%%\n", result.OverallScore*100)

		var mismatched []string
		for field, fr := range result.Fields {
			if !fr.Match {
				mismatched = append(mismatched, field)
			}
		}
		sort.Strings(mismatched)
		for _, field := range mismatched {
			fr := result.Fields[field]
			fmt.Fprintf(w, "    %s (%.0f%% similar):\n", field, fr.Score*100)
			fmt.Fprintf(w, "      Expected:  %s\n", truncate(fr.Expected, 80))
			fmt.Fprintf(w, "      Extracted: %s\n", truncate(fr.Actual, 80))
		}
	}

	return nil
}

func printJSONReport(w io.Writer, spec results.EvalSpec) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(spec)
}

func printCSVReport(w io.Writer, spec results.EvalSpec) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"ID", "Overall Score", "Error"}
	for _, field := range metadata.Fields {
		header = append(header, "match_"+field)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, result := range spec.Results {
		row := []string{result.Identifier, fmt.Sprintf("%.4f", result.OverallScore), result.Error}
		for _, field := range metadata.Fields {
			row = append(row, fmt.Sprint(result.Fields[field].Match))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
