package evalcmd

import (
	"fmt"
	"os"

	"github.com/homelibrary/bookworm/internal/eval/dataset"
	"github.com/homelibrary/bookworm/internal/eval/metrics"
	"github.com/homelibrary/bookworm/internal/eval/results"
	"github.com/spf13/cobra"
)

// SetupFunc builds the pipeline for a run from the command's configuration.
type SetupFunc func(cmd *cobra.Command) (*Setup, error)

// NewRunCmd creates the run command
func NewRunCmd(setup SetupFunc) *cobra.Command {
	var datasetPath string
	var sampleSize int
	var concurrency int
	var outputYAML string
	var outputJSON string
	var outputReport string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run metadata extraction against expected records",
		Long: `Runs the extraction pipeline over every evaluation case and compares each
field with the expected record.

Cases come from a fixture directory laid out as <root>/<language>/<book>/
with expected.json and cover, info, info1..info4 and back images, or from a
.jsonl or .parquet file of recognized text.`,
		Example: `  # Evaluate image fixtures with the configured provider
  bookworm eval run --dataset ./test_data

  # Evaluate 50 text cases with OpenAI, two at a time
  bookworm eval run --dataset cases.parquet --sample 50 --concurrency 2 --provider openai`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(datasetPath); err != nil {
				return fmt.Errorf("dataset not found: %s", datasetPath)
			}

			s, err := setup(cmd)
			if err != nil {
				return err
			}

			cases, err := dataset.NewLoader(datasetPath).LoadSample(sampleSize)
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}

			evalResults := executeRun(cmd.Context(), s.Extractor, cases, concurrency)
			agg := metrics.AggregateEvaluationResults(evalResults, s.Provider, s.Model)
			agg.PrintSummary(cmd.OutOrStdout())

			if outputJSON != "" {
				if err := agg.SaveToJSON(outputJSON); err != nil {
					return err
				}
			}
			if outputReport != "" {
				if err := agg.SaveDetailedReport(outputReport); err != nil {
					return err
				}
			}
			if outputYAML != "" {
				spec := results.Build(results.EvalConfig{
					Provider:    s.Provider,
					Model:       s.Model,
					Temperature: s.Temperature,
					DatasetPath: datasetPath,
					SampleSize:  len(cases),
				}, agg)
				path, err := results.SaveToYAML(outputYAML, spec)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nEvaluation results saved to: %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Fixture directory, parquet or jsonl file (required)")
	cmd.Flags().IntVar(&sampleSize, "sample", 0, "Number of cases to evaluate (0 for all)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Cases processed at once")
	cmd.Flags().StringVar(&outputYAML, "output-yaml", "evals", "Directory for the YAML report (empty to skip)")
	cmd.Flags().StringVar(&outputJSON, "output-json", "", "Path to a JSON summary")
	cmd.Flags().StringVar(&outputReport, "output-report", "", "Path to a detailed text report")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a saved evaluation report",
		Example: `  bookworm eval report --results evals/qwen2.5_7b-instruct-2026-01-02_03-04-05.yaml
  bookworm eval report --results evals/run.yaml --format csv > run.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(cmd.OutOrStdout(), resultsPath, format)
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "YAML report written by eval run (required)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or csv")

	_ = cmd.MarkFlagRequired("results")
	return cmd
}
