package evalcmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/homelibrary/bookworm/internal/eval/dataset"
	"github.com/spf13/cobra"
)

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var datasetPath string
	var limit int
	var interactive bool
	var showOCR bool
	var showMetadata bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect evaluation cases",
		Long: `Inspect evaluation cases from a fixture directory, parquet or jsonl file.

Shows the expected record and the page text or images of every case.`,
		Example: `  # Inspect first 5 cases interactively
  bookworm eval inspect --dataset ./data.parquet --limit 5 --interactive

  # Show only OCR text
  bookworm eval inspect --dataset ./data.parquet --metadata=false

  # Inspect all cases (no limit)
  bookworm eval inspect --dataset ./data.parquet --limit 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetPath == "" {
				return fmt.Errorf("--dataset is required")
			}

			// Create a context that gets canceled on an interrupt signal (Ctrl+C)
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop() // Ensure the signal handler is cleaned up

			return executeInspect(ctx, datasetPath, limit, interactive, showOCR, showMetadata)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Fixture directory, parquet or jsonl file (required)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of cases to inspect (0 for all)")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Pause after each case (press Enter to continue)")
	cmd.Flags().BoolVar(&showOCR, "ocr", true, "Show page text or image paths")
	cmd.Flags().BoolVar(&showMetadata, "metadata", true, "Show the expected record")

	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func executeInspect(ctx context.Context, datasetPath string, limit int, interactive, showOCR, showMetadata bool) error {
	cases, err := dataset.NewLoader(datasetPath).LoadSample(limit)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	fmt.Printf("Loaded %d cases from %s\n", len(cases), datasetPath)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	for i, c := range cases {
		// Check for context cancellation (e.g., Ctrl+C) at the start of each iteration
		select {
		case <-ctx.Done():
			fmt.Println("\nInspection interrupted.")
			return nil
		default:
		}

		fmt.Printf("CASE %d/%d: %s\n", i+1, len(cases), c.ID)
		fmt.Println(strings.Repeat("-", 80))

		if showMetadata {
			fmt.Printf("Language:   %s\n", c.Language)
			fmt.Printf("Title:      %s\n", c.Expected.Title)
			fmt.Printf("Author:     %s\n", c.Expected.Author)
			fmt.Printf("Publisher:  %s\n", c.Expected.Publisher)
			fmt.Printf("Year:       %s\n", c.Expected.Year)
			fmt.Printf("ISBN:       %s\n", c.Expected.ISBN)
			fmt.Printf("UDK:        %s\n", c.Expected.UDK)
			fmt.Printf("BBK:        %s\n", c.Expected.BBK)
			fmt.Println()
		}

		if showOCR {
			if c.HasImages() {
				fmt.Printf("Cover image: %s\n", c.CoverPath)
				for n, path := range c.InfoPaths {
					fmt.Printf("Info page %d: %s\n", n+1, path)
				}
				fmt.Printf("Back image:  %s\n", c.BackPath)
			} else {
				printText("COVER", c.CoverText)
				printText("INFO", c.InfoText)
				printText("BACK", c.BackText)
			}
		}

		fmt.Println()

		if interactive {
			fmt.Print("Press Enter to continue to next case (or Ctrl+C to quit)...")

			inputCh := make(chan struct{})
			go func() {
				_, _ = reader.ReadString('\n')
				close(inputCh)
			}()

			select {
			case <-ctx.Done():
				fmt.Println("\nInspection interrupted.")
				return nil
			case <-inputCh:
				fmt.Println()
			}
		}
	}

	return nil
}

func printText(region, text string) {
	if text == "" {
		return
	}
	const maxChars = 500
	display := truncate(text, maxChars)
	fmt.Printf("%s TEXT (%d characters, %d words):\n", region, len([]rune(text)), len(strings.Fields(text)))
	fmt.Println(strings.Repeat("-", 80))
	fmt.Println(display)
	fmt.Println(strings.Repeat("-", 80))
}
