package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/homelibrary/bookworm/internal/cataloging"
	"github.com/homelibrary/bookworm/internal/config"
	"github.com/homelibrary/bookworm/internal/gemini"
	"github.com/homelibrary/bookworm/internal/ocr"
	"github.com/homelibrary/bookworm/internal/ocr/tesseract"
	"github.com/homelibrary/bookworm/internal/ollama"
	"github.com/homelibrary/bookworm/internal/openai"
	"github.com/homelibrary/bookworm/internal/providers"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookworm",
		Short: "Bibliographic metadata extraction from book cover and catalog-page photos",
		Long: `Bookworm recognizes the text of a book's cover, catalog pages and back cover,
and extracts title, author, publisher, year, ISBN, UDK and BBK with pattern
matching and a language model.

It runs as an HTTP service, as a one-shot command, and as an evaluation
harness against expected records.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./bookworm.yaml or $HOME/.bookworm/bookworm.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	flags.String("provider", "", "Model provider: ollama, openai or gemini")
	flags.String("model", "", "Model name (defaults to the provider's default)")
	flags.String("ocr-engine", "", "OCR engine: tesseract or vision")
	flags.String("language", "", "Default recognition language, e.g. rus+eng")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func buildProvider(cfg *config.Config) (providers.Provider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.New(cfg.OllamaURL), nil
	case "openai":
		return openai.New(cfg.OpenAIKey, cfg.OpenAIURL)
	case "gemini":
		return gemini.New(cfg.GeminiKey)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

func buildRecognizer(cfg *config.Config) ocr.Recognizer {
	if cfg.OCREngine == "vision" {
		return ocr.NewVision(ollama.New(cfg.OllamaURL), cfg.OCRModel)
	}
	return tesseract.New()
}

// buildService wires the pipeline and returns the breaker guarding the model.
func buildService(cfg *config.Config) (*cataloging.Service, *providers.Guarded, error) {
	p, err := buildProvider(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s provider: %w", cfg.Provider, err)
	}
	guarded := providers.NewGuarded(p, providers.BreakerSettings{
		Name:                cfg.Provider,
		MaxRequests:         cfg.Breaker.MaxRequests,
		Interval:            cfg.Breaker.Interval,
		Timeout:             cfg.Breaker.Timeout,
		ConsecutiveFailures: cfg.Breaker.Failures,
	})

	svc, err := cataloging.NewService(buildRecognizer(cfg), guarded, cataloging.Options{
		Model:        cfg.Model,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
		Timeout:      cfg.LLMTimeout,
		Language:     cfg.Language,
		ISBNLanguage: cfg.ISBNLanguage,
		CoverPass:    cfg.CoverPass,
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Debug("Pipeline ready", "provider", cfg.Provider, "model", cfg.Model, "ocr_engine", cfg.OCREngine, "language", cfg.Language)
	return svc, guarded, nil
}
