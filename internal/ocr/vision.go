package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/homelibrary/bookworm/internal/providers"
)

// Generator is a vision model endpoint that accepts base64 images.
type Generator interface {
	Generate(ctx context.Context, config providers.Config, images []string) (string, error)
}

// Vision recognizes text by asking a vision model to transcribe the page.
type Vision struct {
	gen      Generator
	model    string
	attempts uint
	delay    time.Duration
}

// NewVision returns a vision recognizer using model on gen.
func NewVision(gen Generator, model string) *Vision {
	return &Vision{gen: gen, model: model, attempts: 3, delay: time.Second}
}

const visionPrompt = `You are performing OCR (Optical Character Recognition) on a photograph of a book page.

Your task is to extract ALL visible text from the image exactly as it appears, preserving:
- Line breaks and formatting
- Capitalization
- Punctuation
- Special characters
- Order of text elements

The text is in: %s.

INSTRUCTIONS:
1. Read the image carefully from top to bottom
2. Transcribe every piece of visible text
3. Preserve the original line breaks and the blank lines between blocks
4. Do not add any interpretation, commentary, or explanations
5. Do not translate or transliterate; keep the original script
6. If text is partially obscured or unclear, transcribe what you can see

OUTPUT FORMAT:
Provide ONLY the extracted text. Do not include phrases like "Here is the text:".`

// Recognize transcribes image. Transport failures are retried; a cancelled
// context is not.
func (v *Vision) Recognize(ctx context.Context, image []byte, lang string) (string, error) {
	config := providers.Config{
		Model:       v.model,
		Temperature: 0,
		Prompt:      fmt.Sprintf(visionPrompt, LanguageNames(lang)),
	}
	images := []string{base64.StdEncoding.EncodeToString(image)}

	var text string
	err := retry.Do(
		func() error {
			out, err := v.gen.Generate(ctx, config, images)
			if err != nil {
				return err
			}
			text = out
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(v.attempts),
		retry.Delay(v.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Retrying vision OCR", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to recognize image: %w", err)
	}

	slog.Debug("Extracted OCR text", "engine", "vision", "model", v.model, "length", len(text))
	return text, nil
}
