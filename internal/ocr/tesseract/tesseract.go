// Package tesseract recognizes text with the linked Tesseract library. It
// needs libtesseract and leptonica at build time, so it is kept apart from
// the ocr package that the pipeline and its tests depend on.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/homelibrary/bookworm/internal/ocr"
)

// Tesseract is an ocr.Recognizer backed by gosseract.
type Tesseract struct{}

var _ ocr.Recognizer = (*Tesseract)(nil)

// New returns a Tesseract recognizer
func New() *Tesseract {
	return &Tesseract{}
}

// Recognize performs OCR using Tesseract
func (t *Tesseract) Recognize(ctx context.Context, image []byte, lang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if langs := ocr.Languages(lang); len(langs) > 0 {
		if err := client.SetLanguage(langs...); err != nil {
			return "", fmt.Errorf("failed to set language %q: %w", lang, err)
		}
	}

	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract OCR failed: %w", err)
	}
	return text, nil
}
