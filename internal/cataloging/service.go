package cataloging

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/homelibrary/bookworm/internal/biblio"
	"github.com/homelibrary/bookworm/internal/llmjson"
	"github.com/homelibrary/bookworm/internal/metrics"
	"github.com/homelibrary/bookworm/internal/models"
	"github.com/homelibrary/bookworm/internal/normalize"
	"github.com/homelibrary/bookworm/internal/ocr"
	"github.com/homelibrary/bookworm/internal/prompts"
	"github.com/homelibrary/bookworm/internal/providers"
)

var (
	// ErrNoText means no region produced any recognized text.
	ErrNoText = errors.New("no OCR text")
	// ErrBadImage means an image in the request was not valid base64.
	ErrBadImage = errors.New("invalid base64 image")
)

// Options tunes the pipeline.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	// Timeout bounds each model call.
	Timeout time.Duration
	// Language is the recognition language when a request names none.
	Language string
	// ISBNLanguage adds a second recognition pass over info pages, used
	// only to find the ISBN. Empty disables it.
	ISBNLanguage string
	// CoverPass asks the model for the cover's title and author. Without it
	// the cover contributes pattern hints only.
	CoverPass bool
}

// Service runs the extraction pipeline
type Service struct {
	recognizer ocr.Recognizer
	provider   providers.Provider
	opts       Options
	parsers    map[prompts.Variant]*llmjson.Parser
}

// NewService returns a pipeline using rec for images and p for the model.
// rec may be nil when only text requests are served.
func NewService(rec ocr.Recognizer, p providers.Provider, opts Options) (*Service, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	s := &Service{
		recognizer: rec,
		provider:   p,
		opts:       opts,
		parsers:    make(map[prompts.Variant]*llmjson.Parser),
	}
	for _, v := range []prompts.Variant{prompts.Catalog, prompts.Cover} {
		parser, err := llmjson.NewParser(prompts.Schema(v))
		if err != nil {
			return nil, fmt.Errorf("failed to prepare %s parser: %w", v, err)
		}
		s.parsers[v] = parser
	}
	return s, nil
}

// Pages is the recognized text of one book, region by region.
type Pages struct {
	Cover string
	Info  []string
	// InfoLatin holds the info pages recognized in the ISBN language.
	InfoLatin []string
	Back      string

	// Set when the region's image was submitted, even if nothing was read.
	coverSent, backSent bool
}

// Trace renders the pages with region headers, in request order. A submitted
// region that recognized nothing keeps its header.
func (p Pages) Trace() string {
	var b strings.Builder
	if p.Cover != "" || p.coverSent {
		b.WriteString("=== COVER ===\n" + p.Cover + "\n")
	}
	for i, text := range p.Info {
		fmt.Fprintf(&b, "=== INFO PAGE %d ===\n%s\n", i+1, text)
	}
	if p.Back != "" || p.backSent {
		b.WriteString("=== BACK COVER ===\n" + p.Back + "\n")
	}
	return b.String()
}

func (p Pages) catalogText() string {
	var parts []string
	for _, text := range append(append([]string{}, p.Info...), p.Back) {
		if strings.TrimSpace(text) != "" {
			parts = append(parts, strings.TrimSpace(text))
		}
	}
	return strings.Join(parts, "\n\n")
}

func (p Pages) empty() bool {
	return strings.TrimSpace(p.Cover) == "" && strings.TrimSpace(p.catalogText()) == ""
}

// Extract recognizes the images in req and extracts the record.
func (s *Service) Extract(ctx context.Context, req models.Request) (models.Record, error) {
	pages, err := s.Recognize(ctx, req)
	if err != nil {
		return models.Record{}, err
	}
	return s.ExtractPages(ctx, pages)
}

// ExtractText extracts the record from text recognized elsewhere.
func (s *Service) ExtractText(ctx context.Context, req models.TextRequest) (models.Record, error) {
	pages := Pages{Cover: req.CoverText, Back: req.BackText}
	if req.InfoText != "" {
		pages.Info = []string{req.InfoText}
	}
	return s.ExtractPages(ctx, pages)
}

// Recognize runs OCR over every image of req, one region after another.
// A region that fails to recognize contributes no text.
func (s *Service) Recognize(ctx context.Context, req models.Request) (Pages, error) {
	var pages Pages
	if s.recognizer == nil {
		return pages, errors.New("no recognizer configured")
	}
	lang := req.Language
	if lang == "" {
		lang = s.opts.Language
	}

	if req.CoverImage != "" {
		img, err := decodeImage(req.CoverImage)
		if err != nil {
			return pages, fmt.Errorf("cover: %w", err)
		}
		pages.Cover = s.recognize(ctx, "cover", img, lang)
		pages.coverSent = true
	}
	for i, b64 := range req.InfoImages {
		img, err := decodeImage(b64)
		if err != nil {
			return pages, fmt.Errorf("info page %d: %w", i+1, err)
		}
		pages.Info = append(pages.Info, s.recognize(ctx, "info", img, lang))
		if s.opts.ISBNLanguage != "" && s.opts.ISBNLanguage != lang {
			pages.InfoLatin = append(pages.InfoLatin, s.recognize(ctx, "info_isbn", img, s.opts.ISBNLanguage))
		}
	}
	if req.BackImage != "" {
		img, err := decodeImage(req.BackImage)
		if err != nil {
			return pages, fmt.Errorf("back cover: %w", err)
		}
		pages.Back = s.recognize(ctx, "back", img, lang)
		pages.backSent = true
	}
	return pages, nil
}

func (s *Service) recognize(ctx context.Context, region string, img []byte, lang string) string {
	start := time.Now()
	text, err := s.recognizer.Recognize(ctx, img, lang)
	metrics.ObserveOCR(region, time.Since(start))
	if err != nil {
		Logger(ctx).Warn("OCR failed", "region", region, "error", err)
		return ""
	}
	Logger(ctx).Debug("Extracted OCR text", "region", region, "lang", lang, "length", len(text))
	return text
}

func decodeImage(b64 string) ([]byte, error) {
	// Accept data URLs as produced by browsers.
	if i := strings.Index(b64, ";base64,"); i >= 0 && strings.HasPrefix(b64, "data:") {
		b64 = b64[i+len(";base64,"):]
	}
	img, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	return img, nil
}

// ExtractPages runs hints, model and normalization over recognized pages.
// The catalog pages produce the full record; the cover fills in a missing
// title or author.
func (s *Service) ExtractPages(ctx context.Context, pages Pages) (models.Record, error) {
	if pages.empty() {
		metrics.Extractions.WithLabelValues("no_text").Inc()
		return models.Record{}, ErrNoText
	}

	modelUsed := false
	var catalog models.Record
	if text := pages.catalogText(); text != "" {
		hints := biblio.Collect(text, strings.Join(pages.InfoLatin, "\n\n"))
		var ok bool
		catalog, ok = s.run(ctx, prompts.Catalog, text, hints, true)
		modelUsed = modelUsed || ok
	}

	var cover models.Partial
	if text := strings.TrimSpace(pages.Cover); text != "" {
		hints := biblio.CollectCover(text)
		rec, ok := s.run(ctx, prompts.Cover, text, hints, s.opts.CoverPass)
		cover = models.Partial{Title: rec.Title, Author: rec.Author}
		modelUsed = modelUsed || ok
	}

	rec := Merge(cover, catalog)
	rec.RawOCR = pages.Trace()

	outcome := "fallback"
	if modelUsed {
		outcome = "model"
	}
	metrics.Extractions.WithLabelValues(outcome).Inc()
	Logger(ctx).Info("Extracted metadata", "outcome", outcome, "title", rec.Title, "author", rec.Author, "isbn", rec.ISBN)
	return rec, nil
}

// run asks the model for variant v and normalizes the answer. When the model
// is skipped or fails, the hints are normalized instead; the bool reports
// whether the model answer was used.
func (s *Service) run(ctx context.Context, v prompts.Variant, text string, hints biblio.Hints, useModel bool) (models.Record, bool) {
	if useModel && s.provider != nil {
		draft, err := s.complete(ctx, v, text, hints)
		if err == nil {
			return normalize.Record(draft, hints), true
		}
		Logger(ctx).Warn("Model extraction failed, using pattern hints", "variant", v.String(), "error", err)
	}
	return normalize.Record(normalize.FromHints(hints), hints), false
}

func (s *Service) complete(ctx context.Context, v prompts.Variant, text string, hints biblio.Hints) (models.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	out, err := s.provider.ExtractText(ctx, providers.Config{
		Model:       s.opts.Model,
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
		Prompt:      prompts.Build(v, text, hints),
		JSON:        true,
	})
	if err != nil {
		result := "error"
		if providers.Rejected(err) {
			result = "rejected"
		}
		metrics.ObserveLLM(v.String(), result, time.Since(start))
		return models.Record{}, fmt.Errorf("model call failed: %w", err)
	}

	obj, err := s.parsers[v].Parse(out)
	if err != nil {
		result := "invalid"
		switch {
		case errors.Is(err, llmjson.ErrNoJSONFound):
			result = "no_json"
		case errors.Is(err, llmjson.ErrSchemaMismatch):
			result = "schema"
		}
		metrics.ObserveLLM(v.String(), result, time.Since(start))
		Logger(ctx).Debug("Unusable model response", "variant", v.String(), "response", out)
		return models.Record{}, err
	}

	metrics.ObserveLLM(v.String(), "ok", time.Since(start))
	return normalize.FromModel(obj), nil
}
