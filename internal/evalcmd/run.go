package evalcmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/homelibrary/bookworm/internal/eval/dataset"
	"github.com/homelibrary/bookworm/internal/eval/metadata"
	"github.com/homelibrary/bookworm/internal/eval/metrics"
	"github.com/homelibrary/bookworm/internal/models"
)

// Extractor runs the metadata pipeline.
type Extractor interface {
	Extract(ctx context.Context, req models.Request) (models.Record, error)
	ExtractText(ctx context.Context, req models.TextRequest) (models.Record, error)
}

// Setup is the pipeline under evaluation and how it was configured.
type Setup struct {
	Extractor   Extractor
	Provider    string
	Model       string
	Temperature float64
}

func executeRun(ctx context.Context, ex Extractor, cases []dataset.Case, concurrency int) []metrics.EvaluationResult {
	if concurrency < 1 {
		concurrency = 1
	}
	slog.Info("Processing cases", "cases", len(cases), "concurrency", concurrency)

	results := make([]metrics.EvaluationResult, len(cases))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrency)

	for i, c := range cases {
		wg.Add(1)
		go func(idx int, c dataset.Case) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Info("Processing case", "id", c.ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(cases)))
			results[idx] = processCase(ctx, ex, c)
		}(i, c)
	}
	wg.Wait()

	return results
}

func processCase(ctx context.Context, ex Extractor, c dataset.Case) metrics.EvaluationResult {
	result := metrics.EvaluationResult{
		ID:       c.ID,
		Language: c.Language,
	}

	start := time.Now()
	var rec models.Record
	var err error
	if c.HasImages() {
		var req models.Request
		req, err = imageRequest(c)
		if err == nil {
			rec, err = ex.Extract(ctx, req)
		}
	} else {
		rec, err = ex.ExtractText(ctx, models.TextRequest{
			CoverText: c.CoverText,
			InfoText:  c.InfoText,
			BackText:  c.BackText,
		})
	}
	result.ProcessingTime = time.Since(start)

	if err != nil {
		slog.Warn("Case failed", "id", c.ID, "error", err)
		result.Error = err.Error()
		return result
	}

	result.Record = rec
	result.Comparison = metadata.CompareRecord(c.Expected, rec)
	return result
}

func imageRequest(c dataset.Case) (models.Request, error) {
	req := models.Request{Language: c.Language}
	var err error
	if c.CoverPath != "" {
		if req.CoverImage, err = encodeImage(c.CoverPath); err != nil {
			return req, err
		}
	}
	for _, path := range c.InfoPaths {
		b64, err := encodeImage(path)
		if err != nil {
			return req, err
		}
		req.InfoImages = append(req.InfoImages, b64)
	}
	if c.BackPath != "" {
		if req.BackImage, err = encodeImage(c.BackPath); err != nil {
			return req, err
		}
	}
	return req, nil
}

func encodeImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
