package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/homelibrary/bookworm/internal/providers"
)

// DefaultURL is used when no base URL is configured.
const DefaultURL = "http://localhost:11434"

// Ollama is a provider for Ollama
type Ollama struct {
	baseURL string
	client  *http.Client
}

// New returns a new Ollama provider for the server at baseURL
func New(baseURL string) *Ollama {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

// BaseURL returns the server address
func (o *Ollama) BaseURL() string {
	return o.baseURL
}

// ExtractText extracts text from the given prompt using Ollama
func (o *Ollama) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	return o.Generate(ctx, config, nil)
}

// Generate calls /api/generate. Images are base64-encoded and only make sense
// for vision models.
func (o *Ollama) Generate(ctx context.Context, config providers.Config, images []string) (string, error) {
	options := map[string]interface{}{
		"temperature": config.Temperature,
	}
	if config.MaxTokens > 0 {
		options["num_predict"] = config.MaxTokens
	}
	body := map[string]interface{}{
		"model":   config.Model,
		"prompt":  config.Prompt,
		"stream":  false,
		"options": options,
	}
	if len(images) > 0 {
		body["images"] = images
	}
	if config.JSON {
		body["format"] = "json"
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/api/generate", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}
