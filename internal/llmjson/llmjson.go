// Package llmjson pulls a single JSON object out of free-form model output.
package llmjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	// ErrNoJSONFound is returned when the response has no {...} span.
	ErrNoJSONFound = errors.New("no JSON found")
	// ErrSchemaMismatch is returned when the object does not have the
	// requested shape.
	ErrSchemaMismatch = errors.New("response does not match schema")
)

var (
	fenceOpenRe  = regexp.MustCompile("^```(?:json|JSON)?\\s*")
	fenceCloseRe = regexp.MustCompile("\\s*```$")
	objectRe     = regexp.MustCompile(`(?s)\{.*\}`)
)

// Extract strips a markdown fence and returns the span from the first "{"
// to the last "}".
func Extract(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = fenceOpenRe.ReplaceAllString(text, "")
	text = fenceCloseRe.ReplaceAllString(text, "")
	span := objectRe.FindString(text)
	if span == "" {
		return "", ErrNoJSONFound
	}
	return span, nil
}

// Decode extracts the object from text and decodes it.
func Decode(text string) (map[string]any, error) {
	span, err := Extract(text)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return nil, fmt.Errorf("failed to decode model JSON: %w", err)
	}
	return obj, nil
}

// Parser decodes responses and checks them against a compiled schema.
type Parser struct {
	schema *jsonschema.Schema
}

// NewParser compiles schema, a JSON schema document.
func NewParser(schema []byte) (*Parser, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Parser{schema: compiled}, nil
}

// Parse decodes the object in text and validates it.
func (p *Parser) Parse(text string) (map[string]any, error) {
	obj, err := Decode(text)
	if err != nil {
		return nil, err
	}
	if err := p.schema.Validate(obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return obj, nil
}

