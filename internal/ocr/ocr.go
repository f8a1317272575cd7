// Package ocr turns page images into text.
package ocr

import (
	"context"
	"strings"
)

// Recognizer reads the text in an image. lang is a Tesseract style language
// tag such as "rus", "eng" or "rus+eng". An empty result is not an error.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, lang string) (string, error)
}

// Languages splits a tag like "rus+eng" into its parts.
func Languages(tag string) []string {
	var langs []string
	for _, l := range strings.Split(tag, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

var languageNames = map[string]string{
	"rus": "Russian",
	"eng": "English",
	"ukr": "Ukrainian",
	"bel": "Belarusian",
	"deu": "German",
	"fra": "French",
}

// LanguageNames spells out a language tag for a prompt: "Russian, English".
func LanguageNames(tag string) string {
	var names []string
	for _, l := range Languages(tag) {
		if name, ok := languageNames[l]; ok {
			names = append(names, name)
		} else {
			names = append(names, l)
		}
	}
	return strings.Join(names, ", ")
}
