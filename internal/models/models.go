package models

import (
	"encoding/json"
	"strings"
)

// Unknown is written for every absent string field on the wire. Inside the
// program an absent string is "" and an absent year is 0.
const Unknown = "unknown"

// Record is the bibliographic description produced for one book
type Record struct {
	Title      string
	Author     string
	Publisher  string
	Year       int
	ISBN       string
	UDK        string
	BBK        string
	Annotation string
	// RawOCR is the recognized text of every region, for debugging.
	RawOCR string
}

// Authors is [Author] when the author is known and empty otherwise.
func (r Record) Authors() []string {
	if r.Author == "" {
		return []string{}
	}
	return []string{r.Author}
}

// Partial is what a cover can tell about a book
type Partial struct {
	Title  string
	Author string
}

type recordJSON struct {
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Authors    []string `json:"authors"`
	Publisher  string   `json:"publisher"`
	Year       int      `json:"year"`
	ISBN       string   `json:"isbn"`
	UDK        string   `json:"udk"`
	BBK        string   `json:"bbk"`
	Annotation string   `json:"annotation"`
	RawOCR     string   `json:"raw_ocr"`
}

// MarshalJSON writes every field, using Unknown for absent strings.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Title:      orUnknown(r.Title),
		Author:     orUnknown(r.Author),
		Authors:    r.Authors(),
		Publisher:  orUnknown(r.Publisher),
		Year:       r.Year,
		ISBN:       orUnknown(r.ISBN),
		UDK:        orUnknown(r.UDK),
		BBK:        orUnknown(r.BBK),
		Annotation: orUnknown(r.Annotation),
		RawOCR:     r.RawOCR,
	})
}

// UnmarshalJSON reads a record written by MarshalJSON or by hand, turning
// Unknown back into "".
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{
		Title:      FromWire(raw.Title),
		Author:     FromWire(raw.Author),
		Publisher:  FromWire(raw.Publisher),
		Year:       max(raw.Year, 0),
		ISBN:       FromWire(raw.ISBN),
		UDK:        FromWire(raw.UDK),
		BBK:        FromWire(raw.BBK),
		Annotation: FromWire(raw.Annotation),
		RawOCR:     raw.RawOCR,
	}
	if r.Author == "" && len(raw.Authors) > 0 {
		r.Author = FromWire(raw.Authors[0])
	}
	return nil
}

// FromWire trims s and maps Unknown (in any letter case) to "".
func FromWire(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, Unknown) {
		return ""
	}
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

// Request carries base64-encoded page images to recognize.
type Request struct {
	CoverImage string   `json:"cover_image,omitempty"`
	InfoImages []string `json:"info_images,omitempty"`
	BackImage  string   `json:"back_image,omitempty"`
	// Language is a recognition language such as "rus+eng".
	Language string `json:"language,omitempty"`
}

// TextRequest carries page text that was recognized elsewhere.
type TextRequest struct {
	CoverText string `json:"cover_text,omitempty"`
	InfoText  string `json:"info_text,omitempty"`
	BackText  string `json:"back_text,omitempty"`
}
