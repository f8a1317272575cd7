package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/homelibrary/bookworm/internal/cataloging"
	"github.com/homelibrary/bookworm/internal/models"
)

// HandleExtract accepts base64 images as JSON, or image files as
// multipart/form-data under "cover", "info" (repeatable) and "back".
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req models.Request
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		req, err = h.readForm(r)
	} else {
		err = json.NewDecoder(r.Body).Decode(&req)
	}
	if err != nil {
		h.writeDecodeError(w, err)
		return
	}

	rec, err := h.extractor.Extract(r.Context(), req)
	h.respond(w, r, rec, err)
}

// HandleExtractText runs the pipeline over text recognized by the caller.
func (h *Handler) HandleExtractText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req models.TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeDecodeError(w, err)
		return
	}

	rec, err := h.extractor.ExtractText(r.Context(), req)
	h.respond(w, r, rec, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, rec models.Record, err error) {
	switch {
	case err == nil:
		h.writeJSON(w, rec)
	case errors.Is(err, cataloging.ErrNoText):
		h.writeError(w, "No OCR text extracted from images", http.StatusBadRequest)
	case errors.Is(err, cataloging.ErrBadImage):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	default:
		cataloging.Logger(r.Context()).Error("Extraction failed", "error", err)
		h.writeError(w, "Extraction failed", http.StatusInternalServerError)
	}
}

func (h *Handler) writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.writeError(w, fmt.Sprintf("Request too large (max %d bytes)", tooLarge.Limit), http.StatusRequestEntityTooLarge)
		return
	}
	h.writeError(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
}

// readForm turns uploaded files into the base64 form the pipeline takes.
func (h *Handler) readForm(r *http.Request) (models.Request, error) {
	var req models.Request
	if err := r.ParseMultipartForm(h.maxBodyBytes); err != nil {
		return req, err
	}
	req.Language = r.FormValue("language")

	files := r.MultipartForm.File
	var err error
	if req.CoverImage, err = firstFile(files["cover"]); err != nil {
		return req, err
	}
	for _, fh := range files["info"] {
		b64, err := encodeFile(fh)
		if err != nil {
			return req, err
		}
		req.InfoImages = append(req.InfoImages, b64)
	}
	if req.BackImage, err = firstFile(files["back"]); err != nil {
		return req, err
	}
	return req, nil
}

func firstFile(headers []*multipart.FileHeader) (string, error) {
	if len(headers) == 0 {
		return "", nil
	}
	return encodeFile(headers[0])
}

func encodeFile(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
