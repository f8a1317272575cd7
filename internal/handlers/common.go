package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/homelibrary/bookworm/internal/cataloging"
	"github.com/homelibrary/bookworm/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Extractor runs the metadata pipeline.
type Extractor interface {
	Extract(ctx context.Context, req models.Request) (models.Record, error)
	ExtractText(ctx context.Context, req models.TextRequest) (models.Record, error)
}

// StateReporter reports the model circuit breaker state.
type StateReporter interface {
	State() string
}

type Handler struct {
	extractor    Extractor
	breaker      StateReporter
	maxBodyBytes int64
}

// New returns handlers serving ex. breaker may be nil.
func New(ex Extractor, breaker StateReporter, maxBodyBytes int64) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 32 << 20
	}
	return &Handler{
		extractor:    ex,
		breaker:      breaker,
		maxBodyBytes: maxBodyBytes,
	}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/extract", h.withRequestID(h.HandleExtract))
	mux.HandleFunc("/extract-metadata", h.withRequestID(h.HandleExtractText))
	mux.HandleFunc("/healthcheck", h.HandleHealthcheck)
	mux.HandleFunc("/health", h.HandleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// withRequestID tags the request's log lines and response with a fresh id.
func (h *Handler) withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		logger := slog.Default().With("request_id", id)
		next(w, r.WithContext(cataloging.WithLogger(r.Context(), logger)))
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"detail": message}); err != nil {
		slog.Error("Unable to encode JSON error", "err", err)
	}
}
