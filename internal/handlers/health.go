package handlers

import (
	"log/slog"
	"net/http"
)

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}

// HandleHealth reports whether model calls are currently let through. An
// open breaker still serves requests from pattern hints, so the status stays
// 200.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	state := "closed"
	if h.breaker != nil {
		state = h.breaker.State()
	}
	status := "ok"
	if state != "closed" {
		status = "degraded"
	}
	h.writeJSON(w, map[string]string{
		"status": status,
		"model":  state,
	})
}
