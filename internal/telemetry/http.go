package telemetry

import (
	"encoding/json"
	"net/http"
	"time"
)

type Handler struct {
	repo            Repository
	sessionResolver func(*http.Request) string
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// SetSessionResolver scopes stats to the request's session.
func (h *Handler) SetSessionResolver(fn func(*http.Request) string) {
	h.sessionResolver = fn
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

// GET /api/stats[?since=RFC3339]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	sessionID := ""
	if h.sessionResolver != nil {
		sessionID = h.sessionResolver(r)
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		since = t
	}

	events, err := h.repo.GetEvents(sessionID, since, nil)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	stats, err := CalculateStats(events, since)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
