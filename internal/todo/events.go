package todo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GET /api/todos/events streams a snapshot after every change to the
// request's list, starting with the current state.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	s := h.storeForRequest(r)
	rc := http.NewResponseController(w)

	// Streams outlive the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	updates := make(chan Change, 16)
	unsubscribe := s.Subscribe(func(c Change) {
		select {
		case updates <- c:
		default:
			// Each change carries the full state, so a slow client only
			// needs the newest one.
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- c:
			default:
			}
		}
	})
	defer unsubscribe()

	if err := writeEvent(w, "snapshot", s.Snapshot()); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		return
	}

	heartbeat := h.heartbeat
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case c := <-updates:
			if err := writeEvent(w, "change", c); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, b)
	return err
}
