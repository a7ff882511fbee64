package todo

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"
)

type Handler struct {
	store         *Store
	storeResolver func(*http.Request) *Store
	heartbeat     time.Duration
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store, heartbeat: 25 * time.Second}
}

// SetStoreResolver picks the list a request operates on (one per session).
func (h *Handler) SetStoreResolver(fn func(*http.Request) *Store) {
	h.storeResolver = fn
}

// SetHeartbeat sets how often an idle event stream sends a keep-alive comment.
func (h *Handler) SetHeartbeat(d time.Duration) {
	h.heartbeat = d
}

func (h *Handler) storeForRequest(r *http.Request) *Store {
	if h.storeResolver != nil {
		if s := h.storeResolver(r); s != nil {
			return s
		}
	}
	return h.store
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Patch is a partial update. nil => no change.
type Patch struct {
	Value   *string `json:"value,omitempty"`
	Checked *bool   `json:"checked,omitempty"`
	Removed *bool   `json:"removed,omitempty"`
}

// Apply runs the edit, check and remove operations the patch asks for,
// in that order.
func (p Patch) Apply(s *Store, id int) {
	if p.Value != nil {
		s.Edit(id, *p.Value)
	}
	if p.Checked != nil {
		s.SetChecked(id, *p.Checked)
	}
	if p.Removed != nil {
		s.SetRemoved(id, *p.Removed)
	}
}

type createResponse struct {
	Added bool     `json:"added"`
	Task  *Task    `json:"task,omitempty"`
	State Snapshot `json:"state"`
}

// GET /api/todos[?filter=x]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	s := h.storeForRequest(r)
	raw := r.URL.Query().Get("filter")
	if raw == "" {
		writeJSON(w, http.StatusOK, s.Snapshot())
		return
	}
	f, err := ParseFilter(raw)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.SnapshotFor(f))
}

// POST /api/todos
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.storeForRequest(r)
	var in struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	t, ok := s.Add(in.Value)
	if !ok {
		writeJSON(w, http.StatusOK, createResponse{Added: false, State: s.Snapshot()})
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{Added: true, Task: &t, State: s.Snapshot()})
}

// PATCH /api/todos/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	s := h.storeForRequest(r)
	id, ok := pathID(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "bad id")
		return
	}
	var p Patch
	if err := decodeJSON(r, &p); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	p.Apply(s, id)
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// DELETE /api/todos/{id} moves the task to the trash.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	h.setRemoved(w, r, true)
}

// POST /api/todos/{id}/restore
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	h.setRemoved(w, r, false)
}

func (h *Handler) setRemoved(w http.ResponseWriter, r *http.Request, removed bool) {
	s := h.storeForRequest(r)
	id, ok := pathID(r)
	if !ok {
		writeErr(w, http.StatusBadRequest, "bad id")
		return
	}
	s.SetRemoved(id, removed)
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// POST /api/trash/empty
func (h *Handler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	s := h.storeForRequest(r)
	s.EmptyTrash()
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// PUT /api/filter
func (h *Handler) SetFilter(w http.ResponseWriter, r *http.Request) {
	s := h.storeForRequest(r)
	var in struct {
		Filter *Filter `json:"filter"`
	}
	if err := decodeJSON(r, &in); err != nil {
		if errors.Is(err, ErrUnknownFilter) {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if in.Filter == nil {
		writeErr(w, http.StatusBadRequest, "filter is required")
		return
	}
	s.SetFilter(*in.Filter)
	writeJSON(w, http.StatusOK, s.Snapshot())
}
