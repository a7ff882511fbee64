package todo

import (
	"net/http"
	"strconv"
)

// FormHandler serves the HTML form posts of the server-rendered page.
// Every action redirects back to the page (post/redirect/get).
type FormHandler struct {
	api      *Handler
	redirect string
}

func NewFormHandler(api *Handler, redirect string) *FormHandler {
	if redirect == "" {
		redirect = "/"
	}
	return &FormHandler{api: api, redirect: redirect}
}

func (h *FormHandler) back(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.redirect, http.StatusSeeOther)
}

func formBool(r *http.Request, key string) (bool, bool) {
	v, err := strconv.ParseBool(r.PostFormValue(key))
	if err != nil {
		return false, false
	}
	return v, true
}

// POST /todos
func (h *FormHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.api.storeForRequest(r).Add(r.PostFormValue("value"))
	h.back(w, r)
}

// POST /todos/{id}/edit
func (h *FormHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if _, present := r.PostForm["value"]; present {
		h.api.storeForRequest(r).Edit(id, r.PostForm.Get("value"))
	}
	h.back(w, r)
}

// POST /todos/{id}/toggle carries the desired value in "checked".
func (h *FormHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	checked, ok := formBool(r, "checked")
	if !ok {
		http.Error(w, "bad checked value", http.StatusBadRequest)
		return
	}
	h.api.storeForRequest(r).SetChecked(id, checked)
	h.back(w, r)
}

// POST /todos/{id}/remove carries the desired value in "removed".
func (h *FormHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}
	removed, ok := formBool(r, "removed")
	if !ok {
		http.Error(w, "bad removed value", http.StatusBadRequest)
		return
	}
	h.api.storeForRequest(r).SetRemoved(id, removed)
	h.back(w, r)
}

// POST /trash/empty
func (h *FormHandler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	h.api.storeForRequest(r).EmptyTrash()
	h.back(w, r)
}

// POST /filter
func (h *FormHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.PostFormValue("filter"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.api.storeForRequest(r).SetFilter(f)
	h.back(w, r)
}
