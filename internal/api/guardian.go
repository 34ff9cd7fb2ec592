package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/trogers1052/trademind/internal/guardian"
	"github.com/trogers1052/trademind/internal/models"
)

// StartDraft handles POST /guardian/drafts
func (h *Handler) StartDraft(w http.ResponseWriter, r *http.Request) {
	v, err := h.guardian.Start(r.Context(), userID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, v)
}

// CurrentDraft handles GET /guardian/drafts/current
func (h *Handler) CurrentDraft(w http.ResponseWriter, r *http.Request) {
	v, err := h.guardian.Current(r.Context(), userID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// DiscardDraft handles DELETE /guardian/drafts/current
func (h *Handler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	h.guardian.Discard(userID(r))
	w.WriteHeader(http.StatusNoContent)
}

// GetDraft handles GET /guardian/drafts/{id}
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	v, err := h.guardian.Get(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// UpdateDraft handles PUT /guardian/drafts/{id}
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var d guardian.Draft
	if err := decode(w, r, &d); err != nil {
		h.respondError(w, r, err)
		return
	}
	v, err := h.guardian.Update(r.Context(), userID(r), mux.Vars(r)["id"], d)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// DraftAction handles POST /guardian/drafts/{id}/{action} for next, back and reset
func (h *Handler) DraftAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	var (
		v   *guardian.View
		err error
	)
	switch vars["action"] {
	case "next":
		v, err = h.guardian.Next(r.Context(), userID(r), id)
	case "back":
		v, err = h.guardian.Back(r.Context(), userID(r), id)
	case "reset":
		v, err = h.guardian.Reset(r.Context(), userID(r), id)
	default:
		err = models.ErrNotFound
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// CommitDraft handles POST /guardian/drafts/{id}/commit
func (h *Handler) CommitDraft(w http.ResponseWriter, r *http.Request) {
	trade, err := h.guardian.Commit(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, trade)
}
