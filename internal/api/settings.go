package api

import (
	"net/http"
	"strconv"

	"github.com/trogers1052/trademind/internal/journal"
	"github.com/trogers1052/trademind/internal/models"
)

// GetRitual handles GET /ritual
func (h *Handler) GetRitual(w http.ResponseWriter, r *http.Request) {
	data, err := h.journal.RitualData(r.Context(), userID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, data)
}

// CompleteRitual handles POST /ritual
func (h *Handler) CompleteRitual(w http.ResponseWriter, r *http.Request) {
	var in journal.RitualInput
	if err := decode(w, r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}
	session, err := h.journal.CompleteRitual(r.Context(), userID(r), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// EndDay handles POST /ritual/end
func (h *Handler) EndDay(w http.ResponseWriter, r *http.Request) {
	var in journal.EndOfDayInput
	if err := decode(w, r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}
	session, err := h.journal.EndDay(r.Context(), userID(r), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// GetSettings handles GET /settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.journal.Settings(r.Context(), userID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

// UpdateProfile handles PUT /settings/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in models.ProfileSettings
	if err := decode(w, r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}
	p, err := h.journal.UpdateProfile(r.Context(), userID(r), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// ListRules handles GET /rules?active=true
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	activeOnly := false
	if s := r.URL.Query().Get("active"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			h.respondError(w, r, models.NewValidationError("active", "must be true or false"))
			return
		}
		activeOnly = b
	}
	rules, err := h.journal.Rules(r.Context(), userID(r), activeOnly)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if rules == nil {
		rules = []*models.TradingRule{}
	}
	respondJSON(w, http.StatusOK, rules)
}

// CreateRule handles POST /rules
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var in journal.RuleInput
	if err := decode(w, r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}
	rule, err := h.journal.CreateRule(r.Context(), userID(r), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, rule)
}

// UpdateRule handles PUT /rules/{id}
func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var in journal.RuleInput
	if err := decode(w, r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}
	rule, err := h.journal.UpdateRule(r.Context(), userID(r), id, in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rule)
}

// SetRuleActive handles PATCH /rules/{id}/active
func (h *Handler) SetRuleActive(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req struct {
		Active *bool `json:"is_active"`
	}
	if err := decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.Active == nil {
		h.respondError(w, r, models.NewValidationError("is_active", "is required"))
		return
	}
	rule, err := h.journal.SetRuleActive(r.Context(), userID(r), id, *req.Active)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rule)
}

// DeleteRule handles DELETE /rules/{id}
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.journal.DeleteRule(r.Context(), userID(r), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
