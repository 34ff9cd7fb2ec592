package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/trogers1052/trademind/internal/clock"
	"github.com/trogers1052/trademind/internal/journal"
	"github.com/trogers1052/trademind/internal/models"
)

// ListTrades handles GET /trades?status=&start=&end=&limit=
// start and end are YYYY-MM-DD local dates or RFC 3339 timestamps.
func (h *Handler) ListTrades(w http.ResponseWriter, r *http.Request) {
	q, err := h.tradeQuery(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	trades, err := h.journal.ListTrades(r.Context(), userID(r), q)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if trades == nil {
		trades = []*models.Trade{}
	}
	respondJSON(w, http.StatusOK, trades)
}

func (h *Handler) tradeQuery(r *http.Request) (models.TradeQuery, error) {
	v := r.URL.Query()
	q := models.TradeQuery{Status: models.TradeStatus(v.Get("status"))}
	if q.Status == "all" {
		q.Status = ""
	}

	loc := h.journal.Location()
	if s := v.Get("start"); s != "" {
		t, err := parseBound(s, loc, false)
		if err != nil {
			return q, models.NewValidationError("start", err.Error())
		}
		q.Start = &t
	}
	if s := v.Get("end"); s != "" {
		t, err := parseBound(s, loc, true)
		if err != nil {
			return q, models.NewValidationError("end", err.Error())
		}
		q.End = &t
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, models.NewValidationError("limit", "must be a non-negative integer")
		}
		q.Limit = n
	}
	return q, nil
}

// parseBound parses a timestamp, or a date taken as the start (or, for end
// bounds, the last instant) of that day in loc
func parseBound(s string, loc *time.Location, end bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := clock.ParseDate(s, loc)
	if err != nil {
		return time.Time{}, err
	}
	if end {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, nil
}

// CreateTrade handles POST /trades
func (h *Handler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	var in models.TradeInput
	if err := decode(w, r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}
	trade, err := h.journal.NewTrade(r.Context(), userID(r), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, trade)
}

// GetTrade handles GET /trades/{id}
func (h *Handler) GetTrade(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	trade, err := h.journal.Trade(r.Context(), userID(r), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trade)
}

// CloseTrade handles POST /trades/{id}/close
func (h *Handler) CloseTrade(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var in journal.CloseInput
	if err := decode(w, r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}
	trade, err := h.journal.CloseTrade(r.Context(), userID(r), id, in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trade)
}

// CancelTrade handles POST /trades/{id}/cancel
func (h *Handler) CancelTrade(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	trade, err := h.journal.CancelTrade(r.Context(), userID(r), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trade)
}

// DeleteTrade handles DELETE /trades/{id}
func (h *Handler) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.journal.DeleteTrade(r.Context(), userID(r), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetJournal handles GET /journal?search=&status=
func (h *Handler) GetJournal(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	f := journal.JournalFilter{Search: v.Get("search"), Status: models.TradeStatus(v.Get("status"))}
	if f.Status == "all" {
		f.Status = ""
	}
	view, err := h.journal.Journal(r.Context(), userID(r), f)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
