package api

import (
	"net/http"

	"github.com/trogers1052/trademind/internal/clock"
	"github.com/trogers1052/trademind/internal/models"
)

// month reads the month query parameter, defaulting to the current month
func (h *Handler) month(r *http.Request) (clock.Month, error) {
	s := r.URL.Query().Get("month")
	if s == "" {
		return clock.MonthOf(h.now(), h.journal.Location()), nil
	}
	m, err := clock.ParseMonth(s)
	if err != nil {
		return m, models.NewValidationError("month", "must be YYYY-MM")
	}
	return m, nil
}

// GetDashboard handles GET /dashboard
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.journal.Dashboard(r.Context(), userID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

// GetCalendar handles GET /calendar?month=YYYY-MM
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	m, err := h.month(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	cal, err := h.journal.Calendar(r.Context(), userID(r), m)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cal)
}

// GetCalendarDay handles GET /calendar/day?date=YYYY-MM-DD
func (h *Handler) GetCalendarDay(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = clock.DateKey(h.now(), h.journal.Location())
	}
	day, err := h.journal.CalendarDay(r.Context(), userID(r), date)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, day)
}

// GetAnalytics handles GET /analytics?month=YYYY-MM
func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	m, err := h.month(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	a, err := h.journal.Analytics(r.Context(), userID(r), m)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// LiveCalendar handles GET /ws/calendar
func (h *Handler) LiveCalendar(w http.ResponseWriter, r *http.Request) {
	h.live.ServeCalendar(w, r, userID(r))
}
