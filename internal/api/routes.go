package api

import (
	"github.com/gorilla/mux"
	"github.com/trogers1052/trademind/internal/metrics"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(handler.observe)

	// Health check and metrics
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	// Live calendar
	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(handler.requireUser)
	ws.HandleFunc("/calendar", handler.LiveCalendar).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(handler.requireUser)

	// Trade routes
	api.HandleFunc("/trades", handler.ListTrades).Methods("GET")
	api.HandleFunc("/trades", handler.CreateTrade).Methods("POST")
	api.HandleFunc("/trades/{id}", handler.GetTrade).Methods("GET")
	api.HandleFunc("/trades/{id}", handler.DeleteTrade).Methods("DELETE")
	api.HandleFunc("/trades/{id}/close", handler.CloseTrade).Methods("POST")
	api.HandleFunc("/trades/{id}/cancel", handler.CancelTrade).Methods("POST")
	api.HandleFunc("/journal", handler.GetJournal).Methods("GET")

	// Views
	api.HandleFunc("/dashboard", handler.GetDashboard).Methods("GET")
	api.HandleFunc("/calendar", handler.GetCalendar).Methods("GET")
	api.HandleFunc("/calendar/day", handler.GetCalendarDay).Methods("GET")
	api.HandleFunc("/analytics", handler.GetAnalytics).Methods("GET")

	// Ritual and settings
	api.HandleFunc("/ritual", handler.GetRitual).Methods("GET")
	api.HandleFunc("/ritual", handler.CompleteRitual).Methods("POST")
	api.HandleFunc("/ritual/end", handler.EndDay).Methods("POST")
	api.HandleFunc("/settings", handler.GetSettings).Methods("GET")
	api.HandleFunc("/settings/profile", handler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/rules", handler.ListRules).Methods("GET")
	api.HandleFunc("/rules", handler.CreateRule).Methods("POST")
	api.HandleFunc("/rules/{id}", handler.UpdateRule).Methods("PUT")
	api.HandleFunc("/rules/{id}/active", handler.SetRuleActive).Methods("PATCH")
	api.HandleFunc("/rules/{id}", handler.DeleteRule).Methods("DELETE")

	// Trade Guardian
	api.HandleFunc("/guardian/drafts", handler.StartDraft).Methods("POST")
	api.HandleFunc("/guardian/drafts/current", handler.CurrentDraft).Methods("GET")
	api.HandleFunc("/guardian/drafts/current", handler.DiscardDraft).Methods("DELETE")
	api.HandleFunc("/guardian/drafts/{id}", handler.GetDraft).Methods("GET")
	api.HandleFunc("/guardian/drafts/{id}", handler.UpdateDraft).Methods("PUT")
	api.HandleFunc("/guardian/drafts/{id}/commit", handler.CommitDraft).Methods("POST")
	api.HandleFunc("/guardian/drafts/{id}/{action:next|back|reset}", handler.DraftAction).Methods("POST")

	// Stateless calculators
	api.HandleFunc("/risk/calculate", handler.CalculateRisk).Methods("POST")
	api.HandleFunc("/risk/pnl", handler.CalculatePnL).Methods("POST")

	return r
}
