package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/trademind/internal/clock"
	"github.com/trogers1052/trademind/internal/guardian"
	"github.com/trogers1052/trademind/internal/journal"
	"github.com/trogers1052/trademind/internal/models"
	"github.com/trogers1052/trademind/internal/websocket"
)

const maxBodyBytes = 1 << 20

// Journal is the journal service as used by the handlers
type Journal interface {
	Location() *time.Location

	NewTrade(ctx context.Context, userID string, in models.TradeInput) (*models.Trade, error)
	Trade(ctx context.Context, userID, id string) (*models.Trade, error)
	ListTrades(ctx context.Context, userID string, q models.TradeQuery) ([]*models.Trade, error)
	CloseTrade(ctx context.Context, userID, id string, in journal.CloseInput) (*models.Trade, error)
	CancelTrade(ctx context.Context, userID, id string) (*models.Trade, error)
	DeleteTrade(ctx context.Context, userID, id string) error
	Journal(ctx context.Context, userID string, f journal.JournalFilter) (*journal.JournalView, error)

	Dashboard(ctx context.Context, userID string) (*journal.Dashboard, error)
	Calendar(ctx context.Context, userID string, m clock.Month) (*journal.Calendar, error)
	CalendarDay(ctx context.Context, userID, date string) (*journal.CalendarDay, error)
	Analytics(ctx context.Context, userID string, m clock.Month) (*journal.Analytics, error)

	RitualData(ctx context.Context, userID string) (*journal.RitualData, error)
	CompleteRitual(ctx context.Context, userID string, in journal.RitualInput) (*models.DailySession, error)
	EndDay(ctx context.Context, userID string, in journal.EndOfDayInput) (*models.DailySession, error)

	Settings(ctx context.Context, userID string) (*journal.Settings, error)
	UpdateProfile(ctx context.Context, userID string, in models.ProfileSettings) (*models.Profile, error)
	Rules(ctx context.Context, userID string, activeOnly bool) ([]*models.TradingRule, error)
	CreateRule(ctx context.Context, userID string, in journal.RuleInput) (*models.TradingRule, error)
	UpdateRule(ctx context.Context, userID, id string, in journal.RuleInput) (*models.TradingRule, error)
	SetRuleActive(ctx context.Context, userID, id string, active bool) (*models.TradingRule, error)
	DeleteRule(ctx context.Context, userID, id string) error
}

// Pinger is a dependency reported by the health check
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies wires a Handler
type Dependencies struct {
	Journal  Journal
	Guardian *guardian.Service
	Live     *websocket.Handler
	Now      clock.Clock
	Logger   zerolog.Logger
	// Required dependencies degrade the health status when unreachable
	Required map[string]Pinger
	Optional map[string]Pinger
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	journal  Journal
	guardian *guardian.Service
	live     *websocket.Handler
	now      clock.Clock
	logger   zerolog.Logger
	required map[string]Pinger
	optional map[string]Pinger
}

// NewHandler creates a new Handler
func NewHandler(d Dependencies) *Handler {
	now := d.Now
	if now == nil {
		now = clock.System
	}
	return &Handler{
		journal:  d.Journal,
		guardian: d.Guardian,
		live:     d.Live,
		now:      now,
		logger:   d.Logger.With().Str("component", "api").Logger(),
		required: d.Required,
		optional: d.Optional,
	}
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := map[string]string{}
	allHealthy := true
	for name, p := range h.required {
		if err := p.Ping(ctx); err != nil {
			services[name] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			services[name] = "healthy"
		}
	}
	for name, p := range h.optional {
		if p == nil {
			services[name] = "not configured"
			continue
		}
		if err := p.Ping(ctx); err != nil {
			services[name] = "unhealthy: " + err.Error()
		} else {
			services[name] = "healthy"
		}
	}

	status := "healthy"
	code := http.StatusOK
	if !allHealthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]interface{}{
		"status":    status,
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"services":  services,
	})
}

// errorResponse is the body of every failed request
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrInvalidLimit),
		errors.Is(err, models.ErrStepIncomplete):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrDefaultRule):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrDraftNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrTradeNotOpen),
		errors.Is(err, models.ErrTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		respondJSON(w, code, errorResponse{Error: "internal server error"})
		return
	}

	resp := errorResponse{Error: err.Error()}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}
	respondJSON(w, code, resp)
}

// decode reads a JSON request body into v
func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.NewValidationError("body", "is not valid JSON: "+err.Error())
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
