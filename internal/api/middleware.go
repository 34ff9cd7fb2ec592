package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/trogers1052/trademind/internal/metrics"
	"github.com/trogers1052/trademind/internal/models"
)

// UserHeader carries the authenticated user id set by the gateway
const UserHeader = "X-User-ID"

type ctxKey int

const userKey ctxKey = iota

// userID returns the user id stored by requireUser
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userKey).(string)
	return id
}

// requireUser rejects requests without a valid user id header
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserHeader)
		id, err := uuid.Parse(raw)
		if raw == "" || err != nil {
			h.respondError(w, r, models.ErrUnauthenticated)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, id.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the response code for metrics
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// observe records request counts and latency by route template
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		if route == "/ws/calendar" {
			// the upgrade needs the raw writer
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		metrics.ObserveRequest(route, r.Method, rec.code, elapsed)
		h.logger.Debug().Str("method", r.Method).Str("route", route).Int("status", rec.code).
			Dur("elapsed", elapsed).Msg("request served")
	})
}

// parseID validates a uuid path variable
func parseID(r *http.Request, name string) (string, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", models.NewValidationError(name, "must be a UUID")
	}
	return id.String(), nil
}
