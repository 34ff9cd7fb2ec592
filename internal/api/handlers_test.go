package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/trademind/internal/guardian"
	"github.com/trogers1052/trademind/internal/journal"
	"github.com/trogers1052/trademind/internal/models"
)

const testUser = "0b6c1f3e-5d7a-4e2b-9c1d-2f3a4b5c6d7e"

var testNow = time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// Fake journal: only the methods a test needs are implemented, calling any
// other one panics on the nil embedded interface.
// ---------------------------------------------------------------------------

// journalAPI names the embedded interface so its Journal method is not
// shadowed by the field name.
type journalAPI = Journal

type fakeJournal struct {
	journalAPI

	mu     sync.Mutex
	query  models.TradeQuery
	filter journal.JournalFilter
	trades map[string]*models.Trade
	err    error
}

func (f *fakeJournal) Journal(_ context.Context, _ string, filter journal.JournalFilter) (*journal.JournalView, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.NewValidationError("status", "must be OPEN, CLOSED or CANCELLED")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	return &journal.JournalView{Trades: []*models.Trade{}}, nil
}

func (f *fakeJournal) Location() *time.Location { return time.UTC }

func (f *fakeJournal) NewTrade(_ context.Context, userID string, in models.TradeInput) (*models.Trade, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	t := &models.Trade{
		ID:         fmt.Sprintf("00000000-0000-4000-8000-%012d", len(f.trades)+1),
		UserID:     userID,
		Symbol:     in.Symbol,
		TradeType:  in.TradeType,
		Direction:  in.Direction,
		Quantity:   in.Quantity,
		EntryPrice: in.EntryPrice,
		Status:     models.StatusOpen,
		EntryTime:  testNow,
	}
	if f.trades == nil {
		f.trades = make(map[string]*models.Trade)
	}
	f.trades[t.ID] = t
	return t, nil
}

func (f *fakeJournal) Trade(_ context.Context, userID, id string) (*models.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trades[id]
	if !ok || t.UserID != userID {
		return nil, fmt.Errorf("trade %s: %w", id, models.ErrNotFound)
	}
	return t, nil
}

func (f *fakeJournal) ListTrades(_ context.Context, _ string, q models.TradeQuery) ([]*models.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query = q
	return nil, f.err
}

func (f *fakeJournal) DeleteRule(context.Context, string, string) error {
	return fmt.Errorf("rule: %w", models.ErrDefaultRule)
}

// fakeBackend backs the real guardian service
type fakeBackend struct {
	journal *fakeJournal
}

func (b *fakeBackend) NewTrade(ctx context.Context, userID string, in models.TradeInput) (*models.Trade, error) {
	return b.journal.NewTrade(ctx, userID, in)
}

func (b *fakeBackend) AssessmentContext(context.Context, string) (guardian.Context, error) {
	return guardian.Context{
		ActiveRuleIDs:     []string{"r1"},
		PerTradeRiskLimit: decimal.NewFromInt(5000),
		DailyLossLimit:    decimal.NewFromInt(10000),
	}, nil
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func newTestHandler(j *fakeJournal) *Handler {
	now := func() time.Time { return testNow }
	g := guardian.NewService(guardian.NewDraftStore(time.Hour, now), &fakeBackend{journal: j}, now, zerolog.Nop())
	return NewHandler(Dependencies{
		Journal:  j,
		Guardian: g,
		Now:      now,
		Logger:   zerolog.Nop(),
		Required: map[string]Pinger{"postgres": pinger{}},
		Optional: map[string]Pinger{"redis": nil},
	})
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(UserHeader, testUser)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// ---------------------------------------------------------------------------
// Middleware and error mapping
// ---------------------------------------------------------------------------

func TestRequireUser(t *testing.T) {
	router := SetupRoutes(newTestHandler(&fakeJournal{}))

	for _, header := range []string{"", "not-a-uuid"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/trades", nil)
		if header != "" {
			req.Header.Set(UserHeader, header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewValidationError("symbol", "is required"), http.StatusBadRequest},
		{fmt.Errorf("limit 0: %w", models.ErrInvalidLimit), http.StatusBadRequest},
		{models.ErrStepIncomplete, http.StatusBadRequest},
		{models.ErrUnauthenticated, http.StatusUnauthorized},
		{models.ErrDefaultRule, http.StatusForbidden},
		{models.ErrNotFound, http.StatusNotFound},
		{models.ErrDraftNotFound, http.StatusNotFound},
		{models.ErrTradeNotOpen, http.StatusConflict},
		{models.ErrTransition, http.StatusConflict},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	j := &fakeJournal{err: errors.New("pq: password authentication failed")}
	router := SetupRoutes(newTestHandler(j))

	rec := do(t, router, http.MethodGet, "/api/v1/trades", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

// ---------------------------------------------------------------------------
// Trades
// ---------------------------------------------------------------------------

func TestCreateAndGetTrade(t *testing.T) {
	router := SetupRoutes(newTestHandler(&fakeJournal{}))

	rec := do(t, router, http.MethodPost, "/api/v1/trades", map[string]interface{}{
		"symbol":      "RELIANCE",
		"trade_type":  "EQUITY",
		"direction":   "LONG",
		"quantity":    "10",
		"entry_price": "2500.50",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Trade
	decodeBody(t, rec, &created)
	assert.True(t, created.EntryPrice.Equal(decimal.RequireFromString("2500.5")))

	rec = do(t, router, http.MethodGet, "/api/v1/trades/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/trades/6a1b2c3d-0000-4000-8000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/trades/42", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTrade_ValidationError(t *testing.T) {
	router := SetupRoutes(newTestHandler(&fakeJournal{}))

	rec := do(t, router, http.MethodPost, "/api/v1/trades", map[string]interface{}{
		"trade_type": "EQUITY",
		"direction":  "LONG",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "symbol", resp.Field)
}

func TestCreateTrade_MalformedBody(t *testing.T) {
	router := SetupRoutes(newTestHandler(&fakeJournal{}))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/trades", bytes.NewBufferString("{"))
	req.Header.Set(UserHeader, testUser)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTrades_ParsesQuery(t *testing.T) {
	j := &fakeJournal{}
	router := SetupRoutes(newTestHandler(j))

	rec := do(t, router, http.MethodGet, "/api/v1/trades?status=CLOSED&start=2026-10-01&end=2026-10-31&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	assert.Equal(t, models.StatusClosed, j.query.Status)
	assert.Equal(t, 5, j.query.Limit)
	require.NotNil(t, j.query.Start)
	require.NotNil(t, j.query.End)
	assert.True(t, j.query.Start.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, j.query.End.Equal(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)))

	rec = do(t, router, http.MethodGet, "/api/v1/trades?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJournal_StatusFilter(t *testing.T) {
	j := &fakeJournal{}
	router := SetupRoutes(newTestHandler(j))

	rec := do(t, router, http.MethodGet, "/api/v1/journal?status=all&search=nifty", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, journal.JournalFilter{Search: "nifty"}, j.filter, "all means no status filter")

	rec = do(t, router, http.MethodGet, "/api/v1/journal?status=CLOSED", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusClosed, j.filter.Status)

	rec = do(t, router, http.MethodGet, "/api/v1/journal?status=PENDING", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteDefaultRule(t *testing.T) {
	router := SetupRoutes(newTestHandler(&fakeJournal{}))
	rec := do(t, router, http.MethodDelete, "/api/v1/rules/6a1b2c3d-0000-4000-8000-000000000000", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// ---------------------------------------------------------------------------
// Trade Guardian
// ---------------------------------------------------------------------------

type draftResponse struct {
	ID   string `json:"id"`
	Step int    `json:"step"`
}

func approvedDraft() guardian.Draft {
	d := guardian.NewDraft()
	d.Symbol = "nifty"
	d.Quantity = decimal.NewNullDecimal(decimal.NewFromInt(50))
	d.EntryPrice = decimal.NewNullDecimal(decimal.NewFromInt(24500))
	d.StopLoss = decimal.NewNullDecimal(decimal.NewFromInt(24400))
	d.TargetPrice = decimal.NewNullDecimal(decimal.NewFromInt(24700))
	d.Risk = guardian.RiskAck{RiskUnderstood: true, AffordabilityConfirmed: true, WithinLimitConfirmed: true}
	d.Setup = guardian.SetupCheck{
		SetupType: "Breakout", ChartAnalyzed: true, LevelsIdentified: true,
		ValidReason: true, MatchesPlan: true, WouldRepeat: true,
		TradeReason: "Clean breakout above prior day high",
	}
	d.Emotion = guardian.EmotionCheck{
		Emotion: models.EmotionCalm, NotFOMO: true, NotRevenge: true,
		NotGreedy: true, CalmState: true, WillRespectStop: true,
	}
	d.AcknowledgedRules = []string{"r1"}
	return d
}

func TestGuardianFlow(t *testing.T) {
	j := &fakeJournal{}
	router := SetupRoutes(newTestHandler(j))

	rec := do(t, router, http.MethodPost, "/api/v1/guardian/drafts", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var draft draftResponse
	decodeBody(t, rec, &draft)
	assert.Equal(t, 1, draft.Step)
	base := "/api/v1/guardian/drafts/" + draft.ID

	rec = do(t, router, http.MethodPost, base+"/next", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty details cannot advance")

	rec = do(t, router, http.MethodPost, base+"/back", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodPut, base, approvedDraft())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for step := 2; step <= 6; step++ {
		rec = do(t, router, http.MethodPost, base+"/next", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decodeBody(t, rec, &draft)
		assert.Equal(t, step, draft.Step)
	}

	rec = do(t, router, http.MethodGet, "/api/v1/guardian/drafts/current", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, base+"/commit", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var trade models.Trade
	decodeBody(t, rec, &trade)
	assert.Equal(t, models.StatusOpen, trade.Status)

	rec = do(t, router, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "a committed draft is gone")
}

// ---------------------------------------------------------------------------
// Calculators and health
// ---------------------------------------------------------------------------

func TestCalculateRisk(t *testing.T) {
	router := SetupRoutes(newTestHandler(&fakeJournal{}))

	rec := do(t, router, http.MethodPost, "/api/v1/risk/calculate", map[string]interface{}{
		"direction":            "LONG",
		"quantity":             "50",
		"entry_price":          "24500",
		"stop_loss":            "24400",
		"target_price":         "24700",
		"per_trade_risk_limit": "5000",
		"daily_loss_limit":     "10000",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		RiskAmount      decimal.Decimal   `json:"risk_amount"`
		RewardAmount    decimal.Decimal   `json:"reward_amount"`
		RiskRewardRatio float64           `json:"risk_reward_ratio"`
		Breached        bool              `json:"breached"`
		Formatted       map[string]string `json:"formatted"`
	}
	decodeBody(t, rec, &resp)
	assert.True(t, resp.RiskAmount.Equal(decimal.NewFromInt(5000)))
	assert.True(t, resp.RewardAmount.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 2.0, resp.RiskRewardRatio)
	assert.False(t, resp.Breached)
	assert.Equal(t, "₹12,25,000", resp.Formatted["position_size"])
}

func TestCalculateRisk_ZeroLimit(t *testing.T) {
	router := SetupRoutes(newTestHandler(&fakeJournal{}))
	rec := do(t, router, http.MethodPost, "/api/v1/risk/calculate", map[string]interface{}{
		"direction":            "LONG",
		"quantity":             "1",
		"entry_price":          "100",
		"stop_loss":            "90",
		"target_price":         "120",
		"per_trade_risk_limit": "0",
		"daily_loss_limit":     "1000",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculatePnL(t *testing.T) {
	router := SetupRoutes(newTestHandler(&fakeJournal{}))
	rec := do(t, router, http.MethodPost, "/api/v1/risk/pnl", map[string]interface{}{
		"direction":   "SHORT",
		"quantity":    "10",
		"entry_price": "100",
		"exit_price":  "110",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		PnL       decimal.Decimal `json:"pnl"`
		Formatted string          `json:"pnl_formatted"`
	}
	decodeBody(t, rec, &resp)
	assert.True(t, resp.PnL.Equal(decimal.NewFromInt(-100)))
	assert.Equal(t, "-₹100", resp.Formatted)
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandler(&fakeJournal{})
	rec := do(t, SetupRoutes(h), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status   string            `json:"status"`
		Services map[string]string `json:"services"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "not configured", body.Services["redis"])

	h.required["postgres"] = pinger{err: errors.New("dial tcp: refused")}
	rec = do(t, SetupRoutes(h), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
