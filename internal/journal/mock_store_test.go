package journal

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/trademind/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory Store
// ---------------------------------------------------------------------------

type mockStore struct {
	mu       sync.Mutex
	trades   map[string]*models.Trade
	profiles map[string]*models.Profile
	rules    map[string]*models.TradingRule
	sessions map[string]*models.DailySession
	quotes   []*models.Quote
	seeded   int
	seedErr  error
	err      error
}

func newMockStore() *mockStore {
	return &mockStore{
		trades:   make(map[string]*models.Trade),
		profiles: make(map[string]*models.Profile),
		rules:    make(map[string]*models.TradingRule),
		sessions: make(map[string]*models.DailySession),
	}
}

func (m *mockStore) addTrade(t *models.Trade) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	cp := *t
	m.trades[t.ID] = &cp
}

func (m *mockStore) CreateTrade(_ context.Context, t *models.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	t.ID = uuid.NewString()
	t.CreatedAt = t.EntryTime
	t.UpdatedAt = t.EntryTime
	cp := *t
	m.trades[t.ID] = &cp
	return nil
}

func (m *mockStore) GetTrade(_ context.Context, userID, id string) (*models.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trades[id]
	if !ok || t.UserID != userID {
		return nil, fmt.Errorf("trade %s: %w", id, models.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (m *mockStore) ListTrades(_ context.Context, userID string, q models.TradeQuery) ([]*models.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Trade
	for _, t := range m.trades {
		if t.UserID != userID {
			continue
		}
		if q.Status != "" && t.Status != q.Status {
			continue
		}
		if q.Start != nil && t.EntryTime.Before(*q.Start) {
			continue
		}
		if q.End != nil && t.EntryTime.After(*q.End) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.After(out[j].EntryTime) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *mockStore) CloseTrade(_ context.Context, userID, id string, u models.CloseUpdate) (*models.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.trades[id]
	if !ok || t.UserID != userID {
		return nil, models.ErrNotFound
	}
	if t.Status != models.StatusOpen {
		return nil, models.ErrTradeNotOpen
	}
	exitTime := u.ExitTime
	t.ExitPrice = decimal.NewNullDecimal(u.ExitPrice)
	t.ExitTime = &exitTime
	t.PnL = decimal.NewNullDecimal(u.PnL)
	t.PnLPercent = decimal.NewNullDecimal(u.PnLPercent)
	t.EmotionExit = u.EmotionExit
	t.Notes = u.Notes
	t.Status = models.StatusClosed
	cp := *t
	return &cp, nil
}

func (m *mockStore) CancelTrade(_ context.Context, userID, id string) (*models.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trades[id]
	if !ok || t.UserID != userID {
		return nil, models.ErrNotFound
	}
	if t.Status != models.StatusOpen {
		return nil, models.ErrTradeNotOpen
	}
	t.Status = models.StatusCancelled
	cp := *t
	return &cp, nil
}

func (m *mockStore) DeleteTrade(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trades[id]
	if !ok || t.UserID != userID {
		return models.ErrNotFound
	}
	delete(m.trades, id)
	return nil
}

func (m *mockStore) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockStore) EnsureProfile(_ context.Context, userID string, d models.ProfileDefaults) (*models.Profile, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, false, m.err
	}
	if p, ok := m.profiles[userID]; ok {
		cp := *p
		return &cp, false, nil
	}
	p := &models.Profile{
		ID:              userID,
		PerTradeRisk:    d.PerTradeRisk,
		DailyLossLimit:  d.DailyLossLimit,
		MaxTradesPerDay: 5,
	}
	m.profiles[userID] = p
	cp := *p
	return &cp, true, nil
}

func (m *mockStore) UpdateProfile(_ context.Context, userID string, s models.ProfileSettings) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	p.FullName = s.FullName
	p.TradingCapital = s.TradingCapital
	p.DailyLossLimit = s.DailyLossLimit
	p.PerTradeRisk = s.PerTradeRisk
	p.MaxTradesPerDay = s.MaxTradesPerDay
	p.DailyTarget = s.DailyTarget
	p.WeeklyTarget = s.WeeklyTarget
	p.MonthlyTarget = s.MonthlyTarget
	cp := *p
	return &cp, nil
}

func (m *mockStore) ListRules(_ context.Context, userID string, activeOnly bool) ([]*models.TradingRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.TradingRule
	for _, r := range m.rules {
		if r.UserID != userID || (activeOnly && !r.IsActive) {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *mockStore) nextSortOrder(userID string) int {
	n := 0
	for _, r := range m.rules {
		if r.UserID == userID && r.SortOrder > n {
			n = r.SortOrder
		}
	}
	return n + 1
}

func (m *mockStore) CreateRule(_ context.Context, userID, text string, category models.RuleCategory) (*models.TradingRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := &models.TradingRule{
		ID:        uuid.NewString(),
		UserID:    userID,
		RuleText:  text,
		Category:  category,
		IsActive:  true,
		SortOrder: m.nextSortOrder(userID),
	}
	m.rules[r.ID] = r
	cp := *r
	return &cp, nil
}

func (m *mockStore) UpdateRule(_ context.Context, userID, id, text string, category models.RuleCategory) (*models.TradingRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rules[id]
	if !ok || r.UserID != userID {
		return nil, models.ErrNotFound
	}
	r.RuleText = text
	r.Category = category
	cp := *r
	return &cp, nil
}

func (m *mockStore) SetRuleActive(_ context.Context, userID, id string, active bool) (*models.TradingRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rules[id]
	if !ok || r.UserID != userID {
		return nil, models.ErrNotFound
	}
	r.IsActive = active
	cp := *r
	return &cp, nil
}

func (m *mockStore) DeleteRule(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rules[id]
	if !ok || r.UserID != userID {
		return models.ErrNotFound
	}
	if r.IsDefault {
		return models.ErrDefaultRule
	}
	delete(m.rules, id)
	return nil
}

func (m *mockStore) SeedDefaultRules(_ context.Context, userID string, seeds []models.RuleSeed) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seedErr != nil {
		return 0, m.seedErr
	}
	for _, r := range m.rules {
		if r.UserID == userID {
			return 0, nil
		}
	}
	m.seeded++
	for _, s := range seeds {
		r := &models.TradingRule{
			ID:        uuid.NewString(),
			UserID:    userID,
			RuleText:  s.Text,
			Category:  s.Category,
			IsDefault: true,
			IsActive:  true,
			SortOrder: m.nextSortOrder(userID),
		}
		m.rules[r.ID] = r
	}
	return len(seeds), nil
}

func (m *mockStore) GetSession(_ context.Context, userID, date string) (*models.DailySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID+"/"+date]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *mockStore) UpsertSession(_ context.Context, s *models.DailySession) (*models.DailySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := s.UserID + "/" + s.SessionDate
	if existing, ok := m.sessions[key]; ok {
		s.ID = existing.ID
	} else {
		s.ID = uuid.NewString()
	}
	cp := *s
	m.sessions[key] = &cp
	return s, nil
}

func (m *mockStore) EndSession(_ context.Context, userID, date string, mood *models.Mood, notes *string, endedAt time.Time) (*models.DailySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID+"/"+date]
	if !ok {
		return nil, models.ErrNotFound
	}
	s.EndOfDayMood = mood
	s.EndOfDayNotes = notes
	s.SessionEndedAt = &endedAt
	cp := *s
	return &cp, nil
}

func (m *mockStore) ListActiveQuotes(context.Context) ([]*models.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quotes, nil
}

// ---------------------------------------------------------------------------
// Recording Publisher
// ---------------------------------------------------------------------------

type mockPublisher struct {
	mu     sync.Mutex
	events []models.JournalEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, e models.JournalEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *mockPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.EventType
	}
	return out
}
