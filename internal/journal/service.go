// Package journal implements the trading journal: trade lifecycle, the
// dashboard, calendar and analytics views, the daily ritual and settings.
package journal

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/trogers1052/trademind/internal/cache"
	"github.com/trogers1052/trademind/internal/clock"
	"github.com/trogers1052/trademind/internal/metrics"
	"github.com/trogers1052/trademind/internal/models"
)

// TradeStore persists trades
type TradeStore interface {
	CreateTrade(ctx context.Context, t *models.Trade) error
	GetTrade(ctx context.Context, userID, id string) (*models.Trade, error)
	ListTrades(ctx context.Context, userID string, q models.TradeQuery) ([]*models.Trade, error)
	CloseTrade(ctx context.Context, userID, id string, u models.CloseUpdate) (*models.Trade, error)
	CancelTrade(ctx context.Context, userID, id string) (*models.Trade, error)
	DeleteTrade(ctx context.Context, userID, id string) error
}

// ProfileStore persists profiles
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	EnsureProfile(ctx context.Context, userID string, defaults models.ProfileDefaults) (*models.Profile, bool, error)
	UpdateProfile(ctx context.Context, userID string, s models.ProfileSettings) (*models.Profile, error)
}

// RuleStore persists trading rules
type RuleStore interface {
	ListRules(ctx context.Context, userID string, activeOnly bool) ([]*models.TradingRule, error)
	CreateRule(ctx context.Context, userID, text string, category models.RuleCategory) (*models.TradingRule, error)
	UpdateRule(ctx context.Context, userID, id, text string, category models.RuleCategory) (*models.TradingRule, error)
	SetRuleActive(ctx context.Context, userID, id string, active bool) (*models.TradingRule, error)
	DeleteRule(ctx context.Context, userID, id string) error
	SeedDefaultRules(ctx context.Context, userID string, seeds []models.RuleSeed) (int, error)
}

// SessionStore persists daily sessions
type SessionStore interface {
	GetSession(ctx context.Context, userID, date string) (*models.DailySession, error)
	UpsertSession(ctx context.Context, s *models.DailySession) (*models.DailySession, error)
	EndSession(ctx context.Context, userID, date string, mood *models.Mood, notes *string, endedAt time.Time) (*models.DailySession, error)
}

// QuoteStore reads quotes
type QuoteStore interface {
	ListActiveQuotes(ctx context.Context) ([]*models.Quote, error)
}

// Store is everything the journal persists
type Store interface {
	TradeStore
	ProfileStore
	RuleStore
	SessionStore
	QuoteStore
}

// Publisher emits journal events
type Publisher interface {
	Publish(ctx context.Context, event models.JournalEvent) error
}

// Options configures a Service
type Options struct {
	Location     *time.Location
	Defaults     models.ProfileDefaults
	RuleSeeds    []models.RuleSeed
	TopSymbols   int
	RecentTrades int
}

// Service is the journal's application layer
type Service struct {
	store     Store
	cache     *cache.Cache
	publisher Publisher
	now       clock.Clock
	logger    zerolog.Logger
	opts      Options
	pick      func(n int) int
}

// NewService creates a journal service. cache and publisher may be nil.
func NewService(store Store, c *cache.Cache, publisher Publisher, now clock.Clock, logger zerolog.Logger, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Service{
		store:     store,
		cache:     c,
		publisher: publisher,
		now:       now,
		logger:    logger.With().Str("component", "journal").Logger(),
		opts:      opts,
		pick:      rand.Intn,
	}
}

// Location returns the time zone trades are bucketed in
func (s *Service) Location() *time.Location {
	return s.opts.Location
}

func (s *Service) today() string {
	return clock.DateKey(s.now(), s.opts.Location)
}

// cached reads through the service cache when one is configured
func cached[T any](ctx context.Context, s *Service, entity, userID string, params interface{}, load func(ctx context.Context) (T, error)) (T, error) {
	if s.cache == nil {
		return load(ctx)
	}
	var out T
	err := s.cache.Fetch(ctx, entity, userID, params, &out, func(ctx context.Context) (interface{}, error) {
		return load(ctx)
	})
	return out, err
}

func (s *Service) invalidate(ctx context.Context, userID string, entities ...string) {
	if s.cache == nil {
		return
	}
	for _, e := range entities {
		s.cache.Invalidate(ctx, e, userID)
	}
}

func (s *Service) publish(ctx context.Context, eventType, userID, tradeID string, data map[string]string) {
	if s.publisher == nil {
		return
	}
	event := models.JournalEvent{
		EventType: eventType,
		Source:    "trademind",
		UserID:    userID,
		TradeID:   tradeID,
		Timestamp: s.now().UTC(),
		Data:      data,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		metrics.EventsPublished.WithLabelValues(eventType, "failed").Inc()
		s.logger.Error().Err(err).Str("event_type", eventType).Str("user_id", userID).Msg("failed to publish journal event")
		return
	}
	metrics.EventsPublished.WithLabelValues(eventType, "published").Inc()
}

// fail logs backend failures before handing them back. Expected outcomes
// such as validation errors and missing rows are returned quietly.
func (s *Service) fail(op, userID string, err error) error {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrTradeNotOpen),
		errors.Is(err, models.ErrDefaultRule),
		errors.Is(err, models.ErrInvalidLimit):
	default:
		s.logger.Error().Err(err).Str("op", op).Str("user_id", userID).Msg("journal operation failed")
	}
	return err
}
