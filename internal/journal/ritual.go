package journal

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/trademind/internal/cache"
	"github.com/trogers1052/trademind/internal/models"
)

// RitualData is everything the pre-market ritual shows
type RitualData struct {
	Date            string                `json:"date"`
	DailyLossLimit  decimal.Decimal       `json:"daily_loss_limit"`
	PerTradeRisk    decimal.Decimal       `json:"per_trade_risk"`
	MaxTradesPerDay int                   `json:"max_trades_per_day"`
	Rules           []*models.TradingRule `json:"rules"`
	Session         *models.DailySession  `json:"session"`
	Completed       bool                  `json:"completed"`
	Quote           *models.Quote         `json:"quote"`
}

// RitualInput completes today's ritual
type RitualInput struct {
	Mood         models.Mood         `json:"mood"`
	RulesChecked []string            `json:"rules_checked"`
	SleepHours   decimal.NullDecimal `json:"sleep_hours"`
	Exercised    bool                `json:"exercised"`
	MarketBias   *string             `json:"market_bias"`
	KeyLevels    *string             `json:"key_levels"`
	Notes        *string             `json:"notes"`
}

// EndOfDayInput is the end-of-day reflection
type EndOfDayInput struct {
	Mood  *models.Mood `json:"mood"`
	Notes *string      `json:"notes"`
}

// RitualData loads the ritual for today
func (s *Service) RitualData(ctx context.Context, userID string) (*RitualData, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules(ctx, userID, true)
	if err != nil {
		return nil, s.fail("ritual", userID, err)
	}
	today := s.today()
	session, err := s.session(ctx, userID, today)
	if err != nil {
		return nil, s.fail("ritual", userID, err)
	}

	data := &RitualData{
		Date:            today,
		DailyLossLimit:  profile.DailyLossLimit,
		PerTradeRisk:    profile.PerTradeRisk,
		MaxTradesPerDay: profile.MaxTradesPerDay,
		Rules:           rules,
		Session:         session,
		Completed:       session.RitualDone(),
	}

	quotes, err := s.store.ListActiveQuotes(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load quotes")
	} else if len(quotes) > 0 {
		data.Quote = quotes[s.pick(len(quotes))]
	}
	return data, nil
}

// CompleteRitual records today's pre-market ritual. A mood is required and
// every active rule must be checked.
func (s *Service) CompleteRitual(ctx context.Context, userID string, in RitualInput) (*models.DailySession, error) {
	if !in.Mood.Valid() {
		return nil, models.NewValidationError("mood", "is required")
	}
	if in.SleepHours.Valid && (in.SleepHours.Decimal.IsNegative() || in.SleepHours.Decimal.GreaterThan(decimal.NewFromInt(24))) {
		return nil, models.NewValidationError("sleep_hours", "must be between 0 and 24")
	}
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}

	active, err := s.store.ListRules(ctx, userID, true)
	if err != nil {
		return nil, s.fail("complete_ritual", userID, err)
	}
	checked := make(map[string]bool, len(in.RulesChecked))
	for _, id := range in.RulesChecked {
		checked[id] = true
	}
	var missing []string
	for _, r := range active {
		if !checked[r.ID] {
			missing = append(missing, r.RuleText)
		}
	}
	if len(missing) > 0 {
		return nil, models.NewValidationError("rules_checked", "unchecked rules: "+strings.Join(missing, "; "))
	}

	now := s.now()
	mood := in.Mood
	session, err := s.store.UpsertSession(ctx, &models.DailySession{
		UserID:           userID,
		SessionDate:      s.today(),
		PreMarketMood:    &mood,
		SleepHours:       in.SleepHours,
		Exercised:        in.Exercised,
		MarketBias:       in.MarketBias,
		KeyLevels:        in.KeyLevels,
		RulesChecked:     in.RulesChecked,
		PreMarketNotes:   in.Notes,
		SessionStartedAt: &now,
	})
	if err != nil {
		return nil, s.fail("complete_ritual", userID, err)
	}

	s.invalidate(ctx, userID, cache.EntitySessions)
	s.publish(ctx, models.EventRitualCompleted, userID, "", map[string]string{
		"date": session.SessionDate,
		"mood": string(mood),
	})
	s.logger.Info().Str("user_id", userID).Str("date", session.SessionDate).Msg("ritual completed")
	return session, nil
}

// EndDay records the end-of-day reflection on today's session
func (s *Service) EndDay(ctx context.Context, userID string, in EndOfDayInput) (*models.DailySession, error) {
	if in.Mood != nil && !in.Mood.Valid() {
		return nil, models.NewValidationError("mood", "is not a known mood")
	}
	session, err := s.store.EndSession(ctx, userID, s.today(), in.Mood, in.Notes, s.now())
	if err != nil {
		return nil, s.fail("end_day", userID, err)
	}
	s.invalidate(ctx, userID, cache.EntitySessions)
	return session, nil
}
