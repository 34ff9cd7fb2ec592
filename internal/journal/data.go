package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/trogers1052/trademind/internal/cache"
	"github.com/trogers1052/trademind/internal/clock"
	"github.com/trogers1052/trademind/internal/models"
)

// Profile returns the user's profile, creating it with default limits and
// seeding the default rules on first use.
func (s *Service) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := cached(ctx, s, cache.EntityProfile, userID, nil, func(ctx context.Context) (*models.Profile, error) {
		p, created, err := s.store.EnsureProfile(ctx, userID, s.opts.Defaults)
		if err != nil {
			return nil, err
		}
		// Default rules cannot be deleted, so a user without rules has never
		// been seeded. A failed seed fails the load and is retried next time.
		if len(s.opts.RuleSeeds) > 0 {
			n, err := s.store.SeedDefaultRules(ctx, userID, s.opts.RuleSeeds)
			if err != nil {
				return nil, fmt.Errorf("failed to seed default rules: %w", err)
			}
			if n > 0 {
				s.logger.Info().Str("user_id", userID).Int("rules", n).Bool("new_profile", created).
					Msg("default rules seeded")
				s.invalidate(ctx, userID, cache.EntityRules)
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, s.fail("profile", userID, err)
	}
	return p, nil
}

func (s *Service) trades(ctx context.Context, userID string, q models.TradeQuery) ([]*models.Trade, error) {
	return cached(ctx, s, cache.EntityTrades, userID, q, func(ctx context.Context) ([]*models.Trade, error) {
		return s.store.ListTrades(ctx, userID, q)
	})
}

func (s *Service) rules(ctx context.Context, userID string, activeOnly bool) ([]*models.TradingRule, error) {
	return cached(ctx, s, cache.EntityRules, userID, activeOnly, func(ctx context.Context) ([]*models.TradingRule, error) {
		return s.store.ListRules(ctx, userID, activeOnly)
	})
}

func (s *Service) session(ctx context.Context, userID, date string) (*models.DailySession, error) {
	return cached(ctx, s, cache.EntitySessions, userID, date, func(ctx context.Context) (*models.DailySession, error) {
		return s.store.GetSession(ctx, userID, date)
	})
}

// closedBetween returns the user's CLOSED trades entered in [start, end]
func (s *Service) closedBetween(ctx context.Context, userID string, start, end time.Time) ([]*models.Trade, error) {
	return s.trades(ctx, userID, models.TradeQuery{Status: models.StatusClosed, Start: &start, End: &end})
}

func (s *Service) monthTrades(ctx context.Context, userID string, m clock.Month) ([]*models.Trade, error) {
	start, end := m.Range(s.opts.Location)
	trades, err := s.closedBetween(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades for %s: %w", m, err)
	}
	return trades, nil
}
