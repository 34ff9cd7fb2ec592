package journal

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/trademind/internal/clock"
	"github.com/trogers1052/trademind/internal/guardian"
	"github.com/trogers1052/trademind/internal/models"
	"github.com/trogers1052/trademind/internal/risk"
)

var _ guardian.Backend = (*Service)(nil)

// AssessmentContext gathers the user state a Trade Guardian draft is
// evaluated against: active rules, risk limits and today's realized loss.
func (s *Service) AssessmentContext(ctx context.Context, userID string) (guardian.Context, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return guardian.Context{}, err
	}
	rules, err := s.rules(ctx, userID, true)
	if err != nil {
		return guardian.Context{}, s.fail("assessment_context", userID, err)
	}
	dayStart := clock.StartOfDay(s.now(), s.opts.Location)
	closed, err := s.trades(ctx, userID, models.TradeQuery{Status: models.StatusClosed, Start: &dayStart})
	if err != nil {
		return guardian.Context{}, s.fail("assessment_context", userID, err)
	}

	pnls := make([]decimal.Decimal, 0, len(closed))
	for _, t := range closed {
		pnls = append(pnls, t.RealizedPnL())
	}
	return guardian.Context{
		ActiveRuleIDs:     models.ActiveRuleIDs(rules),
		PerTradeRiskLimit: profile.PerTradeRisk,
		DailyLossLimit:    profile.DailyLossLimit,
		TodayRealizedLoss: risk.TodayRealizedLoss(pnls),
	}, nil
}
