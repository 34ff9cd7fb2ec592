package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/trademind/internal/analytics"
	"github.com/trogers1052/trademind/internal/clock"
	"github.com/trogers1052/trademind/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Dashboard is the user's trading day at a glance
type Dashboard struct {
	Date            string          `json:"date"`
	TodayTrades     int             `json:"today_trades"`
	OpenTrades      int             `json:"open_trades"`
	ClosedTrades    int             `json:"closed_trades"`
	TodayPnL        decimal.Decimal `json:"today_pnl"`
	Wins            int             `json:"wins"`
	Losses          int             `json:"losses"`
	WinRate         float64         `json:"win_rate"`
	BestTrade       decimal.Decimal `json:"best_trade"`
	WorstTrade      decimal.Decimal `json:"worst_trade"`
	DailyLossUsed   decimal.Decimal `json:"daily_loss_used"`
	DailyLossLimit  decimal.Decimal `json:"daily_loss_limit"`
	RiskPercent     float64         `json:"risk_percent"`
	MaxTradesPerDay int             `json:"max_trades_per_day"`
	TradesRemaining int             `json:"trades_remaining"`
	DailyTarget     decimal.Decimal `json:"daily_target"`
	TargetProgress  float64         `json:"target_progress"`
	WeekPnL         decimal.Decimal `json:"week_pnl"`
	MonthPnL        decimal.Decimal `json:"month_pnl"`
	RitualDone      bool            `json:"ritual_done"`
	MarketOpen      bool            `json:"market_open"`
	RecentTrades    []*models.Trade `json:"recent_trades"`
}

// Dashboard builds today's dashboard
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	loc := s.opts.Location
	dayStart := clock.StartOfDay(now, loc)
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)

	today, err := s.trades(ctx, userID, models.TradeQuery{Start: &dayStart})
	if err != nil {
		return nil, s.fail("dashboard", userID, err)
	}
	weekStart := clock.StartOfWeek(now, loc)
	week, err := s.closedBetween(ctx, userID, weekStart, dayEnd)
	if err != nil {
		return nil, s.fail("dashboard", userID, err)
	}
	monthStart, _ := clock.MonthOf(now, loc).Range(loc)
	month, err := s.closedBetween(ctx, userID, monthStart, dayEnd)
	if err != nil {
		return nil, s.fail("dashboard", userID, err)
	}
	recent, err := s.trades(ctx, userID, models.TradeQuery{Limit: s.opts.RecentTrades})
	if err != nil {
		return nil, s.fail("dashboard", userID, err)
	}
	session, err := s.session(ctx, userID, clock.DateKey(now, loc))
	if err != nil {
		return nil, s.fail("dashboard", userID, err)
	}

	closed := analytics.ClosedOnly(today)
	summary := analytics.Summarize(closed)

	d := &Dashboard{
		Date:            clock.DateKey(now, loc),
		TodayTrades:     len(today),
		OpenTrades:      len(analytics.OpenOnly(today)),
		ClosedTrades:    len(closed),
		TodayPnL:        summary.TotalPnL,
		Wins:            summary.WinningTrades,
		Losses:          summary.LosingTrades,
		WinRate:         summary.WinRate,
		BestTrade:       summary.BestTrade,
		WorstTrade:      summary.WorstTrade,
		DailyLossUsed:   decimal.Min(decimal.Zero, summary.TotalPnL).Abs(),
		DailyLossLimit:  profile.DailyLossLimit,
		MaxTradesPerDay: profile.MaxTradesPerDay,
		TradesRemaining: max(0, profile.MaxTradesPerDay-len(today)),
		DailyTarget:     profile.DailyTarget,
		WeekPnL:         analytics.Summarize(week).TotalPnL,
		MonthPnL:        analytics.Summarize(month).TotalPnL,
		RitualDone:      session.RitualDone(),
		MarketOpen:      clock.IsMarketOpen(now, loc),
		RecentTrades:    recent,
	}
	if profile.DailyLossLimit.IsPositive() {
		d.RiskPercent = d.DailyLossUsed.Div(profile.DailyLossLimit).Mul(hundred).InexactFloat64()
	}
	if profile.DailyTarget.IsPositive() {
		d.TargetProgress = min(100, d.TodayPnL.Div(profile.DailyTarget).Mul(hundred).InexactFloat64())
	}
	return d, nil
}

// Calendar is one month of daily P&L
type Calendar struct {
	Month string                   `json:"month"`
	Stats analytics.MonthStats     `json:"stats"`
	Days  []analytics.DaySummary   `json:"days"`
	Cells []analytics.CalendarCell `json:"cells"`
}

// Calendar builds the month view from the month's closed trades
func (s *Service) Calendar(ctx context.Context, userID string, m clock.Month) (*Calendar, error) {
	trades, err := s.monthTrades(ctx, userID, m)
	if err != nil {
		return nil, s.fail("calendar", userID, err)
	}
	days := analytics.ByDay(trades, s.opts.Location)
	return &Calendar{
		Month: m.String(),
		Stats: analytics.SummarizeMonth(trades, days),
		Days:  days,
		Cells: analytics.Grid(m, days),
	}, nil
}

// CalendarDay is the detail of one calendar date
type CalendarDay struct {
	Date    string            `json:"date"`
	Summary analytics.Summary `json:"summary"`
	Trades  []*models.Trade   `json:"trades"`
}

// CalendarDay lists the closed trades entered on date (YYYY-MM-DD, local)
func (s *Service) CalendarDay(ctx context.Context, userID, date string) (*CalendarDay, error) {
	start, err := clock.ParseDate(date, s.opts.Location)
	if err != nil {
		return nil, models.NewValidationError("date", "must be YYYY-MM-DD")
	}
	end := start.AddDate(0, 0, 1).Add(-1)
	trades, err := s.closedBetween(ctx, userID, start, end)
	if err != nil {
		return nil, s.fail("calendar_day", userID, fmt.Errorf("failed to load trades for %s: %w", date, err))
	}
	trades = analytics.TradesOn(trades, date, s.opts.Location)
	return &CalendarDay{
		Date:    date,
		Summary: analytics.Summarize(trades),
		Trades:  trades,
	}, nil
}

// WinLoss is the split of a month's closed trades by outcome
type WinLoss struct {
	Wins      int `json:"wins"`
	Losses    int `json:"losses"`
	Breakeven int `json:"breakeven"`
}

// Analytics is the month's performance breakdown
type Analytics struct {
	Month      string                    `json:"month"`
	Summary    analytics.Summary         `json:"summary"`
	Daily      []analytics.DaySummary    `json:"daily"`
	WinLoss    WinLoss                   `json:"win_loss"`
	TopSymbols []analytics.SymbolSummary `json:"top_symbols"`
}

// Analytics builds the performance breakdown for the month's closed trades
func (s *Service) Analytics(ctx context.Context, userID string, m clock.Month) (*Analytics, error) {
	trades, err := s.monthTrades(ctx, userID, m)
	if err != nil {
		return nil, s.fail("analytics", userID, err)
	}
	summary := analytics.Summarize(trades)
	return &Analytics{
		Month:   m.String(),
		Summary: summary,
		Daily:   analytics.ByDay(trades, s.opts.Location),
		WinLoss: WinLoss{
			Wins:      summary.WinningTrades,
			Losses:    summary.LosingTrades,
			Breakeven: summary.TotalTrades - summary.WinningTrades - summary.LosingTrades,
		},
		TopSymbols: analytics.Top(analytics.BySymbol(trades), s.opts.TopSymbols),
	}, nil
}
