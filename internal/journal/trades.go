package journal

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/trademind/internal/analytics"
	"github.com/trogers1052/trademind/internal/cache"
	"github.com/trogers1052/trademind/internal/clock"
	"github.com/trogers1052/trademind/internal/metrics"
	"github.com/trogers1052/trademind/internal/models"
	"github.com/trogers1052/trademind/internal/risk"
)

// CloseInput is the exit information for an open trade
type CloseInput struct {
	ExitPrice   decimal.NullDecimal `json:"exit_price"`
	EmotionExit *models.Emotion     `json:"emotion_exit"`
	Notes       string              `json:"notes"`
}

// JournalFilter narrows the journal listing
type JournalFilter struct {
	Search string
	Status models.TradeStatus
}

// JournalStats summarize every trade of the user, independent of the filter
type JournalStats struct {
	TotalTrades  int             `json:"total_trades"`
	OpenTrades   int             `json:"open_trades"`
	ClosedTrades int             `json:"closed_trades"`
	TotalPnL     decimal.Decimal `json:"total_pnl"`
	WinRate      float64         `json:"win_rate"`
}

// JournalView is the trade journal
type JournalView struct {
	Trades []*models.Trade `json:"trades"`
	Stats  JournalStats    `json:"stats"`
}

// NewTrade opens a trade. The trade is linked to today's ritual session when
// there is one.
func (s *Service) NewTrade(ctx context.Context, userID string, in models.TradeInput) (*models.Trade, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Profile(ctx, userID); err != nil {
		return nil, err
	}

	now := s.now()
	trade := &models.Trade{
		UserID:       userID,
		Symbol:       strings.ToUpper(strings.TrimSpace(in.Symbol)),
		TradeType:    in.TradeType,
		Direction:    in.Direction,
		Quantity:     in.Quantity,
		EntryPrice:   in.EntryPrice,
		StopLoss:     in.StopLoss,
		TargetPrice:  in.TargetPrice,
		Fees:         in.Fees,
		SetupType:    in.SetupType,
		EmotionEntry: in.EmotionEntry,
		Notes:        in.Notes,
		Tags:         in.Tags,
		EntryTime:    now,
		Status:       models.StatusOpen,
	}
	if in.TradeType == models.TradeTypeOptions {
		trade.OptionType = in.OptionType
		trade.StrikePrice = in.StrikePrice
		trade.ExpiryDate = in.ExpiryDate
	}

	session, err := s.store.GetSession(ctx, userID, clock.DateKey(now, s.opts.Location))
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("could not look up today's session, trade left unlinked")
	} else if session != nil {
		trade.SessionID = &session.ID
	}

	if err := s.store.CreateTrade(ctx, trade); err != nil {
		return nil, s.fail("new_trade", userID, err)
	}

	metrics.TradesOpened.Inc()
	s.invalidate(ctx, userID, cache.EntityTrades)
	s.publish(ctx, models.EventTradeOpened, userID, trade.ID, map[string]string{
		"symbol":    trade.Symbol,
		"direction": string(trade.Direction),
	})
	s.logger.Info().Str("user_id", userID).Str("trade_id", trade.ID).Str("symbol", trade.Symbol).Msg("trade opened")
	return trade, nil
}

// Trade returns one trade
func (s *Service) Trade(ctx context.Context, userID, id string) (*models.Trade, error) {
	t, err := s.store.GetTrade(ctx, userID, id)
	if err != nil {
		return nil, s.fail("get_trade", userID, err)
	}
	return t, nil
}

// CloseTrade closes an open trade at the given exit price. P&L, exit time,
// exit emotion and notes are written together.
func (s *Service) CloseTrade(ctx context.Context, userID, id string, in CloseInput) (*models.Trade, error) {
	if !in.ExitPrice.Valid || !in.ExitPrice.Decimal.IsPositive() {
		return nil, models.NewValidationError("exit_price", "is required and must be greater than zero")
	}
	if in.EmotionExit != nil && !in.EmotionExit.Valid() {
		return nil, models.NewValidationError("emotion_exit", "is not a known emotion")
	}

	trade, err := s.store.GetTrade(ctx, userID, id)
	if err != nil {
		return nil, s.fail("close_trade", userID, err)
	}
	if trade.Status != models.StatusOpen {
		return nil, models.ErrTradeNotOpen
	}

	pnl, err := risk.CalculatePnL(trade.Direction, trade.Quantity, trade.EntryPrice, in.ExitPrice.Decimal)
	if err != nil {
		return nil, err
	}

	closed, err := s.store.CloseTrade(ctx, userID, id, models.CloseUpdate{
		ExitPrice:   in.ExitPrice.Decimal,
		ExitTime:    s.now(),
		PnL:         pnl.Amount.Round(2),
		PnLPercent:  pnl.Percent.Round(4),
		EmotionExit: in.EmotionExit,
		Notes:       exitNotes(trade.Notes, in.Notes),
	})
	if err != nil {
		return nil, s.fail("close_trade", userID, err)
	}

	metrics.TradesClosed.Inc()
	s.invalidate(ctx, userID, cache.EntityTrades)
	s.publish(ctx, models.EventTradeClosed, userID, closed.ID, map[string]string{
		"symbol": closed.Symbol,
		"pnl":    closed.RealizedPnL().String(),
	})
	s.logger.Info().Str("user_id", userID).Str("trade_id", id).Str("pnl", closed.RealizedPnL().String()).Msg("trade closed")
	return closed, nil
}

// exitNotes appends the exit notes to the existing notes
func exitNotes(existing *string, exit string) *string {
	exit = strings.TrimSpace(exit)
	if exit == "" {
		return existing
	}
	if existing == nil || *existing == "" {
		n := "Exit: " + exit
		return &n
	}
	n := *existing + "\n\nExit: " + exit
	return &n
}

// CancelTrade marks an open trade cancelled
func (s *Service) CancelTrade(ctx context.Context, userID, id string) (*models.Trade, error) {
	t, err := s.store.CancelTrade(ctx, userID, id)
	if err != nil {
		return nil, s.fail("cancel_trade", userID, err)
	}
	s.invalidate(ctx, userID, cache.EntityTrades)
	s.publish(ctx, models.EventTradeCancelled, userID, id, map[string]string{"symbol": t.Symbol})
	return t, nil
}

// DeleteTrade removes a trade in any status
func (s *Service) DeleteTrade(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTrade(ctx, userID, id); err != nil {
		return s.fail("delete_trade", userID, err)
	}
	s.invalidate(ctx, userID, cache.EntityTrades)
	s.publish(ctx, models.EventTradeDeleted, userID, id, nil)
	return nil
}

// ListTrades returns trades matching q
func (s *Service) ListTrades(ctx context.Context, userID string, q models.TradeQuery) ([]*models.Trade, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, models.NewValidationError("status", "must be OPEN, CLOSED or CANCELLED")
	}
	trades, err := s.trades(ctx, userID, q)
	if err != nil {
		return nil, s.fail("list_trades", userID, err)
	}
	return trades, nil
}

// Journal lists the user's trades filtered by symbol substring and status,
// with stats over all trades
func (s *Service) Journal(ctx context.Context, userID string, f JournalFilter) (*JournalView, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, models.NewValidationError("status", "must be OPEN, CLOSED or CANCELLED")
	}
	all, err := s.trades(ctx, userID, models.TradeQuery{})
	if err != nil {
		return nil, s.fail("journal", userID, err)
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	filtered := make([]*models.Trade, 0, len(all))
	for _, t := range all {
		if search != "" && !strings.Contains(strings.ToLower(t.Symbol), search) {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		filtered = append(filtered, t)
	}

	closed := analytics.ClosedOnly(all)
	summary := analytics.Summarize(closed)
	return &JournalView{
		Trades: filtered,
		Stats: JournalStats{
			TotalTrades:  len(all),
			OpenTrades:   len(analytics.OpenOnly(all)),
			ClosedTrades: len(closed),
			TotalPnL:     summary.TotalPnL,
			WinRate:      summary.WinRate,
		},
	}, nil
}
