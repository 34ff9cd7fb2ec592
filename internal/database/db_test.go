package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var (
	tradeCols = []string{
		"id", "user_id", "session_id", "symbol", "trade_type", "direction", "quantity",
		"entry_price", "exit_price", "stop_loss", "target_price", "pnl", "pnl_percent", "fees",
		"option_type", "strike_price", "expiry_date", "setup_type", "emotion_entry", "emotion_exit",
		"notes", "tags", "entry_time", "exit_time", "status", "created_at", "updated_at",
	}
	ruleCols = []string{
		"id", "user_id", "rule_text", "category", "is_default", "is_active", "sort_order", "created_at", "updated_at",
	}
	sessionCols = []string{
		"id", "user_id", "session_date", "pre_market_mood", "sleep_hours", "exercised",
		"market_bias", "key_levels", "rules_checked", "pre_market_notes", "session_started_at",
		"session_ended_at", "end_of_day_notes", "end_of_day_mood", "created_at", "updated_at",
	}
	profileCols = []string{
		"id", "email", "full_name", "trading_capital", "daily_loss_limit", "per_trade_risk",
		"max_trades_per_day", "daily_target", "weekly_target", "monthly_target",
		"onboarding_completed", "created_at", "updated_at",
	}

	ts = time.Date(2026, 10, 19, 4, 0, 0, 0, time.UTC)
)

const (
	userID  = "6f1c1b2e-8a52-4a57-9d1e-2f0e4f8c1a11"
	tradeID = "0d6c2f4a-3c1b-4e9a-8f7d-5b2a1c3e4d5f"
)

func newMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewWithConn(conn), mock
}

func openTradeRow() *sqlmock.Rows {
	return sqlmock.NewRows(tradeCols).AddRow(
		tradeID, userID, nil, "NIFTY", "EQUITY", "LONG", "50",
		"24500", nil, "24400", "24700", nil, nil, "0",
		nil, nil, nil, "Breakout", "CALM", nil,
		"Trade Reason: breakout", "{}", ts, nil, "OPEN", ts, ts,
	)
}

func closedTradeRow() *sqlmock.Rows {
	return sqlmock.NewRows(tradeCols).AddRow(
		tradeID, userID, nil, "NIFTY", "EQUITY", "LONG", "50",
		"24500", "24600", "24400", "24700", "5000", "0.4082", "0",
		nil, nil, nil, "Breakout", "CALM", "CONFIDENT",
		"Trade Reason: breakout\n\nExit: target hit", "{scalp,nifty}", ts, ts.Add(time.Hour), "CLOSED", ts, ts,
	)
}
