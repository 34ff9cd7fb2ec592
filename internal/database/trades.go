package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/trogers1052/trademind/internal/models"
)

const tradeColumns = `id, user_id, session_id, symbol, trade_type, direction, quantity,
		entry_price, exit_price, stop_loss, target_price, pnl, pnl_percent, fees,
		option_type, strike_price, expiry_date, setup_type, emotion_entry, emotion_exit,
		notes, tags, entry_time, exit_time, status, created_at, updated_at`

func scanTrade(row rowScanner) (*models.Trade, error) {
	var t models.Trade
	var sessionID, optionType, setupType, emotionEntry, emotionExit, notes sql.NullString
	var expiry, exitTime sql.NullTime
	var tags pq.StringArray

	err := row.Scan(
		&t.ID, &t.UserID, &sessionID, &t.Symbol, &t.TradeType, &t.Direction, &t.Quantity,
		&t.EntryPrice, &t.ExitPrice, &t.StopLoss, &t.TargetPrice, &t.PnL, &t.PnLPercent, &t.Fees,
		&optionType, &t.StrikePrice, &expiry, &setupType, &emotionEntry, &emotionExit,
		&notes, &tags, &t.EntryTime, &exitTime, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.SessionID = nullString(sessionID)
	if optionType.Valid {
		ot := models.OptionType(optionType.String)
		t.OptionType = &ot
	}
	t.ExpiryDate = nullTime(expiry)
	t.SetupType = nullString(setupType)
	if emotionEntry.Valid {
		e := models.Emotion(emotionEntry.String)
		t.EmotionEntry = &e
	}
	if emotionExit.Valid {
		e := models.Emotion(emotionExit.String)
		t.EmotionExit = &e
	}
	t.Notes = nullString(notes)
	t.Tags = []string(tags)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	t.ExitTime = nullTime(exitTime)
	return &t, nil
}

// CreateTrade inserts a new trade and fills in its generated fields
func (db *DB) CreateTrade(ctx context.Context, t *models.Trade) error {
	query := `
		INSERT INTO trades (
			user_id, session_id, symbol, trade_type, direction, quantity, entry_price,
			stop_loss, target_price, fees, option_type, strike_price, expiry_date,
			setup_type, emotion_entry, notes, tags, entry_time, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at
	`
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	err := db.conn.QueryRowContext(ctx, query,
		t.UserID, t.SessionID, t.Symbol, t.TradeType, t.Direction, t.Quantity, t.EntryPrice,
		t.StopLoss, t.TargetPrice, t.Fees, t.OptionType, t.StrikePrice, t.ExpiryDate,
		t.SetupType, t.EmotionEntry, t.Notes, pq.Array(tags), t.EntryTime, t.Status,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	t.Tags = tags
	return nil
}

// GetTrade retrieves one of the user's trades
func (db *DB) GetTrade(ctx context.Context, userID, id string) (*models.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = $1 AND user_id = $2`

	t, err := scanTrade(db.conn.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trade %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return t, nil
}

// ListTrades returns the user's trades matching q, newest entry first
func (db *DB) ListTrades(ctx context.Context, userID string, q models.TradeQuery) ([]*models.Trade, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + tradeColumns + ` FROM trades WHERE user_id = $1`)
	args := []interface{}{userID}

	if q.Status != "" {
		args = append(args, q.Status)
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	if q.Start != nil {
		args = append(args, *q.Start)
		fmt.Fprintf(&sb, " AND entry_time >= $%d", len(args))
	}
	if q.End != nil {
		args = append(args, *q.End)
		fmt.Fprintf(&sb, " AND entry_time <= $%d", len(args))
	}
	sb.WriteString(" ORDER BY entry_time DESC")
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	trades := make([]*models.Trade, 0)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trades: %w", err)
	}
	return trades, nil
}

// CloseTrade writes the exit fields and marks the trade CLOSED in a single
// statement. Only OPEN trades can be closed.
func (db *DB) CloseTrade(ctx context.Context, userID, id string, u models.CloseUpdate) (*models.Trade, error) {
	query := `
		UPDATE trades
		SET exit_price = $3, exit_time = $4, pnl = $5, pnl_percent = $6,
		    emotion_exit = $7, notes = $8, status = 'CLOSED', updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status = 'OPEN'
		RETURNING ` + tradeColumns

	t, err := scanTrade(db.conn.QueryRowContext(ctx, query,
		id, userID, u.ExitPrice, u.ExitTime, u.PnL, u.PnLPercent, u.EmotionExit, u.Notes,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.notOpenError(ctx, userID, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to close trade: %w", err)
	}
	return t, nil
}

// CancelTrade marks an OPEN trade CANCELLED
func (db *DB) CancelTrade(ctx context.Context, userID, id string) (*models.Trade, error) {
	query := `
		UPDATE trades
		SET status = 'CANCELLED', updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status = 'OPEN'
		RETURNING ` + tradeColumns

	t, err := scanTrade(db.conn.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.notOpenError(ctx, userID, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel trade: %w", err)
	}
	return t, nil
}

// notOpenError tells a missing trade apart from one that is no longer OPEN
func (db *DB) notOpenError(ctx context.Context, userID, id string) error {
	var status string
	err := db.conn.QueryRowContext(ctx,
		`SELECT status FROM trades WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("trade %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get trade status: %w", err)
	}
	return fmt.Errorf("trade %s is %s: %w", id, status, models.ErrTradeNotOpen)
}

// DeleteTrade removes one of the user's trades
func (db *DB) DeleteTrade(ctx context.Context, userID, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM trades WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("trade %s: %w", id, models.ErrNotFound)
	}
	return nil
}
