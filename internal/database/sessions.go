package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/trogers1052/trademind/internal/clock"
	"github.com/trogers1052/trademind/internal/models"
)

const sessionColumns = `id, user_id, session_date, pre_market_mood, sleep_hours, exercised,
		market_bias, key_levels, rules_checked, pre_market_notes, session_started_at,
		session_ended_at, end_of_day_notes, end_of_day_mood, created_at, updated_at`

func scanSession(row rowScanner) (*models.DailySession, error) {
	var s models.DailySession
	var date time.Time
	var preMood, bias, levels, preNotes, eodNotes, eodMood sql.NullString
	var started, ended sql.NullTime
	var checked pq.StringArray

	err := row.Scan(
		&s.ID, &s.UserID, &date, &preMood, &s.SleepHours, &s.Exercised,
		&bias, &levels, &checked, &preNotes, &started,
		&ended, &eodNotes, &eodMood, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// DATE columns come back as midnight UTC
	s.SessionDate = date.UTC().Format(clock.DateLayout)
	if preMood.Valid {
		m := models.Mood(preMood.String)
		s.PreMarketMood = &m
	}
	if eodMood.Valid {
		m := models.Mood(eodMood.String)
		s.EndOfDayMood = &m
	}
	s.MarketBias = nullString(bias)
	s.KeyLevels = nullString(levels)
	s.PreMarketNotes = nullString(preNotes)
	s.EndOfDayNotes = nullString(eodNotes)
	s.RulesChecked = []string(checked)
	if s.RulesChecked == nil {
		s.RulesChecked = []string{}
	}
	s.SessionStartedAt = nullTime(started)
	s.SessionEndedAt = nullTime(ended)
	return &s, nil
}

// GetSession returns the user's session for date (YYYY-MM-DD). A missing
// session is not an error: it returns nil, nil.
func (db *DB) GetSession(ctx context.Context, userID, date string) (*models.DailySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM daily_sessions WHERE user_id = $1 AND session_date = $2`

	s, err := scanSession(db.conn.QueryRowContext(ctx, query, userID, date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// UpsertSession creates or replaces the pre-market part of the user's session
// for s.SessionDate
func (db *DB) UpsertSession(ctx context.Context, s *models.DailySession) (*models.DailySession, error) {
	query := `
		INSERT INTO daily_sessions (
			user_id, session_date, pre_market_mood, sleep_hours, exercised, market_bias,
			key_levels, rules_checked, pre_market_notes, session_started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, session_date) DO UPDATE SET
			pre_market_mood = EXCLUDED.pre_market_mood,
			sleep_hours = EXCLUDED.sleep_hours,
			exercised = EXCLUDED.exercised,
			market_bias = EXCLUDED.market_bias,
			key_levels = EXCLUDED.key_levels,
			rules_checked = EXCLUDED.rules_checked,
			pre_market_notes = EXCLUDED.pre_market_notes,
			session_started_at = EXCLUDED.session_started_at,
			updated_at = NOW()
		RETURNING ` + sessionColumns

	checked := s.RulesChecked
	if checked == nil {
		checked = []string{}
	}
	out, err := scanSession(db.conn.QueryRowContext(ctx, query,
		s.UserID, s.SessionDate, s.PreMarketMood, s.SleepHours, s.Exercised, s.MarketBias,
		s.KeyLevels, pq.Array(checked), s.PreMarketNotes, s.SessionStartedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert session: %w", err)
	}
	return out, nil
}

// EndSession records the end-of-day reflection on an existing session
func (db *DB) EndSession(ctx context.Context, userID, date string, mood *models.Mood, notes *string, endedAt time.Time) (*models.DailySession, error) {
	query := `
		UPDATE daily_sessions
		SET end_of_day_mood = $3, end_of_day_notes = $4, session_ended_at = $5, updated_at = NOW()
		WHERE user_id = $1 AND session_date = $2
		RETURNING ` + sessionColumns

	out, err := scanSession(db.conn.QueryRowContext(ctx, query, userID, date, mood, notes, endedAt))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", date, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}
	return out, nil
}
