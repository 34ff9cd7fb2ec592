package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mood is the pre-market or end-of-day mood
type Mood string

const (
	MoodExcellent Mood = "EXCELLENT"
	MoodGood      Mood = "GOOD"
	MoodNeutral   Mood = "NEUTRAL"
	MoodStressed  Mood = "STRESSED"
	MoodAnxious   Mood = "ANXIOUS"
)

// Valid reports whether m is a known mood
func (m Mood) Valid() bool {
	switch m {
	case MoodExcellent, MoodGood, MoodNeutral, MoodStressed, MoodAnxious:
		return true
	}
	return false
}

// DailySession is the per-user, per-date ritual record
type DailySession struct {
	ID               string              `json:"id"`
	UserID           string              `json:"user_id"`
	SessionDate      string              `json:"session_date"`
	PreMarketMood    *Mood               `json:"pre_market_mood"`
	SleepHours       decimal.NullDecimal `json:"sleep_hours"`
	Exercised        bool                `json:"exercised"`
	MarketBias       *string             `json:"market_bias"`
	KeyLevels        *string             `json:"key_levels"`
	RulesChecked     []string            `json:"rules_checked"`
	PreMarketNotes   *string             `json:"pre_market_notes"`
	SessionStartedAt *time.Time          `json:"session_started_at"`
	SessionEndedAt   *time.Time          `json:"session_ended_at"`
	EndOfDayNotes    *string             `json:"end_of_day_notes"`
	EndOfDayMood     *Mood               `json:"end_of_day_mood"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// RitualDone reports whether the session marks today's ritual as complete
func (s *DailySession) RitualDone() bool {
	return s != nil && s.SessionStartedAt != nil
}

// Quote is a motivational quote shown during the ritual
type Quote struct {
	ID        string    `json:"id"`
	QuoteText string    `json:"quote_text"`
	Author    *string   `json:"author"`
	Category  string    `json:"category"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
