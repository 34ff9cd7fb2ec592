package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TradeType is the instrument class of a trade
type TradeType string

const (
	TradeTypeEquity  TradeType = "EQUITY"
	TradeTypeOptions TradeType = "OPTIONS"
	TradeTypeFutures TradeType = "FUTURES"
)

// Valid reports whether t is a known trade type
func (t TradeType) Valid() bool {
	switch t {
	case TradeTypeEquity, TradeTypeOptions, TradeTypeFutures:
		return true
	}
	return false
}

// Direction is the side of a position
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Valid reports whether d is LONG or SHORT
func (d Direction) Valid() bool {
	return d == Long || d == Short
}

// TradeStatus is the lifecycle state of a trade
type TradeStatus string

const (
	StatusOpen      TradeStatus = "OPEN"
	StatusClosed    TradeStatus = "CLOSED"
	StatusCancelled TradeStatus = "CANCELLED"
)

// Valid reports whether s is a known status
func (s TradeStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

// OptionType is call (CE) or put (PE)
type OptionType string

const (
	OptionCall OptionType = "CE"
	OptionPut  OptionType = "PE"
)

// Emotion is the trader's state at entry or exit
type Emotion string

const (
	EmotionConfident Emotion = "CONFIDENT"
	EmotionFearful   Emotion = "FEARFUL"
	EmotionGreedy    Emotion = "GREEDY"
	EmotionCalm      Emotion = "CALM"
	EmotionFOMO      Emotion = "FOMO"
	EmotionRevenge   Emotion = "REVENGE"
)

// Emotions lists the selectable emotions in display order
var Emotions = []Emotion{
	EmotionCalm, EmotionConfident, EmotionFearful, EmotionGreedy, EmotionFOMO, EmotionRevenge,
}

// Valid reports whether e is one of Emotions
func (e Emotion) Valid() bool {
	for _, v := range Emotions {
		if v == e {
			return true
		}
	}
	return false
}

// Trade is a single journaled market position.
// PnL and PnLPercent are set exactly when Status is CLOSED.
type Trade struct {
	ID           string              `json:"id"`
	UserID       string              `json:"user_id"`
	SessionID    *string             `json:"session_id"`
	Symbol       string              `json:"symbol"`
	TradeType    TradeType           `json:"trade_type"`
	Direction    Direction           `json:"direction"`
	Quantity     decimal.Decimal     `json:"quantity"`
	EntryPrice   decimal.Decimal     `json:"entry_price"`
	ExitPrice    decimal.NullDecimal `json:"exit_price"`
	StopLoss     decimal.NullDecimal `json:"stop_loss"`
	TargetPrice  decimal.NullDecimal `json:"target_price"`
	PnL          decimal.NullDecimal `json:"pnl"`
	PnLPercent   decimal.NullDecimal `json:"pnl_percent"`
	Fees         decimal.Decimal     `json:"fees"`
	OptionType   *OptionType         `json:"option_type"`
	StrikePrice  decimal.NullDecimal `json:"strike_price"`
	ExpiryDate   *time.Time          `json:"expiry_date"`
	SetupType    *string             `json:"setup_type"`
	EmotionEntry *Emotion            `json:"emotion_entry"`
	EmotionExit  *Emotion            `json:"emotion_exit"`
	Notes        *string             `json:"notes"`
	Tags         []string            `json:"tags"`
	EntryTime    time.Time           `json:"entry_time"`
	ExitTime     *time.Time          `json:"exit_time"`
	Status       TradeStatus         `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// RealizedPnL returns the trade's P&L, or zero while it has none
func (t *Trade) RealizedPnL() decimal.Decimal {
	if t.PnL.Valid {
		return t.PnL.Decimal
	}
	return decimal.Zero
}

// TradeQuery holds the filters accepted by trade listing.
// Start and End are inclusive bounds on entry_time.
type TradeQuery struct {
	Status TradeStatus // empty means all
	Start  *time.Time
	End    *time.Time
	Limit  int
}

// CloseUpdate is the set of fields written when a trade is closed
type CloseUpdate struct {
	ExitPrice   decimal.Decimal
	ExitTime    time.Time
	PnL         decimal.Decimal
	PnLPercent  decimal.Decimal
	EmotionExit *Emotion
	Notes       *string
}

// TradeInput is the user-supplied part of a new trade
type TradeInput struct {
	Symbol       string              `json:"symbol"`
	TradeType    TradeType           `json:"trade_type"`
	Direction    Direction           `json:"direction"`
	Quantity     decimal.Decimal     `json:"quantity"`
	EntryPrice   decimal.Decimal     `json:"entry_price"`
	StopLoss     decimal.NullDecimal `json:"stop_loss"`
	TargetPrice  decimal.NullDecimal `json:"target_price"`
	Fees         decimal.Decimal     `json:"fees"`
	OptionType   *OptionType         `json:"option_type"`
	StrikePrice  decimal.NullDecimal `json:"strike_price"`
	ExpiryDate   *time.Time          `json:"expiry_date"`
	SetupType    *string             `json:"setup_type"`
	EmotionEntry *Emotion            `json:"emotion_entry"`
	Notes        *string             `json:"notes"`
	Tags         []string            `json:"tags"`
}

// Validate checks the fields required to open a trade
func (in TradeInput) Validate() error {
	if strings.TrimSpace(in.Symbol) == "" {
		return NewValidationError("symbol", "is required")
	}
	if !in.TradeType.Valid() {
		return NewValidationError("trade_type", "must be EQUITY, OPTIONS or FUTURES")
	}
	if !in.Direction.Valid() {
		return NewValidationError("direction", "must be LONG or SHORT")
	}
	if !in.Quantity.IsPositive() {
		return NewValidationError("quantity", "must be greater than zero")
	}
	if !in.EntryPrice.IsPositive() {
		return NewValidationError("entry_price", "must be greater than zero")
	}
	if in.Fees.IsNegative() {
		return NewValidationError("fees", "must not be negative")
	}
	if in.OptionType != nil && *in.OptionType != OptionCall && *in.OptionType != OptionPut {
		return NewValidationError("option_type", "must be CE or PE")
	}
	if in.EmotionEntry != nil && !in.EmotionEntry.Valid() {
		return NewValidationError("emotion_entry", "is not a known emotion")
	}
	return nil
}
