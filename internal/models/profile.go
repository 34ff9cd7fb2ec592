package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile holds a user's capital, risk limits and profit targets
type Profile struct {
	ID                 string          `json:"id"`
	Email              *string         `json:"email"`
	FullName           *string         `json:"full_name"`
	TradingCapital     decimal.Decimal `json:"trading_capital"`
	DailyLossLimit     decimal.Decimal `json:"daily_loss_limit"`
	PerTradeRisk       decimal.Decimal `json:"per_trade_risk"`
	MaxTradesPerDay    int             `json:"max_trades_per_day"`
	DailyTarget        decimal.Decimal `json:"daily_target"`
	WeeklyTarget       decimal.Decimal `json:"weekly_target"`
	MonthlyTarget      decimal.Decimal `json:"monthly_target"`
	OnboardingComplete bool            `json:"onboarding_completed"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ProfileSettings is the editable subset of a profile
type ProfileSettings struct {
	FullName        *string         `json:"full_name"`
	TradingCapital  decimal.Decimal `json:"trading_capital"`
	DailyLossLimit  decimal.Decimal `json:"daily_loss_limit"`
	PerTradeRisk    decimal.Decimal `json:"per_trade_risk"`
	MaxTradesPerDay int             `json:"max_trades_per_day"`
	DailyTarget     decimal.Decimal `json:"daily_target"`
	WeeklyTarget    decimal.Decimal `json:"weekly_target"`
	MonthlyTarget   decimal.Decimal `json:"monthly_target"`
}

// Validate checks the settings before they are written. Limits used as
// divisors by the risk calculator must be strictly positive.
func (s ProfileSettings) Validate() error {
	nonNegative := map[string]decimal.Decimal{
		"trading_capital": s.TradingCapital,
		"daily_target":    s.DailyTarget,
		"weekly_target":   s.WeeklyTarget,
		"monthly_target":  s.MonthlyTarget,
	}
	for _, field := range []string{"trading_capital", "daily_target", "weekly_target", "monthly_target"} {
		if nonNegative[field].IsNegative() {
			return NewValidationError(field, "must not be negative")
		}
	}
	if !s.DailyLossLimit.IsPositive() {
		return NewValidationError("daily_loss_limit", "must be greater than zero")
	}
	if !s.PerTradeRisk.IsPositive() {
		return NewValidationError("per_trade_risk", "must be greater than zero")
	}
	if s.MaxTradesPerDay < 0 {
		return NewValidationError("max_trades_per_day", "must not be negative")
	}
	return nil
}

// ProfileDefaults are the limits written for a user without a profile
type ProfileDefaults struct {
	PerTradeRisk   decimal.Decimal
	DailyLossLimit decimal.Decimal
}
