// Package risk converts planned trade parameters into position size, risk and
// reward figures and evaluates them against the user's configured limits.
package risk

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/trademind/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Inputs are the parameters of a planned trade together with the account limits
// it is measured against. TodayRealizedLoss is a positive magnitude.
type Inputs struct {
	Direction         models.Direction `json:"direction"`
	Quantity          decimal.Decimal  `json:"quantity"`
	EntryPrice        decimal.Decimal  `json:"entry_price"`
	StopLoss          decimal.Decimal  `json:"stop_loss"`
	TargetPrice       decimal.Decimal  `json:"target_price"`
	PerTradeRiskLimit decimal.Decimal  `json:"per_trade_risk_limit"`
	DailyLossLimit    decimal.Decimal  `json:"daily_loss_limit"`
	TodayRealizedLoss decimal.Decimal  `json:"today_realized_loss"`
}

// Assessment holds the derived figures for a planned trade
type Assessment struct {
	PositionSize        decimal.Decimal `json:"position_size"`
	RiskAmount          decimal.Decimal `json:"risk_amount"`
	RewardAmount        decimal.Decimal `json:"reward_amount"`
	RiskRewardRatio     float64         `json:"risk_reward_ratio"`
	PerTradeRiskLimit   decimal.Decimal `json:"per_trade_risk_limit"`
	DailyLossLimit      decimal.Decimal `json:"daily_loss_limit"`
	RiskUsagePercent    float64         `json:"risk_usage_percent"`
	DailyLossUsed       decimal.Decimal `json:"daily_loss_used"`
	DailyLossRemaining  decimal.Decimal `json:"daily_loss_remaining"`
	DailyLossPercent    float64         `json:"daily_loss_percent"`
	ExceedsPerTradeRisk bool            `json:"exceeds_per_trade_risk"`
	ExceedsDailyLimit   bool            `json:"exceeds_daily_limit"`
}

// Breached reports whether either limit is exceeded
func (a Assessment) Breached() bool {
	return a.ExceedsPerTradeRisk || a.ExceedsDailyLimit
}

// Warnings returns human readable advisories for each breached limit
func (a Assessment) Warnings() []string {
	var out []string
	if a.ExceedsPerTradeRisk {
		out = append(out, fmt.Sprintf("risk %s exceeds per-trade limit %s",
			a.RiskAmount.StringFixed(2), a.PerTradeRiskLimit.StringFixed(2)))
	}
	if a.ExceedsDailyLimit {
		out = append(out, fmt.Sprintf("risk %s exceeds remaining daily loss allowance %s",
			a.RiskAmount.StringFixed(2), a.DailyLossRemaining.StringFixed(2)))
	}
	return out
}

// Validate rejects inputs the calculator cannot evaluate. Zero limits are
// rejected rather than divided by.
func (in Inputs) Validate() error {
	if !in.Direction.Valid() {
		return models.NewValidationError("direction", "must be LONG or SHORT")
	}
	if !in.Quantity.IsPositive() {
		return models.NewValidationError("quantity", "must be greater than zero")
	}
	if !in.PerTradeRiskLimit.IsPositive() {
		return fmt.Errorf("per-trade risk limit %s: %w", in.PerTradeRiskLimit, models.ErrInvalidLimit)
	}
	if !in.DailyLossLimit.IsPositive() {
		return fmt.Errorf("daily loss limit %s: %w", in.DailyLossLimit, models.ErrInvalidLimit)
	}
	if in.TodayRealizedLoss.IsNegative() {
		return models.NewValidationError("today_realized_loss", "must not be negative")
	}
	return nil
}

// Calculate derives the risk figures for in. It performs no I/O.
func Calculate(in Inputs) (Assessment, error) {
	if err := in.Validate(); err != nil {
		return Assessment{}, err
	}

	var riskPerUnit, rewardPerUnit decimal.Decimal
	if in.Direction == models.Long {
		riskPerUnit = in.EntryPrice.Sub(in.StopLoss)
		rewardPerUnit = in.TargetPrice.Sub(in.EntryPrice)
	} else {
		riskPerUnit = in.StopLoss.Sub(in.EntryPrice)
		rewardPerUnit = in.EntryPrice.Sub(in.TargetPrice)
	}

	a := Assessment{
		PositionSize:      in.Quantity.Mul(in.EntryPrice),
		RiskAmount:        riskPerUnit.Mul(in.Quantity).Abs(),
		RewardAmount:      rewardPerUnit.Mul(in.Quantity).Abs(),
		PerTradeRiskLimit: in.PerTradeRiskLimit,
		DailyLossLimit:    in.DailyLossLimit,
		DailyLossUsed:     in.TodayRealizedLoss,
	}

	if a.RiskAmount.IsPositive() {
		a.RiskRewardRatio = a.RewardAmount.Div(a.RiskAmount).InexactFloat64()
	}
	a.RiskUsagePercent = a.RiskAmount.Div(in.PerTradeRiskLimit).Mul(hundred).InexactFloat64()
	a.DailyLossRemaining = decimal.Max(decimal.Zero, in.DailyLossLimit.Sub(in.TodayRealizedLoss))
	a.DailyLossPercent = in.TodayRealizedLoss.Div(in.DailyLossLimit).Mul(hundred).InexactFloat64()
	a.ExceedsPerTradeRisk = a.RiskAmount.GreaterThan(in.PerTradeRiskLimit)
	a.ExceedsDailyLimit = a.RiskAmount.GreaterThan(a.DailyLossRemaining)

	return a, nil
}

// TodayRealizedLoss sums the losses of the given P&L values as a positive magnitude
func TodayRealizedLoss(pnls []decimal.Decimal) decimal.Decimal {
	loss := decimal.Zero
	for _, p := range pnls {
		if p.IsNegative() {
			loss = loss.Add(p)
		}
	}
	return loss.Abs()
}
