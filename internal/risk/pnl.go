package risk

import (
	"github.com/shopspring/decimal"
	"github.com/trogers1052/trademind/internal/models"
)

// PnL is the realized result of closing a position
type PnL struct {
	Amount  decimal.Decimal `json:"pnl"`
	Percent decimal.Decimal `json:"pnl_percent"`
}

// CalculatePnL returns the direction-aware P&L of exiting a position
func CalculatePnL(direction models.Direction, quantity, entryPrice, exitPrice decimal.Decimal) (PnL, error) {
	if !direction.Valid() {
		return PnL{}, models.NewValidationError("direction", "must be LONG or SHORT")
	}
	if !entryPrice.IsPositive() {
		return PnL{}, models.NewValidationError("entry_price", "must be greater than zero")
	}

	move := exitPrice.Sub(entryPrice)
	if direction == models.Short {
		move = move.Neg()
	}

	return PnL{
		Amount:  move.Mul(quantity),
		Percent: move.Div(entryPrice).Mul(hundred),
	}, nil
}
