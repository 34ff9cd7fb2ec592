// Package analytics reduces trade collections into per-day, per-symbol and
// whole-period statistics. Every function is a pure reduction over its input.
package analytics

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/trademind/internal/models"
)

// Ratio is a float that may be +Inf. JSON has no infinity, so it is encoded
// as the string "Infinity".
type Ratio float64

func (r Ratio) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(r), 1) {
		return []byte(`"Infinity"`), nil
	}
	return json.Marshal(float64(r))
}

// Summary holds whole-collection statistics
type Summary struct {
	TotalPnL      decimal.Decimal `json:"total_pnl"`
	TotalTrades   int             `json:"total_trades"`
	WinningTrades int             `json:"winning_trades"`
	LosingTrades  int             `json:"losing_trades"`
	WinRate       float64         `json:"win_rate"`
	AvgPnL        decimal.Decimal `json:"avg_pnl"`
	BestTrade     decimal.Decimal `json:"best_trade"`
	WorstTrade    decimal.Decimal `json:"worst_trade"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	GrossLoss     decimal.Decimal `json:"gross_loss"`
	ProfitFactor  Ratio           `json:"profit_factor"`
}

// Summarize computes summary statistics over trades. Trades without a P&L
// count as zero. An empty input yields a zero-valued summary.
func Summarize(trades []*models.Trade) Summary {
	s := Summary{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return s
	}

	s.BestTrade = trades[0].RealizedPnL()
	s.WorstTrade = s.BestTrade
	for _, t := range trades {
		pnl := t.RealizedPnL()
		s.TotalPnL = s.TotalPnL.Add(pnl)
		switch {
		case pnl.IsPositive():
			s.WinningTrades++
			s.GrossProfit = s.GrossProfit.Add(pnl)
		case pnl.IsNegative():
			s.LosingTrades++
			s.GrossLoss = s.GrossLoss.Add(pnl.Abs())
		}
		s.BestTrade = decimal.Max(s.BestTrade, pnl)
		s.WorstTrade = decimal.Min(s.WorstTrade, pnl)
	}

	s.WinRate = WinRate(s.WinningTrades, s.TotalTrades)
	s.AvgPnL = s.TotalPnL.Div(decimal.NewFromInt(int64(s.TotalTrades)))
	s.ProfitFactor = ProfitFactor(s.GrossProfit, s.GrossLoss)
	return s
}

// WinRate returns wins/total as a percentage, 0 when total is 0
func WinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100
}

// ProfitFactor returns grossProfit/grossLoss. With no losses it is +Inf when
// there was any profit and 0 otherwise.
func ProfitFactor(grossProfit, grossLoss decimal.Decimal) Ratio {
	if grossLoss.IsPositive() {
		return Ratio(grossProfit.Div(grossLoss).InexactFloat64())
	}
	if grossProfit.IsPositive() {
		return Ratio(math.Inf(1))
	}
	return 0
}

// ClosedOnly returns the CLOSED trades of trades
func ClosedOnly(trades []*models.Trade) []*models.Trade {
	return filterStatus(trades, models.StatusClosed)
}

// OpenOnly returns the OPEN trades of trades
func OpenOnly(trades []*models.Trade) []*models.Trade {
	return filterStatus(trades, models.StatusOpen)
}

func filterStatus(trades []*models.Trade, status models.TradeStatus) []*models.Trade {
	out := make([]*models.Trade, 0, len(trades))
	for _, t := range trades {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}
