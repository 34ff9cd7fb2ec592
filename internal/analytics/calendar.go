package analytics

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/trademind/internal/clock"
	"github.com/trogers1052/trademind/internal/models"
)

// MonthStats summarizes a month of day buckets
type MonthStats struct {
	TotalPnL    decimal.Decimal `json:"total_pnl"`
	TradingDays int             `json:"trading_days"`
	GreenDays   int             `json:"green_days"`
	RedDays     int             `json:"red_days"`
	TotalTrades int             `json:"total_trades"`
	WinRate     float64         `json:"win_rate"`
}

// SummarizeMonth computes month statistics from trades and their day buckets
func SummarizeMonth(trades []*models.Trade, days []DaySummary) MonthStats {
	var s MonthStats
	for _, d := range days {
		s.TotalPnL = s.TotalPnL.Add(d.PnL)
		s.TradingDays++
		if d.PnL.IsPositive() {
			s.GreenDays++
		} else if d.PnL.IsNegative() {
			s.RedDays++
		}
	}

	wins := 0
	for _, t := range trades {
		if t.RealizedPnL().IsPositive() {
			wins++
		}
	}
	s.TotalTrades = len(trades)
	s.WinRate = WinRate(wins, s.TotalTrades)
	return s
}

// CalendarCell is one slot of a Monday-first month grid. Padding cells before
// the first of the month have an empty Date.
type CalendarCell struct {
	Date    string      `json:"date,omitempty"`
	Day     int         `json:"day,omitempty"`
	Summary *DaySummary `json:"summary,omitempty"`
}

// Grid lays out month m as Monday-first cells, attaching any matching summary
func Grid(m clock.Month, days []DaySummary) []CalendarCell {
	idx := DayIndex(days)
	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7

	cells := make([]CalendarCell, offset, offset+m.Days())
	for day := 1; day <= m.Days(); day++ {
		date := time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC).Format(clock.DateLayout)
		cell := CalendarCell{Date: date, Day: day}
		if s, ok := idx[date]; ok {
			cell.Summary = &s
		}
		cells = append(cells, cell)
	}
	return cells
}
