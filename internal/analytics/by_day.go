package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/trademind/internal/clock"
	"github.com/trogers1052/trademind/internal/models"
)

// DaySummary aggregates the trades entered on one local calendar date
type DaySummary struct {
	Date       string          `json:"date"`
	PnL        decimal.Decimal `json:"pnl"`
	Trades     int             `json:"trades"`
	Wins       int             `json:"wins"`
	Losses     int             `json:"losses"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

// ByDay buckets trades by the date of their entry time in loc and returns the
// buckets in ascending date order with a running cumulative P&L.
func ByDay(trades []*models.Trade, loc *time.Location) []DaySummary {
	buckets := make(map[string]*DaySummary)
	for _, t := range trades {
		key := clock.DateKey(t.EntryTime, loc)
		b, ok := buckets[key]
		if !ok {
			b = &DaySummary{Date: key}
			buckets[key] = b
		}
		pnl := t.RealizedPnL()
		b.PnL = b.PnL.Add(pnl)
		b.Trades++
		if pnl.IsPositive() {
			b.Wins++
		} else if pnl.IsNegative() {
			b.Losses++
		}
	}

	days := make([]DaySummary, 0, len(buckets))
	for _, b := range buckets {
		days = append(days, *b)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	cumulative := decimal.Zero
	for i := range days {
		cumulative = cumulative.Add(days[i].PnL)
		days[i].Cumulative = cumulative
	}
	return days
}

// DayIndex keys day summaries by date
func DayIndex(days []DaySummary) map[string]DaySummary {
	idx := make(map[string]DaySummary, len(days))
	for _, d := range days {
		idx[d.Date] = d
	}
	return idx
}

// TradesOn returns the trades whose entry time falls on date in loc
func TradesOn(trades []*models.Trade, date string, loc *time.Location) []*models.Trade {
	out := make([]*models.Trade, 0)
	for _, t := range trades {
		if clock.DateKey(t.EntryTime, loc) == date {
			out = append(out, t)
		}
	}
	return out
}
