package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/trademind/internal/models"
)

// SymbolSummary aggregates closed trades for one symbol
type SymbolSummary struct {
	Symbol string          `json:"symbol"`
	PnL    decimal.Decimal `json:"pnl"`
	Trades int             `json:"trades"`
}

// BySymbol groups the CLOSED trades of trades by symbol. The result is sorted
// by P&L descending, ties broken by symbol, so repeated runs over the same
// input are identical.
func BySymbol(trades []*models.Trade) []SymbolSummary {
	buckets := make(map[string]*SymbolSummary)
	for _, t := range trades {
		if t.Status != models.StatusClosed {
			continue
		}
		b, ok := buckets[t.Symbol]
		if !ok {
			b = &SymbolSummary{Symbol: t.Symbol}
			buckets[t.Symbol] = b
		}
		b.PnL = b.PnL.Add(t.RealizedPnL())
		b.Trades++
	}

	out := make([]SymbolSummary, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].PnL.Cmp(out[j].PnL); c != 0 {
			return c > 0
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// Top returns at most n leading entries of symbols
func Top(symbols []SymbolSummary, n int) []SymbolSummary {
	if n <= 0 || len(symbols) <= n {
		return symbols
	}
	return symbols[:n]
}
