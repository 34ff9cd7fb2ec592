package api

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/trademind/internal/format"
	"github.com/trogers1052/trademind/internal/models"
	"github.com/trogers1052/trademind/internal/risk"
)

type riskResponse struct {
	risk.Assessment
	Breached  bool              `json:"breached"`
	Warnings  []string          `json:"warnings"`
	Formatted map[string]string `json:"formatted"`
}

// CalculateRisk handles POST /risk/calculate. It is stateless.
func (h *Handler) CalculateRisk(w http.ResponseWriter, r *http.Request) {
	var in risk.Inputs
	if err := decode(w, r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}
	a, err := risk.Calculate(in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	warnings := a.Warnings()
	if warnings == nil {
		warnings = []string{}
	}
	respondJSON(w, http.StatusOK, riskResponse{
		Assessment: a,
		Breached:   a.Breached(),
		Warnings:   warnings,
		Formatted: map[string]string{
			"position_size":        format.INR(a.PositionSize, format.Options{}),
			"risk_amount":          format.INR(a.RiskAmount, format.Options{}),
			"reward_amount":        format.INR(a.RewardAmount, format.Options{}),
			"daily_loss_remaining": format.INR(a.DailyLossRemaining, format.Options{}),
		},
	})
}

// CalculatePnL handles POST /risk/pnl. It is stateless.
func (h *Handler) CalculatePnL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction  models.Direction `json:"direction"`
		Quantity   decimal.Decimal  `json:"quantity"`
		EntryPrice decimal.Decimal  `json:"entry_price"`
		ExitPrice  decimal.Decimal  `json:"exit_price"`
	}
	if err := decode(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	pnl, err := risk.CalculatePnL(req.Direction, req.Quantity, req.EntryPrice, req.ExitPrice)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"pnl":           pnl.Amount,
		"pnl_percent":   pnl.Percent,
		"pnl_formatted": format.PnL(pnl.Amount),
	})
}
