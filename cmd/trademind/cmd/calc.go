package cmd

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/trogers1052/trademind/internal/format"
	"github.com/trogers1052/trademind/internal/models"
	"github.com/trogers1052/trademind/internal/risk"
)

func newCalcCmd() *cobra.Command {
	calc := &cobra.Command{
		Use:   "calc",
		Short: "Risk and P&L calculators",
		Long: `Offline versions of the journal's calculators.

Examples:
  trademind calc risk --direction LONG --qty 100 --entry 500 --stop 450 --target 600
  trademind calc pnl --direction SHORT --qty 10 --entry 200 --exit 210`,
	}
	calc.AddCommand(newCalcRiskCmd(), newCalcPnLCmd())
	return calc
}

type riskFlags struct {
	direction string
	qty       string
	entry     string
	stop      string
	target    string
	perTrade  string
	daily     string
	lossToday string
}

func newCalcRiskCmd() *cobra.Command {
	var f riskFlags
	c := &cobra.Command{
		Use:   "risk",
		Short: "Size a planned trade against your limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.inputs()
			if err != nil {
				return err
			}
			a, err := risk.Calculate(in)
			if err != nil {
				return err
			}
			printAssessment(cmd, a)
			return nil
		},
	}
	c.Flags().StringVarP(&f.direction, "direction", "d", "LONG", "LONG or SHORT")
	c.Flags().StringVarP(&f.qty, "qty", "q", "", "quantity (required)")
	c.Flags().StringVar(&f.entry, "entry", "0", "entry price")
	c.Flags().StringVar(&f.stop, "stop", "0", "stop loss price")
	c.Flags().StringVar(&f.target, "target", "0", "target price")
	c.Flags().StringVar(&f.perTrade, "per-trade-limit", "5000", "maximum risk per trade")
	c.Flags().StringVar(&f.daily, "daily-limit", "10000", "daily loss limit")
	c.Flags().StringVar(&f.lossToday, "loss-today", "0", "loss already realized today")
	c.MarkFlagRequired("qty")
	return c
}

func (f riskFlags) inputs() (risk.Inputs, error) {
	in := risk.Inputs{Direction: models.Direction(strings.ToUpper(f.direction))}
	fields := []struct {
		name  string
		value string
		dest  *decimal.Decimal
	}{
		{"qty", f.qty, &in.Quantity},
		{"entry", f.entry, &in.EntryPrice},
		{"stop", f.stop, &in.StopLoss},
		{"target", f.target, &in.TargetPrice},
		{"per-trade-limit", f.perTrade, &in.PerTradeRiskLimit},
		{"daily-limit", f.daily, &in.DailyLossLimit},
		{"loss-today", f.lossToday, &in.TodayRealizedLoss},
	}
	for _, fl := range fields {
		d, err := parseDecimal(fl.name, fl.value)
		if err != nil {
			return risk.Inputs{}, err
		}
		*fl.dest = d
	}
	return in, nil
}

func printAssessment(cmd *cobra.Command, a risk.Assessment) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Position size:   %s\n", format.INR(a.PositionSize, format.Options{}))
	fmt.Fprintf(out, "Risk:            %s (%s of per-trade limit)\n",
		format.INR(a.RiskAmount, format.Options{}), format.Percent(a.RiskUsagePercent, false, 1))
	fmt.Fprintf(out, "Reward:          %s\n", format.INR(a.RewardAmount, format.Options{}))
	fmt.Fprintf(out, "Risk:reward:     1:%.2f\n", a.RiskRewardRatio)
	fmt.Fprintf(out, "Daily loss used: %s of %s (%s)\n",
		format.INR(a.DailyLossUsed, format.Options{}),
		format.INR(a.DailyLossLimit, format.Options{}),
		format.Percent(a.DailyLossPercent, false, 1))
	for _, w := range a.Warnings() {
		fmt.Fprintf(out, "WARNING: %s\n", w)
	}
}

func newCalcPnLCmd() *cobra.Command {
	var direction, qty, entry, exit string
	c := &cobra.Command{
		Use:   "pnl",
		Short: "Compute realized P&L for a closed position",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseDecimal("qty", qty)
			if err != nil {
				return err
			}
			en, err := parseDecimal("entry", entry)
			if err != nil {
				return err
			}
			ex, err := parseDecimal("exit", exit)
			if err != nil {
				return err
			}
			p, err := risk.CalculatePnL(models.Direction(strings.ToUpper(direction)), q, en, ex)
			if err != nil {
				return err
			}
			pct, _ := p.Percent.Round(2).Float64()
			fmt.Fprintf(cmd.OutOrStdout(), "P&L: %s (%s)\n",
				format.PnL(p.Amount.Round(2)), format.Percent(pct, true, 2))
			return nil
		},
	}
	c.Flags().StringVarP(&direction, "direction", "d", "LONG", "LONG or SHORT")
	c.Flags().StringVarP(&qty, "qty", "q", "", "quantity (required)")
	c.Flags().StringVar(&entry, "entry", "", "entry price (required)")
	c.Flags().StringVar(&exit, "exit", "", "exit price (required)")
	c.MarkFlagRequired("qty")
	c.MarkFlagRequired("entry")
	c.MarkFlagRequired("exit")
	return c
}
